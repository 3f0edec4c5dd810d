package dimensions

import "strings"

// Resolve matches input against cfg and returns the dimension context. It
// never fails: unmatched requests fall back to the configured defaults and an
// empty config yields the empty Result.
func Resolve(cfg Config, input Input) Result {
	result, _ := resolve(cfg, input, false)
	return result
}

// ResolveWithTrace behaves like Resolve and also reports how every dimension
// was matched.
func ResolveWithTrace(cfg Config, input Input) (Result, Trace) {
	return resolve(cfg, input, true)
}

// URISegments extracts the dimension segments from a request path: the first
// path segment, split on "_".
func URISegments(path string) []string {
	trimmed := strings.Trim(path, "/")
	head, _, _ := strings.Cut(trimmed, "/")
	return strings.Split(head, "_")
}

func resolve(cfg Config, input Input, withTrace bool) (Result, Trace) {
	trace := Trace{
		Input:      input,
		SnapshotID: cfg.SnapshotID,
	}
	if len(cfg.Dimensions) == 0 {
		trace.Outcome = OutcomeEmpty
		return Result{}, trace
	}

	hosts := []string{input.Host}
	segments := URISegments(input.Path)
	trace.Segments = segments

	values, reason, matches := matchSegmentsOrHost(cfg.Dimensions, segments, hosts, withTrace)
	trace.Matches = matches
	trace.Outcome = OutcomeMatched
	if values == nil {
		values = defaultValues(cfg.Dimensions)
		trace.Outcome = OutcomeFallback
		trace.FallbackReason = reason
	}

	return Result{
		Dimensions:       values,
		TargetDimensions: targetValues(values),
	}, trace
}

// matchSegmentsOrHost returns nil unless every dimension matched a preset at
// its positional segment (or host).
func matchSegmentsOrHost(dims []Dimension, segments, hosts []string, withTrace bool) (map[string][]string, FallbackReason, []MatchTrace) {
	if len(segments) != len(dims) {
		return nil, FallbackSegmentCountMismatch, nil
	}

	var matches []MatchTrace
	values := make(map[string][]string, len(dims))
	for i, dim := range dims {
		segment := segments[i]
		host, hostAvailable := "", false
		// hosts only ever holds the request host, so only the first
		// dimension can match by host.
		if i < len(hosts) {
			host, hostAvailable = hosts[i], true
		}

		match := MatchTrace{
			Dimension:     dim.Name,
			Index:         i,
			Segment:       segment,
			Host:          host,
			HostAvailable: hostAvailable,
		}
		for _, preset := range dim.Presets {
			by := presetMatch(preset, segment, host, hostAvailable)
			if by == "" {
				continue
			}
			values[dim.Name] = cloneStrings(preset.Values)
			match.Preset = preset.Name
			match.MatchedBy = by
			match.Values = cloneStrings(preset.Values)
			break
		}
		if withTrace {
			matches = append(matches, match)
		}
	}

	if len(values) != len(segments) {
		return nil, FallbackUnmatchedDimension, matches
	}
	return values, FallbackNone, matches
}

func presetMatch(preset Preset, segment, host string, hostAvailable bool) MatchedBy {
	if preset.URISegment != "" && preset.URISegment == segment {
		return MatchedByURISegment
	}
	if hostAvailable && preset.ResolutionHost != "" && preset.ResolutionHost == host {
		return MatchedByResolutionHost
	}
	return ""
}

func defaultValues(dims []Dimension) map[string][]string {
	values := make(map[string][]string, len(dims))
	for _, dim := range dims {
		values[dim.Name] = []string{dim.Default}
	}
	return values
}

func targetValues(values map[string][]string) map[string]string {
	targets := make(map[string]string, len(values))
	for name, list := range values {
		if len(list) == 0 {
			continue
		}
		targets[name] = list[0]
	}
	return targets
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
