package dimensions

import (
	"encoding/json"
)

// MatchedBy names the preset matcher that accepted a dimension.
type MatchedBy string

const (
	MatchedByURISegment     MatchedBy = "uriSegment"
	MatchedByResolutionHost MatchedBy = "resolutionHost"
)

// Trace captures how a resolution was produced, for debugging and logging.
type Trace struct {
	Input          Input          `json:"input"`
	Outcome        Outcome        `json:"outcome"`
	FallbackReason FallbackReason `json:"fallback_reason,omitempty"`
	SnapshotID     string         `json:"snapshot_id,omitempty"`
	Segments       []string       `json:"segments,omitempty"`
	Matches        []MatchTrace   `json:"matches,omitempty"`
}

// MatchTrace details the preset scan for a single dimension.
type MatchTrace struct {
	Dimension     string    `json:"dimension"`
	Index         int       `json:"index"`
	Segment       string    `json:"segment"`
	Host          string    `json:"host,omitempty"`
	HostAvailable bool      `json:"host_available"`
	Preset        string    `json:"preset,omitempty"`
	MatchedBy     MatchedBy `json:"matched_by,omitempty"`
	Values        []string  `json:"values,omitempty"`
}

// Matched reports whether a preset accepted the dimension.
func (m MatchTrace) Matched() bool {
	return m.MatchedBy != ""
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a JSON payload that was previously generated via
// ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
