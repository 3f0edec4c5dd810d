package dimensions

import "encoding/json"

// IsEmpty reports whether r is the empty context produced when no dimensions
// are configured. A Result holding empty maps is not empty.
func (r Result) IsEmpty() bool {
	return r.Dimensions == nil && r.TargetDimensions == nil
}

// Target returns the target value for dimension name.
func (r Result) Target(name string) (string, bool) {
	value, ok := r.TargetDimensions[name]
	return value, ok
}

// Values returns a copy of the resolved value list for dimension name.
func (r Result) Values(name string) ([]string, bool) {
	values, ok := r.Dimensions[name]
	return cloneStrings(values), ok
}

// Clone returns a deep copy of r, preserving the empty case.
func (r Result) Clone() Result {
	if r.IsEmpty() {
		return Result{}
	}
	out := Result{
		Dimensions:       make(map[string][]string, len(r.Dimensions)),
		TargetDimensions: make(map[string]string, len(r.TargetDimensions)),
	}
	for name, values := range r.Dimensions {
		out.Dimensions[name] = cloneStrings(values)
	}
	for name, value := range r.TargetDimensions {
		out.TargetDimensions[name] = value
	}
	return out
}

// AsMap renders r the way expression engines consume it: untyped maps and
// slices only. The empty Result renders as a map with no keys.
func (r Result) AsMap() map[string]any {
	if r.IsEmpty() {
		return map[string]any{}
	}
	dims := make(map[string]any, len(r.Dimensions))
	for name, values := range r.Dimensions {
		list := make([]any, len(values))
		for i, value := range values {
			list[i] = value
		}
		dims[name] = list
	}
	targets := make(map[string]any, len(r.TargetDimensions))
	for name, value := range r.TargetDimensions {
		targets[name] = value
	}
	return map[string]any{
		"dimensions":       dims,
		"targetDimensions": targets,
	}
}

// MarshalJSON keeps the empty and non-empty shapes distinct: the empty Result
// encodes as {} while a matched or defaulted one always carries both keys.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.IsEmpty() {
		return []byte("{}"), nil
	}
	type payload struct {
		Dimensions       map[string][]string `json:"dimensions"`
		TargetDimensions map[string]string   `json:"targetDimensions"`
	}
	out := payload{
		Dimensions:       r.Dimensions,
		TargetDimensions: r.TargetDimensions,
	}
	if out.Dimensions == nil {
		out.Dimensions = map[string][]string{}
	}
	if out.TargetDimensions == nil {
		out.TargetDimensions = map[string]string{}
	}
	return json.Marshal(out)
}
