package dimensions

import (
	"fmt"
	"net/http"
	"net/url"
)

// Function adapts the resolver to the registry calling convention. The
// returned function accepts one request descriptor (URI string, Input,
// *url.URL, *http.Request or a map with "host" and "path") or a host and a
// path as two strings, and returns Result.AsMap().
func (r *Resolver) Function() Function {
	return func(args ...any) (any, error) {
		input, err := inputFromArgs(args)
		if err != nil {
			return nil, err
		}
		return r.Resolve(input).AsMap(), nil
	}
}

// Register adds the resolver function to registry under FunctionName.
func (r *Resolver) Register(registry *FunctionRegistry) error {
	if registry == nil {
		return fmt.Errorf("dimensions: function registry is nil")
	}
	return registry.Register(r.FunctionName(), r.Function())
}

func inputFromArgs(args []any) (Input, error) {
	switch len(args) {
	case 1:
		return inputFromValue(args[0])
	case 2:
		host, okHost := args[0].(string)
		path, okPath := args[1].(string)
		if !okHost || !okPath {
			return Input{}, fmt.Errorf("dimensions: host and path must be strings, got %T and %T", args[0], args[1])
		}
		return Input{Host: host, Path: path}, nil
	default:
		return Input{}, fmt.Errorf("dimensions: expected a request uri or host and path, got %d arguments", len(args))
	}
}

func inputFromValue(value any) (Input, error) {
	switch v := value.(type) {
	case nil:
		return Input{}, nil
	case string:
		return ParseInput(v)
	case Input:
		return v, nil
	case *Input:
		if v == nil {
			return Input{}, nil
		}
		return *v, nil
	case *url.URL:
		return InputFromURL(v), nil
	case url.URL:
		return InputFromURL(&v), nil
	case *http.Request:
		return InputFromRequest(v), nil
	case map[string]any:
		host, _ := v["host"].(string)
		path, _ := v["path"].(string)
		return Input{Host: host, Path: path}, nil
	case map[string]string:
		return Input{Host: v["host"], Path: v["path"]}, nil
	default:
		return Input{}, fmt.Errorf("dimensions: unsupported request descriptor %T", value)
	}
}
