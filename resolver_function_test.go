package dimensions

import (
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"
)

func TestFunctionRegistryLookupsIgnoreCase(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("Upper", func(args ...any) (any, error) {
		return strings.ToUpper(args[0].(string)), nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register("upper", func(...any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if !registry.Has("UPPER") {
		t.Fatalf("expected case-insensitive Has")
	}
	got, err := registry.Call("upper", "de")
	if err != nil || got != "DE" {
		t.Fatalf("unexpected call result %v, %v", got, err)
	}
	if names := registry.Names(); !reflect.DeepEqual(names, []string{"Upper"}) {
		t.Fatalf("expected registration spelling, got %v", names)
	}
	if _, err := registry.Call("missing"); err == nil {
		t.Fatalf("expected error for unknown function")
	}

	clone := registry.Clone()
	_ = clone.Register("extra", func(...any) (any, error) { return nil, nil })
	if registry.Has("extra") {
		t.Fatalf("expected clone to be independent")
	}
}

func TestResolverFunctionAcceptsRequestDescriptors(t *testing.T) {
	resolver := NewResolver(languageConfig())
	fn := resolver.Function()

	u, _ := url.Parse("https://example.com/de/page")
	req := httptest.NewRequest("GET", "https://example.com/de/page", nil)
	input := Input{Host: "example.com", Path: "/de/page"}

	cases := []struct {
		name string
		args []any
	}{
		{name: "uri", args: []any{"https://example.com/de/page"}},
		{name: "path", args: []any{"/de/page"}},
		{name: "input", args: []any{input}},
		{name: "input pointer", args: []any{&input}},
		{name: "url", args: []any{u}},
		{name: "request", args: []any{req}},
		{name: "map", args: []any{map[string]any{"host": "example.com", "path": "/de/page"}}},
		{name: "string map", args: []any{map[string]string{"path": "/de/page"}}},
		{name: "host and path", args: []any{"example.com", "/de/page"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := fn(tc.args...)
			if err != nil {
				t.Fatalf("call: %v", err)
			}
			context, ok := out.(map[string]any)
			if !ok {
				t.Fatalf("expected map result, got %T", out)
			}
			targets := context["targetDimensions"].(map[string]any)
			if targets["language"] != "de" {
				t.Fatalf("expected de, got %v", targets["language"])
			}
			values := context["dimensions"].(map[string]any)["language"]
			if !reflect.DeepEqual(values, []any{"de"}) {
				t.Fatalf("expected [de], got %v", values)
			}
		})
	}
}

func TestResolverFunctionRejectsBadArguments(t *testing.T) {
	fn := NewResolver(languageConfig()).Function()
	for _, args := range [][]any{{}, {42}, {"a", 1}, {"a", "b", "c"}} {
		if _, err := fn(args...); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestResolverRegisterUsesFunctionName(t *testing.T) {
	registry := NewFunctionRegistry()
	resolver := NewResolver(languageConfig(), WithFunctionName("dims"))
	if err := resolver.Register(registry); err != nil {
		t.Fatalf("register: %v", err)
	}
	if !registry.Has("dims") || registry.Has(DefaultFunctionName) {
		t.Fatalf("expected registration under custom name, got %v", registry.Names())
	}
	if err := resolver.Register(nil); err == nil {
		t.Fatalf("expected error for nil registry")
	}
}

func TestResolverFunctionEmptyConfig(t *testing.T) {
	out, err := NewResolver(Config{}).Function()("/de")
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if m := out.(map[string]any); len(m) != 0 {
		t.Fatalf("expected empty map, got %v", m)
	}
}
