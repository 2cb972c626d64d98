package store_test

import (
	"testing"

	artifact "github.com/hanpama/graphcache/internal/artifact"
	store "github.com/hanpama/graphcache/internal/store"
)

func lit(name string, v any) artifact.Argument {
	return artifact.Argument{Name: name, Value: artifact.ArgumentValue{Kind: artifact.Literal, Value: v}}
}

func varArg(name, variable string) artifact.Argument {
	return artifact.Argument{Name: name, Value: artifact.ArgumentValue{Kind: artifact.Variable, Name: variable}}
}

func TestFieldKey_NoArgs(t *testing.T) {
	if got := store.FieldKey("name", nil, nil); got != "name" {
		t.Fatalf("got %q", got)
	}
}

func TestFieldKey_SameResolvedArgumentsCollide(t *testing.T) {
	a := store.FieldKey("user", []artifact.Argument{lit("id", "4")}, nil)
	b := store.FieldKey("user", []artifact.Argument{varArg("id", "userId")}, map[string]any{"userId": "4"})
	if a != b {
		t.Fatalf("expected equal keys, got %q vs %q", a, b)
	}
}

func TestFieldKey_DifferentArgumentsNeverCollide(t *testing.T) {
	a := store.FieldKey("user", []artifact.Argument{lit("id", "4")}, nil)
	b := store.FieldKey("user", []artifact.Argument{lit("id", "5")}, nil)
	if a == b {
		t.Fatalf("keys must differ, both %q", a)
	}
}

func TestFieldKey_ArgumentOrderIsCanonical(t *testing.T) {
	a := store.FieldKey("search", []artifact.Argument{lit("first", 10), lit("after", "x")}, nil)
	b := store.FieldKey("search", []artifact.Argument{lit("after", "x"), lit("first", 10)}, nil)
	if a != b {
		t.Fatalf("expected order-independent keys, got %q vs %q", a, b)
	}
}

func TestFieldKey_MissingVariableResolvesToNull(t *testing.T) {
	a := store.FieldKey("user", []artifact.Argument{varArg("id", "missing")}, map[string]any{})
	b := store.FieldKey("user", []artifact.Argument{lit("id", nil)}, nil)
	if a != b {
		t.Fatalf("expected %q, got %q", b, a)
	}
}

func TestCanonicalVariables(t *testing.T) {
	if got := store.CanonicalVariables(nil); got != "{}" {
		t.Fatalf("nil variables: got %q", got)
	}
	a := store.CanonicalVariables(map[string]any{"a": 1, "b": "x"})
	b := store.CanonicalVariables(map[string]any{"b": "x", "a": 1})
	if a != b {
		t.Fatalf("expected deterministic encoding, got %q vs %q", a, b)
	}
}
