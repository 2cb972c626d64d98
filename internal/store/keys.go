package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	artifact "github.com/hanpama/graphcache/internal/artifact"
)

// FieldKey computes the store slot for a field selection. The writer and
// every reader compute keys with this function, so two selections of the
// same field with the same resolved arguments collide to one slot and
// different arguments never collide.
//
// Arguments are canonicalized by sorting on name and JSON-encoding the
// resolved value (encoding/json sorts map keys, so object values are
// deterministic too). A variable missing from the request variables
// resolves to null.
func FieldKey(field string, args []artifact.Argument, variables map[string]any) string {
	if len(args) == 0 {
		return field
	}
	resolved := make([]string, len(args))
	for i, a := range args {
		v := ResolveArgument(a.Value, variables)
		resolved[i] = a.Name + ":" + canonicalValue(v)
	}
	sort.Strings(resolved)
	return field + "(" + strings.Join(resolved, ",") + ")"
}

// ResolveArgument resolves an argument value against the request variables.
func ResolveArgument(v artifact.ArgumentValue, variables map[string]any) any {
	switch v.Kind {
	case artifact.Variable:
		return variables[v.Name]
	default:
		return v.Value
	}
}

// CanonicalVariables returns a deterministic encoding of a variables map,
// used in retained-query and component-cache keys.
func CanonicalVariables(variables map[string]any) string {
	if len(variables) == 0 {
		return "{}"
	}
	return canonicalValue(variables)
}

func canonicalValue(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
