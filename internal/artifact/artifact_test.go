package artifact_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	artifact "github.com/hanpama/graphcache/internal/artifact"
)

const entrypointJSON = `{
  "kind": "Entrypoint",
  "id": "Query.currentUser",
  "concreteType": "Query",
  "networkRequestInfo": {
    "queryText": "query CurrentUser { current_user { id name } }",
    "normalizationAst": [
      {
        "kind": "Linked",
        "field": "current_user",
        "concreteType": "User",
        "selections": [
          {"kind": "Scalar", "field": "id"},
          {"kind": "Scalar", "field": "name"}
        ]
      }
    ]
  },
  "readerWithRefetchQueries": {
    "readerArtifact": {
      "id": "Query.currentUser",
      "concreteType": "Query",
      "selections": [
        {
          "kind": "Linked",
          "field": "current_user",
          "selections": [
            {"kind": "Scalar", "field": "id"},
            {"kind": "Scalar", "field": "name", "alias": "displayName"}
          ]
        }
      ]
    },
    "nestedRefetchQueries": [
      {"artifactId": "User.refetch"}
    ]
  }
}`

func TestDecodeEntrypoint(t *testing.T) {
	ep, err := artifact.DecodeEntrypoint(strings.NewReader(entrypointJSON))
	if err != nil {
		t.Fatal(err)
	}

	if ep.ID != "Query.currentUser" || ep.ConcreteType != "Query" {
		t.Fatalf("identity: got %q / %q", ep.ID, ep.ConcreteType)
	}
	if ep.NetworkRequestInfo.Normalization.IsLoader() {
		t.Fatal("decoded artifacts must carry an immediate AST")
	}

	wantNorm := []artifact.NormalizationNode{{
		Kind:         artifact.NormalizationLinked,
		Field:        "current_user",
		ConcreteType: "User",
		Selections: []artifact.NormalizationNode{
			{Kind: artifact.NormalizationScalar, Field: "id"},
			{Kind: artifact.NormalizationScalar, Field: "name"},
		},
	}}
	if diff := cmp.Diff(wantNorm, ep.NetworkRequestInfo.Normalization.AST); diff != "" {
		t.Errorf("normalization AST mismatch (-want +got):\n%s", diff)
	}

	sel := ep.ReaderWithRefetchQueries.Reader.Selections[0].Selections
	if got := sel[1].OutputName(); got != "displayName" {
		t.Errorf("aliased output name: got %q", got)
	}
	if got := sel[0].OutputName(); got != "id" {
		t.Errorf("plain output name: got %q", got)
	}

	nested := ep.ReaderWithRefetchQueries.NestedRefetchQueries
	if len(nested) != 1 || nested[0].ArtifactID != "User.refetch" {
		t.Errorf("nested refetch queries: got %+v", nested)
	}
}

func TestDecodeEntrypoint_RejectsWrongKind(t *testing.T) {
	_, err := artifact.DecodeEntrypoint(strings.NewReader(`{"kind": "RefetchQuery", "id": "x"}`))
	if err == nil || !strings.Contains(err.Error(), "unexpected kind") {
		t.Fatalf("got %v", err)
	}
}

func TestDecodeEntrypoint_RequiresReader(t *testing.T) {
	_, err := artifact.DecodeEntrypoint(strings.NewReader(`{"kind": "Entrypoint", "id": "x", "networkRequestInfo": {"queryText": "query Q { a }"}}`))
	if err == nil || !strings.Contains(err.Error(), "missing reader artifact") {
		t.Fatalf("got %v", err)
	}
}

func TestDecodeRefetch(t *testing.T) {
	ra, err := artifact.DecodeRefetch(strings.NewReader(`{
	  "kind": "RefetchQuery",
	  "id": "User.refetch",
	  "concreteType": "User",
	  "networkRequestInfo": {
	    "queryText": "query RefetchUser($id: ID!) { node(id: $id) { ... on User { name } } }",
	    "normalizationAst": [{"kind": "Scalar", "field": "name"}]
	  }
	}`))
	if err != nil {
		t.Fatal(err)
	}
	if ra.ID != "User.refetch" || ra.ConcreteType != "User" {
		t.Fatalf("identity: got %q / %q", ra.ID, ra.ConcreteType)
	}
	if len(ra.NetworkRequestInfo.Normalization.AST) != 1 {
		t.Fatalf("AST: got %+v", ra.NetworkRequestInfo.Normalization.AST)
	}
}

func TestRegistry_RoundTrip(t *testing.T) {
	reg := artifact.NewRegistry()
	ep, err := artifact.DecodeEntrypoint(strings.NewReader(entrypointJSON))
	if err != nil {
		t.Fatal(err)
	}

	if err := reg.RegisterEntrypoint(ep); err != nil {
		t.Fatal(err)
	}
	got, err := reg.Entrypoint("Query.currentUser")
	if err != nil || got != ep {
		t.Fatalf("lookup: got (%v, %v)", got, err)
	}
	if _, err := reg.Entrypoint("Query.missing"); err == nil {
		t.Fatal("unknown id must fail")
	}
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	reg := artifact.NewRegistry()
	ep, err := artifact.DecodeEntrypoint(strings.NewReader(entrypointJSON))
	if err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterEntrypoint(ep); err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterEntrypoint(ep); err == nil || !strings.Contains(err.Error(), "already registered") {
		t.Fatalf("got %v", err)
	}
}

func TestRegistry_RejectsInvalidQueryText(t *testing.T) {
	reg := artifact.NewRegistry()
	err := reg.RegisterEntrypoint(&artifact.Entrypoint{
		ID: "Query.broken",
		NetworkRequestInfo: artifact.NetworkRequestInfo{
			QueryText: "query Broken { current_user {",
		},
	})
	if err == nil || !strings.Contains(err.Error(), "invalid query text") {
		t.Fatalf("got %v", err)
	}
}

func TestRegistry_Resolvers(t *testing.T) {
	reg := artifact.NewRegistry()
	fn := func(data, parameters map[string]any) any { return data["name"] }
	if err := reg.RegisterResolver("User.greeting", fn); err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterResolver("User.greeting", fn); err == nil {
		t.Fatal("duplicate resolver name must fail")
	}
	got, err := reg.Resolver("User.greeting")
	if err != nil {
		t.Fatal(err)
	}
	if v := got(map[string]any{"name": "Ada"}, nil); v != "Ada" {
		t.Fatalf("resolver result: got %v", v)
	}
	if _, err := reg.Resolver("User.unknown"); err == nil {
		t.Fatal("unknown resolver must fail")
	}
}
