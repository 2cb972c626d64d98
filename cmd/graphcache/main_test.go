package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testEntrypointJSON = `{
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
            {"kind": "Scalar", "field": "name"}
          ]
        }
      ]
    }
  }
}`

func writeTestArtifact(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "entrypoint.json")
	if err := os.WriteFile(path, []byte(testEntrypointJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunFetch_NoPolicyAgainstEmptyStoreFailsCleanly(t *testing.T) {
	path := writeTestArtifact(t)

	// -policy no never touches the network, so the bogus endpoint is never
	// dialed. With nothing in the store there is nothing to read, and that
	// must surface as an error, not a crash.
	err := run([]string{
		"fetch",
		"-endpoint", "http://127.0.0.1:9/graphql",
		"-artifact", path,
		"-policy", "no",
	})
	if err == nil {
		t.Fatal("expected an error when the store holds no data")
	}
	if !strings.Contains(err.Error(), "does not hold the data") {
		t.Fatalf("got %v", err)
	}
}

func TestRunFetch_RejectsInvalidPolicy(t *testing.T) {
	path := writeTestArtifact(t)
	err := run([]string{
		"fetch",
		"-endpoint", "http://127.0.0.1:9/graphql",
		"-artifact", path,
		"-policy", "maybe",
	})
	if err == nil || !strings.Contains(err.Error(), "invalid -policy") {
		t.Fatalf("got %v", err)
	}
}

func TestRunValidate(t *testing.T) {
	path := writeTestArtifact(t)
	if err := run([]string{"validate", "-artifact", path}); err != nil {
		t.Fatal(err)
	}

	broken := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(broken, []byte(`{"kind": "Entrypoint"`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := run([]string{"validate", "-artifact", broken}); err == nil {
		t.Fatal("expected an error for a corrupt artifact file")
	}
}
