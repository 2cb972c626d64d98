// Package language wraps the GraphQL query parser used to validate
// compiled artifact query text before it is admitted to the registry.
package language

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

type QueryDocument = ast.QueryDocument

// ParseQuery parses a GraphQL executable document. Artifact query text is
// produced by the offline compiler; a syntax error here means the artifact
// file is corrupt or from an incompatible compiler version.
func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}
