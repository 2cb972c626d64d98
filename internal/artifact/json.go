package artifact

import (
	"encoding/json"
	"fmt"
	"io"
)

// Wire shapes for artifacts shipped as JSON by the offline compiler.
// Loader-based normalization sources cannot be expressed on disk; decoded
// artifacts always carry an immediate AST.

type networkRequestInfoJSON struct {
	QueryText        string              `json:"queryText"`
	NormalizationAST []NormalizationNode `json:"normalizationAst"`
}

type readerWithRefetchQueriesJSON struct {
	ReaderArtifact       *ReaderArtifact `json:"readerArtifact"`
	NestedRefetchQueries []RefetchQuery  `json:"nestedRefetchQueries,omitempty"`
}

type entrypointJSON struct {
	Kind                     string                       `json:"kind"`
	ID                       string                       `json:"id"`
	ConcreteType             string                       `json:"concreteType"`
	NetworkRequestInfo       networkRequestInfoJSON       `json:"networkRequestInfo"`
	ReaderWithRefetchQueries readerWithRefetchQueriesJSON `json:"readerWithRefetchQueries"`
}

type refetchJSON struct {
	Kind               string                 `json:"kind"`
	ID                 string                 `json:"id"`
	ConcreteType       string                 `json:"concreteType"`
	NetworkRequestInfo networkRequestInfoJSON `json:"networkRequestInfo"`
}

// DecodeEntrypoint decodes an entrypoint artifact from its JSON form.
func DecodeEntrypoint(r io.Reader) (*Entrypoint, error) {
	var w entrypointJSON
	if err := json.NewDecoder(r).Decode(&w); err != nil {
		return nil, fmt.Errorf("decode entrypoint: %w", err)
	}
	if w.Kind != "Entrypoint" {
		return nil, fmt.Errorf("decode entrypoint: unexpected kind %q", w.Kind)
	}
	if w.ReaderWithRefetchQueries.ReaderArtifact == nil {
		return nil, fmt.Errorf("decode entrypoint %q: missing reader artifact", w.ID)
	}
	return &Entrypoint{
		ID:           w.ID,
		ConcreteType: w.ConcreteType,
		NetworkRequestInfo: NetworkRequestInfo{
			QueryText:     w.NetworkRequestInfo.QueryText,
			Normalization: NormalizationSource{AST: w.NetworkRequestInfo.NormalizationAST},
		},
		ReaderWithRefetchQueries: ReaderWithRefetchQueries{
			Reader:               w.ReaderWithRefetchQueries.ReaderArtifact,
			NestedRefetchQueries: w.ReaderWithRefetchQueries.NestedRefetchQueries,
		},
	}, nil
}

// DecodeRefetch decodes a refetch artifact from its JSON form.
func DecodeRefetch(r io.Reader) (*RefetchArtifact, error) {
	var w refetchJSON
	if err := json.NewDecoder(r).Decode(&w); err != nil {
		return nil, fmt.Errorf("decode refetch artifact: %w", err)
	}
	if w.Kind != "RefetchQuery" {
		return nil, fmt.Errorf("decode refetch artifact: unexpected kind %q", w.Kind)
	}
	return &RefetchArtifact{
		ID:           w.ID,
		ConcreteType: w.ConcreteType,
		NetworkRequestInfo: NetworkRequestInfo{
			QueryText:     w.NetworkRequestInfo.QueryText,
			Normalization: NormalizationSource{AST: w.NetworkRequestInfo.NormalizationAST},
		},
	}, nil
}
