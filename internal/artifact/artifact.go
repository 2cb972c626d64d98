// Package artifact defines the compiled artifacts the runtime consumes:
// normalization ASTs describing how a response payload maps onto store
// writes, reader ASTs describing how a value tree is read back out, and
// the entrypoint/refetch envelopes produced by the offline compiler.
//
// Artifacts may reference each other (refetch fields point back into the
// same entrypoint family), so cross references are artifact IDs resolved
// through a Registry rather than direct ownership links.
package artifact

import (
	"context"
)

// ValueKind discriminates argument values.
type ValueKind string

const (
	// Literal argument values are used verbatim.
	Literal ValueKind = "Literal"
	// Variable argument values are resolved from the request variables.
	Variable ValueKind = "Variable"
)

// ArgumentValue is a literal value or a reference to a request variable.
type ArgumentValue struct {
	Kind  ValueKind `json:"kind"`
	Value any       `json:"value,omitempty"` // Literal payload
	Name  string    `json:"name,omitempty"`  // Variable name
}

// Argument is one field argument as compiled into an AST node.
type Argument struct {
	Name  string        `json:"name"`
	Value ArgumentValue `json:"value"`
}

// NormalizationKind discriminates normalization AST nodes.
type NormalizationKind string

const (
	// NormalizationScalar writes the literal payload value at the field key.
	NormalizationScalar NormalizationKind = "Scalar"
	// NormalizationLinked resolves child entity identity and recurses.
	NormalizationLinked NormalizationKind = "Linked"
	// NormalizationRefetchReference points at a secondary refetch artifact
	// in the registry. It has no counterpart in the response payload; it is
	// consumed by imperative refetch flows.
	NormalizationRefetchReference NormalizationKind = "RefetchReference"
)

// NormalizationNode is one node of a normalization AST.
type NormalizationNode struct {
	Kind NormalizationKind `json:"kind"`

	// Field and Args identify the store slot for Scalar and Linked nodes.
	Field string     `json:"field,omitempty"`
	Args  []Argument `json:"args,omitempty"`

	// ConcreteType is the static child type of a monomorphic Linked field.
	// The response's __typename wins when present.
	ConcreteType string `json:"concreteType,omitempty"`

	// Selections are the child selections of a Linked node.
	Selections []NormalizationNode `json:"selections,omitempty"`

	// RefetchArtifactID names the refetch artifact of a RefetchReference.
	RefetchArtifactID string `json:"refetchArtifactId,omitempty"`
}

// ReaderKind discriminates reader AST nodes.
type ReaderKind string

const (
	ReaderScalar   ReaderKind = "Scalar"
	ReaderLinked   ReaderKind = "Linked"
	ReaderResolver ReaderKind = "Resolver"
)

// ResolverVariant distinguishes the two resolver read contracts.
type ResolverVariant string

const (
	// ResolverEager resolvers run during the read and their return value is
	// substituted in place as scalar data.
	ResolverEager ResolverVariant = "Eager"
	// ResolverComponent resolvers produce a rendering-layer handle that is
	// memoized per (resolver, root, variables) and referentially stable
	// across repeated reads.
	ResolverComponent ResolverVariant = "Component"
)

// ResolverRef names a resolver and its variant. Eager resolver functions
// are looked up in the Registry by name; component handles are minted by
// the reader's component cache.
type ResolverRef struct {
	Name               string          `json:"name"`
	Variant            ResolverVariant `json:"variant"`
	UsedRefetchQueries []int           `json:"usedRefetchQueries,omitempty"` // indexes into the entrypoint's nested refetch queries
}

// ReaderNode is one node of a reader AST.
type ReaderNode struct {
	Kind ReaderKind `json:"kind"`

	// Field and Args identify the store slot for Scalar and Linked nodes.
	Field string     `json:"field,omitempty"`
	Args  []Argument `json:"args,omitempty"`

	// Alias is the output key; it defaults to Field when empty.
	Alias string `json:"alias,omitempty"`

	// Selections are the child selections of a Linked node, or the data
	// selections passed to an eager resolver.
	Selections []ReaderNode `json:"selections,omitempty"`

	// Resolver is set on Resolver nodes.
	Resolver *ResolverRef `json:"resolver,omitempty"`
}

// OutputName returns the key the node's value appears under in a read
// value tree.
func (n ReaderNode) OutputName() string {
	if n.Alias != "" {
		return n.Alias
	}
	if n.Kind == ReaderResolver && n.Resolver != nil {
		return n.Resolver.Name
	}
	return n.Field
}

// NormalizationSource is a normalization AST that is available either
// immediately or through an asynchronous loader. Loader-based sources
// cannot serve presence-gated fetch policies because the presence check
// would have to wait for the loader.
type NormalizationSource struct {
	AST    []NormalizationNode
	Loader func(ctx context.Context) ([]NormalizationNode, error)
}

// IsLoader reports whether the AST is only available asynchronously.
func (s NormalizationSource) IsLoader() bool {
	return s.AST == nil && s.Loader != nil
}

// Resolve returns the AST, invoking the loader if needed.
func (s NormalizationSource) Resolve(ctx context.Context) ([]NormalizationNode, error) {
	if s.AST != nil || s.Loader == nil {
		return s.AST, nil
	}
	return s.Loader(ctx)
}

// NetworkRequestInfo carries what a network round trip needs: the query
// text sent over the injected transport and the normalization AST used to
// write the response into the store.
type NetworkRequestInfo struct {
	QueryText     string
	Normalization NormalizationSource
}

// RefetchQuery references a refetch artifact usable from a reader's
// resolver selections.
type RefetchQuery struct {
	ArtifactID string `json:"artifactId"`
}

// ReaderArtifact is a compiled reader AST rooted at a concrete type.
type ReaderArtifact struct {
	ID           string       `json:"id"`
	ConcreteType string       `json:"concreteType"`
	Selections   []ReaderNode `json:"selections"`
}

// ReaderWithRefetchQueries pairs a reader artifact with the refetch
// queries its resolvers may use.
type ReaderWithRefetchQueries struct {
	Reader               *ReaderArtifact
	NestedRefetchQueries []RefetchQuery
}

// Entrypoint is the compiled artifact for a fetchable query.
type Entrypoint struct {
	ID                       string
	ConcreteType             string // root type name, e.g. "Query"
	NetworkRequestInfo       NetworkRequestInfo
	ReaderWithRefetchQueries ReaderWithRefetchQueries
}

// RefetchArtifact is an entrypoint minus the reader, used for imperative
// refetch and mutation flows. Its responses normalize into the same store.
type RefetchArtifact struct {
	ID                 string
	ConcreteType       string
	NetworkRequestInfo NetworkRequestInfo
}
