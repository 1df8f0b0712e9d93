package ports

// NodeRef is an opaque handle to a rendered question node. The engine only
// ever compares refs for identity and passes them back to the ViewTree that
// produced them.
type NodeRef interface {
	// NodeID returns the view identity of the node: the question ID for
	// standard questions, domain.OptionNodeID for option-specific variants.
	NodeID() string
}

// ViewTree is the mutable rendered hierarchy the engine reconciles against.
// One tree spans one rendered step; all nodes share that step container as
// their parent. Implementations are not required to be goroutine-safe: the
// session serializes every mutation.
type ViewTree interface {
	// QueryByID returns the live node with the given view identity, or nil.
	QueryByID(id string) NodeRef

	// InsertBefore places node immediately before ref.
	InsertBefore(node, ref NodeRef) error

	// Append places node at the end of the container.
	Append(node NodeRef) error

	// Remove physically detaches the node.
	Remove(node NodeRef) error

	// NextSibling returns the node immediately following ref, or nil when ref
	// is last. The option-specific path uses it to express insert-after in
	// terms of InsertBefore.
	NextSibling(ref NodeRef) NodeRef

	// SetVisualFlag toggles a named cosmetic flag on the node (for example
	// "leaving" during the deferred-removal window). Purely presentational.
	SetVisualFlag(node NodeRef, name string, value bool)
}
