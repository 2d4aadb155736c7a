package source

import "sync/atomic"

// NodeId is the dense integer key used to look up a node's resolution
// (NodeId -> SymbolId) or its type (NodeId -> Type), per §3. Parser-
// assigned ids start at 0; the desugar pass mints fresh ids from
// DesugarIDBase so synthesized nodes can never collide with a
// parser-assigned id.
type NodeId uint32

// DesugarIDBase is the reserved start of the desugar pass's private id
// range (§3, §4.3). 2^28 leaves parser ids a very large runway while
// still fitting comfortably in a uint32.
const DesugarIDBase NodeId = 1 << 28

// IDAllocator mints sequential NodeIds starting from a given base. The
// parser owns one instance per package compilation starting at 0; the
// desugar pass owns a second instance starting at DesugarIDBase.
type IDAllocator struct {
	next uint32
}

// NewIDAllocator creates an allocator that will hand out base, base+1, ...
func NewIDAllocator(base NodeId) *IDAllocator {
	return &IDAllocator{next: uint32(base)}
}

// Next returns a fresh, previously-unissued NodeId.
func (a *IDAllocator) Next() NodeId {
	return NodeId(atomic.AddUint32(&a.next, 1) - 1)
}
