package ir

import "luadec/internal/graph"

// Block is a basic block: phis, then non-branching inner instructions,
// then (once finalized) exactly one terminator.
type Block struct {
	Phis       []*Phi
	Inner      []Inner
	Terminator Terminator
}

// NewBlock returns an empty, unfinalized block.
func NewBlock() *Block { return &Block{} }

// AddPhi appends a phi to the block header.
func (b *Block) AddPhi(p *Phi) { b.Phis = append(b.Phis, p) }

// AddInner appends a non-branching instruction.
func (b *Block) AddInner(i Inner) { b.Inner = append(b.Inner, i) }

// SetTerminator finalizes the block.
func (b *Block) SetTerminator(t Terminator) { b.Terminator = t }

// PhiByDest looks up a block-header phi by its result value.
func (b *Block) PhiByDest(dest ValueID) *Phi {
	for _, p := range b.Phis {
		if p.Dest == dest {
			return p
		}
	}
	return nil
}

// InstructionIndexKind discriminates an InstructionLocation's position
// within a block: among the phis, among the inner instructions, or at the
// terminator.
type InstructionIndexKind int

const (
	IndexPhi InstructionIndexKind = iota
	IndexInner
	IndexTerminator
)

// InstructionIndex identifies a position within a single block.
type InstructionIndex struct {
	Kind InstructionIndexKind
	Pos  int // meaningful only for IndexPhi / IndexInner
}

func PhiIndex(i int) InstructionIndex { return InstructionIndex{Kind: IndexPhi, Pos: i} }
func InnerIndex(i int) InstructionIndex { return InstructionIndex{Kind: IndexInner, Pos: i} }
func TerminatorIndex() InstructionIndex { return InstructionIndex{Kind: IndexTerminator} }

// Less reports whether loc precedes other within the same block, using the
// fixed phis-then-inner-then-terminator program order.
func (loc InstructionIndex) Less(other InstructionIndex) bool {
	if loc.Kind != other.Kind {
		return loc.Kind < other.Kind
	}
	return loc.Pos < other.Pos
}

// InstructionLocation identifies a program point: a node plus a position
// within that node's block.
type InstructionLocation struct {
	Node  graph.NodeID
	Index InstructionIndex
}
