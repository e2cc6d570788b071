package raptorq

// operation is a single reified step of the solver, recorded so a later
// decode of the same (L, holes, repair-ESI-set) shape can replay it as a
// single matrix multiply instead of re-running Gaussian elimination.
// Grounded on original_source/src/Operation.cpp's five concrete types and
// the wire tags in SPEC_FULL.md section 7.
type operation interface {
	// apply performs the operation in place on m.
	apply(m *denseMtx)
	// buildMtx composes the operation into a running replay matrix, the
	// same role as Operation::build_mtx in original_source.
	buildMtx(m *denseMtx)
	tag() byte
}

const (
	opTagSwap byte = 0x01 + iota
	opTagAddMul
	opTagDiv
	opTagBlock
	opTagReorder
)

type opSwapRows struct{ a, b int }

func (o opSwapRows) apply(m *denseMtx)    { m.swapRows(o.a, o.b) }
func (o opSwapRows) buildMtx(m *denseMtx) { m.swapRows(o.a, o.b) }
func (o opSwapRows) tag() byte            { return opTagSwap }

type opAddMul struct {
	dst, src int
	factor   octet
}

func (o opAddMul) apply(m *denseMtx)    { m.addMulRow(o.dst, o.src, o.factor) }
func (o opAddMul) buildMtx(m *denseMtx) { m.addMulRow(o.dst, o.src, o.factor) }
func (o opAddMul) tag() byte            { return opTagAddMul }

type opDiv struct {
	row    int
	factor octet // already inverted: apply scales by this value
}

func (o opDiv) apply(m *denseMtx)    { m.scaleRow(o.row, o.factor) }
func (o opDiv) buildMtx(m *denseMtx) { m.scaleRow(o.row, o.factor) }
func (o opDiv) tag() byte            { return opTagDiv }

// opBlock left-multiplies rows [0,size) by a dense block, the replay of
// solver phase 3's sparsity-restoring multiply by the X snapshot.
type opBlock struct {
	block *denseMtx // size x size
}

func (o opBlock) apply(m *denseMtx) {
	top := m.subClone(o.block.rows, m.cols)
	prod := o.block.mul(top)
	for r := 0; r < prod.rows; r++ {
		m.setRow(r, prod.row(r))
	}
}

func (o opBlock) buildMtx(m *denseMtx) { o.apply(m) }
func (o opBlock) tag() byte            { return opTagBlock }

// opReorder permutes rows according to perm (perm[i] is the source row
// that ends up at position i), replaying the un-permutation solver phase
// does at the end of intermediate().
type opReorder struct {
	perm []int
}

func (o opReorder) apply(m *denseMtx) {
	out := newDenseMtx(m.rows, m.cols)
	for i, src := range o.perm {
		out.setRow(i, m.row(src))
	}
	copy(m.data, out.data)
}

func (o opReorder) buildMtx(m *denseMtx) { o.apply(m) }
func (o opReorder) tag() byte            { return opTagReorder }
