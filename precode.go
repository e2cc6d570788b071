package raptorq

// buildPrecode constructs the L x L precode matrix A, RFC 6330 section
// 5.3.3: LDPC rows (LDPC1 | identity | LDPC2), HDPC rows (MT*GAMMA |
// identity), then one G_ENC row per source symbol. Grounded row-for-row
// on original_source/src/Precode_Matrix.cpp.
func buildPrecode(p *Parameters) *denseMtx {
	return buildPrecodeOverhead(p, 0)
}

// buildPrecodeOverhead builds A with `overhead` extra zero rows appended
// below row L (spec.md section 4.3 step 7's "zero-extension rows"), for
// the decoder to fill in with repair-symbol dependencies via
// decodePhase0 before the solver runs.
func buildPrecodeOverhead(p *Parameters, overhead int) *denseMtx {
	a := newDenseMtx(p.L+overhead, p.L)

	initLDPC1(a, p.S, p.B)
	addIdentity(a, p.S, 0, p.B)
	initLDPC2(a, p.W, p.S, p.P)

	mt := makeMT(p.H, p.W)
	gamma := makeGamma(p.W)
	hdpc := mt.mul(gamma)
	for r := 0; r < p.H; r++ {
		copy(a.row(p.S+r)[:p.W], hdpc.row(r))
	}
	addIdentity(a, p.H, p.S, p.W)

	for row := p.S + p.H; row < p.L; row++ {
		isi := uint32(row - p.S - p.H)
		for _, col := range p.getIdxs(isi) {
			a.set(row, col, 1)
		}
	}

	return a
}

// initLDPC1 fills the S x B circulant submatrix occupying the top-left
// corner of A.
func initLDPC1(a *denseMtx, s, b int) {
	for col := 0; col < b; col++ {
		submtx := col / s
		r1 := col % s
		r2 := (col + submtx + 1) % s
		r3 := (col + 2*(submtx+1)) % s
		a.set(r1, col, octAdd(a.at(r1, col), 1))
		a.set(r2, col, octAdd(a.at(r2, col), 1))
		a.set(r3, col, octAdd(a.at(r3, col), 1))
	}
}

// initLDPC2 fills the S x P submatrix at column offset skip: each row
// gets two consecutive ones, shifted by row.
func initLDPC2(a *denseMtx, skip, rows, cols int) {
	for row := 0; row < rows; row++ {
		c1 := row % cols
		c2 := (row + 1) % cols
		a.set(row, skip+c1, 1)
		a.set(row, skip+c2, 1)
	}
}

// addIdentity ORs an identity block of the given size into A at
// (skipRow, skipCol).
func addIdentity(a *denseMtx, size, skipRow, skipCol int) {
	for i := 0; i < size; i++ {
		a.set(skipRow+i, skipCol+i, octAdd(a.at(skipRow+i, skipCol+i), 1))
	}
}

// makeMT builds the H x W HDPC seed matrix, RFC 6330 section 5.3.3.3: for
// every column but the last, two rows are set to 1 via Rand; the last
// column holds exp-table entries.
func makeMT(h, w int) *denseMtx {
	m := newDenseMtx(h, w)
	for col := 0; col < w-1; col++ {
		r1 := int(randp(uint64(col+1), 6, uint32(h)))
		r2 := int((uint32(r1) + randp(uint64(col+1), 7, uint32(h-1)) + 1) % uint32(h))
		m.set(r1, col, octAdd(m.at(r1, col), 1))
		m.set(r2, col, octAdd(m.at(r2, col), 1))
	}
	for row := 0; row < h; row++ {
		m.set(row, w-1, expTable[row])
	}
	return m
}

// makeGamma builds the W x W lower-triangular GAMMA matrix used to spread
// the HDPC seed rows across every LT/PI column.
func makeGamma(size int) *denseMtx {
	m := newDenseMtx(size, size)
	for row := 0; row < size; row++ {
		for col := 0; col <= row; col++ {
			m.set(row, col, expTable[(row-col)%255])
		}
	}
	return m
}

// decodePhase0 rewrites A's rows for missing source symbols, and the
// overhead rows appended below L, to hold the dependencies of the repair
// symbols that actually filled them, in place of the source G_ENC rows
// buildPrecodeOverhead assumed. Grounded method-for-method on
// original_source/src/Precode_Matrix_solver.cpp's decode_phase0: holes is
// the ascending list of missing source ESIs (all < p.K), repairESI is the
// ascending list of received repair ESIs -- the first len(holes) of them
// are consumed, in order, to patch the hole rows; whatever remains fills
// the overhead rows in the same order.
func decodePhase0(p *Parameters, a *denseMtx, holes []int, repairESI []uint32) {
	padding := uint32(p.KPadded - p.K)
	ri := 0
	patchRow := func(row int, esi uint32) {
		isi := esi + padding
		a.zeroRow(row)
		for _, col := range p.getIdxs(isi) {
			a.set(row, col, 1)
		}
	}
	for _, hole := range holes {
		patchRow(hole+p.S+p.H, repairESI[ri])
		ri++
	}
	for row := p.L; row < a.rows; row++ {
		patchRow(row, repairESI[ri])
		ri++
	}
}
