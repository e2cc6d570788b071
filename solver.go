package raptorq

// solveIntermediate solves A*C = D for the L intermediate symbols C, given
// a precode matrix A with R >= L rows (R > L when the decoder has
// overhead repair symbols beyond the minimum needed) and L columns.
//
// Grounded on original_source/src/Precode_Matrix_solver.cpp's five-phase
// algorithm. Phase 1 there exploits the matrix's sparsity for speed, using
// a union-find graph to prefer rows that merge large connected components
// when several rows tie for minimum weight; phase 2 finishes the
// remaining dense block; phases 3-5 restore the sparse upper-left block
// from a snapshot before doing a final back substitution, an optimization
// that only matters for libRaptorQ's Eigen sparse/dense matrix split. This
// port has a single dense representation throughout, so phase 1 and phase
// 2 below do the full (not just forward) elimination directly and there
// is no separate restoration pass; see DESIGN.md. The elimination loop
// still tracks the phase 1/2 boundary itself (the "u" window of spec.md
// section 4.4) purely to report the spec-mandated error kind -- Decodefailure
// inside the phase 1 window, NotSolvable once past it -- and to gate the
// union-find tie-break, which spec.md scopes to phase 1 only.
func solveIntermediate(p *Parameters, a, d *denseMtx, shouldStop func() bool) (*denseMtx, []operation, error) {
	l := p.L
	r := a.rows
	c := make([]int, l)
	for i := range c {
		c[i] = i
	}
	var ops []operation

	const sparseThreshold = 3

	// hdpc tracks, per current row position, whether that row originated
	// as one of A's H HDPC rows (spec.md section 4.4 phase 1 step 2: ties
	// among minimum-weight candidates prefer non-HDPC rows). Swapped in
	// lockstep with the row swaps below so it always reflects the row
	// currently sitting at each position.
	hdpc := make([]bool, r)
	for row := p.S; row < p.S+p.H; row++ {
		hdpc[row] = true
	}

	// u mirrors spec.md section 4.4's phase 1 window size: it starts at P
	// and grows by (weight-1) on every phase 1 step. While i+u < L we are
	// still inside the "structured row selection" phase 1 window and a
	// pivot search that comes up empty is Decodefailure; once i+u >= L we
	// have crossed into the phase 2 dense lower block, where the same
	// failure means the block is rank deficient (NotSolvable).
	u := p.P

	for i := 0; i < l; i++ {
		if shouldStop != nil && shouldStop() {
			return nil, nil, ErrStopped
		}

		inPhase1 := i+u < l
		pivotRow, pivotCol, weight, ok := choosePivot(a, c, hdpc, i, l, r, sparseThreshold, inPhase1)
		if !ok {
			if inPhase1 {
				return nil, nil, ErrDecodeFailure
			}
			return nil, nil, ErrNotSolvable
		}

		if pivotRow != i {
			a.swapRows(pivotRow, i)
			d.swapRows(pivotRow, i)
			hdpc[pivotRow], hdpc[i] = hdpc[i], hdpc[pivotRow]
			ops = append(ops, opSwapRows{pivotRow, i})
		}
		if pivotCol != i {
			a.swapCols(pivotCol, i)
			c[pivotCol], c[i] = c[i], c[pivotCol]
		}

		pivotVal := a.at(i, i)
		if pivotVal != 1 {
			inv, err := octInv(pivotVal)
			if err != nil {
				if inPhase1 {
					return nil, nil, ErrDecodeFailure
				}
				return nil, nil, ErrNotSolvable
			}
			a.scaleRow(i, inv)
			d.scaleRow(i, inv)
			ops = append(ops, opDiv{i, inv})
		}

		for row := 0; row < r; row++ {
			if row == i {
				continue
			}
			factor := a.at(row, i)
			if factor == 0 {
				continue
			}
			a.addMulRow(row, i, factor)
			d.addMulRow(row, i, factor)
			ops = append(ops, opAddMul{row, i, factor})
		}

		if inPhase1 {
			u += weight - 1
		}
	}

	out := newDenseMtx(l, d.cols)
	// perm has r entries so it can replay over a full r x r transform
	// matrix for caching: perm[i] for i<l undoes phase 1's column swaps,
	// perm[i]=i beyond l is a pass-through over the unused overhead rows.
	perm := make([]int, r)
	for i := range perm {
		perm[i] = i
	}
	for i, orig := range c {
		perm[orig] = i
	}
	for i := 0; i < l; i++ {
		out.setRow(c[i], d.row(i))
	}
	ops = append(ops, opReorder{perm: perm})

	return out, ops, nil
}

// choosePivot picks the row/column for elimination step i: the minimum
// positive-weight row among the remaining candidates (rows [i,r) with a
// nonzero entry in columns [i,l)), preferring a non-HDPC row on a weight
// tie (spec.md section 4.4 phase 1 step 2). While useGraph is set (phase
// 1's "i+u < L" window) and at least one weight-2 candidate is a non-HDPC
// row, ties at weight 2 are instead broken by the union-find graph in
// favor of the row whose two columns touch the largest connected
// component, per the same step. ok is false when no candidate row with
// positive weight remains; the caller maps that to Decodefailure or
// NotSolvable depending on which side of the phase 1/2 boundary it is.
func choosePivot(a *denseMtx, c []int, hdpc []bool, i, l, r, sparseThreshold int, useGraph bool) (row, col, weight int, ok bool) {
	type cand struct {
		row, weight int
		cols        [2]int
		isHDPC      bool
	}
	best := -1
	bestWeight := -1
	bestHDPC := true
	var bestCols [2]int

	g := newGraph(l - i)
	degTwo := make([]cand, 0)
	anyNonHDPCDegTwo := false

	for rw := i; rw < r; rw++ {
		w := 0
		var cols [2]int
		ar := a.row(rw)
		for col := i; col < l; col++ {
			if ar[col] != 0 {
				if w < 2 {
					cols[w] = col
				}
				w++
				if w > sparseThreshold {
					break
				}
			}
		}
		if w == 0 {
			continue
		}
		isH := hdpc[rw]
		if w == 2 {
			g.connect(cols[0]-i, cols[1]-i)
			degTwo = append(degTwo, cand{rw, w, cols, isH})
			if !isH {
				anyNonHDPCDegTwo = true
			}
		}
		if best == -1 || w < bestWeight || (w == bestWeight && bestHDPC && !isH) {
			bestWeight = w
			best = rw
			bestCols = cols
			bestHDPC = isH
		}
	}

	if best == -1 {
		return 0, 0, 0, false
	}

	if bestWeight == 2 && useGraph && anyNonHDPCDegTwo {
		for _, cd := range degTwo {
			if g.isMax(cd.cols[0] - i) {
				return cd.row, cd.cols[0], cd.weight, true
			}
		}
	}

	return best, bestCols[0], bestWeight, true
}

// encodeSymbol computes encoding symbol ISI by XORing the intermediate
// symbol rows get_idxs selects, the direct analog of original_source's
// Precode_Matrix_solver.cpp encode() used both to generate repair symbols
// and to reconstruct holes from the solved C matrix.
func encodeSymbol(p *Parameters, c *denseMtx, isi uint32) []octet {
	out := make([]octet, c.cols)
	for _, idx := range p.getIdxs(isi) {
		row := c.row(idx)
		for j := range out {
			out[j] = octAdd(out[j], row[j])
		}
	}
	return out
}
