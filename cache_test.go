package raptorq

import "testing"

// Property 8 (spec.md section 8): replaying a cached operation log yields
// the same intermediate symbols C as a fresh solve on the same D, for a
// block large enough to be cache-eligible.
func TestReplayMatrixMatchesFreshSolve(t *testing.T) {
	p, err := NewParameters(120)
	if err != nil {
		t.Fatalf("NewParameters: %v", err)
	}
	const symbolSize = 8
	a1 := buildPrecode(p)
	d1 := newDenseMtx(p.L, symbolSize)
	for r := p.S + p.H; r < p.L; r++ {
		for c := 0; c < symbolSize; c++ {
			d1.set(r, c, byte((r*31+c*17+7)%256))
		}
	}
	d1Copy := d1.clone()

	freshC, ops, err := solveIntermediate(p, a1, d1, nil)
	if err != nil {
		t.Fatalf("solveIntermediate (fresh): %v", err)
	}

	replay := buildReplayMtx(p.L, ops)
	top := replay.subClone(p.L, replay.cols)
	replayC := top.mul(d1Copy)

	if len(freshC.data) != len(replayC.data) {
		t.Fatalf("dimension mismatch: fresh %dx%d, replay %dx%d",
			freshC.rows, freshC.cols, replayC.rows, replayC.cols)
	}
	for i := range freshC.data {
		if freshC.data[i] != replayC.data[i] {
			t.Fatalf("C mismatch at offset %d: fresh=0x%02x replay=0x%02x", i, freshC.data[i], replayC.data[i])
		}
	}
}
