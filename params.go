package raptorq

import "sort"

// tuple is RFC 6330 section 5.3.5.4's (d, a, b, d1, a1, b1): the encoding
// symbol's LT degree/offset into the LT-coded columns, and its PI
// degree/offset into the permanent-inactive columns.
type tuple struct {
	d, a, b   uint32
	d1, a1, b1 uint32
}

// Parameters holds the per-source-block constants RFC 6330 derives from
// K (section 5.3.1/5.3.3.3): the padded symbol count and the derived
// LDPC/HDPC/LT dimensions, grounded on original_source/src/Parameters.hpp.
type Parameters struct {
	K       int
	KPadded int
	J       uint32
	S       int
	H       int
	W       int
	L       int
	P       int
	P1      int
	U       int
	B       int
}

// q is RFC 6330's Q: the largest prime smaller than 2^16, used by the
// tuple generator.
const q = 65521

// NewParameters resolves K to its RFC 6330 K' table row and derives the
// rest of the block's dimensions. It fails with ErrUnsupportedK when K is
// below 1 or exceeds the largest source block RFC 6330 defines.
func NewParameters(k int) (*Parameters, error) {
	if k <= 0 || k > kMax {
		return nil, ErrUnsupportedK
	}
	idx := sort.Search(len(kPaddedTable), func(i int) bool {
		return int(kPaddedTable[i]) >= k
	})
	kPadded := int(kPaddedTable[idx])
	j, s32, h32, w32 := rowFor(uint32(kPadded))
	s, h, w := int(s32), int(h32), int(w32)

	l := kPadded + s + h
	p := l - w
	p1 := int(nextPrime(uint32(p)))
	u := p - h
	b := w - s

	return &Parameters{
		K: k, KPadded: kPadded, J: j,
		S: s, H: h, W: w, L: l, P: p, P1: p1, U: u, B: b,
	}, nil
}

// deg implements RFC 6330's Deg(v), clamped to the LT column count as
// section 5.3.5.4 requires (d := min(Deg(v), W-2)).
func (p *Parameters) deg(v uint32) uint32 {
	d := degree(v)
	if max := uint32(p.W - 2); d > max {
		d = max
	}
	return d
}

// randp is RFC 6330's Rand(y,i,m) (section 5.5), exposed for the tuple
// generator below.
func randp(y uint64, i uint8, m uint32) uint32 {
	return rnd(y, i, m)
}

// tupleFor implements RFC 6330 section 5.3.5.4: derive the (d,a,b,d1,a1,b1)
// tuple for encoding symbol ID isi.
func (p *Parameters) tupleFor(isi uint32) tuple {
	j := uint64(p.J)
	a := (53591 + j*997) % q
	if a%2 == 0 {
		a++
	}
	b := (10267 * (j + 1)) % q
	y := (b + uint64(isi)*a) % q

	v := randp(y, 0, 1<<20)
	d := p.deg(v)
	aa := 1 + randp(y, 1, uint32(p.W-1))
	bb := randp(y, 2, uint32(p.W))

	var d1 uint32 = 2
	if d < 4 {
		d1 = 2 + randp(uint64(isi), 3, 2)
	}
	a1 := 1 + randp(uint64(isi), 4, uint32(p.P1-1))
	b1 := randp(uint64(isi), 5, uint32(p.P1))

	return tuple{d: d, a: aa, b: bb, d1: d1, a1: a1, b1: b1}
}

// getIdxs returns the L columns (into the intermediate symbol set) that
// encoding symbol isi's value is the XOR of, following the advance rule
// in original_source/src/Precode_Matrix_solver.cpp's encode(): walk `d`
// steps through the LT window [0,W), then `d1` steps through the PI
// window [W, W+P1) skipping any landing position >= P.
func (p *Parameters) getIdxs(isi uint32) []int {
	t := p.tupleFor(isi)
	idxs := make([]int, 0, t.d+t.d1)

	b := t.b
	idxs = append(idxs, int(b))
	for i := uint32(1); i < t.d; i++ {
		b = (b + t.a) % uint32(p.W)
		idxs = append(idxs, int(b))
	}

	b1 := t.b1
	for b1 >= uint32(p.P) {
		b1 = (b1 + t.a1) % uint32(p.P1)
	}
	idxs = append(idxs, p.W+int(b1))
	for i := uint32(1); i < t.d1; i++ {
		b1 = (b1 + t.a1) % uint32(p.P1)
		for b1 >= uint32(p.P) {
			b1 = (b1 + t.a1) % uint32(p.P1)
		}
		idxs = append(idxs, p.W+int(b1))
	}

	return idxs
}
