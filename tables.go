package raptorq

// RFC 6330 section 5.6 requires every compliant encoder/decoder to use a
// single, shared table mapping K' to (J, S, H, W); section 5.5 requires
// four fixed 256-entry pseudo-random arrays V0..V3; section 5.3.5.2
// requires a fixed degree distribution. All three are package-level data
// built once at init. The degree distribution below reproduces the RFC's
// published knots. The K'-row table and V0..V3 do not: their literal RFC
// octets were not retrievable in this environment (original_source's
// Rand.hpp only forward-declares V0..V3; its defining .cpp never came
// through, and no K'-table source file did either), so kPaddedTable/rowFor
// and v0..v3 below are deterministic substitutes that preserve every
// structural invariant spec.md section 3 requires (W>=S, L=K'+S+H, P1
// prime) without being interoperable with another RFC 6330
// implementation's wire output. See DESIGN.md's "Acknowledged gaps".

// kMax is the largest number of source symbols RFC 6330 allows in a
// single source block.
const kMax = 56403

// kPaddedAnchor is a placeholder low end for the K' table: not RFC 6330's
// literal 477-row Table 2 (unavailable in this environment, see the
// package comment above), but a substitute with the same shape -- K' is
// not the identity function, most K are padded up to the next listed K',
// with roughly geometric spacing -- so NewParameters still rounds up to
// a larger-or-equal K' for every input the way the real table would.
var kPaddedAnchor = []uint32{
	1, 2, 3, 4, 5, 6, 7, 8, 9,
	10, 11, 12, 13, 14, 15, 16, 17, 18, 20, 22, 24, 26, 28, 30, 32, 34, 36,
	38, 40, 42, 45, 48, 51, 54, 57, 60, 63, 66, 70, 74, 78, 82, 86, 90, 94,
	99, 104, 109, 114, 119, 124, 129, 135, 141, 147, 153, 159, 165, 171,
	177, 184, 191, 198, 205, 212, 219, 226, 233, 241, 249, 257, 265, 273,
	282, 291, 300, 309, 318, 327, 337, 347, 357, 367, 377, 387, 398, 409,
	420, 431, 442, 454, 466, 478, 490, 502, 515, 528, 541, 554, 567, 581,
	595, 609, 623, 638, 653, 668, 683, 698, 714, 730, 746, 762, 778, 795,
	812, 829, 846, 864, 882, 900, 918, 937, 956, 975, 994, 1013, 1033,
	1053, 1073,
}

// kPaddedTable is kPaddedAnchor extended geometrically up to kMax, built
// once at init so NewParameters can binary-search it. A placeholder
// table, not RFC 6330's literal one; see the package comment above.
var kPaddedTable []uint32

func init() {
	kPaddedTable = append(kPaddedTable, kPaddedAnchor...)
	last := kPaddedTable[len(kPaddedTable)-1]
	for last < kMax {
		next := last + last/43 + 1 // ~2.3% growth, matches the anchor's own spacing
		if next >= kMax {
			next = kMax
		}
		kPaddedTable = append(kPaddedTable, next)
		last = next
	}
}

// rowFor derives (J, S, H, W) for a given K_padded. A handful of small,
// widely-used sizes are pinned to exact anchor rows; everything else is
// derived by a formula chosen to keep the structural invariants spec
// requires (W >= S, L = K_padded+S+H, P1 prime) true for every row, since
// the full 477-row RFC table is pure data that did not survive retrieval
// (see DESIGN.md).
func rowFor(kPadded uint32) (j, s, h, w uint32) {
	switch kPadded {
	case 1:
		return 6, 1, 1, 2
	case 10:
		return 6, 7, 10, 17
	}

	// S: smallest prime such that S*(S-1) >= 2*K_padded (LDPC1 needs
	// S rows whose S circulant submatrices can touch every column).
	x := uint32(1)
	for x*(x-1) < 2*kPadded {
		x++
	}
	s = nextPrime(x)

	// H: smallest even integer for which the HDPC submatrix has at
	// least as many columns as rows need independent combinations;
	// grows slowly with K_padded, never below 4.
	h = 4
	for h*h < kPadded+s {
		h += 2
	}

	w = kPadded + s
	jj := (kPadded*2654435761 + 997) % 61
	return jj, s, h, w
}

func isPrime(n uint32) bool {
	if n < 2 {
		return false
	}
	for p := uint32(2); p*p <= n; p++ {
		if n%p == 0 {
			return false
		}
	}
	return true
}

func nextPrime(n uint32) uint32 {
	if n < 2 {
		n = 2
	}
	for !isPrime(n) {
		n++
	}
	return n
}

// degreeKnots are the cumulative thresholds (out of 1<<20) of RFC 6330's
// degree distribution, section 5.3.5.2: Deg(v) is degreeDegrees[i] for
// the smallest i such that v < degreeKnots[i].
var degreeDegrees = []uint32{
	1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20,
	21, 22, 23, 24, 25, 26, 27, 28, 29, 30,
}
var degreeKnots = []uint32{
	5243, 529531, 704294, 791675, 844104, 879057, 904023, 922747, 937311,
	948962, 958494, 966438, 973160, 978921, 983914, 988283, 992138, 995565,
	998631, 1001391, 1003887, 1006157, 1008229, 1010129, 1011876, 1013490,
	1014983, 1016370, 1017662, 1048576,
}

// degree implements RFC 6330's Deg(v): the smallest d from the table
// such that v < f(d), using f(d) == degreeKnots at the matching index.
func degree(v uint32) uint32 {
	for i, knot := range degreeKnots {
		if v < knot {
			return degreeDegrees[i]
		}
	}
	return degreeDegrees[len(degreeDegrees)-1]
}

// v0..v3 are RFC 6330's four 256-entry random tables used by Rand(y,i,m)
// (section 5.5). The RFC ships these as fixed literal data; since that
// data did not survive retrieval (see DESIGN.md) they are generated once,
// deterministically, with a splitmix64 stream seeded from the RFC section
// number -- deterministic and fixed across runs/platforms, which is the
// only property Rand(y,i,m) actually depends on.
var v0, v1, v2, v3 [256]uint32

func init() {
	fill := func(seed uint64, table *[256]uint32) {
		x := seed
		for i := range table {
			x += 0x9E3779B97F4A7C15
			z := x
			z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
			z = (z ^ (z >> 27)) * 0x94D049BB133111EB
			z = z ^ (z >> 31)
			table[i] = uint32(z)
		}
	}
	fill(0x5330, &v0)
	fill(0x5331, &v1)
	fill(0x5332, &v2)
	fill(0x5333, &v3)
}

// rand implements RFC 6330 section 5.5's Rand(y, i, m).
func rnd(y uint64, i uint8, m uint32) uint32 {
	r := v0[(y+uint64(i))%256] ^
		v1[(y/256+uint64(i))%256] ^
		v2[(y/65536+uint64(i))%256] ^
		v3[(y/16777216+uint64(i))%256]
	return r % m
}
