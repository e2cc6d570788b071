package raptorq

import (
	"github.com/wgraptor/raptorq/internal/rqlog"
)

// Encoder turns a fixed set of K source symbols into an unbounded stream
// of encoding symbols, addressed by ESI: ESI < K return the source symbol
// verbatim (RaptorQ is systematic), ESI >= K return repair symbols
// computed from the solved intermediate symbols. Grounded on
// original_source/src/RaptorQ/v1/Encoder.hpp's two-phase shape (solve
// once at construction, encode many times after).
type Encoder struct {
	p      *Parameters
	source [][]octet // K source symbols, as received (not padded)
	c      *denseMtx // L solved intermediate symbols
	log    *rqlog.Logger
}

// NewEncoder builds the intermediate symbols for a set of K equal-length
// source symbols. symbols[i] must all share the same length; that length
// becomes the symbol size for every encoding symbol this Encoder emits.
func NewEncoder(symbols [][]byte, log *rqlog.Logger) (*Encoder, error) {
	k := len(symbols)
	p, err := NewParameters(k)
	if err != nil {
		return nil, err
	}
	symbolSize := len(symbols[0])
	for _, s := range symbols {
		if len(s) != symbolSize {
			return nil, ErrShortSymbol
		}
	}

	a := buildPrecode(p)
	d := newDenseMtx(p.L, symbolSize)
	for i, s := range symbols {
		copy(d.row(p.S+p.H+i), s)
	}

	c, _, err := solveIntermediate(p, a, d, nil)
	if err != nil {
		log.Errorf("solve intermediate symbols: %v", err)
		return nil, err
	}

	src := make([][]octet, k)
	for i, s := range symbols {
		src[i] = append([]octet(nil), s...)
	}

	log.Debugf("encoder ready: K=%d K'=%d L=%d", p.K, p.KPadded, p.L)
	return &Encoder{p: p, source: src, c: c, log: log}, nil
}

// Params returns the block's resolved parameters.
func (e *Encoder) Params() *Parameters { return e.p }

// isiFor maps an external ESI to the internal ISI space: source symbols
// keep their ESI as ISI, repair symbols are numbered starting right after
// the zero-padding region.
func (e *Encoder) isiFor(esi uint32) uint32 {
	if esi < uint32(e.p.K) {
		return esi
	}
	return uint32(e.p.KPadded) + (esi - uint32(e.p.K))
}

// Encode returns the encoding symbol for esi.
func (e *Encoder) Encode(esi uint32) ([]byte, error) {
	if esi >= 1<<20 {
		return nil, ErrEsiOutOfRange
	}
	if esi < uint32(e.p.K) {
		return append([]byte(nil), e.source[esi]...), nil
	}
	return encodeSymbol(e.p, e.c, e.isiFor(esi)), nil
}
