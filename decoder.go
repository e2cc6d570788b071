package raptorq

import (
	"context"

	"github.com/google/btree"
	"github.com/wgraptor/raptorq/internal/rqlog"
)

// repairItem is one received repair symbol, ordered by ESI so the
// decoder can always consume the lowest-ESI repair first -- spec.md
// section 4.6/section 9 requires ascending-ESI consumption for
// determinism. The teacher's go.mod already admits github.com/google/btree
// for exactly this "ordered set, unknown arrival order" shape (spec.md
// section 9's open question points at this instead of a bubble-sort).
type repairItem struct {
	esi     uint32
	payload []byte
}

func (r repairItem) Less(than btree.Item) bool { return r.esi < than.(repairItem).esi }

// Decoder accumulates received (ESI, payload) pairs for a single source
// block and reconstructs the K source symbols once enough have arrived.
// Grounded on original_source/src/RaptorQ/v1/Decoder.hpp and
// src/Decoder.hpp's single-block core (the multi-block/OTI orchestration
// above it is out of spec.md's scope).
type Decoder struct {
	p          *Parameters
	symbolSize int
	source     [][]byte
	mask       *bitmask
	repairs    *btree.BTree
	done       bool
	cache      Cache
	ctx        context.Context
	log        *rqlog.Logger
}

// NewDecoder creates a Decoder for a block of p.K source symbols of
// symbolSize bytes each. cache may be nil, in which case a fresh
// in-memory cache is used; ctx bounds the solver's cooperative
// cancellation the same way it would bound any other blocking call in
// the teacher's idiom (see SPEC_FULL.md section 6).
func NewDecoder(p *Parameters, symbolSize int, cache Cache, ctx context.Context, log *rqlog.Logger) *Decoder {
	if cache == nil {
		cache = NewMemCache()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return &Decoder{
		p:          p,
		symbolSize: symbolSize,
		source:     make([][]byte, p.K),
		mask:       newBitmask(p.K),
		repairs:    btree.New(16),
		cache:      cache,
		ctx:        ctx,
		log:        log,
	}
}

// Params returns the block's resolved parameters.
func (d *Decoder) Params() *Parameters { return d.p }

// AddSymbol records one received encoding symbol. Source symbols
// (esi < K) are stored directly; repair symbols are kept in an
// ESI-ordered set for decode() to draw from.
func (d *Decoder) AddSymbol(esi uint32, payload []byte) error {
	if esi >= 1<<20 {
		return ErrEsiOutOfRange
	}
	if len(payload) < d.symbolSize {
		return ErrShortSymbol
	}
	if esi < uint32(d.p.K) {
		if d.mask.exists(int(esi)) {
			return ErrAlreadyPresent
		}
	} else if d.repairs.Has(repairItem{esi: esi}) {
		return ErrAlreadyPresent
	}
	if d.mask.holesLeft() == 0 {
		return ErrNotNeeded
	}

	buf := append([]byte(nil), payload[:d.symbolSize]...)
	if esi < uint32(d.p.K) {
		d.source[esi] = buf
		d.mask.add(int(esi))
	} else {
		d.repairs.ReplaceOrInsert(repairItem{esi: esi, payload: buf})
	}
	return nil
}

// Decode attempts to reconstruct every missing source symbol. It returns
// true once all K source symbols are available (possibly on a prior
// call: decode() is idempotent), false if more symbols are still needed
// or the received set was not yet sufficient to solve.
func (d *Decoder) Decode() (bool, error) {
	if d.done || d.mask.holesLeft() == 0 {
		d.done = true
		return true, nil
	}

	holes := d.mask.getHoles()
	if d.repairs.Len() < len(holes) {
		return false, nil
	}
	overhead := d.repairs.Len() - len(holes)

	repairESI := make([]uint32, 0, d.repairs.Len())
	repairPayload := make([][]byte, 0, d.repairs.Len())
	d.repairs.Ascend(func(it btree.Item) bool {
		ri := it.(repairItem)
		repairESI = append(repairESI, ri.esi)
		repairPayload = append(repairPayload, ri.payload)
		return true
	})

	a := buildPrecodeOverhead(d.p, overhead)
	decodePhase0(d.p, a, holes, repairESI)

	sH := d.p.S + d.p.H
	kSH := d.p.KPadded + sH
	dm := newDenseMtx(kSH+overhead, d.symbolSize)

	holeSet := make(map[int]bool, len(holes))
	for _, h := range holes {
		holeSet[h] = true
	}
	consumed := 0
	for esi := 0; esi < d.p.K; esi++ {
		row := sH + esi
		if holeSet[esi] {
			dm.setRow(row, repairPayload[consumed])
			consumed++
		} else {
			dm.setRow(row, d.source[esi])
		}
	}
	for i := 0; i < overhead; i++ {
		dm.setRow(kSH+i, repairPayload[consumed])
		consumed++
	}

	cacheable := d.p.L > MinCacheableL
	highestRepair := uint32(0)
	if len(repairESI) > 0 {
		highestRepair = repairESI[len(repairESI)-1]
	}
	if highestRepair >= MaxCacheableRepairESI {
		cacheable = false
	}

	var key CacheKey
	var c *denseMtx
	if cacheable {
		// repair-ESI digest input: a run-length-free bitmask from K up to
		// the highest received repair ESI, true where a repair symbol
		// landed, matching original_source/src/Decoder.hpp's bitmask_repair
		// construction (spec.md section 4.8's CacheKey repair_bitmask).
		bitmaskRepair := make([]bool, 0, int(highestRepair)-d.p.K+1)
		idx := uint32(d.p.K)
		for _, esi := range repairESI {
			for ; idx < esi; idx++ {
				bitmaskRepair = append(bitmaskRepair, false)
			}
			bitmaskRepair = append(bitmaskRepair, true)
			idx++
		}
		key = newCacheKey(d.p.L, len(holes), bitmaskRepair)
		if replay, ok := d.cache.Get(key); ok {
			top := replay.subClone(d.p.L, replay.cols)
			c = top.mul(dm)
		}
	}

	if c == nil {
		shouldStop := func() bool { return d.ctx.Err() != nil }
		solved, ops, err := solveIntermediate(d.p, a, dm, shouldStop)
		if err != nil {
			if err == ErrStopped {
				return false, err
			}
			d.log.Debugf("decode: solve failed: %v", err)
			return false, nil
		}
		c = solved
		if cacheable {
			d.cache.Put(key, buildReplayMtx(a.rows, ops))
		}
	}

	for _, hole := range holes {
		d.source[hole] = encodeSymbol(d.p, c, uint32(hole))
		d.mask.add(hole)
	}
	d.done = d.mask.holesLeft() == 0
	d.log.Debugf("decode: recovered %d source symbols, holes left %d", len(holes), d.mask.holesLeft())
	return d.done, nil
}

// SourceSymbol returns source symbol i once it is available (received
// directly or reconstructed by Decode). It returns nil if symbol i has
// not yet been recovered.
func (d *Decoder) SourceSymbol(i int) []byte {
	if i < 0 || i >= d.p.K {
		return nil
	}
	return d.source[i]
}
