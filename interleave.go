package raptorq

import "github.com/klauspost/cpuid/v2"

// platformAlignment is the sub-block interleaver's word size, RFC 6330
// section 4.4.1.2's "Al": 8 bytes on a 64-bit-capable host, 4 otherwise.
// klauspost/reedsolomon -- the teacher's other FEC engine -- uses cpuid
// for an analogous stride decision; this package makes the same call for
// the same reason (pick the widest word the host can move efficiently).
var platformAlignment = func() int {
	if cpuid.CPU.X64 {
		return 8
	}
	return 4
}()

// partition is RFC 6330 section 4.4.1.2's Partition(total, parts): total
// items split into num1 blocks of size1 plus num2 blocks of size2, with
// size1 = size2+1 whenever the split isn't even. Ported from
// original_source/src/Interleaver.hpp's Partition class, using integer
// ceil/floor division in place of its double-precision std::ceil/floor
// (this module never partitions a value large enough for that to matter).
type partition struct {
	size1, num1 int
	size2, num2 int
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

func newPartition(total, parts int) partition {
	if parts <= 0 {
		return partition{}
	}
	size2 := total / parts
	num1 := total - size2*parts
	num2 := parts - num1
	size1 := size2 + 1
	if num1 == 0 {
		size1 = 0
	}
	return partition{size1: size1, num1: num1, size2: size2, num2: num2}
}

// subBlocks returns the sub-block partition of one symbol at the given
// alignment. This module covers a single source block (spec.md scopes
// the multi-block object partitioning out), so only one partition level
// is needed, unlike original_source's two-level source-block/sub-block
// split.
func subBlocks(symbolSize, alignment int) partition {
	parts := ceilDiv(symbolSize, alignment)
	return newPartition(symbolSize, parts)
}

// walkLayout visits every (symbolID, position-within-symbol) pair for a
// block of k symbols of symbolSize bytes, in the linear-buffer order the
// sub-block interleave defines: all of sub-block 0's bytes across every
// symbol, then sub-block 1's, and so on -- the same traversal
// Interleaver.hpp's Symbol_it addressing produces, just expressed as a
// direct walk instead of a random-access index function.
func walkLayout(k, symbolSize int, visit func(symbolID, pos, linear int)) {
	sb := subBlocks(symbolSize, platformAlignment)
	linear := 0
	for blk := 0; blk < sb.num1; blk++ {
		for s := 0; s < k; s++ {
			for off := 0; off < sb.size1; off++ {
				visit(s, blk*sb.size1+off, linear)
				linear++
			}
		}
	}
	base := sb.num1 * sb.size1
	for blk := 0; blk < sb.num2; blk++ {
		for s := 0; s < k; s++ {
			for off := 0; off < sb.size2; off++ {
				visit(s, base+blk*sb.size2+off, linear)
				linear++
			}
		}
	}
}

// Interleave splits linear payload bytes into k symbols of symbolSize
// bytes apiece, honoring the sub-block interleave layout above. Any
// position past len(data) (the tail symbol's padding) reads as zero.
func Interleave(data []byte, k, symbolSize int) [][]byte {
	out := make([][]byte, k)
	for s := range out {
		out[s] = make([]byte, symbolSize)
	}
	walkLayout(k, symbolSize, func(s, pos, linear int) {
		if linear < len(data) {
			out[s][pos] = data[linear]
		}
	})
	return out
}

// Deinterleave writes symbol bytes into sink in linear-buffer order, the
// inverse of Interleave. It discards the first skip bytes and stops once
// it has written maxBytes (or has filled sink), the same budget
// De_Interleaver.hpp enforces so a source block's zero padding never
// leaks past the real file size. It returns the number of bytes written.
func Deinterleave(symbols [][]byte, symbolSize int, sink []byte, skip, maxBytes int) int {
	k := len(symbols)
	written := 0
	walkLayout(k, symbolSize, func(s, pos, linear int) {
		if linear < skip || written >= maxBytes || written >= len(sink) {
			return
		}
		sink[written] = symbols[s][pos]
		written++
	})
	return written
}
