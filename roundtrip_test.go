package raptorq

import (
	"bytes"
	"testing"
)

func makeSymbols(data []byte, k, symbolSize int) [][]byte {
	out := make([][]byte, k)
	for i := 0; i < k; i++ {
		out[i] = append([]byte(nil), data[i*symbolSize:(i+1)*symbolSize]...)
	}
	return out
}

// S1 (spec.md section 8): K=10, symbol_size=4, 40 bytes of sequential
// data. Encoding ESI 0..9 must return the source verbatim (property 5);
// feeding a 10-symbol mix of source and repair ESIs must fully recover
// the block (properties 6/9).
func TestScenarioS1(t *testing.T) {
	const k, symbolSize = 10, 4
	data := make([]byte, k*symbolSize)
	for i := range data {
		data[i] = byte(i)
	}
	symbols := makeSymbols(data, k, symbolSize)

	enc, err := NewEncoder(symbols, nil)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	for esi := 0; esi < k; esi++ {
		got, err := enc.Encode(uint32(esi))
		if err != nil {
			t.Fatalf("Encode(%d): %v", esi, err)
		}
		if !bytes.Equal(got, symbols[esi]) {
			t.Fatalf("Encode(%d) = %x, want %x (systematic)", esi, got, symbols[esi])
		}
	}

	p := enc.Params()
	dec := NewDecoder(p, symbolSize, nil, nil, nil)
	feed := []int{0, 2, 4, 6, 8, 10, 11, 12, 1, 3}
	for _, esi := range feed {
		sym, err := enc.Encode(uint32(esi))
		if err != nil {
			t.Fatalf("Encode(%d): %v", esi, err)
		}
		if err := dec.AddSymbol(uint32(esi), sym); err != nil {
			t.Fatalf("AddSymbol(%d): %v", esi, err)
		}
	}

	ok, err := dec.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !ok {
		t.Fatal("Decode() = false, want true")
	}
	for i := 0; i < k; i++ {
		if !bytes.Equal(dec.SourceSymbol(i), symbols[i]) {
			t.Errorf("source symbol %d = %x, want %x", i, dec.SourceSymbol(i), symbols[i])
		}
	}
}

// S2 (spec.md section 8): K=26, symbol_size=10, decode must succeed only
// once the last needed repair symbol (28) arrives, not before.
func TestScenarioS2(t *testing.T) {
	const k, symbolSize = 26, 10
	symbols := make([][]byte, k)
	for i := 0; i < k; i++ {
		row := make([]byte, symbolSize)
		for j := range row {
			row[j] = 'A' + byte(i)
		}
		symbols[i] = row
	}

	enc, err := NewEncoder(symbols, nil)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	dec := NewDecoder(enc.Params(), symbolSize, nil, nil, nil)

	dropped := map[int]bool{5: true, 13: true, 20: true}
	for esi := 0; esi < k; esi++ {
		if dropped[esi] {
			continue
		}
		sym, err := enc.Encode(uint32(esi))
		if err != nil {
			t.Fatal(err)
		}
		if err := dec.AddSymbol(uint32(esi), sym); err != nil {
			t.Fatalf("AddSymbol(%d): %v", esi, err)
		}
	}

	for _, esi := range []int{26, 27} {
		sym, err := enc.Encode(uint32(esi))
		if err != nil {
			t.Fatal(err)
		}
		if err := dec.AddSymbol(uint32(esi), sym); err != nil {
			t.Fatalf("AddSymbol(%d): %v", esi, err)
		}
		if ok, err := dec.Decode(); err == nil && ok {
			t.Fatalf("Decode() succeeded early after repair %d, want false", esi)
		}
	}

	sym, err := enc.Encode(28)
	if err != nil {
		t.Fatal(err)
	}
	if err := dec.AddSymbol(28, sym); err != nil {
		t.Fatalf("AddSymbol(28): %v", err)
	}
	ok, err := dec.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !ok {
		t.Fatal("Decode() = false after repair 28, want true")
	}
	for i := 0; i < k; i++ {
		if !bytes.Equal(dec.SourceSymbol(i), symbols[i]) {
			t.Errorf("source symbol %d = %x, want %x", i, dec.SourceSymbol(i), symbols[i])
		}
	}
}

// xorshift64 is the fixed-seed PRNG spec.md section 8's S3 scenario asks
// for, used only to generate deterministic test payload.
func xorshift64(seed uint64) func() uint64 {
	x := seed
	return func() uint64 {
		x ^= x << 13
		x ^= x >> 7
		x ^= x << 17
		return x
	}
}

// S3 (spec.md section 8): K=100, symbol_size=16, random payload, 3 holes
// with one spare repair symbol (overhead 1).
func TestScenarioS3(t *testing.T) {
	const k, symbolSize = 100, 16
	data := make([]byte, k*symbolSize)
	next := xorshift64(0xDEADBEEF)
	for i := 0; i < len(data); i += 8 {
		v := next()
		for j := 0; j < 8 && i+j < len(data); j++ {
			data[i+j] = byte(v >> (8 * uint(j)))
		}
	}
	symbols := makeSymbols(data, k, symbolSize)

	enc, err := NewEncoder(symbols, nil)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	dec := NewDecoder(enc.Params(), symbolSize, nil, nil, nil)

	dropped := map[int]bool{7: true, 42: true, 88: true}
	for esi := 0; esi < k; esi++ {
		if dropped[esi] {
			continue
		}
		sym, err := enc.Encode(uint32(esi))
		if err != nil {
			t.Fatal(err)
		}
		if err := dec.AddSymbol(uint32(esi), sym); err != nil {
			t.Fatalf("AddSymbol(%d): %v", esi, err)
		}
	}
	for _, esi := range []int{100, 101, 102, 103} {
		sym, err := enc.Encode(uint32(esi))
		if err != nil {
			t.Fatal(err)
		}
		if err := dec.AddSymbol(uint32(esi), sym); err != nil {
			t.Fatalf("AddSymbol(%d): %v", esi, err)
		}
	}

	ok, err := dec.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !ok {
		t.Fatal("Decode() = false, want true")
	}
	for i := 0; i < k; i++ {
		if !bytes.Equal(dec.SourceSymbol(i), symbols[i]) {
			t.Errorf("source symbol %d mismatch", i)
		}
	}
}

// Property 9: K=1 is trivial -- the single intermediate symbol equals
// the source symbol, so both the systematic encode and the one possible
// repair symbol return it verbatim.
func TestScenarioK1(t *testing.T) {
	symbols := [][]byte{{0xAA, 0xBB, 0xCC, 0xDD}}
	enc, err := NewEncoder(symbols, nil)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	got0, err := enc.Encode(0)
	if err != nil || !bytes.Equal(got0, symbols[0]) {
		t.Fatalf("Encode(0) = %x, %v; want %x, nil", got0, err, symbols[0])
	}
	got1, err := enc.Encode(1)
	if err != nil || !bytes.Equal(got1, symbols[0]) {
		t.Fatalf("Encode(1) = %x, %v; want %x, nil", got1, err, symbols[0])
	}
}

// Property 7: AddSymbol is idempotent on duplicate ESIs.
func TestAddSymbolIdempotent(t *testing.T) {
	const k, symbolSize = 10, 4
	data := make([]byte, k*symbolSize)
	for i := range data {
		data[i] = byte(i)
	}
	symbols := makeSymbols(data, k, symbolSize)
	enc, err := NewEncoder(symbols, nil)
	if err != nil {
		t.Fatal(err)
	}
	dec := NewDecoder(enc.Params(), symbolSize, nil, nil, nil)

	sym, _ := enc.Encode(0)
	if err := dec.AddSymbol(0, sym); err != nil {
		t.Fatalf("first AddSymbol(0): %v", err)
	}
	if err := dec.AddSymbol(0, sym); err != ErrAlreadyPresent {
		t.Fatalf("second AddSymbol(0) = %v, want ErrAlreadyPresent", err)
	}
}

// Property 6 (empirical): across many random K=10 trials with overhead
// 0, decoding any K symbols out of K+0 should succeed with very high
// probability. This test asserts a success rate far looser than the RFC
// bound, since a hard failure would indicate a real solver defect rather
// than the rare legitimate miss.
func TestRoundTripEmpirical(t *testing.T) {
	const k, symbolSize, trials = 10, 8, 100
	next := xorshift64(0x1234567890ABCDEF)
	failures := 0
	for trial := 0; trial < trials; trial++ {
		data := make([]byte, k*symbolSize)
		for i := 0; i < len(data); i += 8 {
			v := next()
			for j := 0; j < 8 && i+j < len(data); j++ {
				data[i+j] = byte(v >> (8 * uint(j)))
			}
		}
		symbols := makeSymbols(data, k, symbolSize)
		enc, err := NewEncoder(symbols, nil)
		if err != nil {
			t.Fatalf("trial %d: NewEncoder: %v", trial, err)
		}
		dec := NewDecoder(enc.Params(), symbolSize, nil, nil, nil)

		drop := int(next() % uint64(k))
		for esi := 0; esi < k; esi++ {
			if esi == drop {
				continue
			}
			sym, _ := enc.Encode(uint32(esi))
			_ = dec.AddSymbol(uint32(esi), sym)
		}
		sym, _ := enc.Encode(uint32(k))
		_ = dec.AddSymbol(uint32(k), sym)

		ok, err := dec.Decode()
		if err != nil || !ok {
			failures++
			continue
		}
		for i := 0; i < k; i++ {
			if !bytes.Equal(dec.SourceSymbol(i), symbols[i]) {
				t.Fatalf("trial %d: source symbol %d mismatch after decode", trial, i)
			}
		}
	}
	if failures > trials/20 {
		t.Fatalf("%d/%d trials failed to decode with one repair symbol, want <= 5%%", failures, trials)
	}
}
