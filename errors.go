package raptorq

import "errors"

var (
	// ErrUnsupportedK is returned by NewParameters when K is below 1 or
	// exceeds the largest source-block size RFC 6330 defines.
	ErrUnsupportedK = errors.New("raptorq: K outside the supported source block size range")

	// ErrShortSymbol is returned when a caller supplies a buffer shorter
	// than the configured symbol size.
	ErrShortSymbol = errors.New("raptorq: symbol shorter than configured symbol size")

	// ErrEsiOutOfRange is returned for an ESI the wire format cannot
	// represent (RFC 6330 caps ESI at 2^20-1 for source blocks using the
	// single-block API).
	ErrEsiOutOfRange = errors.New("raptorq: ESI out of range")

	// ErrAlreadyPresent is returned by Decoder.AddSymbol when the ESI was
	// already added.
	ErrAlreadyPresent = errors.New("raptorq: symbol already present")

	// ErrNotNeeded is returned by Decoder.AddSymbol when the block is
	// already fully decoded and needs no further symbols.
	ErrNotNeeded = errors.New("raptorq: block already complete")

	// ErrDecodeFailure is returned by solveIntermediate's phase 1 (spec.md
	// section 4.4) when no candidate row with a positive weight remains
	// before the dense lower block is reached. Decoder.Decode never lets
	// this escape as an error: per spec.md section 7's propagation
	// policy, it is folded into a plain decode() = false, indistinguishable
	// from "not enough symbols yet" -- the caller's remedy is the same
	// either way (collect more repair symbols and retry).
	ErrDecodeFailure = errors.New("raptorq: insufficient symbols to decode")

	// ErrNotSolvable is returned by solveIntermediate's phase 2 (spec.md
	// section 4.4) when the dense lower block is rank deficient for the
	// received symbol set. Like ErrDecodeFailure, Decoder.Decode folds
	// this into decode() = false rather than surfacing it.
	ErrNotSolvable = errors.New("raptorq: precode matrix not solvable with received symbols")

	// ErrStopped is returned by Decoder.Decode when the context given to
	// NewDecoder is done, which aborts the in-progress solve.
	ErrStopped = errors.New("raptorq: solve stopped by caller")
)
