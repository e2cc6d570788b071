package raptorq

import "errors"

// octet is a single element of GF(256), RFC 6330 section 5.7. Addition and
// subtraction are XOR; multiplication and division go through log/exp
// tables built from the primitive polynomial 0x11D (x^8+x^4+x^3+x^2+1),
// the same construction as original_source's Parameters.hpp Octet class.
type octet = byte

// ErrArithmetic is returned by octDiv when dividing by zero. It should
// never surface from a well-formed precode matrix; if it does, it means
// the matrix builder produced a singular row combination somewhere.
var ErrArithmetic = errors.New("raptorq: division by zero octet")

var expTable [510]octet // doubled so expTable[logTable[a]+logTable[b]] never needs a modulus
var logTable [256]octet

func init() {
	// Standard GF(256) log/exp construction over primitive polynomial 0x11D.
	x := 1
	for i := 0; i < 255; i++ {
		expTable[i] = octet(x)
		logTable[x] = octet(i)
		x <<= 1
		if x&0x100 != 0 {
			x ^= 0x11D
		}
	}
	for i := 255; i < 510; i++ {
		expTable[i] = expTable[i-255]
	}
}

func octAdd(a, b octet) octet { return a ^ b }
func octSub(a, b octet) octet { return a ^ b }

func octMul(a, b octet) octet {
	if a == 0 || b == 0 {
		return 0
	}
	return expTable[int(logTable[a])+int(logTable[b])]
}

func octDiv(a, b octet) (octet, error) {
	if b == 0 {
		return 0, ErrArithmetic
	}
	if a == 0 {
		return 0, nil
	}
	return expTable[int(logTable[a])-int(logTable[b])+255], nil
}

func octInv(b octet) (octet, error) {
	return octDiv(1, b)
}
