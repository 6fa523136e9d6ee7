// Package gpusha3 provides batched SHA-3/SHAKE hashing accelerated by a
// WebGPU compute shader, with a transparent CPU fallback for inputs that
// exceed the shader's static size bound.
//
// The core idea: turn a slice of equal-length byte messages into a single
// GPU dispatch that computes every digest in parallel, using persistent
// buffers to amortize allocation across repeated calls on the same
// Hasher. See Hasher.HashBatch and Hasher.HashBatchWithParams.
package gpusha3

import "github.com/shardwave/gpusha3/internal/cpuref"

// Variant identifies one of the six SHA-3/SHAKE members standardized in
// FIPS 202. Rate, capacity, default output size, and domain separator are
// pure functions of the tag — see RateBytes, CapacityBytes, OutputBytes
// and Domain below.
type Variant uint8

const (
	SHA3_224 Variant = iota
	SHA3_256
	SHA3_384
	SHA3_512
	SHAKE128
	SHAKE256
)

// RateBytes returns the number of bytes absorbed/squeezed per Keccak-f
// permutation for this variant.
func (v Variant) RateBytes() int {
	switch v {
	case SHA3_224:
		return 144
	case SHA3_256:
		return 136
	case SHA3_384:
		return 104
	case SHA3_512:
		return 72
	case SHAKE128:
		return 168
	case SHAKE256:
		return 136
	default:
		return 0
	}
}

// CapacityBytes returns 200 - RateBytes(): the portion of the 1600-bit
// state not exposed to input or output.
func (v Variant) CapacityBytes() int {
	return 200 - v.RateBytes()
}

// OutputBytes returns the fixed digest length for SHA3-* variants, or 0
// for the variable-length SHAKE variants.
func (v Variant) OutputBytes() int {
	switch v {
	case SHA3_224:
		return 28
	case SHA3_256:
		return 32
	case SHA3_384:
		return 48
	case SHA3_512:
		return 64
	default:
		return 0
	}
}

// Domain returns the multi-rate-padding domain separator byte: 0x06 for
// SHA3-*, 0x1F for SHAKE*.
func (v Variant) Domain() byte {
	switch v {
	case SHAKE128, SHAKE256:
		return 0x1F
	default:
		return 0x06
	}
}

// IsShake reports whether v is a variable-output-length variant.
func (v Variant) IsShake() bool {
	return v == SHAKE128 || v == SHAKE256
}

// String returns the canonical lowercase, hyphenated name ("sha3-256",
// "shake128", ...).
func (v Variant) String() string {
	switch v {
	case SHA3_224:
		return "sha3-224"
	case SHA3_256:
		return "sha3-256"
	case SHA3_384:
		return "sha3-384"
	case SHA3_512:
		return "sha3-512"
	case SHAKE128:
		return "shake128"
	case SHAKE256:
		return "shake256"
	default:
		return "unknown"
	}
}

// cpurefVariant maps a Variant to its internal/cpuref counterpart. The
// two enumerations share ordinal values by construction; this indirection
// keeps that an implementation detail instead of a public contract.
func (v Variant) cpurefVariant() cpuref.Variant {
	return cpuref.Variant(v)
}

// ParseVariant parses a variant name case-insensitively, accepting both
// hyphen and underscore separators (e.g. "sha3-256" and "sha3_256"), the
// contract the foreign-runtime adapter (bindings package) exposes to
// callers.
func ParseVariant(name string) (Variant, error) {
	switch normalizeVariantName(name) {
	case "sha3-224":
		return SHA3_224, nil
	case "sha3-256":
		return SHA3_256, nil
	case "sha3-384":
		return SHA3_384, nil
	case "sha3-512":
		return SHA3_512, nil
	case "shake128":
		return SHAKE128, nil
	case "shake256":
		return SHAKE256, nil
	default:
		return 0, newErrInvalidVariant(name)
	}
}

func normalizeVariantName(name string) string {
	out := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'A' && c <= 'Z':
			out[i] = c - 'A' + 'a'
		case c == '_':
			out[i] = '-'
		default:
			out[i] = c
		}
	}
	return string(out)
}
