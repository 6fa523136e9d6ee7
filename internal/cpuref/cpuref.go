// Package cpuref is the CPU reference and fallback SHA-3/SHAKE path: the
// conforming implementation used (a) as the test oracle for the GPU
// shader's output and (b) automatically when an input exceeds the
// shader's static MAX_INPUT_SIZE bound. It is built on
// golang.org/x/crypto/sha3, the same audited dependency the teacher
// package already benchmarks itself against in keccak_test.go, rather
// than a hand-rolled sponge.
package cpuref

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/crypto/sha3"
)

// Variant identifies which SHA-3/SHAKE member to compute. Kept as a
// package-local mirror of gpusha3.Variant to avoid an import cycle
// between the root package and this internal one; gpusha3.Variant and
// cpuref.Variant share the same underlying values by construction (see
// gpusha3/variant.go).
type Variant uint8

const (
	SHA3_224 Variant = iota
	SHA3_256
	SHA3_384
	SHA3_512
	SHAKE128
	SHAKE256
)

// ErrShakeOutputLengthRequired is returned when a SHAKE variant is hashed
// without specifying an output length.
var ErrShakeOutputLengthRequired = errors.New("cpuref: SHAKE variant requires an explicit output length")

// Hash computes the digest of a single message under variant, using
// outputLen for SHAKE (ignored, and may be zero, for fixed-length
// variants).
func Hash(v Variant, message []byte, outputLen int) ([]byte, error) {
	switch v {
	case SHA3_224:
		h := sha3.Sum224(message)
		return h[:], nil
	case SHA3_256:
		h := sha3.Sum256(message)
		return h[:], nil
	case SHA3_384:
		h := sha3.Sum384(message)
		return h[:], nil
	case SHA3_512:
		h := sha3.Sum512(message)
		return h[:], nil
	case SHAKE128:
		if outputLen <= 0 {
			return nil, ErrShakeOutputLengthRequired
		}
		xof := sha3.NewShake128()
		xof.Write(message)
		out := make([]byte, outputLen)
		if _, err := xof.Read(out); err != nil {
			return nil, errors.Wrap(err, "cpuref: SHAKE128 squeeze")
		}
		return out, nil
	case SHAKE256:
		if outputLen <= 0 {
			return nil, ErrShakeOutputLengthRequired
		}
		xof := sha3.NewShake256()
		xof.Write(message)
		out := make([]byte, outputLen)
		if _, err := xof.Read(out); err != nil {
			return nil, errors.Wrap(err, "cpuref: SHAKE256 squeeze")
		}
		return out, nil
	default:
		return nil, errors.Newf("cpuref: unknown variant %d", v)
	}
}

// HashBatch computes Hash for every message, concatenating the digests in
// input order into one flat slice — the same output shape the GPU batch
// path returns.
func HashBatch(v Variant, messages [][]byte, outputLen int) ([]byte, error) {
	if len(messages) == 0 {
		return nil, nil
	}
	first, err := Hash(v, messages[0], outputLen)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(first)*len(messages))
	out = append(out, first...)
	for _, m := range messages[1:] {
		digest, err := Hash(v, m, outputLen)
		if err != nil {
			return nil, err
		}
		out = append(out, digest...)
	}
	return out, nil
}
