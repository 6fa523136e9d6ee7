package gpusha3

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

// newCPUOnlyHasher builds a Hasher with no GPU context attached, so every
// call exercises the CPU fallback path deterministically in CI.
func newCPUOnlyHasher(v Variant) *Hasher {
	return New(nil, v, zerolog.Nop())
}

func TestHashBatchEmptyReturnsNil(t *testing.T) {
	h := newCPUOnlyHasher(SHA3_256)
	out, err := h.HashBatch(nil)
	require.NoError(t, err)
	require.Nil(t, out)
}

func TestHashBatchNoGPUContextUsesCPUFallback(t *testing.T) {
	h := newCPUOnlyHasher(SHA3_256)
	messages := [][]byte{[]byte("hello"), []byte("world")}
	out, err := h.HashBatch(messages)
	require.NoError(t, err)
	require.Len(t, out, 2*32)

	want0 := sha3.Sum256(messages[0])
	want1 := sha3.Sum256(messages[1])
	require.Equal(t, want0[:], out[:32])
	require.Equal(t, want1[:], out[32:])

	gpuDispatches, cpuFallbacks := h.Stats()
	require.Zero(t, gpuDispatches)
	require.Equal(t, uint64(1), cpuFallbacks)
}

func TestHashBatchWithParamsMismatchedNumHashes(t *testing.T) {
	h := newCPUOnlyHasher(SHA3_256)
	params := NewBatchParams(SHA3_256, 3, 5)
	_, err := h.HashBatchWithParams([][]byte{[]byte("aaaaa"), []byte("bbbbb")}, params)
	require.ErrorIs(t, err, ErrInvalidInputLength)
}

func TestHashBatchWithParamsUnequalMessageLengths(t *testing.T) {
	h := newCPUOnlyHasher(SHA3_256)
	messages := [][]byte{[]byte("short"), []byte("a much longer message")}
	params := NewBatchParams(SHA3_256, len(messages), len(messages[0]))
	_, err := h.HashBatchWithParams(messages, params)
	require.ErrorIs(t, err, ErrInvalidInputLength)
}

func TestHashBatchShakeWithoutOutputLengthFails(t *testing.T) {
	h := newCPUOnlyHasher(SHAKE128)
	_, err := h.HashBatch([][]byte{[]byte("hello")})
	require.ErrorIs(t, err, ErrShakeOutputLengthRequired)
}

func TestHashBatchWithParamsShakeWithOutputLength(t *testing.T) {
	h := newCPUOnlyHasher(SHAKE256)
	messages := [][]byte{[]byte("hello"), []byte("gpu!!")}
	params := NewBatchParams(SHAKE256, len(messages), len(messages[0])).WithOutputLength(16)
	out, err := h.HashBatchWithParams(messages, params)
	require.NoError(t, err)
	require.Len(t, out, 2*16)

	xof := sha3.NewShake256()
	xof.Write(messages[0])
	want := make([]byte, 16)
	_, _ = xof.Read(want)
	require.Equal(t, want, out[:16])
}

func TestHashBatchOversizeInputReturnsInvalidInputLength(t *testing.T) {
	// HashBatch (no params) never falls back to the CPU for oversize
	// input; it rejects the call outright, even with no GPU context
	// attached, so the error is observable without requiring a device in
	// CI.
	h := newCPUOnlyHasher(SHA3_512)
	big := make([]byte, maxGPUInputBytes+1)
	_, err := h.HashBatch([][]byte{big})
	require.ErrorIs(t, err, ErrInvalidInputLength)
}

func TestHashBatchWithParamsOversizeInputRoutesToCPUFallback(t *testing.T) {
	// HashBatchWithParams, unlike HashBatch, transparently falls back to
	// the CPU for oversize input rather than rejecting the call.
	h := newCPUOnlyHasher(SHA3_512)
	big := make([]byte, maxGPUInputBytes+1)
	params := NewBatchParams(SHA3_512, 1, len(big))
	out, err := h.HashBatchWithParams([][]byte{big}, params)
	require.NoError(t, err)
	want := sha3.Sum512(big)
	require.Equal(t, want[:], out)

	gpuDispatches, cpuFallbacks := h.Stats()
	require.Zero(t, gpuDispatches)
	require.Equal(t, uint64(1), cpuFallbacks)
}
