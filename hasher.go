package gpusha3

import (
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/shardwave/gpusha3/internal/cpuref"
	"github.com/shardwave/gpusha3/internal/gpu"
)

// maxGPUInputBytes mirrors shader.wgsl's MAX_INPUT_SIZE. A batch whose
// messages are longer than this never reaches the shader:
// HashBatchWithParams routes the whole batch through the CPU fallback,
// while HashBatch rejects it with ErrInvalidInputLength.
const maxGPUInputBytes = 8192

// Hasher computes batches of SHA-3/SHAKE digests for one fixed variant,
// preferring a WebGPU compute dispatch and falling back to
// golang.org/x/crypto/sha3 on the CPU when the batch's inputs exceed the
// GPU shader's static size bound (HashBatchWithParams only), or when no
// GPU context is attached at all.
type Hasher struct {
	log     zerolog.Logger
	variant Variant

	mu         sync.Mutex
	ctx        *gpu.Context
	persistent *gpu.PersistentBuffers

	gpuDispatches uint64
	cpuFallbacks  uint64
}

// New returns a Hasher for variant backed by ctx. ctx may be nil, in
// which case every call uses the CPU fallback — useful for hosts that
// never found a usable adapter but still want the same API surface.
// With a non-nil ctx, New attaches persistent buffers sized for 1000
// messages of up to maxGPUInputBytes bytes with up to 64-byte digests;
// if that allocation fails, every batch uses per-call buffers.
func New(ctx *gpu.Context, variant Variant, logger zerolog.Logger) *Hasher {
	h := &Hasher{
		log:     logger.With().Str("component", "hasher").Str("variant", variant.String()).Logger(),
		variant: variant,
		ctx:     ctx,
	}
	if ctx != nil {
		pb, err := gpu.NewPersistentBuffers(ctx, 1000, maxGPUInputBytes, 64)
		if err != nil {
			h.log.Warn().Err(err).Msg("default persistent buffers unavailable, using per-call buffers")
		} else {
			h.persistent = pb
		}
	}
	return h
}

// WithPersistentBuffers attaches a GPU buffer set pre-sized for up to
// maxHashes messages of maxInputBytes bytes, amortizing buffer
// allocation across repeated HashBatch calls. It replaces (and closes)
// any persistent buffers already attached.
func (h *Hasher) WithPersistentBuffers(maxHashes, maxInputBytes int) (*Hasher, error) {
	if h.ctx == nil {
		return nil, errors.New("gpusha3: cannot attach persistent buffers without a GPU context")
	}
	outBytes := h.variant.OutputBytes()
	if outBytes == 0 {
		return nil, errors.New("gpusha3: persistent buffers require a fixed output size; use WithOutputLength per call for SHAKE")
	}
	pb, err := gpu.NewPersistentBuffers(h.ctx, maxHashes, maxInputBytes, outBytes)
	if err != nil {
		return nil, errors.Wrap(err, "gpusha3: allocate persistent buffers")
	}
	h.mu.Lock()
	if h.persistent != nil {
		h.persistent.Close()
	}
	h.persistent = pb
	h.mu.Unlock()
	return h, nil
}

// Variant reports which SHA-3/SHAKE member this Hasher computes.
func (h *Hasher) Variant() Variant { return h.variant }

// Stats returns the cumulative count of batches served by the GPU path
// and by the CPU fallback path, respectively.
func (h *Hasher) Stats() (gpuDispatches, cpuFallbacks uint64) {
	return atomic.LoadUint64(&h.gpuDispatches), atomic.LoadUint64(&h.cpuFallbacks)
}

// HashBatch hashes messages (which must all share one length) using the
// variant's default output size. SHAKE variants must call
// HashBatchWithParams with an explicit output length instead.
//
// Unlike HashBatchWithParams, HashBatch does not transparently fall back
// to the CPU for oversize input: a message longer than MAX_INPUT_SIZE
// returns ErrInvalidInputLength. Callers who want the oversize batch
// served anyway must go through HashBatchWithParams.
func (h *Hasher) HashBatch(messages [][]byte) ([]byte, error) {
	params := NewBatchParams(h.variant, len(messages), commonLength(messages))
	return h.hashBatch(messages, params, false)
}

// HashBatchWithParams hashes messages under params, which must specify
// NumHashes == len(messages) and (for SHAKE) OutputLength. Digests come
// back concatenated in input order. Unlike HashBatch, an oversize input
// here is routed to the CPU fallback rather than rejected.
func (h *Hasher) HashBatchWithParams(messages [][]byte, params BatchParams) ([]byte, error) {
	return h.hashBatch(messages, params, true)
}

// hashBatch implements the shared validation and GPU/CPU routing behind
// HashBatch and HashBatchWithParams. allowOversizeFallback distinguishes
// the two public entry points: false (HashBatch) rejects a batch whose
// input exceeds maxGPUInputBytes with ErrInvalidInputLength; true
// (HashBatchWithParams) routes it to the CPU fallback instead. A nil GPU
// context always falls back to the CPU regardless of which entry point
// was used, since that's a distinct "no GPU available" condition, not an
// oversize-input one.
func (h *Hasher) hashBatch(messages [][]byte, params BatchParams, allowOversizeFallback bool) ([]byte, error) {
	if len(messages) == 0 {
		return nil, nil
	}
	if params.NumHashes != len(messages) {
		return nil, errors.Wrapf(ErrInvalidInputLength, "params.NumHashes=%d but len(messages)=%d", params.NumHashes, len(messages))
	}
	inputLength := len(messages[0])
	for _, m := range messages[1:] {
		if len(m) != inputLength {
			return nil, errors.Wrap(ErrInvalidInputLength, "all messages in a batch must share one length")
		}
	}
	if inputLength != params.InputLength {
		return nil, errors.Wrapf(ErrInvalidInputLength, "params.InputLength=%d but messages are %d bytes", params.InputLength, inputLength)
	}
	outputLength, err := params.EffectiveOutputBytes()
	if err != nil {
		return nil, err
	}

	if inputLength > maxGPUInputBytes && !allowOversizeFallback {
		return nil, errors.Wrapf(ErrInvalidInputLength, "input_length=%d exceeds MAX_INPUT_SIZE=%d; use HashBatchWithParams to fall back to the CPU instead", inputLength, maxGPUInputBytes)
	}

	if h.ctx == nil || inputLength > maxGPUInputBytes {
		atomic.AddUint64(&h.cpuFallbacks, 1)
		h.log.Debug().Int("num_hashes", len(messages)).Int("input_length", inputLength).Msg("routing batch to CPU fallback")
		return cpuref.HashBatch(h.variant.cpurefVariant(), messages, outputLength)
	}

	dispatch := gpu.DispatchParams{
		Messages:    messages,
		InputLength: inputLength,
		RateBytes:   h.variant.RateBytes(),
		OutputBytes: outputLength,
		Domain:      h.variant.Domain(),
	}

	h.mu.Lock()
	persistent := h.persistent
	h.mu.Unlock()

	var out []byte
	if persistent != nil && persistent.Fits(len(messages), inputLength, outputLength) {
		out, err = persistent.Dispatch(dispatch)
	} else {
		out, err = h.ctx.Dispatch(dispatch)
	}
	if err != nil {
		return nil, errors.Wrap(err, "gpusha3: GPU dispatch failed")
	}
	atomic.AddUint64(&h.gpuDispatches, 1)
	return out, nil
}

// Close releases any persistent GPU buffers this Hasher owns. It does
// not close the underlying *gpu.Context, which may be shared across
// several Hashers of different variants.
func (h *Hasher) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.persistent != nil {
		h.persistent.Close()
		h.persistent = nil
	}
}

func commonLength(messages [][]byte) int {
	if len(messages) == 0 {
		return 0
	}
	return len(messages[0])
}
