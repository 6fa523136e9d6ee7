package gpusha3

import (
	"github.com/cockroachdb/errors"

	"github.com/shardwave/gpusha3/internal/gpu"
)

// Sentinel error values, each errors.Is-matchable through any amount of
// cockroachdb/errors wrapping applied as an error crosses the GPU
// context -> pipeline -> facade boundary. The GPU-side ones are the
// internal/gpu package's own sentinels, so errors raised there match
// them here.
var (
	// ErrInvalidInputLength covers every host-side validation failure:
	// disagreeing input lengths within a batch, a num_hashes mismatch
	// against BatchParams, or (via hash_batch, not _with_params) an
	// input longer than MAX_INPUT_SIZE.
	ErrInvalidInputLength = errors.New("gpusha3: invalid input length")

	// ErrShakeOutputLengthRequired is returned when a SHAKE variant is
	// hashed without an explicit output length.
	ErrShakeOutputLengthRequired = errors.New("gpusha3: SHAKE variant requires an explicit output length")

	// ErrAdapterNotFound means no GPU adapter could be selected.
	ErrAdapterNotFound = gpu.ErrAdapterNotFound

	// ErrDeviceCreation means device/queue negotiation with a selected
	// adapter failed.
	ErrDeviceCreation = gpu.ErrDeviceCreation

	// ErrShaderCompilation means the WGSL compute shader failed to
	// compile against the negotiated device (for example, because 64-bit
	// shader integers were requested but unsupported).
	ErrShaderCompilation = gpu.ErrShaderCompilation

	// ErrBufferMapping means reading the staging buffer back after the
	// dispatch's fence signaled failed.
	ErrBufferMapping = gpu.ErrBufferMapping

	// ErrGpuOperationFailed is the catch-all for queue submission or
	// command-encoding failures not covered by a more specific error.
	ErrGpuOperationFailed = gpu.ErrGpuOperationFailed
)

// errInvalidVariantSentinel is wrapped by newErrInvalidVariant so callers
// (notably the bindings adapter) can render "Invalid SHA-3 variant:
// <name>, valid options: ..." while still matching IsInvalidVariant.
var errInvalidVariantSentinel = errors.New("gpusha3: invalid variant name")

func newErrInvalidVariant(name string) error {
	return errors.WithDetail(
		errors.Wrapf(errInvalidVariantSentinel, "variant %q", name),
		"valid options: sha3-224, sha3-256, sha3-384, sha3-512, shake128, shake256",
	)
}

// IsInvalidVariant reports whether err ultimately wraps the
// invalid-variant-name sentinel.
func IsInvalidVariant(err error) bool {
	return errors.Is(err, errInvalidVariantSentinel)
}
