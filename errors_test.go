package gpusha3

import (
	"testing"

	"github.com/cockroachdb/errors"
)

func TestNewErrInvalidVariantIsMatchable(t *testing.T) {
	err := newErrInvalidVariant("not-a-variant")
	if !IsInvalidVariant(err) {
		t.Fatal("IsInvalidVariant(newErrInvalidVariant(...)) = false, want true")
	}
	if !errors.Is(err, errInvalidVariantSentinel) {
		t.Fatal("errors.Is against the sentinel failed through WithDetail/Wrapf wrapping")
	}
}

func TestSentinelErrorsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrInvalidInputLength,
		ErrShakeOutputLengthRequired,
		ErrAdapterNotFound,
		ErrDeviceCreation,
		ErrShaderCompilation,
		ErrBufferMapping,
		ErrGpuOperationFailed,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			if errors.Is(a, b) {
				t.Errorf("sentinel %d unexpectedly matches sentinel %d", i, j)
			}
		}
	}
}
