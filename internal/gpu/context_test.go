//go:build gpu_integration

package gpu

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/rs/zerolog"
)

// These tests touch a real WebGPU backend and only build under the
// gpu_integration tag; CI without a usable adapter never compiles them,
// mirroring how gogpu-gg's SDFAccelerator.Init logs-and-falls-back
// instead of failing when no adapter is present.
func skipIfNoBackend(t *testing.T) {
	t.Helper()
	if _, ok := hal.GetBackend(gputypes.BackendVulkan); !ok {
		t.Skip("no Vulkan backend available")
	}
}

func TestContextRoundTripsSHA3_256(t *testing.T) {
	skipIfNoBackend(t)

	ctx, err := New(zerolog.Nop(), false)
	if err != nil {
		t.Skipf("no usable GPU adapter: %v", err)
	}
	defer ctx.Close()

	messages := [][]byte{[]byte("hello world12345"), []byte("another message!")}
	out, err := ctx.Dispatch(DispatchParams{
		Messages: messages, InputLength: 16, RateBytes: 136, OutputBytes: 32, Domain: 0x06,
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(out) != 2*32 {
		t.Fatalf("len(out) = %d, want 64", len(out))
	}
}

func TestPersistentBuffersFitsCapacity(t *testing.T) {
	skipIfNoBackend(t)

	ctx, err := New(zerolog.Nop(), false)
	if err != nil {
		t.Skipf("no usable GPU adapter: %v", err)
	}
	defer ctx.Close()

	pb, err := NewPersistentBuffers(ctx, 4, 32, 32)
	if err != nil {
		t.Fatalf("NewPersistentBuffers: %v", err)
	}
	defer pb.Close()

	if !pb.Fits(4, 32, 32) {
		t.Error("Fits(4, 32, 32) = false, want true at exact capacity")
	}
	if pb.Fits(5, 32, 32) {
		t.Error("Fits(5, 32, 32) = true, want false over capacity")
	}
}
