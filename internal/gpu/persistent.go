package gpu

import (
	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// PersistentBuffers pre-allocates GPU buffers sized for the largest batch
// a Hasher expects to see, so repeated HashBatch calls on the same
// Hasher skip CreateBuffer/DestroyBuffer on every dispatch. Buffers are
// reused across calls as long as the requested batch fits within the
// capacities New was built with; a call that doesn't fit returns
// ErrGpuOperationFailed rather than silently reallocating, so a caller
// that wants growth picks a new capacity explicitly.
type PersistentBuffers struct {
	ctx *Context

	maxHashes      int
	maxInputBytes  int // per PersistentBuffers-capacity message
	maxOutputBytes int // per message

	inBuf      hal.Buffer
	outBuf     hal.Buffer
	stagingBuf hal.Buffer
	uniformBuf hal.Buffer
}

// NewPersistentBuffers allocates buffers sized for up to maxHashes
// messages of maxInputBytes bytes each, producing up to maxOutputBytes
// of digest per message.
func NewPersistentBuffers(ctx *Context, maxHashes, maxInputBytes, maxOutputBytes int) (*PersistentBuffers, error) {
	device := ctx.device
	inSize := alignUp16(maxHashes * maxInputBytes)
	outSize := alignUp16(maxHashes * outputStride(maxOutputBytes))

	inBuf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "gpusha3_persist_in", Size: uint64(inSize),
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, errors.Wrap(ErrGpuOperationFailed, err.Error())
	}
	outBuf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "gpusha3_persist_out", Size: uint64(outSize),
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		device.DestroyBuffer(inBuf)
		return nil, errors.Wrap(ErrGpuOperationFailed, err.Error())
	}
	stagingBuf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "gpusha3_persist_staging", Size: uint64(outSize),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		device.DestroyBuffer(inBuf)
		device.DestroyBuffer(outBuf)
		return nil, errors.Wrap(ErrGpuOperationFailed, err.Error())
	}
	uniformBuf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "gpusha3_persist_params", Size: gpuHashParamsSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		device.DestroyBuffer(inBuf)
		device.DestroyBuffer(outBuf)
		device.DestroyBuffer(stagingBuf)
		return nil, errors.Wrap(ErrGpuOperationFailed, err.Error())
	}

	return &PersistentBuffers{
		ctx: ctx, maxHashes: maxHashes, maxInputBytes: maxInputBytes, maxOutputBytes: maxOutputBytes,
		inBuf: inBuf, outBuf: outBuf, stagingBuf: stagingBuf, uniformBuf: uniformBuf,
	}, nil
}

// Fits reports whether a batch of numHashes messages of inputLength bytes
// producing outputLength bytes each fits within this buffer set's
// capacity without reallocation.
func (p *PersistentBuffers) Fits(numHashes, inputLength, outputLength int) bool {
	return numHashes <= p.maxHashes && inputLength <= p.maxInputBytes && outputLength <= p.maxOutputBytes
}

// Dispatch runs one compute pass using the persistent buffer set. The
// caller must have checked Fits first; Dispatch itself re-validates and
// returns ErrGpuOperationFailed on overflow rather than corrupting
// adjacent buffer regions.
func (p *PersistentBuffers) Dispatch(params DispatchParams) ([]byte, error) {
	n := len(params.Messages)
	if n == 0 {
		return nil, nil
	}
	if !p.Fits(n, params.InputLength, params.OutputBytes) {
		return nil, errors.Wrapf(ErrGpuOperationFailed,
			"batch (n=%d, in=%d, out=%d) exceeds persistent capacity (n=%d, in=%d, out=%d)",
			n, params.InputLength, params.OutputBytes, p.maxHashes, p.maxInputBytes, p.maxOutputBytes)
	}

	inputBuf := packInputs(params.Messages, params.InputLength)
	stride := outputStride(params.OutputBytes)
	outputSize := alignUp16(n * stride)
	uniform := gpuHashParams{
		NumHashes:    uint32(n),
		InputLength:  uint32(params.InputLength),
		RateBytes:    uint32(params.RateBytes),
		OutputBytes:  uint32(params.OutputBytes),
		Domain:       uint32(params.Domain),
		OutputStride: uint32(stride),
	}.marshal()

	ctx := p.ctx
	ctx.queue.WriteBuffer(p.inBuf, 0, inputBuf)
	ctx.queue.WriteBuffer(p.uniformBuf, 0, uniform)

	bindGroup, err := ctx.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "gpusha3_persist_bind", Layout: ctx.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: p.inBuf.NativeHandle(), Offset: 0, Size: uint64(len(inputBuf))}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: p.outBuf.NativeHandle(), Offset: 0, Size: uint64(outputSize)}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: p.uniformBuf.NativeHandle(), Offset: 0, Size: gpuHashParamsSize}},
		},
	})
	if err != nil {
		return nil, errors.Wrap(ErrGpuOperationFailed, err.Error())
	}
	defer ctx.device.DestroyBindGroup(bindGroup)

	out, err := ctx.dispatchAndReadback(bindGroup, p.outBuf, p.stagingBuf, n, uint64(outputSize))
	if err != nil {
		return nil, err
	}
	return unpackStrided(out, n, params.OutputBytes), nil
}

// Close releases the persistent buffer set. The owning Context must
// outlive it; Close does not touch ctx itself.
func (p *PersistentBuffers) Close() {
	device := p.ctx.device
	device.DestroyBuffer(p.inBuf)
	device.DestroyBuffer(p.outBuf)
	device.DestroyBuffer(p.stagingBuf)
	device.DestroyBuffer(p.uniformBuf)
}
