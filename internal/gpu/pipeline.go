package gpu

import (
	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// workgroupSize must match shader.wgsl's @workgroup_size(256, 1, 1).
const workgroupSize = 256

var (
	// ErrGpuOperationFailed covers command encoding, submission, and
	// dispatch failures not attributable to buffer mapping specifically.
	ErrGpuOperationFailed = errors.New("gpu: operation failed")
	// ErrBufferMapping means the post-dispatch staging readback failed.
	ErrBufferMapping = errors.New("gpu: buffer readback failed")
)

// DispatchParams describes one batch dispatch: messages must already be
// padded/validated by the caller (root gpusha3 package) to a single
// common input length.
type DispatchParams struct {
	Messages    [][]byte
	InputLength int
	RateBytes   int
	OutputBytes int
	Domain      byte
}

// Dispatch runs one compute pass over params.Messages and returns the
// concatenated digests in input order. It allocates fresh GPU buffers
// for this call; see PersistentBuffers for the amortized variant used
// when a Hasher is reused across many calls with bounded batch/input
// sizes.
func (c *Context) Dispatch(params DispatchParams) ([]byte, error) {
	n := len(params.Messages)
	if n == 0 {
		return nil, nil
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

	device := c.device

	inBuf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "gpusha3_in", Size: uint64(len(inputBuf)),
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, errors.Wrap(ErrGpuOperationFailed, err.Error())
	}
	defer device.DestroyBuffer(inBuf)

	outBuf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "gpusha3_out", Size: uint64(outputSize),
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, errors.Wrap(ErrGpuOperationFailed, err.Error())
	}
	defer device.DestroyBuffer(outBuf)

	stagingBuf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "gpusha3_staging", Size: uint64(outputSize),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, errors.Wrap(ErrGpuOperationFailed, err.Error())
	}
	defer device.DestroyBuffer(stagingBuf)

	uniformBuf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "gpusha3_params", Size: uint64(len(uniform)),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, errors.Wrap(ErrGpuOperationFailed, err.Error())
	}
	defer device.DestroyBuffer(uniformBuf)

	c.queue.WriteBuffer(inBuf, 0, inputBuf)
	c.queue.WriteBuffer(uniformBuf, 0, uniform)

	bindGroup, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "gpusha3_bind", Layout: c.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: inBuf.NativeHandle(), Offset: 0, Size: uint64(len(inputBuf))}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: outBuf.NativeHandle(), Offset: 0, Size: uint64(outputSize)}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: uint64(len(uniform))}},
		},
	})
	if err != nil {
		return nil, errors.Wrap(ErrGpuOperationFailed, err.Error())
	}
	defer device.DestroyBindGroup(bindGroup)

	out, err := c.dispatchAndReadback(bindGroup, outBuf, stagingBuf, n, uint64(outputSize))
	if err != nil {
		return nil, err
	}
	return unpackStrided(out, n, params.OutputBytes), nil
}

func (c *Context) dispatchAndReadback(bindGroup hal.BindGroup, outBuf, stagingBuf hal.Buffer, numHashes int, outputSize uint64) ([]byte, error) {
	encoder, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "gpusha3_encoder"})
	if err != nil {
		return nil, errors.Wrap(ErrGpuOperationFailed, err.Error())
	}
	if err := encoder.BeginEncoding("gpusha3_batch"); err != nil {
		return nil, errors.Wrap(ErrGpuOperationFailed, err.Error())
	}

	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "gpusha3_pass"})
	pass.SetPipeline(c.pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	groups := (uint32(numHashes) + workgroupSize - 1) / workgroupSize
	pass.Dispatch(groups, 1, 1)
	pass.End()

	encoder.CopyBufferToBuffer(outBuf, stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: outputSize},
	})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, errors.Wrap(ErrGpuOperationFailed, err.Error())
	}
	defer c.device.FreeCommandBuffer(cmdBuf)

	fence, err := c.device.CreateFence()
	if err != nil {
		return nil, errors.Wrap(ErrGpuOperationFailed, err.Error())
	}
	defer c.device.DestroyFence(fence)

	if err := c.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return nil, errors.Wrap(ErrGpuOperationFailed, err.Error())
	}
	ok, err := c.device.Wait(fence, 1, fenceWaitTimeout)
	if err != nil || !ok {
		return nil, errors.Wrapf(ErrGpuOperationFailed, "fence wait: ok=%v err=%v", ok, err)
	}

	readback := make([]byte, outputSize)
	if err := c.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return nil, errors.Wrap(ErrBufferMapping, err.Error())
	}
	return readback, nil
}
