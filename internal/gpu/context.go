// Package gpu owns the WebGPU device lifecycle and compute dispatch for
// batched Keccak hashing: adapter selection, feature negotiation, shader
// compilation, and the buffer plumbing around a single compute pass. It
// has no notion of SHA-3 variants or CPU fallback; that routing lives in
// the root gpusha3 package, which treats Context and Pipeline as the GPU
// backend behind its public Hasher.
package gpu

import (
	_ "embed"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/rs/zerolog"

	_ "github.com/gogpu/wgpu/hal/vulkan"
)

//go:embed shader.wgsl
var shaderSource string

// FeatureShaderInt64 is requested from the adapter because the compute
// shader operates on the Keccak state as 64-bit lanes natively rather
// than as vec2<u32> pairs. Without it, CreateShaderModule fails and New
// returns an error wrapping ErrShaderCompilation.
const FeatureShaderInt64 = gputypes.Features(1 << 0)

var (
	// ErrAdapterNotFound means EnumerateAdapters returned nothing, or the
	// Vulkan backend itself could not be loaded.
	ErrAdapterNotFound = errors.New("gpu: no adapter found")
	// ErrDeviceCreation means Adapter.Open failed for the selected adapter.
	ErrDeviceCreation = errors.New("gpu: device creation failed")
	// ErrShaderCompilation means CreateShaderModule rejected shader.wgsl.
	ErrShaderCompilation = errors.New("gpu: shader compilation failed")
)

// Context owns one open WebGPU instance/device/queue pair and the single
// compiled compute pipeline the whole package dispatches through.
type Context struct {
	log zerolog.Logger

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline

	adapterName string
}

// New opens a WebGPU device on the preferred (discrete, falling back to
// integrated) adapter and compiles the batch Keccak shader against it.
// Fallback-adapter selection is forced, preferring a
// gputypes.DeviceTypeCPU software adapter, when forceFallbackAdapter is
// true or the WGPU_FORCE_FALLBACK_ADAPTER environment variable is set to
// "1" or "true" — mainly for exercising the CPU-like software adapter
// path in CI.
func New(logger zerolog.Logger, forceFallbackAdapter bool) (*Context, error) {
	forceFallbackAdapter = forceFallbackAdapter || forceFallbackAdapterFromEnv()

	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, errors.Wrap(ErrAdapterNotFound, "vulkan backend unavailable")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, errors.Wrap(ErrAdapterNotFound, err.Error())
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, errors.Wrap(ErrAdapterNotFound, "EnumerateAdapters returned 0 adapters")
	}

	selected := &adapters[0]
	if forceFallbackAdapter {
		for i := range adapters {
			if adapters[i].Info.DeviceType == gputypes.DeviceTypeCPU {
				selected = &adapters[i]
				break
			}
		}
	} else {
		for i := range adapters {
			if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU {
				selected = &adapters[i]
				break
			}
		}
		if selected.Info.DeviceType != gputypes.DeviceTypeDiscreteGPU {
			for i := range adapters {
				if adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
					selected = &adapters[i]
					break
				}
			}
		}
	}

	openDev, err := selected.Adapter.Open(FeatureShaderInt64, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, errors.Wrapf(ErrDeviceCreation, "open adapter %q: %v", selected.Info.Name, err)
	}

	ctx := &Context{
		log:         logger.With().Str("component", "gpu").Str("adapter", selected.Info.Name).Logger(),
		instance:    instance,
		device:      openDev.Device,
		queue:       openDev.Queue,
		adapterName: selected.Info.Name,
	}
	if err := ctx.createPipeline(); err != nil {
		ctx.device.Destroy()
		ctx.instance.Destroy()
		return nil, err
	}
	ctx.log.Info().Msg("gpu context initialized")
	return ctx, nil
}

// forceFallbackAdapterFromEnv reports whether WGPU_FORCE_FALLBACK_ADAPTER
// is set to "1" or "true".
func forceFallbackAdapterFromEnv() bool {
	v := os.Getenv("WGPU_FORCE_FALLBACK_ADAPTER")
	return v == "1" || v == "true"
}

func (c *Context) createPipeline() error {
	shader, err := c.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "gpusha3_keccak",
		Source: hal.ShaderSource{WGSL: shaderSource},
	})
	if err != nil {
		return errors.Wrap(ErrShaderCompilation, err.Error())
	}
	c.shader = shader

	bindLayout, err := c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "gpusha3_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
		},
	})
	if err != nil {
		return errors.Wrap(ErrShaderCompilation, err.Error())
	}
	c.bindLayout = bindLayout

	pipeLayout, err := c.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "gpusha3_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{c.bindLayout},
	})
	if err != nil {
		return errors.Wrap(ErrShaderCompilation, err.Error())
	}
	c.pipeLayout = pipeLayout

	pipeline, err := c.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:   "gpusha3_pipeline",
		Layout:  c.pipeLayout,
		Compute: hal.ComputeState{Module: c.shader, EntryPoint: "main"},
	})
	if err != nil {
		return errors.Wrap(ErrShaderCompilation, err.Error())
	}
	c.pipeline = pipeline
	return nil
}

// Device exposes the underlying hal.Device for buffer/bind-group creation
// in pipeline.go. Kept unexported-package-internal on purpose: gpusha3
// never touches hal types directly.
func (c *Context) Device() hal.Device { return c.device }

// Queue exposes the underlying hal.Queue for writes, submits, and reads.
func (c *Context) Queue() hal.Queue { return c.queue }

// BindLayout is the single bind group layout every dispatch's bind group
// is created against.
func (c *Context) BindLayout() hal.BindGroupLayout { return c.bindLayout }

// Pipeline is the compiled compute pipeline every dispatch binds.
func (c *Context) Pipeline() hal.ComputePipeline { return c.pipeline }

// AdapterName reports the selected adapter's name, mainly for logging and
// the CLI's --fallback-adapter diagnostics.
func (c *Context) AdapterName() string { return c.adapterName }

// fenceWaitTimeout bounds how long each dispatch's fence wait may block
// before surfacing ErrGpuOperationFailed.
const fenceWaitTimeout = 5 * time.Second

// Close destroys the pipeline, device, and instance in dependency order.
// Safe to call once; Context is not reusable afterward.
func (c *Context) Close() {
	if c.pipeline != nil {
		c.device.DestroyComputePipeline(c.pipeline)
	}
	if c.pipeLayout != nil {
		c.device.DestroyPipelineLayout(c.pipeLayout)
	}
	if c.bindLayout != nil {
		c.device.DestroyBindGroupLayout(c.bindLayout)
	}
	if c.shader != nil {
		c.device.DestroyShaderModule(c.shader)
	}
	if c.device != nil {
		c.device.Destroy()
	}
	if c.instance != nil {
		c.instance.Destroy()
	}
	c.log.Info().Msg("gpu context closed")
}
