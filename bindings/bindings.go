// Package bindings is the foreign-runtime adapter boundary: the one
// place internal typed errors are collapsed into plain "<context>: <cause>"
// strings, matching the shape a Node.js/Bun WASM binding would expose to
// JavaScript callers. Everything else in the module keeps typed,
// errors.Is-matchable errors; only this package renders them as text.
package bindings

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/shardwave/gpusha3"
	"github.com/shardwave/gpusha3/internal/gpu"
)

// Adapter wraps one gpusha3.Hasher behind the hashSingle/hashBatch/
// hashBatchWithLength surface.
type Adapter struct {
	hasher  *gpusha3.Hasher
	ctx     *gpu.Context
	variant gpusha3.Variant
}

// New opens a GPU context and constructs an Adapter for variant, the Go
// analogue of the original binding's async `Sha3WasmHasher.new(variant)`
// constructor. forceFallbackAdapter mirrors the CLI's
// --fallback-adapter flag for exercising the non-preferred adapter path.
func New(variant string, forceFallbackAdapter bool) (*Adapter, error) {
	v, err := gpusha3.ParseVariant(variant)
	if err != nil {
		return nil, fmt.Errorf("Invalid SHA-3 variant: %s, valid options: sha3-224, sha3-256, sha3-384, sha3-512, shake128, shake256", variant)
	}

	ctx, err := gpu.New(bindingsLogger(), forceFallbackAdapter)
	if err != nil {
		log.Warn().Err(err).Msg("bindings: GPU init failed, falling back to CPU-only hasher")
		return &Adapter{hasher: gpusha3.New(nil, v, bindingsLogger()), variant: v}, nil
	}

	return &Adapter{hasher: gpusha3.New(ctx, v, bindingsLogger()), ctx: ctx, variant: v}, nil
}

func bindingsLogger() zerolog.Logger {
	return log.Logger.With().Str("component", "bindings").Logger()
}

// Close releases the adapter's GPU context, if one was acquired.
func (a *Adapter) Close() {
	a.hasher.Close()
	if a.ctx != nil {
		a.ctx.Close()
	}
}

// HashSingle hashes one input under the adapter's variant, using its
// default output length (fixed variants) — SHAKE variants must go
// through HashBatchWithLength instead, since a single-message call here
// has no way to carry an explicit length.
func (a *Adapter) HashSingle(input []byte) ([]byte, error) {
	out, err := a.hasher.HashBatch([][]byte{input})
	if err != nil {
		return nil, fmt.Errorf("Hashing failed: %w", err)
	}
	return out, nil
}

// HashBatch hashes inputs, which must all share one length, using the
// variant's default output length. Returns one slice per input, in
// order.
func (a *Adapter) HashBatch(inputs [][]byte) ([][]byte, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	flat, err := a.hasher.HashBatch(inputs)
	if err != nil {
		return nil, fmt.Errorf("Hashing failed: %w", err)
	}
	return splitEqual(flat, len(inputs)), nil
}

// HashBatchWithLength hashes inputs (which must all share one length)
// producing outputLength bytes per digest — the only way to drive a
// SHAKE128/SHAKE256 adapter, and also usable to override a fixed
// variant's default length.
func (a *Adapter) HashBatchWithLength(inputs [][]byte, outputLength int) ([][]byte, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	inputLength := len(inputs[0])
	for _, in := range inputs {
		if len(in) != inputLength {
			return nil, fmt.Errorf("All inputs must have the same length for batch processing")
		}
	}

	params := gpusha3.NewBatchParams(a.variant, len(inputs), inputLength).WithOutputLength(outputLength)
	flat, err := a.hasher.HashBatchWithParams(inputs, params)
	if err != nil {
		return nil, fmt.Errorf("Hashing failed: %w", err)
	}
	return splitEqual(flat, len(inputs)), nil
}

// GetVariant returns the adapter's variant name, e.g. "sha3-256".
func (a *Adapter) GetVariant() string { return a.variant.String() }

// GetOutputSize returns the variant's fixed digest length, or 0 for a
// SHAKE variant (which requires HashBatchWithLength).
func (a *Adapter) GetOutputSize() int { return a.variant.OutputBytes() }

func splitEqual(flat []byte, n int) [][]byte {
	if n == 0 || len(flat) == 0 {
		return nil
	}
	chunk := len(flat) / n
	out := make([][]byte, n)
	for i := 0; i < n; i++ {
		out[i] = flat[i*chunk : (i+1)*chunk]
	}
	return out
}
