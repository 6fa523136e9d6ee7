// Command gpusha3sum computes SHA-3/SHAKE digests of files or stdin,
// using the GPU-accelerated batch hasher for multiple files at once and
// printing hex digests one per line, shasum-style.
package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/shardwave/gpusha3"
	"github.com/shardwave/gpusha3/internal/gpu"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		variantName     string
		outputLength    int
		fallbackAdapter bool
	)

	cmd := &cobra.Command{
		Use:   "gpusha3sum [files...]",
		Short: "Compute SHA-3/SHAKE digests using a GPU-accelerated batch hasher",
		Long: "gpusha3sum hashes one or more files (or stdin, with no arguments) under a single\n" +
			"SHA-3/SHAKE variant, dispatching the whole batch to a WebGPU compute shader when\n" +
			"possible and falling back to a CPU implementation otherwise.",
		RunE: func(cmd *cobra.Command, args []string) error {
			variant, err := gpusha3.ParseVariant(variantName)
			if err != nil {
				return err
			}
			if variant.IsShake() && outputLength <= 0 {
				return fmt.Errorf("--output-length is required for %s", variant)
			}

			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

			inputs, err := readInputs(args)
			if err != nil {
				return err
			}

			ctx, err := gpu.New(logger, fallbackAdapter)
			if err != nil {
				logger.Warn().Err(err).Msg("GPU context unavailable, using CPU fallback")
				ctx = nil
			} else {
				defer ctx.Close()
			}

			hasher := gpusha3.New(ctx, variant, logger)
			params := gpusha3.NewBatchParams(variant, len(inputs), commonLength(inputs))
			if outputLength > 0 {
				params = params.WithOutputLength(outputLength)
			}

			flat, err := hasher.HashBatchWithParams(inputs, params)
			if err != nil {
				return err
			}

			outLen, err := params.EffectiveOutputBytes()
			if err != nil {
				return err
			}
			for i := 0; i < len(inputs); i++ {
				digest := flat[i*outLen : (i+1)*outLen]
				fmt.Printf("%s\n", hex.EncodeToString(digest))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&variantName, "variant", "sha3-256", "SHA-3/SHAKE variant: sha3-224, sha3-256, sha3-384, sha3-512, shake128, shake256")
	cmd.Flags().IntVar(&outputLength, "output-length", 0, "output length in bytes (required for shake128/shake256)")
	cmd.Flags().BoolVar(&fallbackAdapter, "fallback-adapter", false, "force the non-preferred GPU adapter instead of discrete/integrated preference")

	return cmd
}

// readInputs reads each named file fully into memory, or stdin as a
// single input when no file arguments are given. Every input in a batch
// must share one length (see BatchParams), so callers passing
// differently-sized files get ErrInvalidInputLength from HashBatchWithParams
// rather than a confusing GPU-side failure.
func readInputs(paths []string) ([][]byte, error) {
	if len(paths) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return [][]byte{data}, nil
	}
	out := make([][]byte, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		out = append(out, data)
	}
	return out, nil
}

func commonLength(inputs [][]byte) int {
	if len(inputs) == 0 {
		return 0
	}
	return len(inputs[0])
}
