package gpusha3

// BatchParams describes one batch hashing request: which variant, how
// many hashes, the common input length every input in the batch shares,
// and (for SHAKE) the requested output length.
type BatchParams struct {
	Variant      Variant
	NumHashes    int
	InputLength  int
	OutputLength *int // nil selects the variant default; required for SHAKE
}

// NewBatchParams returns params for numHashes inputs of inputLength bytes
// each, using the variant's default output length.
func NewBatchParams(variant Variant, numHashes, inputLength int) BatchParams {
	return BatchParams{Variant: variant, NumHashes: numHashes, InputLength: inputLength}
}

// WithOutputLength returns a copy of p with an explicit output length set
// (required for SHAKE128/SHAKE256; overrides the default for SHA3-*).
func (p BatchParams) WithOutputLength(length int) BatchParams {
	p.OutputLength = &length
	return p
}

// EffectiveOutputBytes returns OutputLength if set, else the variant's
// fixed output size. It fails for a SHAKE variant with neither.
func (p BatchParams) EffectiveOutputBytes() (int, error) {
	if p.OutputLength != nil {
		return *p.OutputLength, nil
	}
	if n := p.Variant.OutputBytes(); n > 0 {
		return n, nil
	}
	return 0, ErrShakeOutputLengthRequired
}
