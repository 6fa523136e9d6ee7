package bindings

// Sha3 hashes one input under variant, opening and tearing down a GPU
// context for the single call. Convenience wrapper over New +
// Adapter.HashSingle for callers that don't want to manage an Adapter's
// lifetime themselves.
func Sha3(variant string, input []byte) ([]byte, error) {
	a, err := New(variant, false)
	if err != nil {
		return nil, err
	}
	defer a.Close()
	return a.HashSingle(input)
}

// Sha3Batch hashes inputs (which must all share one length) under
// variant, opening and tearing down a GPU context for the call.
func Sha3Batch(variant string, inputs [][]byte) ([][]byte, error) {
	a, err := New(variant, false)
	if err != nil {
		return nil, err
	}
	defer a.Close()
	return a.HashBatch(inputs)
}
