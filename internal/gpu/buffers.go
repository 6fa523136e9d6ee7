package gpu

import "encoding/binary"

// gpuHashParamsSize matches the WGSL HashParams uniform struct: six
// meaningful u32 fields plus two explicit padding words, so the whole
// struct is 32 bytes — a multiple of the 16-byte alignment WebGPU
// requires for uniform buffer bindings. This is a deliberate deviation
// from the four-field (num_hashes, input_length, rate_bytes,
// output_bytes) wire layout, documented in DESIGN.md.
const gpuHashParamsSize = 32

// gpuHashParams mirrors shader.wgsl's HashParams uniform struct exactly;
// field order and width must match byte-for-byte.
type gpuHashParams struct {
	NumHashes    uint32
	InputLength  uint32
	RateBytes    uint32
	OutputBytes  uint32
	Domain       uint32
	OutputStride uint32
	_pad0        uint32
	_pad1        uint32
}

func (p gpuHashParams) marshal() []byte {
	buf := make([]byte, gpuHashParamsSize)
	binary.LittleEndian.PutUint32(buf[0:4], p.NumHashes)
	binary.LittleEndian.PutUint32(buf[4:8], p.InputLength)
	binary.LittleEndian.PutUint32(buf[8:12], p.RateBytes)
	binary.LittleEndian.PutUint32(buf[12:16], p.OutputBytes)
	binary.LittleEndian.PutUint32(buf[16:20], p.Domain)
	binary.LittleEndian.PutUint32(buf[20:24], p.OutputStride)
	return buf
}

// alignUp16 rounds n up to the next multiple of 16, the alignment
// WebGPU backends require for storage/uniform buffer sizes. n <= 0
// yields 16, so no buffer is ever sized zero.
func alignUp16(n int) int {
	return alignUp(n, 16)
}

// alignUp4 rounds n up to the next multiple of 4. Used to give each
// message's slot in the output storage buffer a word-aligned stride, so
// no two invocations' byte writes ever land in the same u32 word — see
// outputStride.
func alignUp4(n int) int {
	return alignUp(n, 4)
}

func alignUp(n, multiple int) int {
	if n <= 0 {
		return multiple
	}
	rem := n % multiple
	if rem == 0 {
		return n
	}
	return n + (multiple - rem)
}

// outputStride returns the per-message byte stride in the output storage
// buffer for a digest of outputBytes bytes: outputBytes rounded up to a
// 4-byte boundary. write_output_byte in shader.wgsl does a
// read-modify-write on its containing u32 word; without this alignment,
// an outputBytes that is not a multiple of 4 would let invocation i's
// tail byte and invocation i+1's head byte share one word and race.
func outputStride(outputBytes int) int {
	return alignUp4(outputBytes)
}

// packInputs concatenates equal-length messages into one flat buffer,
// padded to a 16-byte boundary. The shader indexes into it as
// array<u32> at message_index*inputLength byte offsets, so no per-message
// padding is inserted between messages. Reads never race, so inputs need
// no per-message stride the way outputs do.
func packInputs(messages [][]byte, inputLength int) []byte {
	raw := len(messages) * inputLength
	buf := make([]byte, alignUp16(raw))
	for i, m := range messages {
		copy(buf[i*inputLength:], m)
	}
	return buf
}

// unpackStrided extracts n tightly-packed outputBytes-long digests from
// a buffer laid out at outputStride(outputBytes)-byte strides, producing
// the flat num_hashes*output_bytes result the public API promises.
func unpackStrided(buf []byte, n, outputBytes int) []byte {
	stride := outputStride(outputBytes)
	out := make([]byte, n*outputBytes)
	for i := 0; i < n; i++ {
		copy(out[i*outputBytes:], buf[i*stride:i*stride+outputBytes])
	}
	return out
}
