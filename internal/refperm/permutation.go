// Package refperm is a pure-Go mirror of the per-invocation Keccak sponge
// that the compute shader implements: absorb -> pad -> Keccak-f -> squeeze,
// parameterized by rate and domain separator instead of fixed to
// Keccak-256. It exists to let the shader translation be checked
// bit-for-bit on the host without a GPU, the same role the teacher
// package's Sum256/Hasher pair plays for Keccak-256 against
// golang.org/x/crypto/sha3 in its own benchmarks.
//
// This is not the production CPU fallback (see internal/cpuref for that);
// it is a test oracle that walks the exact state machine the shader does.
package refperm

// State holds the 1600-bit (25-lane) Keccak state and the sponge
// parameters for one hash invocation.
type State struct {
	a      [25]uint64
	rate   int
	domain byte
}

// New returns a fresh sponge for the given rate (bytes) and domain
// separator byte (0x06 for SHA3-*, 0x1F for SHAKE*).
func New(rate int, domain byte) *State {
	return &State{rate: rate, domain: domain}
}

// Reset clears the sponge to its initial all-zero state.
func (s *State) Reset() {
	s.a = [25]uint64{}
}

// Absorb feeds the entire message in one call; it must be called exactly
// once per hash (this mirrors each shader invocation processing one
// complete, fully-buffered message).
func (s *State) Absorb(message []byte) {
	for len(message) >= s.rate {
		xorIn(&s.a, message[:s.rate])
		keccakF1600(&s.a)
		message = message[s.rate:]
	}
	xorIn(&s.a, message)
	s.pad(len(message))
	keccakF1600(&s.a)
}

// pad applies FIPS 202 multi-rate padding: the domain byte at the first
// free byte of the block, 0x80 XORed into the last byte of the rate.
func (s *State) pad(msgLenInBlock int) {
	xorByte(&s.a, msgLenInBlock, s.domain)
	xorByte(&s.a, s.rate-1, 0x80)
}

// xorByte XORs a single byte into lane byteIndex/8 at offset byteIndex%8,
// little-endian, without assuming host byte order.
func xorByte(a *[25]uint64, byteIndex int, v byte) {
	lane := byteIndex >> 3
	shift := uint(byteIndex&7) * 8
	a[lane] ^= uint64(v) << shift
}

// Squeeze writes exactly outLen bytes of output, permuting between blocks
// as needed for outputs longer than the rate (SHAKE).
func (s *State) Squeeze(outLen int) []byte {
	out := make([]byte, 0, outLen)
	for len(out) < outLen {
		block := stateToBytes(&s.a)[:s.rate]
		remaining := outLen - len(out)
		if remaining < s.rate {
			out = append(out, block[:remaining]...)
			break
		}
		out = append(out, block...)
		keccakF1600(&s.a)
	}
	return out
}

// Sum computes Absorb(message) followed by Squeeze(outLen) on a fresh
// sponge; the common case of hashing one complete message.
func Sum(rate int, domain byte, message []byte, outLen int) []byte {
	s := New(rate, domain)
	s.Absorb(message)
	return s.Squeeze(outLen)
}

func xorIn(a *[25]uint64, data []byte) {
	n := len(data) >> 3
	for i := 0; i < n; i++ {
		a[i] ^= le64(data[8*i:])
	}
	if rem := len(data) - n<<3; rem > 0 {
		var last [8]byte
		copy(last[:], data[n<<3:])
		a[n] ^= le64(last[:])
	}
}

func stateToBytes(a *[25]uint64) []byte {
	var out [200]byte
	for i, word := range a {
		putLE64(out[i*8:], word)
	}
	return out[:]
}

func le64(b []byte) uint64 {
	_ = b[7]
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

func putLE64(b []byte, x uint64) {
	b[0] = byte(x)
	b[1] = byte(x >> 8)
	b[2] = byte(x >> 16)
	b[3] = byte(x >> 24)
	b[4] = byte(x >> 32)
	b[5] = byte(x >> 40)
	b[6] = byte(x >> 48)
	b[7] = byte(x >> 56)
}
