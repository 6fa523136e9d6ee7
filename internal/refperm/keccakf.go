package refperm

// Keccak-f[1600]: 24 rounds of theta, rho, pi, chi, iota over a 5x5 matrix
// of 64-bit lanes. Round constants and rotation offsets are the standard
// FIPS 202 tables, laid out the way a generic (non-unrolled) pure-Go
// permutation keeps them: flat arrays indexed by round and by lane.

const rounds = 24

var roundConstants = [rounds]uint64{
	0x0000000000000001, 0x0000000000008082,
	0x800000000000808A, 0x8000000080008000,
	0x000000000000808B, 0x0000000080000001,
	0x8000000080008081, 0x8000000000008009,
	0x000000000000008A, 0x0000000000000088,
	0x0000000080008009, 0x000000008000000A,
	0x000000008000808B, 0x800000000000008B,
	0x8000000000008089, 0x8000000000008003,
	0x8000000000008002, 0x8000000000000080,
	0x000000000000800A, 0x800000008000000A,
	0x8000000080008081, 0x8000000000008080,
	0x0000000080000001, 0x8000000080008008,
}

// rotationOffsets[i] is the rho rotation applied to the lane visited at
// step i of the pi permutation below.
var rotationOffsets = [24]uint{
	1, 3, 6, 10, 15, 21, 28, 36,
	45, 55, 2, 14, 27, 41, 56, 8,
	25, 43, 62, 18, 39, 61, 20, 44,
}

// piLane[i] is the destination lane index visited at step i.
var piLane = [24]uint{
	10, 7, 11, 17, 18, 3, 5, 16,
	8, 21, 24, 4, 15, 23, 19, 13,
	12, 2, 20, 14, 22, 9, 6, 1,
}

func keccakF1600(a *[25]uint64) {
	var c [5]uint64
	for round := 0; round < rounds; round++ {
		// theta
		for i := range c {
			c[i] = a[i] ^ a[5+i] ^ a[10+i] ^ a[15+i] ^ a[20+i]
		}
		for i := range c {
			t := c[(i+4)%5] ^ rotl64(c[(i+1)%5], 1)
			for j := 0; j < 25; j += 5 {
				a[i+j] ^= t
			}
		}

		// rho + pi
		temp := a[1]
		for i, j := range piLane {
			a[j], temp = rotl64(temp, rotationOffsets[i]), a[j]
		}

		// chi
		for j := 0; j < 25; j += 5 {
			for i := range c {
				c[i] = a[j+i]
			}
			for i := range c {
				a[j+i] ^= (^c[(i+1)%5]) & c[(i+2)%5]
			}
		}

		// iota
		a[0] ^= roundConstants[round]
	}
}

func rotl64(x uint64, n uint) uint64 {
	return (x << n) | (x >> (64 - n))
}
