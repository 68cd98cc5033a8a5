package dice

import "math/bits"

const (
	chachaRounds = 12
	blockWords   = 16
)

// chacha12 is a ChaCha keystream generator with 12 rounds, a 64-bit block
// counter and a zero stream id. Words are handed out in keystream order.
type chacha12 struct {
	key     [8]uint32
	counter uint64
	block   [blockWords]uint32
	index   int
}

// newChaCha12FromSeed expands a 64-bit seed into a 256-bit key with PCG32,
// the expansion used by SeedableRng::seed_from_u64 implementations.
func newChaCha12FromSeed(seed uint64) *chacha12 {
	const (
		mul = 6364136223846793005
		inc = 11634580027462260723
	)

	rng := &chacha12{index: blockWords}

	state := seed
	for i := range rng.key {
		state = state*mul + inc
		xorshifted := uint32(((state >> 18) ^ state) >> 27)
		rot := int(state >> 59)
		rng.key[i] = bits.RotateLeft32(xorshifted, -rot)
	}

	return rng
}

func (that *chacha12) nextUint32() uint32 {
	if that.index >= blockWords {
		that.refill()
	}

	word := that.block[that.index]
	that.index++

	return word
}

func (that *chacha12) refill() {
	var state [blockWords]uint32

	state[0], state[1], state[2], state[3] = 0x61707865, 0x3320646e, 0x79622d32, 0x6b206574
	copy(state[4:12], that.key[:])
	state[12] = uint32(that.counter)
	state[13] = uint32(that.counter >> 32)

	working := state
	for range chachaRounds / 2 {
		quarterRound(&working, 0, 4, 8, 12)
		quarterRound(&working, 1, 5, 9, 13)
		quarterRound(&working, 2, 6, 10, 14)
		quarterRound(&working, 3, 7, 11, 15)

		quarterRound(&working, 0, 5, 10, 15)
		quarterRound(&working, 1, 6, 11, 12)
		quarterRound(&working, 2, 7, 8, 13)
		quarterRound(&working, 3, 4, 9, 14)
	}

	for i := range working {
		that.block[i] = working[i] + state[i]
	}

	that.counter++
	that.index = 0
}

func quarterRound(s *[blockWords]uint32, a, b, c, d int) {
	s[a] += s[b]
	s[d] = bits.RotateLeft32(s[d]^s[a], 16)
	s[c] += s[d]
	s[b] = bits.RotateLeft32(s[b]^s[c], 12)
	s[a] += s[b]
	s[d] = bits.RotateLeft32(s[d]^s[a], 8)
	s[c] += s[d]
	s[b] = bits.RotateLeft32(s[b]^s[c], 7)
}
