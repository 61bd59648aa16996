package mines

import (
	"math"
	"math/rand/v2"
)

// Random yields floats in [0, 1).
type Random interface {
	Float64() float64
}

var xorShiftBase = [4]int32{123456, 654321, 456789, 987654}

// XorShift is a 128-bit xorshift stream over signed 32-bit words, bit for
// bit the generator browser clients use. Two streams created from the same
// seed produce the same sequence, which is what keeps two peers' boards in
// sync.
type XorShift struct {
	x, y, z, w int32
}

func NewXorShift(seed int64) *XorShift {
	s := &XorShift{
		x: xorShiftBase[0] + int32(seed),
		y: xorShiftBase[1] + int32(seed),
		z: xorShiftBase[2] + int32(seed),
		w: xorShiftBase[3] + int32(seed),
	}

	var warm [4]int32
	for i := range warm {
		warm[i] = int32(uint32(int64(math.Round(s.Float64() * 1e16))))
	}
	s.x, s.y, s.z, s.w = warm[0], warm[1], warm[2], warm[3]

	return s
}

func (s *XorShift) next() int32 {
	t := s.x ^ (s.x << 11)
	s.x, s.y, s.z = s.y, s.z, s.w
	s.w = s.w ^ (s.w >> 19) ^ (t ^ (t >> 8))
	return s.w
}

// Float64 returns w / (2^31-1).
func (s *XorShift) Float64() float64 {
	return float64(s.next()) / math.MaxInt32
}

// Shuffle performs a Fisher-Yates shuffle of n elements driven by r. Draws
// outside [0, 1) are clamped to the valid range.
func Shuffle(n int, r Random, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := int(r.Float64() * float64(i+1))
		j = max(0, min(j, i))
		swap(i, j)
	}
}

const maxSeed = math.MaxInt32

// DrawSeed picks a fresh non-deterministic seed in [1, 2^31-1).
func DrawSeed() int64 {
	return 1 + rand.Int64N(maxSeed-1)
}
