package timeline

import "time"

// LCG constants for the daily shuffle. Changing them changes every
// published selection.
const (
	lcgMul = 9301
	lcgInc = 49297
	lcgMod = 233280
)

// Seed derives the daily shuffle seed from a UTC calendar date.
func Seed(t time.Time) int64 {
	u := t.UTC()
	return int64(u.Year() + int(u.Month()) + u.Day())
}

// Shuffle returns a Fisher-Yates permutation of ids driven by a linear
// congruential generator. It is a pure function of (ids, seed).
func Shuffle(ids []int, seed int64) []int {
	out := append([]int(nil), ids...)
	s := seed
	for i := len(out) - 1; i > 0; i-- {
		s = (s*lcgMul + lcgInc) % lcgMod
		j := int(s * int64(i+1) / lcgMod)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
