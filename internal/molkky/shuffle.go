package molkky

import "math/rand/v2"

// Shuffle returns a copy of names in random order. A nil rng uses the
// package-level source.
func Shuffle(names []string, rng *rand.Rand) []string {
	out := append([]string(nil), names...)
	swap := func(i, j int) { out[i], out[j] = out[j], out[i] }
	if rng == nil {
		rand.Shuffle(len(out), swap)
	} else {
		rng.Shuffle(len(out), swap)
	}
	return out
}
