package pool

import "math/rand"

// persistProbability is the Reporter's amortised-durability trade-off:
// a snapshot write is triggered on roughly one report in ten rather
// than on every call.
const persistProbability = 0.10

func shouldPersist() bool {
	return rand.Float64() < persistProbability
}
