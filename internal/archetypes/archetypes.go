package archetypes

import (
	"math"
)

// Archetype is one of the five persona leanings tracked per session.
type Archetype string

const (
	Loyalist Archetype = "loyalist"
	Prestige Archetype = "prestige"
	Analyst  Archetype = "analyst"
	Achiever Archetype = "achiever"
	Legacy   Archetype = "legacy"
)

// All returns the five archetypes in their canonical order.
func All() []Archetype {
	return []Archetype{Loyalist, Prestige, Analyst, Achiever, Legacy}
}

// Vector maps every archetype to a non-negative score. Missing keys read
// as zero; deltas produced by the signal engine use the same shape.
type Vector map[Archetype]float64

// Delta is one turn's additive update to a session vector.
type Delta = Vector

func NewVector() Vector {
	v := make(Vector, 5)
	for _, a := range All() {
		v[a] = 0
	}
	return v
}

func (v Vector) Clone() Vector {
	out := make(Vector, 5)
	for _, a := range All() {
		out[a] = v[a]
	}
	return out
}

// Valid reports whether every value is finite and non-negative.
func (v Vector) Valid() bool {
	if len(v) == 0 {
		return false
	}
	for _, a := range All() {
		val := v[a]
		if math.IsNaN(val) || math.IsInf(val, 0) || val < 0 {
			return false
		}
	}
	return true
}

func (v Vector) Total() float64 {
	total := 0.0
	for _, a := range All() {
		total += v[a]
	}
	return total
}

// Add merges a turn delta into the vector in place and returns it.
func (v Vector) Add(d Delta) Vector {
	for _, a := range All() {
		v[a] += d[a]
	}
	return v
}

// Decay scales every score by factor. Deltas only ever grow the vector, so
// long sessions rely on this per-turn decay to stay bounded. Factors outside
// (0, 1] leave the vector untouched.
func (v Vector) Decay(factor float64) Vector {
	if factor <= 0 || factor >= 1 || math.IsNaN(factor) {
		return v
	}
	for _, a := range All() {
		v[a] *= factor
	}
	return v
}

// Dominant returns the highest-scoring archetype, or false when the vector
// carries no usable mass. Ties resolve in canonical order.
func (v Vector) Dominant() (Archetype, bool) {
	if !v.Valid() || v.Total() <= 0 {
		return "", false
	}
	best := All()[0]
	for _, a := range All()[1:] {
		if v[a] > v[best] {
			best = a
		}
	}
	return best, true
}
