package archetypes

// maxAffinityBoost caps the archetype-alignment contribution so persona fit
// never outweighs structural metadata alignment.
const maxAffinityBoost = 0.15

// Boost returns the archetype-alignment term for a chunk given the current
// session vector and the chunk's declared affinities. A chunk claiming all
// five archetypes is generic and earns nothing; an absent or invalid vector
// (negative or non-finite values) contributes zero rather than erroring.
func Boost(v Vector, affinities []Archetype) float64 {
	if len(affinities) == 0 || !v.Valid() {
		return 0
	}

	distinct := map[Archetype]bool{}
	known := map[Archetype]bool{}
	for _, a := range All() {
		known[a] = true
	}
	for _, a := range affinities {
		if known[a] {
			distinct[a] = true
		}
	}
	if len(distinct) == 0 || len(distinct) >= len(All()) {
		return 0
	}

	total := v.Total()
	if total <= 0 {
		return 0
	}
	aligned := 0.0
	for a := range distinct {
		aligned += v[a]
	}
	return maxAffinityBoost * aligned / total
}
