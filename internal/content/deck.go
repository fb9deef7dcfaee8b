package content

import (
	"fmt"

	"github.com/zodiora/live/internal/domain"
)

var signs = []string{
	"aries", "taurus", "gemini", "cancer", "leo", "virgo",
	"libra", "scorpio", "sagittarius", "capricorn", "aquarius", "pisces",
}

var planets = []string{
	"sun", "moon", "mercury", "venus", "mars",
	"jupiter", "saturn", "uranus", "neptune", "pluto",
}

var phases = []string{
	"new", "waxing-crescent", "first-quarter", "waxing-gibbous",
	"full", "waning-gibbous", "last-quarter", "waning-crescent",
}

var aspects = []string{"conjunction", "sextile", "square", "trine", "opposition"}

var elements = []string{"fire", "earth", "air", "water"}

var modalities = []string{"cardinal", "fixed", "mutable"}

var nodes = []string{"north-node", "south-node"}

// buildDeck assembles the full reference deck. Refs are namespaced strings
// the content pipeline resolves to artwork and copy; the engine never
// looks inside them.
func buildDeck() []string {
	refs := make([]string, 0, 56)
	for _, s := range signs {
		refs = append(refs, "sign:"+s)
	}
	for i := 1; i <= 12; i++ {
		refs = append(refs, fmt.Sprintf("house:%d", i))
	}
	for _, p := range planets {
		refs = append(refs, "planet:"+p)
	}
	for _, p := range phases {
		refs = append(refs, "phase:"+p)
	}
	for _, a := range aspects {
		refs = append(refs, "aspect:"+a)
	}
	for _, e := range elements {
		refs = append(refs, "element:"+e)
	}
	for _, m := range modalities {
		refs = append(refs, "modality:"+m)
	}
	for _, n := range nodes {
		refs = append(refs, "node:"+n)
	}
	return refs
}

var layouts = map[string]domain.Layout{
	"three-card": {
		Name:  "three-card",
		Slots: []string{"past", "present", "future"},
	},
	"celtic-cross": {
		Name: "celtic-cross",
		Slots: []string{
			"present", "challenge", "root", "recent-past", "crown",
			"near-future", "self", "environment", "hopes-fears", "outcome",
		},
	},
	"single-focus": {
		Name:  "single-focus",
		Slots: []string{"focus"},
	},
	"constellation": {
		Name:  "constellation",
		Slots: []string{"anchor", "rising", "drifting", "returning", "horizon"},
	},
	"zodiac-wheel": {
		Name: "zodiac-wheel",
		Slots: []string{
			"house-1", "house-2", "house-3", "house-4", "house-5", "house-6",
			"house-7", "house-8", "house-9", "house-10", "house-11", "house-12",
		},
	},
	"queue": {
		Name:  "queue",
		Slots: []string{"opener", "build", "peak", "comedown", "closer"},
	},
	"none": {
		Name: "none",
	},
}
