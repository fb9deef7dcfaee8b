// Package content is the boundary to the content provider: layout
// templates and the reference deck the engine allocates cards from.
// Everything here is static today; the interface exists so a remote
// provider can slot in without touching the engine.
package content

import (
	"fmt"
	"math/rand/v2"

	"github.com/oklog/ulid/v2"

	"github.com/zodiora/live/internal/domain"
)

// Provider supplies layout templates and draws cards for them.
type Provider interface {
	Layout(name string) (domain.Layout, bool)
	Draw(layout string) ([]domain.Card, error)
}

// Library is the built-in static provider.
type Library struct {
	deck []string
}

func NewLibrary() *Library {
	return &Library{deck: buildDeck()}
}

// Layout reports the template registered under name.
func (l *Library) Layout(name string) (domain.Layout, bool) {
	lay, ok := layouts[name]
	return lay, ok
}

// Draw allocates one card per slot of the named layout: refs sampled from
// the deck without replacement, orientation rolled per card. The "none"
// layout draws nothing.
func (l *Library) Draw(layout string) ([]domain.Card, error) {
	lay, ok := layouts[layout]
	if !ok {
		return nil, fmt.Errorf("%w: unknown layout %q", domain.ErrInvalidConfig, layout)
	}
	if len(lay.Slots) == 0 {
		return nil, nil
	}
	if len(lay.Slots) > len(l.deck) {
		return nil, fmt.Errorf("%w: layout %q wants %d cards, deck holds %d",
			domain.ErrInvalidConfig, layout, len(lay.Slots), len(l.deck))
	}

	order := rand.Perm(len(l.deck))
	cards := make([]domain.Card, 0, len(lay.Slots))
	for i, slot := range lay.Slots {
		orientation := domain.OrientationNormal
		if rand.IntN(2) == 1 {
			orientation = domain.OrientationInverted
		}
		cards = append(cards, domain.Card{
			ID:          domain.CardID(ulid.Make().String()),
			Ref:         l.deck[order[i]],
			Position:    slot,
			Orientation: orientation,
		})
	}
	return cards, nil
}
