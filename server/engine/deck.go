package engine

import (
	"math/rand"
	"time"
)

// Deck is the shared draw pile: an ordered card sequence with a draw cursor
// and a discard pile. Cards move between the pile, the discard, and player
// hands; they are never created or destroyed after construction.
type Deck struct {
	cards   []Card
	cursor  int
	discard []Card
	rng     *rand.Rand
}

// NewDeck builds and shuffles the full catalog. A zero seed falls back to the
// wall clock.
func NewDeck(seed int64) *Deck {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	d := &Deck{
		cards: NewCatalog(),
		rng:   rand.New(rand.NewSource(seed)),
	}
	d.shuffle()
	return d
}

// shuffle is an in-place Fisher-Yates pass over the undrawn pile.
func (d *Deck) shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// DrawNext returns the next card. When the pile is exhausted the discard is
// shuffled back in first; the second result reports that this happened.
func (d *Deck) DrawNext() (Card, bool) {
	reshuffled := false
	if d.cursor >= len(d.cards) {
		if len(d.discard) == 0 {
			// Unreachable under the conservation invariant: hands are
			// bounded, so the discard always has cards by the time the
			// pile runs dry.
			panic("engine: deck exhausted with empty discard")
		}
		d.cards = d.discard
		d.discard = nil
		d.cursor = 0
		d.shuffle()
		reshuffled = true
	}
	c := d.cards[d.cursor]
	d.cursor++
	return c, reshuffled
}

// Discard appends a card to the discard pile.
func (d *Deck) Discard(c Card) {
	d.discard = append(d.discard, c)
}

// Remaining reports how many undrawn cards are left before a reshuffle.
func (d *Deck) Remaining() int {
	return len(d.cards) - d.cursor
}
