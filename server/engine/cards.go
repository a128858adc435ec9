package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// CardKind classifies a card in the catalog.
type CardKind string

const (
	KindNumber       CardKind = "number"
	KindBonus        CardKind = "bonus"
	KindMultiplier   CardKind = "multiplier"
	KindFreeze       CardKind = "freeze"
	KindSecondChance CardKind = "second-chance"
	KindDrawThree    CardKind = "draw-three"
)

// Card is one token from the fixed catalog. Value carries the face value for
// number cards (0..12) and the printed bonus for bonus cards (2..10); it is
// zero for every other kind.
type Card struct {
	Kind  CardKind
	Value int
}

// Special reports whether the card must be played via Use rather than kept.
func (c Card) Special() bool {
	return c.Kind == KindFreeze || c.Kind == KindSecondChance || c.Kind == KindDrawThree
}

func (c Card) String() string {
	switch c.Kind {
	case KindNumber:
		return strconv.Itoa(c.Value)
	case KindBonus:
		return fmt.Sprintf("+%d", c.Value)
	case KindMultiplier:
		return "x2"
	default:
		return string(c.Kind)
	}
}

// MarshalJSON writes the card in its wire form, e.g. "7", "+4", "x2", "freeze".
func (c Card) MarshalJSON() ([]byte, error) {
	return strconv.AppendQuote(nil, c.String()), nil
}

func (c *Card) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return err
	}
	card, err := ParseCard(s)
	if err != nil {
		return err
	}
	*c = card
	return nil
}

// ParseCard is the inverse of Card.String.
func ParseCard(s string) (Card, error) {
	switch s {
	case "x2":
		return Card{Kind: KindMultiplier}, nil
	case string(KindFreeze), string(KindSecondChance), string(KindDrawThree):
		return Card{Kind: CardKind(s)}, nil
	}
	if strings.HasPrefix(s, "+") {
		v, err := strconv.Atoi(s[1:])
		if err != nil {
			return Card{}, fmt.Errorf("bad bonus card %q", s)
		}
		return Card{Kind: KindBonus, Value: v}, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 || v > 12 {
		return Card{}, fmt.Errorf("bad card %q", s)
	}
	return Card{Kind: KindNumber, Value: v}, nil
}

// CatalogSize is the fixed deck size.
const CatalogSize = 94

// NewCatalog builds the full 94-card multiset in a deterministic order:
// specials, then the multiplier, then bonus cards, then numerics (one copy of
// 0, n copies of each n in 1..12).
func NewCatalog() []Card {
	deck := make([]Card, 0, CatalogSize)
	for _, k := range []CardKind{KindFreeze, KindSecondChance, KindDrawThree} {
		for i := 0; i < 3; i++ {
			deck = append(deck, Card{Kind: k})
		}
	}
	deck = append(deck, Card{Kind: KindMultiplier})
	for v := 2; v <= 10; v += 2 {
		deck = append(deck, Card{Kind: KindBonus, Value: v})
	}
	deck = append(deck, Card{Kind: KindNumber, Value: 0})
	for v := 1; v <= 12; v++ {
		for i := 0; i < v; i++ {
			deck = append(deck, Card{Kind: KindNumber, Value: v})
		}
	}
	return deck
}
