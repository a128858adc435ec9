package engine

import (
	"encoding/json"
	"testing"
)

func TestParseCardRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "7", "12", "+4", "x2", "freeze", "second-chance", "draw-three"} {
		c, err := ParseCard(s)
		if err != nil {
			t.Fatalf("ParseCard(%q): %v", s, err)
		}
		if c.String() != s {
			t.Fatalf("round trip %q -> %v -> %q", s, c, c.String())
		}
	}
	for _, s := range []string{"", "13", "-1", "+x", "y3"} {
		if _, err := ParseCard(s); err == nil {
			t.Fatalf("ParseCard(%q) should fail", s)
		}
	}
}

func TestCardJSONWireForm(t *testing.T) {
	b, err := json.Marshal([]Card{{Kind: KindNumber, Value: 5}, {Kind: KindBonus, Value: 8}, {Kind: KindDrawThree}})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `["5","+8","draw-three"]` {
		t.Fatalf("unexpected wire form %s", b)
	}
	var cards []Card
	if err := json.Unmarshal(b, &cards); err != nil {
		t.Fatal(err)
	}
	if len(cards) != 3 || cards[1].Value != 8 {
		t.Fatalf("unmarshal mismatch: %+v", cards)
	}
}

func TestSpecialPredicate(t *testing.T) {
	if (Card{Kind: KindMultiplier}).Special() {
		t.Fatal("x2 is not a special")
	}
	if !(Card{Kind: KindSecondChance}).Special() {
		t.Fatal("second-chance is a special")
	}
}
