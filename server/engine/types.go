package engine

// PlayerID is the opaque identity the lobby layer assigns to a participant.
type PlayerID string

// Player is the per-participant state inside a match. Order is the stable
// turn slot assigned at match creation; it is the key used for targeting once
// play starts, never the identity string.
type Player struct {
	ID            PlayerID
	Name          string
	Order         int
	Hand          []Card
	Frozen        bool
	Folded        bool
	Lost          bool
	SecondChances int
	Score         int
	Connected     bool
}

// Active reports whether the player may still act this round.
func (p *Player) Active() bool {
	return !p.Frozen && !p.Folded && !p.Lost
}

// HoldsSpecial reports whether an unplayed special sits in the hand.
func (p *Player) HoldsSpecial() bool {
	return p.firstSpecial() >= 0
}

// firstSpecial returns the index of the first special in hand order, or -1.
// Hand order is draw order, which fixes the tie-break when several specials
// piled up during a forced-draw cascade.
func (p *Player) firstSpecial() int {
	for i, c := range p.Hand {
		if c.Special() {
			return i
		}
	}
	return -1
}

// holds reports whether a non-special card of the same kind and value is
// already in the hand. Specials never collide, however many are held.
func (p *Player) holds(c Card) bool {
	if c.Special() {
		return false
	}
	for _, h := range p.Hand {
		if h.Kind == c.Kind && h.Value == c.Value {
			return true
		}
	}
	return false
}

// countingCards is the number of cards that count toward the hand-overflow
// limit: number cards only, bonus cards excluded despite their numeric look.
func (p *Player) countingCards() int {
	n := 0
	for _, c := range p.Hand {
		if c.Kind == KindNumber {
			n++
		}
	}
	return n
}

// ForcedDraw compels one player to draw a fixed number of cards before normal
// turn order resumes. At most one is active per match.
type ForcedDraw struct {
	Target    int
	Remaining int
}

// ActionKind names a state transition.
type ActionKind string

const (
	ActionDraw    ActionKind = "draw"
	ActionFold    ActionKind = "fold"
	ActionUse     ActionKind = "use"
	ActionShuffle ActionKind = "shuffle"
	ActionConnect ActionKind = "connect"
	ActionEnd     ActionKind = "end"
)

// Action is an immutable record of one state transition. The match produces
// them and hands ownership to the caller for broadcast; absent fields stay
// nil rather than using sentinel values.
type Action struct {
	Kind   ActionKind `json:"kind"`
	Actor  *int       `json:"actor,omitempty"`  // turn order
	Card   *Card      `json:"card,omitempty"`   // drawn card, wire form
	Target *int       `json:"target,omitempty"` // turn order, or 0/1 for connect
}

func intp(v int) *int { return &v }
