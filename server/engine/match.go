package engine

// Config parameterizes a match.
type Config struct {
	// TargetScore ends the match at the first round boundary where a total
	// reaches it. Zero means DefaultTargetScore.
	TargetScore int
}

// DefaultTargetScore is the score that ends a match at a round boundary.
const DefaultTargetScore = 200

const (
	handLimit     = 6  // more than this many number cards ends the round
	overflowBonus = 15 // flat bonus for the player who overflowed
	forcedDraws   = 3  // draws imposed by a draw-three card
)

// Seat names one participant at match creation; list position becomes the
// turn order.
type Seat struct {
	ID   PlayerID
	Name string
}

// Match owns one deck and the fixed player roster, and drives turn order,
// forced draws, round completion, and scoring. It performs no I/O; every
// action method runs to completion synchronously and returns the Action
// records for the caller to broadcast. Callers must serialize invocations
// per match.
type Match struct {
	players []*Player
	deck    *Deck
	current int
	forced  *ForcedDraw
	round   int
	target  int
	ended   bool
	winner  int
}

// NewMatch creates a match with the roster order frozen as turn order. A zero
// seed shuffles from the wall clock.
func NewMatch(cfg Config, seats []Seat, seed int64) *Match {
	if cfg.TargetScore == 0 {
		cfg.TargetScore = DefaultTargetScore
	}
	m := &Match{
		deck:   NewDeck(seed),
		round:  1,
		target: cfg.TargetScore,
		winner: -1,
	}
	for i, s := range seats {
		m.players = append(m.players, &Player{
			ID:        s.ID,
			Name:      s.Name,
			Order:     i,
			Connected: true,
		})
	}
	return m
}

// Player resolves an identity to its player state, nil if not in this match.
func (m *Match) Player(id PlayerID) *Player {
	for _, p := range m.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Round returns the 1-based round number.
func (m *Match) Round() int { return m.round }

// CurrentTurn returns the turn order of the player to act.
func (m *Match) CurrentTurn() int { return m.current }

// Ended reports whether the match reached its target score.
func (m *Match) Ended() bool { return m.ended }

// Winner returns the winning turn order, or -1 while the match is live.
func (m *Match) Winner() int { return m.winner }

// Draw draws one card for the player. Outside a forced draw the player must
// be the current player and must have no unplayed special; during a forced
// draw only its target may draw.
func (m *Match) Draw(id PlayerID) ([]Action, error) {
	p := m.Player(id)
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	if m.ended {
		return nil, ErrMatchOver
	}
	if m.forced != nil {
		if m.forced.Target != p.Order {
			return nil, ErrForcedDrawPending
		}
	} else {
		if p.HoldsSpecial() {
			return nil, ErrUnplayedSpecial
		}
		if p.Order != m.current {
			return nil, ErrNotYourTurn
		}
	}

	card, reshuffled := m.deck.DrawNext()
	var acts []Action
	if reshuffled {
		acts = append(acts, Action{Kind: ActionShuffle})
	}
	acts = append(acts, Action{Kind: ActionDraw, Actor: intp(p.Order), Card: &card})

	if m.forced != nil {
		m.forced.Remaining--
		if m.forced.Remaining == 0 {
			m.forced = nil
		}
	}

	saved := false
	switch {
	case p.holds(card) && p.SecondChances > 0:
		p.SecondChances--
		m.deck.Discard(card)
		saved = true
	case p.holds(card):
		p.Lost = true
		m.deck.Discard(card)
		m.discardHand(p)
		if m.forced != nil && m.forced.Target == p.Order {
			m.forced = nil
		}
	default:
		p.Hand = append(p.Hand, card)
	}

	m.maybeEndRound(&acts)
	if m.ended {
		return acts, nil
	}
	// The turn holds only while the drawing player has an unplayed special;
	// a spent second chance keeps the turn as well.
	if !saved && !p.HoldsSpecial() {
		m.advanceTurn()
	}
	return acts, nil
}

// Fold takes the current player out of the round.
func (m *Match) Fold(id PlayerID) ([]Action, error) {
	p := m.Player(id)
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	if m.ended {
		return nil, ErrMatchOver
	}
	if m.forced != nil {
		return nil, ErrForcedDrawPending
	}
	if p.Order != m.current {
		return nil, ErrNotYourTurn
	}
	if p.HoldsSpecial() {
		return nil, ErrUnplayedSpecial
	}

	p.Folded = true
	acts := []Action{{Kind: ActionFold, Actor: intp(p.Order)}}
	m.maybeEndRound(&acts)
	if !m.ended {
		m.advanceTurn()
	}
	return acts, nil
}

// Use plays the player's first special (in hand order) on the target turn
// slot. The target must be active; freeze and second-chance apply instantly,
// draw-three opens a forced draw on the target.
func (m *Match) Use(id PlayerID, target int) ([]Action, error) {
	p := m.Player(id)
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	if m.ended {
		return nil, ErrMatchOver
	}
	if m.forced != nil {
		return nil, ErrForcedDrawPending
	}
	if target < 0 || target >= len(m.players) || !m.players[target].Active() {
		return nil, ErrInvalidTarget
	}
	idx := p.firstSpecial()
	if idx < 0 {
		return nil, ErrNoSpecialHeld
	}

	card := p.Hand[idx]
	switch card.Kind {
	case KindFreeze:
		m.players[target].Frozen = true
	case KindSecondChance:
		m.players[target].SecondChances++
	case KindDrawThree:
		m.forced = &ForcedDraw{Target: target, Remaining: forcedDraws}
	}
	p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
	m.deck.Discard(card)

	acts := []Action{{Kind: ActionUse, Actor: intp(p.Order), Target: intp(target)}}
	m.maybeEndRound(&acts)
	if m.ended {
		return acts, nil
	}
	if !p.HoldsSpecial() {
		m.advanceTurn()
	}
	return acts, nil
}

// SetConnected records a connection state change supplied by the session
// layer and returns the action to broadcast.
func (m *Match) SetConnected(id PlayerID, connected bool) (Action, error) {
	p := m.Player(id)
	if p == nil {
		return Action{}, ErrUnknownPlayer
	}
	p.Connected = connected
	flag := 0
	if connected {
		flag = 1
	}
	return Action{Kind: ActionConnect, Actor: intp(p.Order), Target: intp(flag)}, nil
}

// discardHand moves the whole hand to the discard pile, oldest card first.
func (m *Match) discardHand(p *Player) {
	for _, c := range p.Hand {
		m.deck.Discard(c)
	}
	p.Hand = nil
}

// advanceTurn scans forward to the next active player. It must only run
// after the round-over check, which guarantees an active player exists.
func (m *Match) advanceTurn() {
	for i := 0; i < len(m.players); i++ {
		m.current = (m.current + 1) % len(m.players)
		if m.players[m.current].Active() {
			return
		}
	}
	panic("engine: no active player to advance to")
}

// maybeEndRound runs after every mutating action. The round ends when every
// player is inactive or someone holds more than handLimit number cards; it
// then banks scores, recycles hands, resets per-round flags, and checks the
// match target, appending an end Action when the match is decided.
func (m *Match) maybeEndRound(acts *[]Action) {
	allInactive := true
	overflow := -1
	for _, p := range m.players {
		if p.Active() {
			allInactive = false
		}
		if p.countingCards() > handLimit {
			overflow = p.Order
		}
	}
	if !allInactive && overflow < 0 {
		return
	}

	for _, p := range m.players {
		if !p.Lost {
			p.Score += calcScore(p.Hand)
		}
		if p.Order == overflow {
			p.Score += overflowBonus
		}
	}
	for _, p := range m.players {
		m.discardHand(p)
		p.SecondChances = 0
		p.Lost = false
		p.Frozen = false
		p.Folded = false
	}
	m.forced = nil
	m.round++

	winner := -1
	for _, p := range m.players {
		if p.Score >= m.target && (winner < 0 || p.Score > m.players[winner].Score) {
			winner = p.Order
		}
	}
	if winner >= 0 {
		m.ended = true
		m.winner = winner
		*acts = append(*acts, Action{Kind: ActionEnd, Actor: intp(winner)})
	}
}

// calcScore sums number faces and bonus points, doubled when an x2 card is
// held. Specials are worth nothing.
func calcScore(hand []Card) int {
	mult := 1
	sum := 0
	for _, c := range hand {
		switch c.Kind {
		case KindNumber, KindBonus:
			sum += c.Value
		case KindMultiplier:
			mult = 2
		}
	}
	return mult * sum
}
