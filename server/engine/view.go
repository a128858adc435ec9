package engine

// PlayerView is one player as seen by a specific viewer. Hand is present only
// for the viewer's own entry; everyone else shows a count.
type PlayerView struct {
	Name          string `json:"name"`
	Order         int    `json:"order"`
	HandCount     int    `json:"handCount"`
	Hand          []Card `json:"hand,omitempty"`
	Frozen        bool   `json:"frozen"`
	Folded        bool   `json:"folded"`
	Lost          bool   `json:"lost"`
	SecondChances int    `json:"secondChances"`
	Score         int    `json:"score"`
	Connected     bool   `json:"connected"`
}

// MatchView is a redacted snapshot safe to send to one viewer.
type MatchView struct {
	Round           int          `json:"round"`
	CurrentPlayer   int          `json:"currentPlayer"`
	You             int          `json:"you"` // viewer's turn order, -1 if not seated
	ForcedTarget    *int         `json:"forcedTarget,omitempty"`
	ForcedRemaining int          `json:"forcedRemaining,omitempty"`
	DeckRemaining   int          `json:"deckRemaining"`
	Ended           bool         `json:"ended"`
	Winner          *int         `json:"winner,omitempty"`
	Players         []PlayerView `json:"players"`
}

// View builds the snapshot for one viewer. Flags, scores, round number,
// current player, and the forced-draw target are fully visible; hidden hands
// are reduced to counts.
func (m *Match) View(viewer PlayerID) MatchView {
	v := MatchView{
		Round:         m.round,
		CurrentPlayer: m.current,
		You:           -1,
		DeckRemaining: m.deck.Remaining(),
		Ended:         m.ended,
	}
	if m.forced != nil {
		v.ForcedTarget = intp(m.forced.Target)
		v.ForcedRemaining = m.forced.Remaining
	}
	if m.ended {
		v.Winner = intp(m.winner)
	}
	for _, p := range m.players {
		pv := PlayerView{
			Name:          p.Name,
			Order:         p.Order,
			HandCount:     len(p.Hand),
			Frozen:        p.Frozen,
			Folded:        p.Folded,
			Lost:          p.Lost,
			SecondChances: p.SecondChances,
			Score:         p.Score,
			Connected:     p.Connected,
		}
		if p.ID == viewer {
			v.You = p.Order
			pv.Hand = append([]Card{}, p.Hand...)
		}
		v.Players = append(v.Players, pv)
	}
	return v
}
