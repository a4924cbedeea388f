package game

import (
	"furiousfive-server/pkg/deck"
)

// Phase is the top-level room phase
type Phase string

// phase constants
const (
	PhaseLobby      Phase = "lobby"
	PhasePlaying    Phase = "playing"
	PhaseSettlement Phase = "settlement"
)

// TurnStage is the per-turn sub-stage within the playing phase
type TurnStage string

// turn stage constants
const (
	TurnStageStart   TurnStage = "start"
	TurnStageDropped TurnStage = "dropped"
	TurnStageEnd     TurnStage = "end"
)

// maxPlayers is the seat limit per room
const maxPlayers = 5

// handSize is the number of cards dealt to each player
const handSize = 5

// callThreshold is the exclusive upper bound on a hand total for calling
const callThreshold = 5

// Player is a seated player. Seat order is fixed at join time.
type Player struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Connected bool        `json:"connected"`
	Ready     bool        `json:"ready"`
	Hand      []deck.Card `json:"hand"`
	ChipDelta int         `json:"chipDelta"`
}

// TableDrop is the most recent completed drop sitting on the table. It
// shrinks as cards are drawn from it; a straight reduced to two cards is
// relabeled so the end-only draw rule no longer applies.
type TableDrop struct {
	Kind  DropKind    `json:"kind"`
	Cards []deck.Card `json:"cards"`
}

// Settlement is the result of a round-ending call
type Settlement struct {
	CallerIdx int   `json:"callerIdx"`
	Totals    []int `json:"totals"`
	Payouts   []int `json:"payouts"`
}

// State is the authoritative state of one room. Transitions never mutate the
// receiver; they return a deep-copied replacement with the version bumped.
type State struct {
	RoomCode      string      `json:"roomCode"`
	Phase         Phase       `json:"phase"`
	Players       []*Player   `json:"players"`
	TurnIdx       int         `json:"turnIdx"`
	TurnStage     TurnStage   `json:"turnStage"`
	Deck          []deck.Card `json:"deck"`
	Graveyard     []deck.Card `json:"graveyard"`
	TableDrop     *TableDrop  `json:"tableDrop"`
	PendingDrop   *Drop       `json:"pendingDrop,omitempty"`
	Settlement    *Settlement `json:"settlement,omitempty"`
	Version       int         `json:"version"`
	RoundNumber   int         `json:"roundNumber"`
	GameStartTime int64       `json:"gameStartTime"`
}

func copyCards(cards []deck.Card) []deck.Card {
	if cards == nil {
		return nil
	}

	cp := make([]deck.Card, len(cards))
	copy(cp, cards)
	return cp
}

func (p *Player) clone() *Player {
	cp := *p
	cp.Hand = copyCards(p.Hand)
	return &cp
}

func (t *TableDrop) clone() *TableDrop {
	if t == nil {
		return nil
	}

	return &TableDrop{
		Kind:  t.Kind,
		Cards: copyCards(t.Cards),
	}
}

func (d *Drop) clone() *Drop {
	if d == nil {
		return nil
	}

	return &Drop{
		Kind:  d.Kind,
		Cards: copyCards(d.Cards),
	}
}

func (s *Settlement) clone() *Settlement {
	if s == nil {
		return nil
	}

	totals := make([]int, len(s.Totals))
	copy(totals, s.Totals)
	payouts := make([]int, len(s.Payouts))
	copy(payouts, s.Payouts)

	return &Settlement{
		CallerIdx: s.CallerIdx,
		Totals:    totals,
		Payouts:   payouts,
	}
}

// clone returns a deep copy of the state
func (s *State) clone() *State {
	cp := *s
	cp.Players = make([]*Player, len(s.Players))
	for i, player := range s.Players {
		cp.Players[i] = player.clone()
	}

	cp.Deck = copyCards(s.Deck)
	cp.Graveyard = copyCards(s.Graveyard)
	cp.TableDrop = s.TableDrop.clone()
	cp.PendingDrop = s.PendingDrop.clone()
	cp.Settlement = s.Settlement.clone()

	return &cp
}

// player returns the seated player with the given ID, or nil
func (s *State) player(playerID string) *Player {
	for _, player := range s.Players {
		if player.ID == playerID {
			return player
		}
	}

	return nil
}

// Player returns the seated player with the given ID, or nil
func (s *State) Player(playerID string) *Player {
	return s.player(playerID)
}

// currentPlayer returns the player whose turn it is
func (s *State) currentPlayer() *Player {
	return s.Players[s.TurnIdx]
}
