package game

import (
	"fmt"

	"furiousfive-server/pkg/deck"
)

// CheckInvariants validates the state after a transition: the 52 distinct
// cards are conserved across deck, graveyard, hands, table drop and pending
// drop; the turn index is in bounds; and hand sizes are within range at the
// end-of-turn boundary. A non-nil result is a fatal programming-error signal
// and the state must not be persisted or broadcast.
func (s *State) CheckInvariants() error {
	all := make([]deck.Card, 0, 52)
	all = append(all, s.Deck...)
	all = append(all, s.Graveyard...)
	for _, player := range s.Players {
		all = append(all, player.Hand...)
	}
	if s.TableDrop != nil {
		all = append(all, s.TableDrop.Cards...)
	}
	if s.PendingDrop != nil {
		all = append(all, s.PendingDrop.Cards...)
	}

	if len(all) != 52 {
		return &InvariantError{Reason: fmt.Sprintf("card conservation violated: %d cards", len(all))}
	}

	seen := make(map[deck.Card]bool, 52)
	for _, card := range all {
		if seen[card] {
			return &InvariantError{Reason: fmt.Sprintf("card uniqueness violated: %s appears twice", card)}
		}
		seen[card] = true
	}

	if s.TurnIdx < 0 || s.TurnIdx >= len(s.Players) {
		return &InvariantError{Reason: fmt.Sprintf("turn index %d out of bounds for %d players", s.TurnIdx, len(s.Players))}
	}

	if s.Phase == PhasePlaying && s.TurnStage == TurnStageEnd {
		for _, player := range s.Players {
			if len(player.Hand) < 1 || len(player.Hand) > handSize {
				return &InvariantError{Reason: fmt.Sprintf("player %s hand size %d out of bounds", player.ID, len(player.Hand))}
			}
		}
	}

	return nil
}
