package game

import (
	"sort"

	"furiousfive-server/pkg/deck"
)

// DropKind tags the shape of a drop
type DropKind string

// drop kind constants
const (
	DropSingle   DropKind = "single"
	DropPair     DropKind = "pair"
	DropTrips    DropKind = "trips"
	DropQuads    DropKind = "quads"
	DropStraight DropKind = "straight"
)

// Drop is a proposed or completed play of cards from a hand
type Drop struct {
	Kind  DropKind    `json:"kind"`
	Cards []deck.Card `json:"cards"`
}

// ValidateDrop reports whether drop is a legal play out of hand. Every card in
// the drop must consume a distinct card from the hand, and the cards must
// match the shape the kind claims. A mismatched kind is invalid, never
// reinterpreted.
func ValidateDrop(hand []deck.Card, drop Drop) bool {
	remaining := make([]deck.Card, len(hand))
	copy(remaining, hand)

	for _, dropCard := range drop.Cards {
		found := -1
		for i, handCard := range remaining {
			if handCard.Equal(dropCard) {
				found = i
				break
			}
		}

		if found < 0 {
			return false
		}

		remaining = append(remaining[:found], remaining[found+1:]...)
	}

	switch drop.Kind {
	case DropSingle:
		return len(drop.Cards) == 1
	case DropPair:
		return deck.IsSameRank(drop.Cards, 2)
	case DropTrips:
		return deck.IsSameRank(drop.Cards, 3)
	case DropQuads:
		return deck.IsSameRank(drop.Cards, 4)
	case DropStraight:
		return deck.IsStraight(drop.Cards)
	}

	return false
}

// canDrawFromTable reports whether the indexed card may be taken from the
// table drop. For a straight of three or more cards only the ends are
// takeable; otherwise any card is.
func canDrawFromTable(tableDrop *TableDrop, cardIndex int) bool {
	if tableDrop == nil {
		return false
	}

	if cardIndex < 0 || cardIndex >= len(tableDrop.Cards) {
		return false
	}

	if tableDrop.Kind == DropStraight && len(tableDrop.Cards) >= 3 {
		return cardIndex == 0 || cardIndex == len(tableDrop.Cards)-1
	}

	return true
}

// SortCardsForDisplay returns the cards in display order: ascending by rank
// for straights, ascending by rank then suit otherwise. The input is not
// mutated.
func SortCardsForDisplay(cards []deck.Card, kind DropKind) []deck.Card {
	sorted := make([]deck.Card, len(cards))
	copy(sorted, cards)

	if kind == DropStraight {
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].Rank < sorted[j].Rank
		})
		return sorted
	}

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Rank != sorted[j].Rank {
			return sorted[i].Rank < sorted[j].Rank
		}
		return sorted[i].Suit < sorted[j].Suit
	})

	return sorted
}
