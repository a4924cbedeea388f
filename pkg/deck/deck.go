package deck

import (
	"math/rand"

	"furiousfive-server/internal/rng"
)

// source provides the randomness for Shuffle.
// Tests may swap it out with SetSource for deterministic shuffles.
var source rng.Generator = rng.Crypto{}

// SetSource will set the randomness source used by Shuffle.
// This should only be used by tests.
func SetSource(g rng.Generator) {
	source = g
}

// SetSeed is a convenience wrapper around SetSource using a seeded math/rand.
// This should only be used by tests.
func SetSeed(seed int64) {
	SetSource(rand.New(rand.NewSource(seed)))
}

// New returns the 52 cards of a standard deck in deterministic order:
// one card per (rank, suit) pair, grouped by suit, ranks ascending.
func New() []Card {
	cards := make([]Card, 0, 52)
	for _, suit := range Suits {
		for rank := Ace; rank <= King; rank++ {
			cards = append(cards, Card{
				Rank: rank,
				Suit: suit,
			})
		}
	}

	return cards
}

// Shuffle returns a uniform random permutation of cards (Fisher–Yates).
// The input slice is not mutated.
func Shuffle(cards []Card) []Card {
	shuffled := make([]Card, len(cards))
	copy(shuffled, cards)

	for j := len(shuffled) - 1; j > 0; j-- {
		i := source.Intn(j + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	return shuffled
}

// SumPoints returns the sum of the card ranks.
// Ace counts as 1 and J/Q/K count as 11/12/13; there is no face-value cap.
func SumPoints(cards []Card) int {
	sum := 0
	for _, card := range cards {
		sum += card.Rank
	}

	return sum
}

// IsSameRank returns true if there are exactly n cards and they all share a rank
func IsSameRank(cards []Card, n int) bool {
	if len(cards) != n || len(cards) == 0 {
		return false
	}

	rank := cards[0].Rank
	for _, card := range cards[1:] {
		if card.Rank != rank {
			return false
		}
	}

	return true
}

// IsStraight returns true if the cards form a run of at least three
// consecutive, distinct ranks. There is no wraparound: K-A-2 is not a straight.
func IsStraight(cards []Card) bool {
	if len(cards) < 3 {
		return false
	}

	seen := make(map[int]bool, len(cards))
	low := cards[0].Rank
	for _, card := range cards {
		if seen[card.Rank] {
			return false
		}
		seen[card.Rank] = true

		if card.Rank < low {
			low = card.Rank
		}
	}

	for rank := low; rank < low+len(cards); rank++ {
		if !seen[rank] {
			return false
		}
	}

	return true
}
