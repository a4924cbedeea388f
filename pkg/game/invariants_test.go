package game

import (
	"testing"

	"furiousfive-server/pkg/deck"

	"github.com/stretchr/testify/assert"
)

func TestState_CheckInvariants(t *testing.T) {
	a := assert.New(t)

	state := twoPlayerState(t, "5c,5d,7h,9s,13c", "2c,2d,2h,4s,6c")
	a.NoError(state.CheckInvariants())

	// losing a card
	missing := state.clone()
	missing.Deck = missing.Deck[1:]
	err := missing.CheckInvariants()
	a.Error(err)
	a.Contains(err.Error(), "card conservation")

	var invariantErr *InvariantError
	a.ErrorAs(err, &invariantErr)

	// duplicating a card
	duped := state.clone()
	duped.Deck[0] = duped.Players[0].Hand[0]
	err = duped.CheckInvariants()
	a.Error(err)
	a.Contains(err.Error(), "uniqueness")

	// turn index out of bounds
	badTurn := state.clone()
	badTurn.TurnIdx = 2
	a.Error(badTurn.CheckInvariants())

	badTurn.TurnIdx = -1
	a.Error(badTurn.CheckInvariants())
}

func TestState_CheckInvariants_handBounds(t *testing.T) {
	a := assert.New(t)

	state := twoPlayerState(t, "5c,5d,7h,9s,13c", "2c,2d,2h,4s,6c")

	// hand bounds only apply at the end-of-turn boundary stage
	empty := state.clone()
	empty.Graveyard = append(empty.Graveyard, empty.Players[0].Hand...)
	empty.Players[0].Hand = []deck.Card{}
	a.NoError(empty.CheckInvariants())

	empty.TurnStage = TurnStageEnd
	err := empty.CheckInvariants()
	a.Error(err)
	a.Contains(err.Error(), "hand size")
}
