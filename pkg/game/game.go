package game

import (
	"time"

	"furiousfive-server/pkg/deck"
)

// New creates a fresh lobby-phase state for a room with its first player
// seated. The deck is full and shuffled but undealt.
func New(roomCode, playerName, playerID string) *State {
	return &State{
		RoomCode: roomCode,
		Phase:    PhaseLobby,
		Players: []*Player{
			newPlayer(playerName, playerID),
		},
		TurnIdx:       0,
		TurnStage:     TurnStageStart,
		Deck:          deck.Shuffle(deck.New()),
		Graveyard:     []deck.Card{},
		TableDrop:     nil,
		PendingDrop:   nil,
		Settlement:    nil,
		Version:       1,
		RoundNumber:   0,
		GameStartTime: time.Now().UnixMilli(),
	}
}

func newPlayer(playerName, playerID string) *Player {
	return &Player{
		ID:        playerID,
		Name:      playerName,
		Connected: true,
		Ready:     false,
		Hand:      []deck.Card{},
		ChipDelta: 0,
	}
}

// Join seats a new player. Seat order is join order and is fixed thereafter.
func (s *State) Join(playerName, playerID string) (*State, error) {
	if len(s.Players) >= maxPlayers {
		return nil, ErrRoomFull
	}

	if s.player(playerID) != nil {
		return nil, ErrDuplicatePlayer
	}

	next := s.clone()
	next.Players = append(next.Players, newPlayer(playerName, playerID))
	next.Version++

	return next, nil
}

// StartRound reshuffles a fresh deck, deals five cards to each player
// round-robin in seat order, and enters the playing phase with seat 0 on
// turn. It is used both for the first deal and for `round:new` after a
// settlement.
func (s *State) StartRound() (*State, error) {
	if len(s.Players) < 2 {
		return nil, ErrInsufficientPlayers
	}

	next := s.clone()
	next.Deck = deck.Shuffle(deck.New())
	next.Graveyard = []deck.Card{}
	next.TableDrop = nil
	next.PendingDrop = nil
	next.Settlement = nil

	for _, player := range next.Players {
		player.Hand = []deck.Card{}
		player.Ready = false
	}

	// one card at a time per player, five times around
	for i := 0; i < handSize; i++ {
		for _, player := range next.Players {
			card := next.Deck[len(next.Deck)-1]
			next.Deck = next.Deck[:len(next.Deck)-1]
			player.Hand = append(player.Hand, card)
		}
	}

	next.Phase = PhasePlaying
	next.TurnIdx = 0
	next.TurnStage = TurnStageStart
	next.RoundNumber++
	next.Version++

	return next, nil
}

// ApplyDrop stages the acting player's drop. The cards leave the hand and sit
// in pendingDrop; the previous table drop stays visible and drawable until
// the turn advances.
func (s *State) ApplyDrop(playerID string, drop Drop) (*State, error) {
	if s.Phase != PhasePlaying || s.TurnStage != TurnStageStart {
		return nil, ErrWrongPhase
	}

	if s.currentPlayer().ID != playerID {
		return nil, ErrNotYourTurn
	}

	if !ValidateDrop(s.currentPlayer().Hand, drop) {
		return nil, ErrInvalidDrop
	}

	next := s.clone()
	player := next.currentPlayer()
	player.Hand = removeCards(player.Hand, drop.Cards)
	next.PendingDrop = drop.clone()
	next.TurnStage = TurnStageDropped
	next.Version++

	return next, nil
}

// removeCards removes one matching hand card per card in toRemove
func removeCards(hand []deck.Card, toRemove []deck.Card) []deck.Card {
	result := make([]deck.Card, len(hand))
	copy(result, hand)

	for _, removeCard := range toRemove {
		for i, card := range result {
			if card.Equal(removeCard) {
				result = append(result[:i], result[i+1:]...)
				break
			}
		}
	}

	return result
}

// DrawFromDeck draws the top deck card into the acting player's hand and
// advances the turn. An empty deck is rebuilt from the graveyard first; if
// both are empty the draw is skipped but the turn still advances.
func (s *State) DrawFromDeck(playerID string) (*State, error) {
	if s.Phase != PhasePlaying || s.TurnStage != TurnStageDropped {
		return nil, ErrWrongPhase
	}

	if s.currentPlayer().ID != playerID {
		return nil, ErrNotYourTurn
	}

	next := s.clone()
	if len(next.Deck) == 0 && len(next.Graveyard) > 0 {
		next.Deck = deck.Shuffle(next.Graveyard)
		next.Graveyard = []deck.Card{}
	}

	if len(next.Deck) > 0 {
		card := next.Deck[len(next.Deck)-1]
		next.Deck = next.Deck[:len(next.Deck)-1]

		player := next.currentPlayer()
		player.Hand = append(player.Hand, card)
	}

	next.Version++
	next.advanceTurn()

	return next, nil
}

// DrawFromTable moves the indexed table card into the acting player's hand.
// It is legal at the start of a turn (before dropping, the player stays on
// turn) or after a drop (the turn advances afterward).
func (s *State) DrawFromTable(playerID string, cardIndex int) (*State, error) {
	if s.Phase != PhasePlaying {
		return nil, ErrWrongPhase
	}

	if s.TurnStage != TurnStageStart && s.TurnStage != TurnStageDropped {
		return nil, ErrWrongPhase
	}

	if s.currentPlayer().ID != playerID {
		return nil, ErrNotYourTurn
	}

	if s.TableDrop == nil {
		return nil, ErrNoTableDrop
	}

	if !canDrawFromTable(s.TableDrop, cardIndex) {
		return nil, ErrIneligibleTableCard
	}

	next := s.clone()
	card := next.TableDrop.Cards[cardIndex]
	next.TableDrop.Cards = append(next.TableDrop.Cards[:cardIndex], next.TableDrop.Cards[cardIndex+1:]...)

	player := next.currentPlayer()
	player.Hand = append(player.Hand, card)

	if len(next.TableDrop.Cards) == 0 {
		next.TableDrop = nil
	} else if next.TableDrop.Kind == DropStraight && len(next.TableDrop.Cards) == 2 {
		// a straight down to two cards loses the end-only draw rule
		next.TableDrop.Kind = DropPair
	}

	next.Version++
	if s.TurnStage == TurnStageDropped {
		next.advanceTurn()
	}

	return next, nil
}

// advanceTurn commits the staged drop: the old table drop rotates into the
// graveyard and the pending drop is promoted onto the table. Must be called
// on a clone.
func (s *State) advanceTurn() {
	s.TurnIdx = (s.TurnIdx + 1) % len(s.Players)
	s.TurnStage = TurnStageStart

	if s.TableDrop != nil {
		s.Graveyard = append(s.Graveyard, s.TableDrop.Cards...)
	}

	if s.PendingDrop != nil {
		s.TableDrop = &TableDrop{
			Kind:  s.PendingDrop.Kind,
			Cards: copyCards(s.PendingDrop.Cards),
		}
	} else {
		s.TableDrop = nil
	}

	s.PendingDrop = nil
}

// CanCall reports whether the player may call: on turn at the start of their
// turn with a hand total strictly below the call threshold.
func (s *State) CanCall(playerID string) bool {
	if s.Phase != PhasePlaying || s.TurnStage != TurnStageStart {
		return false
	}

	if s.currentPlayer().ID != playerID {
		return false
	}

	return deck.SumPoints(s.currentPlayer().Hand) < callThreshold
}

// ToggleReady flips a player's lobby ready flag
func (s *State) ToggleReady(playerID string) (*State, error) {
	if s.Phase != PhaseLobby {
		return nil, ErrWrongPhase
	}

	if s.player(playerID) == nil {
		return nil, ErrUnknownPlayer
	}

	next := s.clone()
	player := next.player(playerID)
	player.Ready = !player.Ready
	next.Version++

	return next, nil
}

// SetConnected updates a player's connected flag
func (s *State) SetConnected(playerID string, connected bool) (*State, error) {
	if s.player(playerID) == nil {
		return nil, ErrUnknownPlayer
	}

	next := s.clone()
	next.player(playerID).Connected = connected
	next.Version++

	return next, nil
}
