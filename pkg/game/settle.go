package game

import (
	"furiousfive-server/pkg/deck"
)

// SettleOnCall resolves the round after the acting player calls. Hand totals
// are computed for everyone; the caller wins only when they hold the unique
// lowest total, in which case every other player pays them their excess. A
// tie at the lowest counts as a failed call.
func (s *State) SettleOnCall(playerID string) (*State, error) {
	if !s.CanCall(playerID) {
		return nil, ErrCannotCall
	}

	callerIdx := s.TurnIdx
	totals := make([]int, len(s.Players))
	for i, player := range s.Players {
		totals[i] = deck.SumPoints(player.Hand)
	}

	callerTotal := totals[callerIdx]
	lowestTotal := totals[0]
	lowestCount := 0
	for _, total := range totals {
		if total < lowestTotal {
			lowestTotal = total
		}
	}
	for _, total := range totals {
		if total == lowestTotal {
			lowestCount++
		}
	}

	payouts := make([]int, len(s.Players))
	if callerTotal == lowestTotal && lowestCount == 1 {
		// successful call: everyone pays the caller their excess
		for i, total := range totals {
			if i == callerIdx {
				continue
			}

			payment := total - callerTotal
			payouts[i] = -payment
			payouts[callerIdx] += payment
		}
	} else {
		failedCallPayouts(callerIdx, totals, payouts)
	}

	next := s.clone()
	for i, player := range next.Players {
		player.ChipDelta += payouts[i]
	}

	next.Phase = PhaseSettlement
	next.Settlement = &Settlement{
		CallerIdx: callerIdx,
		Totals:    totals,
		Payouts:   payouts,
	}
	next.Version++

	return next, nil
}

// failedCallPayouts routes the entire aggregate excess to a single receiver:
// the first player holding the lowest non-caller total scanning clockwise
// from the caller's seat. Other players' imbalances are not separately
// settled under this policy.
func failedCallPayouts(callerIdx int, totals []int, payouts []int) {
	lowestNonCaller := -1
	for i, total := range totals {
		if i == callerIdx {
			continue
		}

		if lowestNonCaller == -1 || total < lowestNonCaller {
			lowestNonCaller = total
		}
	}

	receiverIdx := -1
	for offset := 1; offset < len(totals); offset++ {
		candidateIdx := (callerIdx + offset) % len(totals)
		if candidateIdx != callerIdx && totals[candidateIdx] == lowestNonCaller {
			receiverIdx = candidateIdx
			break
		}
	}

	totalPayment := 0
	for i, total := range totals {
		if i == receiverIdx {
			continue
		}

		totalPayment += total - lowestNonCaller
	}

	payouts[callerIdx] = -totalPayment
	payouts[receiverIdx] = totalPayment
}
