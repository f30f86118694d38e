package battle

import (
	"testing"

	"github.com/cardbattle/war-server-go/internal/card"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func c(suit card.Suit, rank card.Rank) card.Card {
	return card.New(suit, rank)
}

func hand(cards ...card.Card) []card.Card {
	return cards
}

func TestResolve_HigherValueWins(t *testing.T) {
	rules := DefaultRules()

	res := Resolve(rules, c(card.SuitHearts, card.RankK), c(card.SuitSpades, card.Rank7), nil, nil)

	assert.Equal(t, SeatHost, res.Winner)
	assert.False(t, res.Draw)
	assert.Equal(t, 0, res.Escalations)
	assert.Equal(t, 0, res.HostUsed)
	assert.Equal(t, 0, res.GuestUsed)
	require.Len(t, res.Reveals, 1)
	assert.Equal(t, PhaseSettled, res.Reveals[0].Outcome)

	res = Resolve(rules, c(card.SuitHearts, card.Rank2), c(card.SuitSpades, card.RankA), nil, nil)
	assert.Equal(t, SeatGuest, res.Winner)
}

func TestResolve_EqualValuesEscalate(t *testing.T) {
	rules := DefaultRules()

	hostHand := hand(
		c(card.SuitHearts, card.Rank2), c(card.SuitHearts, card.Rank3), c(card.SuitHearts, card.Rank4),
		c(card.SuitHearts, card.RankK),
	)
	guestHand := hand(
		c(card.SuitSpades, card.Rank2), c(card.SuitSpades, card.Rank3), c(card.SuitSpades, card.Rank4),
		c(card.SuitSpades, card.Rank5),
	)

	res := Resolve(rules, c(card.SuitHearts, card.Rank9), c(card.SuitSpades, card.Rank9), hostHand, guestHand)

	assert.Equal(t, 1, res.Escalations, "equal values must escalate, never settle directly")
	assert.Equal(t, SeatHost, res.Winner, "host's King beats guest's 5 after the war")
	assert.Equal(t, 4, res.HostUsed)
	assert.Equal(t, 4, res.GuestUsed)
	require.Len(t, res.Reveals, 2)
	assert.Equal(t, PhaseEscalated, res.Reveals[0].Outcome)
	assert.Equal(t, PhaseSettled, res.Reveals[1].Outcome)
	assert.True(t, res.Reveals[1].Host.FaceUp)
}

func TestResolve_ChainedWars(t *testing.T) {
	rules := DefaultRules()

	// Two consecutive ties before the final comparison.
	hostHand := hand(
		c(card.SuitHearts, card.Rank2), c(card.SuitHearts, card.Rank3), c(card.SuitHearts, card.Rank4),
		c(card.SuitHearts, card.Rank8),
		c(card.SuitClubs, card.Rank2), c(card.SuitClubs, card.Rank3), c(card.SuitClubs, card.Rank4),
		c(card.SuitClubs, card.RankQ),
	)
	guestHand := hand(
		c(card.SuitSpades, card.Rank2), c(card.SuitSpades, card.Rank3), c(card.SuitSpades, card.Rank4),
		c(card.SuitDiamonds, card.Rank8),
		c(card.SuitDiamonds, card.Rank2), c(card.SuitDiamonds, card.Rank3), c(card.SuitDiamonds, card.Rank4),
		c(card.SuitDiamonds, card.RankJ),
	)

	res := Resolve(rules, c(card.SuitHearts, card.RankA), c(card.SuitSpades, card.RankA), hostHand, guestHand)

	assert.Equal(t, 2, res.Escalations)
	assert.Equal(t, SeatHost, res.Winner)
	assert.Equal(t, 8, res.HostUsed)
	assert.Equal(t, 8, res.GuestUsed)
	assert.Len(t, res.Reveals, 3)
}

func TestResolve_ForfeitOnShortHand(t *testing.T) {
	rules := DefaultRules()

	// Guest cannot fund the 3+1 war stake.
	hostHand := hand(
		c(card.SuitHearts, card.Rank2), c(card.SuitHearts, card.Rank3), c(card.SuitHearts, card.Rank4),
		c(card.SuitHearts, card.Rank5),
	)
	guestHand := hand(c(card.SuitSpades, card.Rank2), c(card.SuitSpades, card.Rank3))

	res := Resolve(rules, c(card.SuitHearts, card.Rank6), c(card.SuitSpades, card.Rank6), hostHand, guestHand)

	assert.Equal(t, SeatHost, res.Winner, "insufficient cards to continue a war is a loss, not a draw")
	assert.Equal(t, SeatGuest, res.Forfeit)
	assert.False(t, res.Draw)
	assert.Equal(t, 0, res.HostUsed, "winning hand is not consumed on forfeit")
	assert.Equal(t, len(guestHand), res.GuestUsed, "forfeiting hand is surrendered into the stake")
	assert.Equal(t, 0, res.Escalations)
}

func TestResolve_BothShortUnequalRemainder(t *testing.T) {
	rules := DefaultRules()

	hostHand := hand(c(card.SuitHearts, card.Rank2), c(card.SuitHearts, card.Rank3))
	guestHand := hand(c(card.SuitSpades, card.Rank2))

	res := Resolve(rules, c(card.SuitHearts, card.RankQ), c(card.SuitSpades, card.RankQ), hostHand, guestHand)

	assert.Equal(t, SeatHost, res.Winner)
	assert.Equal(t, SeatGuest, res.Forfeit)
}

func TestResolve_BothShortEqualRemainderDraws(t *testing.T) {
	rules := DefaultRules()

	hostHand := hand(c(card.SuitHearts, card.Rank2))
	guestHand := hand(c(card.SuitSpades, card.Rank3))

	res := Resolve(rules, c(card.SuitHearts, card.RankJ), c(card.SuitSpades, card.RankJ), hostHand, guestHand)

	assert.True(t, res.Draw)
	assert.Equal(t, SeatNone, res.Winner)
	assert.Equal(t, len(hostHand), res.HostUsed)
	assert.Equal(t, len(guestHand), res.GuestUsed)
}

func TestResolve_Deterministic(t *testing.T) {
	rules := DefaultRules()

	hostHand := hand(
		c(card.SuitHearts, card.Rank2), c(card.SuitHearts, card.Rank3), c(card.SuitHearts, card.Rank4),
		c(card.SuitHearts, card.RankK),
	)
	guestHand := hand(
		c(card.SuitSpades, card.Rank2), c(card.SuitSpades, card.Rank3), c(card.SuitSpades, card.Rank4),
		c(card.SuitSpades, card.Rank5),
	)

	first := Resolve(rules, c(card.SuitHearts, card.Rank9), c(card.SuitSpades, card.Rank9), hostHand, guestHand)
	second := Resolve(rules, c(card.SuitHearts, card.Rank9), c(card.SuitSpades, card.Rank9), hostHand, guestHand)

	assert.Equal(t, first, second)
}

func TestSeat_Other(t *testing.T) {
	assert.Equal(t, SeatGuest, SeatHost.Other())
	assert.Equal(t, SeatHost, SeatGuest.Other())
	assert.Equal(t, SeatNone, SeatNone.Other())
}
