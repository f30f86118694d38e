// Package battle resolves a single confrontation between two revealed
// cards, chaining tie-breaks through War escalations. Resolution is pure:
// the same inputs always produce the same result, and all randomness stays
// in deck shuffling.
package battle

import (
	"fmt"

	"github.com/cardbattle/war-server-go/internal/card"
)

// Seat identifies one of the two sides of a confrontation.
type Seat int

const (
	SeatNone Seat = iota - 1
	SeatHost
	SeatGuest
)

func (s Seat) String() string {
	switch s {
	case SeatHost:
		return "HOST"
	case SeatGuest:
		return "GUEST"
	default:
		return "NONE"
	}
}

// Other returns the opposing seat.
func (s Seat) Other() Seat {
	switch s {
	case SeatHost:
		return SeatGuest
	case SeatGuest:
		return SeatHost
	default:
		return SeatNone
	}
}

// Phase tracks a confrontation step through its state machine:
// AwaitingReveal -> Compared -> Settled or Escalated.
type Phase int

const (
	PhaseAwaitingReveal Phase = iota
	PhaseCompared
	PhaseSettled
	PhaseEscalated
)

var phaseNames = map[Phase]string{
	PhaseAwaitingReveal: "AWAITING_REVEAL",
	PhaseCompared:       "COMPARED",
	PhaseSettled:        "SETTLED",
	PhaseEscalated:      "ESCALATED",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// TurnFormat selects how participants take turns selecting cards.
type TurnFormat string

const (
	// FormatSimultaneous lets both seats select freely; the default.
	FormatSimultaneous TurnFormat = "simultaneous"
	// FormatAlternating enforces strict turn order on selections.
	FormatAlternating TurnFormat = "alternating"
)

// Rules fixes the single canonical ruleset for a game. The reduced variants
// found in the wild are expressed purely through these knobs; the engine has
// one code path.
type Rules struct {
	// WarStake is the number of face-down cards each seat contributes to an
	// escalation before revealing a new card. 3 in the historical ruleset.
	WarStake int
	// WinThreshold resolves the game early once a won pile reaches it.
	WinThreshold int
	// HandSize is the number of cards dealt to each seat.
	HandSize int
	// Format selects simultaneous (default) or alternating selection.
	Format TurnFormat
}

// DefaultRules returns the canonical full-deck War ruleset: 26 cards per
// seat, 3-card war stakes, and an early win at a strict majority of the
// deck.
func DefaultRules() Rules {
	return Rules{
		WarStake:     3,
		WinThreshold: card.DeckSize/2 + 1,
		HandSize:     card.DeckSize / 2,
		Format:       FormatSimultaneous,
	}
}

// Validate rejects rulesets the engine cannot play: a full deal must fit
// the deck and the format must be a known one.
func (r Rules) Validate() error {
	if r.WarStake < 1 {
		return fmt.Errorf("war stake must be at least 1, got %d", r.WarStake)
	}
	if r.HandSize < 1 || r.HandSize*2 > card.DeckSize {
		return fmt.Errorf("hand size must be between 1 and %d, got %d", card.DeckSize/2, r.HandSize)
	}
	if r.WinThreshold < 1 {
		return fmt.Errorf("win threshold must be positive, got %d", r.WinThreshold)
	}
	switch r.Format {
	case FormatSimultaneous, FormatAlternating:
	default:
		return fmt.Errorf("turn format must be %q or %q, got %q",
			FormatSimultaneous, FormatAlternating, r.Format)
	}
	return nil
}

// Reveal is one compared pair of face-up cards within a confrontation.
type Reveal struct {
	Host    card.Card `json:"host"`
	Guest   card.Card `json:"guest"`
	Outcome Phase     `json:"-"`
}

// Result describes the outcome of a fully resolved confrontation. HostUsed
// and GuestUsed count the cards consumed from the top of each hand on top of
// the two initially revealed cards, so the caller can move exactly
// 2 + HostUsed + GuestUsed cards.
type Result struct {
	Winner      Seat
	Draw        bool
	Reveals     []Reveal
	HostUsed    int
	GuestUsed   int
	Escalations int
	// Forfeit names the seat that lost by being unable to fund a war
	// round, SeatNone otherwise.
	Forfeit Seat
}

// Resolve plays a confrontation to completion. hostCard and guestCard are
// the two pending selections already removed from the hands; hostHand and
// guestHand are the remaining hands escalations draw from. Hands are never
// mutated.
//
// Equal values escalate: each seat stakes WarStake face-down cards and
// reveals the next, repeating until the values differ. A seat that cannot
// produce WarStake+1 cards forfeits the confrontation and surrenders its
// remaining hand into the stake; if both seats are short, the larger
// remainder wins and an exact tie is a drawn confrontation.
func Resolve(rules Rules, hostCard, guestCard card.Card, hostHand, guestHand []card.Card) Result {
	res := Result{Winner: SeatNone, Forfeit: SeatNone}

	hostUp, guestUp := faceUp(hostCard), faceUp(guestCard)

	for {
		if hostUp.Value() != guestUp.Value() {
			res.Reveals = append(res.Reveals, Reveal{Host: hostUp, Guest: guestUp, Outcome: PhaseSettled})
			if hostUp.Value() > guestUp.Value() {
				res.Winner = SeatHost
			} else {
				res.Winner = SeatGuest
			}
			return res
		}

		need := rules.WarStake + 1
		hostLeft := len(hostHand) - res.HostUsed
		guestLeft := len(guestHand) - res.GuestUsed

		if hostLeft < need || guestLeft < need {
			res.Reveals = append(res.Reveals, Reveal{Host: hostUp, Guest: guestUp, Outcome: PhaseCompared})
			switch {
			case hostLeft < need && guestLeft < need && hostLeft == guestLeft:
				res.Draw = true
			case hostLeft < guestLeft:
				res.Winner = SeatGuest
				res.Forfeit = SeatHost
			default:
				res.Winner = SeatHost
				res.Forfeit = SeatGuest
			}
			// The forfeiting stake includes everything left in the losing
			// hand; on a draw both remainders are surrendered.
			if res.Forfeit == SeatHost || res.Draw {
				res.HostUsed = len(hostHand)
			}
			if res.Forfeit == SeatGuest || res.Draw {
				res.GuestUsed = len(guestHand)
			}
			return res
		}

		res.Reveals = append(res.Reveals, Reveal{Host: hostUp, Guest: guestUp, Outcome: PhaseEscalated})
		res.Escalations++

		res.HostUsed += rules.WarStake
		res.GuestUsed += rules.WarStake
		hostUp = faceUp(hostHand[res.HostUsed])
		guestUp = faceUp(guestHand[res.GuestUsed])
		res.HostUsed++
		res.GuestUsed++
	}
}

func faceUp(c card.Card) card.Card {
	c.FaceUp = true
	return c
}
