package card

import (
	"errors"
	"math/rand"
)

// DeckSize is the number of cards in a full deck.
const DeckSize = 52

// ErrInsufficientCards is returned when a deal asks for more cards than the
// deck still holds.
var ErrInsufficientCards = errors.New("insufficient cards in deck")

// Deck is an ordered sequence of cards. A fresh deck holds exactly 52 unique
// (suit, rank) combinations; shuffling and dealing permute and split it, but
// never create or destroy cards.
type Deck []Card

// NewDeck builds a full 52-card deck, face-down, in suit-then-rank order.
// Composition is deterministic; only Shuffle introduces randomness.
func NewDeck() Deck {
	deck := make(Deck, 0, DeckSize)
	for _, suit := range Suits {
		for _, rank := range Ranks {
			deck = append(deck, New(suit, rank))
		}
	}
	return deck
}

// Shuffle permutes the deck in place with a Fisher-Yates shuffle driven by
// the supplied source. Given an unbiased source every permutation is equally
// likely.
func (d Deck) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d), func(i, j int) {
		d[i], d[j] = d[j], d[i]
	})
}

// Deal splits off the first n cards, marking them face-up, and returns the
// dealt cards together with the remainder of the deck.
func (d Deck) Deal(n int) (dealt, rest Deck, err error) {
	if n < 0 || n > len(d) {
		return nil, nil, ErrInsufficientCards
	}
	dealt = make(Deck, n)
	copy(dealt, d[:n])
	for i := range dealt {
		dealt[i].FaceUp = true
	}
	rest = make(Deck, len(d)-n)
	copy(rest, d[n:])
	return dealt, rest, nil
}
