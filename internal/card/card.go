package card

import "fmt"

// Suit represents one of the four French suits.
type Suit string

const (
	SuitHearts   Suit = "hearts"
	SuitDiamonds Suit = "diamonds"
	SuitClubs    Suit = "clubs"
	SuitSpades   Suit = "spades"
)

// Suits lists all suits in deck-building order.
var Suits = []Suit{SuitHearts, SuitDiamonds, SuitClubs, SuitSpades}

// Rank represents a card rank from two through ace.
type Rank string

const (
	Rank2  Rank = "2"
	Rank3  Rank = "3"
	Rank4  Rank = "4"
	Rank5  Rank = "5"
	Rank6  Rank = "6"
	Rank7  Rank = "7"
	Rank8  Rank = "8"
	Rank9  Rank = "9"
	Rank10 Rank = "10"
	RankJ  Rank = "J"
	RankQ  Rank = "Q"
	RankK  Rank = "K"
	RankA  Rank = "A"
)

// Ranks lists all ranks in ascending value order.
var Ranks = []Rank{
	Rank2, Rank3, Rank4, Rank5, Rank6, Rank7, Rank8,
	Rank9, Rank10, RankJ, RankQ, RankK, RankA,
}

var rankValues = map[Rank]int{
	Rank2: 2, Rank3: 3, Rank4: 4, Rank5: 5, Rank6: 6,
	Rank7: 7, Rank8: 8, Rank9: 9, Rank10: 10,
	RankJ: 11, RankQ: 12, RankK: 13, RankA: 14,
}

// Value returns the numeric value used for comparisons. Equal ranks are the
// only source of ties; suit never breaks a tie.
func (r Rank) Value() int {
	return rankValues[r]
}

// Card is a single playing card. Identity is unique within a deck. Once
// dealt, a card is immutable except for its FaceUp flag.
type Card struct {
	ID     string `json:"id"`
	Suit   Suit   `json:"suit"`
	Rank   Rank   `json:"rank"`
	FaceUp bool   `json:"face_up"`
}

// New builds a card with its canonical "suit-rank" identity.
func New(suit Suit, rank Rank) Card {
	return Card{
		ID:   fmt.Sprintf("%s-%s", suit, rank),
		Suit: suit,
		Rank: rank,
	}
}

// Value returns the comparison value of the card's rank.
func (c Card) Value() int {
	return c.Rank.Value()
}

func (c Card) String() string {
	return fmt.Sprintf("%s of %s", c.Rank, c.Suit)
}
