package card

import (
	"math/rand"
	"testing"
)

func TestNewDeck_Composition(t *testing.T) {
	deck := NewDeck()

	if len(deck) != DeckSize {
		t.Fatalf("Expected %d cards, got %d", DeckSize, len(deck))
	}

	seen := make(map[string]bool, DeckSize)
	for _, c := range deck {
		if seen[c.ID] {
			t.Errorf("Duplicate card %s", c.ID)
		}
		seen[c.ID] = true
		if c.FaceUp {
			t.Errorf("Expected %s to be face-down in a fresh deck", c.ID)
		}
	}
}

func TestNewDeck_Deterministic(t *testing.T) {
	a := NewDeck()
	b := NewDeck()

	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("Deck composition differs at %d: %s vs %s", i, a[i].ID, b[i].ID)
		}
	}
}

func TestShuffle_PreservesCards(t *testing.T) {
	deck := NewDeck()
	deck.Shuffle(rand.New(rand.NewSource(42)))

	if len(deck) != DeckSize {
		t.Fatalf("Shuffle changed deck size to %d", len(deck))
	}

	seen := make(map[string]bool, DeckSize)
	for _, c := range deck {
		if seen[c.ID] {
			t.Errorf("Shuffle duplicated card %s", c.ID)
		}
		seen[c.ID] = true
	}
	if len(seen) != DeckSize {
		t.Errorf("Expected %d unique cards after shuffle, got %d", DeckSize, len(seen))
	}
}

func TestShuffle_SeededDeterminism(t *testing.T) {
	a := NewDeck()
	b := NewDeck()
	a.Shuffle(rand.New(rand.NewSource(7)))
	b.Shuffle(rand.New(rand.NewSource(7)))

	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("Same seed produced different orders at %d", i)
		}
	}
}

func TestDeal(t *testing.T) {
	deck := NewDeck()

	dealt, rest, err := deck.Deal(26)
	if err != nil {
		t.Fatalf("Unexpected deal error: %v", err)
	}
	if len(dealt) != 26 || len(rest) != 26 {
		t.Fatalf("Expected 26/26 split, got %d/%d", len(dealt), len(rest))
	}
	for _, c := range dealt {
		if !c.FaceUp {
			t.Errorf("Expected dealt card %s to be face-up", c.ID)
		}
	}
	for _, c := range rest {
		if c.FaceUp {
			t.Errorf("Expected remaining card %s to stay face-down", c.ID)
		}
	}
}

func TestDeal_Insufficient(t *testing.T) {
	deck := NewDeck()

	if _, _, err := deck.Deal(DeckSize + 1); err != ErrInsufficientCards {
		t.Errorf("Expected ErrInsufficientCards, got %v", err)
	}
	if _, _, err := deck.Deal(-1); err != ErrInsufficientCards {
		t.Errorf("Expected ErrInsufficientCards for negative count, got %v", err)
	}
}

func TestRankValues(t *testing.T) {
	prev := 0
	for _, r := range Ranks {
		if r.Value() <= prev {
			t.Errorf("Rank %s value %d is not above previous %d", r, r.Value(), prev)
		}
		prev = r.Value()
	}

	nineHearts := New(SuitHearts, Rank9)
	nineSpades := New(SuitSpades, Rank9)
	if nineHearts.Value() != nineSpades.Value() {
		t.Error("Equal ranks must have equal values regardless of suit")
	}
}
