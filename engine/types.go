package engine

import "fmt"

// Suit constants, packed into the upper 4 bits of Card.
const (
	SuitHearts   uint8 = 0
	SuitDiamonds uint8 = 1
	SuitClubs    uint8 = 2
	SuitSpades   uint8 = 3
)

// NumSuits is the number of suits in the deck.
const NumSuits = 4

// Rank constants, packed into the lower 4 bits of Card.
const (
	RankAce   uint8 = 0
	RankTwo   uint8 = 1
	RankThree uint8 = 2
	RankFour  uint8 = 3
	RankFive  uint8 = 4
	RankSix   uint8 = 5
	RankSeven uint8 = 6
	RankEight uint8 = 7
	RankNine  uint8 = 8
	RankTen   uint8 = 9
	RankJack  uint8 = 10
	RankQueen uint8 = 11
	RankKing  uint8 = 12
)

// NumRanks is the number of ranks per suit.
const NumRanks = 13

// Card is a packed uint8: upper 4 bits = suit, lower 4 bits = rank.
type Card uint8

// EmptyCard represents the absence of a card.
const EmptyCard Card = 0xFF

// NewCard constructs a Card from suit and rank.
func NewCard(suit, rank uint8) Card {
	return Card((suit << 4) | (rank & 0x0F))
}

// Suit returns the suit bits (upper 4).
func (c Card) Suit() uint8 { return uint8(c) >> 4 }

// Rank returns the rank bits (lower 4).
func (c Card) Rank() uint8 { return uint8(c) & 0x0F }

// IsRed is true for hearts and diamonds.
func (c Card) IsRed() bool {
	s := c.Suit()
	return s == SuitHearts || s == SuitDiamonds
}

// Valid reports whether c is one of the 52 standard cards.
func (c Card) Valid() bool {
	return c != EmptyCard && c.Suit() < NumSuits && c.Rank() <= RankKing
}

var rankNames = [NumRanks]string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}
var suitNames = [NumSuits]string{"H", "D", "C", "S"}

// String renders the card as rank + suit letter, e.g. "10H", "QS".
func (c Card) String() string {
	if c == EmptyCard {
		return "--"
	}
	if !c.Valid() {
		return fmt.Sprintf("card(%#x)", uint8(c))
	}
	return rankNames[c.Rank()] + suitNames[c.Suit()]
}
