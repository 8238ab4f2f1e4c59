package poker

import "fmt"

// Card is a single playing card as supplied by the deck service. Code is
// the two-character identifier the service uses ("AS", "0H", "KD", ...),
// where "0" stands for ten. Suit and Value are the long forms carried along
// for clients.
type Card struct {
	Code  string `json:"code"`
	Suit  string `json:"suit"`
	Value string `json:"value"`
}

// String returns the short card identifier.
func (c Card) String() string {
	return c.Code
}

var suitNames = map[byte]string{
	'S': "SPADES",
	'H': "HEARTS",
	'D': "DIAMONDS",
	'C': "CLUBS",
}

var valueNames = map[byte]string{
	'A': "ACE",
	'2': "2",
	'3': "3",
	'4': "4",
	'5': "5",
	'6': "6",
	'7': "7",
	'8': "8",
	'9': "9",
	'0': "10",
	'J': "JACK",
	'Q': "QUEEN",
	'K': "KING",
}

// NewCard builds a Card from its two-character code.
func NewCard(code string) (Card, error) {
	if len(code) != 2 {
		return Card{}, fmt.Errorf("invalid card code %q", code)
	}
	value, ok := valueNames[code[0]]
	if !ok {
		return Card{}, fmt.Errorf("invalid card value in code %q", code)
	}
	suit, ok := suitNames[code[1]]
	if !ok {
		return Card{}, fmt.Errorf("invalid card suit in code %q", code)
	}
	return Card{Code: code, Suit: suit, Value: value}, nil
}

// MustCard is NewCard that panics on a bad code. For tests and the fixed
// 52-card deck literal.
func MustCard(code string) Card {
	c, err := NewCard(code)
	if err != nil {
		panic(err)
	}
	return c
}

// fullDeck returns all 52 card codes in a fixed order.
func fullDeck() []Card {
	values := []byte{'A', '2', '3', '4', '5', '6', '7', '8', '9', '0', 'J', 'Q', 'K'}
	suits := []byte{'S', 'H', 'D', 'C'}

	cards := make([]Card, 0, 52)
	for _, s := range suits {
		for _, v := range values {
			cards = append(cards, MustCard(string([]byte{v, s})))
		}
	}
	return cards
}
