package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cards(codes ...string) []Card {
	out := make([]Card, len(codes))
	for i, code := range codes {
		out[i] = MustCard(code)
	}
	return out
}

func TestEvaluateRanksHands(t *testing.T) {
	ev := NewEvaluator()
	community := cards("AD", "KS", "QH", "7C", "2S")

	trips, err := ev.Evaluate(cards("AS", "AH"), community)
	require.NoError(t, err)
	assert.Equal(t, "Three of a Kind", trips.Description)

	high, err := ev.Evaluate(cards("3C", "4D"), community)
	require.NoError(t, err)
	assert.Equal(t, "High Card", high.Description)

	assert.Less(t, trips.Score, high.Score, "a stronger hand scores lower")
}

func TestEvaluateBoardPlaysForEveryone(t *testing.T) {
	ev := NewEvaluator()
	community := cards("AS", "KS", "QS", "JS", "0S")

	a, err := ev.Evaluate(cards("2C", "3D"), community)
	require.NoError(t, err)
	b, err := ev.Evaluate(cards("2H", "3C"), community)
	require.NoError(t, err)

	assert.Equal(t, a.Score, b.Score, "both players play the board")
	assert.Equal(t, "Straight Flush", a.Description)
}

func TestEvaluateTenCodeConversion(t *testing.T) {
	ev := NewEvaluator()

	// '0' is the ten in deck-service card codes.
	hv, err := ev.Evaluate(cards("0H", "0D"), cards("0S", "0C", "2H"))
	require.NoError(t, err)
	assert.Equal(t, "Four of a Kind", hv.Description)
}

func TestEvaluateRejectsShortInput(t *testing.T) {
	ev := NewEvaluator()
	_, err := ev.Evaluate(cards("AS", "AH"), nil)
	require.Error(t, err)
}

func TestNewCardParsesCodes(t *testing.T) {
	c, err := NewCard("0H")
	require.NoError(t, err)
	assert.Equal(t, "0H", c.Code)
	assert.Equal(t, "HEARTS", c.Suit)
	assert.Equal(t, "10", c.Value)

	c, err = NewCard("AS")
	require.NoError(t, err)
	assert.Equal(t, "SPADES", c.Suit)
	assert.Equal(t, "ACE", c.Value)

	_, err = NewCard("1X")
	require.Error(t, err)
	_, err = NewCard("AS extra")
	require.Error(t, err)
}
