package poker

import (
	"fmt"

	chehsunliu "github.com/chehsunliu/poker"
)

// HandValue is the result of evaluating a player's best 5-card hand. Score
// is directly comparable between hands: lower is better (the chehsunliu
// convention). Description is the human-readable category ("Pair",
// "Full House", ...).
type HandValue struct {
	Score       int32  `json:"score"`
	Description string `json:"description"`
}

// Evaluator ranks a player's 7 available cards (2 hole + 5 community). The
// engine only orchestrates calling it; all hand-strength knowledge lives
// behind this interface.
type Evaluator interface {
	Evaluate(hole, community []Card) (HandValue, error)
}

// ChehsunliuEvaluator evaluates hands with the chehsunliu/poker library.
type ChehsunliuEvaluator struct{}

// NewEvaluator returns the default hand evaluator.
func NewEvaluator() *ChehsunliuEvaluator {
	return &ChehsunliuEvaluator{}
}

// Evaluate returns the best rank achievable from the given cards.
func (ChehsunliuEvaluator) Evaluate(hole, community []Card) (HandValue, error) {
	all := make([]Card, 0, len(hole)+len(community))
	all = append(all, hole...)
	all = append(all, community...)
	if len(all) < 5 {
		return HandValue{}, fmt.Errorf("evaluate: need at least 5 cards, have %d", len(all))
	}

	converted := make([]chehsunliu.Card, len(all))
	for i, c := range all {
		cc, err := convertCard(c)
		if err != nil {
			return HandValue{}, err
		}
		converted[i] = cc
	}

	rank := chehsunliu.Evaluate(converted)
	return HandValue{
		Score:       rank,
		Description: chehsunliu.RankString(rank),
	}, nil
}

// convertCard maps a deck-service card code onto the chehsunliu two-rune
// form: "0H" becomes "Th", "AS" becomes "As".
func convertCard(c Card) (chehsunliu.Card, error) {
	if len(c.Code) != 2 {
		return 0, fmt.Errorf("evaluate: invalid card code %q", c.Code)
	}
	rank := c.Code[0]
	if rank == '0' {
		rank = 'T'
	}
	suit := c.Code[1]
	switch suit {
	case 'S':
		suit = 's'
	case 'H':
		suit = 'h'
	case 'D':
		suit = 'd'
	case 'C':
		suit = 'c'
	default:
		return 0, fmt.Errorf("evaluate: invalid card suit %q", c.Code)
	}
	return chehsunliu.NewCard(string([]byte{rank, suit})), nil
}
