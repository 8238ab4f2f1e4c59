package poker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDealerDealsUniqueCards(t *testing.T) {
	dealer := NewLocalDealer(1)
	ctx := context.Background()

	handle, err := dealer.NewDeck(ctx)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := 0; i < 13; i++ {
		cards, err := dealer.Draw(ctx, handle, 4)
		require.NoError(t, err)
		require.Len(t, cards, 4)
		for _, c := range cards {
			assert.False(t, seen[c.Code], "card %s dealt twice", c.Code)
			seen[c.Code] = true
		}
	}
	assert.Len(t, seen, 52)

	_, err = dealer.Draw(ctx, handle, 1)
	assert.ErrorIs(t, err, ErrDeckUnavailable, "an exhausted deck cannot deal")
}

func TestLocalDealerUnknownHandle(t *testing.T) {
	dealer := NewLocalDealer(1)
	_, err := dealer.Draw(context.Background(), "nope", 2)
	assert.ErrorIs(t, err, ErrDeckUnavailable)
}

func TestLocalDealerSeededOrderIsDeterministic(t *testing.T) {
	ctx := context.Background()
	draw := func() []Card {
		d := NewLocalDealer(7)
		handle, err := d.NewDeck(ctx)
		require.NoError(t, err)
		cards, err := d.Draw(ctx, handle, 5)
		require.NoError(t, err)
		return cards
	}
	assert.Equal(t, draw(), draw())
}

func TestHTTPDealerRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/deck/new/shuffle/":
			json.NewEncoder(w).Encode(shuffleResponse{Success: true, DeckID: "deck-1"})
		case "/api/deck/deck-1/draw/":
			assert.Equal(t, "2", r.URL.Query().Get("count"))
			json.NewEncoder(w).Encode(drawResponse{Success: true, Cards: []Card{
				MustCard("AS"), MustCard("0H"),
			}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dealer := NewHTTPDealer(srv.URL, 0)
	ctx := context.Background()

	handle, err := dealer.NewDeck(ctx)
	require.NoError(t, err)
	assert.Equal(t, "deck-1", handle)

	cards, err := dealer.Draw(ctx, handle, 2)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "AS", cards[0].Code)
	assert.Equal(t, "0H", cards[1].Code)
}

func TestHTTPDealerFailuresWrapDeckUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/deck/new/shuffle/":
			json.NewEncoder(w).Encode(shuffleResponse{Success: false})
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	dealer := NewHTTPDealer(srv.URL, 0)
	ctx := context.Background()

	_, err := dealer.NewDeck(ctx)
	assert.ErrorIs(t, err, ErrDeckUnavailable)

	_, err = dealer.Draw(ctx, "any", 2)
	assert.ErrorIs(t, err, ErrDeckUnavailable)

	// Unreachable service.
	down := NewHTTPDealer("http://127.0.0.1:0", 0)
	_, err = down.NewDeck(ctx)
	assert.ErrorIs(t, err, ErrDeckUnavailable)
}
