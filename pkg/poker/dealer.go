package poker

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Dealer supplies freshly shuffled decks and deals cards from them. The
// engine treats it as an opaque source of unique cards; it never shuffles
// or tracks deck contents itself.
type Dealer interface {
	// NewDeck shuffles a fresh deck and returns an opaque handle for it.
	NewDeck(ctx context.Context) (string, error)
	// Draw removes and returns the next n cards from the deck identified
	// by handle.
	Draw(ctx context.Context, handle string, n int) ([]Card, error)
}

// LocalDealer is an in-process Dealer backed by shuffled 52-card decks.
type LocalDealer struct {
	mu    sync.Mutex
	rng   *rand.Rand
	decks map[string][]Card
}

// NewLocalDealer creates a LocalDealer. A non-zero seed makes deck order
// deterministic, which the tests rely on.
func NewLocalDealer(seed int64) *LocalDealer {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &LocalDealer{
		rng:   rand.New(rand.NewSource(seed)),
		decks: make(map[string][]Card),
	}
}

// NewDeck shuffles a fresh deck and registers it under a new handle.
func (d *LocalDealer) NewDeck(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cards := fullDeck()
	d.rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})

	handle := uuid.NewString()
	d.decks[handle] = cards
	return handle, nil
}

// Draw pops the next n cards from the deck.
func (d *LocalDealer) Draw(ctx context.Context, handle string, n int) ([]Card, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	deck, ok := d.decks[handle]
	if !ok {
		return nil, fmt.Errorf("%w: unknown deck %s", ErrDeckUnavailable, handle)
	}
	if n > len(deck) {
		return nil, fmt.Errorf("%w: %d cards requested, %d remaining", ErrDeckUnavailable, n, len(deck))
	}

	drawn := deck[:n]
	d.decks[handle] = deck[n:]
	return drawn, nil
}

// HTTPDealer is a client for a deckofcardsapi-compatible dealing service.
type HTTPDealer struct {
	baseURL string
	client  *http.Client
}

// NewHTTPDealer creates an HTTPDealer for the service at baseURL.
func NewHTTPDealer(baseURL string, timeout time.Duration) *HTTPDealer {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPDealer{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type shuffleResponse struct {
	Success bool   `json:"success"`
	DeckID  string `json:"deck_id"`
}

type drawResponse struct {
	Success bool   `json:"success"`
	Cards   []Card `json:"cards"`
}

// NewDeck requests a freshly shuffled deck from the service.
func (d *HTTPDealer) NewDeck(ctx context.Context) (string, error) {
	var resp shuffleResponse
	if err := d.get(ctx, d.baseURL+"/api/deck/new/shuffle/?deck_count=1", &resp); err != nil {
		return "", err
	}
	if !resp.Success || resp.DeckID == "" {
		return "", fmt.Errorf("%w: shuffle rejected", ErrDeckUnavailable)
	}
	return resp.DeckID, nil
}

// Draw requests the next n cards from the deck identified by handle.
func (d *HTTPDealer) Draw(ctx context.Context, handle string, n int) ([]Card, error) {
	u := fmt.Sprintf("%s/api/deck/%s/draw/?count=%d", d.baseURL, url.PathEscape(handle), n)
	var resp drawResponse
	if err := d.get(ctx, u, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || len(resp.Cards) != n {
		return nil, fmt.Errorf("%w: drew %d of %d cards", ErrDeckUnavailable, len(resp.Cards), n)
	}
	return resp.Cards, nil
}

func (d *HTTPDealer) get(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeckUnavailable, err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeckUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrDeckUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrDeckUnavailable, err)
	}
	return nil
}
