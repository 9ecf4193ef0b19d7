// internal/words/words.go
//
// Target-word selection for new rooms.
//
// Responsibilities:
//   - Fetch a random 5-letter word from a remote word API.
//   - Normalize and validate candidates (exactly 5 ASCII letters,
//     uppercased).
//   - Fall back to a small fixed list whenever the remote source fails or
//     returns something unusable, so room creation never blocks on a third
//     party.
//
// Environment variables:
//   WORD_API_URL  override for the remote endpoint (tests point this at a
//                 local server).

package words

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultAPIURL serves a one-word JSON array, e.g. ["crane"].
const DefaultAPIURL = "https://random-word-api.vercel.app/api?words=1&length=5"

// Fallback is the fixed word list used when the remote source fails.
var Fallback = []string{"APPLE", "BEACH", "CHAIR", "DANCE", "EARTH", "FLAME"}

// Provider supplies the target word for a new room. Implementations must
// always return a valid 5-letter uppercase word.
type Provider interface {
	TargetWord(ctx context.Context) string
}

// APIProvider asks the remote word API and falls back to the fixed list.
type APIProvider struct {
	url    string
	client *http.Client
}

// NewAPIProvider builds a provider against url (DefaultAPIURL if empty).
func NewAPIProvider(url string) *APIProvider {
	if url == "" {
		url = DefaultAPIURL
	}
	return &APIProvider{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// TargetWord returns a validated uppercase 5-letter word, remote first,
// fallback on any failure.
func (p *APIProvider) TargetWord(ctx context.Context) string {
	w, err := p.fetch(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("word api failed, using fallback")
		return FallbackWord()
	}
	return w
}

func (p *APIProvider) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return "", err
	}
	res, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("word api status %d", res.StatusCode)
	}

	var words []string
	if err := json.NewDecoder(res.Body).Decode(&words); err != nil {
		return "", err
	}
	if len(words) == 0 {
		return "", fmt.Errorf("word api returned no words")
	}
	w, ok := Normalize(words[0])
	if !ok {
		return "", fmt.Errorf("word api returned unusable word %q", words[0])
	}
	return w, nil
}

// FallbackWord picks a random word from the fixed list.
func FallbackWord() string {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(Fallback))))
	if err != nil {
		return Fallback[0]
	}
	return Fallback[n.Int64()]
}

// Normalize uppercases and validates a candidate word. ok is false unless
// the result is exactly 5 ASCII letters.
func Normalize(w string) (string, bool) {
	w = strings.ToUpper(strings.TrimSpace(w))
	if len(w) != 5 {
		return "", false
	}
	for _, r := range w {
		if r < 'A' || r > 'Z' {
			return "", false
		}
	}
	return w, true
}

// Static always returns the same word; room creation in tests pins the
// answer with it.
type Static string

func (s Static) TargetWord(ctx context.Context) string { return string(s) }
