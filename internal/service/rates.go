package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// RateService converts CLP amounts to an approximate USD figure for display.
// Quotes come from an external endpoint through a short-TTL read-through
// cache; staleness is tolerated and a fetch failure degrades to CLP-only
// display, it never fails the caller.
type RateService interface {
	// ToUSD returns the formatted USD equivalent, or ok=false when no
	// usable quote is available.
	ToUSD(ctx context.Context, amountCLP int64) (usd string, ok bool)
}

type rateServiceImpl struct {
	httpClient *http.Client
	quoteURL   string
	ttl        time.Duration

	mu        sync.RWMutex
	rate      decimal.Decimal // CLP per USD
	fetchedAt time.Time
}

func NewRateService(quoteURL string, ttl time.Duration) RateService {
	return &rateServiceImpl{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		quoteURL: quoteURL,
		ttl:      ttl,
	}
}

func (s *rateServiceImpl) ToUSD(ctx context.Context, amountCLP int64) (string, bool) {
	rate, ok := s.currentRate(ctx)
	if !ok || rate.IsZero() {
		return "", false
	}

	usd := decimal.NewFromInt(amountCLP).DivRound(rate, 2)
	return usd.StringFixed(2), true
}

func (s *rateServiceImpl) currentRate(ctx context.Context) (decimal.Decimal, bool) {
	s.mu.RLock()
	rate, fetchedAt := s.rate, s.fetchedAt
	s.mu.RUnlock()

	if !fetchedAt.IsZero() && time.Since(fetchedAt) < s.ttl {
		return rate, true
	}

	fresh, err := s.fetchRate(ctx)
	if err != nil {
		log.Printf("rate fetch failed, keeping cached quote: %v", err)
		// A stale quote is still usable for display.
		return rate, !fetchedAt.IsZero()
	}

	s.mu.Lock()
	s.rate, s.fetchedAt = fresh, time.Now()
	s.mu.Unlock()

	return fresh, true
}

func (s *rateServiceImpl) fetchRate(ctx context.Context) (decimal.Decimal, error) {
	if s.quoteURL == "" {
		return decimal.Zero, fmt.Errorf("no quote url configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.quoteURL, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("http new request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("quote request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("quote endpoint status %d", resp.StatusCode)
	}

	var payload struct {
		USD decimal.Decimal `json:"usd"` // CLP per one USD
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Zero, fmt.Errorf("decode quote: %w", err)
	}
	if payload.USD.IsZero() {
		return decimal.Zero, fmt.Errorf("quote endpoint returned zero rate")
	}

	return payload.USD, nil
}
