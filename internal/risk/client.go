package risk

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/healthai-suite/triage-server/internal/domain"
)

// Client calls the external prediction service. Calls are rate limited,
// guarded by a circuit breaker, and cached by feature-vector hash; the model
// itself holds no per-call state, so concurrent use is safe.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logrus.Logger
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	cache   *lru.Cache[string, domain.RiskPrediction]
}

// NewClient creates a risk model client from configuration.
func NewClient(cfg domain.RiskConfig, logger *logrus.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("risk model base URL is required")
	}

	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "RiskModel",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
		limiter: rate.NewLimiter(limit, burst),
		breaker: breaker,
	}

	if cfg.CacheSize >= 2 {
		cache, err := lru.New[string, domain.RiskPrediction](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create prediction cache: %w", err)
		}
		c.cache = cache
	}

	return c, nil
}

// predictResponse is the wire shape of the model service's combined
// prediction endpoint: a binary label, [P(no disease), P(disease)], and
// optional per-feature importance weights.
type predictResponse struct {
	Label         int                `json:"label"`
	Probabilities []float64          `json:"probabilities"`
	Importances   map[string]float64 `json:"importances,omitempty"`
}

// Predict runs one model invocation for a validated feature vector.
// Invalid vectors surface domain.ErrInvalidFeatureVector; transport and
// breaker failures surface domain.ErrModelUnavailable. Neither is retried.
func (c *Client) Predict(ctx context.Context, features *FeatureVector) (*domain.RiskPrediction, error) {
	if err := features.Validate(); err != nil {
		return nil, err
	}

	key := cacheKey(features)
	if c.cache != nil {
		if cached, ok := c.cache.Get(key); ok {
			return &cached, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.invoke(ctx, features)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit breaker open", domain.ErrModelUnavailable)
		}
		return nil, err
	}

	prediction := result.(*domain.RiskPrediction)

	if c.cache != nil {
		c.cache.Add(key, *prediction)
	}

	c.logger.WithFields(logrus.Fields{
		"label":      prediction.Label,
		"confidence": prediction.Confidence(),
	}).Info("Risk prediction completed")

	return prediction, nil
}

// invoke performs the HTTP round trip to the model service.
func (c *Client) invoke(ctx context.Context, features *FeatureVector) (*domain.RiskPrediction, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"features": features.ToSlice(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode features: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrModelUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", domain.ErrModelUnavailable, err)
	}

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity {
		return nil, fmt.Errorf("%w: model rejected features: %s", domain.ErrInvalidFeatureVector, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrModelUnavailable, resp.StatusCode)
	}

	var parsed predictResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", domain.ErrModelUnavailable, err)
	}
	if len(parsed.Probabilities) != 2 {
		return nil, fmt.Errorf("%w: expected two class probabilities, got %d",
			domain.ErrModelUnavailable, len(parsed.Probabilities))
	}

	return &domain.RiskPrediction{
		Label:         parsed.Label,
		Probabilities: [2]float64{parsed.Probabilities[0], parsed.Probabilities[1]},
		Importances:   parsed.Importances,
	}, nil
}

// BreakerState exposes the circuit breaker state for health reporting.
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

func cacheKey(features *FeatureVector) string {
	data, _ := json.Marshal(features.ToSlice())
	hash := sha256.Sum256(data)
	return fmt.Sprintf("risk:%x", hash[:8])
}
