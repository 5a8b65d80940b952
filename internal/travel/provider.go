package travel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// ErrProviderUnavailable is returned when the travel matrix provider cannot
// give an estimate. Callers degrade to buffer-based scheduling instead of
// failing the request.
var ErrProviderUnavailable = errors.New("travel provider unavailable")

// MatrixProvider queries an external travel time matrix API.
type MatrixProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     zerolog.Logger
}

func NewMatrixProvider(baseURL, apiKey string, timeout time.Duration, logger *zerolog.Logger) *MatrixProvider {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	var log zerolog.Logger
	if logger != nil {
		log = logger.With().Str("component", "travel_provider").Logger()
	}
	return &MatrixProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

type matrixResponse struct {
	Minutes int64 `json:"minutes"`
}

// EstimateMinutes asks the provider for the travel time between two stops.
// Any transport or server failure maps to ErrProviderUnavailable.
func (p *MatrixProvider) EstimateMinutes(ctx context.Context, fromLocationID, toLocationID string) (int64, error) {
	if fromLocationID == toLocationID {
		return 0, nil
	}

	endpoint := fmt.Sprintf("%s/v1/travel-time?from=%s&to=%s",
		p.baseURL, url.QueryEscape(fromLocationID), url.QueryEscape(toLocationID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("build travel request: %w", err)
	}
	if p.apiKey != "" {
		req.Header.Set("X-API-Key", p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Warn().Err(err).Str("from", fromLocationID).Str("to", toLocationID).Msg("travel provider request failed")
		return 0, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.log.Warn().Int("status", resp.StatusCode).Msg("travel provider returned non-200")
		return 0, fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var body matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("%w: decode response: %v", ErrProviderUnavailable, err)
	}
	if body.Minutes < 0 {
		return 0, fmt.Errorf("%w: negative estimate %d", ErrProviderUnavailable, body.Minutes)
	}
	return body.Minutes, nil
}
