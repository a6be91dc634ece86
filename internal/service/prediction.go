package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"predman/internal/domain"
)

// Predictor estimates how many days a project still needs.
type Predictor interface {
	Predict(ctx context.Context, projectID string, estimatedDays int) (domain.Prediction, error)
}

// NewPredictor returns an HTTP predictor for baseURL, or a no-op one when
// no URL is configured.
func NewPredictor(baseURL string) Predictor {
	if baseURL == "" {
		return NopPredictor{}
	}
	return &HTTPPredictor{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// NopPredictor always returns the zero prediction.
type NopPredictor struct{}

func (NopPredictor) Predict(context.Context, string, int) (domain.Prediction, error) {
	return domain.Prediction{}, nil
}

// HTTPPredictor calls the statistics service over JSON.
type HTTPPredictor struct {
	BaseURL string
	HTTP    *http.Client
}

type predictRequest struct {
	ProjectID     string `json:"project_id"`
	EstimatedDays int    `json:"estimated_days"`
}

func (p *HTTPPredictor) Predict(ctx context.Context, projectID string, estimatedDays int) (domain.Prediction, error) {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(predictRequest{ProjectID: projectID, EstimatedDays: estimatedDays}); err != nil {
		return domain.Prediction{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/predict", buf)
	if err != nil {
		return domain.Prediction{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.HTTP.Do(req)
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("predict: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Prediction{}, fmt.Errorf("predict: unexpected status %d", resp.StatusCode)
	}

	var out domain.Prediction
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.Prediction{}, fmt.Errorf("decode prediction: %w", err)
	}
	return out, nil
}
