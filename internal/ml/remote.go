package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/yourusername/fplpanel/internal/logger"
)

// RemoteConfig configures the HTTP model service client
type RemoteConfig struct {
	BaseURL    string
	ModelType  string
	AuthToken  string
	Timeout    time.Duration
	MaxRetries int
	// Features names the design matrix columns sent with each request
	Features []string
}

// RemoteRegressor delegates fitting and scoring to an external model service
type RemoteRegressor struct {
	client  *retryablehttp.Client
	cfg     RemoteConfig
	logger  *logger.ModelLogger
	modelID string
}

// FitRequest is the training payload
type FitRequest struct {
	ModelType string      `json:"model_type"`
	Features  []string    `json:"features"`
	X         [][]float64 `json:"x"`
	Y         []float64   `json:"y"`
}

// FitResponse carries the id of the trained model
type FitResponse struct {
	ModelID string             `json:"model_id"`
	Status  string             `json:"status"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

// PredictRequest is the scoring payload
type PredictRequest struct {
	ModelID  string      `json:"model_id"`
	Features []string    `json:"features"`
	X        [][]float64 `json:"x"`
}

// PredictResponse carries one prediction per input row
type PredictResponse struct {
	ModelID     string    `json:"model_id"`
	Predictions []float64 `json:"predictions"`
}

// NewRemoteRegressor creates a client for the model service
func NewRemoteRegressor(cfg RemoteConfig, log *logrus.Logger) *RemoteRegressor {
	if log == nil {
		log = logger.Discard()
	}
	if cfg.ModelType == "" {
		cfg.ModelType = "remote"
	}
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.MaxRetries
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = cfg.Timeout
	client.Logger = logger.NewRetryableLogger(log.WithField("component", "model_http"))

	return &RemoteRegressor{
		client: client,
		cfg:    cfg,
		logger: logger.NewModelLogger(log),
	}
}

// Name identifies the model in logs and metrics
func (r *RemoteRegressor) Name() string { return r.cfg.ModelType }

// Fit uploads the training set and remembers the returned model id
func (r *RemoteRegressor) Fit(ctx context.Context, x mat.Matrix, y []float64) error {
	start := time.Now()
	n, p := x.Dims()
	if n != len(y) {
		return fmt.Errorf("%w: %d rows, %d targets", ErrShapeMismatch, n, len(y))
	}

	var resp FitResponse
	err := r.post(ctx, "fit", "/api/v1/models/fit", FitRequest{
		ModelType: r.cfg.ModelType,
		Features:  r.cfg.Features,
		X:         rows(x),
		Y:         y,
	}, &resp)
	ModelFitDuration.WithLabelValues(r.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		ModelFitsTotal.WithLabelValues(r.Name(), "failure").Inc()
		return err
	}
	if resp.ModelID == "" {
		ModelFitsTotal.WithLabelValues(r.Name(), "failure").Inc()
		return fmt.Errorf("%w: fit response has no model id", ErrInvalidPrediction)
	}

	r.modelID = resp.ModelID
	ModelFitsTotal.WithLabelValues(r.Name(), "success").Inc()
	r.logger.LogModelFit(r.Name(), n, p, time.Since(start).Seconds(), map[string]interface{}{
		"model_id": resp.ModelID,
	})
	return nil
}

// Predict scores x with the fitted remote model
func (r *RemoteRegressor) Predict(ctx context.Context, x mat.Matrix) ([]float64, error) {
	if r.modelID == "" {
		return nil, ErrNotFitted
	}
	start := time.Now()
	n, p := x.Dims()

	var resp PredictResponse
	if err := r.post(ctx, "predict", "/api/v1/models/predict", PredictRequest{
		ModelID:  r.modelID,
		Features: r.cfg.Features,
		X:        rows(x),
	}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Predictions) != n {
		ModelServiceErrorsTotal.WithLabelValues("predict", "invalid_response").Inc()
		return nil, fmt.Errorf("%w: %d predictions for %d rows", ErrInvalidPrediction, len(resp.Predictions), n)
	}

	ModelPredictionsTotal.WithLabelValues(r.Name()).Add(float64(n))
	r.logger.LogPredictionRequest(r.Name(), n, p, float64(time.Since(start).Milliseconds()))
	return resp.Predictions, nil
}

// HealthCheck checks model service health over HTTP
func (r *RemoteRegressor) HealthCheck(ctx context.Context) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, r.url("/health"), nil)
	if err != nil {
		return err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrModelServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrModelServiceUnavailable, resp.StatusCode)
	}
	return nil
}

func (r *RemoteRegressor) post(ctx context.Context, method, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, r.url(path), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if r.cfg.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+r.cfg.AuthToken)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		ModelServiceErrorsTotal.WithLabelValues(method, "network").Inc()
		r.logger.LogModelServiceError(method, err.Error())
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		ModelServiceErrorsTotal.WithLabelValues(method, "http_error").Inc()
		r.logger.LogModelServiceError(method, fmt.Sprintf("status %d", resp.StatusCode))
		return fmt.Errorf("%s request failed with status %d: %s", method, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		ModelServiceErrorsTotal.WithLabelValues(method, "decode").Inc()
		return fmt.Errorf("%w: %v", ErrInvalidPrediction, err)
	}
	return nil
}

func (r *RemoteRegressor) url(path string) string {
	return strings.TrimRight(r.cfg.BaseURL, "/") + path
}

func rows(x mat.Matrix) [][]float64 {
	n, _ := x.Dims()
	out := make([][]float64, n)
	for i := range out {
		out[i] = mat.Row(nil, i, x)
	}
	return out
}
