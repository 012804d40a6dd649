package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/marine-watch/backend/internal/config"
	"github.com/marine-watch/backend/internal/utils"
	"go.uber.org/zap"
)

// Client provides access to the external species identification service
type Client struct {
	config     *config.ClassifierConfig
	httpClient *http.Client
	logger     *utils.Logger
	baseURL    string
}

// NewClient creates a new classifier API client
func NewClient(cfg *config.ClassifierConfig, logger *utils.Logger) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     30 * time.Second,
		},
	}

	return &Client{
		config:     cfg,
		httpClient: httpClient,
		logger:     logger.Named("classifier_client"),
		baseURL:    cfg.URL + "/api/v1",
	}
}

// APIError represents an error response from the classifier API
type APIError struct {
	StatusCode int
	Message    string
}

// Error returns the error message
func (e *APIError) Error() string {
	return fmt.Sprintf("classifier API error (%d): %s", e.StatusCode, e.Message)
}

// IdentificationRequest carries the description or image reference to
// identify
type IdentificationRequest struct {
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`
}

// IdentificationResult is the classifier's verdict on a sighting
type IdentificationResult struct {
	Identified         bool    `json:"identified"`
	ScientificName     string  `json:"scientific_name"`
	CommonName         string  `json:"common_name"`
	SpeciesType        string  `json:"species_type"`
	ConservationStatus string  `json:"conservation_status"`
	ThreatLevel        string  `json:"threat_level"`
	Confidence         float64 `json:"confidence"`
	Notes              string  `json:"notes,omitempty"`
}

// Identify submits a sighting to the classifier
func (c *Client) Identify(ctx context.Context, req *IdentificationRequest) (*IdentificationResult, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/identify", req)
	if err != nil {
		return nil, err
	}

	var result IdentificationResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal identification result: %w", err)
	}

	return &result, nil
}

// Health checks whether the classifier service is reachable
func (c *Client) Health(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodGet, "/health", nil)
	return err
}

// doRequest performs an HTTP request to the classifier API
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.config.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIToken)
	}

	c.logger.Debug("Sending request to classifier API",
		zap.String("method", method),
		zap.String("url", url),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}

	return respBody, nil
}
