package wfo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/tallvaxt/floraquiz/internal/botanical"
	"github.com/tallvaxt/floraquiz/internal/errors"
	"github.com/tallvaxt/floraquiz/internal/logging"
	"github.com/tallvaxt/floraquiz/internal/model"
)

// Package-level logger specific to the wfo service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar) // Dynamic level control
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "wfo.log")
	serviceLevelVar.Set(slog.LevelDebug)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "wfo", serviceLevelVar)
	if err != nil {
		// Fallback: disable service logging rather than panic on a nil logger
		log.Printf("FATAL: Failed to initialize wfo file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "wfo")
		closeLogger = func() error { return nil }
	}
}

// Client provides methods for interacting with the World Flora Online API
type Client struct {
	config      Config
	httpClient  *http.Client
	cache       *cache.Cache
	rateLimiter *time.Ticker
	mu          sync.Mutex
	debug       bool

	// Metrics
	metrics struct {
		apiCalls    int64
		cacheHits   int64
		cacheMisses int64
		apiErrors   int64
		mu          sync.RWMutex
	}
}

// NewClient creates a new WFO API client
func NewClient(config Config, debug bool) *Client {
	// Use defaults for missing config values
	if config.MatchURL == "" {
		config.MatchURL = DefaultConfig().MatchURL
	}
	if config.GraphQLURL == "" {
		config.GraphQLURL = DefaultConfig().GraphQLURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = DefaultConfig().CacheTTL
	}
	if config.RateLimitMS == 0 {
		config.RateLimitMS = DefaultConfig().RateLimitMS
	}

	client := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		cache:       cache.New(config.CacheTTL, config.CacheTTL*2),
		rateLimiter: time.NewTicker(time.Duration(config.RateLimitMS) * time.Millisecond),
		debug:       debug,
	}

	logger.Info("WFO client initialized",
		"match_url", config.MatchURL,
		"graphql_url", config.GraphQLURL,
		"cache_ttl", config.CacheTTL,
		"rate_limit_ms", config.RateLimitMS,
		"debug", debug)

	return client
}

// Close cleans up client resources
func (c *Client) Close() {
	c.rateLimiter.Stop()
	logger.Info("Closing WFO client")

	if closeLogger != nil {
		if err := closeLogger(); err != nil {
			log.Printf("Error closing wfo logger: %v", err)
		}
	}
}

// failOpen is the sentinel resolution used for every failure mode: the input
// name is treated as accepted-as-is so the pipeline can continue. Callers must
// check HasMatch before trusting the accepted/synonym flags.
func failOpen(name string) model.Resolution {
	return model.Resolution{
		IsAccepted:   true,
		IsSynonym:    false,
		AcceptedName: name,
		HasMatch:     false,
	}
}

// Resolve determines whether a cleaned name is an accepted name or a synonym.
// It uses a two-step protocol: the matching endpoint yields a WFO ID, then the
// GraphQL endpoint yields that ID's current preferred usage. Resolve never
// returns an error; transport failures, service-reported errors and missing
// matches all degrade to a HasMatch=false sentinel with the input name
// retained.
func (c *Client) Resolve(ctx context.Context, name string) model.Resolution {
	cacheKey := fmt.Sprintf("resolve:%s", strings.ToLower(name))

	if cached, found := c.cache.Get(cacheKey); found {
		if resolution, ok := cached.(model.Resolution); ok {
			c.metrics.mu.Lock()
			c.metrics.cacheHits++
			c.metrics.mu.Unlock()

			logger.Debug("WFO resolution cache hit", "cache_key", cacheKey)
			return resolution
		}
	}

	c.metrics.mu.Lock()
	c.metrics.cacheMisses++
	c.metrics.mu.Unlock()

	resolution := c.resolve(ctx, name)
	c.cache.Set(cacheKey, resolution, cache.DefaultExpiration)
	return resolution
}

func (c *Client) resolve(ctx context.Context, name string) model.Resolution {
	// Step 1: match the name to get a WFO ID.
	matchResp, err := c.matchName(ctx, name)
	if err != nil {
		logger.Warn("WFO match request failed", "name", name, "error", err)
		return failOpen(name)
	}

	if matchResp.Error {
		logger.Warn("WFO service reported an error", "name", name, "message", matchResp.ErrorMessage)
		return failOpen(name)
	}

	// Prefer a direct match; otherwise take the first (highest-ranked)
	// candidate. No fuzzy re-ranking is performed locally.
	var matched *Candidate
	switch {
	case matchResp.Match != nil:
		matched = matchResp.Match
	case len(matchResp.Candidates) > 0:
		matched = &matchResp.Candidates[0]
	default:
		logger.Warn("No WFO match found", "name", name)
		return failOpen(name)
	}

	// Step 2: look up the ID's current preferred usage name.
	acceptedName, err := c.acceptedNameByID(ctx, matched.WFOID)
	if err != nil {
		logger.Warn("WFO GraphQL lookup failed", "wfo_id", matched.WFOID, "error", err)
		acceptedName = ""
	}

	if acceptedName == "" {
		// Degraded success: fall back to the canonical form of the matched
		// full name, which is less authoritative than the preferred usage.
		if matched.FullNamePlain != "" {
			acceptedName = botanical.CanonicalName(matched.FullNamePlain)
		}
		if acceptedName == "" {
			return model.Resolution{
				IsAccepted:   true,
				IsSynonym:    false,
				AcceptedName: name,
				WFOID:        matched.WFOID,
				HasMatch:     true,
			}
		}
		return model.Resolution{
			IsAccepted:   true,
			IsSynonym:    false,
			AcceptedName: acceptedName,
			WFOID:        matched.WFOID,
			HasMatch:     true,
		}
	}

	// Canonical forms are compared so rank markers and author citations do
	// not misclassify cosmetic differences as real synonym changes.
	originalCanonical := botanical.CanonicalName(name)
	isSynonym := !strings.EqualFold(acceptedName, originalCanonical)

	resolution := model.Resolution{
		IsAccepted:   !isSynonym,
		IsSynonym:    isSynonym,
		AcceptedName: acceptedName,
		WFOID:        matched.WFOID,
		HasMatch:     true,
	}

	logger.Info("WFO name resolved",
		"name", name,
		"accepted_name", acceptedName,
		"is_synonym", isSynonym,
		"wfo_id", matched.WFOID)

	return resolution
}

// matchName submits a name to the WFO matching endpoint.
func (c *Client) matchName(ctx context.Context, name string) (*MatchResponse, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	requestURL := fmt.Sprintf("%s?input_string=%s", c.config.MatchURL, url.QueryEscape(name))

	var matchResp MatchResponse
	if err := c.doRequestWithRetry(reqCtx, http.MethodGet, requestURL, nil, &matchResp); err != nil {
		return nil, err
	}
	return &matchResp, nil
}

// acceptedNameByID queries the GraphQL endpoint for the current preferred
// usage of a WFO ID and returns its canonical name, or empty when the graph
// has no preferred usage for the ID.
func (c *Client) acceptedNameByID(ctx context.Context, wfoID string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	query := graphQLRequest{
		Query: fmt.Sprintf(`query { taxonNameById(nameId: %q) { fullNameStringPlain currentPreferredUsage { hasName { fullNameStringPlain } } } }`, wfoID),
	}
	body, err := json.Marshal(query)
	if err != nil {
		return "", errors.New(err).
			Category(errors.CategoryValidation).
			Context("wfo_id", wfoID).
			Component("wfo").
			Build()
	}

	var gqlResp graphQLResponse
	if err := c.doRequestWithRetry(reqCtx, http.MethodPost, c.config.GraphQLURL, body, &gqlResp); err != nil {
		return "", err
	}

	if len(gqlResp.Errors) > 0 {
		return "", errors.Newf("WFO GraphQL error: %s", gqlResp.Errors[0].Message).
			Category(errors.CategoryNetwork).
			Context("wfo_id", wfoID).
			Component("wfo").
			Build()
	}

	taxonName := gqlResp.Data.TaxonNameByID
	if taxonName == nil {
		return "", nil
	}
	if usage := taxonName.CurrentPreferredUsage; usage != nil && usage.HasName != nil && usage.HasName.FullNameStringPlain != "" {
		return botanical.CanonicalName(usage.HasName.FullNameStringPlain), nil
	}
	return "", nil
}

// doRequest performs an HTTP request with rate limiting
func (c *Client) doRequest(ctx context.Context, method, requestURL string, body []byte, result any) error {
	// Rate limiting
	c.mu.Lock()
	select {
	case <-c.rateLimiter.C:
	case <-ctx.Done():
		c.mu.Unlock()
		return ctx.Err()
	}
	c.mu.Unlock()

	start := time.Now()

	c.metrics.mu.Lock()
	c.metrics.apiCalls++
	c.metrics.mu.Unlock()

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		c.countError()
		return errors.Newf("failed to create HTTP request: %w", err).
			Category(errors.CategoryNetwork).
			Context("method", method).
			Context("url", requestURL).
			Component("wfo").
			Build()
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.debug {
		logger.Debug("WFO API request", "method", method, "url", requestURL)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.countError()
		logger.Error("WFO API request failed", "error", err, "method", method, "url", requestURL)
		return errors.Newf("HTTP request failed: %w", err).
			Category(errors.CategoryNetwork).
			Context("method", method).
			NetworkContext(requestURL, c.config.Timeout).
			Component("wfo").
			Build()
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		c.countError()
		return errors.Newf("failed to read response body: %w", err).
			Category(errors.CategoryNetwork).
			Context("url", requestURL).
			Context("status_code", resp.StatusCode).
			Component("wfo").
			Build()
	}

	if resp.StatusCode >= 400 {
		c.countError()
		logger.Warn("WFO API error response",
			"status_code", resp.StatusCode,
			"url", requestURL)
		return errors.Newf("WFO API error (status %d)", resp.StatusCode).
			Category(getErrorCategory(resp.StatusCode)).
			Context("status_code", resp.StatusCode).
			Context("url", requestURL).
			Timing("wfo-request", time.Since(start)).
			Component("wfo").
			Build()
	}

	if result != nil {
		if err := json.Unmarshal(bodyBytes, result); err != nil {
			responsePreview := string(bodyBytes)
			if len(responsePreview) > 500 {
				responsePreview = responsePreview[:500] + "..."
			}
			logger.Error("Failed to parse WFO API response",
				"error", err,
				"url", requestURL,
				"response_preview", responsePreview)
			return errors.Newf("failed to parse response: %w", err).
				Category(errors.CategoryFileParsing).
				Context("url", requestURL).
				Context("response_size", len(bodyBytes)).
				Component("wfo").
				Build()
		}
	}

	if c.debug {
		logger.Debug("WFO API response",
			"status_code", resp.StatusCode,
			"url", requestURL,
			"duration_ms", time.Since(start).Milliseconds(),
			"response_size", len(bodyBytes))
	}

	return nil
}

// doRequestWithRetry wraps doRequest with retry logic for transient failures.
// The body is kept as a byte slice so a fresh reader can be built per attempt.
func (c *Client) doRequestWithRetry(ctx context.Context, method, requestURL string, body []byte, result any) error {
	const maxRetries = 3
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := c.doRequest(ctx, method, requestURL, body, result)
		if err == nil {
			return nil
		}

		var enhancedErr *errors.EnhancedError
		if errors.As(err, &enhancedErr) {
			// Client errors other than 429 will not improve with a retry
			if statusCode, ok := enhancedErr.Context["status_code"].(int); ok {
				if statusCode >= 400 && statusCode < 500 && statusCode != 429 {
					return err
				}
			}
			if enhancedErr.Category == errors.CategoryValidation ||
				enhancedErr.Category == errors.CategoryFileParsing {
				return err
			}
		}

		lastErr = err

		if ctx.Err() != nil {
			return lastErr
		}

		delay := time.Duration(attempt+1) * 500 * time.Millisecond
		if attempt < maxRetries-1 {
			logger.Warn("WFO API request failed, retrying",
				"attempt", attempt+1,
				"max_retries", maxRetries,
				"delay_ms", delay.Milliseconds(),
				"url", requestURL,
				"error", err.Error())

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return lastErr
}

func (c *Client) countError() {
	c.metrics.mu.Lock()
	c.metrics.apiErrors++
	c.metrics.mu.Unlock()
}

// ClearCache clears all cached resolutions
func (c *Client) ClearCache() {
	c.cache.Flush()
	logger.Info("WFO cache cleared")
}

// Metrics represents WFO client performance metrics
type Metrics struct {
	APICalls    int64 `json:"api_calls"`
	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`
	APIErrors   int64 `json:"api_errors"`
}

// GetMetrics returns current client metrics
func (c *Client) GetMetrics() Metrics {
	c.metrics.mu.RLock()
	defer c.metrics.mu.RUnlock()

	return Metrics{
		APICalls:    c.metrics.apiCalls,
		CacheHits:   c.metrics.cacheHits,
		CacheMisses: c.metrics.cacheMisses,
		APIErrors:   c.metrics.apiErrors,
	}
}

// getErrorCategory determines the appropriate error category based on HTTP status code
func getErrorCategory(statusCode int) errors.ErrorCategory {
	switch statusCode {
	case 429:
		return errors.CategoryLimit
	case 404:
		return errors.CategoryNotFound
	default:
		return errors.CategoryNetwork
	}
}
