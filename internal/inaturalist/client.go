package inaturalist

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/tallvaxt/floraquiz/internal/errors"
	"github.com/tallvaxt/floraquiz/internal/logging"
	"github.com/tallvaxt/floraquiz/internal/model"
)

// Package-level logger specific to the inaturalist service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar) // Dynamic level control
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "inaturalist.log")
	serviceLevelVar.Set(slog.LevelDebug)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "inaturalist", serviceLevelVar)
	if err != nil {
		// Fallback: disable service logging rather than panic on a nil logger
		log.Printf("FATAL: Failed to initialize inaturalist file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "inaturalist")
		closeLogger = func() error { return nil }
	}
}

// photoSizeRe matches the size token embedded in iNaturalist photo URLs,
// e.g. .../photos/123/square.jpg
var photoSizeRe = regexp.MustCompile(`(?i)(square|small|thumb|original|large)(\.[a-zA-Z]+)$`)

// minPopularResults is the result count below which the observation search is
// retried without the popularity filter. The popular filter frequently starves
// uncommon species of results.
const minPopularResults = 10

// Client provides methods for interacting with the iNaturalist API
type Client struct {
	config      Config
	httpClient  *http.Client
	cache       *cache.Cache
	rateLimiter *time.Ticker
	mu          sync.Mutex
	debug       bool
}

// NewClient creates a new iNaturalist API client
func NewClient(config Config, debug bool) *Client {
	defaults := DefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = defaults.CacheTTL
	}
	if config.RateLimitMS == 0 {
		config.RateLimitMS = defaults.RateLimitMS
	}
	if config.TaxonPhotoLimit == 0 {
		config.TaxonPhotoLimit = defaults.TaxonPhotoLimit
	}
	if config.ObservationPageSize == 0 {
		config.ObservationPageSize = defaults.ObservationPageSize
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

	logger.Info("iNaturalist client initialized",
		"base_url", config.BaseURL,
		"cache_ttl", config.CacheTTL,
		"rate_limit_ms", config.RateLimitMS,
		"taxon_photo_limit", config.TaxonPhotoLimit,
		"debug", debug)

	return client
}

// Close cleans up client resources
func (c *Client) Close() {
	c.rateLimiter.Stop()
	logger.Info("Closing iNaturalist client")

	if closeLogger != nil {
		if err := closeLogger(); err != nil {
			log.Printf("Error closing inaturalist logger: %v", err)
		}
	}
}

// FetchPhotos aggregates curated taxon photos and community observation
// photos for a search name. It never returns an error: any failure truncates
// aggregation at that point and the pools built so far are returned, empty
// lists at worst. The returned pools are disjoint and all URLs are rewritten
// to medium size.
func (c *Client) FetchPhotos(ctx context.Context, searchName string) model.PhotoSet {
	cacheKey := fmt.Sprintf("photos:%s", strings.ToLower(searchName))

	if cached, found := c.cache.Get(cacheKey); found {
		if photos, ok := cached.(model.PhotoSet); ok {
			logger.Debug("iNaturalist photo cache hit", "cache_key", cacheKey)
			return photos
		}
	}

	photos := c.fetchPhotos(ctx, searchName)
	c.cache.Set(cacheKey, photos, cache.DefaultExpiration)
	return photos
}

func (c *Client) fetchPhotos(ctx context.Context, searchName string) model.PhotoSet {
	photos := model.PhotoSet{
		TaxonPhotos:       []string{},
		ObservationPhotos: []string{},
	}

	// Step 1: resolve the search name to a taxon ID.
	taxonID, err := c.searchTaxon(ctx, searchName)
	if err != nil {
		logger.Warn("iNaturalist taxon search failed", "search_name", searchName, "error", err)
		return photos
	}
	if taxonID == 0 {
		logger.Warn("No iNaturalist taxon found", "search_name", searchName)
		return photos
	}

	// Step 2: curated reference photos for the taxon.
	taxonPhotos, err := c.taxonPhotos(ctx, taxonID)
	if err != nil {
		logger.Warn("iNaturalist taxon photo fetch failed",
			"search_name", searchName,
			"taxon_id", taxonID,
			"error", err)
		return photos
	}
	photos.TaxonPhotos = taxonPhotos

	// Step 3: community observation photos filtered to the taxon name.
	obsPhotos, err := c.observationPhotos(ctx, searchName)
	if err != nil {
		logger.Warn("iNaturalist observation photo fetch failed",
			"search_name", searchName,
			"error", err)
		return photos
	}

	// Step 4: the pools must be disjoint; taxon photos win.
	seen := make(map[string]struct{}, len(photos.TaxonPhotos))
	for _, photoURL := range photos.TaxonPhotos {
		seen[photoURL] = struct{}{}
	}
	for _, photoURL := range obsPhotos {
		if _, dup := seen[photoURL]; !dup {
			photos.ObservationPhotos = append(photos.ObservationPhotos, photoURL)
		}
	}

	logger.Info("iNaturalist photos aggregated",
		"search_name", searchName,
		"taxon_id", taxonID,
		"taxon_photos", len(photos.TaxonPhotos),
		"observation_photos", len(photos.ObservationPhotos))

	return photos
}

// searchTaxon resolves a name to a taxon ID. Returns 0 when no taxon matches.
func (c *Client) searchTaxon(ctx context.Context, searchName string) (int, error) {
	requestURL := fmt.Sprintf("%s/taxa?q=%s", c.config.BaseURL, url.QueryEscape(searchName))

	var searchResp taxaSearchResponse
	if err := c.doRequest(ctx, requestURL, &searchResp); err != nil {
		return 0, err
	}
	if len(searchResp.Results) == 0 {
		return 0, nil
	}
	return searchResp.Results[0].ID, nil
}

// taxonPhotos fetches the taxon's curated reference photos, up to the
// configured limit, preserving source order.
func (c *Client) taxonPhotos(ctx context.Context, taxonID int) ([]string, error) {
	requestURL := fmt.Sprintf("%s/taxa/%d", c.config.BaseURL, taxonID)

	var detailResp taxonDetailResponse
	if err := c.doRequest(ctx, requestURL, &detailResp); err != nil {
		return nil, err
	}

	photos := []string{}
	if len(detailResp.Results) == 0 {
		return photos, nil
	}
	for _, taxonPhoto := range detailResp.Results[0].TaxonPhotos {
		photoURL := taxonPhoto.Photo.MediumURL
		if photoURL == "" {
			photoURL = taxonPhoto.Photo.URL
		}
		if photoURL == "" {
			continue
		}
		photos = append(photos, photoURL)
		if len(photos) >= c.config.TaxonPhotoLimit {
			break
		}
	}
	return photos, nil
}

// observationPhotos fetches community observation photos for a taxon name.
// Popular observations are requested first for better curation; when that
// filter returns too few observations the search is retried once without it.
func (c *Client) observationPhotos(ctx context.Context, searchName string) ([]string, error) {
	obsResp, err := c.searchObservations(ctx, searchName, true)
	if err != nil {
		return nil, err
	}

	if len(obsResp.Results) < minPopularResults {
		broader, err := c.searchObservations(ctx, searchName, false)
		if err == nil {
			obsResp = broader
		} else {
			logger.Warn("Broader observation search failed, keeping popular results",
				"search_name", searchName,
				"error", err)
		}
	}

	photos := []string{}
	for _, observation := range obsResp.Results {
		for _, photo := range observation.Photos {
			if photo.URL == "" {
				continue
			}
			photos = append(photos, mediumSizeURL(photo.URL))
		}
	}
	return photos, nil
}

func (c *Client) searchObservations(ctx context.Context, searchName string, popular bool) (*observationsResponse, error) {
	requestURL := fmt.Sprintf(
		"%s/observations?taxon_name=%s&photos=true&popular=%t&per_page=%d&order_by=date_added&order=desc",
		c.config.BaseURL,
		url.QueryEscape(searchName),
		popular,
		c.config.ObservationPageSize,
	)

	var obsResp observationsResponse
	if err := c.doRequest(ctx, requestURL, &obsResp); err != nil {
		return nil, err
	}
	return &obsResp, nil
}

// mediumSizeURL rewrites the size token embedded in a photo URL to medium so
// all returned URLs are uniformly sized.
func mediumSizeURL(photoURL string) string {
	return photoSizeRe.ReplaceAllString(photoURL, "medium${2}")
}

// doRequest performs a GET request with rate limiting
func (c *Client) doRequest(ctx context.Context, requestURL string, result any) error {
	// Rate limiting
	c.mu.Lock()
	select {
	case <-c.rateLimiter.C:
	case <-ctx.Done():
		c.mu.Unlock()
		return ctx.Err()
	}
	c.mu.Unlock()

	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	start := time.Now()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, requestURL, http.NoBody)
	if err != nil {
		return errors.Newf("failed to create HTTP request: %w", err).
			Category(errors.CategoryNetwork).
			Context("url", requestURL).
			Component("inaturalist").
			Build()
	}
	req.Header.Set("Accept", "application/json")

	if c.debug {
		logger.Debug("iNaturalist API request", "url", requestURL)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("iNaturalist API request failed", "error", err, "url", requestURL)
		return errors.Newf("HTTP request failed: %w", err).
			Category(errors.CategoryNetwork).
			NetworkContext(requestURL, c.config.Timeout).
			Component("inaturalist").
			Build()
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Newf("failed to read response body: %w", err).
			Category(errors.CategoryNetwork).
			Context("url", requestURL).
			Context("status_code", resp.StatusCode).
			Component("inaturalist").
			Build()
	}

	if resp.StatusCode >= 400 {
		logger.Warn("iNaturalist API error response",
			"status_code", resp.StatusCode,
			"url", requestURL)
		return errors.Newf("iNaturalist API error (status %d)", resp.StatusCode).
			Category(getErrorCategory(resp.StatusCode)).
			Context("status_code", resp.StatusCode).
			Context("url", requestURL).
			Timing("inaturalist-request", time.Since(start)).
			Component("inaturalist").
			Build()
	}

	if result != nil {
		if err := json.Unmarshal(bodyBytes, result); err != nil {
			return errors.Newf("failed to parse response: %w", err).
				Category(errors.CategoryFileParsing).
				Context("url", requestURL).
				Context("response_size", len(bodyBytes)).
				Component("inaturalist").
				Build()
		}
	}

	if c.debug {
		logger.Debug("iNaturalist API response",
			"url", requestURL,
			"duration_ms", time.Since(start).Milliseconds(),
			"response_size", len(bodyBytes))
	}

	return nil
}

// ClearCache clears all cached photo sets
func (c *Client) ClearCache() {
	c.cache.Flush()
	logger.Info("iNaturalist cache cleared")
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
