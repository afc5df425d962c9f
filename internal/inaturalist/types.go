// Package inaturalist provides a client for the iNaturalist API v1
package inaturalist

import "time"

// taxaSearchResponse is the response of the taxa search endpoint.
type taxaSearchResponse struct {
	Results []struct {
		ID int `json:"id"`
	} `json:"results"`
}

// taxonDetailResponse is the response of the taxon detail endpoint. Only the
// curated reference photos are of interest here.
type taxonDetailResponse struct {
	Results []struct {
		TaxonPhotos []struct {
			Photo struct {
				MediumURL string `json:"medium_url"`
				URL       string `json:"url"`
			} `json:"photo"`
		} `json:"taxon_photos"`
	} `json:"results"`
}

// observationsResponse is the response of the observations search endpoint.
type observationsResponse struct {
	Results []struct {
		Photos []struct {
			URL string `json:"url"`
		} `json:"photos"`
	} `json:"results"`
}

// Config holds configuration for the iNaturalist client
type Config struct {
	BaseURL             string        `json:"base_url"`
	Timeout             time.Duration `json:"timeout"`
	CacheTTL            time.Duration `json:"cache_ttl"`
	RateLimitMS         int           `json:"rate_limit_ms"` // Milliseconds between requests
	TaxonPhotoLimit     int           `json:"taxon_photo_limit"`
	ObservationPageSize int           `json:"observation_page_size"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaseURL:             "https://api.inaturalist.org/v1",
		Timeout:             30 * time.Second,
		CacheTTL:            24 * time.Hour,
		RateLimitMS:         100,
		TaxonPhotoLimit:     10,
		ObservationPageSize: 30,
	}
}
