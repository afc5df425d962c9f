// Package wfo provides a client for the World Flora Online Plant List API
package wfo

import "time"

// Candidate represents one matched name from the WFO matching endpoint.
type Candidate struct {
	WFOID         string `json:"wfo_id"`
	FullNamePlain string `json:"full_name_plain"`
	Placement     string `json:"placement,omitempty"`
}

// MatchResponse is the response of the name matching endpoint. It yields
// either a direct match or a ranked list of candidates.
type MatchResponse struct {
	Match        *Candidate  `json:"match"`
	Candidates   []Candidate `json:"candidates"`
	Error        bool        `json:"error"`
	ErrorMessage string      `json:"errorMessage,omitempty"`
}

// graphQLRequest is the envelope for queries against the WFO GraphQL endpoint.
type graphQLRequest struct {
	Query string `json:"query"`
}

// graphQLResponse covers the part of the WFO GraphQL schema this client uses:
// the current preferred usage of a name looked up by its WFO ID.
type graphQLResponse struct {
	Data struct {
		TaxonNameByID *struct {
			FullNameStringPlain   string `json:"fullNameStringPlain"`
			CurrentPreferredUsage *struct {
				HasName *struct {
					FullNameStringPlain string `json:"fullNameStringPlain"`
				} `json:"hasName"`
			} `json:"currentPreferredUsage"`
		} `json:"taxonNameById"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Config holds configuration for the WFO client
type Config struct {
	MatchURL    string        `json:"match_url"`
	GraphQLURL  string        `json:"graphql_url"`
	Timeout     time.Duration `json:"timeout"`
	CacheTTL    time.Duration `json:"cache_ttl"`
	RateLimitMS int           `json:"rate_limit_ms"` // Milliseconds between requests
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		MatchURL:    "https://list.worldfloraonline.org/matching_rest.php",
		GraphQLURL:  "https://list.worldfloraonline.org/gql.php",
		Timeout:     30 * time.Second,
		CacheTTL:    24 * time.Hour, // Nomenclature rarely changes
		RateLimitMS: 100,
	}
}
