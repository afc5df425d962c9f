package inaturalist

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "https://api.inaturalist.test/v1"

func setupTestClient(t *testing.T) *Client {
	t.Helper()

	client := NewClient(Config{
		BaseURL:     testBaseURL,
		Timeout:     5 * time.Second,
		CacheTTL:    1 * time.Hour,
		RateLimitMS: 1, // Fast for tests
	}, false)

	httpmock.ActivateNonDefault(client.httpClient)
	t.Cleanup(func() {
		httpmock.DeactivateAndReset()
		client.rateLimiter.Stop()
	})

	return client
}

func registerTaxaSearch(name string, body string) {
	httpmock.RegisterResponderWithQuery("GET", testBaseURL+"/taxa",
		url.Values{"q": []string{name}},
		httpmock.NewStringResponder(200, body))
}

func registerObservations(name string, popular bool, body string) {
	httpmock.RegisterResponderWithQuery("GET", testBaseURL+"/observations",
		url.Values{
			"taxon_name": []string{name},
			"photos":     []string{"true"},
			"popular":    []string{fmt.Sprintf("%t", popular)},
			"per_page":   []string{"30"},
			"order_by":   []string{"date_added"},
			"order":      []string{"desc"},
		},
		httpmock.NewStringResponder(200, body))
}

// observationsBody builds a response with one photo per observation, using
// square-size URLs as the live API does.
func observationsBody(count int) string {
	body := `{"results":[`
	for i := 0; i < count; i++ {
		if i > 0 {
			body += ","
		}
		body += fmt.Sprintf(`{"photos":[{"url":"https://photos.test/obs-%d/square.jpg"}]}`, i)
	}
	return body + `]}`
}

func TestFetchPhotos(t *testing.T) {
	client := setupTestClient(t)

	registerTaxaSearch("Acer palmatum", `{"results":[{"id":47851},{"id":99999}]}`)

	// 12 curated photos, more than the cap of 10.
	taxonBody := `{"results":[{"taxon_photos":[`
	for i := 0; i < 12; i++ {
		if i > 0 {
			taxonBody += ","
		}
		taxonBody += fmt.Sprintf(`{"photo":{"medium_url":"https://photos.test/taxon-%d/medium.jpg"}}`, i)
	}
	taxonBody += `]}]}`
	httpmock.RegisterResponder("GET", testBaseURL+"/taxa/47851",
		httpmock.NewStringResponder(200, taxonBody))

	registerObservations("Acer palmatum", true, observationsBody(15))

	photos := client.FetchPhotos(context.Background(), "Acer palmatum")

	assert.Len(t, photos.TaxonPhotos, 10, "taxon photos capped at 10")
	assert.Equal(t, "https://photos.test/taxon-0/medium.jpg", photos.TaxonPhotos[0], "source order preserved")
	assert.Len(t, photos.ObservationPhotos, 15)
	for _, photoURL := range photos.ObservationPhotos {
		assert.Contains(t, photoURL, "/medium.jpg", "size token rewritten to medium in %q", photoURL)
	}
}

func TestFetchPhotosPopularFallback(t *testing.T) {
	client := setupTestClient(t)

	registerTaxaSearch("Neillia incisa", `{"results":[{"id":1234}]}`)
	httpmock.RegisterResponder("GET", testBaseURL+"/taxa/1234",
		httpmock.NewStringResponder(200, `{"results":[{"taxon_photos":[]}]}`))

	// The popular filter starves this species; the broader search succeeds.
	registerObservations("Neillia incisa", true, observationsBody(3))
	registerObservations("Neillia incisa", false, observationsBody(20))

	photos := client.FetchPhotos(context.Background(), "Neillia incisa")

	assert.Len(t, photos.ObservationPhotos, 20, "broader pool used when popular results are scarce")
}

func TestFetchPhotosNoTaxonFound(t *testing.T) {
	client := setupTestClient(t)

	registerTaxaSearch("Nonexistus plantus", `{"results":[]}`)

	photos := client.FetchPhotos(context.Background(), "Nonexistus plantus")

	assert.Empty(t, photos.TaxonPhotos)
	assert.Empty(t, photos.ObservationPhotos)
	assert.Equal(t, 1, httpmock.GetTotalCallCount(), "no further calls after an empty taxon search")
}

func TestFetchPhotosPartialFailure(t *testing.T) {
	client := setupTestClient(t)

	registerTaxaSearch("Rosa rugosa", `{"results":[{"id":55}]}`)
	httpmock.RegisterResponder("GET", testBaseURL+"/taxa/55",
		httpmock.NewStringResponder(200,
			`{"results":[{"taxon_photos":[{"photo":{"medium_url":"https://photos.test/taxon-0/medium.jpg"}}]}]}`))

	// The observation search fails outright; the taxon pool survives.
	httpmock.RegisterResponderWithQuery("GET", testBaseURL+"/observations",
		url.Values{
			"taxon_name": []string{"Rosa rugosa"},
			"photos":     []string{"true"},
			"popular":    []string{"true"},
			"per_page":   []string{"30"},
			"order_by":   []string{"date_added"},
			"order":      []string{"desc"},
		},
		httpmock.NewStringResponder(500, `{"error":"server exploded"}`))

	photos := client.FetchPhotos(context.Background(), "Rosa rugosa")

	assert.Len(t, photos.TaxonPhotos, 1, "pools built before the failure are returned")
	assert.Empty(t, photos.ObservationPhotos)
}

func TestFetchPhotosTransportFailure(t *testing.T) {
	client := setupTestClient(t)
	// No responders registered: every call fails.

	photos := client.FetchPhotos(context.Background(), "Fagus sylvatica")

	assert.Empty(t, photos.TaxonPhotos)
	assert.Empty(t, photos.ObservationPhotos)
}

// The two pools must be disjoint after aggregation: observation photos that
// duplicate a taxon photo are dropped.
func TestFetchPhotosPoolsAreDisjoint(t *testing.T) {
	client := setupTestClient(t)

	registerTaxaSearch("Cornus alba", `{"results":[{"id":77}]}`)
	httpmock.RegisterResponder("GET", testBaseURL+"/taxa/77",
		httpmock.NewStringResponder(200,
			`{"results":[{"taxon_photos":[{"photo":{"medium_url":"https://photos.test/shared/medium.jpg"}}]}]}`))

	// The lone observation photo rewrites to the same URL as the taxon photo.
	body := `{"results":[` +
		`{"photos":[{"url":"https://photos.test/shared/square.jpg"}]},` +
		`{"photos":[{"url":"https://photos.test/unique/square.jpg"}]}` +
		`]}`
	registerObservations("Cornus alba", true, body)
	registerObservations("Cornus alba", false, body)

	photos := client.FetchPhotos(context.Background(), "Cornus alba")

	require.Len(t, photos.TaxonPhotos, 1)
	assert.Equal(t, []string{"https://photos.test/unique/medium.jpg"}, photos.ObservationPhotos)
	for _, obsURL := range photos.ObservationPhotos {
		assert.NotContains(t, photos.TaxonPhotos, obsURL)
	}
}

func TestMediumSizeURL(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"https://photos.test/1/square.jpg", "https://photos.test/1/medium.jpg"},
		{"https://photos.test/1/small.jpeg", "https://photos.test/1/medium.jpeg"},
		{"https://photos.test/1/thumb.png", "https://photos.test/1/medium.png"},
		{"https://photos.test/1/original.jpg", "https://photos.test/1/medium.jpg"},
		{"https://photos.test/1/large.JPG", "https://photos.test/1/medium.JPG"},
		{"https://photos.test/1/medium.jpg", "https://photos.test/1/medium.jpg"},
		{"https://photos.test/1/unrelated.jpg", "https://photos.test/1/unrelated.jpg"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, mediumSizeURL(tc.input))
	}
}
