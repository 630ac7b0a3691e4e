package preprocessing

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lighting-plan-server/models"
)

const DefaultOverpassURL = "https://z.overpass-api.de/api/interpreter"

type OverpassClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewOverpassClient(baseURL string) *OverpassClient {
	if baseURL == "" {
		baseURL = DefaultOverpassURL
	}
	return &OverpassClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchRoads queries Overpass for the ways inside boundary and clips them.
func (oc *OverpassClient) FetchRoads(ctx context.Context, boundary []models.Coordinate) ([]models.Road, error) {
	if len(boundary) < 3 {
		return nil, fmt.Errorf("boundary needs at least 3 points, got %d", len(boundary))
	}
	form := url.Values{"data": {OverpassQuery(boundary)}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, oc.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := oc.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call Overpass API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Overpass API returned status %d", resp.StatusCode)
	}

	roads, err := ParseOverpass(resp.Body, boundary)
	if err != nil {
		return nil, err
	}
	log.Printf("Fetched %d roads from Overpass", len(roads))
	return roads, nil
}
