// Copyright 2026 The Adonde Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jcodagnone/adonde/spatial"
	"golang.org/x/time/rate"
)

// DefaultNominatimBaseURL is the public OSM Nominatim instance.
const DefaultNominatimBaseURL = "https://nominatim.openstreetmap.org"

// Nominatim is the free fallback provider. It has no detail endpoint; the
// display name it returns is already the canonical address. The public
// instance's usage policy caps clients at one request per second and
// requires an identifying User-Agent, so every request goes through a rate
// limiter and carries the configured agent.
type Nominatim struct {
	baseURL        string
	userAgent      string
	language       string
	countryCodes   []string
	maxResults     int
	minQueryLength int
	limiter        *rate.Limiter
	httpClient     *http.Client
}

// NominatimOptions configures NewNominatim. Zero values fall back to the
// public instance defaults.
type NominatimOptions struct {
	BaseURL        string
	UserAgent      string
	Language       string
	CountryCodes   []string
	MaxResults     int
	MinQueryLength int
	RatePerSecond  float64
	HTTPClient     *http.Client
}

// NewNominatim creates a Nominatim provider.
func NewNominatim(opts NominatimOptions) *Nominatim {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultNominatimBaseURL
	}

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}

	minLen := opts.MinQueryLength
	if minLen <= 0 {
		minLen = 3
	}

	perSecond := opts.RatePerSecond
	if perSecond <= 0 {
		perSecond = 1
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 10 * time.Second,
		}
	}

	return &Nominatim{
		baseURL:        baseURL,
		userAgent:      opts.UserAgent,
		language:       opts.Language,
		countryCodes:   opts.CountryCodes,
		maxResults:     maxResults,
		minQueryLength: minLen,
		limiter:        rate.NewLimiter(rate.Limit(perSecond), 1),
		httpClient:     httpClient,
	}
}

// Name implements Provider.
func (n *Nominatim) Name() string { return ProviderNominatim }

// Available implements Provider. Nominatim needs no credential.
func (n *Nominatim) Available() bool { return true }

// MinQueryLength implements Provider.
func (n *Nominatim) MinQueryLength() int { return n.minQueryLength }

type nominatimResult struct {
	PlaceID     int64  `json:"place_id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Suggest implements Provider against GET /search. The session token is
// ignored, Nominatim has no session accounting.
func (n *Nominatim) Suggest(ctx context.Context, query, _ string) ([]Suggestion, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, &Error{Kind: ErrorKindNetwork, Provider: ProviderNominatim, Message: "waiting for rate limiter", Err: err}
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("limit", strconv.Itoa(n.maxResults))
	params.Set("addressdetails", "1")

	if len(n.countryCodes) > 0 {
		params.Set("countrycodes", strings.Join(n.countryCodes, ","))
	}

	if n.language != "" {
		params.Set("accept-language", n.language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}

	if n.userAgent != "" {
		req.Header.Set("User-Agent", n.userAgent)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: ErrorKindNetwork, Provider: ProviderNominatim, Message: "search request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPStatus(ProviderNominatim, resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, &Error{Kind: ErrorKindMalformedResponse, Provider: ProviderNominatim, Message: "decoding search response", Err: err}
	}

	suggestions := make([]Suggestion, 0, len(results))

	for _, r := range results {
		if r.DisplayName == "" {
			continue
		}

		s := Suggestion{
			DisplayName: r.DisplayName,
			ShortLabel:  r.Name,
			Provider:    ProviderNominatim,
		}

		if r.PlaceID != 0 {
			s.ID = strconv.FormatInt(r.PlaceID, 10)
		}

		// Coordinates arrive as strings; a result without usable ones is
		// still a valid suggestion.
		lat, latErr := strconv.ParseFloat(r.Lat, 64)

		lng, lngErr := strconv.ParseFloat(r.Lon, 64)
		if latErr == nil && lngErr == nil {
			s.Point = &spatial.Point{Lat: lat, Lng: lng}
		}

		suggestions = append(suggestions, s)
	}

	return suggestions, nil
}
