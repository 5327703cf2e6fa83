// Copyright 2026 The Adonde Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jcodagnone/adonde/spatial"
)

// DefaultGoogleBaseURL is the production Places API (New) endpoint.
const DefaultGoogleBaseURL = "https://places.googleapis.com/v1"

const googleDetailFieldMask = "id,formattedAddress,displayName,location"

// GooglePlaces is the credentialed autocomplete provider. Suggestions carry a
// place ID that ResolveDetail exchanges for the formatted address, both calls
// sharing the picker's session token.
type GooglePlaces struct {
	apiKey         string
	baseURL        string
	language       string
	regionCodes    []string
	minQueryLength int
	httpClient     *http.Client
}

// GooglePlacesOptions configures NewGooglePlaces. Zero values fall back to
// production defaults.
type GooglePlacesOptions struct {
	APIKey         string
	BaseURL        string
	Language       string
	CountryCodes   []string
	MinQueryLength int
	HTTPClient     *http.Client
}

// NewGooglePlaces creates a Places provider. An empty APIKey yields a
// provider that reports itself unavailable, which the router skips.
func NewGooglePlaces(opts GooglePlacesOptions) *GooglePlaces {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultGoogleBaseURL
	}

	minLen := opts.MinQueryLength
	if minLen <= 0 {
		minLen = 2
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 10 * time.Second,
		}
	}

	return &GooglePlaces{
		apiKey:         opts.APIKey,
		baseURL:        baseURL,
		language:       opts.Language,
		regionCodes:    opts.CountryCodes,
		minQueryLength: minLen,
		httpClient:     httpClient,
	}
}

// Name implements Provider.
func (g *GooglePlaces) Name() string { return ProviderGoogle }

// Available implements Provider.
func (g *GooglePlaces) Available() bool { return g.apiKey != "" }

// MinQueryLength implements Provider.
func (g *GooglePlaces) MinQueryLength() int { return g.minQueryLength }

type googleAutocompleteResponse struct {
	Suggestions []struct {
		PlacePrediction struct {
			PlaceID string `json:"placeId"`
			Text    struct {
				Text string `json:"text"`
			} `json:"text"`
			StructuredFormat struct {
				MainText struct {
					Text string `json:"text"`
				} `json:"mainText"`
				SecondaryText struct {
					Text string `json:"text"`
				} `json:"secondaryText"`
			} `json:"structuredFormat"`
		} `json:"placePrediction"`
	} `json:"suggestions"`
}

// Suggest implements Provider against POST /places:autocomplete.
func (g *GooglePlaces) Suggest(ctx context.Context, query, sessionToken string) ([]Suggestion, error) {
	if !g.Available() {
		return nil, &Error{Kind: ErrorKindUnavailable, Provider: ProviderGoogle, Message: "no API key configured"}
	}

	reqBody := struct {
		Input               string   `json:"input"`
		SessionToken        string   `json:"sessionToken,omitempty"`
		LanguageCode        string   `json:"languageCode,omitempty"`
		IncludedRegionCodes []string `json:"includedRegionCodes,omitempty"`
	}{
		Input:               query,
		SessionToken:        sessionToken,
		LanguageCode:        g.language,
		IncludedRegionCodes: g.regionCodes,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling autocomplete request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/places:autocomplete", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building autocomplete request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: ErrorKindNetwork, Provider: ProviderGoogle, Message: "autocomplete request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPStatus(ProviderGoogle, resp.StatusCode)
	}

	var acResp googleAutocompleteResponse
	if err := json.NewDecoder(resp.Body).Decode(&acResp); err != nil {
		return nil, &Error{Kind: ErrorKindMalformedResponse, Provider: ProviderGoogle, Message: "decoding autocomplete response", Err: err}
	}

	suggestions := make([]Suggestion, 0, len(acResp.Suggestions))

	for _, s := range acResp.Suggestions {
		p := s.PlacePrediction
		if p.Text.Text == "" {
			// Query predictions and other non-place entries
			continue
		}

		suggestions = append(suggestions, Suggestion{
			ID:            p.PlaceID,
			DisplayName:   p.Text.Text,
			ShortLabel:    p.StructuredFormat.MainText.Text,
			SecondaryText: p.StructuredFormat.SecondaryText.Text,
			Provider:      ProviderGoogle,
		})
	}

	return suggestions, nil
}

type googlePlaceResponse struct {
	FormattedAddress string `json:"formattedAddress"`
	DisplayName      struct {
		Text string `json:"text"`
	} `json:"displayName"`
	Location *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
}

// ResolveDetail implements DetailProvider against GET /places/{id}.
func (g *GooglePlaces) ResolveDetail(ctx context.Context, id, sessionToken string) (*Resolved, error) {
	if !g.Available() {
		return nil, &Error{Kind: ErrorKindUnavailable, Provider: ProviderGoogle, Message: "no API key configured"}
	}

	reqURL := g.baseURL + "/places/" + url.PathEscape(id)
	if sessionToken != "" {
		reqURL += "?sessionToken=" + url.QueryEscape(sessionToken)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building place detail request: %w", err)
	}

	req.Header.Set("X-Goog-Api-Key", g.apiKey)
	req.Header.Set("X-Goog-FieldMask", googleDetailFieldMask)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: ErrorKindNetwork, Provider: ProviderGoogle, Message: "place detail request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPStatus(ProviderGoogle, resp.StatusCode)
	}

	var place googlePlaceResponse
	if err := json.NewDecoder(resp.Body).Decode(&place); err != nil {
		return nil, &Error{Kind: ErrorKindMalformedResponse, Provider: ProviderGoogle, Message: "decoding place detail response", Err: err}
	}

	address := place.FormattedAddress
	if address == "" {
		address = place.DisplayName.Text
	}

	if address == "" {
		return nil, &Error{Kind: ErrorKindMalformedResponse, Provider: ProviderGoogle, Message: "place detail without address"}
	}

	resolved := &Resolved{
		Address:  address,
		Provider: ProviderGoogle,
	}

	if place.Location != nil {
		resolved.Point = &spatial.Point{
			Lat: place.Location.Latitude,
			Lng: place.Location.Longitude,
		}
	}

	return resolved, nil
}
