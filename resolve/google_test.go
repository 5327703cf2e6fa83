// Copyright 2026 The Adonde Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGooglePlacesSuggest(t *testing.T) {
	var gotMethod, gotPath, gotKey, gotContentType string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Goog-Api-Key")
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"suggestions": [
				{
					"placePrediction": {
						"placeId": "ChIJd8BlQ2Bx54kR",
						"text": {"text": "José Ellauri 468, Montevideo, Uruguay"},
						"structuredFormat": {
							"mainText": {"text": "José Ellauri 468"},
							"secondaryText": {"text": "Montevideo, Uruguay"}
						}
					}
				},
				{
					"placePrediction": {
						"placeId": "",
						"text": {"text": ""}
					}
				}
			]
		}`)
	}))
	defer srv.Close()

	g := NewGooglePlaces(GooglePlacesOptions{
		APIKey:       "test-key",
		BaseURL:      srv.URL,
		Language:     "es",
		CountryCodes: []string{"uy"},
	})

	suggestions, err := g.Suggest(context.Background(), "jose ellauri", "tok-1")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/places:autocomplete", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "jose ellauri", gotBody["input"])
	assert.Equal(t, "tok-1", gotBody["sessionToken"])
	assert.Equal(t, "es", gotBody["languageCode"])
	assert.Equal(t, []any{"uy"}, gotBody["includedRegionCodes"])

	// The empty prediction is dropped.
	require.Len(t, suggestions, 1)
	s := suggestions[0]
	assert.Equal(t, "ChIJd8BlQ2Bx54kR", s.ID)
	assert.Equal(t, "José Ellauri 468, Montevideo, Uruguay", s.DisplayName)
	assert.Equal(t, "José Ellauri 468", s.ShortLabel)
	assert.Equal(t, "Montevideo, Uruguay", s.SecondaryText)
	assert.Equal(t, ProviderGoogle, s.Provider)
	assert.Nil(t, s.Point)
}

func TestGooglePlacesUnavailableWithoutKey(t *testing.T) {
	g := NewGooglePlaces(GooglePlacesOptions{})

	assert.False(t, g.Available())

	_, err := g.Suggest(context.Background(), "anything", "")
	require.Error(t, err)
	assert.True(t, IsUnavailableError(err))
}

func TestGooglePlacesSuggestRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGooglePlaces(GooglePlacesOptions{APIKey: "test-key", BaseURL: srv.URL})

	_, err := g.Suggest(context.Background(), "av italia", "")
	require.Error(t, err)
	assert.True(t, IsRateLimitError(err))
}

func TestGooglePlacesSuggestServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := NewGooglePlaces(GooglePlacesOptions{APIKey: "test-key", BaseURL: srv.URL})

	_, err := g.Suggest(context.Background(), "av italia", "")
	require.Error(t, err)
	assert.True(t, IsUnavailableError(err))
}

func TestGooglePlacesSuggestMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `<html>not json</html>`)
	}))
	defer srv.Close()

	g := NewGooglePlaces(GooglePlacesOptions{APIKey: "test-key", BaseURL: srv.URL})

	_, err := g.Suggest(context.Background(), "av italia", "")
	require.Error(t, err)
	assert.True(t, IsMalformedResponseError(err))
}

func TestGooglePlacesResolveDetail(t *testing.T) {
	var gotPath, gotToken, gotMask string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.URL.Query().Get("sessionToken")
		gotMask = r.Header.Get("X-Goog-FieldMask")

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "ChIJd8BlQ2Bx54kR",
			"formattedAddress": "José Ellauri 468, 11300 Montevideo, Uruguay",
			"displayName": {"text": "José Ellauri 468"},
			"location": {"latitude": -34.9211, "longitude": -56.1560}
		}`)
	}))
	defer srv.Close()

	g := NewGooglePlaces(GooglePlacesOptions{APIKey: "test-key", BaseURL: srv.URL})

	res, err := g.ResolveDetail(context.Background(), "ChIJd8BlQ2Bx54kR", "tok-7")
	require.NoError(t, err)

	assert.Equal(t, "/places/ChIJd8BlQ2Bx54kR", gotPath)
	assert.Equal(t, "tok-7", gotToken)
	assert.Equal(t, "id,formattedAddress,displayName,location", gotMask)

	assert.Equal(t, "José Ellauri 468, 11300 Montevideo, Uruguay", res.Address)
	assert.Equal(t, ProviderGoogle, res.Provider)
	require.NotNil(t, res.Point)
	assert.InDelta(t, -34.9211, res.Point.Lat, 0.0001)
	assert.InDelta(t, -56.1560, res.Point.Lng, 0.0001)
}

func TestGooglePlacesResolveDetailFallsBackToDisplayName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"displayName": {"text": "Estadio Centenario"}}`)
	}))
	defer srv.Close()

	g := NewGooglePlaces(GooglePlacesOptions{APIKey: "test-key", BaseURL: srv.URL})

	res, err := g.ResolveDetail(context.Background(), "some-id", "")
	require.NoError(t, err)
	assert.Equal(t, "Estadio Centenario", res.Address)
	assert.Nil(t, res.Point)
}

func TestGooglePlacesResolveDetailWithoutAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	g := NewGooglePlaces(GooglePlacesOptions{APIKey: "test-key", BaseURL: srv.URL})

	_, err := g.ResolveDetail(context.Background(), "some-id", "")
	require.Error(t, err)
	assert.True(t, IsMalformedResponseError(err))
}
