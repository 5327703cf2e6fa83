// Copyright 2026 The Adonde Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/jcodagnone/adonde/locations"
	"github.com/jcodagnone/adonde/spatial"
)

// Server is the HTTP surface over the routed search, the resolver and the
// saved address book. Requests are stateless: every suggest call merges
// against the current store, and resolving a suggestion rotates the shared
// session token like any other selection would.
type Server struct {
	router    *Router
	resolver  *Resolver
	store     *locations.Store
	persister *Persister
	tokens    *SessionTokens
	listen    string
}

// ServerOptions configures NewServer. Router and Store are required.
type ServerOptions struct {
	Router    *Router
	Store     *locations.Store
	Persister *Persister
	Tokens    *SessionTokens
	Listen    string
}

// NewServer creates the API server.
func NewServer(opts ServerOptions) *Server {
	tokens := opts.Tokens
	if tokens == nil {
		tokens = NewSessionTokens()
	}

	listen := opts.Listen
	if listen == "" {
		listen = "localhost:8080"
	}

	return &Server{
		router:    opts.Router,
		resolver:  NewResolver(opts.Router, tokens),
		store:     opts.Store,
		persister: opts.Persister,
		tokens:    tokens,
		listen:    listen,
	}
}

// Run serves the API until the listener fails.
func (s *Server) Run() error {
	return s.engine().Run(s.listen)
}

// engine wires the routes; split from Run so tests can drive the handlers
// without a listener.
func (s *Server) engine() *gin.Engine {
	r := gin.Default()

	r.GET("/api/suggest", s.suggest)
	r.POST("/api/resolve", s.resolve)
	r.GET("/api/locations", s.listLocations)
	r.POST("/api/locations", s.createLocation)
	r.DELETE("/api/locations/:id", s.deleteLocation)
	r.GET("/api/locations/nearby", s.nearbyLocations)

	return r
}

type suggestResponse struct {
	Query    string `json:"query"`
	Provider string `json:"provider,omitempty"`
	Items    []Item `json:"items"`
}

func (s *Server) suggest(ctx *gin.Context) {
	query := strings.TrimSpace(ctx.Query("q"))

	saved, err := s.store.List()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	var (
		provider    string
		suggestions []Suggestion
	)

	if utf8.RuneCountInString(query) >= s.router.MinQueryLength() {
		provider, suggestions = s.router.Search(ctx.Request.Context(), query, s.tokens.Current())
	}

	ctx.JSON(http.StatusOK, suggestResponse{
		Query:    query,
		Provider: provider,
		Items:    Merge(query, saved, suggestions),
	})
}

type resolveRequest struct {
	SavedID    int         `json:"saved_id,omitempty"`
	Suggestion *Suggestion `json:"suggestion,omitempty"`
	Raw        string      `json:"raw,omitempty"`
}

func (s *Server) resolve(ctx *gin.Context) {
	var req resolveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})

		return
	}

	switch {
	case req.SavedID > 0:
		loc, err := s.store.Repo().Get(req.SavedID)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

			return
		}

		if loc == nil {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "location not found"})

			return
		}

		// Saved rows are already canonical; nothing to persist.
		ctx.JSON(http.StatusOK, &Resolved{Address: loc.Address, Point: loc.Point, Provider: ProviderSaved})
	case req.Suggestion != nil:
		res := s.resolver.Resolve(ctx.Request.Context(), Item{Suggestion: req.Suggestion})
		if s.persister != nil {
			s.persister.Persist(res, req.Suggestion.ShortLabel)
		}

		ctx.JSON(http.StatusOK, res)
	case strings.TrimSpace(req.Raw) != "":
		res := &Resolved{Address: strings.TrimSpace(req.Raw), Provider: ProviderManual}
		if s.persister != nil {
			s.persister.Persist(res, "")
		}

		ctx.JSON(http.StatusOK, res)
	default:
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "one of saved_id, suggestion or raw is required"})
	}
}

func (s *Server) listLocations(ctx *gin.Context) {
	locs, err := s.store.List()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, locs)
}

func (s *Server) createLocation(ctx *gin.Context) {
	var loc locations.Location
	if err := ctx.ShouldBindJSON(&loc); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})

		return
	}

	loc.Name = locations.Sanitize(loc.Name)
	loc.Address = locations.Sanitize(loc.Address)

	if loc.Source == "" {
		loc.Source = "manual"
	}

	if err := locations.Validate(&loc); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if err := s.store.Save(&loc); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusCreated, &loc)
}

func (s *Server) deleteLocation(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id parameter"})

		return
	}

	if err := s.store.Delete(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "location not found"})

			return
		}

		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.Status(http.StatusNoContent)
}

func (s *Server) nearbyLocations(ctx *gin.Context) {
	lat, err := strconv.ParseFloat(ctx.Query("lat"), 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid lat parameter"})

		return
	}

	lng, err := strconv.ParseFloat(ctx.Query("lng"), 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid lng parameter"})

		return
	}

	point := &spatial.Point{Lat: lat, Lng: lng}
	if !point.Valid() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "coordinates out of range"})

		return
	}

	k := 1

	if kParam := ctx.Query("k"); kParam != "" {
		parsed, err := strconv.Atoi(kParam)
		if err != nil || parsed < 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid k parameter"})

			return
		}

		k = parsed
	}

	locs, err := s.store.Repo().Nearby(point, k)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, locs)
}
