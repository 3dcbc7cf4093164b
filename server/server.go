// Package server exposes shot analysis over HTTP as JSON, backed by the
// SQLite shot store.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brensch/shottree/analysis"
	"github.com/brensch/shottree/decisiontree"
	"github.com/brensch/shottree/shotlog/db"
	"github.com/brensch/shottree/taxonomy"
)

// Server holds shared state for HTTP handlers.
type Server struct {
	store    *db.DB
	pipeline *analysis.Pipeline
	registry *prometheus.Registry
	logger   *slog.Logger
}

// New creates a Server. registry may be nil, in which case /metrics is not
// served.
func New(store *db.DB, pipeline *analysis.Pipeline, registry *prometheus.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{store: store, pipeline: pipeline, registry: registry, logger: logger}
}

// RegisterRoutes sets up all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/players", s.handlePlayers)
	mux.HandleFunc("/api/report", s.handleReport)
	if s.registry != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
}

// Handler returns a mux with every route registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return mux
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	withCORS(w)
	if r.Method == http.MethodOptions {
		return false
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	players, err := s.store.Players(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	start, end := page(len(players), parseIntQuery(r, "limit", 0), parseIntQuery(r, "offset", 0))
	resp := PlayersResponse{Total: int64(len(players)), Players: make([]PlayerSummary, 0, end-start)}
	for _, p := range players[start:end] {
		resp.Players = append(resp.Players, PlayerSummary{Name: p.Name, ID: p.ID, Shots: p.Shots})
	}
	writeJSON(w, resp)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	player := strings.TrimSpace(r.URL.Query().Get("player"))
	if player == "" {
		http.Error(w, "player is required", http.StatusBadRequest)
		return
	}

	res, err := s.pipeline.Run(r.Context(), player, s.store.ShotsForPlayer(player))
	if err != nil {
		if errors.Is(err, analysis.ErrNoSubject) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.logger.Error("report failed", "player", player, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if res.Ingested == 0 {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, s.reportResponse(res))
}

func (s *Server) reportResponse(res *analysis.Result) ReportResponse {
	tax := s.pipeline.Taxonomy
	if tax == nil {
		tax = taxonomy.Default()
	}
	pairs := res.Tree.LeafPairs()
	out := ReportResponse{
		RunID:        res.RunID.String(),
		Subject:      res.Subject,
		Ingested:     res.Ingested,
		Dropped:      res.Dropped,
		Unclassified: res.Unclassified,
		Best:         leafPair(res.Best, tax),
		Worst:        leafPair(res.Worst, tax),
		LeafPairs:    make([]LeafPair, 0, len(pairs)),
	}
	for _, lp := range pairs {
		out.LeafPairs = append(out.LeafPairs, leafPair(lp, tax))
	}
	return out
}

func leafPair(p decisiontree.PathRatio, tax *taxonomy.Taxonomy) LeafPair {
	path := make([]string, len(p.Path))
	for i, v := range p.Path {
		path[i] = v.String()
	}
	return LeafPair{
		Path:        path,
		Description: tax.Describe(p.Path),
		Made:        p.Made,
		Missed:      p.Missed,
		Percent:     p.Percent(),
	}
}
