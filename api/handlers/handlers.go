// Package handlers provides HTTP handlers for the popgen API.
package handlers

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aria-lang/popgen-go/internal/codon"
	"github.com/aria-lang/popgen-go/internal/store"
)

// MaxBodyBytes bounds request bodies. FASTA uploads dominate.
const MaxBodyBytes = 64 << 20

// Recorder receives analysis outcomes, typically for metrics.
type Recorder interface {
	GenesAnalyzed(analyzed, skipped int)
}

// API holds what the handlers share. Store and Recorder may be nil; the
// run endpoints answer 503 without a store.
type API struct {
	Table    codon.Table
	Store    *store.Store
	Recorder Recorder
	Workers  int
}

// New returns an API over table, the universal code if nil.
func New(table codon.Table, st *store.Store) *API {
	if table == nil {
		table = codon.Universal()
	}
	return &API{Table: table, Store: st, Workers: 1}
}

// Routes returns the API router, to be mounted under /api.
func (a *API) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/codon", func(r chi.Router) {
		r.Post("/info", a.CodonInfoHandler)
		r.Post("/path", a.CodonPathHandler)
		r.Post("/translate", a.TranslateHandler)
	})

	r.Route("/sites", func(r chi.Router) {
		r.Post("/classify", a.ClassifyHandler)
	})

	r.Route("/stats", func(r chi.Router) {
		r.Post("/diversity", a.DiversityHandler)
		r.Post("/jukes-cantor", a.JukesCantorHandler)
	})

	r.Post("/analysis", a.AnalysisHandler)

	r.Route("/runs", func(r chi.Router) {
		r.Get("/", a.ListRunsHandler)
		r.Get("/{id}", a.GetRunHandler)
		r.Delete("/{id}", a.DeleteRunHandler)
	})

	return r
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// num maps non-finite values to JSON null.
func num(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
