package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aria-lang/popgen-go/internal/analysis"
	"github.com/aria-lang/popgen-go/internal/config"
	"github.com/aria-lang/popgen-go/internal/store"
	"github.com/aria-lang/popgen-go/pkg/popgen"
)

// AnalysisRequest carries aligned FASTA text and run settings. Field names
// follow the configuration file; the codon table is fixed by the server.
type AnalysisRequest struct {
	FASTA           string  `json:"fasta"`
	Gene            string  `json:"gene"`
	Ingroup         string  `json:"ingroup"`
	Outgroup        string  `json:"outgroup"`
	RegionType      string  `json:"region_type"`
	Coding          bool    `json:"coding"`
	JukesCantor     bool    `json:"jukes_cantor"`
	SingletonCutoff float64 `json:"singleton_cutoff"`
	IncludeTerminal bool    `json:"include_terminal"`
	ExcludeTerminal bool    `json:"exclude_terminal"`
	MinSamples      int     `json:"min_samples"`

	Save  bool   `json:"save"`
	Label string `json:"label"`
}

func (req AnalysisRequest) toConfig(workers int) config.Config {
	c := config.Default()
	c.Ingroup = req.Ingroup
	c.Outgroup = req.Outgroup
	c.RegionType = req.RegionType
	c.Coding = req.Coding
	c.JukesCantor = req.JukesCantor
	c.SingletonCutoff = req.SingletonCutoff
	c.IncludeTerminal = req.IncludeTerminal
	c.ExcludeTerminal = req.ExcludeTerminal
	if req.MinSamples != 0 {
		c.MinSamples = req.MinSamples
	}
	if workers > 0 {
		c.Workers = workers
	}
	return c
}

// CodingResponse holds the codon-level part of a result.
type CodingResponse struct {
	SynSites    *float64 `json:"syn_sites"`
	NonsynSites *float64 `json:"nonsyn_sites"`
	PiS         *float64 `json:"pi_s"`
	PiN         *float64 `json:"pi_n"`
	Ps          int      `json:"ps"`
	Pn          int      `json:"pn"`
	Ds          int      `json:"ds"`
	Dn          int      `json:"dn"`
	NI          *float64 `json:"ni"`
}

// ResultResponse is one gene's summary. Undefined statistics are null.
type ResultResponse struct {
	Gene           string          `json:"gene"`
	Ingroup        int             `json:"ingroup"`
	Outgroup       int             `json:"outgroup"`
	Length         int             `json:"length"`
	Sites          int             `json:"sites"`
	Polymorphisms  int             `json:"polymorphisms"`
	Singletons     int             `json:"singletons"`
	Transitions    int             `json:"transitions"`
	Pi             *float64        `json:"pi"`
	Theta          *float64        `json:"theta"`
	TajimaD        *float64        `json:"tajima_d"`
	TajimaDPrime   *float64        `json:"tajima_d_prime"`
	Divergence     *float64        `json:"divergence"`
	DivergentSites int             `json:"divergent_sites"`
	Derived        []int           `json:"derived"`
	Coding         *CodingResponse `json:"coding,omitempty"`
}

func toResponses(results []analysis.Result, coding bool) []ResultResponse {
	out := make([]ResultResponse, 0, len(results))
	for _, r := range results {
		rr := ResultResponse{
			Gene:           r.Gene,
			Ingroup:        r.Ingroup,
			Outgroup:       r.Outgroup,
			Length:         r.Length,
			Sites:          r.Sites,
			Polymorphisms:  r.Polymorphisms,
			Singletons:     r.Singletons,
			Transitions:    r.Transitions,
			Pi:             num(r.Pi),
			Theta:          num(r.Theta),
			TajimaD:        num(r.TajimaD),
			TajimaDPrime:   num(r.TajimaDPrime),
			Divergence:     num(r.Divergence),
			DivergentSites: r.DivergentSites,
			Derived:        append([]int(nil), r.Derived[:]...),
		}
		if coding {
			rr.Coding = &CodingResponse{
				SynSites:    num(r.SynSites),
				NonsynSites: num(r.NonsynSites),
				PiS:         num(r.PiS),
				PiN:         num(r.PiN),
				Ps:          r.Ps,
				Pn:          r.Pn,
				Ds:          r.Ds,
				Dn:          r.Dn,
				NI:          num(r.NI),
			}
		}
		out = append(out, rr)
	}
	return out
}

// AnalysisResponse lists the analyzed genes. RunID is set when the run
// was saved.
type AnalysisResponse struct {
	RunID   int64            `json:"run_id,omitempty"`
	Genes   int              `json:"genes"`
	Skipped int              `json:"skipped"`
	Results []ResultResponse `json:"results"`
}

// AnalysisHandler runs the per-gene analysis over an uploaded alignment.
func (a *API) AnalysisHandler(w http.ResponseWriter, r *http.Request) {
	var req AnalysisRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Save && a.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "no run store configured")
		return
	}

	c := req.toConfig(a.Workers)
	if err := c.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts, err := analysis.OptionsFromConfig(c)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts.Table = a.Table

	gene := req.Gene
	if gene == "" {
		gene = "gene"
	}
	d, err := popgen.ParseFASTA(strings.NewReader(req.FASTA), gene)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := popgen.Analyze(r.Context(), d, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if a.Recorder != nil {
		a.Recorder.GenesAnalyzed(len(results), d.Len()-len(results))
	}

	resp := AnalysisResponse{
		Genes:   len(results),
		Skipped: d.Len() - len(results),
		Results: toResponses(results, c.Coding),
	}
	if req.Save {
		id, err := a.Store.SaveRun(r.Context(), req.Label, c.Coding, results)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp.RunID = id
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListRunsHandler lists stored runs, newest first.
func (a *API) ListRunsHandler(w http.ResponseWriter, r *http.Request) {
	if a.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "no run store configured")
		return
	}
	runs, err := a.Store.Runs(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (a *API) runID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	if a.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "no run store configured")
		return 0, false
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return 0, false
	}
	return id, true
}

func storeStatus(err error) int {
	if errors.Is(err, store.ErrRunNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// RunResponse is a stored run with its results.
type RunResponse struct {
	Run     store.Run        `json:"run"`
	Results []ResultResponse `json:"results"`
}

// GetRunHandler returns a stored run, as JSON or, with ?format=tsv, as
// the tab-separated report.
func (a *API) GetRunHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := a.runID(w, r)
	if !ok {
		return
	}
	run, err := a.Store.Run(r.Context(), id)
	if err != nil {
		writeError(w, storeStatus(err), err.Error())
		return
	}
	results, err := a.Store.Results(r.Context(), id)
	if err != nil {
		writeError(w, storeStatus(err), err.Error())
		return
	}

	if r.URL.Query().Get("format") == "tsv" {
		w.Header().Set("Content-Type", "text/tab-separated-values")
		if err := popgen.WriteTSV(w, results, run.Coding); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, RunResponse{Run: run, Results: toResponses(results, run.Coding)})
}

// DeleteRunHandler removes a stored run.
func (a *API) DeleteRunHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := a.runID(w, r)
	if !ok {
		return
	}
	if err := a.Store.DeleteRun(r.Context(), id); err != nil {
		writeError(w, storeStatus(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
