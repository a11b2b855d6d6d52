package handlers

import (
	"net/http"
	"strings"

	"github.com/aria-lang/popgen-go/internal/codon"
	"github.com/aria-lang/popgen-go/pkg/popgen"
)

// CodonRequest names one codon.
type CodonRequest struct {
	Codon           string `json:"codon"`
	IncludeTerminal bool   `json:"include_terminal"`
}

// CodonInfoHandler describes a codon under the server's table.
func (a *API) CodonInfoHandler(w http.ResponseWriter, r *http.Request) {
	var req CodonRequest
	if !decode(w, r, &req) {
		return
	}

	report, err := popgen.DescribeCodon(a.Table, strings.ToUpper(req.Codon),
		popgen.SiteOptions{IncludeTerminal: req.IncludeTerminal})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// PathRequest asks for the mutational path between two codons.
type PathRequest struct {
	From          string `json:"from"`
	To            string `json:"to"`
	AllowTerminal bool   `json:"allow_terminal"`
}

// StepResponse is one edit on a path.
type StepResponse struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Position   int    `json:"position"`
	Synonymous bool   `json:"synonymous"`
	Pair       string `json:"pair"`
	Transition bool   `json:"transition"`
}

// PathResponse is a reconstructed path. Found is false when every
// ordering passes through a stop codon.
type PathResponse struct {
	From          string         `json:"from"`
	To            string         `json:"to"`
	Found         bool           `json:"found"`
	Codons        []string       `json:"codons"`
	Steps         []StepResponse `json:"steps"`
	Synonymous    int            `json:"synonymous"`
	Nonsynonymous int            `json:"nonsynonymous"`
}

// CodonPathHandler reconstructs the path between two codons.
func (a *API) CodonPathHandler(w http.ResponseWriter, r *http.Request) {
	var req PathRequest
	if !decode(w, r, &req) {
		return
	}

	from, to := strings.ToUpper(req.From), strings.ToUpper(req.To)
	for _, c := range []string{from, to} {
		if !codon.IsValid(c) {
			writeError(w, http.StatusBadRequest, (&codon.InvalidCodonError{Codon: c}).Error())
			return
		}
	}

	p, ok := popgen.FindPath(a.Table, from, to, popgen.PathOptions{AllowTerminal: req.AllowTerminal})
	resp := PathResponse{From: from, To: to, Found: ok, Codons: []string{}, Steps: []StepResponse{}}
	if ok {
		resp.Codons = p.Codons
		for _, s := range p.Steps {
			resp.Steps = append(resp.Steps, StepResponse{
				From:       s.From,
				To:         s.To,
				Position:   s.Position,
				Synonymous: s.Synonymous,
				Pair:       s.Pair.String(),
				Transition: s.Pair.IsTransition(),
			})
		}
		resp.Synonymous = p.Synonymous()
		resp.Nonsynonymous = p.Nonsynonymous()
	}
	writeJSON(w, http.StatusOK, resp)
}

// SequenceRequest represents a request with a sequence.
type SequenceRequest struct {
	Sequence string `json:"sequence"`
}

// TranslateResponse is a one-letter protein.
type TranslateResponse struct {
	Protein string `json:"protein"`
	Table   string `json:"table"`
}

// TranslateHandler translates a codon-aligned sequence.
func (a *API) TranslateHandler(w http.ResponseWriter, r *http.Request) {
	var req SequenceRequest
	if !decode(w, r, &req) {
		return
	}

	writeJSON(w, http.StatusOK, TranslateResponse{
		Protein: popgen.Translate(a.Table, strings.ToUpper(req.Sequence)),
		Table:   a.Table.Name(),
	})
}
