package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aria-lang/popgen-go/internal/composition"
	"github.com/aria-lang/popgen-go/pkg/popgen"
)

// ClassifyRequest holds an ingroup and an outgroup column, either as
// nucleotide strings or as codon lists.
type ClassifyRequest struct {
	Pop       string   `json:"pop"`
	Out       string   `json:"out"`
	PopCodons []string `json:"pop_codons"`
	OutCodons []string `json:"out_codons"`
}

// ClassifyResponse reports the site class. Derived is the derived allele
// frequency in the ingroup when it is defined.
type ClassifyResponse struct {
	Type          string   `json:"type"`
	Polymorphisms int      `json:"polymorphisms"`
	Derived       *float64 `json:"derived,omitempty"`
	FixedPath     []string `json:"fixed_path,omitempty"`
}

// ClassifyHandler compares an ingroup column with an outgroup column.
func (a *API) ClassifyHandler(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if !decode(w, r, &req) {
		return
	}

	if len(req.PopCodons) > 0 || len(req.OutCodons) > 0 {
		a.classifyCodons(w, req)
		return
	}

	pop := composition.NewSite(req.Pop)
	out := composition.NewSite(req.Out)
	resp := ClassifyResponse{
		Type:          composition.Classify(pop, out).String(),
		Polymorphisms: pop.Polymorphisms(),
	}
	if f, ok := pop.DerivedFrequency(out); ok {
		resp.Derived = &f
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) classifyCodons(w http.ResponseWriter, req ClassifyRequest) {
	pop := composition.NewCodonSite(a.Table, composition.CodonOptions{})
	out := composition.NewCodonSite(a.Table, composition.CodonOptions{})
	for _, c := range req.PopCodons {
		pop.Add(strings.ToUpper(c))
	}
	for _, c := range req.OutCodons {
		out.Add(strings.ToUpper(c))
	}

	resp := ClassifyResponse{
		Type:          composition.ClassifyCodons(pop, out).String(),
		Polymorphisms: pop.Polymorphisms(),
	}
	if p, ok := composition.FixedPath(pop, out); ok && len(p.Steps) > 0 {
		resp.FixedPath = p.Codons
	}
	writeJSON(w, http.StatusOK, resp)
}

// DiversityRequest holds aligned sequences, or the columns of an alignment.
type DiversityRequest struct {
	Sequences       []string `json:"sequences"`
	Columns         []string `json:"columns"`
	SingletonCutoff float64  `json:"singleton_cutoff"`
	JukesCantor     bool     `json:"jukes_cantor"`
}

// DiversityResponse summarizes polymorphism. Undefined statistics are null.
type DiversityResponse struct {
	Sites         int      `json:"sites"`
	Polymorphisms int      `json:"polymorphisms"`
	Singletons    int      `json:"singletons"`
	Transitions   int      `json:"transitions"`
	Pi            *float64 `json:"pi"`
	Theta         *float64 `json:"theta"`
	TajimaD       *float64 `json:"tajima_d"`
	TajimaDPrime  *float64 `json:"tajima_d_prime"`
}

// DiversityHandler computes nucleotide diversity statistics.
func (a *API) DiversityHandler(w http.ResponseWriter, r *http.Request) {
	var req DiversityRequest
	if !decode(w, r, &req) {
		return
	}
	if req.SingletonCutoff < 0 || req.SingletonCutoff > 1 {
		writeError(w, http.StatusBadRequest, "singleton_cutoff must be within [0, 1]")
		return
	}

	columns := req.Columns
	if len(req.Sequences) > 0 {
		var err error
		if columns, err = transpose(req.Sequences); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if len(columns) == 0 {
		writeError(w, http.StatusBadRequest, "no sequences or columns")
		return
	}

	d := popgen.ColumnDiversity(columns, req.SingletonCutoff, req.JukesCantor)
	writeJSON(w, http.StatusOK, DiversityResponse{
		Sites:         d.Sites,
		Polymorphisms: d.Polymorphisms,
		Singletons:    d.Singletons,
		Transitions:   d.Transitions,
		Pi:            num(d.Pi),
		Theta:         num(d.Theta),
		TajimaD:       num(d.TajimaD),
		TajimaDPrime:  num(d.TajimaDPrime),
	})
}

var errRagged = errors.New("sequences differ in length")

func transpose(seqs []string) ([]string, error) {
	n := len(seqs[0])
	for _, s := range seqs[1:] {
		if len(s) != n {
			return nil, errRagged
		}
	}
	columns := make([]string, n)
	buf := make([]byte, len(seqs))
	for i := 0; i < n; i++ {
		for j, s := range seqs {
			buf[j] = s[i]
		}
		columns[i] = string(buf)
	}
	return columns, nil
}

// JukesCantorRequest holds a raw divergence.
type JukesCantorRequest struct {
	Divergence float64 `json:"divergence"`
}

// JukesCantorResponse is null when the correction is undefined.
type JukesCantorResponse struct {
	Corrected *float64 `json:"corrected"`
}

// JukesCantorHandler applies the Jukes-Cantor correction.
func (a *API) JukesCantorHandler(w http.ResponseWriter, r *http.Request) {
	var req JukesCantorRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, JukesCantorResponse{Corrected: num(popgen.JukesCantor(req.Divergence))})
}
