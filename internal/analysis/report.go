package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// NA stands in for undefined values in delimited output.
const NA = "NA"

var baseColumns = []string{
	"gene", "ingroup", "outgroup", "length", "sites", "S", "singletons",
	"transitions", "pi", "theta", "tajima_d", "tajima_d_prime", "k", "fixed",
}

var codingColumns = []string{
	"syn_sites", "nonsyn_sites", "pi_s", "pi_n", "Ps", "Pn", "Ds", "Dn", "NI",
}

// Header returns the column names written by WriteTSV.
func Header(coding bool) []string {
	h := append([]string(nil), baseColumns...)
	for i := 0; i < DerivedBins; i++ {
		h = append(h, fmt.Sprintf("daf_%d", i))
	}
	if coding {
		h = append(h, codingColumns...)
	}
	return h
}

// FormatFloat renders a statistic for the report: NA when undefined,
// six decimals otherwise.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return NA
	}
	if math.IsInf(v, 0) {
		if v > 0 {
			return "Inf"
		}
		return "-Inf"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// Row formats one result in Header order.
func (r Result) Row(coding bool) []string {
	row := []string{
		r.Gene,
		strconv.Itoa(r.Ingroup),
		strconv.Itoa(r.Outgroup),
		strconv.Itoa(r.Length),
		strconv.Itoa(r.Sites),
		strconv.Itoa(r.Polymorphisms),
		strconv.Itoa(r.Singletons),
		strconv.Itoa(r.Transitions),
		FormatFloat(r.Pi),
		FormatFloat(r.Theta),
		FormatFloat(r.TajimaD),
		FormatFloat(r.TajimaDPrime),
		FormatFloat(r.Divergence),
		strconv.Itoa(r.DivergentSites),
	}
	for _, n := range r.Derived {
		row = append(row, strconv.Itoa(n))
	}
	if coding {
		row = append(row,
			FormatFloat(r.SynSites),
			FormatFloat(r.NonsynSites),
			FormatFloat(r.PiS),
			FormatFloat(r.PiN),
			strconv.Itoa(r.Ps),
			strconv.Itoa(r.Pn),
			strconv.Itoa(r.Ds),
			strconv.Itoa(r.Dn),
			FormatFloat(r.NI),
		)
	}
	return row
}

// WriteTSV writes results as tab-separated text with a header line.
func WriteTSV(w io.Writer, results []Result, coding bool) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write(Header(coding)); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range results {
		if err := cw.Write(r.Row(coding)); err != nil {
			return fmt.Errorf("writing %s: %w", r.Gene, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatTSV returns WriteTSV's output as a string.
func FormatTSV(results []Result, coding bool) string {
	var sb strings.Builder
	_ = WriteTSV(&sb, results, coding)
	return sb.String()
}
