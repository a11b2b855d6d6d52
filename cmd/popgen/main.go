// Command popgen provides a CLI for population-genetic analysis of aligned
// gene sequences.
//
// Usage:
//
//	popgen [command] [options]
//
// Commands:
//
//	codon       Describe a codon under a genetic code
//	path        Reconstruct the mutational path between two codons
//	translate   Translate a codon-aligned sequence
//	diversity   Polymorphism statistics per gene of a FASTA file
//	analyze     Per-gene analysis against an outgroup
//	table       Export or check a genetic code file
//	runs        List, show or delete stored runs
//	version     Show version information
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"github.com/aria-lang/popgen-go/internal/analysis"
	"github.com/aria-lang/popgen-go/internal/codon"
	"github.com/aria-lang/popgen-go/internal/config"
	"github.com/aria-lang/popgen-go/internal/store"
	"github.com/aria-lang/popgen-go/pkg/popgen"
)

var (
	heading = color.New(color.FgCyan, color.Bold)
	errText = color.New(color.FgRed, color.Bold)
	synText = color.New(color.FgGreen)
	nonText = color.New(color.FgYellow)
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "codon":
		codonCmd(os.Args[2:])
	case "path":
		pathCmd(os.Args[2:])
	case "translate":
		translateCmd(os.Args[2:])
	case "diversity":
		diversityCmd(os.Args[2:])
	case "analyze":
		analyzeCmd(os.Args[2:])
	case "table":
		tableCmd(os.Args[2:])
	case "runs":
		runsCmd(os.Args[2:])
	case "version":
		fmt.Println(popgen.Info())
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`popgen - Population Genetics Toolkit

Usage:
  popgen <command> [options]

Commands:
  codon      Describe a codon under a genetic code
  path       Reconstruct the mutational path between two codons
  translate  Translate a codon-aligned sequence
  diversity  Polymorphism statistics per gene of a FASTA file
  analyze    Per-gene analysis against an outgroup
  table      Export or check a genetic code file
  runs       List, show or delete stored runs
  version    Show version information
  help       Show this help message

Use "popgen <command> -h" for more information about a command.`)
}

func fatalf(format string, args ...any) {
	errText.Fprint(os.Stderr, "Error: ")
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// newFlagSet adds the flags every command shares.
func newFlagSet(name string) (*flag.FlagSet, *bool) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	noColor := fs.Bool("no-color", false, "Disable colored output")
	return fs, noColor
}

func parse(fs *flag.FlagSet, noColor *bool, args []string) {
	fs.Parse(args)
	if *noColor {
		color.NoColor = true
	}
}

func loadTable(path string) popgen.CodonTable {
	if path == "" {
		return popgen.UniversalTable()
	}
	t, err := popgen.LoadCodonTable(path)
	if err != nil {
		fatalf("loading codon table: %v", err)
	}
	return t
}

func codonCmd(args []string) {
	fs, noColor := newFlagSet("codon")
	triplet := fs.String("codon", "", "Codon to describe")
	table := fs.String("table", "", "Genetic code file (YAML or JSON)")
	terminal := fs.Bool("include-terminal", false, "Count changes to stop codons as nonsynonymous sites")
	parse(fs, noColor, args)

	if *triplet == "" {
		fmt.Fprintln(os.Stderr, "Error: -codon is required")
		fs.Usage()
		os.Exit(1)
	}

	t := loadTable(*table)
	r, err := popgen.DescribeCodon(t, strings.ToUpper(*triplet), popgen.SiteOptions{IncludeTerminal: *terminal})
	if err != nil {
		fatalf("%v", err)
	}

	heading.Printf("Codon %s (%s)\n", r.Codon, t.Name())
	fmt.Printf("  Amino acid: %s (%s, %s)\n", r.AminoAcid, r.Abbrev, r.Letter)
	fmt.Printf("  Stop: %v  Start: %v\n", r.Terminal, r.Start)
	fmt.Printf("  Fold: %d\n", r.Fold)
	fmt.Printf("  Synonymous sites: %.4f\n", r.SynSites)
	fmt.Printf("  Nonsynonymous sites: %.4f\n", r.NonSites)
	fmt.Printf("  Neighbors: %s\n", strings.Join(r.Neighbors, " "))
}

func pathCmd(args []string) {
	fs, noColor := newFlagSet("path")
	from := fs.String("from", "", "Starting codon")
	to := fs.String("to", "", "Target codon")
	table := fs.String("table", "", "Genetic code file (YAML or JSON)")
	terminal := fs.Bool("allow-terminal", false, "Allow paths through stop codons")
	parse(fs, noColor, args)

	if *from == "" || *to == "" {
		fmt.Fprintln(os.Stderr, "Error: Both -from and -to are required")
		fs.Usage()
		os.Exit(1)
	}

	t := loadTable(*table)
	a, b := strings.ToUpper(*from), strings.ToUpper(*to)
	p, ok := popgen.FindPath(t, a, b, popgen.PathOptions{AllowTerminal: *terminal})
	if !ok {
		fatalf("no path from %s to %s", a, b)
	}

	heading.Printf("Path %s -> %s (%s)\n", a, b, t.Name())
	if len(p.Steps) == 0 {
		fmt.Println("  identical codons")
		return
	}
	for _, s := range p.Steps {
		kind := nonText.Sprint("nonsynonymous")
		if s.Synonymous {
			kind = synText.Sprint("synonymous")
		}
		fmt.Printf("  %s -> %s  position %d  %s  %s\n", s.From, s.To, s.Position+1, s.Pair, kind)
	}
	fmt.Printf("Synonymous: %d  Nonsynonymous: %d  Transitions: %d\n",
		p.Synonymous(), p.Nonsynonymous(), p.Transitions())
}

func translateCmd(args []string) {
	fs, noColor := newFlagSet("translate")
	file := fs.String("file", "", "FASTA file whose coding regions to translate")
	seq := fs.String("seq", "", "Codon-aligned sequence")
	table := fs.String("table", "", "Genetic code file (YAML or JSON)")
	parse(fs, noColor, args)

	if *file == "" && *seq == "" {
		fmt.Fprintln(os.Stderr, "Error: Either -file or -seq is required")
		fs.Usage()
		os.Exit(1)
	}

	t := loadTable(*table)
	if *seq != "" {
		fmt.Println(popgen.Translate(t, strings.ToUpper(*seq)))
		return
	}

	d, err := popgen.ReadFASTA(*file)
	if err != nil {
		fatalf("reading file: %v", err)
	}
	for _, g := range d.Genes() {
		for _, s := range g.Strains() {
			fmt.Printf(">%s|%s\n%s\n", g.Name(), s.Strain(), popgen.Translate(t, s.CodingSequence().String()))
		}
	}
}

func diversityCmd(args []string) {
	fs, noColor := newFlagSet("diversity")
	file := fs.String("file", "", "Aligned FASTA file")
	pop := fs.String("pop", "", "Restrict to strains of this population")
	cutoff := fs.Float64("cutoff", 0, "Singleton frequency cutoff")
	jc := fs.Bool("jc", false, "Apply the Jukes-Cantor correction")
	parse(fs, noColor, args)

	if *file == "" {
		fmt.Fprintln(os.Stderr, "Error: -file is required")
		fs.Usage()
		os.Exit(1)
	}

	d, err := popgen.ReadFASTA(*file)
	if err != nil {
		fatalf("reading file: %v", err)
	}

	for _, g := range d.Genes() {
		var seqs []string
		for _, s := range g.StrainsInPopulation(*pop) {
			if seq := s.CompleteSequence().String(); seq != "" {
				seqs = append(seqs, seq)
			}
		}
		columns, ok := columnsOf(seqs)
		if !ok {
			fmt.Fprintf(os.Stderr, "%s: skipped (need 2+ sequences of equal length)\n", g.Name())
			continue
		}
		div := popgen.ColumnDiversity(columns, *cutoff, *jc)
		heading.Printf("%s (%d sequences)\n", g.Name(), len(seqs))
		fmt.Printf("  Sites: %d  S: %d  Singletons: %d  Transitions: %d\n",
			div.Sites, div.Polymorphisms, div.Singletons, div.Transitions)
		fmt.Printf("  Pi: %s  Theta: %s\n", formatStat(div.Pi), formatStat(div.Theta))
		fmt.Printf("  Tajima's D: %s  D': %s\n", formatStat(div.TajimaD), formatStat(div.TajimaDPrime))
	}
}

// columnsOf transposes equal-length sequences into alignment columns.
func columnsOf(seqs []string) ([]string, bool) {
	if len(seqs) < 2 {
		return nil, false
	}
	n := len(seqs[0])
	for _, s := range seqs[1:] {
		if len(s) != n {
			return nil, false
		}
	}
	columns := make([]string, n)
	buf := make([]byte, len(seqs))
	for i := range columns {
		for j, s := range seqs {
			buf[j] = s[i]
		}
		columns[i] = string(buf)
	}
	return columns, true
}

func formatStat(v float64) string {
	return analysis.FormatFloat(v)
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func saveRun(ctx context.Context, path, label string, coding bool, results []popgen.Result) (int64, error) {
	st, err := store.Open(path)
	if err != nil {
		return 0, err
	}
	defer st.Close()
	return st.SaveRun(ctx, label, coding, results)
}

func analyzeCmd(args []string) {
	fs, noColor := newFlagSet("analyze")
	file := fs.String("file", "", "Aligned FASTA file, optionally .gz")
	cfgPath := fs.String("config", "", "YAML configuration file")
	ingroup := fs.String("ingroup", "", "Ingroup population")
	outgroup := fs.String("outgroup", "", "Outgroup population")
	region := fs.String("region", "", "Restrict to regions of this type")
	coding := fs.Bool("coding", false, "Analyze exons codon by codon")
	jc := fs.Bool("jc", false, "Apply the Jukes-Cantor correction")
	cutoff := fs.Float64("cutoff", 0, "Singleton frequency cutoff")
	table := fs.String("table", "", "Genetic code file (YAML or JSON)")
	workers := fs.Int("workers", 0, "Genes analyzed in parallel")
	minSamples := fs.Int("min-samples", 0, "Fewest ingroup sequences per gene")
	output := fs.String("o", "", "Write the TSV report here instead of stdout")
	db := fs.String("db", "", "Save the run to this SQLite database")
	label := fs.String("label", "", "Label of the saved run")
	quiet := fs.Bool("q", false, "Suppress progress and skip notices")
	parse(fs, noColor, args)

	if *file == "" {
		fmt.Fprintln(os.Stderr, "Error: -file is required")
		fs.Usage()
		os.Exit(1)
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fatalf("%v", err)
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "ingroup":
			cfg.Ingroup = *ingroup
		case "outgroup":
			cfg.Outgroup = *outgroup
		case "region":
			cfg.RegionType = *region
		case "coding":
			cfg.Coding = *coding
		case "jc":
			cfg.JukesCantor = *jc
		case "cutoff":
			cfg.SingletonCutoff = *cutoff
		case "table":
			cfg.CodonTable = *table
		case "workers":
			cfg.Workers = *workers
		case "min-samples":
			cfg.MinSamples = *minSamples
		case "db":
			cfg.Database = *db
		}
	})
	if err := cfg.Validate(); err != nil {
		fatalf("%v", err)
	}
	opts, err := analysis.OptionsFromConfig(cfg)
	if err != nil {
		fatalf("%v", err)
	}
	if !*quiet {
		opts.Logger = log.New(os.Stderr, "popgen: ", 0)
		opts.Progress = func(done, total int, gene string) {
			fmt.Fprintf(os.Stderr, "\r[%d/%d] %-30s", done, total, gene)
			if done == total {
				fmt.Fprintln(os.Stderr)
			}
		}
	}

	d, err := popgen.ReadFASTA(*file)
	if err != nil {
		fatalf("reading file: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	results, err := popgen.Analyze(ctx, d, opts)
	if err != nil {
		fatalf("analysis: %v", err)
	}

	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			fatalf("creating output: %v", err)
		}
		defer f.Close()
		out = f
	}
	if err := popgen.WriteTSV(out, results, cfg.Coding); err != nil {
		fatalf("writing report: %v", err)
	}

	if cfg.Database != "" {
		id, err := saveRun(ctx, cfg.Database, *label, cfg.Coding, results)
		if err != nil {
			fatalf("saving run: %v", err)
		}
		if !*quiet {
			heading.Fprintf(os.Stderr, "Saved run %d to %s\n", id, cfg.Database)
		}
	}
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Analyzed %d of %d genes\n", len(results), d.Len())
	}
}

func tableCmd(args []string) {
	fs, noColor := newFlagSet("table")
	export := fs.String("export", "", "Write the genetic code to this file (.yaml or .json)")
	check := fs.String("check", "", "Load and summarize a genetic code file")
	from := fs.String("from", "", "Genetic code to export; the universal code if empty")
	parse(fs, noColor, args)

	switch {
	case *export != "":
		t := loadTable(*from)
		if err := popgen.SaveCodonTable(*export, t); err != nil {
			fatalf("%v", err)
		}
		fmt.Printf("Wrote %s to %s\n", t.Name(), *export)
	case *check != "":
		t := loadTable(*check)
		heading.Printf("%s\n", t.Name())
		codons := codon.Codons()
		protein := popgen.Translate(t, strings.Join(codons, ""))
		fmt.Printf("  Codons: %d  Stops: %d\n", len(codons), strings.Count(protein, "*"))
		for i, c := range codons {
			fmt.Printf("  %s %c", c, protein[i])
			if i%8 == 7 {
				fmt.Println()
			}
		}
	default:
		fmt.Fprintln(os.Stderr, "Error: Either -export or -check is required")
		fs.Usage()
		os.Exit(1)
	}
}

func runsCmd(args []string) {
	fs, noColor := newFlagSet("runs")
	db := fs.String("db", "popgen.db", "SQLite database of runs")
	show := fs.Int64("show", 0, "Print the TSV report of this run")
	del := fs.Int64("delete", 0, "Delete this run")
	parse(fs, noColor, args)

	ctx := context.Background()
	st, err := store.Open(*db)
	if err != nil {
		fatalf("%v", err)
	}
	defer st.Close()

	switch {
	case *show != 0:
		run, err := st.Run(ctx, *show)
		if err != nil {
			fatalf("%v", err)
		}
		results, err := st.Results(ctx, *show)
		if err != nil {
			fatalf("%v", err)
		}
		if err := popgen.WriteTSV(os.Stdout, results, run.Coding); err != nil {
			fatalf("%v", err)
		}
	case *del != 0:
		if err := st.DeleteRun(ctx, *del); err != nil {
			fatalf("%v", err)
		}
		fmt.Printf("Deleted run %d\n", *del)
	default:
		runs, err := st.Runs(ctx)
		if err != nil {
			fatalf("%v", err)
		}
		if len(runs) == 0 {
			fmt.Println("No runs stored")
			return
		}
		heading.Printf("%-6s %-20s %-7s %-6s %s\n", "ID", "Created", "Coding", "Genes", "Label")
		for _, r := range runs {
			fmt.Printf("%-6d %-20s %-7v %-6d %s\n",
				r.ID, r.Created.Local().Format("2006-01-02 15:04:05"), r.Coding, r.Genes, r.Label)
		}
	}
}
