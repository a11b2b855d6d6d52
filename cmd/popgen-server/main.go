// Command popgen-server provides a REST API for popgen operations.
//
// Usage:
//
//	popgen-server [options]
//
// Options:
//
//	-port     Port to listen on (default: 8080)
//	-host     Host to bind to (default: localhost)
//	-db       SQLite database of saved runs (default: popgen.db)
//	-table    Genetic code file; the universal code if empty
//	-workers  Genes analyzed in parallel per request
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/aria-lang/popgen-go/api/handlers"
	"github.com/aria-lang/popgen-go/api/middleware"
	"github.com/aria-lang/popgen-go/internal/store"
	"github.com/aria-lang/popgen-go/pkg/popgen"
)

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	host := flag.String("host", "localhost", "Host to bind to")
	dbPath := flag.String("db", "popgen.db", "SQLite database of saved runs")
	tablePath := flag.String("table", "", "Genetic code file (YAML or JSON)")
	workers := flag.Int("workers", runtime.NumCPU(), "Genes analyzed in parallel per request")
	flag.Parse()

	table := popgen.UniversalTable()
	if *tablePath != "" {
		t, err := popgen.LoadCodonTable(*tablePath)
		if err != nil {
			log.Fatalf("Could not load codon table: %v\n", err)
		}
		table = t
	}

	st, err := store.Open(*dbPath)
	if err != nil {
		log.Fatalf("Could not open run store: %v\n", err)
	}
	defer st.Close()

	metrics := middleware.NewMetrics()
	api := handlers.New(table, st)
	api.Recorder = metrics
	api.Workers = *workers

	r := newRouter(api, metrics)

	addr := fmt.Sprintf("%s:%d", *host, *port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)

	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Could not gracefully shutdown: %v\n", err)
		}
		close(done)
	}()

	log.Printf("popgen API server starting on http://%s (table %s, store %s)\n", addr, table.Name(), st.Path())
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %s: %v\n", addr, err)
	}

	<-done
	log.Println("Server stopped")
}

func newRouter(api *handlers.API, metrics *middleware.Metrics) chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(metrics.Middleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Handle("/metrics", metrics.Handler())

	// API routes
	r.Mount("/api", api.Routes())

	// Home page
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(homePage))
	})

	return r
}

const homePage = `<!DOCTYPE html>
<html>
<head>
    <title>popgen API</title>
    <style>
        body { font-family: system-ui, sans-serif; max-width: 800px; margin: 2rem auto; padding: 0 1rem; }
        h1 { color: #2563eb; }
        pre { background: #f3f4f6; padding: 1rem; border-radius: 0.5rem; overflow-x: auto; }
        .endpoint { margin: 1rem 0; padding: 1rem; border: 1px solid #e5e7eb; border-radius: 0.5rem; }
        .method { display: inline-block; padding: 0.25rem 0.5rem; background: #10b981; color: white; border-radius: 0.25rem; font-size: 0.875rem; }
        .get { background: #2563eb; }
    </style>
</head>
<body>
    <h1>popgen API</h1>
    <p>A REST API for population-genetic analysis of aligned genes.</p>

    <h2>Endpoints</h2>

    <div class="endpoint">
        <span class="method">POST</span> <code>/api/codon/info</code>
        <p>Amino acid, fold and synonymous sites of a codon.</p>
        <pre>{"codon": "CTG"}</pre>
    </div>

    <div class="endpoint">
        <span class="method">POST</span> <code>/api/codon/path</code>
        <p>Mutational path with the fewest nonsynonymous steps.</p>
        <pre>{"from": "AAA", "to": "CCC"}</pre>
    </div>

    <div class="endpoint">
        <span class="method">POST</span> <code>/api/codon/translate</code>
        <p>Translate a codon-aligned sequence.</p>
        <pre>{"sequence": "ATGTTTTAA"}</pre>
    </div>

    <div class="endpoint">
        <span class="method">POST</span> <code>/api/sites/classify</code>
        <p>Classify an ingroup column against an outgroup column.</p>
        <pre>{"pop": "AAC", "out": "T"}</pre>
    </div>

    <div class="endpoint">
        <span class="method">POST</span> <code>/api/stats/diversity</code>
        <p>Pi, Watterson's theta and Tajima's D of aligned sequences.</p>
        <pre>{"sequences": ["AAAC", "AACC", "AAAA", "AAAA"]}</pre>
    </div>

    <div class="endpoint">
        <span class="method">POST</span> <code>/api/analysis</code>
        <p>Per-gene analysis of an aligned FASTA upload; "save" stores the run.</p>
        <pre>{"fasta": "&gt;adh|mel|a|north|exon|1\nATG...", "ingroup": "north", "outgroup": "sim", "coding": true, "save": true}</pre>
    </div>

    <div class="endpoint">
        <span class="method get">GET</span> <code>/api/runs</code>, <code>/api/runs/{id}</code>, <code>/api/runs/{id}?format=tsv</code>
        <p>Stored runs and their results.</p>
    </div>

    <p>Prometheus metrics are served at <code>/metrics</code>.</p>
</body>
</html>`
