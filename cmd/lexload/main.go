// Command lexload extracts the distinct key column from a lexicon and loads
// it into a database table, so downstream jobs can join against the key set
// without re-parsing the dump. SQLite is the embedded default; Postgres is
// selected with -driver postgres and a DSN.
//
// The run has two instrumented steps: extract (single pass over the input
// into an in-memory key set) and load (batched inserts of the sorted keys).
// Loads are idempotent: keys already present in the table are skipped.
//
// Examples:
//
//	lexload -file unidic-cwj.csv
//	lexload -url https://example.com/lex.csv -driver postgres \
//	    -dsn postgresql://loader@db/lex -table public.lex_keys
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"lexkit/internal/ident"
	"lexkit/internal/keyset"
	"lexkit/internal/lexicon"
	"lexkit/internal/metrics"
	"lexkit/internal/metrics/datadog"
	"lexkit/internal/metrics/prompush"
	"lexkit/internal/source"
	"lexkit/internal/storage"
	"lexkit/internal/storage/postgres"
	"lexkit/internal/storage/sqlite"
)

const job = "lexload"

// options carries the resolved flag values.
type options struct {
	file, url string
	driver    string
	dsn       string
	table     string
	comma     rune
	column    int
	lenient   bool
	trim      bool
	batchSize int
}

// extractKeys runs the extraction step: open the source, scan it once, and
// return the populated set with its stats.
func extractKeys(ctx context.Context, src source.Source, opt lexicon.Options) (*keyset.Set, lexicon.Stats, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, lexicon.Stats{}, err
	}
	defer rc.Close()

	set := keyset.New()
	stats, err := lexicon.NewReader(opt).ExtractKeys(bufio.NewReaderSize(rc, 256*1024), set)
	if err != nil {
		return nil, stats, err
	}
	return set, stats, nil
}

// load writes the set's sorted keys into repo in batches of batchSize. The
// batching producer and the inserting consumer run as separate goroutines
// joined by an errgroup, so slow sinks overlap with batch slicing and a
// failure on either side cancels the other.
func load(ctx context.Context, repo storage.Repository, set *keyset.Set, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 5000
	}
	if err := repo.EnsureTable(ctx); err != nil {
		return 0, err
	}

	keys := set.SortedKeys()
	batches := make(chan []string, 4)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(batches)
		for start := 0; start < len(keys); start += batchSize {
			end := start + batchSize
			if end > len(keys) {
				end = len(keys)
			}
			select {
			case batches <- keys[start:end]:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	var loaded int64
	g.Go(func() error {
		for batch := range batches {
			n, err := repo.InsertKeys(ctx, batch)
			if err != nil {
				return err
			}
			loaded += n
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return loaded, err
	}
	return loaded, nil
}

// newRepository builds the storage backend selected by opt.
func newRepository(ctx context.Context, opt options) (storage.Repository, error) {
	switch opt.driver {
	case "sqlite":
		dsn := opt.dsn
		if dsn == "" {
			dsn = "lexkit.db"
		}
		return sqlite.NewRepository(ctx, sqlite.Config{DSN: dsn, Table: opt.table})
	case "postgres":
		if opt.dsn == "" {
			return nil, fmt.Errorf("driver postgres requires -dsn")
		}
		return postgres.NewRepository(ctx, postgres.Config{DSN: opt.dsn, Table: opt.table})
	default:
		return nil, fmt.Errorf("unknown driver %q (want sqlite or postgres)", opt.driver)
	}
}

// runLoad executes the full extract-then-load run against repo and reports
// step metrics along the way.
func runLoad(ctx context.Context, src source.Source, repo storage.Repository, opt options) (int64, lexicon.Stats, error) {
	start := time.Now()
	set, stats, err := extractKeys(ctx, src, lexicon.Options{
		Comma:     opt.comma,
		Column:    opt.column,
		TrimSpace: opt.trim,
		Lenient:   opt.lenient,
	})
	metrics.RecordStep(job, "extract", err, time.Since(start))
	if err != nil {
		return 0, stats, fmt.Errorf("extract: %w", err)
	}
	metrics.RecordKeys(job, "rows", stats.Rows)
	metrics.RecordKeys(job, "distinct", stats.Distinct)
	metrics.RecordKeys(job, "duplicates", stats.Duplicates)
	metrics.RecordKeys(job, "malformed", stats.Malformed)

	start = time.Now()
	loaded, err := load(ctx, repo, set, opt.batchSize)
	metrics.RecordStep(job, "load", err, time.Since(start))
	if err != nil {
		return loaded, stats, fmt.Errorf("load: %w", err)
	}
	metrics.RecordKeys(job, "loaded", int(loaded))
	return loaded, stats, nil
}

// setupMetrics installs the backend selected on the command line.
func setupMetrics(backendName, pushgatewayURL, dogstatsdAddr string) error {
	switch backendName {
	case "", "none":
		return nil
	case "pushgateway":
		b, err := prompush.NewBackend(job, pushgatewayURL)
		if err != nil {
			return err
		}
		metrics.SetBackend(b)
		return nil
	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{Addr: dogstatsdAddr})
		if err != nil {
			return err
		}
		metrics.SetBackend(b)
		return nil
	default:
		return fmt.Errorf("unknown metrics backend %q", backendName)
	}
}

func fatalf(format string, args ...any) {
	log.Printf(format, args...)
	os.Exit(1)
}

func main() {
	var opt options
	var commaFlag string
	var metricsBackend, pushgatewayURL, dogstatsdAddr string

	flag.StringVar(&opt.file, "file", "", "lexicon file to load")
	flag.StringVar(&opt.url, "url", "", "URL to fetch the lexicon from")
	flag.StringVar(&opt.driver, "driver", "sqlite", "storage driver (sqlite or postgres)")
	flag.StringVar(&opt.dsn, "dsn", "", "database DSN (default for sqlite: lexkit.db)")
	flag.StringVar(&opt.table, "table", "", "target table (default: derived from the input name)")
	flag.StringVar(&commaFlag, "comma", ",", "field delimiter (single character)")
	flag.IntVar(&opt.column, "column", 0, "zero-based key column index")
	flag.BoolVar(&opt.lenient, "lenient", false, "tolerate malformed rows instead of aborting")
	flag.BoolVar(&opt.trim, "trim", false, "trim surrounding whitespace from keys")
	flag.IntVar(&opt.batchSize, "batch", 5000, "insert batch size")
	flag.StringVar(&metricsBackend, "metrics-backend", "none", "metrics backend (none, pushgateway, datadog)")
	flag.StringVar(&pushgatewayURL, "pushgateway-url", "http://localhost:9091", "Pushgateway base URL")
	flag.StringVar(&dogstatsdAddr, "dogstatsd-addr", "127.0.0.1:8125", "DogStatsD address")
	flag.Parse()

	if (opt.file == "") == (opt.url == "") {
		fmt.Fprintln(os.Stderr, "provide exactly one of -file or -url")
		flag.PrintDefaults()
		os.Exit(2)
	}

	comma, _ := utf8.DecodeRuneInString(commaFlag)
	if comma == utf8.RuneError {
		comma = ','
	}
	opt.comma = comma

	var src source.Source
	input := opt.file
	if opt.file != "" {
		src = source.NewFile(opt.file)
	} else {
		src = source.NewHTTP(opt.url, source.HTTPConfig{})
		input = opt.url
	}
	if opt.table == "" {
		opt.table = ident.TableName(input)
	}

	if err := setupMetrics(metricsBackend, pushgatewayURL, dogstatsdAddr); err != nil {
		fatalf("metrics: %v", err)
	}

	ctx := context.Background()
	repo, err := newRepository(ctx, opt)
	if err != nil {
		fatalf("storage: %v", err)
	}
	defer repo.Close()

	loaded, stats, err := runLoad(ctx, src, repo, opt)
	if flushErr := metrics.Flush(); flushErr != nil {
		log.Printf("metrics flush: %v", flushErr)
	}
	if err != nil {
		fatalf("lexload: %v", err)
	}

	fmt.Printf("Rows read:       %d\n", stats.Rows)
	fmt.Printf("Distinct keys:   %d\n", stats.Distinct)
	fmt.Printf("Malformed rows:  %d\n", stats.Malformed)
	fmt.Printf("Keys loaded:     %d into %s\n", loaded, opt.table)
}
