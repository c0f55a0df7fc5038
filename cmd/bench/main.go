// README: Black-box bench for a running chauffeur API; reuses the service config and reports quote figures.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"chauffeur/internal/config"
	"chauffeur/internal/infra"
)

// Options holds what the bench needs on top of the service config.
type Options struct {
	BaseURL        string
	MigrationPath  string
	ApplyMigration bool
	Strict         bool
	Timeout        time.Duration
	Concurrency    int
	Duration       time.Duration
}

func main() {
	cfg, err := config.Load()
	log := infra.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.WithError(err).Fatal("load config")
	}

	var opts Options
	var skipDB, skipRedis bool
	flag.StringVar(&opts.BaseURL, "base-url", baseURL(cfg.HTTP.Addr), "API base URL, defaults to CHAUFFEUR_HTTP_ADDR on localhost")
	flag.StringVar(&opts.MigrationPath, "migration", "migrations/0001_init.sql", "migration SQL checked against the database")
	flag.BoolVar(&opts.ApplyMigration, "apply-migration", false, "apply the migration before running cases")
	flag.BoolVar(&opts.Strict, "strict", false, "treat skipped cases as failures")
	flag.DurationVar(&opts.Timeout, "timeout", time.Minute, "total timeout")
	flag.IntVar(&opts.Concurrency, "concurrency", 20, "parallel quote requests for the concurrency and perf cases")
	flag.DurationVar(&opts.Duration, "duration", 10*time.Second, "perf case duration")
	flag.BoolVar(&skipDB, "no-db", false, "skip Postgres cases even if CHAUFFEUR_DB_DSN is set")
	flag.BoolVar(&skipRedis, "no-redis", false, "skip Redis cases even if CHAUFFEUR_REDIS_ADDR is set")
	flag.Parse()
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	r := NewRunner(opts)
	if !skipDB && cfg.DB.DSN != "" {
		if db, err := pgxpool.New(ctx, cfg.DB.DSN); err != nil {
			log.WithError(err).Warn("postgres pool, db cases will skip")
		} else {
			r.db = db
			defer db.Close()
		}
	}
	if !skipRedis && cfg.Redis.Addr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer r.redis.Close()
	}

	log.WithFields(logrus.Fields{"base_url": opts.BaseURL, "concurrency": opts.Concurrency}).Info("bench starting")
	results := r.RunAll(ctx)

	counts := map[string]int{}
	for _, res := range results {
		counts[res.Status]++
	}
	fmt.Println("\n== Summary ==")
	fmt.Printf("PASS=%d FAIL=%d SKIP=%d\n", counts["PASS"], counts["FAIL"], counts["SKIP"])
	r.figures.print()

	if counts["FAIL"] > 0 || (opts.Strict && counts["SKIP"] > 0) {
		os.Exit(1)
	}
}

// baseURL turns a listen address such as ":8080" into a client URL.
func baseURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

// quoteFigures collects what the quote cases measured.
type quoteFigures struct {
	latencies   []time.Duration
	agreedTotal string
	rps         float64
	perfErrors  int64
}

func (f *quoteFigures) observe(d time.Duration) {
	f.latencies = append(f.latencies, d)
}

func (f *quoteFigures) percentile(p float64) time.Duration {
	if len(f.latencies) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), f.latencies...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}

func (f *quoteFigures) print() {
	fmt.Println("\n== Quote figures ==")
	if len(f.latencies) > 0 {
		fmt.Printf("quote latency p50=%s p95=%s (n=%d)\n", f.percentile(0.5), f.percentile(0.95), len(f.latencies))
	}
	if f.agreedTotal != "" {
		fmt.Printf("concurrent quotes agreed on total=%s\n", f.agreedTotal)
	}
	if f.rps > 0 {
		fmt.Printf("throughput=%.1f quotes/s errors=%d\n", f.rps, f.perfErrors)
	}
}
