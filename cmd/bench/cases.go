// README: Bench cases for the quote API; includes HTTP, DB, Redis, determinism and throughput checks.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

type Runner struct {
	opts    Options
	httpc   *http.Client
	db      *pgxpool.Pool
	redis   *redis.Client
	figures quoteFigures
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name  string
	Focus string
	Run   func(ctx context.Context, r *Runner) Result
}

type quoteResp struct {
	ID     string `json:"id"`
	Result struct {
		TotalAmount decimal.Decimal `json:"total_amount"`
		VAT         decimal.Decimal `json:"vat"`
		Currency    string          `json:"currency"`
		Display     *struct {
			Amount   decimal.Decimal `json:"amount"`
			Currency string          `json:"currency"`
		} `json:"display"`
	} `json:"result"`
}

func NewRunner(opts Options) *Runner {
	return &Runner{
		opts:  opts,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

// RunAll runs every case in order. db and redis are optional; cases needing them skip.
func (r *Runner) RunAll(ctx context.Context) []Result {
	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-7s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}
	return results
}

// weekday midday in the standard season, outside every peak window
const offPeakPickup = "2026-10-14T12:00:00+01:00"

func plainHourly() map[string]any {
	return map[string]any{
		"service_id":      "executive_chauffeur",
		"pickup_datetime": offPeakPickup,
		"hours":           3,
		"booking_type":    "hourly",
		"membership_tier": "free",
		"passenger_count": 2,
	}
}

func (r *Runner) cases() []TestCase {
	base := r.opts.BaseURL
	return []TestCase{
		{
			Name:  "Env: Postgres connect",
			Focus: "db reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Env: Redis connect",
			Focus: "redis reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "SKIP", Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Migration: apply (optional)",
			Focus: "apply migration SQL",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.opts.ApplyMigration {
					return Result{Status: "SKIP", Note: "apply-migration=false"}
				}
				if r.db == nil {
					return Result{Status: "FAIL", Note: "db not configured"}
				}
				sql, err := os.ReadFile(r.opts.MigrationPath)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				for _, s := range splitSQL(string(sql)) {
					if _, err := r.db.Exec(ctx, s); err != nil {
						return Result{Status: "FAIL", Note: err.Error()}
					}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Migration: tables exist",
			Focus: "tables from migrations/0001_init.sql",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "db not configured"}
				}
				tables, err := extractTables(r.opts.MigrationPath)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				for _, t := range tables {
					var exists bool
					err := r.db.QueryRow(ctx,
						"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
						t,
					).Scan(&exists)
					if err != nil {
						return Result{Status: "FAIL", Note: err.Error()}
					}
					if !exists {
						return Result{Status: "FAIL", Note: "missing table: " + t}
					}
				}
				return Result{Status: "PASS"}
			},
		},
		httpCaseMethod("API: health", http.MethodGet, base+"/health", nil, []int{200}),

		// Quotes
		{
			Name:  "Quote: plain hourly totals 234.00",
			Focus: "65/h x 3h, VAT 20%",
			Run: func(ctx context.Context, r *Runner) Result {
				q, res := postQuote(ctx, r, base, plainHourly())
				if res.Status != "" {
					return res
				}
				if !q.Result.TotalAmount.Equal(decimal.NewFromInt(234)) {
					return Result{Status: "FAIL", Note: "total=" + q.Result.TotalAmount.StringFixed(2)}
				}
				return Result{Status: "PASS", Note: "quote=" + q.ID}
			},
		},
		{
			Name:  "Quote: display currency EUR",
			Focus: "conversion applied to the total only",
			Run: func(ctx context.Context, r *Runner) Result {
				body := plainHourly()
				body["display_currency"] = "EUR"
				q, res := postQuote(ctx, r, base, body)
				if res.Status != "" {
					return res
				}
				if q.Result.Display == nil || q.Result.Display.Currency != "EUR" {
					return Result{Status: "FAIL", Note: "display amount missing"}
				}
				if q.Result.Currency != "GBP" {
					return Result{Status: "FAIL", Note: "native currency changed to " + q.Result.Currency}
				}
				return Result{Status: "PASS", Note: "display=" + q.Result.Display.Amount.StringFixed(2)}
			},
		},
		{
			Name:  "Quote: stored and retrievable",
			Focus: "redis quote store round trip",
			Run: func(ctx context.Context, r *Runner) Result {
				q, res := postQuote(ctx, r, base, plainHourly())
				if res.Status != "" {
					return res
				}
				if r.redis != nil {
					n, err := r.redis.Exists(ctx, "pricing:quote:"+q.ID).Result()
					if err != nil || n != 1 {
						return Result{Status: "FAIL", Note: "quote key missing in redis"}
					}
				}
				return doRequest(ctx, r, http.MethodGet, base+"/api/quotes/"+q.ID, nil, []int{200})
			},
		},
		httpCase("Quote: unknown add-on is ignored", base+"/api/quotes", merge(plainHourly(), map[string]any{
			"extras": []map[string]any{{"type": "unicorn_ride", "quantity": 2}},
		}), []int{200}),
		httpCase("Quote: missing fields -> 400", base+"/api/quotes", map[string]any{}, []int{400}),
		httpCase("Quote: negative hours -> 400", base+"/api/quotes", merge(plainHourly(), map[string]any{"hours": -1}), []int{400}),
		httpCase("Quote: unknown service -> 404", base+"/api/quotes", merge(plainHourly(), map[string]any{"service_id": "hovercraft"}), []int{404}),
		httpCase("Quote: unknown vehicle -> 404", base+"/api/quotes", merge(plainHourly(), map[string]any{"vehicle_id": "tuk_tuk"}), []int{404}),
		httpCase("Quote: unsupported display currency -> 422", base+"/api/quotes", merge(plainHourly(), map[string]any{"display_currency": "JPY"}), []int{422}),
		httpCaseMethod("Quote: unknown id -> 404", http.MethodGet, base+"/api/quotes/00000000-0000-0000-0000-000000000000", nil, []int{404}),

		// Currency
		httpCaseMethod("Currency: GBP -> EUR", http.MethodGet, base+"/api/currency/convert?amount=100&from=GBP&to=EUR", nil, []int{200}),
		httpCaseMethod("Currency: GBP -> JPY -> 422", http.MethodGet, base+"/api/currency/convert?amount=100&from=GBP&to=JPY", nil, []int{422}),

		// Bookings
		httpCase("Booking: no token -> 401", base+"/api/bookings", map[string]any{"quote_id": "00000000-0000-0000-0000-000000000000"}, []int{401, 404}),

		// Concurrency
		{
			Name:  "Concurrency: identical quotes agree",
			Focus: "same request priced identically under load",
			Run: func(ctx context.Context, r *Runner) Result {
				return concurrentQuotes(ctx, r, base+"/api/quotes", plainHourly())
			},
		},

		// Performance
		{
			Name:  "Perf: quote throughput",
			Focus: "quotes per second",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/api/quotes", plainHourly())
			},
		},
	}
}

func merge(base, over map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

func postQuote(ctx context.Context, r *Runner, base string, body map[string]any) (quoteResp, Result) {
	var q quoteResp
	b, _ := json.Marshal(body)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/quotes", strings.NewReader(string(b)))
	req.Header.Set("Content-Type", "application/json")
	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return q, Result{Status: "FAIL", Note: err.Error()}
	}
	defer resp.Body.Close()
	r.figures.observe(time.Since(start))
	if resp.StatusCode != http.StatusOK {
		return q, Result{Status: "FAIL", Note: fmt.Sprintf("status=%d", resp.StatusCode)}
	}
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		return q, Result{Status: "FAIL", Note: err.Error()}
	}
	return q, Result{}
}

func httpCase(name, url string, body any, okStatuses []int) TestCase {
	return httpCaseMethod(name, http.MethodPost, url, body, okStatuses)
}

func httpCaseMethod(name, method, url string, body any, okStatuses []int) TestCase {
	return TestCase{
		Name:  name,
		Focus: "HTTP API",
		Run: func(ctx context.Context, r *Runner) Result {
			return doRequest(ctx, r, method, url, body, okStatuses)
		},
	}
}

func doRequest(ctx context.Context, r *Runner, method, url string, body any, okStatuses []int) Result {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = strings.NewReader(string(b))
	}
	req, _ := http.NewRequestWithContext(ctx, method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	latency := time.Since(start)

	if contains(okStatuses, resp.StatusCode) {
		return Result{Status: "PASS", Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
	}
	return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
}

func concurrentQuotes(ctx context.Context, r *Runner, url string, payload any) Result {
	b, _ := json.Marshal(payload)
	wg := sync.WaitGroup{}
	mu := sync.Mutex{}
	totals := map[string]int{}
	failed := 0

	for i := 0; i < r.opts.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(b)))
			req.Header.Set("Content-Type", "application/json")
			resp, err := r.httpc.Do(req)
			if err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			defer resp.Body.Close()
			var q quoteResp
			err = json.NewDecoder(resp.Body).Decode(&q)
			mu.Lock()
			defer mu.Unlock()
			if err != nil || resp.StatusCode != http.StatusOK {
				failed++
				return
			}
			totals[q.Result.TotalAmount.StringFixed(2)]++
		}()
	}
	wg.Wait()

	if failed > 0 {
		return Result{Status: "FAIL", Note: fmt.Sprintf("failed=%d", failed)}
	}
	if len(totals) != 1 {
		return Result{Status: "FAIL", Note: fmt.Sprintf("distinct totals=%v", totals)}
	}
	for total := range totals {
		r.figures.agreedTotal = total
	}
	return Result{Status: "PASS", Note: fmt.Sprintf("requests=%d total=%s", r.opts.Concurrency, r.figures.agreedTotal)}
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	b, _ := json.Marshal(payload)
	end := time.Now().Add(r.opts.Duration)
	var count int64
	var errCount int64
	var mu sync.Mutex
	wg := sync.WaitGroup{}

	for i := 0; i < r.opts.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(b)))
				req.Header.Set("Content-Type", "application/json")
				resp, err := r.httpc.Do(req)
				if err != nil {
					mu.Lock()
					errCount++
					mu.Unlock()
					continue
				}
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				mu.Lock()
				count++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: "FAIL", Note: "no requests completed"}
	}
	rps := float64(count) / r.opts.Duration.Seconds()
	r.figures.rps, r.figures.perfErrors = rps, errCount
	return Result{Status: "PASS", Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func contains(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	re := regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)
	matches := re.FindAllStringSubmatch(string(b), -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, m[1])
	}
	return tables, nil
}

func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "--") || l == "" {
			continue
		}
		filtered = append(filtered, line)
	}
	parts := strings.Split(strings.Join(filtered, "\n"), ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
