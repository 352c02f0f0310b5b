// Command httpsession-loadtest seeds a session store and measures load and
// save throughput under concurrency.
//
// By default it runs against an embedded miniredis. Point it at a real
// deployment with -redis-addr (or REDIS_ADDR), or at Postgres with
// -postgres-dsn to exercise the SQL backend instead.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/hexxet/httpsession"
	"github.com/hexxet/httpsession/metrics/export/internaldefs"
	"github.com/hexxet/httpsession/pgstore"
	"github.com/hexxet/httpsession/redisstore"
)

const createSessionsTable = `CREATE TABLE IF NOT EXISTS sessions (
	key TEXT PRIMARY KEY,
	data TEXT NOT NULL,
	expires_at TIMESTAMPTZ
)`

type seededSession struct {
	key string
	mu  sync.Mutex
}

func main() {
	var (
		sessions    = flag.Int("sessions", 100000, "number of sessions to seed")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase (load + save)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		postgresDSN = flag.String("postgres-dsn", "", "postgres DSN; when set, the SQL backend is measured instead of redis")
		cookieName  = flag.String("cookie-name", "loadtest_session", "session cookie name (doubles as the store key prefix)")
	)
	flag.Parse()

	if *sessions <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "sessions, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	metrics := httpsession.NewMetrics(httpsession.MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})
	opts := []httpsession.Option{
		httpsession.WithCookieName(*cookieName),
		httpsession.WithMaxAge(24 * time.Hour),
		httpsession.WithMetrics(metrics),
	}

	store, cleanup, err := buildStorage(*redisAddr, *postgresDSN, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "storage setup failed: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	states := make([]seededSession, *sessions)
	fmt.Printf("seeding %d sessions...\n", *sessions)
	startSeed := time.Now()
	for i := 0; i < *sessions; i++ {
		sess := store.NewSession()
		sess.Set("user", fmt.Sprintf("u-%d", i))
		sess.Set("seq", i)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "http://loadtest.local/seed", nil)
		if err := store.Save(rec, req, sess); err != nil {
			fmt.Fprintf(os.Stderr, "seed save failed: %v\n", err)
			os.Exit(1)
		}

		cookies := rec.Result().Cookies()
		if len(cookies) != 1 || cookies[0].Value == "" {
			fmt.Fprintf(os.Stderr, "seed save issued no session cookie\n")
			os.Exit(1)
		}
		states[i].key = cookies[0].Value
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	loadStats := runLoadPhase(store, *cookieName, states, *ops, *concurrency)
	saveStats := runSavePhase(store, *cookieName, states, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("load", loadStats)
	printStats("save", saveStats)

	fmt.Println("---- session metrics ----")
	snap := metrics.Snapshot()
	for _, def := range internaldefs.CounterDefs {
		fmt.Printf("%s %d\n", def.Name, snap.Counters[def.ID])
	}
}

func buildStorage(redisAddr, postgresDSN string, opts []httpsession.Option) (httpsession.Storage, func(), error) {
	if postgresDSN != "" {
		db, err := sql.Open("postgres", postgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.Ping(); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		if _, err := db.Exec(createSessionsTable); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("create sessions table: %w", err)
		}

		store, err := pgstore.New(db, opts...)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		fmt.Println("using postgres")
		return store, func() { _ = db.Close() }, nil
	}

	addr := redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("start miniredis: %w", err)
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{mr.Addr()},
		})
		store, err := redisstore.New(client, opts...)
		if err != nil {
			_ = client.Close()
			mr.Close()
			return nil, nil, err
		}
		fmt.Printf("using miniredis at %s\n", mr.Addr())
		return store, func() {
			_ = client.Close()
			mr.Close()
		}, nil
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{addr},
	})
	store, err := redisstore.New(client, opts...)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	fmt.Printf("using redis at %s\n", addr)
	return store, func() { _ = client.Close() }, nil
}

func requestWithKey(cookieName, key string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "http://loadtest.local/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: key})
	return req
}

func runLoadPhase(store httpsession.Storage, cookieName string, states []seededSession, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(states))
				req := requestWithKey(cookieName, states[idx].key)

				t0 := time.Now()
				sess, err := store.Load(req)
				d := time.Since(t0)
				if err != nil || sess.IsNew() {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func runSavePhase(store httpsession.Storage, cookieName string, states []seededSession, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*6151))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(states))
				state := &states[idx]

				state.mu.Lock()
				req := requestWithKey(cookieName, state.key)
				sess, err := store.Load(req)
				if err != nil || sess.IsNew() {
					atomic.AddInt64(&failures, 1)
					state.mu.Unlock()
					continue
				}
				sess.Set("touched", i+worker+1)

				rec := httptest.NewRecorder()
				t0 := time.Now()
				err = store.Save(rec, req, sess)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				state.mu.Unlock()

				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
