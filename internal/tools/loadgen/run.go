// Package loadgen generates synthetic traffic against a running API
// instance and reports per-status-class counts. It is a developer tool
// for smoke-checking latency and error behaviour under mild load, not
// a benchmark harness.
package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	ProfileMixed   = "mixed"
	ProfileAuth    = "auth"
	ProfileContent = "content"
)

type Config struct {
	BaseURL     string
	Profile     string
	Duration    time.Duration
	Concurrency int
	// Delay between requests issued by one worker.
	Interval time.Duration
	Seed     int64
}

// Report aggregates the outcome of one run. Failures counts transport
// errors, not HTTP error statuses.
type Report struct {
	Profile       string         `json:"profile"`
	TotalRequests int            `json:"total_requests"`
	Failures      int            `json:"failures"`
	StatusClasses map[string]int `json:"status_classes"`
	Elapsed       string         `json:"elapsed"`
}

type counters struct {
	mu       sync.Mutex
	total    int
	failures int
	byClass  map[string]int
}

func (c *counters) record(status int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total++
	if err != nil {
		c.failures++
		return
	}
	c.byClass[classifyStatusClass(status)]++
}

// Run drives traffic at cfg.BaseURL until cfg.Duration elapses or ctx
// is cancelled.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	profile := normalizeProfile(cfg.Profile)
	switch profile {
	case ProfileMixed, ProfileAuth, ProfileContent:
	default:
		return nil, fmt.Errorf("unknown profile %q", profile)
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.Duration <= 0 {
		cfg.Duration = 10 * time.Second
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 50 * time.Millisecond
	}

	runCtx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	stats := &counters{byClass: make(map[string]int)}
	start := time.Now()

	group, groupCtx := errgroup.WithContext(runCtx)
	for i := 0; i < cfg.Concurrency; i++ {
		rng := rand.New(rand.NewSource(cfg.Seed + int64(i)))
		group.Go(func() error {
			return worker(groupCtx, baseURL, profile, cfg.Interval, rng, stats)
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return &Report{
		Profile:       profile,
		TotalRequests: stats.total,
		Failures:      stats.failures,
		StatusClasses: stats.byClass,
		Elapsed:       time.Since(start).Round(time.Millisecond).String(),
	}, nil
}

func worker(ctx context.Context, baseURL, profile string, interval time.Duration, rng *rand.Rand, stats *counters) error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	client := &http.Client{Jar: jar, Timeout: 10 * time.Second}

	registered := false
	email := fmt.Sprintf("loadgen-%d@example.com", rng.Int63())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		wantAuth := profile == ProfileAuth || (profile == ProfileMixed && rng.Intn(2) == 0)
		var status int
		if wantAuth {
			status, err = authRequest(ctx, client, baseURL, email, &registered, rng)
		} else {
			status, err = contentRequest(ctx, client, baseURL, rng)
		}
		stats.record(status, err)
	}
}

func authRequest(ctx context.Context, client *http.Client, baseURL, email string, registered *bool, rng *rand.Rand) (int, error) {
	if !*registered {
		body := map[string]string{"name": "loadgen", "email": email, "password": "loadgen-pass-1"}
		status, err := postJSON(ctx, client, baseURL+"/api/auth/register", body)
		if err == nil && status == http.StatusCreated {
			*registered = true
		}
		return status, err
	}
	if rng.Intn(3) == 0 {
		return postJSON(ctx, client, baseURL+"/api/auth/refresh", map[string]string{})
	}
	body := map[string]string{"email": email, "password": "loadgen-pass-1"}
	return postJSON(ctx, client, baseURL+"/api/auth/login", body)
}

func contentRequest(ctx context.Context, client *http.Client, baseURL string, rng *rand.Rand) (int, error) {
	paths := []string{
		"/health",
		"/api/emotions",
		fmt.Sprintf("/api/weeks/%d", 1+rng.Intn(40)),
	}
	return get(ctx, client, baseURL+paths[rng.Intn(len(paths))])
}

func postJSON(ctx context.Context, client *http.Client, url string, body any) (int, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	return do(client, req)
}

func get(ctx context.Context, client *http.Client, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	return do(client, req)
}

func do(client *http.Client, req *http.Request) (int, error) {
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}

func classifyStatusClass(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	default:
		return "other"
	}
}

func normalizeProfile(profile string) string {
	profile = strings.ToLower(strings.TrimSpace(profile))
	if profile == "" {
		return ProfileMixed
	}
	return profile
}
