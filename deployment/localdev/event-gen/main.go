package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

type errorEvent struct {
	ErrorCode      string   `json:"error_code"`
	Component      string   `json:"component"`
	Severity       string   `json:"severity,omitempty"`
	ResponseTimeMs *float64 `json:"response_time_ms,omitempty"`
}

type scenario struct {
	component  string
	codes      []string
	severities []string
	timed      bool
}

var scenarios = []scenario{
	{component: "gateway", codes: []string{"E_TIMEOUT", "E_RATE_LIMITED"}, severities: []string{"warning", "error"}},
	{component: "checkout", codes: []string{"E_CART_STALE", "E_TIMEOUT"}, severities: []string{"error"}},
	{component: "payments", codes: []string{"E_PAYMENT_DECLINED", "E_DB_CONN"}, severities: []string{"error", "critical"}, timed: true},
	{component: "inventory", codes: []string{"E_STOCK_SYNC"}, severities: []string{"warning"}},
	{component: "auth", codes: []string{"E_AUTH_EXPIRED", "E_TOKEN_INVALID"}, severities: []string{"info", "warning", "error"}},
}

func main() {
	var (
		target     = flag.String("target", "http://localhost:8080", "faultline base URL")
		rate       = flag.Float64("rate", 2.0, "steady events per second")
		burstEvery = flag.Duration("burst-every", 90*time.Second, "interval between bursts (0 disables)")
		burstSize  = flag.Int("burst-size", 25, "events per burst")
		seed       = flag.Int64("seed", 0, "random seed (0 uses the clock)")
	)
	flag.Parse()

	if *rate <= 0 {
		*rate = 1.0
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))
	logger := log.New(log.Writer(), "event-gen ", log.LstdFlags|log.Lmicroseconds)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := &http.Client{Timeout: 5 * time.Second}

	steady := time.NewTicker(time.Duration(float64(time.Second) / *rate))
	defer steady.Stop()

	var burst <-chan time.Time
	if *burstEvery > 0 {
		burstTicker := time.NewTicker(*burstEvery)
		defer burstTicker.Stop()
		burst = burstTicker.C
	}

	logger.Printf("posting to %s at %.1f events/sec (seed %d)", *target, *rate, *seed)

	sent := 0
	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			logger.Printf("stopping after %d events", sent)
			return
		case <-steady.C:
			if err := postJSON(ctx, client, *target+"/api/v1/events", nextEvent(rng, time.Since(start))); err != nil {
				logger.Printf("post failed: %v", err)
				continue
			}
			sent++
			if sent%50 == 0 {
				logger.Printf("%d events sent", sent)
			}
		case <-burst:
			events := burstEvents(rng, *burstSize)
			if err := postJSON(ctx, client, *target+"/api/v1/events/batch", events); err != nil {
				logger.Printf("burst failed: %v", err)
				continue
			}
			sent += len(events)
			logger.Printf("burst of %d %s events sent", len(events), events[0].Component)
		}
	}
}

// nextEvent picks a random scenario. Response times for timed scenarios
// creep upward with run duration so long sessions eventually trip the
// performance degradation detector.
func nextEvent(rng *rand.Rand, elapsed time.Duration) errorEvent {
	s := scenarios[rng.Intn(len(scenarios))]
	event := errorEvent{
		ErrorCode: s.codes[rng.Intn(len(s.codes))],
		Component: s.component,
		Severity:  s.severities[rng.Intn(len(s.severities))],
	}
	if s.timed {
		rt := (80 + rng.Float64()*40) * (1 + elapsed.Minutes()/30)
		event.ResponseTimeMs = &rt
	}
	return event
}

// burstEvents emits many copies of one error in one component, enough to
// light up the spike monitor and the temporal cluster detector.
func burstEvents(rng *rand.Rand, size int) []errorEvent {
	if size < 1 {
		size = 1
	}
	s := scenarios[rng.Intn(len(scenarios))]
	code := s.codes[rng.Intn(len(s.codes))]
	events := make([]errorEvent, size)
	for i := range events {
		events[i] = errorEvent{ErrorCode: code, Component: s.component, Severity: "error"}
	}
	return events
}

func postJSON(ctx context.Context, client *http.Client, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return nil
}
