package netstate

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/mesh-intelligence/notesync/pkg/types"
)

// probeTimeout caps a single health request.
const probeTimeout = 5 * time.Second

var _ types.Connectivity = (*ProbeObserver)(nil)

// HealthURL derives the health endpoint from the remote base URL by
// replacing its path with /health.
func HealthURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	u.Path = "/health"
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// ProbeObserver polls a health endpoint. A transport failure means
// disconnected; a non-2xx answer means connected but unreachable.
type ProbeObserver struct {
	url      string
	interval time.Duration
	http     *http.Client
	logger   *slog.Logger
	subs     handlers

	mu   sync.Mutex
	last types.NetState
	stop context.CancelFunc
	wg   sync.WaitGroup
}

// NewProbeObserver returns an observer polling healthURL every interval.
func NewProbeObserver(healthURL string, interval time.Duration, opts ...Option) *ProbeObserver {
	o := buildOptions(opts)
	if interval <= 0 {
		interval = types.DefaultProbeInterval
	}
	return &ProbeObserver{url: healthURL, interval: interval, http: o.http, logger: o.logger}
}

// Current implements types.Connectivity by probing once.
func (p *ProbeObserver) Current(ctx context.Context) (types.NetState, error) {
	return p.probe(ctx), nil
}

// OnChange implements types.Connectivity.
func (p *ProbeObserver) OnChange(fn func(types.NetState)) func() {
	return p.subs.add(fn)
}

// Start begins polling. Handlers are notified when a probe result differs
// from the previous one.
func (p *ProbeObserver) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		return ErrObserverRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	p.stop = cancel
	p.last = p.probe(ctx)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		t := time.NewTicker(p.interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				p.poll(ctx)
			}
		}
	}()
	return nil
}

// Close stops polling.
func (p *ProbeObserver) Close() error {
	p.mu.Lock()
	stop := p.stop
	p.stop = nil
	p.mu.Unlock()
	if stop != nil {
		stop()
		p.wg.Wait()
	}
	return nil
}

func (p *ProbeObserver) poll(ctx context.Context) {
	st := p.probe(ctx)
	if ctx.Err() != nil {
		return
	}
	p.mu.Lock()
	changed := st != p.last
	p.last = st
	p.mu.Unlock()
	if changed {
		p.logger.Debug("probe state changed", "online", st.Online())
		p.subs.notify(st)
	}
}

func (p *ProbeObserver) probe(ctx context.Context) types.NetState {
	ctx, cancel := context.WithTimeout(ctx, min(p.interval, probeTimeout))
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		p.logger.Warn("build probe request", "url", p.url, "error", err)
		return types.NetState{Kind: types.NetKindNone}
	}
	resp, err := p.http.Do(req)
	if err != nil {
		p.logger.Debug("probe failed", "url", p.url, "error", err)
		return types.NetState{Kind: types.NetKindNone}
	}
	resp.Body.Close()

	ok := resp.StatusCode >= 200 && resp.StatusCode <= 299
	return types.NetState{Connected: true, Reachable: ok, Kind: types.NetKindHTTP}
}
