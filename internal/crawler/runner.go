// Copyright (c) 2026 Fedisearch. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package crawler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/buivan/fedisearch/internal/core/site"
	"github.com/buivan/fedisearch/internal/index"
	"github.com/buivan/fedisearch/internal/lemmy"
	"github.com/buivan/fedisearch/internal/platform/config"
)

// Runner schedules crawl passes over every known instance.
//
// The known set starts from the configured seed plus every instance already
// registered in storage, and widens during a pass as crawls report their
// federation peers. Each instance is crawled at most once per pass.
type Runner struct {
	cfg      config.Crawler
	client   *http.Client
	sites    *site.Service
	ingestor *index.Ingestor
	logger   *slog.Logger

	mu    sync.Mutex
	seen  map[string]struct{}
	queue []string

	trigger chan struct{}
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewRunner creates a Runner. Start must be called to begin crawling.
func NewRunner(cfg config.Crawler, client *http.Client, sites *site.Service, ingestor *index.Ingestor, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:      cfg,
		client:   client,
		sites:    sites,
		ingestor: ingestor,
		logger:   logger,
		trigger:  make(chan struct{}, 1),
	}
}

// Start launches the supervisor: one pass immediately, then one per tick.
func (runner *Runner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	runner.cancel = cancel
	runner.done = make(chan struct{})

	go runner.supervise(ctx)
}

// Stop requests cancellation and waits for in-flight crawls to finish their
// current page.
func (runner *Runner) Stop() {
	runner.cancel()
	<-runner.done
}

// Trigger requests an immediate pass without waiting for the next tick.
// Requests arriving while a pass runs coalesce into a single extra pass.
func (runner *Runner) Trigger() {
	select {
	case runner.trigger <- struct{}{}:
	default:
	}
}

func (runner *Runner) supervise(ctx context.Context) {
	defer close(runner.done)

	ticker := time.NewTicker(runner.cfg.PassInterval)
	defer ticker.Stop()

	runner.pass(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runner.pass(ctx)
		case <-runner.trigger:
			runner.pass(ctx)
		}
	}
}

/*
pass crawls every known instance once.

Description: The queue starts with the seed and the hostnames of all stored
sites, then grows as crawls report federation peers. Hosts are taken FIFO
with at most MaxParallel crawls in flight. The pass ends when the queue
stays empty after all in-flight crawls have finished, or when cancellation
is requested.

Parameters:
  - ctx: context.Context
*/
func (runner *Runner) pass(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	started := time.Now()
	runner.logger.Info("crawl_pass_started", slog.String("seed", runner.cfg.SeedInstance))

	// 1. Reset the queue for this pass
	runner.mu.Lock()
	runner.seen = make(map[string]struct{})
	runner.queue = nil
	runner.mu.Unlock()

	runner.enqueue(append([]string{runner.cfg.SeedInstance}, runner.storedHosts(ctx)...))

	// 2. Drain the queue with bounded parallelism
	var group errgroup.Group
	group.SetLimit(runner.cfg.MaxParallel)

	for {
		host, ok := runner.next()
		if !ok {
			// Wait for in-flight crawls; they may still report peers.
			_ = group.Wait()
			if host, ok = runner.next(); !ok {
				break
			}
		}

		if ctx.Err() != nil {
			break
		}

		group.Go(func() error {
			runner.crawlOne(ctx, host)
			return nil
		})
	}

	_ = group.Wait()

	runner.mu.Lock()
	crawled := len(runner.seen)
	runner.mu.Unlock()

	runner.logger.Info("crawl_pass_finished",
		slog.Int("instances", crawled),
		slog.Duration("elapsed", time.Since(started)),
	)
}

// crawlOne runs a single instance's pass and feeds discovered peers back
// into the queue.
func (runner *Runner) crawlOne(ctx context.Context, host string) {
	fetcher := lemmy.NewFetcher(runner.client, host, runner.cfg.UserAgent, runner.logger)
	crawler := New(fetcher, runner.sites, runner.ingestor, runner.cfg.Backoff, runner.logger)

	peers, err := crawler.Crawl(ctx)
	if err != nil {
		runner.logger.Error("crawl_pass_failed",
			slog.String("instance", host),
			slog.String("error", err.Error()),
		)
	}

	runner.enqueue(peers)
}

// enqueue adds hostnames not yet seen this pass to the FIFO queue.
func (runner *Runner) enqueue(hosts []string) {
	runner.mu.Lock()
	defer runner.mu.Unlock()

	for _, host := range hosts {
		if host == "" {
			continue
		}
		if _, ok := runner.seen[host]; ok {
			continue
		}
		runner.seen[host] = struct{}{}
		runner.queue = append(runner.queue, host)
	}
}

// next pops the oldest queued hostname.
func (runner *Runner) next() (string, bool) {
	runner.mu.Lock()
	defer runner.mu.Unlock()

	if len(runner.queue) == 0 {
		return "", false
	}

	host := runner.queue[0]
	runner.queue = runner.queue[1:]
	return host, true
}

// storedHosts lists the hostnames of every instance registered in storage,
// so a restarted crawler reaches instances the seed no longer links to.
func (runner *Runner) storedHosts(ctx context.Context) []string {
	sites, err := runner.sites.All(ctx)
	if err != nil {
		runner.logger.Warn("known_instances_unavailable", slog.String("error", err.Error()))
		return nil
	}

	hosts := make([]string, 0, len(sites))
	for _, s := range sites {
		parsed, err := url.Parse(s.ActorID)
		if err != nil || parsed.Host == "" {
			continue
		}
		hosts = append(hosts, parsed.Host)
	}
	return hosts
}
