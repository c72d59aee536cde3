// Copyright (c) 2026 Fedisearch. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package crawler walks the federation and feeds the index.

Architecture:

  - Crawler: one polite pass over a single instance, robots gate included.
  - Runner: supervises passes across all known instances on a schedule,
    bounded parallelism, FIFO over the discovery queue.

A pass pages through an instance's posts oldest-first, resuming one page
past the last persisted cursor. The cursor only advances after a page is
fully ingested, so a crash re-ingests at most one page and the upserts make
that harmless.
*/
package crawler

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/buivan/fedisearch/internal/core/site"
	"github.com/buivan/fedisearch/internal/index"
	"github.com/buivan/fedisearch/internal/lemmy"
	"github.com/buivan/fedisearch/internal/platform/apperr"
	"github.com/buivan/fedisearch/internal/platform/constants"
)

// Crawler runs one pass over a single instance.
type Crawler struct {
	fetcher  *lemmy.Fetcher
	sites    *site.Service
	ingestor *index.Ingestor
	backoff  time.Duration
	logger   *slog.Logger
}

// New creates a Crawler bound to one instance through its fetcher. The
// backoff duration seeds the retry interval for transient network failures.
func New(fetcher *lemmy.Fetcher, sites *site.Service, ingestor *index.Ingestor, backoff time.Duration, logger *slog.Logger) *Crawler {
	return &Crawler{
		fetcher:  fetcher,
		sites:    sites,
		ingestor: ingestor,
		backoff:  backoff,
		logger:   logger,
	}
}

/*
Crawl runs one pass over the bound instance.

Description: The pass checks robots.txt first; an instance that disallows
the crawler, or whose robots cannot be fetched, is skipped without a single
index write. Otherwise the instance is registered, its federation peers are
collected for the Runner, and post pages are fetched and ingested strictly
in order until an empty page signals the end. The cursor persists after
every ingested page, never on failure, so passes resume where they left off.

Cancellation is honored at page boundaries only. A page that already
started ingesting finishes with its own deadline, keeping the batch and its
cursor consistent with each other.

Parameters:
  - ctx: context.Context

Returns:
  - []string: Hostnames of newly discovered federation peers
  - error: The failure that ended the pass, nil when the pass completed
*/
func (crawler *Crawler) Crawl(ctx context.Context) ([]string, error) {
	instance := crawler.fetcher.Instance()

	// 1. Robots gate. A failed fetch counts as not permitted.
	allowed, err := crawler.fetcher.CanCrawl(ctx)
	if err != nil {
		crawler.logger.Warn("robots_check_failed",
			slog.String("instance", instance),
			slog.String("error", err.Error()),
		)
		return nil, nil
	}
	if !allowed {
		crawler.logger.Info("crawl_not_permitted", slog.String("instance", instance))
		return nil, nil
	}

	// 2. Resolve the instance's own identity and register it
	var siteResponse *lemmy.SiteResponse
	err = crawler.retry(ctx, func() error {
		var err error
		siteResponse, err = crawler.fetcher.Site(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	actorID := siteResponse.SiteView.Site.ActorID
	if err := crawler.sites.Register(ctx, actorID, siteResponse.SiteView.Site.Name); err != nil {
		return nil, err
	}

	// 3. Collect federation peers for the Runner. Peers only widen the
	// crawl, so a persistent failure here does not end the pass.
	var peers []string
	err = crawler.retry(ctx, func() error {
		response, err := crawler.fetcher.FederatedInstances(ctx)
		if err != nil {
			return err
		}
		for _, linked := range response.FederatedInstances.Linked {
			peers = append(peers, linked.Domain)
		}
		return nil
	})
	if err != nil {
		crawler.logger.Warn("federated_instances_unavailable",
			slog.String("instance", instance),
			slog.String("error", err.Error()),
		)
	}

	// 4. Page through the post listing, resuming past the stored cursor
	last, err := crawler.sites.LastPostPage(ctx, actorID)
	if err != nil {
		return peers, err
	}

	for page := last + 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return peers, err
		}

		var posts []lemmy.PostData
		err := crawler.retry(ctx, func() error {
			var err error
			posts, err = crawler.fetcher.Posts(ctx, page)
			return err
		})
		if err != nil {
			return peers, err
		}

		// An empty page ends the pass. The cursor keeps its value so the
		// next pass picks up right here.
		if len(posts) == 0 {
			crawler.logger.Info("pass_complete",
				slog.String("instance", instance),
				slog.Int("pages", page-1-last),
			)
			return peers, nil
		}

		if err := crawler.ingestPage(ctx, actorID, page, posts); err != nil {
			return peers, err
		}
	}
}

// ingestPage writes one page's batch and advances the cursor. It runs
// detached from the pass's cancellation so a stop request cannot leave a
// page half-written ahead of its cursor.
func (crawler *Crawler) ingestPage(ctx context.Context, actorID string, page int, posts []lemmy.PostData) error {
	detached, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.IngestTimeout)
	defer cancel()

	if err := crawler.ingestor.Ingest(detached, actorID, posts); err != nil {
		return err
	}
	return crawler.sites.SetLastPostPage(detached, actorID, page)
}

// retry runs op with exponential backoff on transient network errors. Any
// other failure, database errors included, aborts immediately.
func (crawler *Crawler) retry(ctx context.Context, op func() error) error {
	exponential := backoff.NewExponentialBackOff()
	exponential.InitialInterval = crawler.backoff

	policy := backoff.WithContext(
		backoff.WithMaxRetries(exponential, constants.CrawlMaxRetries), ctx)

	return backoff.Retry(func() error {
		err := op()
		if err != nil && !apperr.IsNetwork(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}
