// Copyright (c) 2026 Fedisearch. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package lemmy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/temoto/robotstxt"
	"golang.org/x/time/rate"

	"github.com/buivan/fedisearch/internal/platform/apperr"
	"github.com/buivan/fedisearch/internal/platform/constants"
)

// maxResponseBytes bounds how much of an upstream response body is read.
const maxResponseBytes = 8 << 20

/*
Fetcher binds an HTTP client to one instance hostname.

Every request carries the configured user agent and is paced by a
per-instance limiter so a crawl never hammers its target. Transport
failures, non-2xx statuses, and undecodable bodies all surface as
NETWORK_ERROR; the caller decides the retry policy.
*/
type Fetcher struct {
	instance  string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// NewFetcher creates a Fetcher for the given instance hostname.
func NewFetcher(client *http.Client, instance, userAgent string, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		instance:  instance,
		userAgent: userAgent,
		client:    client,
		limiter:   rate.NewLimiter(rate.Every(constants.FetchInterval), 1),
		logger:    logger,
	}
}

// Instance returns the hostname this Fetcher is bound to.
func (fetcher *Fetcher) Instance() string {
	return fetcher.instance
}

// CanCrawl fetches /robots.txt and reports whether the configured user agent
// may access the root path.
func (fetcher *Fetcher) CanCrawl(ctx context.Context) (bool, error) {
	body, status, err := fetcher.get(ctx, fetcher.url("/robots.txt"))
	if err != nil {
		return false, apperr.Network("fetch_robots_txt", err)
	}

	// 4xx means no robots policy (allow), 5xx means unreachable (disallow).
	robots, err := robotstxt.FromStatusAndBytes(status, body)
	if err != nil {
		return false, apperr.Network("parse_robots_txt", err)
	}

	return robots.TestAgent("/", fetcher.userAgent), nil
}

// Site fetches the instance's own metadata.
func (fetcher *Fetcher) Site(ctx context.Context) (*SiteResponse, error) {
	response, err := fetchJSON[SiteResponse](ctx, fetcher, "/api/v3/site", nil)
	if err != nil {
		return nil, apperr.Network("fetch_site", err)
	}

	return &response, nil
}

// FederatedInstances fetches the peers this instance federates with.
func (fetcher *Fetcher) FederatedInstances(ctx context.Context) (*FederatedInstancesResponse, error) {
	response, err := fetchJSON[FederatedInstancesResponse](ctx, fetcher, "/api/v3/federated_instances", nil)
	if err != nil {
		return nil, apperr.Network("fetch_federated_instances", err)
	}

	return &response, nil
}

// Posts fetches one page of the instance's post listing, oldest first.
//
// sort=Old keeps the paging stable: older posts never shift pages as new
// ones arrive.
func (fetcher *Fetcher) Posts(ctx context.Context, page int) ([]PostData, error) {
	params := url.Values{}
	params.Set("type_", "All")
	params.Set("sort", "Old")
	params.Set("limit", strconv.Itoa(constants.PostPageLimit))
	params.Set("page", strconv.Itoa(page))

	response, err := fetchJSON[PostListResponse](ctx, fetcher, "/api/v3/post/list", params)
	if err != nil {
		return nil, apperr.Network("fetch_posts", err)
	}

	return response.Posts, nil
}

// url joins the instance hostname with an absolute path.
func (fetcher *Fetcher) url(path string) string {
	return "https://" + fetcher.instance + path
}

// get performs a paced, deadline-bound GET and returns the body and status.
func (fetcher *Fetcher) get(ctx context.Context, rawURL string) ([]byte, int, error) {

	// 1. Respect the pacing limiter before touching the network
	if err := fetcher.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	fetcher.logger.Debug("connecting", slog.String("url", rawURL))

	// 2. Bound the whole request by the fetch deadline
	ctx, cancel := context.WithTimeout(ctx, constants.FetchTimeout)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, err
	}
	request.Header.Set("User-Agent", fetcher.userAgent)
	request.Header.Set("Accept", "application/json")

	// 3. Execute and drain the capped body
	response, err := fetcher.client.Do(request)
	if err != nil {
		return nil, 0, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return nil, 0, err
	}

	return body, response.StatusCode, nil
}

// fetchJSON performs a GET against path and decodes the JSON response.
func fetchJSON[R any](ctx context.Context, fetcher *Fetcher, path string, params url.Values) (R, error) {
	var decoded R

	rawURL := fetcher.url(path)
	if len(params) > 0 {
		rawURL += "?" + params.Encode()
	}

	body, status, err := fetcher.get(ctx, rawURL)
	if err != nil {
		return decoded, err
	}

	if status < 200 || status >= 300 {
		return decoded, fmt.Errorf("unexpected status %d", status)
	}

	if err := json.Unmarshal(body, &decoded); err != nil {
		return decoded, err
	}

	return decoded, nil
}
