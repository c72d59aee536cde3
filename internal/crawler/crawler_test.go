// Copyright (c) 2026 Fedisearch. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package crawler_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buivan/fedisearch/internal/core/site"
	"github.com/buivan/fedisearch/internal/crawler"
	"github.com/buivan/fedisearch/internal/index"
	"github.com/buivan/fedisearch/internal/lemmy"
	"github.com/buivan/fedisearch/internal/platform/apperr"
	"github.com/buivan/fedisearch/internal/platform/postgres"
	"github.com/buivan/fedisearch/pkg/pointer"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// hostTransport sends every request to the test server while preserving the
// instance hostname in the Host header, so one server can play a whole
// federation.
type hostTransport struct {
	target *url.URL
}

func (transport hostTransport) RoundTrip(request *http.Request) (*http.Response, error) {
	clone := request.Clone(request.Context())
	clone.Host = request.URL.Host
	clone.URL.Scheme = transport.target.Scheme
	clone.URL.Host = transport.target.Host
	return http.DefaultTransport.RoundTrip(clone)
}

// fakeInstance serves the minimal upstream surface of one instance.
type fakeInstance struct {
	host   string
	name   string
	robots string // body of /robots.txt, 404 when empty
	peers  []string
	pages  map[int][]lemmy.PostData

	mu    sync.Mutex
	flaky int // 502s to serve on the listing before succeeding
	hits  []string
}

func (instance *fakeInstance) actorID() string {
	return "https://" + instance.host + "/"
}

func (instance *fakeInstance) handle(writer http.ResponseWriter, request *http.Request) {
	instance.mu.Lock()
	instance.hits = append(instance.hits, request.URL.RequestURI())
	instance.mu.Unlock()

	switch request.URL.Path {
	case "/robots.txt":
		if instance.robots == "" {
			http.NotFound(writer, request)
			return
		}
		_, _ = writer.Write([]byte(instance.robots))

	case "/api/v3/site":
		writeJSON(writer, lemmy.SiteResponse{
			SiteView: lemmy.SiteView{Site: lemmy.Site{ActorID: instance.actorID(), Name: instance.name}},
		})

	case "/api/v3/federated_instances":
		linked := make([]lemmy.Instance, 0, len(instance.peers))
		for _, peer := range instance.peers {
			linked = append(linked, lemmy.Instance{Domain: peer})
		}
		writeJSON(writer, lemmy.FederatedInstancesResponse{
			FederatedInstances: lemmy.FederatedInstances{Linked: linked},
		})

	case "/api/v3/post/list":
		instance.mu.Lock()
		if instance.flaky > 0 {
			instance.flaky--
			instance.mu.Unlock()
			http.Error(writer, "bad gateway", http.StatusBadGateway)
			return
		}
		instance.mu.Unlock()

		page, _ := strconv.Atoi(request.URL.Query().Get("page"))
		writeJSON(writer, lemmy.PostListResponse{Posts: instance.pages[page]})

	default:
		http.NotFound(writer, request)
	}
}

func (instance *fakeInstance) hitCount(path string) int {
	instance.mu.Lock()
	defer instance.mu.Unlock()

	count := 0
	for _, hit := range instance.hits {
		if strings.HasPrefix(hit, path) {
			count++
		}
	}
	return count
}

func (instance *fakeInstance) listingPages() []string {
	instance.mu.Lock()
	defer instance.mu.Unlock()

	var pages []string
	for _, hit := range instance.hits {
		if !strings.HasPrefix(hit, "/api/v3/post/list") {
			continue
		}
		parsed, err := url.ParseRequestURI(hit)
		if err != nil {
			continue
		}
		pages = append(pages, parsed.Query().Get("page"))
	}
	return pages
}

func writeJSON(writer http.ResponseWriter, payload any) {
	writer.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(writer).Encode(payload)
}

// fakeFederation routes requests to instances by Host header.
type fakeFederation struct {
	instances map[string]*fakeInstance
}

func (federation *fakeFederation) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	instance, ok := federation.instances[request.Host]
	if !ok {
		http.NotFound(writer, request)
		return
	}
	instance.handle(writer, request)
}

func federationClient(t *testing.T, instances ...*fakeInstance) *http.Client {
	t.Helper()

	byHost := make(map[string]*fakeInstance, len(instances))
	for _, instance := range instances {
		byHost[instance.host] = instance
	}

	server := httptest.NewServer(&fakeFederation{instances: byHost})
	t.Cleanup(server.Close)

	target, err := url.Parse(server.URL)
	require.NoError(t, err)

	return &http.Client{Transport: hostTransport{target: target}}
}

// memorySites is an in-memory site.Repository.
type memorySites struct {
	mu         sync.Mutex
	registered map[string]string
	cursors    map[string]int
}

func newMemorySites() *memorySites {
	return &memorySites{
		registered: make(map[string]string),
		cursors:    make(map[string]int),
	}
}

func (store *memorySites) Register(_ context.Context, actorID, name string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.registered[actorID] = name
	if _, ok := store.cursors[actorID]; !ok {
		store.cursors[actorID] = 0
	}
	return nil
}

func (store *memorySites) All(context.Context) ([]*site.Site, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	var sites []*site.Site
	for actorID, name := range store.registered {
		sites = append(sites, &site.Site{
			ActorID:      actorID,
			Name:         name,
			LastPostPage: store.cursors[actorID],
		})
	}
	return sites, nil
}

func (store *memorySites) LastPostPage(_ context.Context, actorID string) (int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.cursors[actorID], nil
}

func (store *memorySites) SetLastPostPage(_ context.Context, actorID string, page int) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.cursors[actorID] = page
	return nil
}

func (store *memorySites) cursor(actorID string) int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.cursors[actorID]
}

func (store *memorySites) name(actorID string) (string, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()
	name, ok := store.registered[actorID]
	return name, ok
}

func newTestCrawler(t *testing.T, instance *fakeInstance, sites *memorySites, db postgres.Querier) *crawler.Crawler {
	t.Helper()

	client := federationClient(t, instance)
	fetcher := lemmy.NewFetcher(client, instance.host, "fedisearch-crawler/0.1", discardLogger())
	service := site.NewService(sites, discardLogger())
	ingestor := index.NewIngestor(db, discardLogger())

	return crawler.New(fetcher, service, ingestor, time.Millisecond, discardLogger())
}

func listingFixture() []lemmy.PostData {
	published := lemmy.Time{Time: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	author := lemmy.Person{ActorID: "https://a.example/u/beekeeper", Name: "beekeeper"}
	community := lemmy.Community{ActorID: "https://a.example/c/bees", Name: "bees"}

	return []lemmy.PostData{
		{
			Post: lemmy.Post{
				ID:        7,
				Name:      "Winter feeding guide",
				Body:      pointer.To("Keep bees warm"),
				ApID:      "https://a.example/post/1",
				Published: published,
			},
			Creator:   author,
			Community: community,
			Counts:    lemmy.Counts{Score: 10},
		},
		{
			Post: lemmy.Post{
				ID:        8,
				Name:      "Hive insulation",
				ApID:      "https://a.example/post/2",
				Published: published,
			},
			Creator:   author,
			Community: community,
			Counts:    lemmy.Counts{Score: 3},
		},
	}
}

func expectPageUpserts(mock pgxmock.PgxPoolIface) {
	for _, table := range []string{"authors", "communities", "posts", "lemmy_ids", "words", "words_xref_posts"} {
		mock.ExpectExec("INSERT INTO " + table).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
}

/*
TestCrawler_Crawl_OnePage walks a permissive instance with a single page of
posts: the site is registered, its peers are reported, the page is ingested
in dependency order, and the cursor lands on the ingested page.
*/
func TestCrawler_Crawl_OnePage(t *testing.T) {
	instance := &fakeInstance{
		host:  "a.example",
		name:  "Instance A",
		peers: []string{"b.example"},
		pages: map[int][]lemmy.PostData{1: listingFixture()},
	}

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	expectPageUpserts(mock)

	sites := newMemorySites()
	peers, err := newTestCrawler(t, instance, sites, mock).Crawl(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"b.example"}, peers)

	name, ok := sites.name("https://a.example/")
	require.True(t, ok)
	assert.Equal(t, "Instance A", name)
	assert.Equal(t, 1, sites.cursor("https://a.example/"))

	assert.Equal(t, []string{"1", "2"}, instance.listingPages())
	require.NoError(t, mock.ExpectationsWereMet())
}

/*
TestCrawler_Crawl_RobotsDisallow pins the politeness gate: a disallowing
instance is skipped after the robots fetch, with no further requests and no
index writes.
*/
func TestCrawler_Crawl_RobotsDisallow(t *testing.T) {
	instance := &fakeInstance{
		host:   "closed.example",
		name:   "Closed",
		robots: "User-agent: *\nDisallow: /\n",
		pages:  map[int][]lemmy.PostData{1: listingFixture()},
	}

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	sites := newMemorySites()
	peers, err := newTestCrawler(t, instance, sites, mock).Crawl(context.Background())

	require.NoError(t, err)
	assert.Empty(t, peers)

	_, registered := sites.name("https://closed.example/")
	assert.False(t, registered)

	assert.Equal(t, 1, instance.hitCount("/robots.txt"))
	assert.Zero(t, instance.hitCount("/api/v3/site"))
	assert.Zero(t, instance.hitCount("/api/v3/post/list"))
	require.NoError(t, mock.ExpectationsWereMet())
}

/*
TestCrawler_Crawl_ResumesFromCursor verifies that a pass picks up one page
past the stored cursor and leaves the cursor alone when that page is empty.
*/
func TestCrawler_Crawl_ResumesFromCursor(t *testing.T) {
	instance := &fakeInstance{host: "a.example", name: "Instance A"}

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	sites := newMemorySites()
	require.NoError(t, sites.Register(context.Background(), "https://a.example/", "Instance A"))
	require.NoError(t, sites.SetLastPostPage(context.Background(), "https://a.example/", 3))

	_, err = newTestCrawler(t, instance, sites, mock).Crawl(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"4"}, instance.listingPages())
	assert.Equal(t, 3, sites.cursor("https://a.example/"))
	require.NoError(t, mock.ExpectationsWereMet())
}

/*
TestCrawler_Crawl_RetriesTransientFailures lets the listing fail twice with
a 502 before succeeding; the pass completes after backoff instead of
aborting.
*/
func TestCrawler_Crawl_RetriesTransientFailures(t *testing.T) {
	instance := &fakeInstance{host: "a.example", name: "Instance A", flaky: 2}

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	sites := newMemorySites()
	_, err = newTestCrawler(t, instance, sites, mock).Crawl(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, instance.hitCount("/api/v3/post/list"))
}

func TestCrawler_Crawl_PersistentFailureEndsPass(t *testing.T) {
	instance := &fakeInstance{host: "a.example", name: "Instance A", flaky: 100}

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	sites := newMemorySites()
	_, err = newTestCrawler(t, instance, sites, mock).Crawl(context.Background())

	require.Error(t, err)
	assert.True(t, apperr.IsNetwork(err))

	// Initial attempt plus the bounded retries
	assert.Equal(t, 4, instance.hitCount("/api/v3/post/list"))
	assert.Zero(t, sites.cursor("https://a.example/"))
}

/*
TestCrawler_Crawl_DatabaseFailureAborts injects a failure on the first
upsert: the pass ends immediately, the cursor stays put, and no further
page is fetched.
*/
func TestCrawler_Crawl_DatabaseFailureAborts(t *testing.T) {
	instance := &fakeInstance{
		host:  "a.example",
		name:  "Instance A",
		pages: map[int][]lemmy.PostData{1: listingFixture()},
	}

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	mock.ExpectExec("INSERT INTO authors").WillReturnError(assert.AnError)

	sites := newMemorySites()
	_, err = newTestCrawler(t, instance, sites, mock).Crawl(context.Background())

	require.Error(t, err)
	assert.Equal(t, apperr.CodeDatabase, apperr.CodeOf(err))
	assert.Zero(t, sites.cursor("https://a.example/"))
	assert.Equal(t, []string{"1"}, instance.listingPages())
}
