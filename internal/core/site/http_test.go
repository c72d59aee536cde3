package site_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buivan/fedisearch/internal/core/site"
)

type stubRepository struct {
	sites []*site.Site
}

func (stub *stubRepository) Register(context.Context, string, string) error { return nil }

func (stub *stubRepository) All(context.Context) ([]*site.Site, error) { return stub.sites, nil }

func (stub *stubRepository) LastPostPage(context.Context, string) (int, error) { return 0, nil }

func (stub *stubRepository) SetLastPostPage(context.Context, string, int) error { return nil }

func newInstancesServer(sites []*site.Site) *httptest.Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := site.NewService(&stubRepository{sites: sites}, logger)

	router := chi.NewRouter()
	site.NewHandler(service).RegisterRoutes(router)
	return httptest.NewServer(router)
}

/*
TestHandler_ListInstances verifies the wire shape of /instances: an array of
site objects carrying just the fields the instance picker reads.
*/
func TestHandler_ListInstances(t *testing.T) {
	server := newInstancesServer([]*site.Site{
		{ActorID: "https://a.example/", Name: "Instance A"},
		{ActorID: "https://b.example/", Name: "Instance B"},
	})
	defer server.Close()

	response, err := http.Get(server.URL + "/instances")
	require.NoError(t, err)
	defer response.Body.Close()

	require.Equal(t, http.StatusOK, response.StatusCode)

	var payload []site.InstanceView
	require.NoError(t, json.NewDecoder(response.Body).Decode(&payload))
	require.Len(t, payload, 2)
	assert.Equal(t, "https://a.example/", payload[0].Site.ActorID)
	assert.Equal(t, "Instance B", payload[1].Site.Name)
}

/*
TestHandler_ListInstances_Empty pins the empty case to a JSON array, not
null. The UI iterates the body unconditionally.
*/
func TestHandler_ListInstances_Empty(t *testing.T) {
	server := newInstancesServer(nil)
	defer server.Close()

	response, err := http.Get(server.URL + "/instances")
	require.NoError(t, err)
	defer response.Body.Close()

	require.Equal(t, http.StatusOK, response.StatusCode)

	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(body))
}
