package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiril6/users-directory/internal/directory/models"
	"github.com/kiril6/users-directory/internal/directory/source/cache"
	"github.com/kiril6/users-directory/pkg/sentinel"
)

func pageBody(t *testing.T, firstNames []string, page, size int) []byte {
	t.Helper()
	p := Page{Info: PageInfo{Seed: "test-seed", Page: page, Results: size}}
	for i, name := range firstNames {
		var raw models.RawRecord
		raw.Name.First = name
		raw.Login.UUID = name + "-uuid"
		raw.DOB.Age = 20 + i
		p.Results = append(p.Results, raw)
	}
	body, err := json.Marshal(p)
	require.NoError(t, err)
	return body
}

func TestClient_FetchPageDecodesAndPassesParams(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"page":    r.URL.Query().Get("page"),
			"results": r.URL.Query().Get("results"),
			"seed":    r.URL.Query().Get("seed"),
		}
		w.Write(pageBody(t, []string{"Anna", "Ben"}, 2, 2))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-seed")
	raws, err := c.FetchPage(context.Background(), 2, 2)
	require.NoError(t, err)
	require.Len(t, raws, 2)
	assert.Equal(t, "Anna", raws[0].Name.First)
	assert.Equal(t, map[string]string{"page": "2", "results": "2", "seed": "test-seed"}, gotQuery)
}

func TestClient_Status429IsRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "s")
	_, err := c.FetchPage(context.Background(), 1, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrRateLimited)
}

func TestClient_ErrorPayloadMarkerIsRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Some upstreams throttle with a 200 and an error body.
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Too Many Requests: you have exceeded your quota",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "s")
	_, err := c.FetchPage(context.Background(), 1, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrRateLimited)
}

func TestClient_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "s")
	_, err := c.FetchPage(context.Background(), 1, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	assert.NotErrorIs(t, err, sentinel.ErrRateLimited)
}

func TestClient_MalformedBodyIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "s")
	_, err := c.FetchPage(context.Background(), 1, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
}

func TestClient_CacheHitBypassesUpstream(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write(pageBody(t, []string{"Anna"}, 1, 1))
	}))
	defer srv.Close()

	store := cache.NewInMemoryStore()
	c := NewClient(srv.URL, "test-seed", WithCache(store))
	ctx := context.Background()

	_, err := c.FetchPage(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	again, err := c.FetchPage(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "second fetch must be served from the cache")
	require.Len(t, again, 1)
	assert.Equal(t, "Anna", again[0].Name.First)
}

type failingCache struct{}

func (failingCache) GetPage(context.Context, string) ([]models.RawRecord, error) {
	return nil, assert.AnError
}

func (failingCache) PutPage(context.Context, string, []models.RawRecord) error {
	return assert.AnError
}

func TestClient_CacheFailureIsTreatedAsMiss(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pageBody(t, []string{"Anna"}, 1, 1))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "s", WithCache(failingCache{}))
	raws, err := c.FetchPage(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Len(t, raws, 1)
}
