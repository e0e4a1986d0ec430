package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kiril6/users-directory/internal/directory"
	"github.com/kiril6/users-directory/internal/directory/grouping"
	"github.com/kiril6/users-directory/internal/directory/models"
	"github.com/kiril6/users-directory/internal/directory/pagination"
	"github.com/kiril6/users-directory/internal/directory/source"
)

// upstream serves one small fixed page so pagination terminates immediately.
func upstream(t *testing.T) *httptest.Server {
	t.Helper()
	firstNames := []string{"Anna", "Ben", "Annika"}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := source.Page{Info: source.PageInfo{Seed: "test", Page: 1, Results: len(firstNames)}}
		for _, name := range firstNames {
			var raw models.RawRecord
			raw.Name.First = name
			raw.Login.UUID = name + "-uuid"
			raw.Nat = "US"
			raw.Gender = "female"
			page.Results = append(page.Results, raw)
		}
		_ = json.NewEncoder(w).Encode(page)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newDirectoryRouter(t *testing.T) (http.Handler, *directory.Service) {
	t.Helper()
	srv := upstream(t)

	client := source.NewClient(srv.URL, "test")
	pager := pagination.NewController(client, 10)
	grouper := grouping.NewCoordinator(grouping.NewEngine())
	svc := directory.New(pager, grouper, pagination.ContinuationPolicy{},
		directory.WithDebounceWindow(10*time.Millisecond),
	)
	t.Cleanup(svc.Close)

	svc.Start(t.Context())
	return NewRouter(New(svc)), svc
}

func awaitState(t *testing.T, svc *directory.Service, pred func(directory.State) bool) directory.State {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if st := svc.State().Get(); pred(st) {
			return st
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for state, last: %+v", svc.State().Get())
	return directory.State{}
}

func TestGetDirectoryState(t *testing.T) {
	router, svc := newDirectoryRouter(t)
	awaitState(t, svc, func(st directory.State) bool { return len(st.Groups) > 0 })

	req := httptest.NewRequest(http.MethodGet, "/directory/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var st directory.State
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatalf("failed to decode state: %v", err)
	}
	if len(st.Groups) == 0 {
		t.Fatalf("expected groups in resolved state")
	}
	if st.Groups[0].Key != "A" {
		t.Fatalf("expected first group keyed A, got %q", st.Groups[0].Key)
	}
	if st.TotalRecords != 3 {
		t.Fatalf("expected 3 accumulated records, got %d", st.TotalRecords)
	}
}

func TestSearchFlowThroughHandlers(t *testing.T) {
	router, svc := newDirectoryRouter(t)
	awaitState(t, svc, func(st directory.State) bool { return len(st.Groups) > 0 })

	body, _ := json.Marshal(map[string]string{"q": "ann"})
	req := httptest.NewRequest(http.MethodPost, "/directory/search", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}

	st := awaitState(t, svc, func(st directory.State) bool {
		return st.SearchTerm == "ann" && len(st.Groups) == 1
	})
	// Anna and Annika match; Ben does not.
	if st.Groups[0].Count != 2 {
		t.Fatalf("expected 2 matching records, got %d", st.Groups[0].Count)
	}
}

func TestSetCriterionValidation(t *testing.T) {
	router, svc := newDirectoryRouter(t)
	awaitState(t, svc, func(st directory.State) bool { return len(st.Groups) > 0 })

	body, _ := json.Marshal(map[string]string{"criterion": "shoe-size"})
	req := httptest.NewRequest(http.MethodPost, "/directory/criterion", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown criterion, got %d", rec.Code)
	}

	body, _ = json.Marshal(map[string]string{"criterion": "nationality"})
	req = httptest.NewRequest(http.MethodPost, "/directory/criterion", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}

	st := awaitState(t, svc, func(st directory.State) bool {
		return st.Criterion == models.ByNationality && len(st.Groups) == 1
	})
	if st.Groups[0].Label != "United States" {
		t.Fatalf("expected nationality label, got %q", st.Groups[0].Label)
	}
}

func TestLoadMoreAndResetAccepted(t *testing.T) {
	router, _ := newDirectoryRouter(t)

	for _, path := range []string{"/directory/load-more", "/directory/reset"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusAccepted {
			t.Fatalf("expected 202 for %s, got %d", path, rec.Code)
		}
	}
}

func TestMalformedPayloadsRejected(t *testing.T) {
	router, _ := newDirectoryRouter(t)

	for _, path := range []string{"/directory/search", "/directory/criterion"} {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte("{broken")))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", path, rec.Code)
		}
	}
}

func TestHealthz(t *testing.T) {
	router, _ := newDirectoryRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
