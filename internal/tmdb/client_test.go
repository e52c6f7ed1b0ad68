package tmdb_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JonMunkholm/listimport/internal/core"
	"github.com/JonMunkholm/listimport/internal/tmdb"
)

func newClient(t *testing.T, srv *httptest.Server, opts ...tmdb.Option) *tmdb.Client {
	t.Helper()
	opts = append([]tmdb.Option{tmdb.WithHTTPClient(srv.Client())}, opts...)
	client, err := tmdb.New("test-key", srv.URL, "en-US", opts...)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestNewRequiresKeyAndURL(t *testing.T) {
	if _, err := tmdb.New("", "https://api.themoviedb.org/3", "en-US"); err == nil {
		t.Fatal("expected error for empty api key")
	}
	if _, err := tmdb.New("key", "  ", "en-US"); err == nil {
		t.Fatal("expected error for empty base url")
	}
}

func TestFindByIMDbID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/find/tt1375666" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("external_source") != "imdb_id" {
			t.Fatalf("expected external_source=imdb_id, got %q", q.Get("external_source"))
		}
		if q.Get("api_key") != "test-key" {
			t.Fatalf("expected api key, got %q", q.Get("api_key"))
		}
		if q.Get("language") != "en-US" {
			t.Fatalf("expected language en-US, got %q", q.Get("language"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"movie_results":[{"id":27205,"title":"Inception","release_date":"2010-07-15","poster_path":"/p.jpg","backdrop_path":"/b.jpg"}],
			"tv_results":[],
			"person_results":[{"id":1}]
		}`))
	}))
	defer srv.Close()

	resp, err := newClient(t, srv).FindByIMDbID(context.Background(), "tt1375666")
	if err != nil {
		t.Fatalf("FindByIMDbID returned error: %v", err)
	}
	if len(resp.MovieResults) != 1 || resp.MovieResults[0].ID != 27205 {
		t.Fatalf("unexpected movie results: %#v", resp.MovieResults)
	}
	if len(resp.TVResults) != 0 {
		t.Fatalf("expected no tv results, got %d", len(resp.TVResults))
	}
}

func TestFindByIMDbIDRejectsEmpty(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	if _, err := newClient(t, srv).FindByIMDbID(context.Background(), " "); err == nil {
		t.Fatal("expected error for empty id")
	}
	if hits.Load() != 0 {
		t.Fatalf("expected no request, got %d", hits.Load())
	}
}

func TestLookupByForeignIDMapsMatches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"movie_results":[{"id":27205,"title":"Inception","release_date":"2010-07-15","poster_path":"/m.jpg"}],
			"tv_results":[{"id":1396,"name":"Breaking Bad","first_air_date":"2008-01-20","backdrop_path":"/t.jpg"}]
		}`))
	}))
	defer srv.Close()

	matches, err := newClient(t, srv).LookupByForeignID(context.Background(), "tt0903747")
	if err != nil {
		t.Fatalf("LookupByForeignID returned error: %v", err)
	}

	if len(matches.Movies) != 1 || len(matches.Series) != 1 {
		t.Fatalf("unexpected matches: %#v", matches)
	}
	movie := matches.Movies[0]
	if movie.CanonicalID != 27205 || movie.Kind != core.KindMovie || movie.Title != "Inception" || movie.Date != "2010-07-15" || movie.PosterPath != "/m.jpg" {
		t.Fatalf("unexpected movie match: %#v", movie)
	}
	show := matches.Series[0]
	if show.CanonicalID != 1396 || show.Kind != core.KindTV || show.Title != "Breaking Bad" || show.Date != "2008-01-20" || show.BackdropPath != "/t.jpg" {
		t.Fatalf("unexpected series match: %#v", show)
	}
}

func TestFetchDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/movie/550":
			_, _ = w.Write([]byte(`{"id":550,"title":"Fight Club","release_date":"1999-10-15","poster_path":"/fc.jpg"}`))
		case "/tv/1396":
			_, _ = w.Write([]byte(`{"id":1396,"name":"Breaking Bad","first_air_date":"2008-01-20"}`))
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := newClient(t, srv)
	ctx := context.Background()

	movie, err := client.FetchDetail(ctx, 550, core.KindMovie)
	if err != nil {
		t.Fatalf("FetchDetail movie returned error: %v", err)
	}
	if movie.Title != "Fight Club" || movie.Date != "1999-10-15" || movie.PosterPath != "/fc.jpg" || movie.Kind != core.KindMovie {
		t.Fatalf("unexpected movie detail: %#v", movie)
	}

	show, err := client.FetchDetail(ctx, 1396, core.KindTV)
	if err != nil {
		t.Fatalf("FetchDetail tv returned error: %v", err)
	}
	if show.Title != "Breaking Bad" || show.Date != "2008-01-20" || show.Kind != core.KindTV {
		t.Fatalf("unexpected tv detail: %#v", show)
	}

	if _, err := client.FetchDetail(ctx, 1, core.MediaKind("podcast")); err == nil {
		t.Fatal("expected error for unsupported kind")
	}
	if _, err := client.GetMovieDetails(ctx, 0); err == nil {
		t.Fatal("expected error for zero id")
	}
}

func TestStatusClassification(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, tmdb.ErrNotFound},
		{http.StatusUnauthorized, tmdb.ErrUnauthorized},
		{http.StatusTooManyRequests, tmdb.ErrRateLimited},
		{http.StatusServiceUnavailable, tmdb.ErrServer},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := newClient(t, srv).GetMovieDetails(context.Background(), 27205)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var apiErr *tmdb.Error
			if !errors.As(err, &apiErr) || apiErr.Status != tt.status {
				t.Fatalf("expected *tmdb.Error with status %d, got %#v", tt.status, err)
			}
			if strings.Contains(err.Error(), "test-key") {
				t.Fatalf("error leaks api key: %v", err)
			}
		})
	}
}

func TestNotFoundIsCatalogNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := newClient(t, srv).FetchDetail(context.Background(), 999, core.KindTV)
	if !errors.Is(err, core.ErrCatalogNotFound) {
		t.Fatalf("expected core.ErrCatalogNotFound, got %v", err)
	}
}

func TestDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	if _, err := newClient(t, srv).GetTVDetails(context.Background(), 1396); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestRateLimitWaitsOnContext(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"movie_results":[],"tv_results":[]}`))
	}))
	defer srv.Close()

	client := newClient(t, srv, tmdb.WithRateLimit(0.5, 1))

	if _, err := client.FindByIMDbID(context.Background(), "tt0000001"); err != nil {
		t.Fatalf("first request returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := client.FindByIMDbID(ctx, "tt0000002"); err == nil {
		t.Fatal("expected second request to fail waiting for a token")
	}
	if hits.Load() != 1 {
		t.Fatalf("expected one request to reach the server, got %d", hits.Load())
	}
}
