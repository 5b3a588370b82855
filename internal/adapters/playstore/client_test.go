package playstore_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"bank_reviews/internal/adapters/playstore"
	"bank_reviews/internal/domain"
)

func TestClient_FetchReviews_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			w.WriteHeader(500)
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{
				"reviews": []map[string]any{{"userName": "abebe", "score": 5.0, "content": "good"}},
			})
		}
	}))
	defer ts.Close()

	cl, err := playstore.New(ts.URL, "test-key", playstore.Options{RPS: 100})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	got, err := cl.FetchReviews(ctx, "com.example", 10)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 1 || got[0]["userName"] != "abebe" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestClient_FetchReviews_Paginates(t *testing.T) {
	var (
		mu     sync.Mutex
		tokens []string
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/apps/com.example/reviews" || r.URL.Query().Get("sort") != "newest" {
			t.Errorf("unexpected request %s", r.URL)
		}
		tok := r.URL.Query().Get("token")
		mu.Lock()
		tokens = append(tokens, tok)
		mu.Unlock()
		n, _ := strconv.Atoi(r.URL.Query().Get("count"))
		start := 0
		if tok != "" {
			start, _ = strconv.Atoi(tok)
		}
		var revs []map[string]any
		for i := 0; i < min(n, 2); i++ {
			revs = append(revs, map[string]any{"reviewId": fmt.Sprint(start + i)})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"reviews": revs, "nextToken": strconv.Itoa(start + len(revs))})
	}))
	defer ts.Close()

	cl, _ := playstore.New(ts.URL, "", playstore.Options{RPS: 100})
	got, err := cl.FetchReviews(context.Background(), "com.example", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d reviews, want 5", len(got))
	}
	mu.Lock()
	defer mu.Unlock()
	if len(tokens) != 3 || tokens[0] != "" || tokens[1] != "2" || tokens[2] != "4" {
		t.Fatalf("tokens = %q", tokens)
	}
	if got[4]["reviewId"] != "4" {
		t.Fatalf("last review = %+v", got[4])
	}
}

func TestClient_FetchReviews_404(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	cl, err := playstore.New(ts.URL, "test-key", playstore.Options{RPS: 100})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err = cl.FetchReviews(ctx, "missing.app", 10)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNew_RequiresBase(t *testing.T) {
	if _, err := playstore.New("", "", playstore.Options{}); err == nil {
		t.Fatal("expected error for empty base URL")
	}
}
