// Package playstore is a client for a paginated app-store review listing API.
package playstore

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"bank_reviews/internal/adapters/observability"
	"bank_reviews/internal/domain"
)

// maxPage is the largest page the listing API serves.
const maxPage = 200

var (
	ErrUnauthorized = errors.New("playstore: unauthorized")
	ErrForbidden    = errors.New("playstore: forbidden")
)

type Options struct {
	Lang    string
	Country string
	RPS     int
}

type Client struct {
	base string
	hc   *http.Client
	key  string
	opts Options
	rl   *rate.Limiter
}

var _ domain.StoreClient = (*Client)(nil)

func New(base, key string, o Options) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if o.RPS <= 0 {
		o.RPS = 5
	}
	if o.Lang == "" {
		o.Lang = "en"
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		opts: o,
		rl:   rate.NewLimiter(rate.Limit(o.RPS), o.RPS),
	}, nil
}

type page struct {
	Reviews   []map[string]any `json:"reviews"`
	NextToken string           `json:"nextToken"`
}

// FetchReviews returns up to count reviews for appID, newest first,
// following continuation tokens across pages.
func (c *Client) FetchReviews(ctx context.Context, appID string, count int) ([]map[string]any, error) {
	var out []map[string]any
	token := ""
	for len(out) < count {
		q := url.Values{}
		q.Set("lang", c.opts.Lang)
		if c.opts.Country != "" {
			q.Set("country", c.opts.Country)
		}
		q.Set("sort", "newest")
		q.Set("count", strconv.Itoa(min(count-len(out), maxPage)))
		if token != "" {
			q.Set("token", token)
		}
		u := fmt.Sprintf("%s/apps/%s/reviews?%s", c.base, url.PathEscape(appID), q.Encode())

		var p page
		if err := c.get(ctx, u, &p); err != nil {
			return out, fmt.Errorf("fetch %s: %w", appID, err)
		}
		out = append(out, p.Reviews...)
		if p.NextToken == "" || len(p.Reviews) == 0 {
			break
		}
		token = p.NextToken
	}
	if len(out) > count {
		out = out[:count]
	}
	return out, nil
}

// get performs a GET with client-side rate limiting, retries, and JSON decode into out.
// Retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) get(ctx context.Context, url string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		if c.key != "" {
			req.Header.Set("X-API-Key", c.key)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "bank-reviews/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("playstore", "reviews", 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal("playstore", "reviews", resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusNoContent:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil

		case http.StatusNotFound:
			resp.Body.Close()
			return domain.ErrNotFound

		case http.StatusUnauthorized:
			resp.Body.Close()
			return ErrUnauthorized

		case http.StatusForbidden:
			resp.Body.Close()
			return ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns false early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Zero if absent or invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
