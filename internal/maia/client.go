package maia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/seojin-dev/boardwatch/internal/board"
)

// ErrNoMove covers every way a recommendation can fail to materialize:
// transport errors, timeouts, error payloads and malformed move codes.
// Callers treat them all the same: skip the suggestion, never retry; the
// next turn event supersedes it.
var ErrNoMove = errors.New("maia: no usable move")

type moveResponse struct {
	Move  string `json:"move,omitempty"`
	Error string `json:"error,omitempty"`
}

type Client struct {
	baseURL string
	http    *fasthttp.Client

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 8},
		defaultTimeout: 10 * time.Second,
		retryMax:       2,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BestMove asks the Maia server for a move at the given rating. The
// returned code is from-square + to-square + optional promotion letter.
func (c *Client) BestMove(ctx context.Context, fen string, elo int) (string, error) {
	if strings.TrimSpace(fen) == "" {
		return "", fmt.Errorf("%w: empty position", ErrNoMove)
	}
	if elo <= 0 {
		return "", fmt.Errorf("%w: invalid rating %d", ErrNoMove, elo)
	}

	q := url.Values{}
	q.Set("fen", fen)
	q.Set("elo", strconv.Itoa(elo))
	uri := c.baseURL + "/maia?" + q.Encode()

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()
	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(uri)

	attempts := c.retryMax
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("%w: %v", ErrNoMove, err)
		}
		err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx))
		if err != nil {
			lastErr = err
			if attempt < attempts {
				if serr := c.sleepWithContext(ctx, backoffDuration(attempt)); serr != nil {
					break
				}
				continue
			}
			break
		}

		status := resp.StatusCode()
		if status < 200 || status >= 300 {
			lastErr = fmt.Errorf("status=%d body=%s", status, truncate(string(resp.Body()), 256))
			if attempt < attempts && shouldRetryStatus(status) {
				if serr := c.sleepWithContext(ctx, backoffDuration(attempt)); serr != nil {
					break
				}
				continue
			}
			break
		}

		var mr moveResponse
		if err := json.Unmarshal(resp.Body(), &mr); err != nil {
			return "", fmt.Errorf("%w: decode response: %v", ErrNoMove, err)
		}
		if mr.Error != "" {
			return "", fmt.Errorf("%w: server: %s", ErrNoMove, mr.Error)
		}
		move := strings.ToLower(strings.TrimSpace(mr.Move))
		if !ValidMoveCode(move) {
			return "", fmt.Errorf("%w: malformed move %q", ErrNoMove, mr.Move)
		}
		return move, nil
	}

	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return "", fmt.Errorf("%w: %v", ErrNoMove, lastErr)
}

// ValidMoveCode checks the 4-or-5-character origin+destination+promotion
// shape; it does not check legality.
func ValidMoveCode(move string) bool {
	if len(move) != 4 && len(move) != 5 {
		return false
	}
	if _, ok := board.ParseSquare(move[:2]); !ok {
		return false
	}
	if _, ok := board.ParseSquare(move[2:4]); !ok {
		return false
	}
	if len(move) == 5 {
		switch move[4] {
		case 'q', 'r', 'b', 'n':
		default:
			return false
		}
	}
	return true
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func (c *Client) sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	return time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
