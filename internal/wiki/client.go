package wiki

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"geitems/internal/config"
	"geitems/internal/item"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// maxBodySize caps how much of a single response is read into memory
const maxBodySize = 32 << 20

// Client talks to the wiki over HTTP
type Client struct {
	httpClient   *http.Client
	baseURL      string
	feedURL      string
	limitsURL    string
	userAgent    string
	feedTimeout  time.Duration
	imageTimeout time.Duration
	defaultLimit int
	maxBody      int64
	logger       *slog.Logger
}

// NewClient creates a Client from cfg. A nil httpClient uses a fresh http.Client.
func NewClient(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		httpClient:   httpClient,
		baseURL:      strings.TrimRight(cfg.Wiki.BaseURL, "/"),
		feedURL:      cfg.FeedURL(),
		limitsURL:    cfg.LimitsURL(),
		userAgent:    cfg.Wiki.UserAgent,
		feedTimeout:  cfg.Wiki.FeedTimeout,
		imageTimeout: cfg.Wiki.ImageTimeout,
		defaultLimit: cfg.DefaultBuyLimit,
		maxBody:      maxBodySize,
		logger:       logger,
	}
}

// Response is a fully read HTTP response
type Response struct {
	StatusCode int
	Body       []byte
}

// get performs a GET with its own timeout and returns the decoded body
// regardless of status code.
func (c *Client) get(ctx context.Context, url string, timeout time.Duration) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Encoding", "gzip, deflate, br, zstd")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := decodeBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to decode body from %s: %w", url, err)
	}
	defer body.Close()

	// One byte past the limit tells a body of exactly maxBody apart from a longer one.
	data, err := io.ReadAll(io.LimitReader(body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body from %s: %w", url, err)
	}
	if int64(len(data)) > c.maxBody {
		return nil, fmt.Errorf("%s: more than %d bytes: %w", url, c.maxBody, item.ErrBodyTooLarge)
	}

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

// getOK is get for endpoints where anything but 200 is an error
func (c *Client) getOK(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	resp, err := c.get(ctx, url, timeout)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %d: %w", url, resp.StatusCode, item.ErrUnexpectedStatus)
	}
	return resp.Body, nil
}

// decodeBody unwraps the response body according to its Content-Encoding
func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		reader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return reader, nil

	case "deflate":
		reader, err := zlib.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to create deflate reader: %w", err)
		}
		return reader, nil

	case "br":
		return io.NopCloser(brotli.NewReader(resp.Body)), nil

	case "zstd":
		decoder, err := zstd.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		return decoder.IOReadCloser(), nil

	default:
		return io.NopCloser(resp.Body), nil
	}
}
