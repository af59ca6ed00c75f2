package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL  = "https://api.spotify.com/v1"
	DefaultTokenURL = "https://accounts.spotify.com/api/token"
)

type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	TokenURL     string
	UserAgent    string

	// Timeout bounds a single HTTP attempt.
	Timeout time.Duration
	// Attempts is the total number of tries for a retryable failure.
	Attempts   uint
	RetryDelay time.Duration
	// RequestsPerSecond paces outgoing requests.
	RequestsPerSecond float64
	// BreakerFailures is the number of consecutive failures that opens the
	// circuit breaker.
	BreakerFailures uint32
	BreakerTimeout  time.Duration

	// HTTPClient replaces the OAuth2 client-credentials client when set.
	HTTPClient *http.Client
	Logger     *log.Logger
}

func (c *Config) setDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.TokenURL == "" {
		c.TokenURL = DefaultTokenURL
	}
	if c.UserAgent == "" {
		c.UserAgent = "track-recommender/1.0"
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
	if c.Attempts == 0 {
		c.Attempts = 3
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = 500 * time.Millisecond
	}
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = 10
	}
	if c.BreakerFailures == 0 {
		c.BreakerFailures = 5
	}
	if c.BreakerTimeout == 0 {
		c.BreakerTimeout = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard)
	}
}

// HTTPClient talks to the Spotify Web API.
type HTTPClient struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[struct{}]
	logger  *log.Logger
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(cfg Config) *HTTPClient {
	cfg.setDefaults()

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		creds := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		httpClient = creds.Client(context.Background())
	}

	logger := cfg.Logger.With("component", "catalog")
	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:    "catalog",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !IsRetryable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "from", from.String(), "to", to.String())
		},
	})

	return &HTTPClient{
		cfg:     cfg,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		breaker: breaker,
		logger:  logger,
	}
}

func (c *HTTPClient) Search(ctx context.Context, req SearchRequest) (SearchResult, error) {
	if req.Limit <= 0 || req.Limit > MaxSearchLimit {
		return SearchResult{}, fmt.Errorf("search limit %d outside 1..%d: %w", req.Limit, MaxSearchLimit, ErrBatchTooLarge)
	}
	q := url.Values{}
	q.Set("q", req.Query)
	q.Set("type", string(req.Type))
	q.Set("limit", strconv.Itoa(req.Limit))
	q.Set("offset", strconv.Itoa(req.Offset))
	if req.Market != "" {
		q.Set("market", req.Market)
	}

	var resp struct {
		Tracks struct {
			Items []Track `json:"items"`
		} `json:"tracks"`
		Albums struct {
			Items []Album `json:"items"`
		} `json:"albums"`
	}
	if err := c.get(ctx, "search", "/search", q, &resp); err != nil {
		return SearchResult{}, err
	}

	var result SearchResult
	for i := range resp.Tracks.Items {
		result.Tracks = append(result.Tracks, resp.Tracks.Items[i].Summary())
	}
	result.Albums = resp.Albums.Items
	return result, nil
}

func (c *HTTPClient) Tracks(ctx context.Context, ids []string) ([]*Track, error) {
	if err := CheckBatch("tracks", len(ids), MaxTrackBatch); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))

	var resp struct {
		Tracks []*Track `json:"tracks"`
	}
	if err := c.get(ctx, "tracks", "/tracks", q, &resp); err != nil {
		return nil, err
	}
	return alignTo(ids, resp.Tracks), nil
}

func (c *HTTPClient) AudioFeatures(ctx context.Context, ids []string) ([]*AudioFeatures, error) {
	if err := CheckBatch("audio-features", len(ids), MaxAudioFeatureBatch); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))

	var resp struct {
		AudioFeatures []*AudioFeatures `json:"audio_features"`
	}
	if err := c.get(ctx, "audio-features", "/audio-features", q, &resp); err != nil {
		return nil, err
	}
	return alignTo(ids, resp.AudioFeatures), nil
}

func (c *HTTPClient) AlbumTracks(ctx context.Context, albumID string, limit int) ([]TrackSummary, error) {
	if limit <= 0 || limit > MaxSearchLimit {
		return nil, fmt.Errorf("album tracks limit %d outside 1..%d: %w", limit, MaxSearchLimit, ErrBatchTooLarge)
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	var resp struct {
		Items []Track `json:"items"`
	}
	path := "/albums/" + url.PathEscape(albumID) + "/tracks"
	if err := c.get(ctx, "album-tracks", path, q, &resp); err != nil {
		return nil, err
	}

	tracks := make([]TrackSummary, 0, len(resp.Items))
	for i := range resp.Items {
		tracks = append(tracks, resp.Items[i].Summary())
	}
	return tracks, nil
}

// alignTo pads or trims a batch response so it stays index-aligned with ids.
func alignTo[T any](ids []string, items []*T) []*T {
	if len(items) == len(ids) {
		return items
	}
	aligned := make([]*T, len(ids))
	copy(aligned, items)
	return aligned
}

func (c *HTTPClient) get(ctx context.Context, op, path string, query url.Values, out any) error {
	err := retry.Do(
		func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
			_, err := c.breaker.Execute(func() (struct{}, error) {
				return struct{}{}, c.do(ctx, op, path, query, out)
			})
			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.cfg.Attempts),
		retry.Delay(c.cfg.RetryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(IsRetryable),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("catalog errored, retrying", "op", op, "attempt", n+1, "err", err)
		}),
	)
	if err != nil {
		return wrapCall(op, err)
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, op, path string, query url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	target := c.cfg.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &callError{op: op, err: fmt.Errorf("building request: %w", err)}
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("catalog request", "op", op, "url", target)
	resp, err := c.http.Do(req)
	if err != nil {
		return &callError{op: op, err: err, retryable: ctx.Err() == nil || ctx.Err() == context.DeadlineExceeded}
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var body struct {
			Error struct {
				Status  int    `json:"status"`
				Message string `json:"message"`
			} `json:"error"`
		}
		// Error bodies are best-effort; the status code is authoritative.
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return &APIError{Op: op, Status: resp.StatusCode, Message: body.Error.Message}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &callError{op: op, err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}
