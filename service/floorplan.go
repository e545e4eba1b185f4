package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"seatmap-cli/model"
)

const (
	defaultUserAgent   = "seatmap-cli"
	defaultMaxAttempts = 3
	defaultRetryBase   = 200 * time.Millisecond
	defaultRetryCap    = 1200 * time.Millisecond
	maxFloorPlanBytes  = 32 << 20
)

// Client loads floor plan images from local files or http(s) URLs.
type Client struct {
	httpClient  *http.Client
	userAgent   string
	maxAttempts int
	retryBase   time.Duration
	retryCap    time.Duration
}

// HTTPError is returned when a floor plan URL responds with a non-2xx status.
type HTTPError struct {
	StatusCode int
	Status     string
	Endpoint   string
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "floor plan download error"
	}
	if e.Body == "" {
		return fmt.Sprintf("floor plan download error: %s", e.Status)
	}
	return fmt.Sprintf("floor plan download error: %s: %s", e.Status, e.Body)
}

// IsNotFound reports whether the error represents a 404 or a missing file.
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusNotFound
	}
	return errors.Is(err, os.ErrNotExist)
}

// FloorPlanImage is a decoded background image and its metadata.
type FloorPlanImage struct {
	Plan  model.FloorPlan
	Image image.Image
}

// NewClient creates a new loader. If httpClient is nil, a default client with
// a 12s timeout is used.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}
	return &Client{
		httpClient:  httpClient,
		userAgent:   defaultUserAgent,
		maxAttempts: defaultMaxAttempts,
		retryBase:   defaultRetryBase,
		retryCap:    defaultRetryCap,
	}
}

// IsRemote reports whether source is an http(s) URL.
func IsRemote(source string) bool {
	s := strings.ToLower(strings.TrimSpace(source))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Load reads and decodes the floor plan at source.
func (c *Client) Load(ctx context.Context, source string) (FloorPlanImage, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return FloorPlanImage{}, errors.New("floor plan source is required")
	}
	var (
		data []byte
		err  error
	)
	if IsRemote(source) {
		data, err = c.Fetch(ctx, source)
	} else {
		data, err = readLocal(source)
	}
	if err != nil {
		return FloorPlanImage{}, err
	}
	return Decode(source, data)
}

// Fetch downloads the raw bytes at endpoint, retrying transient failures.
func (c *Client) Fetch(ctx context.Context, endpoint string) ([]byte, error) {
	maxAttempts := c.maxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "image/png,image/jpeg,image/gif;q=0.9,*/*;q=0.5")

		res, err := c.httpClient.Do(req)
		if err != nil {
			if c.shouldRetryNetworkError(err) && attempt < maxAttempts {
				if waitErr := c.waitRetry(ctx, attempt); waitErr != nil {
					return nil, waitErr
				}
				continue
			}
			return nil, fmt.Errorf("request failed: %w", err)
		}

		if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
			snippet, _ := io.ReadAll(io.LimitReader(res.Body, 8<<10))
			_ = res.Body.Close()

			httpErr := &HTTPError{
				StatusCode: res.StatusCode,
				Status:     res.Status,
				Endpoint:   endpoint,
				Body:       strings.TrimSpace(string(snippet)),
			}
			if c.shouldRetryStatus(res.StatusCode) && attempt < maxAttempts {
				if waitErr := c.waitRetry(ctx, attempt); waitErr != nil {
					return nil, waitErr
				}
				continue
			}
			return nil, httpErr
		}

		data, err := io.ReadAll(io.LimitReader(res.Body, maxFloorPlanBytes+1))
		_ = res.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read response from %s: %w", endpoint, err)
		}
		if len(data) > maxFloorPlanBytes {
			return nil, fmt.Errorf("floor plan at %s exceeds %d MiB", endpoint, maxFloorPlanBytes>>20)
		}
		return data, nil
	}

	return nil, errors.New("request failed after retries")
}

// Decode parses image bytes and records the pixel dimensions.
func Decode(source string, data []byte) (FloorPlanImage, error) {
	if len(data) == 0 {
		return FloorPlanImage{}, errors.New("floor plan is empty")
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return FloorPlanImage{}, fmt.Errorf("decode floor plan %s: %w", source, err)
	}
	bounds := img.Bounds()
	plan := model.FloorPlan{
		Source: source,
		Name:   floorPlanName(source),
		Format: format,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}
	if !plan.Loaded() {
		return FloorPlanImage{}, fmt.Errorf("floor plan %s has no pixels", source)
	}
	return FloorPlanImage{Plan: plan, Image: img}, nil
}

func readLocal(source string) ([]byte, error) {
	info, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("open floor plan: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("floor plan %s is a directory", source)
	}
	if info.Size() > maxFloorPlanBytes {
		return nil, fmt.Errorf("floor plan %s exceeds %d MiB", source, maxFloorPlanBytes>>20)
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read floor plan: %w", err)
	}
	return data, nil
}

func floorPlanName(source string) string {
	if IsRemote(source) {
		trimmed := source
		if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
			trimmed = trimmed[:i]
		}
		if name := path.Base(trimmed); name != "" && name != "/" && name != "." {
			return name
		}
		return source
	}
	return filepath.Base(source)
}

func (c *Client) shouldRetryStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func (c *Client) shouldRetryNetworkError(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (c *Client) waitRetry(ctx context.Context, attempt int) error {
	delay := c.retryDelay(attempt)
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) retryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := c.retryBase
	if base <= 0 {
		base = defaultRetryBase
	}
	cap := c.retryCap
	if cap <= 0 {
		cap = defaultRetryCap
	}

	delay := base
	for i := 1; i < attempt; i++ {
		if delay >= cap/2 {
			return cap
		}
		delay *= 2
	}
	if delay > cap {
		return cap
	}
	return delay
}
