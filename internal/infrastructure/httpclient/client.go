package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	maxAttempts    = 4
	initialBackoff = 200 * time.Millisecond
	maxErrorBody   = 512
)

// StatusError - ответ провайдера с HTTP статусом >= 400
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// Retryable сообщает, стоит ли повторить запрос с таким статусом
func (e *StatusError) Retryable() bool {
	switch e.Code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Client - JSON клиент внешних API с повторами и экспоненциальной задержкой
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	logger     *zap.Logger
	backoff    time.Duration
}

// Option настраивает Client
type Option func(*Client)

// WithHeader добавляет заголовок ко всем запросам
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithBackoff переопределяет начальную задержку между попытками
func WithBackoff(d time.Duration) Option {
	return func(c *Client) {
		c.backoff = d
	}
}

// New создаёт клиент с таймаутом на каждый запрос
func New(timeout time.Duration, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		headers:    map[string]string{"Accept": "application/json"},
		logger:     logger,
		backoff:    initialBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON выполняет GET endpoint?query и декодирует JSON ответ в out.
// Сетевые ошибки, 429 и 5xx повторяются до maxAttempts раз.
func (c *Client) GetJSON(ctx context.Context, endpoint string, query url.Values, out interface{}) error {
	target := endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		for k, v := range c.headers {
			req.Header.Set(k, v)
		}
		return req, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		return nil, &StatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

func (c *Client) doWithRetry(ctx context.Context, makeReq func() (*http.Request, error)) (*http.Response, error) {
	backoff := c.backoff
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !retryable(err) || attempt == maxAttempts {
			return nil, lastErr
		}

		c.logger.Debug("Retrying provider request",
			zap.String("host", req.URL.Host),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err))

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
