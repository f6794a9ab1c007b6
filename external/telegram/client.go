package telegram

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/tonttery/internal/platform/logging"
	"github.com/riskibarqy/tonttery/internal/platform/resilience"
	"github.com/riskibarqy/tonttery/internal/usecase"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultBaseURL = "https://api.telegram.org"
	maxBodyLogSize = 512
)

var (
	errTelegramTransient = crerr.New("telegram transient failure")
	botTokenPathRegex    = regexp.MustCompile(`/bot[^/\s"']+`)
)

type ClientConfig struct {
	HTTPClient     *fasthttp.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client posts messages through the Telegram Bot API.
type Client struct {
	httpClient     *fasthttp.Client
	baseURL        string
	token          string
	timeout        time.Duration
	maxRetries     int
	retryBackoff   time.Duration
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

var _ usecase.Messenger = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			Name:         "tonttery",
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		timeout:        timeout,
		maxRetries:     max(cfg.MaxRetries, 0),
		retryBackoff:   backoff,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
	Parameters  struct {
		RetryAfter int `json:"retry_after,omitempty"`
	} `json:"parameters"`
}

// SendMessage posts text to chatID. Transient failures are retried with a
// linear backoff; repeated transient failures open the circuit.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) error {
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		return crerr.New("telegram chat id is required")
	}
	if c.token == "" {
		return crerr.New("telegram bot token is not configured")
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "telegram circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: telegram is temporarily unavailable: %w", usecase.ErrDependencyUnavailable, err)
		}
	}

	body, err := sonic.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return crerr.Wrap(err, "marshal telegram message")
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("telegram.method", "sendMessage"),
			attribute.String("telegram.chat_id", chatID),
		)
	}

	err = c.execute(ctx, "sendMessage", body)
	if c.circuitEnabled {
		if err != nil && stderrors.Is(err, errTelegramTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	return err
}

func (c *Client) execute(ctx context.Context, method string, body []byte) error {
	endpoint := c.baseURL + "/bot" + c.token + "/" + method

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		retryAfter, err := c.do(ctx, endpoint, body)
		if err == nil {
			return nil
		}
		lastErr = err
		if !stderrors.Is(err, errTelegramTransient) || attempt == c.maxRetries {
			break
		}

		backoff := time.Duration(attempt+1) * c.retryBackoff
		if retryAfter > backoff {
			backoff = retryAfter
		}
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "telegram request failed", "method", method, "error", lastErr)
	return lastErr
}

func (c *Client) do(ctx context.Context, endpoint string, body []byte) (time.Duration, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBody(body)

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if err := c.httpClient.DoDeadline(req, resp, deadline); err != nil {
		return 0, fmt.Errorf("%w: send request: %s", errTelegramTransient, c.redact(err.Error()))
	}

	status := resp.StatusCode()
	raw := resp.Body()

	var decoded apiResponse
	if len(raw) > 0 {
		if err := sonic.Unmarshal(raw, &decoded); err != nil && status/100 == 2 {
			return 0, crerr.Wrapf(err, "decode telegram response status=%d", status)
		}
	}

	if status/100 == 2 && decoded.OK {
		return 0, nil
	}

	retryAfter := time.Duration(decoded.Parameters.RetryAfter) * time.Second
	detail := strings.TrimSpace(decoded.Description)
	if detail == "" {
		detail = abbreviate(raw)
	}
	if isRetryableStatus(status) {
		return retryAfter, fmt.Errorf("%w: telegram status=%d description=%s", errTelegramTransient, status, detail)
	}
	return 0, crerr.Newf("telegram status=%d description=%s", status, detail)
}

func (c *Client) redact(value string) string {
	if c.token != "" {
		value = strings.ReplaceAll(value, c.token, "REDACTED")
	}
	return botTokenPathRegex.ReplaceAllString(value, "/botREDACTED")
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests ||
		status == http.StatusRequestTimeout ||
		status >= http.StatusInternalServerError
}

func abbreviate(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if len(text) > maxBodyLogSize {
		return text[:maxBodyLogSize] + "..."
	}
	return text
}
