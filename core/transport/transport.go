// Package transport sends single HTTP requests to the server and applies the
// retry policy to statement submissions.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/kndndrj/chhttp/models"
)

// Response is the fully read answer of the server.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a success-class (2xx) status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

type Transport struct {
	http   *http.Client
	retry  *retryablehttp.Client
	policy Policy
	logger models.Logger
}

// New creates a transport on top of httpClient. A nil httpClient is replaced
// with a pooled client, a nil logger with models.NopLogger.
func New(httpClient *http.Client, policy Policy, logger models.Logger) *Transport {
	if httpClient == nil {
		httpClient = cleanhttp.DefaultPooledClient()
	}
	if logger == nil {
		logger = models.NopLogger{}
	}

	t := &Transport{
		http:   httpClient,
		policy: policy,
		logger: logger,
	}

	t.retry = &retryablehttp.Client{
		HTTPClient:     httpClient,
		RetryWaitMin:   policy.WaitMin,
		RetryWaitMax:   policy.WaitMax,
		RetryMax:       max(policy.MaxRetries, 0),
		CheckRetry:     t.checkRetry,
		Backoff:        policy.backoff,
		ErrorHandler:   retryablehttp.PassthroughErrorHandler,
		RequestLogHook: t.logRequest,
	}

	return t
}

func (t *Transport) Policy() Policy {
	return t.policy
}

// Get sends a single GET request. It is never retried.
func (t *Transport) Get(ctx context.Context, target string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	t.logger.Debugf("GET %s", redact(target))

	resp, err := t.http.Do(req)
	if err != nil {
		return nil, err
	}

	return readResponse(resp)
}

// Post sends body to target and resends the identical payload while the
// server answers with a non-2xx status and the policy allows it. Once the
// retries are spent the last response is returned as is, so callers must
// check Response.OK. Errors are only returned when no response was received
// or the context ended.
func (t *Transport) Post(ctx context.Context, target string, header http.Header, body []byte) (*Response, error) {
	req, err := retryablehttp.NewRequest(http.MethodPost, target, body)
	if err != nil {
		return nil, fmt.Errorf("retryablehttp.NewRequest: %w", err)
	}
	req = req.WithContext(ctx)
	for key, values := range header {
		req.Header[key] = append([]string(nil), values...)
	}

	resp, err := t.retry.Do(req)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}
		return nil, err
	}

	return readResponse(resp)
}

func (t *Transport) checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}
	// no status means nothing to retry on
	if err != nil {
		return false, nil
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return false, nil
	}

	// peek at the error text and put it back for the last attempt
	text, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(text))
	if readErr != nil {
		t.logger.Warnf("server responded with %d (body unreadable: %s)", resp.StatusCode, readErr)
		return true, nil
	}

	t.logger.Warnf("server responded with %d: %s", resp.StatusCode, strings.TrimSpace(string(text)))
	return true, nil
}

func (t *Transport) logRequest(_ retryablehttp.Logger, req *http.Request, attempt int) {
	if attempt == 0 {
		t.logger.Debugf("%s %s", req.Method, req.URL.Redacted())
		return
	}
	t.logger.Warnf("retrying %d/%d", attempt, t.policy.MaxRetries)
}

func readResponse(resp *http.Response) (*Response, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

func redact(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return "<unparsable url>"
	}
	return u.Redacted()
}
