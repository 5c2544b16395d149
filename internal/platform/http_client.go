package platform

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

	"github.com/cwmbran-celtic/clubsocial/internal/config"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

const maxResponseBytes = 1 << 20

// APIError 平台接口返回的非 2xx 响应
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("platform api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("platform api returned status %d: %s", e.StatusCode, e.Message)
}

// shouldRetry 发帖接口非幂等：只重试 429 与请求未发出的拨号失败
func shouldRetry(resp *http.Response, err error) bool {
	if err != nil {
		return isDialError(err)
	}
	return resp != nil && resp.StatusCode == http.StatusTooManyRequests
}

// isDialError 连接未建立（拒绝连接、DNS 失败），平台不可能收到请求
func isDialError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

//nolint:bodyclose // *http.Response 为泛型参数
func newRetryPolicy(cfg config.PlatformRetryConfig) retrypolicy.RetryPolicy[*http.Response] {
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	baseDelay := time.Duration(cfg.BackoffMS) * time.Millisecond
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	return retrypolicy.NewBuilder[*http.Response]().
		HandleIf(shouldRetry).
		WithBackoff(baseDelay, baseDelay*10).
		WithMaxRetries(maxRetries).
		WithJitterFactor(0.1).
		ReturnLastFailure().
		Build()
}

type httpClient struct {
	client   *http.Client
	executor failsafe.Executor[*http.Response]
}

func newHTTPClient(client *http.Client, retry config.PlatformRetryConfig) *httpClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpClient{
		client:   client,
		executor: failsafe.With[*http.Response](newRetryPolicy(retry)),
	}
}

// postJSON 发送 JSON 请求并解码响应
func (c *httpClient) postJSON(ctx context.Context, endpoint string, headers map[string]string, payload interface{}, dest interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.do(ctx, dest, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(body)))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		for key, value := range headers {
			req.Header.Set(key, value)
		}
		return req, nil
	})
}

// postForm 发送表单请求并解码响应
func (c *httpClient) postForm(ctx context.Context, endpoint string, form url.Values, dest interface{}) error {
	encoded := form.Encode()
	return c.do(ctx, dest, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
}

func (c *httpClient) do(ctx context.Context, dest interface{}, build func() (*http.Request, error)) error {
	resp, err := c.executor.WithContext(ctx).Get(func() (*http.Response, error) {
		req, err := build()
		if err != nil {
			return nil, err
		}
		return c.client.Do(req)
	})
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read platform response failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: extractErrorMessage(data)}
	}
	if dest == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode platform response failed: %w", err)
	}
	return nil
}

// extractErrorMessage 兼容 Graph API {"error":{"message"}} 与 v2 {"detail"/"title"} 错误格式
func extractErrorMessage(data []byte) string {
	var payload struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		Detail string `json:"detail"`
		Title  string `json:"title"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		switch {
		case payload.Error != nil && payload.Error.Message != "":
			return payload.Error.Message
		case payload.Detail != "":
			return payload.Detail
		case payload.Title != "":
			return payload.Title
		}
	}
	text := strings.TrimSpace(string(data))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
