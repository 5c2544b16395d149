package eventsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cwmbran-celtic/clubsocial/internal/cache"
	"github.com/cwmbran-celtic/clubsocial/internal/config"
	"github.com/cwmbran-celtic/clubsocial/internal/logger"
)

const (
	apiKeyHeader       = "X-API-Key"
	defaultHTTPTimeout = 5 * time.Second
	maxResponseBytes   = 2 << 20
	maxLimit           = 50
)

// HTTPProvider 通过 HTTP JSON 接口获取赛事数据，带 Redis 读穿缓存
type HTTPProvider struct {
	baseURL  string
	apiKey   string
	cacheTTL time.Duration
	client   *http.Client
}

// NewHTTPProvider 根据配置创建数据源
func NewHTTPProvider(cfg config.EventSourceConfig) *HTTPProvider {
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &HTTPProvider{
		baseURL:  strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:   strings.TrimSpace(cfg.APIKey),
		cacheTTL: time.Duration(cfg.CacheTTLSeconds) * time.Second,
		client:   &http.Client{Timeout: timeout},
	}
}

// Configured 是否已配置数据源地址
func (p *HTTPProvider) Configured() bool {
	return p != nil && p.baseURL != ""
}

// RecentResults 获取最近 n 场比赛结果
func (p *HTTPProvider) RecentResults(ctx context.Context, n int) ([]MatchResult, error) {
	n = normalizeLimit(n)
	var results []MatchResult
	if err := p.fetch(ctx, cache.EventSnapshotResults, n, "/results", &results); err != nil {
		return nil, err
	}
	return results, nil
}

// UpcomingFixtures 获取接下来 n 场赛程
func (p *HTTPProvider) UpcomingFixtures(ctx context.Context, n int) ([]Fixture, error) {
	n = normalizeLimit(n)
	var fixtures []Fixture
	if err := p.fetch(ctx, cache.EventSnapshotFixtures, n, "/fixtures", &fixtures); err != nil {
		return nil, err
	}
	return fixtures, nil
}

// LeaguePosition 获取本俱乐部当前联赛排名
func (p *HTTPProvider) LeaguePosition(ctx context.Context) (*LeagueRow, string, error) {
	var snapshot TableSnapshot
	if err := p.fetch(ctx, cache.EventSnapshotTable, 0, "/table", &snapshot); err != nil {
		return nil, "", err
	}
	if snapshot.Row.Position <= 0 || strings.TrimSpace(snapshot.LeagueName) == "" {
		return nil, "", ErrNoData
	}
	row := snapshot.Row
	return &row, strings.TrimSpace(snapshot.LeagueName), nil
}

func (p *HTTPProvider) fetch(ctx context.Context, kind string, limit int, path string, dest interface{}) error {
	if !p.Configured() {
		return ErrNotConfigured
	}

	hit, err := cache.GetEventSnapshot(ctx, kind, limit, dest)
	if err != nil {
		logger.Warnw("event_source_cache_read_failed", "kind", kind, "error", err)
	} else if hit {
		return nil
	}

	endpoint := p.baseURL + path
	if limit > 0 {
		endpoint += "?" + url.Values{"limit": []string{strconv.Itoa(limit)}}.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set(apiKeyHeader, p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrNoData
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s returned status %d", ErrUnavailable, path, resp.StatusCode)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUnavailable, path, err)
	}

	if err := cache.SetEventSnapshot(ctx, kind, limit, dest, p.cacheTTL); err != nil {
		logger.Warnw("event_source_cache_write_failed", "kind", kind, "error", err)
	}
	return nil
}

func normalizeLimit(n int) int {
	if n <= 0 {
		return 5
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}
