package router

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cwmbran-celtic/clubsocial/internal/config"
	"github.com/cwmbran-celtic/clubsocial/internal/constants"
	"github.com/cwmbran-celtic/clubsocial/internal/eventsource"
	"github.com/cwmbran-celtic/clubsocial/internal/models"
	"github.com/cwmbran-celtic/clubsocial/internal/platform"
	"github.com/cwmbran-celtic/clubsocial/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type emptyEvents struct{}

func (emptyEvents) RecentResults(ctx context.Context, n int) ([]eventsource.MatchResult, error) {
	return nil, nil
}

func (emptyEvents) UpcomingFixtures(ctx context.Context, n int) ([]eventsource.Fixture, error) {
	return nil, nil
}

func (emptyEvents) LeaguePosition(ctx context.Context) (*eventsource.LeagueRow, string, error) {
	return nil, "", eventsource.ErrNoData
}

func setupRouterTest(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := models.MigrateSchema(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "debug"},
		Social: config.SocialConfig{ClubName: "Cwmbran Celtic"},
	}
	registry := platform.NewStaticRegistry(platform.NewLogSender(constants.PlatformTwitter))
	container := provider.NewContainerWithDeps(cfg, db, emptyEvents{}, registry, nil)
	return SetupRouter(cfg, container)
}

func TestHealthReportsPlatformModes(t *testing.T) {
	r := setupRouterTest(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	var resp struct {
		Status       string            `json:"status"`
		Platforms    map[string]string `json:"platforms"`
		QueueEnabled bool              `json:"queue_enabled"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal health failed: %v", err)
	}
	if resp.Status != "ok" || resp.QueueEnabled {
		t.Fatalf("unexpected health: %+v", resp)
	}
	if resp.Platforms[constants.PlatformTwitter] != platform.ModeLive || resp.Platforms[constants.PlatformInstagram] != platform.ModeDisabled {
		t.Fatalf("unexpected platform modes: %v", resp.Platforms)
	}
}

func TestSocialPostRoutesAndMetrics(t *testing.T) {
	r := setupRouterTest(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/social-posts", strings.NewReader(`{"text":"Kit launch Friday","platforms":["twitter"]}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status_code":0`) {
		t.Fatalf("create via router failed: %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get(requestIDHeader) == "" {
		t.Fatalf("request id header missing")
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/social-posts/stats", nil))
	if !strings.Contains(w.Body.String(), `"total":1`) {
		t.Fatalf("stats should count created post: %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "clubsocial_http_requests_total") {
		t.Fatalf("metrics endpoint missing request counter: %d", w.Code)
	}
}
