package admin

import (
	"bytes"
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
	"github.com/cwmbran-celtic/clubsocial/internal/http/response"
	"github.com/cwmbran-celtic/clubsocial/internal/models"
	"github.com/cwmbran-celtic/clubsocial/internal/platform"
	"github.com/cwmbran-celtic/clubsocial/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type adminEventsStub struct {
	results []eventsource.MatchResult
}

func (s *adminEventsStub) RecentResults(ctx context.Context, n int) ([]eventsource.MatchResult, error) {
	return s.results, nil
}

func (s *adminEventsStub) UpcomingFixtures(ctx context.Context, n int) ([]eventsource.Fixture, error) {
	return nil, eventsource.ErrUnavailable
}

func (s *adminEventsStub) LeaguePosition(ctx context.Context) (*eventsource.LeagueRow, string, error) {
	return nil, "", eventsource.ErrNoData
}

type adminResponse struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

func setupSocialPostHandlerTest(t *testing.T) (*Handler, *adminEventsStub) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:social_post_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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

	cfg := &config.Config{Social: config.SocialConfig{
		ClubName:         "Cwmbran Celtic",
		DefaultPlatforms: []string{constants.PlatformTwitter, constants.PlatformFacebook},
	}}
	events := &adminEventsStub{}
	registry := platform.NewStaticRegistry(
		platform.NewLogSender(constants.PlatformTwitter),
		platform.NewLogSender(constants.PlatformFacebook),
	)
	return New(provider.NewContainerWithDeps(cfg, db, events, registry, nil)), events
}

func performAdminRequest(t *testing.T, handler gin.HandlerFunc, method, target string, body interface{}, params gin.Params) adminResponse {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = params
	handler(c)

	if w.Code != http.StatusOK {
		t.Fatalf("http status want 200 got %d", w.Code)
	}
	var resp adminResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v body=%s", err, w.Body.String())
	}
	return resp
}

func idParam(id string) gin.Params {
	return gin.Params{{Key: "id", Value: id}}
}

func TestCreateListPublishSocialPost(t *testing.T) {
	h, _ := setupSocialPostHandlerTest(t)

	created := performAdminRequest(t, h.CreateSocialPost, http.MethodPost, "/admin/social-posts",
		map[string]interface{}{"text": "Clubhouse open from 12", "hashtags": []string{"UpTheCeltic"}}, nil)
	if created.StatusCode != response.CodeOK {
		t.Fatalf("create status_code want 0 got %d (%s)", created.StatusCode, created.Msg)
	}
	var post models.SocialPost
	if err := json.Unmarshal(created.Data, &post); err != nil {
		t.Fatalf("unmarshal post failed: %v", err)
	}
	if post.ID == "" || len(post.Platforms) != 2 || post.Status != constants.SocialPostStatusQueued {
		t.Fatalf("unexpected created post: %+v", post)
	}

	list := performAdminRequest(t, h.GetAdminSocialPosts, http.MethodGet, "/admin/social-posts?status=queued&page=1", nil, nil)
	var listData struct {
		Items []models.SocialPost `json:"items"`
		Stats struct {
			Total int64 `json:"total"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(list.Data, &listData); err != nil {
		t.Fatalf("unmarshal list failed: %v", err)
	}
	if len(listData.Items) != 1 || listData.Stats.Total != 1 {
		t.Fatalf("unexpected list: %+v", listData)
	}

	published := performAdminRequest(t, h.PublishSocialPost, http.MethodPost, "/admin/social-posts/"+post.ID+"/publish", nil, idParam(post.ID))
	if published.StatusCode != response.CodeOK {
		t.Fatalf("publish status_code want 0 got %d (%s)", published.StatusCode, published.Msg)
	}
	var result struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(published.Data, &result); err != nil || !result.Success {
		t.Fatalf("publish should succeed in dry-run, err=%v data=%s", err, published.Data)
	}

	again := performAdminRequest(t, h.PublishSocialPost, http.MethodPost, "/admin/social-posts/"+post.ID+"/publish", nil, idParam(post.ID))
	if again.StatusCode != response.CodeConflict {
		t.Fatalf("republish should conflict, got %d", again.StatusCode)
	}

	edit := performAdminRequest(t, h.UpdateSocialPost, http.MethodPut, "/admin/social-posts/"+post.ID,
		map[string]interface{}{"text": "changed"}, idParam(post.ID))
	if edit.StatusCode != response.CodeConflict {
		t.Fatalf("editing published post should conflict, got %d", edit.StatusCode)
	}
}

func TestGenerateSocialPostsHandler(t *testing.T) {
	h, events := setupSocialPostHandlerTest(t)
	events.results = []eventsource.MatchResult{{
		MatchID: "M1", HomeTeam: "Cwmbran Celtic", AwayTeam: "Test Town", HomeScore: 3, AwayScore: 1,
		Competition: "JD Cymru South",
	}}

	first := performAdminRequest(t, h.GenerateSocialPosts, http.MethodPost, "/admin/social-posts/generate",
		map[string]interface{}{"type": "result"}, nil)
	if first.StatusCode != response.CodeOK {
		t.Fatalf("generate status_code want 0 got %d (%s)", first.StatusCode, first.Msg)
	}
	if !strings.Contains(string(first.Data), "FULL TIME: Cwmbran Celtic 3-1 Test Town") {
		t.Fatalf("unexpected generate data: %s", first.Data)
	}

	second := performAdminRequest(t, h.GenerateSocialPosts, http.MethodPost, "/admin/social-posts/generate",
		map[string]interface{}{"type": "result"}, nil)
	if second.StatusCode != response.CodeConflict {
		t.Fatalf("duplicate generate should conflict, got %d", second.StatusCode)
	}

	invalid := performAdminRequest(t, h.GenerateSocialPosts, http.MethodPost, "/admin/social-posts/generate",
		map[string]interface{}{"type": "weather"}, nil)
	if invalid.StatusCode != response.CodeBadRequest {
		t.Fatalf("unknown type should be bad request, got %d", invalid.StatusCode)
	}

	unavailable := performAdminRequest(t, h.GenerateSocialPosts, http.MethodPost, "/admin/social-posts/generate",
		map[string]interface{}{"type": "auto_fixtures"}, nil)
	if unavailable.StatusCode != response.CodeUnavailable {
		t.Fatalf("event source failure should be unavailable, got %d", unavailable.StatusCode)
	}
}

func TestSocialPostHandlerErrors(t *testing.T) {
	h, _ := setupSocialPostHandlerTest(t)

	missing := performAdminRequest(t, h.GetAdminSocialPost, http.MethodGet, "/admin/social-posts/nope", nil, idParam("nope"))
	if missing.StatusCode != response.CodeNotFound {
		t.Fatalf("missing post want 404 got %d", missing.StatusCode)
	}

	badBody := performAdminRequest(t, h.CreateSocialPost, http.MethodPost, "/admin/social-posts", map[string]interface{}{}, nil)
	if badBody.StatusCode != response.CodeBadRequest {
		t.Fatalf("missing text want 400 got %d", badBody.StatusCode)
	}

	unsupported := performAdminRequest(t, h.CreateSocialPost, http.MethodPost, "/admin/social-posts",
		map[string]interface{}{"text": "hi", "platforms": []string{"myspace"}}, nil)
	if unsupported.StatusCode != response.CodeBadRequest {
		t.Fatalf("unsupported platform want 400 got %d", unsupported.StatusCode)
	}

	noPlatforms := performAdminRequest(t, h.CreateSocialPost, http.MethodPost, "/admin/social-posts",
		map[string]interface{}{"text": "hi", "platforms": []string{}}, nil)
	if noPlatforms.StatusCode != response.CodeBadRequest {
		t.Fatalf("explicit empty platforms want 400 got %d (%s)", noPlatforms.StatusCode, noPlatforms.Msg)
	}

	draft := performAdminRequest(t, h.CreateSocialPost, http.MethodPost, "/admin/social-posts",
		map[string]interface{}{"text": "later", "draft": true}, nil)
	var post models.SocialPost
	if err := json.Unmarshal(draft.Data, &post); err != nil {
		t.Fatalf("unmarshal draft failed: %v", err)
	}

	notPublishable := performAdminRequest(t, h.PublishSocialPost, http.MethodPost, "/admin/social-posts/x/publish", nil, idParam(post.ID))
	if notPublishable.StatusCode != response.CodeConflict {
		t.Fatalf("draft publish want 409 got %d", notPublishable.StatusCode)
	}

	badStatus := performAdminRequest(t, h.UpdateSocialPostStatus, http.MethodPut, "/admin/social-posts/x/status",
		map[string]interface{}{"status": "published"}, idParam(post.ID))
	if badStatus.StatusCode != response.CodeBadRequest {
		t.Fatalf("manual publish transition want 400 got %d", badStatus.StatusCode)
	}

	queued := performAdminRequest(t, h.UpdateSocialPostStatus, http.MethodPut, "/admin/social-posts/x/status",
		map[string]interface{}{"status": "queued"}, idParam(post.ID))
	if queued.StatusCode != response.CodeOK {
		t.Fatalf("draft -> queued want 0 got %d", queued.StatusCode)
	}

	async := performAdminRequest(t, h.PublishSocialPost, http.MethodPost, "/admin/social-posts/x/publish?async=true", nil, idParam(post.ID))
	if async.StatusCode != response.CodeUnavailable {
		t.Fatalf("async publish without queue want 503 got %d", async.StatusCode)
	}

	deleted := performAdminRequest(t, h.DeleteSocialPost, http.MethodDelete, "/admin/social-posts/x", nil, idParam(post.ID))
	if deleted.StatusCode != response.CodeOK {
		t.Fatalf("delete want 0 got %d", deleted.StatusCode)
	}
	deletedAgain := performAdminRequest(t, h.DeleteSocialPost, http.MethodDelete, "/admin/social-posts/x", nil, idParam(post.ID))
	if deletedAgain.StatusCode != response.CodeNotFound {
		t.Fatalf("second delete want 404 got %d", deletedAgain.StatusCode)
	}
}
