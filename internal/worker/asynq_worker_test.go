package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cwmbran-celtic/clubsocial/internal/config"
	"github.com/cwmbran-celtic/clubsocial/internal/constants"
	"github.com/cwmbran-celtic/clubsocial/internal/eventsource"
	"github.com/cwmbran-celtic/clubsocial/internal/models"
	"github.com/cwmbran-celtic/clubsocial/internal/platform"
	"github.com/cwmbran-celtic/clubsocial/internal/provider"
	"github.com/cwmbran-celtic/clubsocial/internal/queue"
	"github.com/cwmbran-celtic/clubsocial/internal/repository"
	"github.com/cwmbran-celtic/clubsocial/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

type fakeEvents struct {
	results []eventsource.MatchResult
}

func (f *fakeEvents) RecentResults(ctx context.Context, n int) ([]eventsource.MatchResult, error) {
	return f.results, nil
}

func (f *fakeEvents) UpcomingFixtures(ctx context.Context, n int) ([]eventsource.Fixture, error) {
	return nil, nil
}

func (f *fakeEvents) LeaguePosition(ctx context.Context) (*eventsource.LeagueRow, string, error) {
	return nil, "", eventsource.ErrNoData
}

type okSender struct {
	name  string
	calls int
}

func (s *okSender) Platform() string { return s.name }

func (s *okSender) Send(ctx context.Context, content platform.Content) (*platform.Receipt, error) {
	s.calls++
	return &platform.Receipt{ExternalID: s.name + "-1"}, nil
}

func setupWorkerTest(t *testing.T) (*Consumer, *fakeEvents, *okSender) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"), time.Now().UnixNano())
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
		DefaultPlatforms: []string{constants.PlatformTwitter},
	}}
	events := &fakeEvents{}
	twitter := &okSender{name: constants.PlatformTwitter}
	container := provider.NewContainerWithDeps(cfg, db, events, platform.NewStaticRegistry(twitter), nil)
	return NewConsumer(container), events, twitter
}

func newTask(t *testing.T, typename string, payload interface{}) *asynq.Task {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload failed: %v", err)
	}
	return asynq.NewTask(typename, body)
}

func TestHandleSocialAutoScanThenPublish(t *testing.T) {
	consumer, events, twitter := setupWorkerTest(t)
	events.results = []eventsource.MatchResult{{
		MatchID: "M1", HomeTeam: "Cwmbran Celtic", AwayTeam: "Test Town", HomeScore: 3, AwayScore: 1,
		Competition: "JD Cymru South",
	}}

	scanTask := newTask(t, queue.TaskSocialAutoScan, queue.SocialAutoScanPayload{Kind: constants.AutoScanKindResults, Limit: 5})
	if err := consumer.handleSocialAutoScan(context.Background(), scanTask); err != nil {
		t.Fatalf("auto scan failed: %v", err)
	}
	if err := consumer.handleSocialAutoScan(context.Background(), scanTask); err != nil {
		t.Fatalf("repeated auto scan should be a no-op: %v", err)
	}
	posts, err := consumer.SocialPostRepo.ListAll()
	if err != nil || len(posts) != 1 {
		t.Fatalf("expected one post, got %d err=%v", len(posts), err)
	}

	publishTask := newTask(t, queue.TaskSocialPublish, queue.SocialPublishPayload{PostID: posts[0].ID})
	if err := consumer.handleSocialPublish(context.Background(), publishTask); err != nil {
		t.Fatalf("publish task failed: %v", err)
	}
	stored, err := consumer.SocialPostRepo.GetByID(posts[0].ID)
	if err != nil || stored == nil || stored.Status != constants.SocialPostStatusPublished {
		t.Fatalf("expected published post, got %+v err=%v", stored, err)
	}

	if err := consumer.handleSocialPublish(context.Background(), publishTask); err != nil {
		t.Fatalf("re-delivered task should be skipped: %v", err)
	}
	if twitter.calls != 1 {
		t.Fatalf("twitter should be called once, got %d", twitter.calls)
	}
}

func TestHandleSocialPublishInvalidPayload(t *testing.T) {
	consumer, _, _ := setupWorkerTest(t)
	if err := consumer.handleSocialPublish(context.Background(), asynq.NewTask(queue.TaskSocialPublish, []byte("{"))); err == nil {
		t.Fatalf("broken payload should fail")
	}
	missing := newTask(t, queue.TaskSocialPublish, queue.SocialPublishPayload{PostID: "missing"})
	if err := consumer.handleSocialPublish(context.Background(), missing); err != nil {
		t.Fatalf("missing post should be skipped: %v", err)
	}
	empty := newTask(t, queue.TaskSocialPublish, queue.SocialPublishPayload{})
	if err := consumer.handleSocialPublish(context.Background(), empty); err != nil {
		t.Fatalf("empty payload should be skipped: %v", err)
	}
}

func TestHandleSocialAutoScanUnknownKind(t *testing.T) {
	consumer, _, _ := setupWorkerTest(t)
	task := newTask(t, queue.TaskSocialAutoScan, queue.SocialAutoScanPayload{Kind: "weather"})
	if err := consumer.handleSocialAutoScan(context.Background(), task); err != nil {
		t.Fatalf("unknown kind should be skipped: %v", err)
	}
}

func TestRunAutoScanOnceToleratesEmptySources(t *testing.T) {
	consumer, events, _ := setupWorkerTest(t)
	events.results = []eventsource.MatchResult{{MatchID: "M9", HomeTeam: "Goytre", AwayTeam: "Cwmbran Celtic", HomeScore: 0, AwayScore: 0}}

	runAutoScanOnce(context.Background(), consumer.SocialScanner, 5)

	stats, err := consumer.SocialPostService.Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Total != 1 || stats.BySourceType[constants.SocialSourceResult] != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestDispatchAutoScanRunsInlineWithoutQueue(t *testing.T) {
	consumer, events, _ := setupWorkerTest(t)
	events.results = []eventsource.MatchResult{{MatchID: "M10", HomeTeam: "Cwmbran Celtic", AwayTeam: "Pontypridd", HomeScore: 2, AwayScore: 0}}

	dispatchAutoScan(context.Background(), consumer.QueueClient, consumer.SocialScanner, 5, time.Minute)
	dispatchAutoScan(context.Background(), consumer.QueueClient, consumer.SocialScanner, 5, time.Minute)

	stats, err := consumer.SocialPostService.Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Total != 1 {
		t.Fatalf("repeated dispatch should not duplicate posts, got %+v", stats)
	}
}

type brokenResultRepo struct {
	repository.SocialPostRepository
	mutations int
}

func (r *brokenResultRepo) Mutate(id string, fn func(post *models.SocialPost) error) (*models.SocialPost, error) {
	r.mutations++
	if r.mutations > 1 {
		return nil, errors.New("disk I/O error")
	}
	return r.SocialPostRepository.Mutate(id, fn)
}

func TestHandleSocialPublishPersistFailureSkipsRetry(t *testing.T) {
	consumer, _, twitter := setupWorkerTest(t)
	post, err := consumer.SocialPostService.CreateCustom(service.CreateSocialPostInput{
		Text:      "Season tickets on sale",
		Platforms: []string{constants.PlatformTwitter},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	healthy := consumer.SocialPublisher
	consumer.SocialPublisher = service.NewSocialPublisher(&brokenResultRepo{SocialPostRepository: consumer.SocialPostRepo}, consumer.Platforms, consumer.QueueClient, time.Second)
	task := newTask(t, queue.TaskSocialPublish, queue.SocialPublishPayload{PostID: post.ID})
	err = consumer.handleSocialPublish(context.Background(), task)
	if !errors.Is(err, asynq.SkipRetry) || !errors.Is(err, service.ErrPublishPersistFailed) {
		t.Fatalf("persist failure after sending should skip retry, got %v", err)
	}

	consumer.SocialPublisher = healthy
	if err := consumer.handleSocialPublish(context.Background(), task); err != nil {
		t.Fatalf("redelivery during lease should be skipped: %v", err)
	}
	if twitter.calls != 1 {
		t.Fatalf("twitter should be called once, got %d", twitter.calls)
	}
}
