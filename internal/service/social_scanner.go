package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cwmbran-celtic/clubsocial/internal/constants"
	"github.com/cwmbran-celtic/clubsocial/internal/eventsource"
	"github.com/cwmbran-celtic/clubsocial/internal/generator"
	"github.com/cwmbran-celtic/clubsocial/internal/logger"
	"github.com/cwmbran-celtic/clubsocial/internal/metrics"
	"github.com/cwmbran-celtic/clubsocial/internal/models"
	"github.com/cwmbran-celtic/clubsocial/internal/repository"
)

const defaultScanLimit = 5

// ScanFailure 单个事件生成失败
type ScanFailure struct {
	SourceType string `json:"source_type"`
	SourceID   string `json:"source_id"`
	Error      string `json:"error"`
	err        error
}

// Err 返回原始错误
func (f ScanFailure) Err() error {
	return f.err
}

// ScanReport 批量生成结果
type ScanReport struct {
	Created []models.SocialPost `json:"created"`
	Skipped []string            `json:"skipped"`
	Failed  []ScanFailure       `json:"failed"`
}

func newScanReport() *ScanReport {
	return &ScanReport{
		Created: []models.SocialPost{},
		Skipped: []string{},
		Failed:  []ScanFailure{},
	}
}

// ScannerOptions 扫描器配置
type ScannerOptions struct {
	Location     *time.Location
	AutoMatchday bool
	DefaultLimit int
	Now          func() time.Time
}

// SocialScanner 自动生成扫描器：幂等地把近期事件转换为帖子
type SocialScanner struct {
	repo         repository.SocialPostRepository
	generator    *generator.Generator
	events       eventsource.Provider
	location     *time.Location
	autoMatchday bool
	defaultLimit int
	now          func() time.Time
}

// NewSocialScanner 创建扫描器
func NewSocialScanner(repo repository.SocialPostRepository, gen *generator.Generator, events eventsource.Provider, opts ScannerOptions) *SocialScanner {
	location := opts.Location
	if location == nil {
		location = time.UTC
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	limit := opts.DefaultLimit
	if limit <= 0 {
		limit = defaultScanLimit
	}
	return &SocialScanner{
		repo:         repo,
		generator:    gen,
		events:       events,
		location:     location,
		autoMatchday: opts.AutoMatchday,
		defaultLimit: limit,
		now:          now,
	}
}

type scanItem struct {
	sourceType string
	sourceID   string
	build      func() generator.Draft
}

// CheckAndGenerateResultPosts 为尚无帖子的赛果生成帖子
func (s *SocialScanner) CheckAndGenerateResultPosts(ctx context.Context, results []eventsource.MatchResult) (*ScanReport, error) {
	items := make([]scanItem, 0, len(results))
	for _, result := range results {
		items = append(items, scanItem{
			sourceType: constants.SocialSourceResult,
			sourceID:   strings.TrimSpace(result.MatchID),
			build:      func() generator.Draft { return s.generator.ResultPost(result) },
		})
	}
	return s.process(ctx, items)
}

// CheckAndGenerateFixturePosts 为尚无帖子的赛程生成帖子；比赛当天（俱乐部时区）生成比赛日帖子
func (s *SocialScanner) CheckAndGenerateFixturePosts(ctx context.Context, fixtures []eventsource.Fixture) (*ScanReport, error) {
	items := make([]scanItem, 0, len(fixtures))
	for _, fixture := range fixtures {
		item := scanItem{
			sourceType: constants.SocialSourceFixture,
			sourceID:   strings.TrimSpace(fixture.MatchID),
			build:      func() generator.Draft { return s.generator.FixturePost(fixture) },
		}
		if s.autoMatchday && s.isToday(fixture.KickOff) {
			item.sourceType = constants.SocialSourceMatchday
			item.build = func() generator.Draft { return s.generator.MatchdayPost(fixture) }
		}
		items = append(items, item)
	}
	return s.process(ctx, items)
}

// CheckAndGenerateTableUpdate 积分榜快照日期变化时生成帖子
func (s *SocialScanner) CheckAndGenerateTableUpdate(ctx context.Context, row eventsource.LeagueRow, leagueName string) (*ScanReport, error) {
	leagueName = strings.TrimSpace(leagueName)
	item := scanItem{
		sourceType: constants.SocialSourceTableUpdate,
		build:      func() generator.Draft { return s.generator.TableUpdatePost(row, leagueName) },
	}
	if leagueName != "" && !row.AsOf.IsZero() {
		item.sourceID = generator.TableSourceID(leagueName, row.AsOf)
	}
	return s.process(ctx, []scanItem{item})
}

func (s *SocialScanner) isToday(kickOff time.Time) bool {
	if kickOff.IsZero() {
		return false
	}
	y1, m1, d1 := kickOff.In(s.location).Date()
	y2, m2, d2 := s.now().In(s.location).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// process 预检查已有来源后逐个生成入库；单个失败不影响整批
func (s *SocialScanner) process(ctx context.Context, items []scanItem) (*ScanReport, error) {
	report := newScanReport()

	existing := make(map[string]map[string]struct{})
	idsByType := make(map[string][]string)
	for _, item := range items {
		if item.sourceID != "" {
			idsByType[item.sourceType] = append(idsByType[item.sourceType], item.sourceID)
		}
	}
	for sourceType, ids := range idsByType {
		found, err := s.repo.ExistingSourceIDs(sourceType, ids)
		if err != nil {
			return report, err
		}
		existing[sourceType] = found
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if item.sourceID == "" {
			s.fail(report, item, fmt.Errorf("%w: event has no stable identifier", ErrPostInvalid))
			continue
		}
		if _, ok := existing[item.sourceType][item.sourceID]; ok {
			s.skip(report, item)
			continue
		}

		post, err := draftToPost(item.build())
		if err != nil {
			s.fail(report, item, err)
			continue
		}
		if err := s.repo.Queue(post); err != nil {
			if errors.Is(err, repository.ErrDuplicateSource) {
				s.skip(report, item)
				continue
			}
			s.fail(report, item, err)
			continue
		}
		if existing[item.sourceType] == nil {
			existing[item.sourceType] = make(map[string]struct{})
		}
		existing[item.sourceType][item.sourceID] = struct{}{}
		report.Created = append(report.Created, *post)
		metrics.RecordGenerated(item.sourceType, metrics.OutcomeCreated)
		logger.Infow("social_scan_post_created", "post_id", post.ID, "source_type", item.sourceType, "source_id", item.sourceID)
	}
	return report, nil
}

func (s *SocialScanner) skip(report *ScanReport, item scanItem) {
	report.Skipped = append(report.Skipped, item.sourceID)
	metrics.RecordGenerated(item.sourceType, metrics.OutcomeSkipped)
	logger.Debugw("social_scan_post_skipped", "source_type", item.sourceType, "source_id", item.sourceID)
}

func (s *SocialScanner) fail(report *ScanReport, item scanItem, err error) {
	report.Failed = append(report.Failed, ScanFailure{
		SourceType: item.sourceType,
		SourceID:   item.sourceID,
		Error:      err.Error(),
		err:        err,
	})
	metrics.RecordGenerated(item.sourceType, metrics.OutcomeFailed)
	logger.Warnw("social_scan_post_failed", "source_type", item.sourceType, "source_id", item.sourceID, "error", err)
}

// Generate 按触发类型从数据源拉取事件并生成帖子
func (s *SocialScanner) Generate(ctx context.Context, generateType string, limit int) (*ScanReport, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	switch strings.ToLower(strings.TrimSpace(generateType)) {
	case constants.GenerateTypeResult:
		results, err := s.recentResults(ctx, 1)
		if err != nil {
			return nil, err
		}
		return single(s.CheckAndGenerateResultPosts(ctx, results[:1]))
	case constants.GenerateTypeFixture:
		fixtures, err := s.upcomingFixtures(ctx, 1)
		if err != nil {
			return nil, err
		}
		return single(s.process(ctx, []scanItem{{
			sourceType: constants.SocialSourceFixture,
			sourceID:   strings.TrimSpace(fixtures[0].MatchID),
			build:      func() generator.Draft { return s.generator.FixturePost(fixtures[0]) },
		}}))
	case constants.GenerateTypeMatchday:
		fixtures, err := s.upcomingFixtures(ctx, 1)
		if err != nil {
			return nil, err
		}
		if !s.isToday(fixtures[0].KickOff) {
			return nil, fmt.Errorf("%w: next fixture is not today", ErrEventNotFound)
		}
		return single(s.process(ctx, []scanItem{{
			sourceType: constants.SocialSourceMatchday,
			sourceID:   strings.TrimSpace(fixtures[0].MatchID),
			build:      func() generator.Draft { return s.generator.MatchdayPost(fixtures[0]) },
		}}))
	case constants.GenerateTypeTableUpdate:
		row, leagueName, err := s.events.LeaguePosition(ctx)
		if err != nil {
			return nil, mapEventSourceError(err)
		}
		if row == nil {
			return nil, ErrEventNotFound
		}
		return single(s.CheckAndGenerateTableUpdate(ctx, *row, leagueName))
	case constants.GenerateTypeAutoResults:
		results, err := s.recentResults(ctx, limit)
		if err != nil {
			return nil, err
		}
		return s.CheckAndGenerateResultPosts(ctx, results)
	case constants.GenerateTypeAutoFixtures:
		fixtures, err := s.upcomingFixtures(ctx, limit)
		if err != nil {
			return nil, err
		}
		return s.CheckAndGenerateFixturePosts(ctx, fixtures)
	default:
		return nil, ErrGenerateTypeInvalid
	}
}

// RunAutoScan 定时/队列触发的自动扫描，重复视为正常结果
func (s *SocialScanner) RunAutoScan(ctx context.Context, kind string, limit int) (*ScanReport, error) {
	var (
		report *ScanReport
		err    error
	)
	switch kind {
	case constants.AutoScanKindResults:
		report, err = s.Generate(ctx, constants.GenerateTypeAutoResults, limit)
	case constants.AutoScanKindFixture:
		report, err = s.Generate(ctx, constants.GenerateTypeAutoFixtures, limit)
	case constants.AutoScanKindTable:
		report, err = s.Generate(ctx, constants.GenerateTypeTableUpdate, limit)
		if errors.Is(err, ErrDuplicateSource) || errors.Is(err, ErrEventNotFound) {
			return report, nil
		}
	default:
		return nil, ErrGenerateTypeInvalid
	}
	if err != nil {
		return report, err
	}
	logger.Infow("social_auto_scan_done",
		"kind", kind,
		"created", len(report.Created),
		"skipped", len(report.Skipped),
		"failed", len(report.Failed),
	)
	return report, nil
}

func (s *SocialScanner) recentResults(ctx context.Context, n int) ([]eventsource.MatchResult, error) {
	results, err := s.events.RecentResults(ctx, n)
	if err != nil {
		return nil, mapEventSourceError(err)
	}
	if len(results) == 0 {
		return nil, ErrEventNotFound
	}
	return results, nil
}

func (s *SocialScanner) upcomingFixtures(ctx context.Context, n int) ([]eventsource.Fixture, error) {
	fixtures, err := s.events.UpcomingFixtures(ctx, n)
	if err != nil {
		return nil, mapEventSourceError(err)
	}
	if len(fixtures) == 0 {
		return nil, ErrEventNotFound
	}
	return fixtures, nil
}

// single 单事件触发：已存在返回 ErrDuplicateSource，失败返回原始错误
func single(report *ScanReport, err error) (*ScanReport, error) {
	if err != nil {
		return report, err
	}
	if len(report.Created) > 0 {
		return report, nil
	}
	if len(report.Failed) > 0 {
		return report, report.Failed[0].err
	}
	return report, ErrDuplicateSource
}

func mapEventSourceError(err error) error {
	switch {
	case errors.Is(err, eventsource.ErrNoData):
		return ErrEventNotFound
	case errors.Is(err, eventsource.ErrNotConfigured), errors.Is(err, eventsource.ErrUnavailable):
		return fmt.Errorf("%w: %v", ErrEventSourceUnavailable, err)
	default:
		return err
	}
}
