package eventsource

import (
	"context"
	"sort"
)

// StaticProvider 内存数据源（本地演示与离线回放）
type StaticProvider struct {
	results    []MatchResult
	fixtures   []Fixture
	row        *LeagueRow
	leagueName string
}

// NewStaticProvider 创建内存数据源；赛果按时间倒序、赛程按开球时间正序返回
func NewStaticProvider(results []MatchResult, fixtures []Fixture, row *LeagueRow, leagueName string) *StaticProvider {
	sortedResults := append([]MatchResult(nil), results...)
	sort.SliceStable(sortedResults, func(i, j int) bool {
		return sortedResults[i].Date.After(sortedResults[j].Date)
	})
	sortedFixtures := append([]Fixture(nil), fixtures...)
	sort.SliceStable(sortedFixtures, func(i, j int) bool {
		return sortedFixtures[i].KickOff.Before(sortedFixtures[j].KickOff)
	})
	return &StaticProvider{
		results:    sortedResults,
		fixtures:   sortedFixtures,
		row:        row,
		leagueName: leagueName,
	}
}

// RecentResults 最近 n 场赛果
func (p *StaticProvider) RecentResults(ctx context.Context, n int) ([]MatchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n = normalizeLimit(n)
	if n > len(p.results) {
		n = len(p.results)
	}
	return append([]MatchResult(nil), p.results[:n]...), nil
}

// UpcomingFixtures 接下来 n 场赛程
func (p *StaticProvider) UpcomingFixtures(ctx context.Context, n int) ([]Fixture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n = normalizeLimit(n)
	if n > len(p.fixtures) {
		n = len(p.fixtures)
	}
	return append([]Fixture(nil), p.fixtures[:n]...), nil
}

// LeaguePosition 当前积分榜行
func (p *StaticProvider) LeaguePosition(ctx context.Context) (*LeagueRow, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	if p.row == nil {
		return nil, "", ErrNoData
	}
	row := *p.row
	return &row, p.leagueName, nil
}
