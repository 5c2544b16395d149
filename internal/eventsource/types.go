package eventsource

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotConfigured 未配置赛事数据源
	ErrNotConfigured = errors.New("event source not configured")
	// ErrUnavailable 赛事数据源请求失败
	ErrUnavailable = errors.New("event source unavailable")
	// ErrNoData 数据源未返回数据
	ErrNoData = errors.New("event source returned no data")
)

// MatchResult 已完赛比赛结果
type MatchResult struct {
	MatchID     string    `json:"match_id"`
	HomeTeam    string    `json:"home_team"`
	AwayTeam    string    `json:"away_team"`
	HomeScore   int       `json:"home_score"`
	AwayScore   int       `json:"away_score"`
	Date        time.Time `json:"date"`
	Competition string    `json:"competition"`
	Venue       string    `json:"venue,omitempty"`
	Scorers     []string  `json:"scorers,omitempty"`
	Attendance  int       `json:"attendance,omitempty"`
}

// Fixture 未开赛的赛程
type Fixture struct {
	MatchID     string    `json:"match_id"`
	HomeTeam    string    `json:"home_team"`
	AwayTeam    string    `json:"away_team"`
	KickOff     time.Time `json:"kick_off"`
	Venue       string    `json:"venue,omitempty"`
	Competition string    `json:"competition"`
}

// LeagueRow 联赛积分榜中本俱乐部所在行
type LeagueRow struct {
	Position       int       `json:"position"`
	Team           string    `json:"team"`
	Played         int       `json:"played"`
	Won            int       `json:"won"`
	Drawn          int       `json:"drawn"`
	Lost           int       `json:"lost"`
	GoalsFor       int       `json:"goals_for"`
	GoalsAgainst   int       `json:"goals_against"`
	GoalDifference int       `json:"goal_difference"`
	Points         int       `json:"points"`
	Form           string    `json:"form,omitempty"`
	AsOf           time.Time `json:"as_of"`
}

// TableSnapshot 积分榜快照
type TableSnapshot struct {
	LeagueName string    `json:"league_name"`
	Row        LeagueRow `json:"row"`
}

// Provider 赛事数据源
type Provider interface {
	RecentResults(ctx context.Context, n int) ([]MatchResult, error)
	UpcomingFixtures(ctx context.Context, n int) ([]Fixture, error)
	LeaguePosition(ctx context.Context) (*LeagueRow, string, error)
}
