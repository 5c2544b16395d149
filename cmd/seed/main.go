package main

import (
	"context"
	"errors"
	"time"

	"github.com/cwmbran-celtic/clubsocial/internal/config"
	"github.com/cwmbran-celtic/clubsocial/internal/constants"
	"github.com/cwmbran-celtic/clubsocial/internal/eventsource"
	"github.com/cwmbran-celtic/clubsocial/internal/logger"
	"github.com/cwmbran-celtic/clubsocial/internal/models"
	"github.com/cwmbran-celtic/clubsocial/internal/provider"
	"github.com/cwmbran-celtic/clubsocial/internal/service"
)

const demoLeague = "JD Cymru South"

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, false); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	club := cfg.Social.ClubName
	now := time.Now().In(cfg.Social.Location())
	events := demoEvents(club, now)

	// 演示数据走正常扫描流程，重复执行只会跳过已存在的来源
	container := provider.NewContainerWithDeps(cfg, models.DB, events, nil, nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	for _, kind := range []string{constants.AutoScanKindResults, constants.AutoScanKindFixture, constants.AutoScanKindTable} {
		report, err := container.SocialScanner.RunAutoScan(ctx, kind, 0)
		if err != nil {
			if errors.Is(err, service.ErrEventNotFound) {
				stdLog.Printf("No demo data for %s", kind)
				continue
			}
			stdLog.Fatalf("Failed to seed %s posts: %v", kind, err)
		}
		if report == nil {
			continue
		}
		for _, post := range report.Created {
			stdLog.Printf("Created %s post: %s (%s)", post.SourceType, post.ID, post.SourceKey())
		}
		for _, sourceID := range report.Skipped {
			stdLog.Printf("Post already exists: %s", sourceID)
		}
		for _, failure := range report.Failed {
			stdLog.Printf("Failed to create post %s: %s", failure.SourceID, failure.Error)
		}
	}
	stdLog.Printf("Seed finished")
}

func demoEvents(club string, now time.Time) *eventsource.StaticProvider {
	day := time.Date(now.Year(), now.Month(), now.Day(), 15, 0, 0, 0, now.Location())
	results := []eventsource.MatchResult{
		{
			MatchID:     "demo-r1",
			HomeTeam:    club,
			AwayTeam:    "Trethomas Bluebirds",
			HomeScore:   3,
			AwayScore:   1,
			Date:        day.AddDate(0, 0, -7),
			Competition: demoLeague,
			Venue:       "Celtic Park, Cwmbran",
			Scorers:     []string{"Jones 12'", "Williams 54'", "Evans 88'"},
			Attendance:  214,
		},
		{
			MatchID:     "demo-r2",
			HomeTeam:    "Ammanford",
			AwayTeam:    club,
			HomeScore:   1,
			AwayScore:   1,
			Date:        day.AddDate(0, 0, -14),
			Competition: demoLeague,
		},
	}
	fixtures := []eventsource.Fixture{
		{
			MatchID:     "demo-f1",
			HomeTeam:    club,
			AwayTeam:    "Baglan Dragons",
			KickOff:     day.AddDate(0, 0, 7),
			Venue:       "Celtic Park, Cwmbran",
			Competition: demoLeague,
		},
		{
			MatchID:     "demo-f2",
			HomeTeam:    "Goytre United",
			AwayTeam:    club,
			KickOff:     day.AddDate(0, 0, 14).Add(-30 * time.Minute),
			Competition: "FAW Trophy",
		},
	}
	row := &eventsource.LeagueRow{
		Position:       2,
		Team:           club,
		Played:         11,
		Won:            7,
		Drawn:          2,
		Lost:           2,
		GoalsFor:       24,
		GoalsAgainst:   11,
		GoalDifference: 13,
		Points:         23,
		Form:           "WWDLW",
		AsOf:           now,
	}
	return eventsource.NewStaticProvider(results, fixtures, row, demoLeague)
}
