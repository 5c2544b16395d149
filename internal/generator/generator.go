package generator

import (
	"strconv"
	"strings"
	"time"

	"github.com/cwmbran-celtic/clubsocial/internal/constants"
	"github.com/cwmbran-celtic/clubsocial/internal/eventsource"
)

// Draft 生成器产出的帖子草稿（尚未入库）
type Draft struct {
	Text       string
	Hashtags   []string
	Platforms  []string
	ImageURL   string
	SourceType string
	SourceID   string
}

// Config 生成器配置
type Config struct {
	ClubName         string
	ClubTag          string
	Location         *time.Location
	DefaultPlatforms []string
	BaseHashtags     []string
	Templates        Templates
}

// Generator 社媒帖子内容生成器，纯函数，不做 I/O、不读时钟
type Generator struct {
	clubName         string
	clubTag          string
	location         *time.Location
	defaultPlatforms []string
	baseHashtags     []string
	templates        Templates
}

// New 创建生成器
func New(cfg Config) *Generator {
	clubName := strings.TrimSpace(cfg.ClubName)
	clubTag := strings.TrimPrefix(strings.TrimSpace(cfg.ClubTag), "#")
	if clubTag == "" {
		clubTag = Tagify(clubName)
	}
	location := cfg.Location
	if location == nil {
		location = time.UTC
	}
	platforms := NormalizePlatforms(cfg.DefaultPlatforms)
	if len(platforms) == 0 {
		platforms = append([]string(nil), constants.SupportedPlatforms...)
	}
	return &Generator{
		clubName:         clubName,
		clubTag:          clubTag,
		location:         location,
		defaultPlatforms: platforms,
		baseHashtags:     NormalizeHashtags(cfg.BaseHashtags),
		templates:        cfg.Templates.withDefaults(),
	}
}

// ClubName 俱乐部名称
func (g *Generator) ClubName() string {
	return g.clubName
}

// DefaultPlatforms 默认发布平台（副本）
func (g *Generator) DefaultPlatforms() []string {
	return append([]string(nil), g.defaultPlatforms...)
}

// ResultPost 赛果帖子
func (g *Generator) ResultPost(result eventsource.MatchResult) Draft {
	view := g.resultView(result)
	return Draft{
		Text:       strings.TrimSpace(g.templates.Result(view)),
		Hashtags:   g.hashtags(result.Competition, "FullTime"),
		Platforms:  g.DefaultPlatforms(),
		SourceType: constants.SocialSourceResult,
		SourceID:   strings.TrimSpace(result.MatchID),
	}
}

// FixturePost 赛程预告帖子
func (g *Generator) FixturePost(fixture eventsource.Fixture) Draft {
	return Draft{
		Text:       strings.TrimSpace(g.templates.Fixture(g.fixtureView(fixture))),
		Hashtags:   g.hashtags(fixture.Competition, "NextMatch"),
		Platforms:  g.DefaultPlatforms(),
		SourceType: constants.SocialSourceFixture,
		SourceID:   strings.TrimSpace(fixture.MatchID),
	}
}

// MatchdayPost 比赛日当天帖子，来源标识与赛程帖子一致
func (g *Generator) MatchdayPost(fixture eventsource.Fixture) Draft {
	return Draft{
		Text:       strings.TrimSpace(g.templates.Matchday(g.fixtureView(fixture))),
		Hashtags:   g.hashtags(fixture.Competition, "Matchday"),
		Platforms:  g.DefaultPlatforms(),
		SourceType: constants.SocialSourceMatchday,
		SourceID:   strings.TrimSpace(fixture.MatchID),
	}
}

// TableUpdatePost 积分榜更新帖子
func (g *Generator) TableUpdatePost(row eventsource.LeagueRow, leagueName string) Draft {
	leagueName = strings.TrimSpace(leagueName)
	return Draft{
		Text:       strings.TrimSpace(g.templates.TableUpdate(g.tableView(row, leagueName))),
		Hashtags:   g.hashtags(leagueName, "LeagueTable"),
		Platforms:  g.DefaultPlatforms(),
		SourceType: constants.SocialSourceTableUpdate,
		SourceID:   TableSourceID(leagueName, row.AsOf),
	}
}

// CustomPost 运营手工帖子，不参与去重
func (g *Generator) CustomPost(text string, platforms []string, hashtags []string, imageURL string) Draft {
	return Draft{
		Text:       strings.TrimSpace(text),
		Hashtags:   NormalizeHashtags(hashtags),
		Platforms:  NormalizePlatforms(platforms),
		ImageURL:   strings.TrimSpace(imageURL),
		SourceType: constants.SocialSourceCustom,
	}
}

func (g *Generator) hashtags(competition string, suffix string) []string {
	tags := make([]string, 0, len(g.baseHashtags)+3)
	tags = append(tags, g.baseHashtags...)
	tags = append(tags, g.clubTag, Tagify(competition), suffix)
	return NormalizeHashtags(tags)
}

func (g *Generator) isClub(team string) bool {
	return g.clubName != "" && strings.EqualFold(strings.TrimSpace(team), g.clubName)
}

func (g *Generator) resultView(result eventsource.MatchResult) ResultView {
	outcome := constants.MatchOutcomeNeutral
	clubScore, otherScore := 0, 0
	switch {
	case g.isClub(result.HomeTeam):
		clubScore, otherScore = result.HomeScore, result.AwayScore
		outcome = compareScores(clubScore, otherScore)
	case g.isClub(result.AwayTeam):
		clubScore, otherScore = result.AwayScore, result.HomeScore
		outcome = compareScores(clubScore, otherScore)
	}

	scorers := make([]string, 0, len(result.Scorers))
	for _, scorer := range result.Scorers {
		if trimmed := strings.TrimSpace(scorer); trimmed != "" {
			scorers = append(scorers, trimmed)
		}
	}
	attendance := ""
	if result.Attendance > 0 {
		attendance = strconv.Itoa(result.Attendance)
	}

	return ResultView{
		Result:      result,
		ClubName:    g.clubName,
		Outcome:     outcome,
		ScoreLine:   strings.TrimSpace(result.HomeTeam) + " " + strconv.Itoa(result.HomeScore) + "-" + strconv.Itoa(result.AwayScore) + " " + strings.TrimSpace(result.AwayTeam),
		Competition: strings.TrimSpace(result.Competition),
		Scorers:     strings.Join(scorers, ", "),
		Attendance:  attendance,
	}
}

func (g *Generator) fixtureView(fixture eventsource.Fixture) FixtureView {
	view := FixtureView{
		Fixture:     fixture,
		ClubName:    g.clubName,
		Matchup:     strings.TrimSpace(fixture.HomeTeam) + " vs " + strings.TrimSpace(fixture.AwayTeam),
		Venue:       strings.TrimSpace(fixture.Venue),
		Competition: strings.TrimSpace(fixture.Competition),
	}
	if !fixture.KickOff.IsZero() {
		local := fixture.KickOff.In(g.location)
		view.Date = local.Format("Monday 2 January 2006")
		view.KickOff = local.Format("15:04")
	}
	return view
}

func (g *Generator) tableView(row eventsource.LeagueRow, leagueName string) TableView {
	team := strings.TrimSpace(row.Team)
	if team == "" {
		team = g.clubName
	}
	return TableView{
		Row:            row,
		LeagueName:     leagueName,
		Team:           team,
		Position:       Ordinal(row.Position),
		Points:         strconv.Itoa(row.Points),
		Record:         "P" + strconv.Itoa(row.Played) + " W" + strconv.Itoa(row.Won) + " D" + strconv.Itoa(row.Drawn) + " L" + strconv.Itoa(row.Lost),
		GoalDifference: SignedInt(row.GoalDifference),
		Form:           formatForm(row.Form),
	}
}

func compareScores(club, other int) string {
	switch {
	case club > other:
		return constants.MatchOutcomeWin
	case club < other:
		return constants.MatchOutcomeLoss
	default:
		return constants.MatchOutcomeDraw
	}
}

// TableSourceID 积分榜帖子来源标识：<联赛 slug>:<YYYY-MM-DD>
func TableSourceID(leagueName string, asOf time.Time) string {
	return Slugify(leagueName) + ":" + asOf.Format("2006-01-02")
}
