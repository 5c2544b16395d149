package generator

import (
	"strings"

	"github.com/cwmbran-celtic/clubsocial/internal/constants"
	"github.com/cwmbran-celtic/clubsocial/internal/eventsource"
)

// ResultView 赛果模板可用字段（已格式化）
type ResultView struct {
	Result      eventsource.MatchResult
	ClubName    string
	Outcome     string // win / draw / loss / neutral
	ScoreLine   string // Home 3-1 Away
	Competition string
	Scorers     string // 为空时省略进球者
	Attendance  string // 为空时省略观众人数
}

// FixtureView 赛程/比赛日模板可用字段
type FixtureView struct {
	Fixture     eventsource.Fixture
	ClubName    string
	Matchup     string
	Date        string
	KickOff     string
	Venue       string
	Competition string
}

// TableView 积分榜模板可用字段
type TableView struct {
	Row            eventsource.LeagueRow
	LeagueName     string
	Team           string
	Position       string
	Points         string
	Record         string
	GoalDifference string
	Form           string
}

// Templates 各来源类型的正文模板，为空时使用内置模板
type Templates struct {
	Result      func(ResultView) string
	Fixture     func(FixtureView) string
	Matchday    func(FixtureView) string
	TableUpdate func(TableView) string
}

func (t Templates) withDefaults() Templates {
	if t.Result == nil {
		t.Result = DefaultResultTemplate
	}
	if t.Fixture == nil {
		t.Fixture = DefaultFixtureTemplate
	}
	if t.Matchday == nil {
		t.Matchday = DefaultMatchdayTemplate
	}
	if t.TableUpdate == nil {
		t.TableUpdate = DefaultTableUpdateTemplate
	}
	return t
}

// DefaultResultTemplate 内置赛果模板
func DefaultResultTemplate(v ResultView) string {
	var b strings.Builder
	b.WriteString("FULL TIME: ")
	b.WriteString(v.ScoreLine)
	b.WriteString("\n\n")

	in := ""
	if v.Competition != "" {
		in = " in the " + v.Competition
	}
	switch v.Outcome {
	case constants.MatchOutcomeWin:
		b.WriteString("Three points for " + v.ClubName + in + "! Great work, lads.")
	case constants.MatchOutcomeDraw:
		b.WriteString("Honours even for " + v.ClubName + in + ".")
	case constants.MatchOutcomeLoss:
		b.WriteString("Defeat for " + v.ClubName + in + ". We go again.")
	default:
		b.WriteString("Final score" + in + ".")
	}

	if v.Scorers != "" {
		b.WriteString("\n\nScorers: " + v.Scorers)
	}
	if v.Attendance != "" {
		b.WriteString("\nAttendance: " + v.Attendance)
	}
	return b.String()
}

// DefaultFixtureTemplate 内置赛程预告模板
func DefaultFixtureTemplate(v FixtureView) string {
	var b strings.Builder
	b.WriteString("NEXT UP: ")
	b.WriteString(v.Matchup)
	b.WriteString("\n\n")
	if v.Date != "" {
		b.WriteString(v.Date + ", " + v.KickOff)
	} else {
		b.WriteString("Date TBC")
	}
	if v.Venue != "" {
		b.WriteString("\nVenue: " + v.Venue)
	}
	if v.Competition != "" {
		b.WriteString("\nCompetition: " + v.Competition)
	}
	if v.ClubName != "" {
		b.WriteString("\n\nCome and support " + v.ClubName + "!")
	}
	return b.String()
}

// DefaultMatchdayTemplate 内置比赛日模板
func DefaultMatchdayTemplate(v FixtureView) string {
	var b strings.Builder
	b.WriteString("IT'S MATCHDAY! ")
	b.WriteString(v.Matchup)
	b.WriteString("\n\n")
	if v.KickOff != "" {
		b.WriteString("Kick-off " + v.KickOff + " TODAY")
	} else {
		b.WriteString("We play TODAY")
	}
	if v.Venue != "" {
		b.WriteString(" at " + v.Venue)
	}
	b.WriteString(".")
	if v.Competition != "" {
		b.WriteString("\n" + v.Competition)
	}
	b.WriteString("\n\nGet down and get behind the team!")
	return b.String()
}

// DefaultTableUpdateTemplate 内置积分榜模板
func DefaultTableUpdateTemplate(v TableView) string {
	var b strings.Builder
	b.WriteString("LEAGUE TABLE")
	if v.LeagueName != "" {
		b.WriteString(": " + v.LeagueName)
	}
	b.WriteString("\n\n")
	b.WriteString(v.Team + " sit " + v.Position + " on " + v.Points + " points.")
	b.WriteString("\n" + v.Record + " | GD " + v.GoalDifference)
	if v.Form != "" {
		b.WriteString("\nForm: " + v.Form)
	}
	return b.String()
}
