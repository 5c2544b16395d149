package generator

import (
	"reflect"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/cwmbran-celtic/clubsocial/internal/constants"
	"github.com/cwmbran-celtic/clubsocial/internal/eventsource"
)

func newTestGenerator() *Generator {
	return New(Config{
		ClubName:     "Cwmbran Celtic",
		BaseHashtags: []string{"#UpTheCeltic"},
		Location:     time.UTC,
	})
}

func sampleResult() eventsource.MatchResult {
	return eventsource.MatchResult{
		MatchID:     "M1",
		HomeTeam:    "Cwmbran Celtic",
		AwayTeam:    "Test Town",
		HomeScore:   3,
		AwayScore:   1,
		Competition: "JD Cymru South",
	}
}

func TestResultPostWinFraming(t *testing.T) {
	draft := newTestGenerator().ResultPost(sampleResult())

	if draft.SourceType != constants.SocialSourceResult || draft.SourceID != "M1" {
		t.Fatalf("unexpected source: %s/%s", draft.SourceType, draft.SourceID)
	}
	if !strings.HasPrefix(draft.Text, "FULL TIME: Cwmbran Celtic 3-1 Test Town") {
		t.Fatalf("unexpected headline: %q", draft.Text)
	}
	if !strings.Contains(draft.Text, "Three points for Cwmbran Celtic in the JD Cymru South") {
		t.Fatalf("expected win framing: %q", draft.Text)
	}
	if strings.Contains(draft.Text, "Scorers") || strings.Contains(draft.Text, "Attendance") {
		t.Fatalf("empty optional clauses should be omitted: %q", draft.Text)
	}
	wantTags := []string{"UpTheCeltic", "CwmbranCeltic", "JDCymruSouth", "FullTime"}
	if !reflect.DeepEqual(draft.Hashtags, wantTags) {
		t.Fatalf("hashtags want %v got %v", wantTags, draft.Hashtags)
	}
	if !reflect.DeepEqual(draft.Platforms, constants.SupportedPlatforms) {
		t.Fatalf("default platforms want %v got %v", constants.SupportedPlatforms, draft.Platforms)
	}
}

func TestResultPostOutcomes(t *testing.T) {
	gen := newTestGenerator()

	away := sampleResult()
	away.HomeTeam, away.AwayTeam = "Test Town", "Cwmbran Celtic"
	away.HomeScore, away.AwayScore = 2, 0
	if text := gen.ResultPost(away).Text; !strings.Contains(text, "Defeat for Cwmbran Celtic") {
		t.Fatalf("expected loss framing for away defeat: %q", text)
	}

	draw := sampleResult()
	draw.AwayScore = 3
	if text := gen.ResultPost(draw).Text; !strings.Contains(text, "Honours even") {
		t.Fatalf("expected draw framing: %q", text)
	}

	neutral := sampleResult()
	neutral.HomeTeam = "Other FC"
	if text := gen.ResultPost(neutral).Text; !strings.Contains(text, "Final score in the JD Cymru South.") {
		t.Fatalf("expected neutral framing: %q", text)
	}
}

func TestResultPostOptionalClauses(t *testing.T) {
	result := sampleResult()
	result.Scorers = []string{"Jones 12'", " ", "Evans 70'"}
	result.Attendance = 1204
	text := newTestGenerator().ResultPost(result).Text

	if !strings.Contains(text, "Scorers: Jones 12', Evans 70'") {
		t.Fatalf("scorers clause missing: %q", text)
	}
	if !strings.Contains(text, "Attendance: 1204") {
		t.Fatalf("attendance should be a plain integer: %q", text)
	}
}

func TestResultPostDeterministic(t *testing.T) {
	gen := newTestGenerator()
	first := gen.ResultPost(sampleResult())
	second := gen.ResultPost(sampleResult())
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("generation should be deterministic:\n%#v\n%#v", first, second)
	}
}

func TestFixtureAndMatchdayShareSourceID(t *testing.T) {
	gen := newTestGenerator()
	fixture := eventsource.Fixture{
		MatchID:     "F9",
		HomeTeam:    "Cwmbran Celtic",
		AwayTeam:    "Test Town",
		KickOff:     time.Date(2026, 10, 24, 15, 0, 0, 0, time.UTC),
		Venue:       "Celtic Park",
		Competition: "JD Cymru South",
	}

	fixturePost := gen.FixturePost(fixture)
	matchdayPost := gen.MatchdayPost(fixture)

	if fixturePost.SourceType != constants.SocialSourceFixture || matchdayPost.SourceType != constants.SocialSourceMatchday {
		t.Fatalf("unexpected source types: %s %s", fixturePost.SourceType, matchdayPost.SourceType)
	}
	if fixturePost.SourceID != "F9" || matchdayPost.SourceID != "F9" {
		t.Fatalf("fixture and matchday should share match id")
	}
	if !strings.Contains(fixturePost.Text, "Saturday 24 October 2026, 15:00") {
		t.Fatalf("fixture date missing: %q", fixturePost.Text)
	}
	if !strings.Contains(fixturePost.Text, "Venue: Celtic Park") {
		t.Fatalf("fixture venue missing: %q", fixturePost.Text)
	}
	if !strings.HasPrefix(matchdayPost.Text, "IT'S MATCHDAY!") || !strings.Contains(matchdayPost.Text, "TODAY") {
		t.Fatalf("matchday urgency missing: %q", matchdayPost.Text)
	}

	fixture.KickOff = time.Time{}
	fixture.Venue = ""
	if text := gen.FixturePost(fixture).Text; !strings.Contains(text, "Date TBC") || strings.Contains(text, "Venue") {
		t.Fatalf("missing date/venue should degrade gracefully: %q", text)
	}
}

func TestTableUpdatePost(t *testing.T) {
	row := eventsource.LeagueRow{
		Position:       2,
		Team:           "Cwmbran Celtic",
		Played:         10,
		Won:            7,
		Drawn:          2,
		Lost:           1,
		GoalDifference: 12,
		Points:         23,
		Form:           "wwdlw",
		AsOf:           time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC),
	}
	draft := newTestGenerator().TableUpdatePost(row, "JD Cymru South")

	if draft.SourceID != "jd-cymru-south:2026-10-18" {
		t.Fatalf("unexpected table source id: %s", draft.SourceID)
	}
	for _, want := range []string{"sit 2nd on 23 points", "P10 W7 D2 L1 | GD +12", "Form: W W D L W"} {
		if !strings.Contains(draft.Text, want) {
			t.Fatalf("expected %q in %q", want, draft.Text)
		}
	}
}

func TestCustomPostAndTemplateOverride(t *testing.T) {
	gen := New(Config{
		ClubName: "Cwmbran Celtic",
		Templates: Templates{
			Result: func(v ResultView) string { return "FT " + v.ScoreLine + " (" + v.Outcome + ")" },
		},
	})
	if text := gen.ResultPost(sampleResult()).Text; text != "FT Cwmbran Celtic 3-1 Test Town (win)" {
		t.Fatalf("custom template not applied: %q", text)
	}

	draft := gen.CustomPost("  Club shop open Saturday  ", []string{"Twitter", "twitter", " facebook "}, []string{"#Shop", "shop", "New Kit"}, " https://img/kit.png ")
	if draft.SourceType != constants.SocialSourceCustom || draft.SourceID != "" {
		t.Fatalf("custom post should have no source id: %+v", draft)
	}
	if draft.Text != "Club shop open Saturday" || draft.ImageURL != "https://img/kit.png" {
		t.Fatalf("unexpected custom draft: %+v", draft)
	}
	if !reflect.DeepEqual(draft.Platforms, []string{"twitter", "facebook"}) {
		t.Fatalf("unexpected platforms: %v", draft.Platforms)
	}
	if !reflect.DeepEqual(draft.Hashtags, []string{"Shop", "NewKit"}) {
		t.Fatalf("unexpected hashtags: %v", draft.Hashtags)
	}
}

func TestOrdinal(t *testing.T) {
	cases := map[int]string{1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 11: "11th", 12: "12th", 13: "13th", 21: "21st", 22: "22nd", 111: "111th"}
	for n, want := range cases {
		if got := Ordinal(n); got != want {
			t.Fatalf("Ordinal(%d) want %s got %s", n, want, got)
		}
	}
}

func TestRender(t *testing.T) {
	if got := Render("Hello", []string{"A", "#B"}, constants.PlatformFacebook); got != "Hello\n\n#A #B" {
		t.Fatalf("unexpected render: %q", got)
	}
	if got := Render("Hello", nil, constants.PlatformTwitter); got != "Hello" {
		t.Fatalf("unexpected render without tags: %q", got)
	}

	text := strings.Repeat("a", 270)
	got := Render(text, []string{"CwmbranCeltic", "FullTime"}, constants.PlatformTwitter)
	if got != text {
		t.Fatalf("hashtags should be dropped before truncating text, got %d runes", utf8.RuneCountInString(got))
	}

	long := strings.Repeat("é", 400)
	got = Render(long, []string{"Tag"}, constants.PlatformTwitter)
	if utf8.RuneCountInString(got) != TwitterMaxRunes || !strings.HasSuffix(got, "…") {
		t.Fatalf("long twitter body should be truncated to %d runes, got %d", TwitterMaxRunes, utf8.RuneCountInString(got))
	}
	if got := Render(long, nil, constants.PlatformInstagram); got != long {
		t.Fatalf("non-twitter platforms should not be truncated")
	}
}
