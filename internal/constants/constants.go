package constants

// 社媒帖子状态常量
const (
	SocialPostStatusDraft     = "draft"
	SocialPostStatusQueued    = "queued"
	SocialPostStatusPublished = "published"
	SocialPostStatusFailed    = "failed"
)

// 社媒帖子来源类型常量
const (
	SocialSourceResult      = "result"
	SocialSourceFixture     = "fixture"
	SocialSourceMatchday    = "matchday"
	SocialSourceTableUpdate = "table_update"
	SocialSourceCustom      = "custom"
)

// 社媒平台常量
const (
	PlatformTwitter   = "twitter"
	PlatformFacebook  = "facebook"
	PlatformInstagram = "instagram"
)

// 生成触发类型常量（包含批量自动扫描）
const (
	GenerateTypeResult       = SocialSourceResult
	GenerateTypeFixture      = SocialSourceFixture
	GenerateTypeMatchday     = SocialSourceMatchday
	GenerateTypeTableUpdate  = SocialSourceTableUpdate
	GenerateTypeAutoResults  = "auto_results"
	GenerateTypeAutoFixtures = "auto_fixtures"
)

// 比赛结果常量（相对本俱乐部）
const (
	MatchOutcomeWin     = "win"
	MatchOutcomeDraw    = "draw"
	MatchOutcomeLoss    = "loss"
	MatchOutcomeNeutral = "neutral"
)

// 队列相关常量
const (
	QueueDefault        = "default"
	QueueCritical       = "critical"
	TaskSocialPublish   = "social:publish_post"
	TaskSocialAutoScan  = "social:auto_scan"
	AutoScanKindResults = "results"
	AutoScanKindFixture = "fixtures"
	AutoScanKindTable   = "table"
)

// SocialPostStatuses 全部帖子状态（用于统计补零）
var SocialPostStatuses = []string{
	SocialPostStatusDraft,
	SocialPostStatusQueued,
	SocialPostStatusPublished,
	SocialPostStatusFailed,
}

// SocialSourceTypes 全部来源类型（用于统计补零）
var SocialSourceTypes = []string{
	SocialSourceResult,
	SocialSourceFixture,
	SocialSourceMatchday,
	SocialSourceTableUpdate,
	SocialSourceCustom,
}

// SupportedPlatforms 支持的平台（有序）
var SupportedPlatforms = []string{
	PlatformTwitter,
	PlatformFacebook,
	PlatformInstagram,
}
