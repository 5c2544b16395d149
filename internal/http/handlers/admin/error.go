package admin

import (
	"errors"

	handlershared "github.com/cwmbran-celtic/clubsocial/internal/http/handlers/shared"
	"github.com/cwmbran-celtic/clubsocial/internal/http/response"
	"github.com/cwmbran-celtic/clubsocial/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func normalizePagination(page, pageSize int) (int, int) {
	return handlershared.NormalizePagination(page, pageSize)
}

type socialErrorRule struct {
	target error
	code   int
	key    string
	logErr bool
}

// socialErrorRules 按顺序匹配，先具体后宽泛
var socialErrorRules = []socialErrorRule{
	{service.ErrPostNotFound, response.CodeNotFound, "error.social_post_not_found", false},
	{service.ErrPostTextRequired, response.CodeBadRequest, "error.social_post_text_required", false},
	{service.ErrPostPlatformsRequired, response.CodeBadRequest, "error.social_post_platforms_required", false},
	{service.ErrPlatformUnsupported, response.CodeBadRequest, "error.social_platform_unsupported", false},
	{service.ErrPostInvalid, response.CodeBadRequest, "error.social_post_invalid", false},
	{service.ErrGenerateTypeInvalid, response.CodeBadRequest, "error.social_generate_type_invalid", false},
	{service.ErrStatusTransitionInvalid, response.CodeBadRequest, "error.social_status_invalid", false},
	{service.ErrDuplicateSource, response.CodeConflict, "error.social_post_duplicate_source", false},
	{service.ErrPostContentFrozen, response.CodeConflict, "error.social_post_content_frozen", false},
	{service.ErrPostNotPublishable, response.CodeConflict, "error.social_post_not_publishable", false},
	{service.ErrPublishInProgress, response.CodeConflict, "error.social_publish_in_progress", false},
	{service.ErrEventNotFound, response.CodeNotFound, "error.social_event_not_found", false},
	{service.ErrEventSourceUnavailable, response.CodeUnavailable, "error.social_event_source_unavailable", true},
	{service.ErrQueueUnavailable, response.CodeUnavailable, "error.social_queue_unavailable", true},
}

// respondSocialError 将服务层错误映射为响应码，未知错误按 fallbackKey 返回 500
func respondSocialError(c *gin.Context, err error, fallbackKey string) {
	for _, rule := range socialErrorRules {
		if errors.Is(err, rule.target) {
			if rule.logErr {
				respondError(c, rule.code, rule.key, err)
			} else {
				respondError(c, rule.code, rule.key, nil)
			}
			return
		}
	}
	respondError(c, response.CodeInternal, fallbackKey, err)
}
