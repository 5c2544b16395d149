package shared

// messages 错误消息键到展示文案
var messages = map[string]string{
	"error.bad_request":                     "bad request",
	"error.internal":                        "internal server error",
	"error.not_found":                       "not found",
	"error.rate_limit_unavailable":          "rate limiter unavailable",
	"error.too_many_requests":               "too many requests, please try again later",
	"error.social_generate_rate_limited":    "too many generate requests, please try again later",
	"error.social_publish_rate_limited":     "too many publish requests for this post, please try again later",
	"error.social_post_not_found":           "social post not found",
	"error.social_post_invalid":             "social post invalid",
	"error.social_post_text_required":       "text is required",
	"error.social_post_platforms_required":  "at least one platform is required",
	"error.social_platform_unsupported":     "platform not supported",
	"error.social_post_duplicate_source":    "a post for this event already exists",
	"error.social_post_content_frozen":      "post content can no longer be edited",
	"error.social_post_not_publishable":     "post cannot be published in its current status",
	"error.social_publish_in_progress":      "post is already being published",
	"error.social_status_invalid":           "status transition not allowed",
	"error.social_generate_type_invalid":    "generate type invalid",
	"error.social_event_not_found":          "no matching event found",
	"error.social_event_source_unavailable": "event source unavailable",
	"error.social_queue_unavailable":        "task queue unavailable",
	"error.social_post_fetch_failed":        "failed to fetch social posts",
	"error.social_post_save_failed":         "failed to save social post",
	"error.social_post_delete_failed":       "failed to delete social post",
	"error.social_publish_failed":           "failed to publish social post",
	"error.social_generate_failed":          "failed to generate social posts",
}

// Message 返回消息键对应文案，未登记时返回键本身。
func Message(key string) string {
	if msg, ok := messages[key]; ok {
		return msg
	}
	return key
}
