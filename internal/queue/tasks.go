package queue

import (
	"encoding/json"

	"github.com/cwmbran-celtic/clubsocial/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskSocialPublish 社媒帖子发布任务
	TaskSocialPublish = constants.TaskSocialPublish
	// TaskSocialAutoScan 自动扫描生成任务
	TaskSocialAutoScan = constants.TaskSocialAutoScan
)

// SocialPublishPayload 发布任务载荷
type SocialPublishPayload struct {
	PostID string `json:"post_id"`
}

// SocialAutoScanPayload 自动扫描任务载荷
type SocialAutoScanPayload struct {
	Kind  string `json:"kind"` // results / fixtures / table
	Limit int    `json:"limit"`
}

// NewSocialPublishTask 创建发布任务
func NewSocialPublishTask(payload SocialPublishPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSocialPublish, body), nil
}

// NewSocialAutoScanTask 创建自动扫描任务
func NewSocialAutoScanTask(payload SocialAutoScanPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSocialAutoScan, body), nil
}
