package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cwmbran-celtic/clubsocial/internal/logger"
	"github.com/cwmbran-celtic/clubsocial/internal/provider"
	"github.com/cwmbran-celtic/clubsocial/internal/queue"
	"github.com/cwmbran-celtic/clubsocial/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskSocialPublish, c.handleSocialPublish)
	mux.HandleFunc(queue.TaskSocialAutoScan, c.handleSocialAutoScan)
}

func (c *Consumer) handleSocialPublish(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_social_publish_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.SocialPublishPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_social_publish_unmarshal_failed", "error", err)
		return err
	}
	postID := strings.TrimSpace(payload.PostID)
	if postID == "" {
		logger.Debugw("worker_social_publish_skip_invalid_payload")
		return nil
	}
	if c.SocialPublisher == nil {
		logger.Warnw("worker_social_publish_skip_publisher_nil", "post_id", postID)
		return nil
	}
	result, err := c.SocialPublisher.Publish(ctx, postID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			logger.Debugw("worker_social_publish_skip_not_found", "post_id", postID)
			return nil
		case errors.Is(err, service.ErrPostNotPublishable):
			logger.Debugw("worker_social_publish_skip_not_publishable", "post_id", postID)
			return nil
		case errors.Is(err, service.ErrPublishInProgress):
			logger.Debugw("worker_social_publish_skip_in_progress", "post_id", postID)
			return nil
		case errors.Is(err, service.ErrPublishPersistFailed):
			// 平台已收到请求，重试会重复发帖
			logger.Errorw("worker_social_publish_persist_failed", "post_id", postID, "error", err)
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		default:
			logger.Warnw("worker_social_publish_failed", "post_id", postID, "error", err)
			return err
		}
	}
	if !result.Success {
		logger.Warnw("worker_social_publish_partial", "post_id", postID, "status", result.Post.Status)
	}
	return nil
}

func (c *Consumer) handleSocialAutoScan(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_social_auto_scan_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.SocialAutoScanPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_social_auto_scan_unmarshal_failed", "error", err)
		return err
	}
	if c.SocialScanner == nil {
		logger.Warnw("worker_social_auto_scan_skip_scanner_nil", "kind", payload.Kind)
		return nil
	}
	_, err := c.SocialScanner.RunAutoScan(ctx, strings.TrimSpace(payload.Kind), payload.Limit)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGenerateTypeInvalid):
			logger.Debugw("worker_social_auto_scan_skip_invalid_kind", "kind", payload.Kind)
			return nil
		case errors.Is(err, service.ErrEventNotFound):
			logger.Debugw("worker_social_auto_scan_skip_no_events", "kind", payload.Kind)
			return nil
		default:
			logger.Warnw("worker_social_auto_scan_failed", "kind", payload.Kind, "error", err)
			return err
		}
	}
	return nil
}
