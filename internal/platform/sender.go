package platform

import (
	"context"
	"errors"
	"fmt"

	"github.com/cwmbran-celtic/clubsocial/internal/logger"
)

var (
	// ErrNotConfigured 平台未配置凭据
	ErrNotConfigured = errors.New("platform not configured")
	// ErrImageRequired 平台要求配图
	ErrImageRequired = errors.New("platform requires an image")
	// ErrUnsupported 不支持的平台
	ErrUnsupported = errors.New("platform not supported")
)

// Content 待发布内容
type Content struct {
	PostID   string
	Text     string
	Hashtags []string
	ImageURL string
}

// Receipt 平台回执
type Receipt struct {
	ExternalID string
}

// Sender 单个平台的发布能力
type Sender interface {
	Platform() string
	Send(ctx context.Context, content Content) (*Receipt, error)
}

// LogSender dry-run 模式：只记录日志，视为发布成功
type LogSender struct {
	platform string
}

// NewLogSender 创建 dry-run 发送器
func NewLogSender(platform string) *LogSender {
	return &LogSender{platform: platform}
}

// Platform 平台标识
func (s *LogSender) Platform() string {
	return s.platform
}

// Send 记录将要发布的内容
func (s *LogSender) Send(ctx context.Context, content Content) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Infow("social_platform_dry_run",
		"platform", s.platform,
		"post_id", content.PostID,
		"body", render(content, s.platform),
		"image_url", content.ImageURL,
	)
	return &Receipt{ExternalID: "dry-run:" + content.PostID}, nil
}

// DisabledSender 未配置的平台，发布总是失败
type DisabledSender struct {
	platform string
}

// NewDisabledSender 创建未配置发送器
func NewDisabledSender(platform string) *DisabledSender {
	return &DisabledSender{platform: platform}
}

// Platform 平台标识
func (s *DisabledSender) Platform() string {
	return s.platform
}

// Send 返回 ErrNotConfigured
func (s *DisabledSender) Send(ctx context.Context, content Content) (*Receipt, error) {
	return nil, fmt.Errorf("%s: %w", s.platform, ErrNotConfigured)
}
