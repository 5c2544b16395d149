package models

import (
	"time"
)

// SocialPost 社媒帖子表
type SocialPost struct {
	ID                string          `gorm:"primarykey;type:varchar(36)" json:"id"`                                                            // 主键（UUID）
	Text              string          `gorm:"type:text;not null" json:"text"`                                                                   // 正文（与平台无关）
	Hashtags          StringArray     `gorm:"type:json" json:"hashtags"`                                                                        // 话题标签（不含 #）
	Platforms         StringArray     `gorm:"type:json;not null" json:"platforms"`                                                              // 目标平台
	ImageURL          string          `gorm:"type:varchar(1000)" json:"image_url,omitempty"`                                                    // 配图
	SourceType        string          `gorm:"type:varchar(32);not null;index;uniqueIndex:ux_social_posts_source,priority:1" json:"source_type"` // 来源类型
	SourceID          *string         `gorm:"type:varchar(191);uniqueIndex:ux_social_posts_source,priority:2" json:"source_id,omitempty"`       // 来源事件标识（自定义帖子为空）
	Status            string          `gorm:"type:varchar(16);not null;index" json:"status"`                                                    // 生命周期状态
	PlatformResults   PlatformResults `gorm:"type:json" json:"platform_results,omitempty"`                                                      // 各平台发布结果
	CreatedAt         time.Time       `gorm:"index" json:"created_at"`                                                                          // 创建时间
	UpdatedAt         time.Time       `json:"updated_at"`                                                                                       // 更新时间
	PublishedAt       *time.Time      `gorm:"index" json:"published_at,omitempty"`                                                              // 全部平台发布成功时间
	PublishLeaseUntil *time.Time      `gorm:"index" json:"publish_lease_until,omitempty"`                                                       // 发布占用截止时间（发送进行中）
}

// TableName 指定表名
func (SocialPost) TableName() string {
	return "social_posts"
}

// SourceKey 返回来源标识（无则为空字符串）
func (p *SocialPost) SourceKey() string {
	if p == nil || p.SourceID == nil {
		return ""
	}
	return *p.SourceID
}

// HasPlatform 是否包含目标平台
func (p *SocialPost) HasPlatform(platform string) bool {
	if p == nil {
		return false
	}
	for _, item := range p.Platforms {
		if item == platform {
			return true
		}
	}
	return false
}

// Publishing 发送进行中（占用未过期）
func (p *SocialPost) Publishing(now time.Time) bool {
	return p != nil && p.PublishLeaseUntil != nil && now.Before(*p.PublishLeaseUntil)
}

// PendingPlatforms 返回尚未成功发布的平台（保持原有顺序）
func (p *SocialPost) PendingPlatforms() []string {
	if p == nil {
		return nil
	}
	pending := make([]string, 0, len(p.Platforms))
	for _, platform := range p.Platforms {
		if p.PlatformResults.Succeeded(platform) {
			continue
		}
		pending = append(pending, platform)
	}
	return pending
}
