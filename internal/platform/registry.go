package platform

import (
	"net/http"
	"strings"
	"time"

	"github.com/cwmbran-celtic/clubsocial/internal/config"
	"github.com/cwmbran-celtic/clubsocial/internal/constants"
	"github.com/cwmbran-celtic/clubsocial/internal/generator"
)

const defaultSendTimeout = 30 * time.Second

// 发送器模式
const (
	ModeLive     = "live"
	ModeDryRun   = "dry_run"
	ModeDisabled = "disabled"
)

// Registry 平台发送器注册表，每个支持的平台总有一个发送器
type Registry struct {
	senders map[string]Sender
	modes   map[string]string
}

// NewRegistry 按配置构建：有凭据用 HTTP 适配器，dry_run 用日志发送器，否则为未配置发送器
func NewRegistry(cfg config.PlatformsConfig, dryRun bool) *Registry {
	client := newHTTPClient(&http.Client{Timeout: defaultSendTimeout}, cfg.Retry)
	registry := &Registry{senders: map[string]Sender{}, modes: map[string]string{}}

	live := map[string]Sender{}
	if strings.TrimSpace(cfg.Twitter.BearerToken) != "" {
		live[constants.PlatformTwitter] = NewTwitterSender(cfg.Twitter, client)
	}
	if strings.TrimSpace(cfg.Facebook.PageID) != "" && strings.TrimSpace(cfg.Facebook.AccessToken) != "" {
		live[constants.PlatformFacebook] = NewFacebookSender(cfg.Facebook, client)
	}
	if strings.TrimSpace(cfg.Instagram.AccountID) != "" && strings.TrimSpace(cfg.Instagram.AccessToken) != "" {
		live[constants.PlatformInstagram] = NewInstagramSender(cfg.Instagram, client)
	}

	for _, platform := range constants.SupportedPlatforms {
		switch {
		case dryRun:
			registry.register(NewLogSender(platform), ModeDryRun)
		case live[platform] != nil:
			registry.register(live[platform], ModeLive)
		default:
			registry.register(NewDisabledSender(platform), ModeDisabled)
		}
	}
	return registry
}

// NewStaticRegistry 使用给定发送器构建注册表，缺失的支持平台补未配置发送器
func NewStaticRegistry(senders ...Sender) *Registry {
	registry := &Registry{senders: map[string]Sender{}, modes: map[string]string{}}
	for _, sender := range senders {
		if sender != nil {
			registry.register(sender, ModeLive)
		}
	}
	for _, platform := range constants.SupportedPlatforms {
		if _, ok := registry.senders[platform]; !ok {
			registry.register(NewDisabledSender(platform), ModeDisabled)
		}
	}
	return registry
}

func (r *Registry) register(sender Sender, mode string) {
	r.senders[sender.Platform()] = sender
	r.modes[sender.Platform()] = mode
}

// Sender 获取平台发送器
func (r *Registry) Sender(platform string) (Sender, bool) {
	if r == nil {
		return nil, false
	}
	sender, ok := r.senders[platform]
	return sender, ok
}

// Modes 各平台发送器模式（用于健康检查展示）
func (r *Registry) Modes() map[string]string {
	modes := make(map[string]string, len(r.modes))
	for platform, mode := range r.modes {
		modes[platform] = mode
	}
	return modes
}

// IsSupported 是否为支持的平台
func IsSupported(platform string) bool {
	for _, item := range constants.SupportedPlatforms {
		if item == platform {
			return true
		}
	}
	return false
}

func render(content Content, platform string) string {
	return generator.Render(content.Text, content.Hashtags, platform)
}
