package platform

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/cwmbran-celtic/clubsocial/internal/config"
	"github.com/cwmbran-celtic/clubsocial/internal/constants"
)

const defaultGraphBaseURL = "https://graph.facebook.com"

type graphIDResponse struct {
	ID     string `json:"id"`
	PostID string `json:"post_id"`
}

func (r graphIDResponse) externalID() string {
	if r.PostID != "" {
		return r.PostID
	}
	return r.ID
}

func graphEndpoint(baseURL, version, node, edge string) string {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultGraphBaseURL
	}
	version = strings.Trim(strings.TrimSpace(version), "/")
	if version == "" {
		return fmt.Sprintf("%s/%s/%s", baseURL, url.PathEscape(node), edge)
	}
	return fmt.Sprintf("%s/%s/%s/%s", baseURL, version, url.PathEscape(node), edge)
}

// FacebookSender Facebook 主页发布：有配图走 /photos，否则走 /feed
type FacebookSender struct {
	cfg    config.FacebookConfig
	client *httpClient
}

// NewFacebookSender 创建 Facebook 发送器
func NewFacebookSender(cfg config.FacebookConfig, client *httpClient) *FacebookSender {
	return &FacebookSender{cfg: cfg, client: client}
}

// Platform 平台标识
func (s *FacebookSender) Platform() string {
	return constants.PlatformFacebook
}

// Send 发布主页帖子
func (s *FacebookSender) Send(ctx context.Context, content Content) (*Receipt, error) {
	body := render(content, constants.PlatformFacebook)
	form := url.Values{"access_token": []string{s.cfg.AccessToken}}
	edge := "feed"
	if content.ImageURL != "" {
		edge = "photos"
		form.Set("url", content.ImageURL)
		form.Set("caption", body)
	} else {
		form.Set("message", body)
	}

	var resp graphIDResponse
	if err := s.client.postForm(ctx, graphEndpoint(s.cfg.BaseURL, s.cfg.APIVersion, s.cfg.PageID, edge), form, &resp); err != nil {
		return nil, err
	}
	if resp.externalID() == "" {
		return nil, errors.New("facebook response missing post id")
	}
	return &Receipt{ExternalID: resp.externalID()}, nil
}

// InstagramSender Instagram 商业账号发布：先建媒体容器再 media_publish，必须有配图
type InstagramSender struct {
	cfg    config.InstagramConfig
	client *httpClient
}

// NewInstagramSender 创建 Instagram 发送器
func NewInstagramSender(cfg config.InstagramConfig, client *httpClient) *InstagramSender {
	return &InstagramSender{cfg: cfg, client: client}
}

// Platform 平台标识
func (s *InstagramSender) Platform() string {
	return constants.PlatformInstagram
}

// Send 发布图片帖子
func (s *InstagramSender) Send(ctx context.Context, content Content) (*Receipt, error) {
	if strings.TrimSpace(content.ImageURL) == "" {
		return nil, ErrImageRequired
	}

	var container graphIDResponse
	createForm := url.Values{
		"image_url":    []string{content.ImageURL},
		"caption":      []string{render(content, constants.PlatformInstagram)},
		"access_token": []string{s.cfg.AccessToken},
	}
	if err := s.client.postForm(ctx, graphEndpoint(s.cfg.BaseURL, s.cfg.APIVersion, s.cfg.AccountID, "media"), createForm, &container); err != nil {
		return nil, fmt.Errorf("create media container: %w", err)
	}
	if container.ID == "" {
		return nil, errors.New("instagram response missing container id")
	}

	var published graphIDResponse
	publishForm := url.Values{
		"creation_id":  []string{container.ID},
		"access_token": []string{s.cfg.AccessToken},
	}
	if err := s.client.postForm(ctx, graphEndpoint(s.cfg.BaseURL, s.cfg.APIVersion, s.cfg.AccountID, "media_publish"), publishForm, &published); err != nil {
		return nil, fmt.Errorf("publish media: %w", err)
	}
	if published.ID == "" {
		return nil, errors.New("instagram response missing media id")
	}
	return &Receipt{ExternalID: published.ID}, nil
}
