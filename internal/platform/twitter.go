package platform

import (
	"context"
	"errors"
	"strings"

	"github.com/cwmbran-celtic/clubsocial/internal/config"
	"github.com/cwmbran-celtic/clubsocial/internal/constants"
)

// TwitterSender X/Twitter v2 发布（POST /2/tweets），配图不随推文上传
type TwitterSender struct {
	baseURL string
	token   string
	client  *httpClient
}

// NewTwitterSender 创建 Twitter 发送器
func NewTwitterSender(cfg config.TwitterConfig, client *httpClient) *TwitterSender {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.twitter.com"
	}
	return &TwitterSender{baseURL: baseURL, token: strings.TrimSpace(cfg.BearerToken), client: client}
}

// Platform 平台标识
func (s *TwitterSender) Platform() string {
	return constants.PlatformTwitter
}

// Send 发布推文
func (s *TwitterSender) Send(ctx context.Context, content Content) (*Receipt, error) {
	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	payload := map[string]string{"text": render(content, constants.PlatformTwitter)}
	headers := map[string]string{"Authorization": "Bearer " + s.token}
	if err := s.client.postJSON(ctx, s.baseURL+"/2/tweets", headers, payload, &resp); err != nil {
		return nil, err
	}
	if resp.Data.ID == "" {
		return nil, errors.New("twitter response missing tweet id")
	}
	return &Receipt{ExternalID: resp.Data.ID}, nil
}
