package service

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cwmbran-celtic/clubsocial/internal/constants"
	"github.com/cwmbran-celtic/clubsocial/internal/generator"
	"github.com/cwmbran-celtic/clubsocial/internal/logger"
	"github.com/cwmbran-celtic/clubsocial/internal/models"
	"github.com/cwmbran-celtic/clubsocial/internal/platform"
	"github.com/cwmbran-celtic/clubsocial/internal/repository"
)

// SocialPostService 社媒帖子生命周期服务
type SocialPostService struct {
	repo      repository.SocialPostRepository
	generator *generator.Generator
	now       func() time.Time
}

// NewSocialPostService 创建社媒帖子服务
func NewSocialPostService(repo repository.SocialPostRepository, gen *generator.Generator) *SocialPostService {
	return &SocialPostService{repo: repo, generator: gen, now: time.Now}
}

// CreateSocialPostInput 创建自定义帖子输入
type CreateSocialPostInput struct {
	Text      string
	Platforms []string
	Hashtags  []string
	ImageURL  string
	AsDraft   bool
}

// UpdateSocialPostInput 更新帖子内容输入（nil 表示不修改）
type UpdateSocialPostInput struct {
	Text      *string
	Hashtags  *[]string
	Platforms *[]string
	ImageURL  *string
}

// CreateCustom 创建运营自定义帖子
func (s *SocialPostService) CreateCustom(input CreateSocialPostInput) (*models.SocialPost, error) {
	draft := s.generator.CustomPost(input.Text, input.Platforms, input.Hashtags, input.ImageURL)
	post, err := draftToPost(draft)
	if err != nil {
		return nil, err
	}
	if input.AsDraft {
		post.Status = constants.SocialPostStatusDraft
	}
	if err := s.repo.Queue(post); err != nil {
		return nil, err
	}
	logger.Infow("social_post_created", "post_id", post.ID, "source_type", post.SourceType, "status", post.Status)
	return post, nil
}

// List 帖子列表
func (s *SocialPostService) List(filter repository.SocialPostListFilter) ([]models.SocialPost, int64, error) {
	return s.repo.List(filter)
}

// ListAll 全部帖子（created_at 倒序）
func (s *SocialPostService) ListAll() ([]models.SocialPost, error) {
	return s.repo.ListAll()
}

// Get 获取帖子
func (s *SocialPostService) Get(id string) (*models.SocialPost, error) {
	post, err := s.repo.GetByID(strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

// UpdateContent 局部更新正文/标签/平台/配图；发布尝试后内容冻结
func (s *SocialPostService) UpdateContent(id string, input UpdateSocialPostInput) (*models.SocialPost, error) {
	post, err := s.repo.Mutate(strings.TrimSpace(id), func(post *models.SocialPost) error {
		if post.Publishing(s.now()) {
			return ErrPublishInProgress
		}
		if isContentFrozen(post) {
			return ErrPostContentFrozen
		}
		if input.Text != nil {
			text := strings.TrimSpace(*input.Text)
			if text == "" {
				return ErrPostTextRequired
			}
			post.Text = text
		}
		if input.Hashtags != nil {
			post.Hashtags = models.StringArray(generator.NormalizeHashtags(*input.Hashtags))
		}
		if input.Platforms != nil {
			platforms, err := validatePlatforms(*input.Platforms)
			if err != nil {
				return err
			}
			post.Platforms = models.StringArray(platforms)
		}
		if input.ImageURL != nil {
			imageURL := strings.TrimSpace(*input.ImageURL)
			if err := validateImageURL(imageURL); err != nil {
				return err
			}
			post.ImageURL = imageURL
		}
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

// UpdateStatus 显式状态迁移（发布相关迁移只由 Publisher 完成）
func (s *SocialPostService) UpdateStatus(id string, status string) (*models.SocialPost, error) {
	target := strings.ToLower(strings.TrimSpace(status))
	post, err := s.repo.Mutate(strings.TrimSpace(id), func(post *models.SocialPost) error {
		if post.Publishing(s.now()) {
			return ErrPublishInProgress
		}
		if post.Status == target {
			return nil
		}
		if !canTransitionSocialPost(post.Status, target) {
			return fmt.Errorf("%w: %s -> %s", ErrStatusTransitionInvalid, post.Status, target)
		}
		post.Status = target
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	logger.Infow("social_post_status_updated", "post_id", post.ID, "status", post.Status)
	return post, nil
}

// Delete 删除帖子（释放来源去重键）
func (s *SocialPostService) Delete(id string) error {
	removed, err := s.repo.Delete(strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if !removed {
		return ErrPostNotFound
	}
	logger.Infow("social_post_deleted", "post_id", id)
	return nil
}

// Stats 帖子统计
func (s *SocialPostService) Stats() (*repository.SocialPostStats, error) {
	return s.repo.Stats()
}

var socialPostTransitions = map[string]map[string]struct{}{
	constants.SocialPostStatusDraft: {
		constants.SocialPostStatusQueued: {},
	},
	constants.SocialPostStatusQueued: {
		constants.SocialPostStatusDraft: {},
	},
	constants.SocialPostStatusFailed: {
		constants.SocialPostStatusQueued: {},
	},
}

func canTransitionSocialPost(from, to string) bool {
	next, ok := socialPostTransitions[from]
	if !ok {
		return false
	}
	_, ok = next[to]
	return ok
}

// isContentFrozen 已发布/失败，或已有任何平台发布记录时不可再编辑
func isContentFrozen(post *models.SocialPost) bool {
	switch post.Status {
	case constants.SocialPostStatusPublished, constants.SocialPostStatusFailed:
		return true
	}
	return len(post.PlatformResults) > 0
}

func isPublishable(status string) bool {
	return status == constants.SocialPostStatusQueued || status == constants.SocialPostStatusFailed
}

func validatePlatforms(platforms []string) ([]string, error) {
	normalized := generator.NormalizePlatforms(platforms)
	if len(normalized) == 0 {
		return nil, ErrPostPlatformsRequired
	}
	for _, item := range normalized {
		if !platform.IsSupported(item) {
			return nil, fmt.Errorf("%w: %s", ErrPlatformUnsupported, item)
		}
	}
	return normalized, nil
}

func validateImageURL(imageURL string) error {
	if imageURL == "" {
		return nil
	}
	parsed, err := url.Parse(imageURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("%w: image_url must be an absolute http(s) url", ErrPostInvalid)
	}
	return nil
}

// draftToPost 校验草稿并转换为待入库帖子
func draftToPost(draft generator.Draft) (*models.SocialPost, error) {
	text := strings.TrimSpace(draft.Text)
	if text == "" {
		return nil, ErrPostTextRequired
	}
	platforms, err := validatePlatforms(draft.Platforms)
	if err != nil {
		return nil, err
	}
	if err := validateImageURL(draft.ImageURL); err != nil {
		return nil, err
	}
	post := &models.SocialPost{
		Text:       text,
		Hashtags:   models.StringArray(generator.NormalizeHashtags(draft.Hashtags)),
		Platforms:  models.StringArray(platforms),
		ImageURL:   draft.ImageURL,
		SourceType: draft.SourceType,
		Status:     constants.SocialPostStatusQueued,
	}
	if draft.SourceType != constants.SocialSourceCustom {
		sourceID := strings.TrimSpace(draft.SourceID)
		if sourceID == "" {
			return nil, fmt.Errorf("%w: %s post requires a source id", ErrPostInvalid, draft.SourceType)
		}
		post.SourceID = &sourceID
	}
	return post, nil
}
