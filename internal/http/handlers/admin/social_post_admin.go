package admin

import (
	"strconv"
	"strings"

	"github.com/cwmbran-celtic/clubsocial/internal/http/response"
	"github.com/cwmbran-celtic/clubsocial/internal/repository"
	"github.com/cwmbran-celtic/clubsocial/internal/service"

	"github.com/gin-gonic/gin"
)

// SocialPostCreateRequest 自定义帖子创建请求
type SocialPostCreateRequest struct {
	Text      string    `json:"text" binding:"required"`
	Platforms *[]string `json:"platforms"` // 缺省使用默认平台，显式空列表视为未选择
	Hashtags  []string  `json:"hashtags"`
	ImageURL  string    `json:"image_url"`
	Draft     bool      `json:"draft"`
}

// SocialPostUpdateRequest 帖子内容更新请求（缺省字段不修改）
type SocialPostUpdateRequest struct {
	Text      *string   `json:"text"`
	Hashtags  *[]string `json:"hashtags"`
	Platforms *[]string `json:"platforms"`
	ImageURL  *string   `json:"image_url"`
}

// SocialPostStatusRequest 状态迁移请求
type SocialPostStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SocialPostGenerateRequest 生成请求
type SocialPostGenerateRequest struct {
	Type  string `json:"type" binding:"required"`
	Limit int    `json:"limit"`
}

// GetAdminSocialPosts 获取帖子列表与统计
func (h *Handler) GetAdminSocialPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	posts, total, err := h.SocialPostService.List(repository.SocialPostListFilter{
		Page:       page,
		PageSize:   pageSize,
		Status:     strings.TrimSpace(c.Query("status")),
		SourceType: strings.TrimSpace(c.Query("source_type")),
		Search:     strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.social_post_fetch_failed", err)
		return
	}
	stats, err := h.SocialPostService.Stats()
	if err != nil {
		respondError(c, response.CodeInternal, "error.social_post_fetch_failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, gin.H{"items": posts, "stats": stats}, pagination)
}

// GetAdminSocialPostStats 获取帖子统计
func (h *Handler) GetAdminSocialPostStats(c *gin.Context) {
	stats, err := h.SocialPostService.Stats()
	if err != nil {
		respondError(c, response.CodeInternal, "error.social_post_fetch_failed", err)
		return
	}
	response.Success(c, stats)
}

// GetAdminSocialPost 获取帖子详情
func (h *Handler) GetAdminSocialPost(c *gin.Context) {
	post, err := h.SocialPostService.Get(c.Param("id"))
	if err != nil {
		respondSocialError(c, err, "error.social_post_fetch_failed")
		return
	}
	response.Success(c, post)
}

// CreateSocialPost 创建自定义帖子
func (h *Handler) CreateSocialPost(c *gin.Context) {
	var req SocialPostCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	platforms := h.Generator.DefaultPlatforms()
	if req.Platforms != nil {
		platforms = *req.Platforms
	}
	post, err := h.SocialPostService.CreateCustom(service.CreateSocialPostInput{
		Text:      req.Text,
		Platforms: platforms,
		Hashtags:  req.Hashtags,
		ImageURL:  req.ImageURL,
		AsDraft:   req.Draft,
	})
	if err != nil {
		respondSocialError(c, err, "error.social_post_save_failed")
		return
	}
	response.Success(c, post)
}

// UpdateSocialPost 更新帖子内容
func (h *Handler) UpdateSocialPost(c *gin.Context) {
	var req SocialPostUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	post, err := h.SocialPostService.UpdateContent(c.Param("id"), service.UpdateSocialPostInput{
		Text:      req.Text,
		Hashtags:  req.Hashtags,
		Platforms: req.Platforms,
		ImageURL:  req.ImageURL,
	})
	if err != nil {
		respondSocialError(c, err, "error.social_post_save_failed")
		return
	}
	response.Success(c, post)
}

// UpdateSocialPostStatus 帖子状态迁移
func (h *Handler) UpdateSocialPostStatus(c *gin.Context) {
	var req SocialPostStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	post, err := h.SocialPostService.UpdateStatus(c.Param("id"), req.Status)
	if err != nil {
		respondSocialError(c, err, "error.social_post_save_failed")
		return
	}
	response.Success(c, post)
}

// DeleteSocialPost 删除帖子
func (h *Handler) DeleteSocialPost(c *gin.Context) {
	if err := h.SocialPostService.Delete(c.Param("id")); err != nil {
		respondSocialError(c, err, "error.social_post_delete_failed")
		return
	}
	response.Success(c, nil)
}

// GenerateSocialPosts 按触发类型生成帖子
func (h *Handler) GenerateSocialPosts(c *gin.Context) {
	var req SocialPostGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	report, err := h.SocialScanner.Generate(c.Request.Context(), req.Type, req.Limit)
	if err != nil {
		respondSocialError(c, err, "error.social_generate_failed")
		return
	}
	requestLog(c).Infow("admin_social_generate",
		"type", req.Type,
		"created", len(report.Created),
		"skipped", len(report.Skipped),
		"failed", len(report.Failed),
	)
	response.Success(c, report)
}

// PublishSocialPost 立即发布；async=true 时推送队列任务
func (h *Handler) PublishSocialPost(c *gin.Context) {
	id := c.Param("id")
	async, _ := strconv.ParseBool(c.DefaultQuery("async", "false"))
	if async {
		post, err := h.SocialPublisher.EnqueuePublish(id)
		if err != nil {
			respondSocialError(c, err, "error.social_publish_failed")
			return
		}
		response.SuccessWithMsg(c, "queued", gin.H{"queued": true, "post": post})
		return
	}

	result, err := h.SocialPublisher.Publish(c.Request.Context(), id)
	if err != nil {
		respondSocialError(c, err, "error.social_publish_failed")
		return
	}
	response.Success(c, result)
}
