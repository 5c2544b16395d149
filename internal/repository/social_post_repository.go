package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/cwmbran-celtic/clubsocial/internal/constants"
	"github.com/cwmbran-celtic/clubsocial/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateSource 同一 (source_type, source_id) 已存在帖子
	ErrDuplicateSource = errors.New("social post for source already exists")
)

// SocialPostRepository 社媒帖子存储接口，去重与队列状态的唯一依据
type SocialPostRepository interface {
	Queue(post *models.SocialPost) error
	List(filter SocialPostListFilter) ([]models.SocialPost, int64, error)
	ListAll() ([]models.SocialPost, error)
	GetByID(id string) (*models.SocialPost, error)
	ExistingSourceIDs(sourceType string, sourceIDs []string) (map[string]struct{}, error)
	Mutate(id string, fn func(post *models.SocialPost) error) (*models.SocialPost, error)
	Delete(id string) (bool, error)
	Stats() (*SocialPostStats, error)
}

// GormSocialPostRepository GORM 实现
type GormSocialPostRepository struct {
	db    *gorm.DB
	locks *keyedLocker
}

// NewSocialPostRepository 创建社媒帖子仓库
func NewSocialPostRepository(db *gorm.DB) *GormSocialPostRepository {
	return &GormSocialPostRepository{db: db, locks: newKeyedLocker()}
}

func sourceLockKey(sourceType, sourceID string) string {
	return "source:" + sourceType + "|" + sourceID
}

func postLockKey(id string) string {
	return "post:" + id
}

// Queue 写入新帖子（默认 queued），同来源重复时返回 ErrDuplicateSource
func (r *GormSocialPostRepository) Queue(post *models.SocialPost) error {
	if post == nil {
		return errors.New("social post is nil")
	}
	if post.SourceID != nil && strings.TrimSpace(*post.SourceID) == "" {
		post.SourceID = nil
	}
	if post.SourceID != nil {
		unlock := r.locks.Lock(sourceLockKey(post.SourceType, *post.SourceID))
		defer unlock()
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if post.SourceID != nil {
			var count int64
			if err := tx.Model(&models.SocialPost{}).
				Where("source_type = ? AND source_id = ?", post.SourceType, *post.SourceID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrDuplicateSource
			}
		}
		if strings.TrimSpace(post.ID) == "" {
			post.ID = uuid.NewString()
		}
		if post.Status == "" {
			post.Status = constants.SocialPostStatusQueued
		}
		if post.PlatformResults == nil {
			post.PlatformResults = models.PlatformResults{}
		}
		if err := tx.Create(post).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateSource
			}
			return err
		}
		return nil
	})
}

// List 帖子列表（created_at 倒序）
func (r *GormSocialPostRepository) List(filter SocialPostListFilter) ([]models.SocialPost, int64, error) {
	query := r.db.Model(&models.SocialPost{})
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if sourceType := strings.TrimSpace(filter.SourceType); sourceType != "" {
		query = query.Where("source_type = ?", sourceType)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		condition, argCount := buildLikeCondition(r.db, []string{"text", "source_id"})
		query = query.Where(condition, repeatLikeArgs("%"+search+"%", argCount)...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []models.SocialPost
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("created_at DESC").Order("id DESC").Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// ListAll 全部帖子（created_at 倒序）
func (r *GormSocialPostRepository) ListAll() ([]models.SocialPost, error) {
	var posts []models.SocialPost
	if err := r.db.Order("created_at DESC").Order("id DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// GetByID 根据 ID 获取帖子
func (r *GormSocialPostRepository) GetByID(id string) (*models.SocialPost, error) {
	var post models.SocialPost
	if err := r.db.Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// ExistingSourceIDs 批量查询已有帖子的来源标识
func (r *GormSocialPostRepository) ExistingSourceIDs(sourceType string, sourceIDs []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{}, len(sourceIDs))
	if len(sourceIDs) == 0 {
		return existing, nil
	}
	var found []string
	if err := r.db.Model(&models.SocialPost{}).
		Where("source_type = ? AND source_id IN ?", sourceType, sourceIDs).
		Pluck("source_id", &found).Error; err != nil {
		return nil, err
	}
	for _, id := range found {
		existing[id] = struct{}{}
	}
	return existing, nil
}

// Mutate 原子读改写：按 ID 加锁 + 事务 + 行锁；fn 返回错误时不落库
func (r *GormSocialPostRepository) Mutate(id string, fn func(post *models.SocialPost) error) (*models.SocialPost, error) {
	unlock := r.locks.Lock(postLockKey(id))
	defer unlock()

	var updated models.SocialPost
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var post models.SocialPost
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&post).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		sourceType, sourceID, createdAt := post.SourceType, post.SourceID, post.CreatedAt
		if err := fn(&post); err != nil {
			return err
		}
		// 标识与来源不可变
		post.ID = id
		post.SourceType, post.SourceID, post.CreatedAt = sourceType, sourceID, createdAt
		post.UpdatedAt = time.Now()

		if err := tx.Save(&post).Error; err != nil {
			return err
		}
		updated = post
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete 物理删除帖子，返回是否删除了记录
func (r *GormSocialPostRepository) Delete(id string) (bool, error) {
	unlock := r.locks.Lock(postLockKey(id))
	defer unlock()

	result := r.db.Where("id = ?", id).Delete(&models.SocialPost{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

type socialPostStatRow struct {
	Status     string
	SourceType string
	Count      int64
}

// Stats 单条分组查询统计，所有已知状态与来源类型补零
func (r *GormSocialPostRepository) Stats() (*SocialPostStats, error) {
	var rows []socialPostStatRow
	if err := r.db.Model(&models.SocialPost{}).
		Select("status, source_type, COUNT(*) AS count").
		Group("status, source_type").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	stats := &SocialPostStats{
		ByStatus:     make(map[string]int64, len(constants.SocialPostStatuses)),
		BySourceType: make(map[string]int64, len(constants.SocialSourceTypes)),
	}
	for _, status := range constants.SocialPostStatuses {
		stats.ByStatus[status] = 0
	}
	for _, sourceType := range constants.SocialSourceTypes {
		stats.BySourceType[sourceType] = 0
	}
	for _, row := range rows {
		stats.Total += row.Count
		stats.ByStatus[row.Status] += row.Count
		stats.BySourceType[row.SourceType] += row.Count
	}
	return stats, nil
}
