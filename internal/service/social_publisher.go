package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cwmbran-celtic/clubsocial/internal/cache"
	"github.com/cwmbran-celtic/clubsocial/internal/constants"
	"github.com/cwmbran-celtic/clubsocial/internal/logger"
	"github.com/cwmbran-celtic/clubsocial/internal/metrics"
	"github.com/cwmbran-celtic/clubsocial/internal/models"
	"github.com/cwmbran-celtic/clubsocial/internal/platform"
	"github.com/cwmbran-celtic/clubsocial/internal/queue"
	"github.com/cwmbran-celtic/clubsocial/internal/repository"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"golang.org/x/sync/errgroup"
)

const defaultPublishTimeout = 15 * time.Second

// SenderResolver 按平台获取发送器
type SenderResolver interface {
	Sender(platform string) (platform.Sender, bool)
}

// PublishResult 发布结果，总是包含各平台明细
type PublishResult struct {
	Success bool                             `json:"success"`
	Post    *models.SocialPost               `json:"post"`
	Results map[string]models.PlatformResult `json:"results"`
}

// SocialPublisher 多平台发布器
type SocialPublisher struct {
	repo     repository.SocialPostRepository
	senders  SenderResolver
	queue    *queue.Client
	timeout  time.Duration
	now      func() time.Time
	mu       sync.Mutex
	inFlight map[string]struct{}

	persist failsafe.Executor[*models.SocialPost]
}

// NewSocialPublisher 创建发布器
func NewSocialPublisher(repo repository.SocialPostRepository, senders SenderResolver, queueClient *queue.Client, timeout time.Duration) *SocialPublisher {
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	return &SocialPublisher{
		repo:     repo,
		senders:  senders,
		queue:    queueClient,
		timeout:  timeout,
		now:      time.Now,
		inFlight: make(map[string]struct{}),

		persist: failsafe.With[*models.SocialPost](newPersistPolicy()),
	}
}

// newPersistPolicy 发送后写回结果的重试策略，记录不存在时不重试
func newPersistPolicy() retrypolicy.RetryPolicy[*models.SocialPost] {
	return retrypolicy.NewBuilder[*models.SocialPost]().
		HandleIf(func(_ *models.SocialPost, err error) bool {
			return err != nil && !errors.Is(err, repository.ErrNotFound)
		}).
		WithBackoff(20*time.Millisecond, 200*time.Millisecond).
		WithMaxRetries(2).
		ReturnLastFailure().
		Build()
}

func (p *SocialPublisher) acquire(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.inFlight[id]; ok {
		return false
	}
	p.inFlight[id] = struct{}{}
	return true
}

func (p *SocialPublisher) release(id string) {
	p.mu.Lock()
	delete(p.inFlight, id)
	p.mu.Unlock()
}

// Publish 发布帖子：仅发送尚未成功的平台，全部完成后一次性写回结果与状态
func (p *SocialPublisher) Publish(ctx context.Context, id string) (*PublishResult, error) {
	id = strings.TrimSpace(id)
	if !p.acquire(id) {
		return nil, ErrPublishInProgress
	}
	defer p.release(id)

	unlock, locked, err := cache.TryLock(ctx, "publish:"+id, p.leaseTTL())
	if err != nil {
		logger.Warnw("social_publish_lock_failed", "post_id", id, "error", err)
	} else if !locked {
		return nil, ErrPublishInProgress
	} else {
		defer unlock()
	}

	post, err := p.claim(id)
	if err != nil {
		return nil, err
	}

	targets := post.PendingPlatforms()
	content := platform.Content{
		PostID:   post.ID,
		Text:     post.Text,
		Hashtags: []string(post.Hashtags),
		ImageURL: post.ImageURL,
	}
	attempts := p.sendAll(ctx, targets, content)

	updated, err := p.persist.Get(func() (*models.SocialPost, error) {
		return p.repo.Mutate(id, func(current *models.SocialPost) error {
			p.applyAttempts(current, post, attempts)
			return nil
		})
	})
	if errors.Is(err, repository.ErrNotFound) {
		logger.Errorw("social_publish_post_vanished", "post_id", id, "attempted", targets)
		return nil, ErrPostNotFound
	}
	if err != nil {
		// 平台已收到请求但结果未落库；占用保留到过期，避免立即重发
		logger.Errorw("social_publish_persist_failed",
			"post_id", id,
			"attempts", attempts,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %v", ErrPublishPersistFailed, err)
	}

	metrics.RecordPublished(updated.Status)
	logger.Infow("social_publish_done",
		"post_id", id,
		"status", updated.Status,
		"attempted", targets,
	)
	return &PublishResult{
		Success: updated.Status == constants.SocialPostStatusPublished,
		Post:    updated,
		Results: updated.PlatformResults.Clone(),
	}, nil
}

// claim 原子占用帖子：校验可发布并写入占用截止时间，占用期间拒绝编辑与状态变更
func (p *SocialPublisher) claim(id string) (*models.SocialPost, error) {
	now := p.now()
	leaseUntil := now.Add(p.leaseTTL())
	post, err := p.repo.Mutate(id, func(current *models.SocialPost) error {
		if !isPublishable(current.Status) {
			return fmt.Errorf("%w: status %s", ErrPostNotPublishable, current.Status)
		}
		if current.Publishing(now) {
			return ErrPublishInProgress
		}
		current.PublishLeaseUntil = &leaseUntil
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

// applyAttempts 合并本次结果并释放占用；平台收到的内容以发送快照为准
func (p *SocialPublisher) applyAttempts(current *models.SocialPost, sent *models.SocialPost, attempts map[string]models.PlatformResult) {
	if !sameContent(current, sent) {
		logger.Warnw("social_publish_content_drift", "post_id", current.ID)
		current.Text = sent.Text
		current.Hashtags = append(models.StringArray(nil), sent.Hashtags...)
		current.Platforms = append(models.StringArray(nil), sent.Platforms...)
		current.ImageURL = sent.ImageURL
	}
	if !isPublishable(current.Status) {
		logger.Warnw("social_publish_status_changed", "post_id", current.ID, "status", current.Status)
	}

	merged := make(models.PlatformResults, len(current.Platforms))
	for _, name := range current.Platforms {
		if previous, ok := current.PlatformResults[name]; ok {
			merged[name] = previous
		}
		if attempt, ok := attempts[name]; ok && !merged.Succeeded(name) {
			merged[name] = attempt
		}
	}
	current.PlatformResults = merged
	current.PublishLeaseUntil = nil

	allSucceeded := len(current.Platforms) > 0
	for _, name := range current.Platforms {
		if !merged.Succeeded(name) {
			allSucceeded = false
			break
		}
	}
	if allSucceeded {
		publishedAt := p.now()
		current.Status = constants.SocialPostStatusPublished
		current.PublishedAt = &publishedAt
	} else {
		current.Status = constants.SocialPostStatusFailed
	}
}

func (p *SocialPublisher) leaseTTL() time.Duration {
	return p.timeout*2 + time.Minute
}

func sameContent(a, b *models.SocialPost) bool {
	return a.Text == b.Text &&
		a.ImageURL == b.ImageURL &&
		slices.Equal([]string(a.Hashtags), []string(b.Hashtags)) &&
		slices.Equal([]string(a.Platforms), []string(b.Platforms))
}

// sendAll 并发发送到各平台，单个平台失败或超时不影响其它平台
func (p *SocialPublisher) sendAll(ctx context.Context, targets []string, content platform.Content) map[string]models.PlatformResult {
	results := make([]models.PlatformResult, len(targets))
	var g errgroup.Group
	for i, name := range targets {
		g.Go(func() error {
			results[i] = p.sendOne(ctx, name, content)
			return nil
		})
	}
	_ = g.Wait()

	attempts := make(map[string]models.PlatformResult, len(targets))
	for i, name := range targets {
		attempts[name] = results[i]
	}
	return attempts
}

type sendOutcome struct {
	receipt *platform.Receipt
	err     error
}

func (p *SocialPublisher) sendOne(ctx context.Context, name string, content platform.Content) models.PlatformResult {
	start := time.Now()
	log := logger.SW("post_id", content.PostID, "platform", name)

	sender, ok := p.senders.Sender(name)
	if !ok || sender == nil {
		metrics.RecordPublishAttempt(name, false, time.Since(start))
		log.Warnw("social_publish_platform_unsupported")
		return models.PlatformResult{Success: false, Error: platform.ErrUnsupported.Error()}
	}

	sendCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	done := make(chan sendOutcome, 1)
	go func() {
		receipt, err := sender.Send(sendCtx, content)
		done <- sendOutcome{receipt: receipt, err: err}
	}()

	var outcome sendOutcome
	select {
	case outcome = <-done:
	case <-sendCtx.Done():
		// 超时与返回同时发生时以发送器结果为准
		select {
		case outcome = <-done:
		default:
			outcome = sendOutcome{err: sendCtx.Err()}
		}
	}

	elapsed := time.Since(start)
	if outcome.err != nil {
		message := outcome.err.Error()
		if errors.Is(outcome.err, context.DeadlineExceeded) {
			message = fmt.Sprintf("timed out after %s", p.timeout)
		}
		metrics.RecordPublishAttempt(name, false, elapsed)
		log.Warnw("social_publish_platform_failed", "error", message, "latency_ms", elapsed.Milliseconds())
		return models.PlatformResult{Success: false, Error: message}
	}

	publishedAt := p.now()
	result := models.PlatformResult{Success: true, PublishedAt: &publishedAt}
	if outcome.receipt != nil {
		result.ExternalID = outcome.receipt.ExternalID
	}
	metrics.RecordPublishAttempt(name, true, elapsed)
	log.Infow("social_publish_platform_succeeded", "external_id", result.ExternalID, "latency_ms", elapsed.Milliseconds())
	return result
}

// EnqueuePublish 异步发布：校验后推送队列任务
func (p *SocialPublisher) EnqueuePublish(id string) (*models.SocialPost, error) {
	post, err := p.repo.GetByID(strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if !isPublishable(post.Status) {
		return nil, fmt.Errorf("%w: status %s", ErrPostNotPublishable, post.Status)
	}
	if post.Publishing(p.now()) {
		return nil, ErrPublishInProgress
	}
	if err := p.queue.EnqueueSocialPublish(queue.SocialPublishPayload{PostID: post.ID}); err != nil {
		switch {
		case errors.Is(err, queue.ErrAlreadyQueued):
			return nil, ErrPublishInProgress
		case errors.Is(err, queue.ErrQueueDisabled):
			return nil, ErrQueueUnavailable
		default:
			logger.Errorw("social_publish_enqueue_failed", "post_id", post.ID, "error", err)
			return nil, err
		}
	}
	logger.Infow("social_publish_enqueued", "post_id", post.ID)
	return post, nil
}
