package queue

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cwmbran-celtic/clubsocial/internal/config"
	"github.com/cwmbran-celtic/clubsocial/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 默认队列名称
	DefaultQueue = constants.QueueDefault
	// CriticalQueue 发布任务队列
	CriticalQueue = constants.QueueCritical

	publishUniqueTTL = 10 * time.Minute
	publishMaxRetry  = 3
)

var (
	// ErrQueueDisabled 队列未启用
	ErrQueueDisabled = errors.New("task queue disabled")
	// ErrAlreadyQueued 相同帖子的发布任务尚未执行
	ErrAlreadyQueued = errors.New("publish task already queued")
)

// Client 队列客户端封装
type Client struct {
	client       *asynq.Client
	enabled      bool
	defaultQueue string
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{enabled: false, defaultQueue: DefaultQueue}, nil
	}
	opt := buildRedisOpt(cfg)
	client := asynq.NewClient(opt)
	return &Client{
		client:       client,
		enabled:      true,
		defaultQueue: DefaultQueue,
	}, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueSocialPublish 推送发布任务，同一帖子在任务未完成前只会入队一次
func (c *Client) EnqueueSocialPublish(payload SocialPublishPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return ErrQueueDisabled
	}
	task, err := NewSocialPublishTask(payload)
	if err != nil {
		return err
	}
	options := append([]asynq.Option{
		asynq.Queue(CriticalQueue),
		asynq.Unique(publishUniqueTTL),
		asynq.MaxRetry(publishMaxRetry),
	}, opts...)
	_, err = c.client.Enqueue(task, options...)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return ErrAlreadyQueued
	}
	return err
}

// EnqueueSocialAutoScan 推送自动扫描任务
func (c *Client) EnqueueSocialAutoScan(payload SocialAutoScanPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return ErrQueueDisabled
	}
	task, err := NewSocialAutoScanTask(payload)
	if err != nil {
		return err
	}
	options := append([]asynq.Option{asynq.Queue(c.defaultQueue), asynq.MaxRetry(1)}, opts...)
	_, err = c.client.Enqueue(task, options...)
	return err
}

// BuildServerConfig 生成队列服务配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	opt := buildRedisOpt(cfg)
	concurrency := 10
	if cfg != nil && cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
	queues := map[string]int{DefaultQueue: 1, CriticalQueue: 1}
	if cfg != nil && len(cfg.Queues) > 0 {
		queues = cfg.Queues
	}
	return opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
	}
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	host := "127.0.0.1"
	port := 6379
	password := ""
	db := 0
	if cfg != nil {
		if strings.TrimSpace(cfg.Host) != "" {
			host = strings.TrimSpace(cfg.Host)
		}
		if cfg.Port > 0 {
			port = cfg.Port
		}
		password = cfg.Password
		db = cfg.DB
	}
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	}
}
