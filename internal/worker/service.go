package worker

import (
	"context"
	"errors"
	"time"

	"github.com/cwmbran-celtic/clubsocial/internal/config"
	"github.com/cwmbran-celtic/clubsocial/internal/constants"
	"github.com/cwmbran-celtic/clubsocial/internal/logger"
	"github.com/cwmbran-celtic/clubsocial/internal/queue"
	"github.com/cwmbran-celtic/clubsocial/internal/service"

	"github.com/hibiken/asynq"
)

var autoScanKinds = []string{
	constants.AutoScanKindResults,
	constants.AutoScanKindFixture,
	constants.AutoScanKindTable,
}

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
	interval time.Duration
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	serverCfg.Logger = newAsynqLogger()
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)

	var interval time.Duration
	if consumer.Container != nil && consumer.Config != nil && consumer.Config.Social.AutoScanIntervalMinutes > 0 {
		interval = time.Duration(consumer.Config.Social.AutoScanIntervalMinutes) * time.Minute
	}
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
		interval: interval,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.interval > 0 && s.consumer != nil && s.consumer.SocialScanner != nil {
		go runAutoScanLoop(ctx, s.consumer.QueueClient, s.consumer.SocialScanner, s.interval, s.autoScanLimit())
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

func (s *Service) autoScanLimit() int {
	if s.consumer == nil || s.consumer.Config == nil {
		return 0
	}
	return s.consumer.Config.Social.AutoScanLimit
}

// runAutoScanOnce 依次扫描赛果、赛程、积分榜，单项失败不影响其它
func runAutoScanOnce(ctx context.Context, scanner *service.SocialScanner, limit int) {
	for _, kind := range autoScanKinds {
		if ctx.Err() != nil {
			return
		}
		if _, err := scanner.RunAutoScan(ctx, kind, limit); err != nil && !errors.Is(err, service.ErrEventNotFound) {
			logger.Warnw("worker_social_auto_scan_loop_failed", "kind", kind, "error", err)
		}
	}
}

// dispatchAutoScan 队列可用时按类型入队（同一周期内去重），否则直接执行
func dispatchAutoScan(ctx context.Context, client *queue.Client, scanner *service.SocialScanner, limit int, interval time.Duration) {
	if client == nil || !client.Enabled() {
		runAutoScanOnce(ctx, scanner, limit)
		return
	}
	for _, kind := range autoScanKinds {
		if ctx.Err() != nil {
			return
		}
		var opts []asynq.Option
		if interval > 0 {
			opts = append(opts, asynq.Unique(interval))
		}
		err := client.EnqueueSocialAutoScan(queue.SocialAutoScanPayload{Kind: kind, Limit: limit}, opts...)
		if err == nil || errors.Is(err, asynq.ErrDuplicateTask) {
			continue
		}
		logger.Warnw("worker_social_auto_scan_enqueue_failed", "kind", kind, "error", err)
		if _, err := scanner.RunAutoScan(ctx, kind, limit); err != nil && !errors.Is(err, service.ErrEventNotFound) {
			logger.Warnw("worker_social_auto_scan_loop_failed", "kind", kind, "error", err)
		}
	}
}

func runAutoScanLoop(ctx context.Context, client *queue.Client, scanner *service.SocialScanner, interval time.Duration, limit int) {
	if scanner == nil || interval <= 0 {
		return
	}
	dispatchAutoScan(ctx, client, scanner, limit, interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			dispatchAutoScan(ctx, client, scanner, limit, interval)
		}
	}
}
