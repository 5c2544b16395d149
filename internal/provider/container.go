package provider

import (
	"github.com/cwmbran-celtic/clubsocial/internal/cache"
	"github.com/cwmbran-celtic/clubsocial/internal/config"
	"github.com/cwmbran-celtic/clubsocial/internal/eventsource"
	"github.com/cwmbran-celtic/clubsocial/internal/generator"
	"github.com/cwmbran-celtic/clubsocial/internal/logger"
	"github.com/cwmbran-celtic/clubsocial/internal/models"
	"github.com/cwmbran-celtic/clubsocial/internal/platform"
	"github.com/cwmbran-celtic/clubsocial/internal/queue"
	"github.com/cwmbran-celtic/clubsocial/internal/repository"
	"github.com/cwmbran-celtic/clubsocial/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	DB          *gorm.DB
	QueueClient *queue.Client

	// Infrastructure
	Generator   *generator.Generator
	EventSource eventsource.Provider
	Platforms   *platform.Registry

	// Repositories
	SocialPostRepo repository.SocialPostRepository

	// Services
	SocialPostService *service.SocialPostService
	SocialScanner     *service.SocialScanner
	SocialPublisher   *service.SocialPublisher
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient, _ = queue.NewClient(nil)
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}
	c.initInfrastructure()
	c.initRepositories(models.DB)
	c.initServices()
	return c
}

// NewContainerWithDeps 使用外部依赖构建容器（测试或嵌入使用）
func NewContainerWithDeps(cfg *config.Config, db *gorm.DB, events eventsource.Provider, registry *platform.Registry, queueClient *queue.Client) *Container {
	if queueClient == nil {
		queueClient, _ = queue.NewClient(nil)
	}
	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		EventSource: events,
		Platforms:   registry,
	}
	c.initInfrastructure()
	c.initRepositories(db)
	c.initServices()
	return c
}

func (c *Container) initInfrastructure() {
	social := c.Config.Social
	c.Generator = generator.New(generator.Config{
		ClubName:         social.ClubName,
		ClubTag:          social.ClubTag,
		Location:         social.Location(),
		DefaultPlatforms: social.DefaultPlatforms,
		BaseHashtags:     social.BaseHashtags,
	})
	if c.EventSource == nil {
		httpProvider := eventsource.NewHTTPProvider(c.Config.EventSource)
		if !httpProvider.Configured() {
			logger.Warnw("provider_event_source_not_configured")
		}
		c.EventSource = httpProvider
	}
	if c.Platforms == nil {
		c.Platforms = platform.NewRegistry(c.Config.Platforms, social.DryRun)
		logger.Infow("provider_platform_modes", "modes", c.Platforms.Modes())
	}
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.DB = db
	c.SocialPostRepo = repository.NewSocialPostRepository(db)
}

func (c *Container) initServices() {
	social := c.Config.Social
	c.SocialPostService = service.NewSocialPostService(c.SocialPostRepo, c.Generator)
	c.SocialScanner = service.NewSocialScanner(c.SocialPostRepo, c.Generator, c.EventSource, service.ScannerOptions{
		Location:     social.Location(),
		AutoMatchday: social.AutoMatchday,
		DefaultLimit: social.AutoScanLimit,
	})
	c.SocialPublisher = service.NewSocialPublisher(c.SocialPostRepo, c.Platforms, c.QueueClient, social.PublishTimeout())
}
