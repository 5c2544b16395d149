//go:build integration
// +build integration

package repository

import (
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/cwmbran-celtic/clubsocial/internal/constants"
	"github.com/cwmbran-celtic/clubsocial/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	_ = db.Migrator().DropTable(&models.SocialPost{})
	if err := models.MigrateSchema(db); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(&models.SocialPost{})
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresSocialPostSearchIsCaseInsensitive(t *testing.T) {
	repo := NewSocialPostRepository(setupPostgresIntegrationDB(t))

	post := newSourcedPost(constants.SocialSourceResult, "PG-M1")
	post.Text = "FULL TIME: Cwmbran Celtic 3-1 Test Town"
	if err := repo.Queue(post); err != nil {
		t.Fatalf("queue failed: %v", err)
	}

	rows, total, err := repo.List(SocialPostListFilter{Page: 1, Search: "test town"})
	if err != nil {
		t.Fatalf("list search failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("ilike search want 1 got total=%d len=%d", total, len(rows))
	}
}

func TestPostgresSocialPostUniqueSourceUnderConcurrency(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	var wg sync.WaitGroup
	var mu sync.Mutex
	created, duplicates := 0, 0
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// 每个 goroutine 独立仓储，模拟多进程只依赖数据库唯一索引
			repo := NewSocialPostRepository(db)
			err := repo.Queue(newSourcedPost(constants.SocialSourceFixture, "PG-F1"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, ErrDuplicateSource):
				duplicates++
			default:
				t.Errorf("unexpected queue error: %v", err)
			}
		}()
	}
	wg.Wait()

	if created != 1 || duplicates != 5 {
		t.Fatalf("want 1 created and 5 duplicates, got created=%d duplicates=%d", created, duplicates)
	}
}
