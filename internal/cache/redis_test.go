package cache

import (
	"context"
	"testing"
	"time"

	"github.com/cwmbran-celtic/clubsocial/internal/config"
)

func TestDisabledCacheIsPassThrough(t *testing.T) {
	if err := InitRedis(&config.RedisConfig{Enabled: false}); err != nil {
		t.Fatalf("init disabled redis failed: %v", err)
	}
	if Enabled() || Client() != nil {
		t.Fatalf("cache should be disabled")
	}

	ctx := context.Background()
	if err := SetEventSnapshot(ctx, EventSnapshotResults, 5, []string{"M1"}, time.Minute); err != nil {
		t.Fatalf("set on disabled cache should be no-op: %v", err)
	}
	var dest []string
	hit, err := GetEventSnapshot(ctx, EventSnapshotResults, 5, &dest)
	if err != nil || hit {
		t.Fatalf("get on disabled cache want miss got hit=%v err=%v", hit, err)
	}
	if err := Ping(ctx); err != nil {
		t.Fatalf("ping on disabled cache should be nil: %v", err)
	}
}

func TestBuildKeyUsesPrefix(t *testing.T) {
	UseClient(nil, "")
	if got := BuildKey("event:table"); got != "cc:event:table" {
		t.Fatalf("unexpected key: %s", got)
	}
	if got := BuildKey("  "); got != "cc" {
		t.Fatalf("empty key should be prefix only, got %s", got)
	}
	if got := eventSnapshotKey(" Results ", 5); got != "event:results:5" {
		t.Fatalf("unexpected snapshot key: %s", got)
	}
	if got := eventSnapshotKey(EventSnapshotTable, 0); got != "event:table" {
		t.Fatalf("unexpected table snapshot key: %s", got)
	}
}

func TestTryLockWithoutRedis(t *testing.T) {
	UseClient(nil, "")
	unlock, ok, err := TryLock(context.Background(), "publish:p1", time.Minute)
	if err != nil || !ok || unlock == nil {
		t.Fatalf("lock without redis should succeed, ok=%v err=%v", ok, err)
	}
	unlock()
}
