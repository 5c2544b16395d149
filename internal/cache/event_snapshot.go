package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const defaultEventSnapshotTTL = 5 * time.Minute

// 赛事快照类型
const (
	EventSnapshotResults  = "results"
	EventSnapshotFixtures = "fixtures"
	EventSnapshotTable    = "table"
)

func eventSnapshotKey(kind string, limit int) string {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if limit <= 0 {
		return fmt.Sprintf("event:%s", kind)
	}
	return fmt.Sprintf("event:%s:%d", kind, limit)
}

// GetEventSnapshot 读取赛事数据快照，dest 为解码目标
func GetEventSnapshot(ctx context.Context, kind string, limit int, dest interface{}) (bool, error) {
	if strings.TrimSpace(kind) == "" || dest == nil {
		return false, nil
	}
	return GetJSON(ctx, eventSnapshotKey(kind, limit), dest)
}

// SetEventSnapshot 写入赛事数据快照
func SetEventSnapshot(ctx context.Context, kind string, limit int, value interface{}, ttl time.Duration) error {
	if strings.TrimSpace(kind) == "" || value == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultEventSnapshotTTL
	}
	return SetJSON(ctx, eventSnapshotKey(kind, limit), value, ttl)
}
