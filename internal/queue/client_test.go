package queue

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/cwmbran-celtic/clubsocial/internal/config"
)

func TestDisabledClientRejectsEnqueue(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	if err := client.EnqueueSocialPublish(SocialPublishPayload{PostID: "p1"}); !errors.Is(err, ErrQueueDisabled) {
		t.Fatalf("want ErrQueueDisabled got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close disabled client failed: %v", err)
	}
}

func TestSocialTasksPayload(t *testing.T) {
	task, err := NewSocialPublishTask(SocialPublishPayload{PostID: "p1"})
	if err != nil {
		t.Fatalf("new publish task failed: %v", err)
	}
	if task.Type() != TaskSocialPublish {
		t.Fatalf("unexpected task type: %s", task.Type())
	}
	var payload SocialPublishPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil || payload.PostID != "p1" {
		t.Fatalf("unexpected payload: %s err=%v", task.Payload(), err)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(nil)
	if opt.Addr != "127.0.0.1:6379" {
		t.Fatalf("unexpected redis addr: %s", opt.Addr)
	}
	if cfg.Concurrency != 10 || cfg.Queues[CriticalQueue] != 1 {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
}
