package models

import (
	"reflect"
	"testing"
	"time"
)

func TestSocialPostPendingPlatforms(t *testing.T) {
	now := time.Now()
	post := &SocialPost{
		Platforms: StringArray{"twitter", "facebook", "instagram"},
		PlatformResults: PlatformResults{
			"twitter":  {Success: true, PublishedAt: &now},
			"facebook": {Success: false, Error: "boom"},
		},
	}
	if got := post.PendingPlatforms(); !reflect.DeepEqual(got, []string{"facebook", "instagram"}) {
		t.Fatalf("pending platforms want [facebook instagram] got %v", got)
	}
	if !post.HasPlatform("instagram") || post.HasPlatform("tiktok") {
		t.Fatalf("unexpected HasPlatform result")
	}
	if post.SourceKey() != "" {
		t.Fatalf("custom post source key should be empty")
	}
}

func TestJSONColumnsRoundTrip(t *testing.T) {
	var tags StringArray
	if err := tags.Scan([]byte(`["A","B"]`)); err != nil {
		t.Fatalf("scan string array failed: %v", err)
	}
	if !reflect.DeepEqual(tags, StringArray{"A", "B"}) {
		t.Fatalf("unexpected tags: %v", tags)
	}
	if err := tags.Scan(nil); err != nil || len(tags) != 0 {
		t.Fatalf("nil scan should reset tags, got %v err=%v", tags, err)
	}
	value, err := StringArray(nil).Value()
	if err != nil || value != "[]" {
		t.Fatalf("nil array value want [] got %v err=%v", value, err)
	}

	var results PlatformResults
	if err := results.Scan(`{"twitter":{"success":true,"external_id":"123"}}`); err != nil {
		t.Fatalf("scan platform results failed: %v", err)
	}
	if !results.Succeeded("twitter") || results["twitter"].ExternalID != "123" || results.Succeeded("facebook") {
		t.Fatalf("unexpected results: %+v", results)
	}
	if err := results.Scan(42); err == nil {
		t.Fatalf("unsupported column type should fail")
	}

	cloned := results.Clone()
	cloned["facebook"] = PlatformResult{Error: "x"}
	if _, ok := results["facebook"]; ok {
		t.Fatalf("clone should not share map")
	}
}

func TestSocialPostPublishingLease(t *testing.T) {
	now := time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)
	post := &SocialPost{}
	if post.Publishing(now) {
		t.Fatalf("post without lease should not be publishing")
	}
	until := now.Add(time.Minute)
	post.PublishLeaseUntil = &until
	if !post.Publishing(now) {
		t.Fatalf("active lease should mark post as publishing")
	}
	if post.Publishing(until) {
		t.Fatalf("expired lease should not block")
	}
}
