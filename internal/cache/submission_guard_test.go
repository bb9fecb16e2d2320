package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"vision-fit-guide/backend/internal/scoring"
)

func TestSubmissionKey(t *testing.T) {
	base := scoring.AnswerSet{
		ChurchName:         "Grace",
		Email:              "Pastor@Grace.example",
		Attendance:         scoring.Attendance0To50,
		CostImportance:     scoring.ImportanceHigh,
		TimeAwayImportance: scoring.ImportanceLow,
		EnglishImportance:  scoring.ImportanceLow,
	}
	sameEmail := base
	sameEmail.Email = "  pastor@grace.example "
	changed := base
	changed.CostImportance = scoring.ImportanceMedium

	a, err := SubmissionKey(base)
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	b, _ := SubmissionKey(sameEmail)
	c, _ := SubmissionKey(changed)
	if a != b {
		t.Fatalf("email case should not change the key")
	}
	if a == c {
		t.Fatalf("different answers must produce different keys")
	}
	if len(a) != 64 {
		t.Fatalf("expected hex sha256, got %q", a)
	}
}

func TestNopGuardAlwaysClaims(t *testing.T) {
	var g SubmissionGuard = NopGuard{}
	if g.Enabled() {
		t.Fatalf("nop guard should report disabled")
	}
	for i := 0; i < 2; i++ {
		id, claimed, err := g.Claim(context.Background(), "k", "guide-1")
		if err != nil || !claimed || id != "guide-1" {
			t.Fatalf("claim %d: %q %v %v", i, id, claimed, err)
		}
	}
}

func TestRedisKeyPrefix(t *testing.T) {
	g := NewSubmissionGuard(nil, 0).(*submissionGuard)
	if g.Enabled() {
		t.Fatalf("guard without client should be disabled")
	}
	if g.ttl != DefaultSubmissionTTL {
		t.Fatalf("expected default ttl got %s", g.ttl)
	}
	if got := g.redisKey("abc"); got != "fitguide:submission:abc" {
		t.Fatalf("unexpected key %q", got)
	}
	if id, claimed, err := g.Claim(context.Background(), "abc", "guide-2"); err != nil || !claimed || id != "guide-2" {
		t.Fatalf("disabled guard should let submissions through: %q %v %v", id, claimed, err)
	}
	if err := g.Release(context.Background(), "abc"); err != nil {
		t.Fatalf("release: %v", err)
	}
}

func TestRedisGuardClaimReleaseExpire(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	g := NewSubmissionGuard(client, time.Minute)
	if !g.Enabled() {
		t.Fatalf("guard with a client should be enabled")
	}

	id, claimed, err := g.Claim(ctx, "abc", "guide-1")
	if err != nil || !claimed || id != "guide-1" {
		t.Fatalf("first claim: %q %v %v", id, claimed, err)
	}
	if !mr.Exists("fitguide:submission:abc") {
		t.Fatalf("claim should be stored under the submission prefix, keys=%v", mr.Keys())
	}
	if got, _ := mr.Get("fitguide:submission:abc"); got != "guide-1" {
		t.Fatalf("stored holder %q", got)
	}
	if ttl := mr.TTL("fitguide:submission:abc"); ttl != time.Minute {
		t.Fatalf("expected 1m ttl, got %s", ttl)
	}

	id, claimed, err = g.Claim(ctx, "abc", "guide-2")
	if err != nil || claimed || id != "guide-1" {
		t.Fatalf("duplicate claim should report the holder: %q %v %v", id, claimed, err)
	}

	if err := g.Release(ctx, "abc"); err != nil {
		t.Fatalf("release: %v", err)
	}
	id, claimed, err = g.Claim(ctx, "abc", "guide-3")
	if err != nil || !claimed || id != "guide-3" {
		t.Fatalf("claim after release: %q %v %v", id, claimed, err)
	}

	mr.FastForward(2 * time.Minute)
	id, claimed, err = g.Claim(ctx, "abc", "guide-4")
	if err != nil || !claimed || id != "guide-4" {
		t.Fatalf("claim after expiry: %q %v %v", id, claimed, err)
	}
}

func TestRedisGuardUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start redis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	g := NewSubmissionGuard(client, time.Minute)
	if _, claimed, err := g.Claim(context.Background(), "abc", "guide-1"); err == nil || claimed {
		t.Fatalf("expected an error from a stopped server, got claimed=%v err=%v", claimed, err)
	}
}
