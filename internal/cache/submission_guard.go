package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"vision-fit-guide/backend/internal/scoring"
)

// SubmissionGuard suppresses repeat submissions of the same answers from the same email.
type SubmissionGuard interface {
	Enabled() bool
	// Claim reserves key for publicID. When the key is already held it returns the
	// holder's public id and claimed=false.
	Claim(ctx context.Context, key, publicID string) (existingID string, claimed bool, err error)
	Release(ctx context.Context, key string) error
}

type submissionGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// DefaultSubmissionTTL is how long a submission blocks an identical one.
const DefaultSubmissionTTL = 10 * time.Minute

// NewSubmissionGuard creates a redis-backed guard.
func NewSubmissionGuard(client *redis.Client, ttl time.Duration) SubmissionGuard {
	if ttl <= 0 {
		ttl = DefaultSubmissionTTL
	}
	return &submissionGuard{client: client, ttl: ttl}
}

func (g *submissionGuard) Enabled() bool {
	return g != nil && g.client != nil
}

func (g *submissionGuard) redisKey(key string) string {
	return fmt.Sprintf("fitguide:submission:%s", key)
}

func (g *submissionGuard) Claim(ctx context.Context, key, publicID string) (string, bool, error) {
	if !g.Enabled() {
		return publicID, true, nil
	}
	ok, err := g.client.SetNX(ctx, g.redisKey(key), publicID, g.ttl).Result()
	if err != nil {
		return "", false, err
	}
	if ok {
		return publicID, true, nil
	}
	existing, err := g.client.Get(ctx, g.redisKey(key)).Result()
	if err == redis.Nil {
		// Expired between the two calls; the caller may proceed.
		return publicID, true, nil
	}
	if err != nil {
		return "", false, err
	}
	return existing, false, nil
}

func (g *submissionGuard) Release(ctx context.Context, key string) error {
	if !g.Enabled() {
		return nil
	}
	return g.client.Del(ctx, g.redisKey(key)).Err()
}

// NopGuard never blocks a submission. It is used when no redis address is configured.
type NopGuard struct{}

func (NopGuard) Enabled() bool { return false }

func (NopGuard) Claim(_ context.Context, _ string, publicID string) (string, bool, error) {
	return publicID, true, nil
}

func (NopGuard) Release(context.Context, string) error { return nil }

// SubmissionKey fingerprints an answer set for the email it was submitted under.
// Email case and surrounding whitespace are ignored.
func SubmissionKey(answers scoring.AnswerSet) (string, error) {
	answers.Email = strings.ToLower(strings.TrimSpace(answers.Email))
	payload, err := json.Marshal(answers)
	if err != nil {
		return "", fmt.Errorf("marshal answers: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
