// AngelaMos | 2026
// blacklist.go

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/carterperez-dev/templates/library-backend/internal/core"
)

// Blacklist holds revoked access token ids until their natural expiry.
type Blacklist struct {
	redis *core.Redis
}

func NewBlacklist(r *core.Redis) *Blacklist {
	return &Blacklist{redis: r}
}

func (b *Blacklist) Add(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if jti == "" || ttl <= 0 {
		return nil
	}

	if err := b.redis.Client.Set(ctx, b.redis.Key("blacklist", jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

func (b *Blacklist) Contains(ctx context.Context, jti string) (bool, error) {
	n, err := b.redis.Client.Exists(ctx, b.redis.Key("blacklist", jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}
	return n > 0, nil
}
