package sessionsvc

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/alama/core"
)

const (
	captchaKeyPrefix = "alama:captcha:"
	revokedKeyPrefix = "alama:revoked:"
)

// RedisStore is a Store shared by every API instance.
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to redis and checks the connection.
func NewRedisStore(ctx context.Context, conf core.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Address,
		Password: conf.Password,
		DB:       conf.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) PutCaptcha(ctx context.Context, id, answer string, ttl time.Duration) error {
	return errors.Wrap(s.client.Set(ctx, captchaKeyPrefix+id, answer, ttl).Err(), "setting captcha")
}

func (s *RedisStore) TakeCaptcha(ctx context.Context, id string) (string, bool, error) {
	answer, err := s.client.GetDel(ctx, captchaKeyPrefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, errors.Wrap(err, "getting captcha")
	}
	return answer, true, nil
}

func (s *RedisStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(NowFunc())
	if ttl <= 0 {
		return nil
	}
	return errors.Wrap(s.client.Set(ctx, revokedKeyPrefix+tokenID, 1, ttl).Err(), "revoking token")
}

func (s *RedisStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, errors.Wrap(err, "checking token")
	}
	return n > 0, nil
}
