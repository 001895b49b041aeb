package repository

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	serr "github.com/IvanChernomyrdin/suchauftrag/internal/shared/errors"
)

const redisSessionPrefix = "sess:"

// RedisSessionsRepository хранит сессии в Redis.
//
// Ключ: sess:<hex(sha256(token))>, значение: "<user_id>:<expires_unix>".
// Истечение обеспечивает TTL ключа, поэтому DeleteExpired ничего не делает.
type RedisSessionsRepository struct {
	rdb *goredis.Client
}

func NewRedisSessionsRepository(rdb *goredis.Client) *RedisSessionsRepository {
	return &RedisSessionsRepository{rdb: rdb}
}

func redisSessionKey(tokenHash []byte) string {
	return redisSessionPrefix + hex.EncodeToString(tokenHash)
}

func (r *RedisSessionsRepository) Create(ctx context.Context, tokenHash []byte, userID uuid.UUID, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// сессия уже истекла, хранить нечего
		return nil
	}

	val := fmt.Sprintf("%s:%d", userID, expiresAt.Unix())
	ok, err := r.rdb.SetNX(ctx, redisSessionKey(tokenHash), val, ttl).Result()
	if err != nil {
		return storeErr(err)
	}
	if !ok {
		return serr.ErrAlreadyExists
	}
	return nil
}

func (r *RedisSessionsRepository) Get(ctx context.Context, tokenHash []byte) (uuid.UUID, time.Time, error) {
	val, err := r.rdb.Get(ctx, redisSessionKey(tokenHash)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return uuid.Nil, time.Time{}, serr.ErrUnauthorized
		}
		return uuid.Nil, time.Time{}, storeErr(err)
	}

	userID, expiresAt, err := parseRedisSession(val)
	if err != nil {
		return uuid.Nil, time.Time{}, storeErr(err)
	}
	return userID, expiresAt, nil
}

func (r *RedisSessionsRepository) Delete(ctx context.Context, tokenHash []byte) error {
	if err := r.rdb.Del(ctx, redisSessionKey(tokenHash)).Err(); err != nil {
		return storeErr(err)
	}
	return nil
}

func (r *RedisSessionsRepository) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

// Ping проверяет доступность Redis (используется в /health).
func (r *RedisSessionsRepository) Ping(ctx context.Context) error {
	if err := r.rdb.Ping(ctx).Err(); err != nil {
		return storeErr(err)
	}
	return nil
}

func parseRedisSession(val string) (uuid.UUID, time.Time, error) {
	rawID, rawExp, ok := strings.Cut(val, ":")
	if !ok {
		return uuid.Nil, time.Time{}, fmt.Errorf("malformed session value %q", val)
	}
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return uuid.Nil, time.Time{}, fmt.Errorf("session user id: %w", err)
	}
	exp, err := strconv.ParseInt(rawExp, 10, 64)
	if err != nil {
		return uuid.Nil, time.Time{}, fmt.Errorf("session expiry: %w", err)
	}
	return userID, time.Unix(exp, 0), nil
}
