package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iiitdCrypto/crypto-resource-manager/internal/config"
)

// ErrOTPNotFound signals a missing or expired one-time code.
var ErrOTPNotFound = errors.New("otp not found or expired")

// OTPKind namespaces one-time codes by purpose.
type OTPKind string

const (
	OTPKindVerify OTPKind = "verify"
	OTPKindReset  OTPKind = "reset"
)

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// OTPStore keeps short-lived one-time codes keyed by purpose and email.
// TTL enforcement is delegated to redis.
type OTPStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOTPStore builds a store over an existing redis connection.
func NewOTPStore(r *Redis, ttl time.Duration) *OTPStore {
	return &OTPStore{client: r.Client, ttl: ttl}
}

func otpKey(kind OTPKind, email string) string {
	return fmt.Sprintf("otp:%s:%s", kind, email)
}

// Put stores a code, replacing any previous one for the same email.
func (s *OTPStore) Put(ctx context.Context, kind OTPKind, email, code string) error {
	return s.client.Set(ctx, otpKey(kind, email), code, s.ttl).Err()
}

// Get returns the current code or ErrOTPNotFound.
func (s *OTPStore) Get(ctx context.Context, kind OTPKind, email string) (string, error) {
	val, err := s.client.Get(ctx, otpKey(kind, email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrOTPNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Delete removes a consumed code. Missing keys are not an error.
func (s *OTPStore) Delete(ctx context.Context, kind OTPKind, email string) error {
	return s.client.Del(ctx, otpKey(kind, email)).Err()
}
