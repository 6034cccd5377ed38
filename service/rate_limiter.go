// file: service/rate_limiter.go

package service

import (
	"context"
	"fmt"
	"time"

	"go-auth-api/config"
	"go-auth-api/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Rate limit scopes reported in RateLimitStatus.
const (
	ScopeLogin      = "login"
	ScopeChatMinute = "chat_per_minute"
	ScopeChatDaily  = "chat_daily"
)

// RateLimitStatus is the outcome of a rate limit check.
type RateLimitStatus struct {
	Allowed    bool
	Scope      string
	Current    int64
	Limit      int64
	RetryAfter time.Duration
}

// RateLimiterService implements fixed-window counters in Redis. A window is
// anchored to its first use: the first request creates the counter with a TTL
// equal to the window and later increments never reset it.
//
// Counters are not perfectly linearizable across instances; slight
// over-admission under extreme concurrency is accepted instead of a
// distributed lock.
type RateLimiterService struct {
	cache    ICacheClient
	loginCfg config.RateLimitConfig
	chatCfg  config.ChatConfig
}

// NewRateLimiterService creates a new RateLimiterService.
func NewRateLimiterService(cache ICacheClient, loginCfg config.RateLimitConfig, chatCfg config.ChatConfig) *RateLimiterService {
	return &RateLimiterService{cache: cache, loginCfg: loginCfg, chatCfg: chatCfg}
}

func loginKey(ip string) string {
	return "ratelimit:login:" + ip
}

func chatMinuteKey(userID uuid.UUID) string {
	return fmt.Sprintf("ratelimit:chat:user:%s:minute", userID)
}

func chatDailyKey(userID uuid.UUID) string {
	return fmt.Sprintf("quota:chat:user:%s:daily", userID)
}

// AllowLogin checks and increments the login attempt counter for an origin
// IP. When the limit is already reached the counter is not incremented and
// RetryAfter is derived from the counter's remaining TTL.
func (s *RateLimiterService) AllowLogin(ctx context.Context, ip string) (*RateLimitStatus, error) {
	limit := int64(s.loginCfg.LoginMaxAttempts)
	window := time.Duration(s.loginCfg.LoginWindowSeconds) * time.Second
	return s.checkAndIncrement(ctx, loginKey(ip), ScopeLogin, limit, window)
}

// ResetLogin clears the login counter for an IP (successful login or admin
// override).
func (s *RateLimiterService) ResetLogin(ctx context.Context, ip string) error {
	if err := s.cache.Del(ctx, loginKey(ip)).Err(); err != nil {
		logger.Log.WithError(err).Error("Failed to reset login rate limit")
		return fmt.Errorf("failed to reset login rate limit: %w", err)
	}
	return nil
}

// AllowChatMessage applies the two-tier chat limit: the per-minute counter is
// checked first (cheaper window, fast fail), then the daily quota, and both
// counters are incremented only after both checks pass. A rejected request
// therefore never consumes quota.
func (s *RateLimiterService) AllowChatMessage(ctx context.Context, userID uuid.UUID) (*RateLimitStatus, error) {
	minuteKey := chatMinuteKey(userID)
	dailyKey := chatDailyKey(userID)

	minute, err := s.checkCounter(ctx, minuteKey, ScopeChatMinute, s.chatCfg.RateLimitPerMinute)
	if err != nil {
		return nil, err
	}
	if !minute.Allowed {
		return minute, nil
	}

	daily, err := s.checkCounter(ctx, dailyKey, ScopeChatDaily, s.chatCfg.DailyMessageQuota)
	if err != nil {
		return nil, err
	}
	if !daily.Allowed {
		return daily, nil
	}

	if err := s.increment(ctx, minuteKey, time.Minute); err != nil {
		return nil, err
	}
	if err := s.increment(ctx, dailyKey, 24*time.Hour); err != nil {
		return nil, err
	}

	return &RateLimitStatus{
		Allowed: true,
		Scope:   ScopeChatMinute,
		Current: minute.Current + 1,
		Limit:   s.chatCfg.RateLimitPerMinute,
	}, nil
}

// ChatUsage returns the current per-minute and daily counts without
// incrementing either.
func (s *RateLimiterService) ChatUsage(ctx context.Context, userID uuid.UUID) (minute, daily int64, err error) {
	minute, err = s.currentCount(ctx, chatMinuteKey(userID))
	if err != nil {
		return 0, 0, err
	}
	daily, err = s.currentCount(ctx, chatDailyKey(userID))
	if err != nil {
		return 0, 0, err
	}
	return minute, daily, nil
}

// ResetChat clears both chat counters for a user (admin override).
func (s *RateLimiterService) ResetChat(ctx context.Context, userID uuid.UUID) error {
	if err := s.cache.Del(ctx, chatMinuteKey(userID), chatDailyKey(userID)).Err(); err != nil {
		logger.Log.WithError(err).Error("Failed to reset chat rate limit")
		return fmt.Errorf("failed to reset chat rate limit: %w", err)
	}
	return nil
}

func (s *RateLimiterService) currentCount(ctx context.Context, key string) (int64, error) {
	count, err := s.cache.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		logger.Log.WithError(err).Error("Rate limit counter lookup failed")
		return 0, fmt.Errorf("rate limit lookup failed: %w", err)
	}
	return count, nil
}

// checkCounter reads the counter and compares against the limit without
// incrementing. RetryAfter comes from the key's remaining TTL.
func (s *RateLimiterService) checkCounter(ctx context.Context, key, scope string, limit int64) (*RateLimitStatus, error) {
	current, err := s.currentCount(ctx, key)
	if err != nil {
		return nil, err
	}

	if current >= limit {
		ttl, err := s.cache.TTL(ctx, key).Result()
		if err != nil {
			logger.Log.WithError(err).Error("Rate limit TTL lookup failed")
			return nil, fmt.Errorf("rate limit lookup failed: %w", err)
		}
		if ttl < 0 {
			ttl = 0
		}
		return &RateLimitStatus{Allowed: false, Scope: scope, Current: current, Limit: limit, RetryAfter: ttl}, nil
	}

	return &RateLimitStatus{Allowed: true, Scope: scope, Current: current, Limit: limit}, nil
}

// increment bumps the counter, creating it with the window TTL on first use.
func (s *RateLimiterService) increment(ctx context.Context, key string, window time.Duration) error {
	_, err := s.cache.Get(ctx, key).Int64()
	if err == redis.Nil {
		if err := s.cache.SetEx(ctx, key, 1, window).Err(); err != nil {
			logger.Log.WithError(err).Error("Failed to create rate limit counter")
			return fmt.Errorf("rate limit increment failed: %w", err)
		}
		return nil
	}
	if err != nil {
		logger.Log.WithError(err).Error("Rate limit counter lookup failed")
		return fmt.Errorf("rate limit increment failed: %w", err)
	}
	if err := s.cache.Incr(ctx, key).Err(); err != nil {
		logger.Log.WithError(err).Error("Failed to increment rate limit counter")
		return fmt.Errorf("rate limit increment failed: %w", err)
	}
	return nil
}

func (s *RateLimiterService) checkAndIncrement(ctx context.Context, key, scope string, limit int64, window time.Duration) (*RateLimitStatus, error) {
	status, err := s.checkCounter(ctx, key, scope, limit)
	if err != nil {
		return nil, err
	}
	if !status.Allowed {
		return status, nil
	}
	if err := s.increment(ctx, key, window); err != nil {
		return nil, err
	}
	status.Current++
	return status, nil
}
