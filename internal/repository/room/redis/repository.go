package redis

import (
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type repo struct {
	rc             *redis.Client
	expireDuration time.Duration
	logger         *slog.Logger
	// adds ARGV[1] to zset KEYS[1] with max score + 1 unless already present
	addIfNotExistsScript *redis.Script
	// sets host_id of hash KEYS[1] if unset and adds it to set KEYS[2]
	setHostIfEmptyScript *redis.Script
}

func NewRepo(rc *redis.Client, expireDuration time.Duration, logger *slog.Logger) *repo {
	return &repo{
		rc:             rc,
		expireDuration: expireDuration,
		logger:         logger,
		addIfNotExistsScript: redis.NewScript(`
			if redis.call('ZSCORE', KEYS[1], ARGV[1]) then
				return 0
			end
			local maxScore = redis.call('ZREVRANGE', KEYS[1], 0, 0, 'WITHSCORES')
			local nextScore = 1
			if #maxScore > 0 then
				nextScore = tonumber(maxScore[2]) + 1
			end
			redis.call('ZADD', KEYS[1], nextScore, ARGV[1])
			return 1
		`),
		setHostIfEmptyScript: redis.NewScript(`
			if redis.call('EXISTS', KEYS[1]) == 0 then
				return -1
			end
			local ok = redis.call('HSETNX', KEYS[1], 'host_id', ARGV[1])
			if ok == 1 then
				redis.call('SADD', KEYS[2], ARGV[1])
			end
			return ok
		`),
	}
}
