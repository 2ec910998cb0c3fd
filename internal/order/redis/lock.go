package redis

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis holds advisory locks on ticket types while an order is priced and
// committed. The locks reduce contention on the conditional inventory
// UPDATEs; correctness does not depend on them.
type Redis struct {
	Client *redis.Client
	Logger *log.Logger
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{
		Client: client,
		Logger: log.Default(),
	}
}

// getTypeLockDuration returns the lock TTL from the environment or the
// default value.
func (r *Redis) getTypeLockDuration() time.Duration {
	defaultDuration := 30 * time.Second

	lockTTLStr := os.Getenv("TYPE_LOCK_TTL_SECONDS")
	if lockTTLStr == "" {
		return defaultDuration
	}

	lockTTLSec, err := strconv.Atoi(lockTTLStr)
	if err != nil {
		r.Logger.Println("REDIS: Invalid TYPE_LOCK_TTL_SECONDS value '" + lockTTLStr + "', using default 30 seconds")
		return defaultDuration
	}

	return time.Duration(lockTTLSec) * time.Second
}

// LockType locks a single ticket type for the given order.
func (r *Redis) LockType(typeID, orderID string) (bool, error) {
	key := "type_lock:" + typeID
	ok, err := r.Client.SetNX(context.Background(), key, orderID, r.getTypeLockDuration()).Result()
	return ok, err
}

// UnlockType releases a single ticket type lock if this order holds it.
func (r *Redis) UnlockType(typeID, orderID string) error {
	ctx := context.Background()
	key := fmt.Sprintf("type_lock:%s", typeID)
	val, err := r.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // already unlocked
	}
	if err != nil {
		return err
	}
	if val == orderID {
		_, err := r.Client.Del(ctx, key).Result()
		return err
	}
	return nil
}

// LockTypes locks multiple ticket types, releasing everything taken so far
// on the first failure.
func (r *Redis) LockTypes(typeIDs []string, orderID string) (bool, error) {
	locked := []string{}
	for _, typeID := range typeIDs {
		ok, err := r.LockType(typeID, orderID)
		if err != nil {
			for _, l := range locked {
				_ = r.UnlockType(l, orderID)
			}
			return false, err
		}
		if !ok {
			for _, l := range locked {
				_ = r.UnlockType(l, orderID)
			}
			return false, nil
		}
		locked = append(locked, typeID)
	}
	return true, nil
}

// UnlockTypes releases multiple ticket type locks.
func (r *Redis) UnlockTypes(typeIDs []string, orderID string) error {
	var firstErr error
	for _, typeID := range typeIDs {
		err := r.UnlockType(typeID, orderID)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
