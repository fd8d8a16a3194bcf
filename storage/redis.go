package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/yuhigori/mujinnaiken/models"
)

const propertyCacheTTL = 10 * time.Minute

// NewRedis returns a client for the given address, or nil when Redis is not
// configured. All cache operations are nil-safe no-ops in that case.
func NewRedis(addr string) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	log.Println("🔧 Redis cache initialized with address:", addr)
	return client
}

// PropertyCache keeps the last good copy of each property so the booking
// funnel can keep answering while the primary store is down. Best-effort on
// both sides: a cache failure is logged, never surfaced.
type PropertyCache struct {
	rdb *redis.Client
}

func NewPropertyCache(rdb *redis.Client) *PropertyCache {
	return &PropertyCache{rdb: rdb}
}

func (c *PropertyCache) Put(ctx context.Context, property *models.Property) {
	if c == nil || c.rdb == nil || property == nil {
		return
	}
	payload, err := json.Marshal(property)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, propertyKey(property.ID), payload, propertyCacheTTL).Err(); err != nil {
		log.Printf("property cache put failed for %d: %v", property.ID, err)
	}
}

func (c *PropertyCache) Get(ctx context.Context, id uint) (*models.Property, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	payload, err := c.rdb.Get(ctx, propertyKey(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var property models.Property
	if err := json.Unmarshal(payload, &property); err != nil {
		return nil, false
	}
	return &property, true
}

func propertyKey(id uint) string {
	return fmt.Sprintf("property:%d", id)
}
