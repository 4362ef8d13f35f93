package notification

import (
	"context"
	"encoding/json"
	"time"

	coachRepo "fitstudio/database/repository/coach"
	"fitstudio/models"
	"fitstudio/utils"

	"github.com/go-redis/redis/v8"
)

// CoachBriefCache is a read-through cache over the display fields used
// when rendering pushes (coach name and avatar). Conflict checks never
// read it; only notification rendering does.
type CoachBriefCache struct {
	Client  *redis.Client
	Coaches coachRepo.CoachRepository
	TTL     time.Duration
}

func NewCoachBriefCache(client *redis.Client, coaches coachRepo.CoachRepository) *CoachBriefCache {
	return &CoachBriefCache{Client: client, Coaches: coaches, TTL: 30 * time.Minute}
}

// GetOrReload returns the cached brief, reloading from the coach store
// on a miss.
func (c *CoachBriefCache) GetOrReload(ctx context.Context, coachID string) (models.CoachBrief, error) {
	key := utils.CoachBriefKey(coachID)
	raw, err := c.Client.Get(ctx, key).Result()
	if err == nil {
		var brief models.CoachBrief
		if json.Unmarshal([]byte(raw), &brief) == nil {
			return brief, nil
		}
		// Fall through and reload on a corrupt entry.
	}

	coach, err := c.Coaches.GetByID(ctx, coachID)
	if err != nil {
		return models.CoachBrief{}, err
	}
	brief := coach.Brief()
	if data, err := json.Marshal(brief); err == nil {
		if err := c.Client.Set(ctx, key, data, c.TTL).Err(); err != nil {
			utils.GetLogger().Sugar().Warnf("brief cache: failed to store %s: %v", coachID, err)
		}
	}
	return brief, nil
}

// Invalidate drops the cached brief after a coach profile change.
func (c *CoachBriefCache) Invalidate(ctx context.Context, coachID string) {
	if err := c.Client.Del(ctx, utils.CoachBriefKey(coachID)).Err(); err != nil {
		utils.GetLogger().Sugar().Warnf("brief cache: failed to invalidate %s: %v", coachID, err)
	}
}
