package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix         = "user:%d"
	TemplateKeyPrefix     = "template:%d"
	TemplateListKey       = "templates:active"
	CatalogBadgeKeyPrefix = "catalog_badge:%d"
	CatalogListKey        = "catalog:active"
)

// Eligibility results are intentionally never cached: reservations can change
// between calls, so evaluation is recomputed every time. Only reads of
// immutable-once-active data (templates, catalog) go through the cache.
const (
	UserTTL         = 5 * time.Minute
	TemplateTTL     = 10 * time.Minute
	CatalogBadgeTTL = 30 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func TemplateKey(templateID uint) string {
	return fmt.Sprintf(TemplateKeyPrefix, templateID)
}

func CatalogBadgeKey(badgeID uint) string {
	return fmt.Sprintf(CatalogBadgeKeyPrefix, badgeID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateTemplate(ctx context.Context, templateID uint) {
	Invalidate(ctx, TemplateKey(templateID))
	Invalidate(ctx, TemplateListKey)
}

func InvalidateCatalogBadge(ctx context.Context, badgeID uint) {
	Invalidate(ctx, CatalogBadgeKey(badgeID))
	Invalidate(ctx, CatalogListKey)
}
