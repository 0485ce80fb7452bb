package usecases

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/orris-inc/billing/internal/domain/subscription"
	"github.com/orris-inc/billing/internal/infrastructure/cache"
)

// allApps stands in for an absent app scope in cache keys.
const allApps = "all"

func subscriptionKey(id string) string {
	return "sub:" + id
}

func userKey(userID string, appID *string) string {
	return fmt.Sprintf("user:%s:app:%s", userID, scope(appID))
}

func listKey(q ListSubscriptionsQuery) string {
	raw, _ := json.Marshal(q)
	sum := sha256.Sum256(raw)
	return fmt.Sprintf("app:%s:list:%s", scope(q.AppID), hex.EncodeToString(sum[:12]))
}

func scope(appID *string) string {
	if appID == nil || *appID == "" {
		return allApps
	}
	return *appID
}

// invalidationKeys lists every cached view a change to sub can affect:
// the entity, all of the owner's per-app lists, and the admin lists for
// its app and for the unscoped listing.
func invalidationKeys(sub *subscription.Subscription) []string {
	return []string{
		cache.EscapePattern(subscriptionKey(sub.ID())),
		fmt.Sprintf("user:%s:app:*", cache.EscapePattern(sub.UserID())),
		fmt.Sprintf("app:%s:list:*", cache.EscapePattern(sub.AppID())),
		fmt.Sprintf("app:%s:list:*", allApps),
	}
}
