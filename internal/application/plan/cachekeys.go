package plan

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/orris-inc/billing/internal/infrastructure/cache"
)

// Keys live under the plans cache namespace.
const (
	listPattern = "plans:*"
)

func planKey(id string) string {
	return "plan:" + id
}

func dropdownKey(appID string) string {
	return fmt.Sprintf("app:%s:dropdown", appID)
}

// listKey folds the whole filter and page tuple into the key so that every
// distinct query has its own entry.
func listKey(q ListPlansQuery) string {
	raw, _ := json.Marshal(q)
	sum := sha256.Sum256(raw)
	return "plans:" + hex.EncodeToString(sum[:12])
}

// invalidationKeys lists what a mutation of one plan must clear.
func invalidationKeys(planID, appID string) []string {
	keys := []string{listPattern}
	if planID != "" {
		keys = append(keys, cache.EscapePattern(planKey(planID)))
	}
	if appID != "" {
		keys = append(keys, cache.EscapePattern(dropdownKey(appID)))
	}
	return keys
}
