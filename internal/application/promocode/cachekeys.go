package promocode

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/orris-inc/billing/internal/infrastructure/cache"
)

// Keys live under the promo cache namespace.
const listPattern = "promos:*"

func promoKey(id string) string {
	return "promo:" + id
}

func listKey(q ListPromoCodesQuery) string {
	raw, _ := json.Marshal(q)
	sum := sha256.Sum256(raw)
	return "promos:" + hex.EncodeToString(sum[:12])
}

func validationKey(code, userID, planID string) string {
	return fmt.Sprintf("validation:%s:%s:%s", code, userID, planID)
}

func validationPattern(code string) string {
	return fmt.Sprintf("validation:%s:*", cache.EscapePattern(code))
}

// invalidationKeys lists what a mutation of one promo code must clear.
// codes are every code value the promo had before and after the change.
func invalidationKeys(promoID string, codes ...string) []string {
	keys := []string{listPattern, cache.EscapePattern(promoKey(promoID))}
	seen := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		keys = append(keys, validationPattern(c))
	}
	return keys
}
