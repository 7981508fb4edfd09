// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package access

import "strings"

// =============================================================================
// TIER TOKEN VERIFICATION
// =============================================================================

// FreeAccessToken is the key issued to free-tier users after they acknowledge
// the subscription resource.
const FreeAccessToken = "FREDBEAR-FREE-V2.1-ACCESS"

// premiumKeys are the accepted premium access keys. Input is normalized
// (trimmed, lowercased) before comparison, so entry is case-insensitive.
var premiumKeys = map[string]struct{}{
	"aiiscoked":      {},
	"baddreamasriel": {},
	"kingasgore":     {},
}

// normalizeToken canonicalizes user-entered keys.
func normalizeToken(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}

// validFreeToken accepts the issued token and close variants: anything that
// mentions the product name, or any key longer than five characters. The
// free gate is a speed bump, not a lock.
func validFreeToken(token string) bool {
	trimmed := strings.TrimSpace(token)
	if strings.Contains(strings.ToUpper(trimmed), "FREDBEAR") {
		return true
	}
	return len(trimmed) > 5
}

// validPremiumToken checks a key against the premium set.
func validPremiumToken(token string) bool {
	_, ok := premiumKeys[normalizeToken(token)]
	return ok
}
