package models

// Tier is the user classification that scales daily goal thresholds.
type Tier string

const (
	TierBronze   Tier = "Bronze"
	TierSilver   Tier = "Silver"
	TierGold     Tier = "Gold"
	TierPlatinum Tier = "Platinum"
)

// ParseTier normalizes a client-supplied tier string. Unknown values fail
// closed to Bronze (lowest goals) instead of erroring.
func ParseTier(s string) Tier {
	switch Tier(s) {
	case TierBronze, TierSilver, TierGold, TierPlatinum:
		return Tier(s)
	default:
		return TierBronze
	}
}
