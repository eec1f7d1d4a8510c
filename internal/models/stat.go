package models

// StatKey identifies a tracked box score statistic
type StatKey string

const (
	StatPoints   StatKey = "PTS"
	StatRebounds StatKey = "REB"
	StatAssists  StatKey = "AST"
	StatThrees   StatKey = "FG3M"
	StatSteals   StatKey = "STL"
	StatBlocks   StatKey = "BLK"
)

// KnownStats lists every stat the scanner understands, in display order
var KnownStats = []StatKey{StatPoints, StatRebounds, StatAssists, StatThrees, StatSteals, StatBlocks}

// IsKnownStat reports whether s is a stat the scanner understands
func IsKnownStat(s StatKey) bool {
	for _, k := range KnownStats {
		if k == s {
			return true
		}
	}
	return false
}

// ParseStatKeys converts configured stat names to keys, dropping any the
// scanner does not understand
func ParseStatKeys(names []string) []StatKey {
	keys := make([]StatKey, 0, len(names))
	for _, name := range names {
		if key := StatKey(name); IsKnownStat(key) {
			keys = append(keys, key)
		}
	}
	return keys
}
