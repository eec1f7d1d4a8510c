package scanner

import (
	"sort"

	"github.com/floorgang/floorscanner/internal/models"
)

// Rank orders picks by American odds descending, best price first. The sort
// is stable, so picks at the same price keep their scan order.
func Rank(picks []models.Pick) {
	sort.SliceStable(picks, func(i, j int) bool {
		return picks[i].Odds > picks[j].Odds
	})
}
