package scanner

import "github.com/floorgang/floorscanner/internal/models"

// FindBestOver selects the highest strike strictly below the floor. Strikes
// at or above the floor are not playable. Returns false when no offer
// qualifies. Ties on the line keep the first offer seen.
func FindBestOver(offers []models.MarketOffer, floor float64) (models.MarketOffer, bool) {
	var best models.MarketOffer
	found := false
	for _, offer := range offers {
		if offer.Line >= floor {
			continue
		}
		if !found || offer.Line > best.Line {
			best = offer
			found = true
		}
	}
	return best, found
}

// FindBestUnder selects the lowest strike strictly above the ceiling. Strikes
// at or below the ceiling are not playable. Returns false when no offer
// qualifies. Ties on the line keep the first offer seen.
func FindBestUnder(offers []models.MarketOffer, ceiling float64) (models.MarketOffer, bool) {
	var best models.MarketOffer
	found := false
	for _, offer := range offers {
		if offer.Line <= ceiling {
			continue
		}
		if !found || offer.Line < best.Line {
			best = offer
			found = true
		}
	}
	return best, found
}
