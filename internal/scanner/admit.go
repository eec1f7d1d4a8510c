package scanner

// AdmitPlayer reports whether a player prop's price clears the odds
// threshold. A price exactly at the threshold is playable.
func AdmitPlayer(odds, threshold int) bool {
	return odds >= threshold
}

// AdmitTeam reports whether a team total's price clears the odds threshold.
// Team prices must beat the threshold outright.
func AdmitTeam(odds, threshold int) bool {
	return odds > threshold
}
