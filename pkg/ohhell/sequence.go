package ohhell

const (
	// MaxTricks is the size of the largest hand
	MaxTricks = 10

	// MinPlayers is the fewest players a game can have
	MinPlayers = 2

	// MaxPlayers is the most players a game can have: ten cards each plus a trump must fit in the deck
	MaxPlayers = 5
)

// ValidatePlayerCount returns a PlayerCountError if n players cannot play
func ValidatePlayerCount(n int) error {
	if n < MinPlayers || n > MaxPlayers {
		return PlayerCountError(n)
	}

	return nil
}

// TrickCounts returns the number of tricks in each hand of a game
// Hands go down from ten to two, one single-trick hand per player, then back up to ten
func TrickCounts(numPlayers int) []int {
	counts := make([]int, 0, TotalHands(numPlayers))
	for i := MaxTricks; i > 1; i-- {
		counts = append(counts, i)
	}

	for i := 0; i < numPlayers; i++ {
		counts = append(counts, 1)
	}

	for i := 2; i <= MaxTricks; i++ {
		counts = append(counts, i)
	}

	return counts
}

// TotalHands returns the number of hands in a game
func TotalHands(numPlayers int) int {
	return 2*(MaxTricks-1) + numPlayers
}
