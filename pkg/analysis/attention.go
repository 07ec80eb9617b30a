package analysis

// Attention converts face presence and movement volatility into a
// 0-100 attention score and a "looking away" flag.
//
// With no face present the score floors at 0 and lookingAway stays
// false: "looking away" describes a present-but-turning face, absence
// is reported through the status rules instead.
func (c Config) Attention(facePresent bool, movements int) (lookingAway bool, score int) {
	if !facePresent {
		return false, 0
	}

	lookingAway = movements >= c.FrequentMovements

	score = 100
	if movements > 0 {
		score = 100 - movements*c.AttentionPenalty
		if score < 0 {
			score = 0
		}
	}
	return lookingAway, score
}
