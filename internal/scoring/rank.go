package scoring

import "math"

const (
	// TieGap is the widest leader gap still treated as a near-tie.
	TieGap      = 5
	tieBonus    = 3
	displayBase = 85
	displaySpan = 15
	topDisplay  = 100
)

// breakTies nudges the leaders when they are within TieGap points. All three checks
// read the same pre-adjustment top two; nothing is re-sorted between them.
func breakTies(in *input, t *tally) {
	order := t.ranked()
	first, second := order[0], order[1]
	if t.scores[first]-t.scores[second] > TieGap {
		return
	}
	africanPair := (first == Ethiopia && second == Uganda) || (first == Uganda && second == Ethiopia)

	if africanPair && in.EnglishImportance.atLeastMedium() {
		t.scores[second] += tieBonus
	}
	if africanPair && in.TimeAwayImportance.atLeastMedium() && second == Ethiopia {
		t.scores[Ethiopia] += tieBonus
	}
	if in.spanish && (first == Guatemala || second == Guatemala) {
		t.scores[Guatemala] += tieBonus
	}
}

// normalize builds the display list. Rank 1 shows 100; every other entry shows
// round(85 + 15*score/top) with the ratio clamped to [0,1]. A non-positive top score is
// treated as 1 so the ratio is always defined.
func normalize(order []Country, t *tally) []CountryScore {
	n := len(order)
	if n > 3 {
		n = 3
	}
	top := t.scores[order[0]]
	out := make([]CountryScore, 0, n)
	for i, c := range order[:n] {
		reasons := make([]string, len(t.reasons[c]))
		copy(reasons, t.reasons[c])
		display := topDisplay
		if i > 0 {
			display = displayScore(t.scores[c], top)
		}
		out = append(out, CountryScore{Country: c, Score: display, Reasons: reasons})
	}
	return out
}

func displayScore(score, top int) int {
	denom := float64(top)
	if denom <= 0 {
		denom = 1
	}
	ratio := float64(score) / denom
	switch {
	case math.IsNaN(ratio) || ratio < 0:
		ratio = 0
	case ratio > 1:
		ratio = 1
	}
	return int(math.Round(displayBase + displaySpan*ratio))
}

// deriveConfidence starts at 100 and subtracts for ambiguous answers and a narrow lead.
// gap is the raw difference between the final top two scores.
func deriveConfidence(in *input, gap int) Confidence {
	value := 100
	if in.GlobalPresenceStatus == GlobalPresenceNotSure {
		value -= 10
	}
	if in.RegionPreference == RegionNotSure {
		value -= 10
	}
	if in.PartnershipPosture == PostureNotSure {
		value -= 10
	}
	if in.CostImportance == ImportanceMedium &&
		in.TimeAwayImportance == ImportanceMedium &&
		in.EnglishImportance == ImportanceMedium {
		value -= 15
	}
	if gap <= TieGap {
		value -= 10
	}
	switch {
	case value >= 80:
		return ConfidenceHigh
	case value >= 55:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
