package pricing

import "time"

// MatchPeakRule returns the first rule whose weekday set and inclusive [Start, End] window contain at.
// Later rules are never consulted once one matches, even if they would also match.
// A rule with Start after End spans midnight.
func MatchPeakRule(at time.Time, rules []TimeWindowRule) (TimeWindowRule, bool) {
	tod := clockOf(at) / 60 * 60
	for _, r := range rules {
		if !containsDay(r.Days, at.Weekday()) {
			continue
		}
		if r.Start <= r.End {
			if tod >= r.Start && tod <= r.End {
				return r, true
			}
			continue
		}
		if tod >= r.Start || tod <= r.End {
			return r, true
		}
	}
	return TimeWindowRule{}, false
}

func containsDay(days []time.Weekday, d time.Weekday) bool {
	for _, x := range days {
		if x == d {
			return true
		}
	}
	return false
}

// SeasonOf maps a calendar date to exactly one band:
// peak Dec 15 - Jan 15, low Jan 16 - end of Feb, high Jun - Sep, standard otherwise.
func SeasonOf(at time.Time) Season {
	m, d := at.Month(), at.Day()
	switch {
	case m == time.December && d >= 15, m == time.January && d <= 15:
		return SeasonPeak
	case m == time.January, m == time.February:
		return SeasonLow
	case m >= time.June && m <= time.September:
		return SeasonHigh
	default:
		return SeasonStandard
	}
}
