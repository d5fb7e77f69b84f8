package activity

import "sort"

// HourlySamples collects, per hour of day, one count per processed capture.
type HourlySamples map[int][]int

// NewHourlySamples returns an empty collection.
func NewHourlySamples() HourlySamples {
	return make(HourlySamples, HoursPerDay)
}

// Add contributes one sample to every hour. Idle hours contribute 0 so each
// hour always holds the same number of samples.
func (s HourlySamples) Add(counts [HoursPerDay]int) {
	for hour, count := range counts {
		s[hour] = append(s[hour], count)
	}
}

// Files returns the number of samples recorded for hour 0, which equals the
// number of captures merged through Add.
func (s HourlySamples) Files() int {
	return len(s[0])
}

// MedianProfile is the per-hour median of HourlySamples.
type MedianProfile [HoursPerDay]int

// ReduceMedians computes the median of each hour's samples. Hours without
// samples yield 0. Even-sized collections average the two central values
// with truncating integer division. The input is not modified.
func ReduceMedians(samples HourlySamples) MedianProfile {
	var profile MedianProfile
	for hour := 0; hour < HoursPerDay; hour++ {
		profile[hour] = Median(samples[hour])
	}
	return profile
}

// Median returns the median of values under the truncating even-size rule.
// An empty slice yields 0.
func Median(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
