// Package activity accumulates per-device activity events and reduces them
// into hourly histograms and median profiles.
package activity

import "sort"

// HoursPerDay is the number of hour-of-day buckets.
const HoursPerDay = 24

// Sink receives one activity event per resolved hardware address.
type Sink interface {
	Record(device string, hour int)
}

// DeviceSequences appends each event's hour to the sequence of its device.
// Used by comparative analyses.
type DeviceSequences struct {
	byDevice map[string][]int
	all      []int
}

// NewDeviceSequences creates an empty DeviceSequences accumulator.
func NewDeviceSequences() *DeviceSequences {
	return &DeviceSequences{byDevice: make(map[string][]int)}
}

// Record appends hour to device's sequence.
func (s *DeviceSequences) Record(device string, hour int) {
	s.byDevice[device] = append(s.byDevice[device], hour)
	s.all = append(s.all, hour)
}

// Events returns the number of recorded events.
func (s *DeviceSequences) Events() int {
	return len(s.all)
}

// ByDevice returns a copy of the per-device hour sequences.
func (s *DeviceSequences) ByDevice() Series {
	out := make(Series, len(s.byDevice))
	for device, hours := range s.byDevice {
		out[device] = append([]int(nil), hours...)
	}
	return out
}

// Hours returns every recorded hour in arrival order, devices merged.
// A device matched on both sides of a frame contributes both events.
func (s *DeviceSequences) Hours() []int {
	return append([]int(nil), s.all...)
}

// HourlyCounter increments a per-hour counter for every event, ignoring the
// device identity. Used by median analyses over a one-device directory.
type HourlyCounter struct {
	counts [HoursPerDay]int
}

// NewHourlyCounter creates a zeroed counter.
func NewHourlyCounter() *HourlyCounter {
	return &HourlyCounter{}
}

// Record counts one event at hour. Hours outside 0..23 are ignored.
func (c *HourlyCounter) Record(_ string, hour int) {
	if hour < 0 || hour >= HoursPerDay {
		return
	}
	c.counts[hour]++
}

// Counts returns the 24 per-hour counts.
func (c *HourlyCounter) Counts() [HoursPerDay]int {
	return c.counts
}

// CountHourly bins a sequence of hours into 24 buckets. The result always has
// 24 entries summing to the number of in-range hours.
func CountHourly(hours []int) [HoursPerDay]int {
	var counts [HoursPerDay]int
	for _, h := range hours {
		if h < 0 || h >= HoursPerDay {
			continue
		}
		counts[h]++
	}
	return counts
}

// Series maps a label (device identity, or day label in folder mode) to the
// ordered hours at which it was active. It is the comparative dataset handed
// to renderers.
type Series map[string][]int

// Labels returns the series labels, sorted.
func (s Series) Labels() []string {
	labels := make([]string, 0, len(s))
	for label := range s {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Histograms bins every label's hours with CountHourly.
func (s Series) Histograms() map[string][HoursPerDay]int {
	out := make(map[string][HoursPerDay]int, len(s))
	for label, hours := range s {
		out[label] = CountHourly(hours)
	}
	return out
}
