package activity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedian(t *testing.T) {
	testCases := []struct {
		name   string
		values []int
		want   int
	}{
		{"empty", nil, 0},
		{"single", []int{7}, 7},
		{"odd", []int{1, 3, 5}, 3},
		{"odd unsorted", []int{5, 1, 3}, 3},
		{"even", []int{2, 4}, 3},
		{"even truncates", []int{1, 2}, 1},
		{"even unsorted", []int{10, 0, 3, 4}, 3},
		{"zeros", []int{0, 0, 0}, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Median(tc.values))
		})
	}
}

func TestMedian_DoesNotMutateInput(t *testing.T) {
	values := []int{5, 1, 3}
	Median(values)
	assert.Equal(t, []int{5, 1, 3}, values)
}

func TestReduceMedians_OrderIndependent(t *testing.T) {
	a := HourlySamples{4: {1, 9, 3, 7}, 5: {2, 0, 1}}
	b := HourlySamples{4: {7, 3, 9, 1}, 5: {1, 2, 0}}

	assert.Equal(t, ReduceMedians(a), ReduceMedians(b))
	assert.Equal(t, 5, ReduceMedians(a)[4])
	assert.Equal(t, 1, ReduceMedians(a)[5])
}

func TestReduceMedians_NoSamples(t *testing.T) {
	profile := ReduceMedians(NewHourlySamples())
	assert.Equal(t, MedianProfile{}, profile)
}

func TestHourlySamples_Add(t *testing.T) {
	samples := NewHourlySamples()

	var day1 [HoursPerDay]int
	day1[3] = 1
	samples.Add(day1)

	var day2 [HoursPerDay]int
	day2[3] = 5
	day2[20] = 2
	samples.Add(day2)

	assert.Equal(t, 2, samples.Files())
	for hour := 0; hour < HoursPerDay; hour++ {
		assert.Len(t, samples[hour], 2, "hour %d", hour)
	}
	assert.Equal(t, []int{1, 5}, samples[3])
	assert.Equal(t, []int{0, 2}, samples[20])
	assert.Equal(t, []int{0, 0}, samples[0])

	profile := ReduceMedians(samples)
	assert.Equal(t, 3, profile[3])
	assert.Equal(t, 1, profile[20])
}
