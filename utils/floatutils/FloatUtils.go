// Package floatutils provides utilities for working with floats
package floatutils

import (
	"math"

	"gonum.org/v1/gonum/spatial/r1"
)

// Clip clips a floating point to within a minimum and maximum value.
// If the floating point exceeds max, then the function returns the max
// If min exceeds the floating point, then the function returns the min
func Clip(value, min, max float64) float64 {
	clipped := math.Min(value, max)
	return math.Max(clipped, min)
}

// ClipInterval is a wrapper to use Clip with an r1.Interval instead of
// a separate max and min value
func ClipInterval(value float64, interval r1.Interval) float64 {
	return Clip(value, interval.Min, interval.Max)
}

// Max calculates and returns the maximum float64 in a list
func Max(floats ...float64) float64 {
	max := floats[0]
	for _, val := range floats {
		if val > max {
			max = val
		}
	}
	return max
}

// Span returns the smallest interval containing all values. Span
// panics if no values are given.
func Span(values ...float64) r1.Interval {
	if len(values) == 0 {
		panic("span: no values")
	}
	span := r1.Interval{Min: values[0], Max: values[0]}
	for _, val := range values[1:] {
		span.Min = math.Min(span.Min, val)
		span.Max = math.Max(span.Max, val)
	}
	return span
}
