// Package history keeps a bounded window of recent readings with running
// min/peak and an average over the window.
package history

import (
	"math"
	"time"
)

// Point is a single converted reading.
type Point struct {
	Value float64
	Time  time.Time
}

// Stats summarizes the readings seen so far.
type Stats struct {
	Min   float64
	Avg   float64
	Peak  float64
	Count int
}

// Buffer is a ring of the most recent points. Min and Peak cover every
// point ever pushed, Avg only the retained window.
type Buffer struct {
	points []Point
	size   int
	count  int
	min    float64
	peak   float64
}

// NewBuffer creates a buffer retaining up to capacity points.
func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{
		points: make([]Point, 0, capacity),
		size:   capacity,
		min:    math.MaxFloat64,
		peak:   -math.MaxFloat64,
	}
}

// Push records a reading.
func (b *Buffer) Push(v float64, t time.Time) {
	p := Point{Value: v, Time: t}
	if len(b.points) >= b.size {
		copy(b.points, b.points[1:])
		b.points[len(b.points)-1] = p
	} else {
		b.points = append(b.points, p)
	}
	b.count++

	if v < b.min {
		b.min = v
	}
	if v > b.peak {
		b.peak = v
	}
}

// Len returns the number of retained points.
func (b *Buffer) Len() int {
	return len(b.points)
}

// Stats returns min/avg/peak. All zero before the first push.
func (b *Buffer) Stats() Stats {
	if len(b.points) == 0 {
		return Stats{}
	}
	sum := 0.0
	for _, p := range b.points {
		sum += p.Value
	}
	return Stats{
		Min:   b.min,
		Avg:   sum / float64(len(b.points)),
		Peak:  b.peak,
		Count: b.count,
	}
}

// LastN returns a copy of the last n points, oldest first.
func (b *Buffer) LastN(n int) []Point {
	if n <= 0 || len(b.points) == 0 {
		return nil
	}
	start := len(b.points) - n
	if start < 0 {
		start = 0
	}
	out := make([]Point, len(b.points[start:]))
	copy(out, b.points[start:])
	return out
}
