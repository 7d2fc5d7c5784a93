// Package tone synthesizes and plays the short notification cue.
package tone

import (
	"math"
	"time"
)

const (
	SampleRate     = 44100
	Frequency      = 800.0
	Duration       = 300 * time.Millisecond
	StartGain      = 0.3
	EndGain        = 0.01
	SamplesPerTone = SampleRate * 300 / 1000
)

// Gain is the exponential envelope: StartGain at t=0, EndGain at t=Duration.
func Gain(t time.Duration) float64 {
	ratio := t.Seconds() / Duration.Seconds()
	return StartGain * math.Pow(EndGain/StartGain, ratio)
}

// Samples renders the cue as mono samples in [-1, 1].
func Samples() []float64 {
	samples := make([]float64, SamplesPerTone)
	for i := range samples {
		t := float64(i) / SampleRate
		samples[i] = Gain(time.Duration(t*float64(time.Second))) * math.Sin(2*math.Pi*Frequency*t)
	}
	return samples
}
