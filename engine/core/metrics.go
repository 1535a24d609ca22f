package core

import (
	"sync"

	"github.com/lumengine/lumen/engine/containers"
)

const AVG_COUNT = 30

type MetricsState struct {
	MStimes            *containers.RingQueue[float64]
	MSavg              float64
	Frames             int32
	AccumulatedFrameMS float64
	FPS                float64
}

var onceMetrics sync.Once
var metricsState *MetricsState = nil

func MetricsInitialize() error {
	onceMetrics.Do(func() {
		metricsState = &MetricsState{
			MStimes: containers.NewRingQueue[float64](AVG_COUNT),
		}
	})
	return nil
}

func MetricsUpdate(frameElapsedTime float64) {
	// Calculate frame ms average over a rolling window.
	frameMS := (frameElapsedTime * 1000.0)
	if metricsState.MStimes.IsFull() {
		metricsState.MStimes.Dequeue()
	}
	metricsState.MStimes.Enqueue(frameMS)
	if metricsState.MStimes.IsFull() {
		sum := 0.0
		for i := 0; i < AVG_COUNT; i++ {
			v, _ := metricsState.MStimes.Dequeue()
			sum += v
			metricsState.MStimes.Enqueue(v)
		}
		metricsState.MSavg = sum / float64(AVG_COUNT)
	}

	// Calculate Frames per second.
	metricsState.AccumulatedFrameMS += frameMS
	if metricsState.AccumulatedFrameMS > 1000 {
		metricsState.FPS = float64(metricsState.Frames)
		metricsState.AccumulatedFrameMS -= 1000
		metricsState.Frames = 0
	}

	// Count all Frames.
	metricsState.Frames++
}

func MetricsFPS() float64 {
	return metricsState.FPS
}

func MetricsFrameTime() float64 {
	return metricsState.MSavg
}

func MetricsFrame() (float64, float64) {
	return metricsState.FPS, metricsState.MSavg
}
