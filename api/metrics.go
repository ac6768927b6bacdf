package api

import (
	"sync"
	"time"
)

// RouteMetrics aggregates metrics for a specific route
type RouteMetrics struct {
	Method      string        `json:"method"`
	Path        string        `json:"path"`
	Count       int64         `json:"count"`
	ErrorCount  int64         `json:"errorCount"`
	TotalTime   time.Duration `json:"totalTime"`
	AvgTime     time.Duration `json:"avgTime"`
	MinTime     time.Duration `json:"minTime"`
	MaxTime     time.Duration `json:"maxTime"`
	LastRequest time.Time     `json:"lastRequest"`
}

type requestSample struct {
	method   string
	path     string
	status   int
	duration time.Duration
}

// MetricsCollector collects and aggregates request metrics.
// Collection never blocks production requests: samples are queued through a
// buffered channel and dropped silently when it is full.
type MetricsCollector struct {
	mu            sync.RWMutex
	routeMetrics  map[string]*RouteMetrics
	totalRequests int64
	totalErrors   int64
	sampleChan    chan requestSample
	stopChan      chan struct{}
}

var globalMetrics *MetricsCollector

// InitMetrics initializes the global metrics collector
func InitMetrics() {
	globalMetrics = &MetricsCollector{
		routeMetrics: make(map[string]*RouteMetrics),
		sampleChan:   make(chan requestSample, 1024),
		stopChan:     make(chan struct{}),
	}
	go globalMetrics.run()
}

func (mc *MetricsCollector) run() {
	for {
		select {
		case sample := <-mc.sampleChan:
			mc.record(sample)
		case <-mc.stopChan:
			return
		}
	}
}

func (mc *MetricsCollector) record(sample requestSample) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.totalRequests++
	if sample.status >= 400 {
		mc.totalErrors++
	}

	key := sample.method + " " + sample.path
	rm, ok := mc.routeMetrics[key]
	if !ok {
		rm = &RouteMetrics{Method: sample.method, Path: sample.path, MinTime: sample.duration}
		mc.routeMetrics[key] = rm
	}
	rm.Count++
	if sample.status >= 400 {
		rm.ErrorCount++
	}
	rm.TotalTime += sample.duration
	rm.AvgTime = rm.TotalTime / time.Duration(rm.Count)
	if sample.duration < rm.MinTime {
		rm.MinTime = sample.duration
	}
	if sample.duration > rm.MaxTime {
		rm.MaxTime = sample.duration
	}
	rm.LastRequest = time.Now()
}

func (mc *MetricsCollector) track(sample requestSample) {
	select {
	case mc.sampleChan <- sample:
	default:
		// full buffer, drop the sample
	}
}

// MetricsSummary is the aggregate view served by the metrics endpoint
type MetricsSummary struct {
	TotalRequests int64          `json:"totalRequests"`
	TotalErrors   int64          `json:"totalErrors"`
	Routes        []RouteMetrics `json:"routes"`
}

// Summary returns a snapshot of the collected metrics
func Summary() MetricsSummary {
	if globalMetrics == nil {
		return MetricsSummary{}
	}
	globalMetrics.mu.RLock()
	defer globalMetrics.mu.RUnlock()

	out := MetricsSummary{
		TotalRequests: globalMetrics.totalRequests,
		TotalErrors:   globalMetrics.totalErrors,
		Routes:        make([]RouteMetrics, 0, len(globalMetrics.routeMetrics)),
	}
	for _, rm := range globalMetrics.routeMetrics {
		out.Routes = append(out.Routes, *rm)
	}
	return out
}
