package api

import (
	"sort"
	"sync"
	"time"
)

// RequestTrace is the timing of a single request
type RequestTrace struct {
	RequestID string        `json:"requestId"`
	Method    string        `json:"method"`
	Route     string        `json:"route"`
	Status    int           `json:"status"`
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`
}

// RouteMetrics aggregates metrics for a specific route
type RouteMetrics struct {
	Method      string        `json:"method"`
	Route       string        `json:"route"`
	Count       int64         `json:"count"`
	ErrorCount  int64         `json:"errorCount"`
	TotalTime   time.Duration `json:"totalTime"`
	AvgTime     time.Duration `json:"avgTime"`
	MinTime     time.Duration `json:"minTime"`
	MaxTime     time.Duration `json:"maxTime"`
	LastRequest time.Time     `json:"lastRequest"`
}

// MetricsCollector aggregates request metrics per route and keeps the most
// recent traces
type MetricsCollector struct {
	mu            sync.RWMutex
	traces        []RequestTrace
	maxTraces     int
	routeMetrics  map[string]*RouteMetrics
	totalRequests int64
	totalErrors   int64
	startedAt     time.Time
}

// NewMetricsCollector creates a collector keeping up to maxTraces traces
func NewMetricsCollector(maxTraces int) *MetricsCollector {
	if maxTraces <= 0 {
		maxTraces = 1000
	}
	return &MetricsCollector{
		traces:       make([]RequestTrace, 0, maxTraces),
		maxTraces:    maxTraces,
		routeMetrics: make(map[string]*RouteMetrics),
		startedAt:    time.Now(),
	}
}

// RecordTrace adds a finished request
func (mc *MetricsCollector) RecordTrace(trace RequestTrace) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if len(mc.traces) == mc.maxTraces {
		mc.traces = mc.traces[1:]
	}
	mc.traces = append(mc.traces, trace)

	mc.totalRequests++
	key := trace.Method + " " + trace.Route
	rm, ok := mc.routeMetrics[key]
	if !ok {
		rm = &RouteMetrics{Method: trace.Method, Route: trace.Route, MinTime: trace.Duration}
		mc.routeMetrics[key] = rm
	}
	rm.Count++
	if trace.Status >= 400 {
		rm.ErrorCount++
		mc.totalErrors++
	}
	rm.TotalTime += trace.Duration
	rm.AvgTime = rm.TotalTime / time.Duration(rm.Count)
	if trace.Duration < rm.MinTime {
		rm.MinTime = trace.Duration
	}
	if trace.Duration > rm.MaxTime {
		rm.MaxTime = trace.Duration
	}
	rm.LastRequest = trace.StartTime
}

// GetSlowestRoutes returns routes ordered by average time, slowest first
func (mc *MetricsCollector) GetSlowestRoutes(limit int) []RouteMetrics {
	mc.mu.RLock()
	routes := make([]RouteMetrics, 0, len(mc.routeMetrics))
	for _, rm := range mc.routeMetrics {
		routes = append(routes, *rm)
	}
	mc.mu.RUnlock()

	sort.Slice(routes, func(i, j int) bool { return routes[i].AvgTime > routes[j].AvgTime })
	if limit > 0 && len(routes) > limit {
		routes = routes[:limit]
	}
	return routes
}

// GetSummary returns the totals and the slowest routes
func (mc *MetricsCollector) GetSummary() map[string]interface{} {
	mc.mu.RLock()
	total, errs, started := mc.totalRequests, mc.totalErrors, mc.startedAt
	mc.mu.RUnlock()

	errorRate := 0.0
	if total > 0 {
		errorRate = float64(errs) / float64(total)
	}
	return map[string]interface{}{
		"totalRequests": total,
		"totalErrors":   errs,
		"errorRate":     errorRate,
		"uptime":        time.Since(started).String(),
		"slowestRoutes": mc.GetSlowestRoutes(10),
	}
}
