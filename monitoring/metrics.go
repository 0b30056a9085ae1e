// Package monitoring collects in-process counters for the recommendation flows.
package monitoring

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// FlowStat is the running tally for one flow.
type FlowStat struct {
	Flow        string        `json:"flow"`
	Requests    int64         `json:"requests"`
	Successes   int64         `json:"successes"`
	Failures    int64         `json:"failures"`
	TotalTime   time.Duration `json:"total_time_ns"`
	MaxTime     time.Duration `json:"max_time_ns"`
	LastRequest time.Time     `json:"last_request"`
}

// AverageTime 平均耗时
func (s FlowStat) AverageTime() time.Duration {
	if s.Requests == 0 {
		return 0
	}
	return s.TotalTime / time.Duration(s.Requests)
}

// MetricsCollector 指标收集器
type MetricsCollector struct {
	mu        sync.RWMutex
	flows     map[string]*FlowStat
	startTime time.Time
	now       func() time.Time
}

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		flows:     make(map[string]*FlowStat),
		startTime: time.Now(),
		now:       time.Now,
	}
}

// Observe records one flow invocation.
func (mc *MetricsCollector) Observe(flow string, ok bool, elapsed time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	stat, exists := mc.flows[flow]
	if !exists {
		stat = &FlowStat{Flow: flow}
		mc.flows[flow] = stat
	}
	stat.Requests++
	if ok {
		stat.Successes++
	} else {
		stat.Failures++
	}
	stat.TotalTime += elapsed
	if elapsed > stat.MaxTime {
		stat.MaxTime = elapsed
	}
	stat.LastRequest = mc.now()
}

// Snapshot returns a copy of every flow stat ordered by flow name.
func (mc *MetricsCollector) Snapshot() []FlowStat {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	result := make([]FlowStat, 0, len(mc.flows))
	for _, stat := range mc.flows {
		result = append(result, *stat)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Flow < result[j].Flow })
	return result
}

func (mc *MetricsCollector) GetUptime() time.Duration {
	return time.Since(mc.startTime)
}

// GetSystemStats 获取系统统计
func (mc *MetricsCollector) GetSystemStats() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"uptime":     mc.GetUptime().String(),
		"goroutines": runtime.NumGoroutine(),
		"memory": map[string]interface{}{
			"alloc":      m.Alloc,
			"heap_alloc": m.HeapAlloc,
			"heap_sys":   m.HeapSys,
			"gc_count":   m.NumGC,
		},
		"num_cpu": runtime.NumCPU(),
	}
}

// ExportPrometheus 导出Prometheus格式
func (mc *MetricsCollector) ExportPrometheus() string {
	var b strings.Builder

	b.WriteString("# HELP smartfarm_predictions_total Flow invocations by outcome.\n")
	b.WriteString("# TYPE smartfarm_predictions_total counter\n")
	stats := mc.Snapshot()
	for _, s := range stats {
		fmt.Fprintf(&b, "smartfarm_predictions_total{flow=%q,outcome=\"success\"} %d\n", s.Flow, s.Successes)
		fmt.Fprintf(&b, "smartfarm_predictions_total{flow=%q,outcome=\"failure\"} %d\n", s.Flow, s.Failures)
	}
	b.WriteString("# HELP smartfarm_prediction_seconds_max Slowest invocation per flow.\n")
	b.WriteString("# TYPE smartfarm_prediction_seconds_max gauge\n")
	for _, s := range stats {
		fmt.Fprintf(&b, "smartfarm_prediction_seconds_max{flow=%q} %f\n", s.Flow, s.MaxTime.Seconds())
	}
	return b.String()
}
