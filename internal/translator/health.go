package translator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/localrivet/polysum/internal/telemetry"
)

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	// StatusHealthy indicates a component is fully operational
	StatusHealthy HealthStatus = "healthy"

	// StatusDegraded indicates a component is operational but with reduced capability
	StatusDegraded HealthStatus = "degraded"

	// StatusUnhealthy indicates a component is not operational
	StatusUnhealthy HealthStatus = "unhealthy"
)

// HealthReport contains information about the current health of the translation service
type HealthReport struct {
	Status        HealthStatus       `json:"status"`
	Timestamp     time.Time          `json:"timestamp"`
	Components    map[string]string  `json:"components"`
	Providers     map[string]bool    `json:"providers"`
	ResponseTimes map[string]float64 `json:"response_times_ms"`
	CacheStats    map[string]int64   `json:"cache_stats"`
	SuccessRate   float64            `json:"success_rate"`
	TotalRequests int64              `json:"total_requests"`
}

// CreateHealthReport probes every provider and summarizes the collected metrics.
func CreateHealthReport(ctx context.Context, service *Service) (*HealthReport, error) {
	if service == nil {
		return nil, fmt.Errorf("translation service is nil")
	}

	m := service.GetMetrics()
	if m == nil {
		return nil, fmt.Errorf("metrics collector is nil")
	}

	providerHealth := service.CheckProviderHealth(ctx)

	status := StatusHealthy
	workingProviders := 0
	for _, isHealthy := range providerHealth {
		if isHealthy {
			workingProviders++
		}
	}
	if workingProviders == 0 {
		status = StatusUnhealthy
	} else if workingProviders < len(providerHealth) {
		status = StatusDegraded
	}

	totalSuccess := m.GetCounter(telemetry.MetricAPICallsSuccess)
	totalFailure := m.GetCounter(telemetry.MetricAPICallsFailure)
	totalRequests := totalSuccess + totalFailure

	var successRate float64
	if totalRequests > 0 {
		successRate = float64(totalSuccess) / float64(totalRequests) * 100.0
	}

	responseTimes := map[string]float64{
		"total": toMillis(m.GetTimerAverage(telemetry.MetricTranslateTime)),
	}
	for name := range providerHealth {
		responseTimes[name] = toMillis(m.GetTimerAverage(telemetry.MetricResponseTime(name)))
	}

	cacheStats := map[string]int64{
		"hits":   m.GetCounter(telemetry.MetricCacheHits),
		"misses": m.GetCounter(telemetry.MetricCacheMisses),
		"size":   int64(service.cache.len()),
	}

	components := map[string]string{
		"cache":     string(StatusHealthy),
		"primary":   string(StatusUnhealthy),
		"fallbacks": string(StatusUnhealthy),
	}
	primary := service.PrimaryName()
	for provider, healthy := range providerHealth {
		if healthy && provider == primary {
			components["primary"] = string(StatusHealthy)
		} else if healthy {
			components["fallbacks"] = string(StatusHealthy)
		}
	}

	return &HealthReport{
		Status:        status,
		Timestamp:     time.Now(),
		Components:    components,
		Providers:     providerHealth,
		ResponseTimes: responseTimes,
		CacheStats:    cacheStats,
		SuccessRate:   successRate,
		TotalRequests: totalRequests,
	}, nil
}

// CreateHealthReportJSON renders CreateHealthReport as indented JSON.
func CreateHealthReportJSON(ctx context.Context, service *Service) (string, error) {
	report, err := CreateHealthReport(ctx, service)
	if err != nil {
		return "", err
	}

	reportJSON, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal health report: %w", err)
	}

	return string(reportJSON), nil
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
