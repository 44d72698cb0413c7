package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics. A nil *Metrics is valid and records
// nothing, which keeps tests and optional wiring simple.
type Metrics struct {
	RequestCounter      metric.Int64Counter
	RequestDuration     metric.Float64Histogram
	TokensUsed          metric.Int64Counter
	ModelCalls          metric.Int64Counter
	AnalysisDuration    metric.Float64Histogram
	EstimatedCost       metric.Float64Counter
	CircuitBreakerState metric.Int64Counter
	CacheLookups        metric.Int64Counter
}

// InitMetrics initializes all application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("dynamocards-backend")

	requestCounter, err := meter.Int64Counter(
		"http.requests.total",
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	tokensUsed, err := meter.Int64Counter(
		"gemini.tokens.used",
		metric.WithDescription("Total Gemini tokens used"),
	)
	if err != nil {
		return nil, err
	}

	modelCalls, err := meter.Int64Counter(
		"concepts.model_calls.total",
		metric.WithDescription("Extraction calls issued, one per chunk group"),
	)
	if err != nil {
		return nil, err
	}

	analysisDuration, err := meter.Float64Histogram(
		"analysis.duration",
		metric.WithDescription("End-to-end video analysis duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	estimatedCost, err := meter.Float64Counter(
		"analysis.estimated_cost",
		metric.WithDescription("Estimated model spend in USD"),
	)
	if err != nil {
		return nil, err
	}

	circuitBreakerState, err := meter.Int64Counter(
		"circuit_breaker.state_changes",
		metric.WithDescription("Circuit breaker state changes"),
	)
	if err != nil {
		return nil, err
	}

	cacheLookups, err := meter.Int64Counter(
		"transcript.cache.lookups",
		metric.WithDescription("Transcript cache lookups by outcome"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCounter:      requestCounter,
		RequestDuration:     requestDuration,
		TokensUsed:          tokensUsed,
		ModelCalls:          modelCalls,
		AnalysisDuration:    analysisDuration,
		EstimatedCost:       estimatedCost,
		CircuitBreakerState: circuitBreakerState,
		CacheLookups:        cacheLookups,
	}, nil
}

// RecordRequest records HTTP request metrics
func (m *Metrics) RecordRequest(method, path, status string, duration float64) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.path", path),
		attribute.String("http.status", status),
	}

	m.RequestCounter.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	m.RequestDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordTokensUsed records Gemini token usage
func (m *Metrics) RecordTokensUsed(tokens int64, model string) {
	if m == nil {
		return
	}
	m.TokensUsed.Add(context.Background(), tokens, metric.WithAttributes(
		attribute.String("gemini.model", model),
	))
}

// RecordModelCall records one extraction call and its outcome.
func (m *Metrics) RecordModelCall(kind string, success bool) {
	if m == nil {
		return
	}
	m.ModelCalls.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("call.kind", kind),
		attribute.Bool("call.success", success),
	))
}

// RecordAnalysis records one finished analysis.
func (m *Metrics) RecordAnalysis(duration, cost float64, status string) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("analysis.status", status))
	m.AnalysisDuration.Record(context.Background(), duration, attrs)
	m.EstimatedCost.Add(context.Background(), cost, attrs)
}

// RecordCircuitBreakerState records circuit breaker state changes
func (m *Metrics) RecordCircuitBreakerState(service, state string) {
	if m == nil {
		return
	}
	m.CircuitBreakerState.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("state", state),
	))
}

// RecordCacheLookup records a transcript cache hit or miss.
func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	m.CacheLookups.Add(context.Background(), 1, metric.WithAttributes(
		attribute.Bool("cache.hit", hit),
	))
}
