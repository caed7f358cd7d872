package apportion

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("apportion")
var metrics = struct {
	runsStarted    metric.Int64Counter
	stepsAllocated metric.Int64Counter
	stepTime       metric.Int64Histogram
}{
	runsStarted:    must(meter.Int64Counter("apportion_runs_started", metric.WithDescription("Number of apportionment runs assembled."))),
	stepsAllocated: must(meter.Int64Counter("apportion_steps_allocated", metric.WithDescription("Number of allocation steps taken across all runs."))),
	stepTime: must(meter.Int64Histogram("apportion_step_time_us",
		metric.WithDescription("Histogram of time spent on a single allocation step in microseconds"),
		metric.WithExplicitBucketBoundaries(1.0, 2.0, 3.0, 5.0, 10.0, 20.0, 30.0, 40.0, 50.0, 100.0, 200.0, 300.0, 400.0, 500.0, 1000.0),
		metric.WithUnit("us"),
	)),
}

func must[V any](v V, err error) V {
	if err != nil {
		panic(err)
	}
	return v
}
