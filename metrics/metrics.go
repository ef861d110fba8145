package metrics

import (
	"context"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
)

var (
	MTicks            = stats.Int64("commonevent/ticks", "Simulation steps executed", stats.UnitDimensionless)
	MStepLatency      = stats.Float64("commonevent/step_latency", "Time spent in one simulation step", stats.UnitMilliseconds)
	MRunningParallel  = stats.Int64("commonevent/running_parallel", "Parallel events with a running interpreter", stats.UnitDimensionless)
	MCommandsExecuted = stats.Int64("commonevent/commands", "Script commands executed", stats.UnitDimensionless)
)

var (
	TicksView = &view.View{
		Name:        "commonevent/ticks",
		Measure:     MTicks,
		Description: "Number of simulation steps",
		Aggregation: view.Count(),
	}
	StepLatencyView = &view.View{
		Name:        "commonevent/step_latency",
		Measure:     MStepLatency,
		Description: "Distribution of simulation step latency",
		Aggregation: view.Distribution(0.1, 0.5, 1, 2, 5, 10, 16, 33, 100),
	}
	RunningParallelView = &view.View{
		Name:        "commonevent/running_parallel",
		Measure:     MRunningParallel,
		Description: "Running parallel events after the last step",
		Aggregation: view.LastValue(),
	}
	CommandsView = &view.View{
		Name:        "commonevent/commands",
		Measure:     MCommandsExecuted,
		Description: "Total script commands executed",
		Aggregation: view.Sum(),
	}
)

func RegisterViews() error {
	return view.Register(TicksView, StepLatencyView, RunningParallelView, CommandsView)
}

func UnregisterViews() {
	view.Unregister(TicksView, StepLatencyView, RunningParallelView, CommandsView)
}

func RecordStep(latency time.Duration, runningParallel int) {
	stats.Record(context.Background(),
		MTicks.M(1),
		MStepLatency.M(float64(latency)/float64(time.Millisecond)),
		MRunningParallel.M(int64(runningParallel)),
	)
}

func RecordCommands(n int) {
	if n == 0 {
		return
	}
	stats.Record(context.Background(), MCommandsExecuted.M(int64(n)))
}
