package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/limaJavier/timetabler/pkg/solver"
)

// Recorder collects solve metrics on a private registry. It implements solver.Observer.
type Recorder struct {
	registry      *prometheus.Registry
	phaseDuration *prometheus.HistogramVec
	phaseNodes    *prometheus.CounterVec
	phasesTotal   *prometheus.CounterVec
	solvesTotal   *prometheus.CounterVec
	objective     prometheus.Gauge
	assignments   prometheus.Gauge
	unmet         prometheus.Gauge
}

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()

	phaseDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timetabler_phase_duration_seconds",
		Help:    "Duration of search phases in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"mode"})

	phaseNodes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetabler_search_nodes_total",
		Help: "Branch-and-bound nodes expanded",
	}, []string{"mode"})

	phasesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetabler_phases_total",
		Help: "Search phases by outcome",
	}, []string{"mode", "outcome"})

	solvesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetabler_solves_total",
		Help: "Solves by terminal state",
	}, []string{"state"})

	objective := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timetabler_objective",
		Help: "Objective value of the last solve",
	})

	assignments := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timetabler_assignments",
		Help: "Lessons scheduled by the last solve",
	})

	unmet := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timetabler_unmet_pairs",
		Help: "Curriculum pairs left unscheduled by the last solve",
	})

	registry.MustRegister(phaseDuration, phaseNodes, phasesTotal, solvesTotal, objective, assignments, unmet)

	return &Recorder{
		registry:      registry,
		phaseDuration: phaseDuration,
		phaseNodes:    phaseNodes,
		phasesTotal:   phasesTotal,
		solvesTotal:   solvesTotal,
		objective:     objective,
		assignments:   assignments,
		unmet:         unmet,
	}
}

func (recorder *Recorder) PhaseFinished(report solver.PhaseReport) {
	mode := report.Mode.String()
	recorder.phaseDuration.WithLabelValues(mode).Observe(report.Duration.Seconds())
	recorder.phaseNodes.WithLabelValues(mode).Add(float64(report.Nodes))
	recorder.phasesTotal.WithLabelValues(mode, string(report.Outcome)).Inc()
}

func (recorder *Recorder) Solved(result *solver.Result) {
	recorder.solvesTotal.WithLabelValues(result.State.String()).Inc()
	recorder.objective.Set(float64(result.Objective))
	recorder.assignments.Set(float64(len(result.Assignments)))
	recorder.unmet.Set(float64(len(result.Unmet)))
}

// WriteTextfile dumps the registry in the Prometheus text format, for the node exporter textfile collector
func (recorder *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, recorder.registry)
}
