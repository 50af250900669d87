// Package metrics exposes decision-core counters on a private Prometheus
// registry. A nil *Recorder is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cohort"

type Recorder struct {
	registry *prometheus.Registry

	ticks         prometheus.Counter
	commands      *prometheus.CounterVec
	commandErrs   prometheus.Counter
	guardAborts   *prometheus.CounterVec
	treeStatus    *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	controllers   prometheus.Gauge
	armyMembers   prometheus.Gauge
	enemyStrength prometheus.Gauge
	armyStrength  prometheus.Gauge
	events        *prometheus.CounterVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Simulation steps processed",
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Unit commands issued by kind",
		}, []string{"kind"}),
		commandErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "command_errors_total",
			Help:      "Unit commands the game client rejected",
		}),
		guardAborts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guard_aborts_total",
			Help:      "Running subtrees stopped by a guard condition",
		}, []string{"guard"}),
		treeStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tree_status_total",
			Help:      "Root tick results by tree and status",
		}, []string{"tree", "status"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_entries_total",
			Help:      "Unit controller state and node entries",
		}, []string{"state"}),
		controllers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "unit_controllers",
			Help:      "Live unit controllers",
		}),
		armyMembers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "army_members",
			Help:      "Units in the army",
		}),
		enemyStrength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "enemy_strength",
			Help:      "Remembered enemy ground DPS",
		}),
		armyStrength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "army_strength",
			Help:      "Army ground DPS",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Game events detected between steps",
		}, []string{"kind"}),
	}
	r.registry.MustRegister(
		r.ticks,
		r.commands,
		r.commandErrs,
		r.guardAborts,
		r.treeStatus,
		r.transitions,
		r.controllers,
		r.armyMembers,
		r.enemyStrength,
		r.armyStrength,
		r.events,
	)
	return r
}

func (r *Recorder) Tick() {
	if r == nil {
		return
	}
	r.ticks.Inc()
}

func (r *Recorder) Command(kind string) {
	if r == nil {
		return
	}
	r.commands.WithLabelValues(kind).Inc()
}

func (r *Recorder) CommandError() {
	if r == nil {
		return
	}
	r.commandErrs.Inc()
}

func (r *Recorder) GuardAbort(guard string) {
	if r == nil {
		return
	}
	r.guardAborts.WithLabelValues(guard).Inc()
}

func (r *Recorder) TreeStatus(tree, status string) {
	if r == nil {
		return
	}
	r.treeStatus.WithLabelValues(tree, status).Inc()
}

func (r *Recorder) StateEntered(state string) {
	if r == nil {
		return
	}
	r.transitions.WithLabelValues(state).Inc()
}

func (r *Recorder) SetControllers(n int) {
	if r == nil {
		return
	}
	r.controllers.Set(float64(n))
}

// SetArmy publishes the army size and both sides of the strength comparison.
func (r *Recorder) SetArmy(members int, strength, enemy float64) {
	if r == nil {
		return
	}
	r.armyMembers.Set(float64(members))
	r.armyStrength.Set(strength)
	r.enemyStrength.Set(enemy)
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Event(kind string) {
	if r == nil {
		return
	}
	r.events.WithLabelValues(kind).Inc()
}

func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
