package metrics

import (
	"math"
	"time"

	"github.com/annel0/terrain-erosion/internal/terrain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "terrain"

// ErosionMetrics Prometheus-метрики генерации и эрозии.
// Реализует pipeline.Recorder.
type ErosionMetrics struct {
	droplets     *prometheus.CounterVec
	steps        prometheus.Counter
	eroded       prometheus.Counter
	deposited    prometheus.Counter
	sedimentLost prometheus.Counter
	synthSeconds prometheus.Histogram
	erodeSeconds prometheus.Histogram
	fieldMin     prometheus.Gauge
	fieldMax     prometheus.Gauge
}

// NewErosionMetrics создает метрики и регистрирует их в reg
func NewErosionMetrics(reg prometheus.Registerer) *ErosionMetrics {
	m := &ErosionMetrics{
		droplets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "droplets_total",
			Help:      "Число капель по причине остановки.",
		}, []string{"reason"}),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "droplet_steps_total",
			Help:      "Суммарное число шагов всех капель.",
		}),
		eroded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "eroded_total",
			Help:      "Суммарная высота, снятая с карты.",
		}),
		deposited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deposited_total",
			Help:      "Суммарная высота, отложенная на карту.",
		}),
		sedimentLost: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sediment_lost_total",
			Help:      "Осадок, унесенный остановившимися каплями.",
		}),
		synthSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "synthesis_seconds",
			Help:      "Время генерации карты высот.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		erodeSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "erosion_batch_seconds",
			Help:      "Время одного пакета эрозии.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		fieldMin: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "field_min",
			Help:      "Минимальная высота карты после последнего этапа.",
		}),
		fieldMax: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "field_max",
			Help:      "Максимальная высота карты после последнего этапа.",
		}),
	}

	reg.MustRegister(m.droplets, m.steps, m.eroded, m.deposited, m.sedimentLost,
		m.synthSeconds, m.erodeSeconds, m.fieldMin, m.fieldMax)
	return m
}

// ObserveSynthesis записывает длительность генерации и диапазон высот
func (m *ErosionMetrics) ObserveSynthesis(d time.Duration, field *terrain.Heightfield) {
	m.synthSeconds.Observe(d.Seconds())
	m.observeField(field)
}

// ObserveErosion записывает итоги пакета эрозии
func (m *ErosionMetrics) ObserveErosion(d time.Duration, stats terrain.Stats, field *terrain.Heightfield) {
	m.erodeSeconds.Observe(d.Seconds())

	m.droplets.WithLabelValues(terrain.TerminationExpired.String()).Add(float64(stats.Expired))
	m.droplets.WithLabelValues(terrain.TerminationStuck.String()).Add(float64(stats.Stuck))
	m.droplets.WithLabelValues(terrain.TerminationExited.String()).Add(float64(stats.Exited))
	m.droplets.WithLabelValues(terrain.TerminationEvaporated.String()).Add(float64(stats.Evaporated))
	m.steps.Add(float64(stats.Steps))

	// Counter не принимает отрицательные значения, а округление может дать -1e-17
	m.eroded.Add(math.Max(0, stats.Eroded))
	m.deposited.Add(math.Max(0, stats.Deposited))
	m.sedimentLost.Add(math.Max(0, stats.SedimentLost))

	m.observeField(field)
}

func (m *ErosionMetrics) observeField(field *terrain.Heightfield) {
	if field == nil {
		return
	}
	min, max := field.MinMax()
	m.fieldMin.Set(min)
	m.fieldMax.Set(max)
}
