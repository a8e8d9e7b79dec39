package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/annel0/terrain-erosion/internal/config"
	"github.com/annel0/terrain-erosion/internal/logging"
	"github.com/annel0/terrain-erosion/internal/observability"
	"github.com/annel0/terrain-erosion/internal/terrain"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Recorder получает итоги этапов (например, Prometheus-метрики)
type Recorder interface {
	ObserveSynthesis(d time.Duration, field *terrain.Heightfield)
	ObserveErosion(d time.Duration, stats terrain.Stats, field *terrain.Heightfield)
}

type nopRecorder struct{}

func (nopRecorder) ObserveSynthesis(time.Duration, *terrain.Heightfield) {}

func (nopRecorder) ObserveErosion(time.Duration, terrain.Stats, *terrain.Heightfield) {}

// Result итог прогона: карта принадлежит вызывающему
type Result struct {
	RunID         string
	Field         *terrain.Heightfield
	Stats         terrain.Stats
	Flat          bool
	SynthesisTime time.Duration
	ErosionTime   time.Duration
}

// Pipeline связывает генератор и симулятор эрозии: сначала генерация, затем эрозия той же карты
type Pipeline struct {
	size       int
	iterations int
	batches    int
	noise      terrain.NoiseConfig
	erosion    terrain.ErosionConfig
	rec        Recorder
	tracer     trace.Tracer
	logger     *logging.Logger
}

// New проверяет конфигурацию и создает пайплайн. rec может быть nil.
func New(cfg *config.Config, rec Recorder) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("конфигурация: %w", err)
	}
	erosion, err := cfg.ErosionSettings()
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = nopRecorder{}
	}

	return &Pipeline{
		size:       cfg.Terrain.GetSize(),
		iterations: cfg.Terrain.GetIterations(),
		batches:    cfg.Terrain.GetBatches(),
		noise:      cfg.NoiseSettings(),
		erosion:    erosion,
		rec:        rec,
		tracer:     observability.Tracer(),
		logger:     logging.GetPipelineLogger(),
	}, nil
}

// Run генерирует карту и прогоняет эрозию пакетами.
// Отмена ctx проверяется между генерацией и эрозией и между пакетами.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}

	ctx, span := p.tracer.Start(ctx, "terrain.run", trace.WithAttributes(
		attribute.String("run_id", res.RunID),
		attribute.Int("size", p.size),
		attribute.Int("iterations", p.iterations),
	))
	defer span.End()

	p.logger.Info("🏔️ Прогон %s: карта %d×%d, %d октав, %d капель в %d пакетах",
		res.RunID, p.size, p.size, p.noise.Octaves, p.iterations, p.batches)

	field, err := p.synthesize(ctx, res)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	res.Field = field

	if err := p.erode(ctx, res); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	p.logger.Info("✅ Прогон %s завершен: генерация %v, эрозия %v, капель %d, унесено осадка %.4f",
		res.RunID, res.SynthesisTime, res.ErosionTime, res.Stats.Droplets, res.Stats.SedimentLost)
	return res, nil
}

func (p *Pipeline) synthesize(ctx context.Context, res *Result) (*terrain.Heightfield, error) {
	_, span := p.tracer.Start(ctx, "terrain.synthesize")
	defer span.End()

	start := time.Now()
	field, err := terrain.Synthesize(p.size, p.noise)
	if err != nil {
		return nil, fmt.Errorf("генерация: %w", err)
	}
	res.SynthesisTime = time.Since(start)

	min, max := field.MinMax()
	res.Flat = min == max
	if res.Flat {
		p.logger.Warn("⚠️ Карта плоская (%v), нормализация пропущена", min)
	}
	span.SetAttributes(attribute.Bool("flat", res.Flat))

	p.rec.ObserveSynthesis(res.SynthesisTime, field)
	p.logger.Debug("Генерация заняла %v", res.SynthesisTime)
	return field, nil
}

func (p *Pipeline) erode(ctx context.Context, res *Result) error {
	if p.iterations == 0 {
		return nil
	}
	sim, err := terrain.NewSimulator(p.erosion)
	if err != nil {
		return fmt.Errorf("эрозия: %w", err)
	}

	for i, n := range splitBatches(p.iterations, p.batches) {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("эрозия прервана после %d капель: %w", res.Stats.Droplets, err)
		}

		_, span := p.tracer.Start(ctx, "terrain.erode.batch", trace.WithAttributes(
			attribute.Int("batch", i),
			attribute.Int("droplets", n),
		))

		start := time.Now()
		stats, err := sim.Erode(res.Field, n)
		elapsed := time.Since(start)
		span.End()
		if err != nil {
			return fmt.Errorf("эрозия, пакет %d: %w", i, err)
		}

		res.ErosionTime += elapsed
		res.Stats.Merge(stats)
		p.rec.ObserveErosion(elapsed, stats, res.Field)
		p.logger.Debug("Пакет %d: %d капель за %v, размыто %.4f, отложено %.4f",
			i, stats.Droplets, elapsed, stats.Eroded, stats.Deposited)
	}
	return nil
}

// splitBatches делит total капель на batches пакетов, остаток уходит в первые пакеты
func splitBatches(total, batches int) []int {
	if batches < 1 {
		batches = 1
	}
	if batches > total {
		batches = total
	}
	sizes := make([]int, batches)
	for i := range sizes {
		sizes[i] = total / batches
		if i < total%batches {
			sizes[i]++
		}
	}
	return sizes
}
