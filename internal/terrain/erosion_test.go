package terrain

import (
	"math"
	"testing"

	"github.com/annel0/terrain-erosion/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// planeField строит карту h(x, y) = slope*x
func planeField(t *testing.T, size int, slope float64) *Heightfield {
	t.Helper()

	field, err := NewHeightfield(size)
	require.NoError(t, err)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			field.Set(x, y, slope*float64(x))
		}
	}
	return field
}

func newTestSimulator(t *testing.T, cfg ErosionConfig) *Simulator {
	t.Helper()

	sim, err := NewSimulator(cfg)
	require.NoError(t, err)
	return sim
}

func TestWeights_SumToOne(t *testing.T) {
	for i := 0; i <= 20; i++ {
		for j := 0; j <= 20; j++ {
			ox, oy := float64(i)/20.5, float64(j)/20.5
			w := Weights(ox, oy)

			sum := w[0] + w[1] + w[2] + w[3]
			assert.InDelta(t, 1.0, sum, 1e-12, "веса для (%.3f, %.3f) должны давать 1", ox, oy)
			for _, v := range w {
				assert.GreaterOrEqual(t, v, 0.0)
			}
		}
	}
}

func TestDistribute_ConservesAmount(t *testing.T) {
	field, err := NewHeightfield(4)
	require.NoError(t, err)

	cell := field.cellAt(vec.Vec2Float{X: 1.3, Y: 2.8})
	field.distribute(cell, 0.75)
	assert.InDelta(t, 0.75, field.Sum(), 1e-12, "на карту должно попасть ровно 0.75")

	field.distribute(cell, -0.75)
	assert.InDelta(t, 0.0, field.Sum(), 1e-12)
}

func TestErode_ZeroIterations(t *testing.T) {
	field, err := Synthesize(32, DefaultNoise())
	require.NoError(t, err)
	before := field.Clone()

	stats, err := Erode(field, DefaultErosion(), 0)
	require.NoError(t, err)
	assert.True(t, field.Equal(before), "ноль итераций не должен менять карту")
	assert.Equal(t, Stats{}, stats)
}

func TestErode_InvalidArguments(t *testing.T) {
	small, err := NewHeightfield(2)
	require.NoError(t, err)

	_, err = Erode(small, DefaultErosion(), 10)
	assert.ErrorIs(t, err, ErrInvalidSize, "карта 2×2 слишком мала для появления капли")

	_, err = Erode(nil, DefaultErosion(), 10)
	assert.ErrorIs(t, err, ErrInvalidSize)

	field, err := NewHeightfield(8)
	require.NoError(t, err)
	_, err = Erode(field, DefaultErosion(), -1)
	assert.ErrorIs(t, err, ErrInvalidIterations)

	cfg := DefaultErosion()
	cfg.Inertia = 1.5
	_, err = Erode(field, cfg, 1)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg = DefaultErosion()
	cfg.Gravity = math.NaN()
	_, err = NewSimulator(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRunDroplet_PitIsStuck(t *testing.T) {
	// Плоское дно ямы: все четыре угла ячейки ниже окружения и равны между собой
	field, err := NewHeightfield(8)
	require.NoError(t, err)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			field.Set(x, y, 1)
		}
	}
	for _, p := range []vec.Vec2{{X: 3, Y: 3}, {X: 4, Y: 3}, {X: 3, Y: 4}, {X: 4, Y: 4}} {
		field.Set(p.X, p.Y, 0)
	}
	before := field.Clone()

	sim := newTestSimulator(t, DefaultErosion())
	res := sim.runDroplet(field, vec.Vec2Float{X: 3.5, Y: 3.5})

	assert.Equal(t, TerminationStuck, res.reason, "без склона капля должна остановиться")
	assert.Equal(t, 1, res.steps, "остановка на первом шаге")
	assert.True(t, field.Equal(before), "застрявшая капля ничего не размывает")
}

func TestRunDroplet_AxisAlignedFlowExits(t *testing.T) {
	// Движение строго вдоль оси X не считается остановкой
	field := planeField(t, 8, 1)

	sim := newTestSimulator(t, DefaultErosion())
	res := sim.runDroplet(field, vec.Vec2Float{X: 2.5, Y: 3.5})

	assert.Equal(t, TerminationExited, res.reason, "капля должна стечь за левый край")
	assert.Equal(t, 3, res.steps)
	assert.Greater(t, res.eroded, 0.0, "на крутом склоне капля размывает")
	assert.InDelta(t, res.eroded-res.deposited, res.sediment, 1e-12)
}

func TestErode_Evaporation(t *testing.T) {
	cfg := DefaultErosion()
	cfg.EvaporationRate = 1
	cfg.ErodeRate = 10 // Порог размыва недостижим, склон остается ровным

	field := planeField(t, 16, 0.1)
	stats, err := Erode(field, cfg, 200)
	require.NoError(t, err)

	assert.Equal(t, 200, stats.Evaporated, "капля без объема останавливается после первого шага")
	assert.Equal(t, 200, stats.Steps)
}

func TestErode_ZeroLifetime(t *testing.T) {
	cfg := DefaultErosion()
	cfg.Lifetime = 0

	field, err := Synthesize(16, DefaultNoise())
	require.NoError(t, err)
	before := field.Clone()

	stats, err := Erode(field, cfg, 50)
	require.NoError(t, err)
	assert.Equal(t, 50, stats.Expired)
	assert.Equal(t, 0, stats.Steps)
	assert.True(t, field.Equal(before))
}

func TestErode_Deterministic(t *testing.T) {
	cfg := DefaultErosion()
	cfg.Seed = 42

	base, err := Synthesize(48, DefaultNoise())
	require.NoError(t, err)
	a, b := base.Clone(), base.Clone()

	statsA, err := Erode(a, cfg, 2000)
	require.NoError(t, err)
	statsB, err := Erode(b, cfg, 2000)
	require.NoError(t, err)

	assert.True(t, a.Equal(b), "один сид — одинаковая эрозия")
	assert.Equal(t, statsA, statsB)
}

func TestErode_Stability(t *testing.T) {
	noise := DefaultNoise()
	noise.Seed = 1234
	field, err := Synthesize(64, noise)
	require.NoError(t, err)

	cfg := HeavyErosion()
	cfg.Seed = 99
	stats, err := Erode(field, cfg, 10000)
	require.NoError(t, err)

	for y := 0; y < field.Size(); y++ {
		for x, v := range field.Row(y) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("высота (%d,%d)=%v после эрозии", x, y, v)
			}
		}
	}
	assert.Equal(t, 10000, stats.Droplets)
	assert.False(t, math.IsNaN(stats.SedimentLost))
}

func TestErode_EndToEnd(t *testing.T) {
	noise := NoiseConfig{
		Octaves:     4,
		Persistence: 0.5,
		Lacunarity:  2.0,
		Frequency:   DefaultNoise().Frequency,
		Seed:        7,
	}
	field, err := Synthesize(64, noise)
	require.NoError(t, err)

	require.Equal(t, 64, field.Size())
	require.Len(t, field.Rows(), 64)
	requireNormalized(t, field)

	sumBefore := field.Sum()
	stats, err := Erode(field, DefaultErosion(), 5000)
	require.NoError(t, err)

	assert.Equal(t, 5000, stats.Droplets)
	assert.Equal(t, stats.Droplets, stats.Expired+stats.Stuck+stats.Exited+stats.Evaporated,
		"каждая капля останавливается ровно по одной причине")
	assert.True(t, field.IsFinite())

	// Масса не берется из ниоткуда: убыль карты равна осадку, унесенному каплями
	sumAfter := field.Sum()
	assert.InDelta(t, sumBefore, sumAfter+stats.SedimentLost, 1e-6)
	assert.InDelta(t, stats.Eroded-stats.Deposited, stats.SedimentLost, 1e-6)
	assert.GreaterOrEqual(t, stats.SedimentLost, -1e-9, "капли не уносят отрицательный осадок")
}

func TestStats_Merge(t *testing.T) {
	a := Stats{Droplets: 1, Steps: 4, Exited: 1, Eroded: 0.5, SedimentLost: 0.5}
	a.Merge(Stats{Droplets: 2, Steps: 6, Stuck: 1, Evaporated: 1, Deposited: 0.25, SedimentLost: -0.25})

	assert.Equal(t, Stats{
		Droplets: 3, Steps: 10, Stuck: 1, Exited: 1, Evaporated: 1,
		Eroded: 0.5, Deposited: 0.25, SedimentLost: 0.25,
	}, a)
}

func TestTermination_String(t *testing.T) {
	assert.Equal(t, "stuck", TerminationStuck.String())
	assert.Equal(t, "exited", TerminationExited.String())
	assert.Equal(t, "evaporated", TerminationEvaporated.String())
	assert.Equal(t, "expired", TerminationExpired.String())
}
