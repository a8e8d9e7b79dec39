package terrain

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/annel0/terrain-erosion/internal/vec"
	"github.com/dgravesa/go-parallel/parallel"
)

// octaveOffsetRange — сдвиги октав выбираются из [0, octaveOffsetRange)
const octaveOffsetRange = 999

// NoiseConfig параметры фрактального шума
type NoiseConfig struct {
	Octaves     int           // Количество октав
	Persistence float64       // Затухание амплитуды на октаву, обычно (0,1]
	Lacunarity  float64       // Рост частоты на октаву, обычно > 1
	Frequency   float64       // Частота первой октавы
	Offset      vec.Vec2Float // Общий сдвиг выборки (пересев без смены сида)
	Seed        int64         // Сид базиса и сдвигов октав
	Basis       Basis         // Базис шума, пусто = Перлин
}

// Validate проверяет параметры шума
func (c NoiseConfig) Validate() error {
	if c.Octaves < 0 {
		return fmt.Errorf("octaves=%d: %w", c.Octaves, ErrInvalidConfig)
	}
	for name, v := range map[string]float64{
		"persistence": c.Persistence,
		"lacunarity":  c.Lacunarity,
		"frequency":   c.Frequency,
		"offset.x":    c.Offset.X,
		"offset.y":    c.Offset.Y,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s=%v: %w", name, v, ErrInvalidConfig)
		}
	}
	return nil
}

// octaveOffsets выдает детерминированные сдвиги выборки для каждой октавы
func octaveOffsets(seed int64, octaves int) []vec.Vec2Float {
	rng := rand.New(rand.NewSource(seed))
	offsets := make([]vec.Vec2Float, octaves)
	for i := range offsets {
		offsets[i] = vec.Vec2Float{
			X: float64(rng.Intn(octaveOffsetRange)),
			Y: float64(rng.Intn(octaveOffsetRange)),
		}
	}
	return offsets
}

// Synthesize генерирует карту высот size×size из суммы октав когерентного шума
// и нормализует её в [0,1]. Для одинаковых аргументов результат побитово совпадает.
// Идеально плоская карта (например, при нуле октав) возвращается как есть, без ошибки.
func Synthesize(size int, cfg NoiseConfig) (*Heightfield, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	field, err := NewHeightfield(size)
	if err != nil {
		return nil, err
	}
	src, err := newNoiseSource(cfg.Basis, cfg.Seed)
	if err != nil {
		return nil, err
	}

	offsets := octaveOffsets(cfg.Seed, cfg.Octaves)
	span := float64(size - 1)

	// Строки независимы: каждая горутина пишет только в свою строку
	parallel.For(size, func(z, _ int) {
		row := field.Row(z)
		for x := range row {
			row[x] = fractal(src, cfg, offsets, float64(x)/span, float64(z)/span)
		}
	})

	// Амплитуда и частота растут геометрически и могут переполниться при конечных параметрах
	if !field.IsFinite() {
		return nil, fmt.Errorf("octaves=%d persistence=%v lacunarity=%v: высоты не конечны: %w",
			cfg.Octaves, cfg.Persistence, cfg.Lacunarity, ErrInvalidConfig)
	}
	if err := field.normalize(); err != nil && !errors.Is(err, ErrDegenerateField) {
		return nil, err
	}
	return field, nil
}

// fractal суммирует октавы шума в точке (u, v) ∈ [0,1]²
func fractal(src noiseSource, cfg NoiseConfig, offsets []vec.Vec2Float, u, v float64) float64 {
	amplitude := 1.0
	frequency := cfg.Frequency
	value := 0.0

	for _, off := range offsets {
		sample := src.Eval2(
			u*frequency+off.X+cfg.Offset.X,
			v*frequency+off.Y+cfg.Offset.Y,
		)
		value += sample * amplitude
		amplitude *= cfg.Persistence
		frequency *= cfg.Lacunarity
	}
	return value
}
