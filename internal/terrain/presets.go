package terrain

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultNoise — рельеф по умолчанию: 7 октав, мягкое затухание
func DefaultNoise() NoiseConfig {
	return NoiseConfig{
		Octaves:     7,
		Persistence: 0.4,
		Lacunarity:  2.0,
		Frequency:   1.5,
		Seed:        19,
		Basis:       BasisPerlin,
	}
}

// DefaultErosion — сбалансированная эрозия, короткие капли
func DefaultErosion() ErosionConfig {
	return ErosionConfig{
		Lifetime:        50,
		Inertia:         0.05,
		ErodeRate:       0.3,
		DepositRate:     0.3,
		EvaporationRate: 0.01,
		CapacityFactor:  4,
		MinSediment:     0.01,
		Gravity:         4,
		InitialVolume:   1,
		InitialSpeed:    1,
		MinVolume:       0.001,
		StuckEpsilon:    1e-6,
	}
}

// SubtleErosion — легкое выветривание почти нетронутого рельефа
func SubtleErosion() ErosionConfig {
	cfg := DefaultErosion()
	cfg.Lifetime = 30
	cfg.ErodeRate = 0.5 // Порог размыва выше — размыв реже
	cfg.DepositRate = 0.1
	cfg.EvaporationRate = 0.02
	cfg.CapacityFactor = 3
	cfg.Gravity = 2
	return cfg
}

// HeavyErosion — глубокие долины, длинные капли с большой вместимостью
func HeavyErosion() ErosionConfig {
	cfg := DefaultErosion()
	cfg.Lifetime = 80
	cfg.Inertia = 0.1
	cfg.ErodeRate = 0.1
	cfg.EvaporationRate = 0.005
	cfg.CapacityFactor = 8
	cfg.Gravity = 6
	return cfg
}

var erosionPresets = map[string]func() ErosionConfig{
	"default": DefaultErosion,
	"subtle":  SubtleErosion,
	"heavy":   HeavyErosion,
}

// ErosionPreset возвращает пресет по имени (без учета регистра, пусто = default)
func ErosionPreset(name string) (ErosionConfig, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = "default"
	}
	preset, ok := erosionPresets[key]
	if !ok {
		return ErosionConfig{}, fmt.Errorf("%q, доступны %v: %w", name, ErosionPresetNames(), ErrUnknownPreset)
	}
	return preset(), nil
}

// ErosionPresetNames возвращает отсортированные имена пресетов
func ErosionPresetNames() []string {
	names := make([]string, 0, len(erosionPresets))
	for name := range erosionPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
