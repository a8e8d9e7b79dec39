package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/annel0/terrain-erosion/internal/logging"
	"github.com/annel0/terrain-erosion/internal/terrain"
	"github.com/annel0/terrain-erosion/internal/vec"
	"gopkg.in/yaml.v3"
)

// Значения по умолчанию, если не заданы ни конфиг, ни окружение
const (
	DefaultSize       = 256
	DefaultIterations = 50000
	DefaultBatches    = 10
	DefaultMetrics    = ":2112"
	DefaultService    = "terrain-erosion"
)

// Config корневая структура конфигурации приложения
type Config struct {
	Terrain   TerrainConfig   `yaml:"terrain"`
	Noise     NoiseConfig     `yaml:"noise"`
	Erosion   ErosionConfig   `yaml:"erosion"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// TerrainConfig размер карты и объем эрозии. Нулевой Size означает "не задано",
// Iterations == nil тоже: явный ноль оставляет только генерацию.
type TerrainConfig struct {
	Size       int  `yaml:"size"`
	Iterations *int `yaml:"iterations"`
	Batches    int  `yaml:"batches"`
}

type NoiseConfig struct {
	Octaves     int     `yaml:"octaves"`
	Persistence float64 `yaml:"persistence"`
	Lacunarity  float64 `yaml:"lacunarity"`
	Frequency   float64 `yaml:"frequency"`
	OffsetX     float64 `yaml:"offset_x"`
	OffsetY     float64 `yaml:"offset_y"`
	Seed        *int64  `yaml:"seed"`
	Basis       string  `yaml:"basis"`
}

// ErosionConfig выбирает пресет и точечно переопределяет его параметры.
// nil-поле означает "как в пресете".
type ErosionConfig struct {
	Preset          string   `yaml:"preset"`
	Seed            int64    `yaml:"seed"`
	Lifetime        *int     `yaml:"lifetime"`
	Inertia         *float64 `yaml:"inertia"`
	ErodeRate       *float64 `yaml:"erode_rate"`
	DepositRate     *float64 `yaml:"deposit_rate"`
	EvaporationRate *float64 `yaml:"evaporation_rate"`
	CapacityFactor  *float64 `yaml:"capacity_factor"`
	MinSediment     *float64 `yaml:"min_sediment"`
	Gravity         *float64 `yaml:"gravity"`
	InitialVolume   *float64 `yaml:"initial_volume"`
	InitialSpeed    *float64 `yaml:"initial_speed"`
	MinVolume       *float64 `yaml:"min_volume"`
	StuckEpsilon    *float64 `yaml:"stuck_epsilon"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	noise := terrain.DefaultNoise()
	return &Config{
		Terrain: TerrainConfig{Batches: DefaultBatches},
		Noise: NoiseConfig{
			Octaves:     noise.Octaves,
			Persistence: noise.Persistence,
			Lacunarity:  noise.Lacunarity,
			Frequency:   noise.Frequency,
			Basis:       string(noise.Basis),
		},
		Erosion:   ErosionConfig{Preset: "default"},
		Telemetry: TelemetryConfig{ServiceName: DefaultService},
		Logging:   LoggingConfig{Level: "info"},
	}
}

// GetSize возвращает сторону карты с поддержкой fallback значений
func (t *TerrainConfig) GetSize() int {
	return getIntWithEnvFallback(t.Size, "TERRAIN_SIZE", DefaultSize)
}

// GetIterations возвращает число капель с поддержкой fallback значений.
// Ноль допустим и в конфиге, и в окружении.
func (t *TerrainConfig) GetIterations() int {
	if t.Iterations != nil {
		return *t.Iterations
	}
	if envVal := os.Getenv("TERRAIN_ITERATIONS"); envVal != "" {
		if v, err := strconv.Atoi(envVal); err == nil && v >= 0 {
			return v
		}
	}
	return DefaultIterations
}

// GetBatches возвращает число пакетов эрозии (минимум 1)
func (t *TerrainConfig) GetBatches() int {
	if t.Batches < 1 {
		return 1
	}
	return t.Batches
}

// GetAddr возвращает адрес /metrics с поддержкой fallback значений
func (m *MetricsConfig) GetAddr() string {
	if m.Addr != "" {
		return m.Addr
	}
	if env := os.Getenv("TERRAIN_METRICS_ADDR"); env != "" {
		return env
	}
	return DefaultMetrics
}

// GetSeed возвращает сид шума: config -> TERRAIN_SEED -> сид по умолчанию
func (n *NoiseConfig) GetSeed() int64 {
	if n.Seed != nil {
		return *n.Seed
	}
	if envVal := os.Getenv("TERRAIN_SEED"); envVal != "" {
		if v, err := strconv.ParseInt(envVal, 10, 64); err == nil {
			return v
		}
	}
	return terrain.DefaultNoise().Seed
}

// getIntWithEnvFallback возвращает значение с приоритетом: config -> env -> default
func getIntWithEnvFallback(configValue int, envVar string, defaultValue int) int {
	// Если значение задано в конфиге и больше 0, используем его
	if configValue > 0 {
		return configValue
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if v, err := strconv.Atoi(envVal); err == nil && v > 0 {
			return v
		}
	}

	// Используем дефолтное значение
	return defaultValue
}

// NoiseSettings переводит секцию noise в параметры генератора
func (c *Config) NoiseSettings() terrain.NoiseConfig {
	n := c.Noise
	return terrain.NoiseConfig{
		Octaves:     n.Octaves,
		Persistence: n.Persistence,
		Lacunarity:  n.Lacunarity,
		Frequency:   n.Frequency,
		Offset:      vec.Vec2Float{X: n.OffsetX, Y: n.OffsetY},
		Seed:        n.GetSeed(),
		Basis:       terrain.Basis(n.Basis),
	}
}

// ErosionSettings собирает параметры эрозии: пресет плюс переопределения
func (c *Config) ErosionSettings() (terrain.ErosionConfig, error) {
	e := c.Erosion
	cfg, err := terrain.ErosionPreset(e.Preset)
	if err != nil {
		return terrain.ErosionConfig{}, err
	}
	cfg.Seed = e.Seed

	if e.Lifetime != nil {
		cfg.Lifetime = *e.Lifetime
	}
	overrides := []struct {
		src *float64
		dst *float64
	}{
		{e.Inertia, &cfg.Inertia},
		{e.ErodeRate, &cfg.ErodeRate},
		{e.DepositRate, &cfg.DepositRate},
		{e.EvaporationRate, &cfg.EvaporationRate},
		{e.CapacityFactor, &cfg.CapacityFactor},
		{e.MinSediment, &cfg.MinSediment},
		{e.Gravity, &cfg.Gravity},
		{e.InitialVolume, &cfg.InitialVolume},
		{e.InitialSpeed, &cfg.InitialSpeed},
		{e.MinVolume, &cfg.MinVolume},
		{e.StuckEpsilon, &cfg.StuckEpsilon},
	}
	for _, o := range overrides {
		if o.src != nil {
			*o.dst = *o.src
		}
	}
	return cfg, nil
}

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	size := c.Terrain.GetSize()
	if size < terrain.MinSynthesisSize {
		return fmt.Errorf("terrain.size=%d: %w", size, terrain.ErrInvalidSize)
	}
	iterations := c.Terrain.GetIterations()
	if iterations < 0 {
		return fmt.Errorf("terrain.iterations=%d: %w", iterations, terrain.ErrInvalidIterations)
	}
	if iterations > 0 && size < terrain.MinErosionSize {
		return fmt.Errorf("terrain.size=%d слишком мал для эрозии: %w", size, terrain.ErrInvalidSize)
	}
	if err := c.NoiseSettings().Validate(); err != nil {
		return fmt.Errorf("noise: %w", err)
	}
	erosion, err := c.ErosionSettings()
	if err != nil {
		return fmt.Errorf("erosion: %w", err)
	}
	if err := erosion.Validate(); err != nil {
		return fmt.Errorf("erosion: %w", err)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV TERRAIN_CONFIG или возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("TERRAIN_CONFIG")
		if path == "" {
			return cfg, nil // конфиг не задан — использовать дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфигурации %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации %s: %w", path, err)
	}

	return cfg, nil
}
