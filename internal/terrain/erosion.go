package terrain

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/annel0/terrain-erosion/internal/logging"
	"github.com/annel0/terrain-erosion/internal/vec"
)

// ErosionConfig параметры гидравлической эрозии каплями
type ErosionConfig struct {
	Lifetime        int     // Максимум шагов капли
	Inertia         float64 // Доля прежнего направления, [0,1]
	ErodeRate       float64
	DepositRate     float64
	EvaporationRate float64
	CapacityFactor  float64 // Множитель вместимости осадка
	MinSediment     float64 // Нижняя граница вместимости
	Gravity         float64
	InitialVolume   float64
	InitialSpeed    float64
	MinVolume       float64 // Капля с объемом не больше этого останавливается
	StuckEpsilon    float64 // Длина направления ниже порога = капля стоит
	Seed            int64   // Сид генератора точек появления капель
}

// Validate проверяет параметры эрозии
func (c ErosionConfig) Validate() error {
	if c.Lifetime < 0 {
		return fmt.Errorf("lifetime=%d: %w", c.Lifetime, ErrInvalidConfig)
	}
	if c.Inertia < 0 || c.Inertia > 1 {
		return fmt.Errorf("inertia=%v вне [0,1]: %w", c.Inertia, ErrInvalidConfig)
	}
	if c.EvaporationRate < 0 || c.EvaporationRate > 1 {
		return fmt.Errorf("evaporation_rate=%v вне [0,1]: %w", c.EvaporationRate, ErrInvalidConfig)
	}
	// При deposit_rate > 1 капля отдала бы больше осадка, чем несет
	if c.DepositRate < 0 || c.DepositRate > 1 {
		return fmt.Errorf("deposit_rate=%v вне [0,1]: %w", c.DepositRate, ErrInvalidConfig)
	}
	nonNegative := []struct {
		name string
		v    float64
	}{
		{"inertia", c.Inertia},
		{"evaporation_rate", c.EvaporationRate},
		{"deposit_rate", c.DepositRate},
		{"erode_rate", c.ErodeRate},
		{"capacity_factor", c.CapacityFactor},
		{"min_sediment", c.MinSediment},
		{"gravity", c.Gravity},
		{"initial_volume", c.InitialVolume},
		{"initial_speed", c.InitialSpeed},
		{"min_volume", c.MinVolume},
		{"stuck_epsilon", c.StuckEpsilon},
	}
	for _, p := range nonNegative {
		if math.IsNaN(p.v) || math.IsInf(p.v, 0) || p.v < 0 {
			return fmt.Errorf("%s=%v: %w", p.name, p.v, ErrInvalidConfig)
		}
	}
	return nil
}

// Stats сводка прогона эрозии
type Stats struct {
	Droplets     int
	Steps        int
	Expired      int
	Stuck        int
	Exited       int
	Evaporated   int
	Eroded       float64 // Всего снято с карты
	Deposited    float64 // Всего отложено на карту
	SedimentLost float64 // Осадок, унесенный остановившимися каплями
}

// Merge прибавляет другую сводку
func (s *Stats) Merge(o Stats) {
	s.Droplets += o.Droplets
	s.Steps += o.Steps
	s.Expired += o.Expired
	s.Stuck += o.Stuck
	s.Exited += o.Exited
	s.Evaporated += o.Evaporated
	s.Eroded += o.Eroded
	s.Deposited += o.Deposited
	s.SedimentLost += o.SedimentLost
}

func (s *Stats) add(r dropletResult) {
	s.Droplets++
	s.Steps += r.steps
	switch r.reason {
	case TerminationExpired:
		s.Expired++
	case TerminationStuck:
		s.Stuck++
	case TerminationExited:
		s.Exited++
	case TerminationEvaporated:
		s.Evaporated++
	}
	s.Eroded += r.eroded
	s.Deposited += r.deposited
	s.SedimentLost += r.sediment
}

// Simulator выполняет эрозию каплями. Капли идут строго последовательно:
// каждая следующая видит изменения карты от предыдущих.
// Генератор точек появления засеян ErosionConfig.Seed и продолжает последовательность
// между вызовами Erode, поэтому одинаковый сид и одинаковая цепочка вызовов дают одинаковый результат.
// Simulator не безопасен для одновременного использования.
type Simulator struct {
	cfg    ErosionConfig
	rng    *rand.Rand
	logger *logging.Logger
}

// NewSimulator создает симулятор с проверенной конфигурацией
func NewSimulator(cfg ErosionConfig) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Simulator{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		logger: logging.GetErosionLogger(),
	}, nil
}

// Config возвращает конфигурацию симулятора
func (s *Simulator) Config() ErosionConfig {
	return s.cfg
}

// Erode запускает iterations капель по карте, изменяя её на месте
func (s *Simulator) Erode(field *Heightfield, iterations int) (Stats, error) {
	var stats Stats
	if field == nil || field.Size() < MinErosionSize {
		size := 0
		if field != nil {
			size = field.Size()
		}
		return stats, fmt.Errorf("size=%d, минимум %d для эрозии: %w", size, MinErosionSize, ErrInvalidSize)
	}
	if iterations < 0 {
		return stats, fmt.Errorf("iterations=%d: %w", iterations, ErrInvalidIterations)
	}

	for i := 0; i < iterations; i++ {
		stats.add(s.runDroplet(field, s.spawn(field.Size())))
	}

	s.logger.Debug("эрозия: капель=%d шагов=%d размыто=%.4f отложено=%.4f унесено=%.4f",
		stats.Droplets, stats.Steps, stats.Eroded, stats.Deposited, stats.SedimentLost)
	return stats, nil
}

// spawn выбирает точку появления строго внутри сетки: [1, size-1) по обеим осям
func (s *Simulator) spawn(size int) vec.Vec2Float {
	span := float64(size - 2)
	return vec.Vec2Float{
		X: 1 + s.rng.Float64()*span,
		Y: 1 + s.rng.Float64()*span,
	}
}

// runDroplet ведет одну каплю из pos до остановки
func (s *Simulator) runDroplet(field *Heightfield, pos vec.Vec2Float) dropletResult {
	cfg := s.cfg
	drop := newDroplet(pos, cfg.InitialVolume, cfg.InitialSpeed)
	res := dropletResult{reason: TerminationExpired}

	for step := 0; step < cfg.Lifetime; step++ {
		res.steps++

		cell := field.cellAt(drop.Position)
		height := cell.height()
		grad := cell.gradient()

		drop.Direction = drop.Direction.Mul(cfg.Inertia).Sub(grad.Mul(1 - cfg.Inertia)).Normalized()
		drop.Position = drop.Position.Add(drop.Direction)

		if drop.Direction.Length() <= cfg.StuckEpsilon {
			res.reason = TerminationStuck
			break
		}
		if !field.inInterior(drop.Position) {
			res.reason = TerminationExited
			break
		}

		deltaHeight := field.cellAt(drop.Position).height() - height
		capacity := math.Max(-deltaHeight*cfg.CapacityFactor*drop.Speed*drop.Volume, cfg.MinSediment)

		if drop.Sediment > capacity || deltaHeight > 0 {
			// Вверх по склону кладем не больше перепада высот, чтобы не переполнить яму
			var deposit float64
			if deltaHeight > 0 {
				deposit = math.Min(deltaHeight, drop.Sediment)
			} else {
				deposit = (drop.Sediment - capacity) * cfg.DepositRate
			}
			drop.Sediment -= deposit
			field.distribute(cell, deposit)
			res.deposited += deposit
		} else {
			// Размыв не глубже перепада высот и не отрицательный
			erode := math.Min((capacity-drop.Sediment)-cfg.ErodeRate, -deltaHeight)
			erode = math.Max(erode, 0)
			field.distribute(cell, -erode)
			drop.Sediment += erode
			res.eroded += erode
		}

		// Спуск (deltaHeight < 0) разгоняет каплю, подъем тормозит; скорость не уходит в NaN
		drop.Speed = math.Sqrt(math.Max(0, drop.Speed*drop.Speed-deltaHeight*cfg.Gravity))
		drop.Volume *= 1 - cfg.EvaporationRate

		if drop.Volume <= cfg.MinVolume {
			res.reason = TerminationEvaporated
			break
		}
	}

	res.sediment = drop.Sediment
	return res
}

// Erode создает симулятор из cfg и прогоняет iterations капель
func Erode(field *Heightfield, cfg ErosionConfig, iterations int) (Stats, error) {
	sim, err := NewSimulator(cfg)
	if err != nil {
		return Stats{}, err
	}
	return sim.Erode(field, iterations)
}
