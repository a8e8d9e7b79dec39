package terrain

import "github.com/annel0/terrain-erosion/internal/vec"

// Termination причина остановки капли
type Termination int

const (
	// TerminationExpired — капля прожила все Lifetime шагов
	TerminationExpired Termination = iota
	// TerminationStuck — направление выродилось в ноль, склона нет
	TerminationStuck
	// TerminationExited — капля покинула внутреннюю область карты
	TerminationExited
	// TerminationEvaporated — объем упал до MinVolume
	TerminationEvaporated
)

// String возвращает строковое представление причины
func (t Termination) String() string {
	switch t {
	case TerminationExpired:
		return "expired"
	case TerminationStuck:
		return "stuck"
	case TerminationExited:
		return "exited"
	case TerminationEvaporated:
		return "evaporated"
	default:
		return "unknown"
	}
}

// Droplet капля воды. Живет одну итерацию эрозии, с другими каплями не взаимодействует.
type Droplet struct {
	Position  vec.Vec2Float
	Direction vec.Vec2Float
	Speed     float64
	Volume    float64
	Sediment  float64
}

func newDroplet(pos vec.Vec2Float, volume, speed float64) *Droplet {
	return &Droplet{
		Position: pos,
		Volume:   volume,
		Speed:    speed,
	}
}

// dropletResult итог одной траектории
type dropletResult struct {
	steps     int
	reason    Termination
	eroded    float64
	deposited float64
	sediment  float64 // осадок, унесенный каплей в момент остановки
}
