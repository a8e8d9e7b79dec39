package terrain

import (
	"fmt"
	"math"

	"github.com/annel0/terrain-erosion/internal/vec"
)

// MinSynthesisSize минимальная сторона сетки для генерации
const MinSynthesisSize = 2

// MinErosionSize минимальная сторона сетки для эрозии: капля появляется в [1, size-1)
const MinErosionSize = 3

// Heightfield квадратная карта высот size×size, хранится построчно.
// Карта принадлежит одному владельцу: генератор создает её, симулятор эрозии изменяет на месте.
type Heightfield struct {
	size  int
	cells []float64
}

// NewHeightfield создает нулевую карту высот
func NewHeightfield(size int) (*Heightfield, error) {
	if size < MinSynthesisSize {
		return nil, fmt.Errorf("size=%d, минимум %d: %w", size, MinSynthesisSize, ErrInvalidSize)
	}
	return &Heightfield{size: size, cells: make([]float64, size*size)}, nil
}

// FromRows создает карту высот из квадратной матрицы rows[y][x]
func FromRows(rows [][]float64) (*Heightfield, error) {
	field, err := NewHeightfield(len(rows))
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		if len(row) != field.size {
			return nil, fmt.Errorf("строка %d длины %d, ожидалось %d: %w", y, len(row), field.size, ErrInvalidSize)
		}
		copy(field.cells[y*field.size:], row)
	}
	return field, nil
}

// Size возвращает длину стороны сетки
func (h *Heightfield) Size() int {
	return h.size
}

// At возвращает высоту узла (x, y)
func (h *Heightfield) At(x, y int) float64 {
	return h.cells[y*h.size+x]
}

// Set устанавливает высоту узла (x, y)
func (h *Heightfield) Set(x, y int, v float64) {
	h.cells[y*h.size+x] = v
}

// Add прибавляет dv к высоте узла (x, y)
func (h *Heightfield) Add(x, y int, dv float64) {
	h.cells[y*h.size+x] += dv
}

// Row возвращает строку y без копирования
func (h *Heightfield) Row(y int) []float64 {
	return h.cells[y*h.size : (y+1)*h.size]
}

// Rows возвращает копию карты в виде матрицы rows[y][x] для потребителей (меши, визуализация)
func (h *Heightfield) Rows() [][]float64 {
	rows := make([][]float64, h.size)
	for y := range rows {
		rows[y] = append([]float64(nil), h.Row(y)...)
	}
	return rows
}

// Sum возвращает сумму всех высот
func (h *Heightfield) Sum() float64 {
	var sum float64
	for _, v := range h.cells {
		sum += v
	}
	return sum
}

// MinMax возвращает минимальную и максимальную высоту
func (h *Heightfield) MinMax() (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range h.cells {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// IsFinite проверяет, что в карте нет NaN и бесконечностей
func (h *Heightfield) IsFinite() bool {
	for _, v := range h.cells {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Clone возвращает независимую копию карты
func (h *Heightfield) Clone() *Heightfield {
	return &Heightfield{size: h.size, cells: append([]float64(nil), h.cells...)}
}

// Equal сравнивает карты побитово
func (h *Heightfield) Equal(other *Heightfield) bool {
	if other == nil || h.size != other.size {
		return false
	}
	for i, v := range h.cells {
		if math.Float64bits(v) != math.Float64bits(other.cells[i]) {
			return false
		}
	}
	return true
}

// normalize линейно отображает карту в [0,1].
// Для плоской карты возвращает ErrDegenerateField и оставляет значения как есть.
func (h *Heightfield) normalize() error {
	min, max := h.MinMax()
	if max == min {
		return ErrDegenerateField
	}
	span := max - min
	if math.IsInf(span, 0) {
		return fmt.Errorf("размах высот [%v, %v] не представим: %w", min, max, ErrInvalidConfig)
	}
	for i, v := range h.cells {
		h.cells[i] = (v - min) / span
	}
	return nil
}

// inInterior проверяет, что у точки есть все четыре соседних узла: [0, size-1) по обеим осям
func (h *Heightfield) inInterior(p vec.Vec2Float) bool {
	limit := float64(h.size - 1)
	return p.X >= 0 && p.Y >= 0 && p.X < limit && p.Y < limit
}

// HeightAt возвращает билинейно интерполированную высоту в точке (x, y)
func (h *Heightfield) HeightAt(x, y float64) (float64, error) {
	p := vec.Vec2Float{X: x, Y: y}
	if !h.inInterior(p) {
		return 0, fmt.Errorf("(%.3f, %.3f) при size=%d: %w", x, y, h.size, ErrOutOfBounds)
	}
	return h.cellAt(p).height(), nil
}

// GradientAt возвращает билинейно интерполированный градиент в точке (x, y)
func (h *Heightfield) GradientAt(x, y float64) (vec.Vec2Float, error) {
	p := vec.Vec2Float{X: x, Y: y}
	if !h.inInterior(p) {
		return vec.Vec2Float{}, fmt.Errorf("(%.3f, %.3f) при size=%d: %w", x, y, h.size, ErrOutOfBounds)
	}
	return h.cellAt(p).gradient(), nil
}
