package terrain

import "github.com/annel0/terrain-erosion/internal/vec"

// Порядок углов ячейки в массиве весов
//
//	NW(0,0) -- NE(1,0)
//	   |          |
//	SW(0,1) -- SE(1,1)
const (
	cornerNW = iota
	cornerNE
	cornerSW
	cornerSE
)

// Weights возвращает билинейные веса четырех углов ячейки (NW, NE, SW, SE)
// для смещения (ox, oy) внутри неё. Сумма весов равна 1.
func Weights(ox, oy float64) [4]float64 {
	return [4]float64{
		cornerNW: (1 - ox) * (1 - oy),
		cornerNE: ox * (1 - oy),
		cornerSW: (1 - ox) * oy,
		cornerSE: ox * oy,
	}
}

// cellSample — углы ячейки, в которой лежит точка, и смещение точки внутри неё
type cellSample struct {
	node           vec.Vec2
	offset         vec.Vec2Float
	nw, ne, sw, se float64
}

// cellAt читает ячейку под точкой p. Вызывающий гарантирует h.inInterior(p).
func (h *Heightfield) cellAt(p vec.Vec2Float) cellSample {
	node := p.ToVec2()
	return cellSample{
		node:   node,
		offset: p.Frac(),
		nw:     h.At(node.X, node.Y),
		ne:     h.At(node.X+1, node.Y),
		sw:     h.At(node.X, node.Y+1),
		se:     h.At(node.X+1, node.Y+1),
	}
}

func (c cellSample) height() float64 {
	w := Weights(c.offset.X, c.offset.Y)
	return c.nw*w[cornerNW] + c.ne*w[cornerNE] + c.sw*w[cornerSW] + c.se*w[cornerSE]
}

func (c cellSample) gradient() vec.Vec2Float {
	ox, oy := c.offset.X, c.offset.Y
	return vec.Vec2Float{
		X: (c.ne-c.nw)*(1-oy) + (c.se-c.sw)*oy,
		Y: (c.sw-c.nw)*(1-ox) + (c.se-c.ne)*ox,
	}
}

// distribute раскладывает amount по четырем углам ячейки с билинейными весами.
// Положительный amount — отложение осадка, отрицательный — размыв.
func (h *Heightfield) distribute(c cellSample, amount float64) {
	w := Weights(c.offset.X, c.offset.Y)
	h.Add(c.node.X, c.node.Y, amount*w[cornerNW])
	h.Add(c.node.X+1, c.node.Y, amount*w[cornerNE])
	h.Add(c.node.X, c.node.Y+1, amount*w[cornerSW])
	h.Add(c.node.X+1, c.node.Y+1, amount*w[cornerSE])
}
