package vec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec2Float_NormalizedZero(t *testing.T) {
	// Нулевой вектор нормализуется в нулевой, без NaN
	n := Vec2Float{}.Normalized()
	assert.Equal(t, Vec2Float{}, n, "нулевой вектор должен остаться нулевым")
}

func TestVec2Float_Normalized(t *testing.T) {
	n := Vec2Float{X: 3, Y: 4}.Normalized()
	assert.InDelta(t, 1.0, n.Length(), 1e-12, "длина должна быть 1")
	assert.InDelta(t, 0.6, n.X, 1e-12)
	assert.InDelta(t, 0.8, n.Y, 1e-12)
}

func TestVec2Float_Arithmetic(t *testing.T) {
	a := Vec2Float{X: 1, Y: 2}
	b := Vec2Float{X: 0.5, Y: -1}
	assert.Equal(t, Vec2Float{X: 1.5, Y: 1}, a.Add(b))
	assert.Equal(t, Vec2Float{X: 0.5, Y: 3}, a.Sub(b))
	assert.Equal(t, Vec2Float{X: 2, Y: 4}, a.Mul(2))
}

func TestVec2Float_NodeAndFrac(t *testing.T) {
	p := Vec2Float{X: 12.25, Y: 3.75}
	assert.Equal(t, Vec2{X: 12, Y: 3}, p.ToVec2())

	f := p.Frac()
	assert.InDelta(t, 0.25, f.X, 1e-12)
	assert.InDelta(t, 0.75, f.Y, 1e-12)

	// Отрицательные координаты округляются вниз, а не к нулю
	assert.Equal(t, Vec2{X: -1, Y: -1}, Vec2Float{X: -0.5, Y: -0.1}.ToVec2())
}
