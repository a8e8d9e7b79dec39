package terrain

import (
	"fmt"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// Basis определяет функцию когерентного 2D шума, из которой складываются октавы
type Basis string

const (
	// BasisPerlin — градиентный шум Перлина (по умолчанию), значения в [-1,1]
	BasisPerlin Basis = "perlin"
	// BasisSimplex — OpenSimplex, значения в [-1,1]
	BasisSimplex Basis = "simplex"
)

// Параметры go-perlin: одна октава на вызов, октавы складываем сами
const (
	perlinAlpha   = 2.0
	perlinBeta    = 2.0
	perlinOctaves = int32(1)
)

// noiseSource — детерминированный гладкий шум. После создания только читается,
// поэтому безопасен для одновременных вызовов из нескольких горутин.
type noiseSource interface {
	Eval2(x, y float64) float64
}

type perlinSource struct {
	p *perlin.Perlin
}

func (s perlinSource) Eval2(x, y float64) float64 {
	return s.p.Noise2D(x, y)
}

func newNoiseSource(basis Basis, seed int64) (noiseSource, error) {
	switch basis {
	case "", BasisPerlin:
		return perlinSource{p: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, seed)}, nil
	case BasisSimplex:
		return opensimplex.New(seed), nil
	default:
		return nil, fmt.Errorf("%q: %w", basis, ErrUnknownBasis)
	}
}
