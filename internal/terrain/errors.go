package terrain

import "errors"

// Ошибки генерации и эрозии. Вызывающий код сравнивает их через errors.Is,
// конкретный контекст добавляется через fmt.Errorf("...: %w", err).
var (
	// ErrInvalidSize — сетка слишком мала для билинейной интерполяции
	ErrInvalidSize = errors.New("недопустимый размер карты высот")
	// ErrDegenerateField — карта идеально плоская, нормализация невозможна
	ErrDegenerateField = errors.New("плоская карта высот")
	// ErrOutOfBounds — точка выборки вне внутренней области сетки
	ErrOutOfBounds = errors.New("точка вне карты высот")
	// ErrInvalidConfig — параметры шума или эрозии вне допустимого диапазона
	ErrInvalidConfig = errors.New("недопустимая конфигурация")
	// ErrInvalidIterations — отрицательное число капель
	ErrInvalidIterations = errors.New("недопустимое число итераций")
	// ErrUnknownBasis — неизвестный базис когерентного шума
	ErrUnknownBasis = errors.New("неизвестный базис шума")
	// ErrUnknownPreset — неизвестное имя пресета
	ErrUnknownPreset = errors.New("неизвестный пресет")
)
