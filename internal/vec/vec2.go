package vec

// Vec2 представляет целочисленные координаты узла сетки
type Vec2 struct {
	X, Y int
}
