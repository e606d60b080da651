package krylov

import "math"

type givens struct {
	c, s float64
}

func drotg(a, b float64) givens {
	if b == 0 {
		return givens{c: 1, s: 0}
	}
	if math.Abs(b) > math.Abs(a) {
		tmp := -a / b
		s := 1 / math.Sqrt(1+tmp*tmp)
		return givens{c: tmp * s, s: s}
	}
	tmp := -b / a
	c := 1 / math.Sqrt(1+tmp*tmp)
	return givens{c: c, s: tmp * c}
}

func rotvec(x, y float64, g givens) (rx, ry float64) {
	rx = g.c*x - g.s*y
	ry = g.s*x + g.c*y
	return
}
