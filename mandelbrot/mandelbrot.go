package mandelbrot

import "math"

// EscapeTime returns the number of iterations of z = z*z + c, starting at z = 0,
// until |z| >= 2. Points that do not escape within maxIterations steps, and points
// inside the main cardioid or the period-2 bulb, return maxIterations.
//
// https://en.wikipedia.org/wiki/Plotting_algorithms_for_the_Mandelbrot_set#Escape_time_algorithm
func EscapeTime(c complex128, maxIterations uint) uint {
	if InSet(c) {
		return maxIterations
	}

	x, y := real(c), imag(c)
	x1, y1, x2, y2 := 0.0, 0.0, 0.0, 0.0
	var iteration uint
	for x2+y2 < 4 && iteration < maxIterations {
		y1 = 2*x1*y1 + y
		x1 = x2 - y2 + x
		x2 = x1 * x1
		y2 = y1 * y1
		iteration++
	}

	return iteration
}

// InSet reports whether c lies in the main cardioid or the period-2 bulb. It is a
// shortcut for the two largest interior regions, not a full membership test.
//
// https://en.wikipedia.org/wiki/Plotting_algorithms_for_the_Mandelbrot_set#Cardioid_/_bulb_checking
func InSet(c complex128) bool {
	x, y := real(c), imag(c)

	p := math.Sqrt((x-0.25)*(x-0.25) + y*y)
	if x <= p-2*p*p+0.25 {
		return true
	}

	return (x+1)*(x+1)+y*y <= 0.0625
}
