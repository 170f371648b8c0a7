package misc

func LerpFloat64(v1 float64, v2 float64, fraction float64) float64 {
	return v1 + (v2-v1)*fraction
}

func LerpUint8(v1 uint8, v2 uint8, fraction float64) uint8 {
	return uint8(LerpFloat64(float64(v1), float64(v2), fraction))
}

func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
