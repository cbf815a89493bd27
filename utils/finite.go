package utils

import (
	"math"
)

// Finite32 は全ての値がNaNでも無限大でもない場合にtrueを返します。
func Finite32(values ...float32) bool {
	for _, v := range values {
		if !isFinite(float64(v)) {
			return false
		}
	}
	return true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
