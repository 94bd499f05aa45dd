package service

import "math"

// ResolutionRate 解决率百分比，四舍五入为整数；total 为 0 时返回 0
func ResolutionRate(resolved, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(resolved) / float64(total) * 100))
}

// percent2 百分比，保留两位小数
func percent2(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return round2(float64(part) / float64(total) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
