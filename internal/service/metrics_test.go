package service

import "testing"

func TestResolutionRate(t *testing.T) {
	tests := []struct {
		resolved, total int64
		want            int
	}{
		{0, 0, 0},
		{0, 5, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 2, 50},
		{5, 5, 100},
	}
	for _, tt := range tests {
		if got := ResolutionRate(tt.resolved, tt.total); got != tt.want {
			t.Errorf("ResolutionRate(%d, %d) = %d，期望 %d", tt.resolved, tt.total, got, tt.want)
		}
	}
}

func TestPercent2(t *testing.T) {
	if got := percent2(1, 3); got != 33.33 {
		t.Errorf("期望 33.33，实际=%v", got)
	}
	if got := percent2(2, 3); got != 66.67 {
		t.Errorf("期望 66.67，实际=%v", got)
	}
	if got := percent2(3, 0); got != 0 {
		t.Errorf("total 为 0 时期望 0，实际=%v", got)
	}
}
