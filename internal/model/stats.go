package model

import "time"

// 聚合查询的扫描结果，列名与 SQL 别名一一对应

// StatusCounts 按状态计数
type StatusCounts struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	InReview int64 `json:"in_review"`
	Resolved int64 `json:"resolved"`
}

// CategoryCount 按分类计数
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// CategoryStatusCount 按分类、状态交叉计数
type CategoryStatusCount struct {
	Category string
	Total    int64
	Resolved int64
	Pending  int64
	InReview int64
}

// PriorityCount 按优先级计数
type PriorityCount struct {
	Priority string
	Count    int64
}

// ResponseTimeSpan 已解决投诉的处理耗时（秒）
type ResponseTimeSpan struct {
	AvgSeconds    float64
	MinSeconds    float64
	MaxSeconds    float64
	ResolvedCount int64
}

// DailyCount 单日新增与已解决数量
type DailyCount struct {
	Day      time.Time
	Count    int64
	Resolved int64
}

// MonthlyCounts 单月汇总
type MonthlyCounts struct {
	Total       int64
	Resolved    int64
	Pending     int64
	InReview    int64
	UniqueUsers int64
}

// RoleCounts 按角色统计用户数
type RoleCounts struct {
	Total    int64 `json:"total"`
	Students int64 `json:"students"`
	Admins   int64 `json:"admins"`
}
