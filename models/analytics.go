package models

// TrendingCase is one row of the trending / most-viewed rankings
type TrendingCase struct {
	CaseID            string `json:"caseID"`
	ViewCount         int    `json:"viewCount"`
	UniqueViewerCount int    `json:"uniqueViewerCount"`
	CaseNumber        string `json:"caseNumber,omitempty"`
	Title             string `json:"title,omitempty"`
	Status            string `json:"status,omitempty"`
}

// PeakHour is one hour-of-day bucket of all-time view volume
type PeakHour struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// DayCount is one day's view total inside a date-range report
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DateRangeStats aggregates view activity over an inclusive date range
type DateRangeStats struct {
	Total          int        `json:"total"`
	UniqueUsers    int        `json:"uniqueUsers"`
	AnonymousViews int        `json:"anonymousViews"`
	PerDay         []DayCount `json:"perDay"`
}
