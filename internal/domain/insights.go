package domain

import "time"

// SentimentCounts holds per-label totals. Missing labels count as zero.
type SentimentCounts struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// ScoreBuckets groups scores into four fixed ranges.
type ScoreBuckets struct {
	Low1To3    int `json:"low_1_3"`
	Mid4To6    int `json:"mid_4_6"`
	Good7To8   int `json:"good_7_8"`
	Great9To10 int `json:"great_9_10"`
}

// SourceStat is one row of the top-sources ranking.
type SourceStat struct {
	Source   string   `json:"source"`
	Count    int      `json:"count"`
	AvgScore *float64 `json:"avgScore"`
}

// ProductStat is one row of the top-products ranking.
type ProductStat struct {
	ProductName string   `json:"productName"`
	Count       int      `json:"count"`
	AvgScore    *float64 `json:"avgScore"`
}

// TrendPoint aggregates one UTC calendar day.
type TrendPoint struct {
	Day      string   `json:"day"`
	Count    int      `json:"count"`
	AvgScore *float64 `json:"avgScore"`
}

// InsightTotals are unrounded whole-population figures.
type InsightTotals struct {
	TotalAnalyses int      `json:"totalAnalyses"`
	TotalReviews  int64    `json:"totalReviews"`
	AvgScore      *float64 `json:"avgScore"`
	BestScore     *int     `json:"bestScore"`
	WorstScore    *int     `json:"worstScore"`
}

// Insights is the response of the insights view.
type Insights struct {
	HasData     bool            `json:"hasData"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	Totals      InsightTotals   `json:"totals"`
	Sentiment   SentimentCounts `json:"sentiment"`
	Buckets     ScoreBuckets    `json:"buckets"`
	TopSources  []SourceStat    `json:"topSources"`
	TopProducts []ProductStat   `json:"topProducts"`
	Trend14d    []TrendPoint    `json:"trend14d"`
}

// EmptyInsights is the shape returned when the caller has no analyses.
func EmptyInsights(now time.Time) *Insights {
	return &Insights{
		HasData:     false,
		UpdatedAt:   now,
		TopSources:  []SourceStat{},
		TopProducts: []ProductStat{},
		Trend14d:    []TrendPoint{},
	}
}

// DashboardSummary is the response of the dashboard view. KPI fields are
// omitted when HasData is false.
type DashboardSummary struct {
	HasData        bool       `json:"hasData"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	TotalAnalyses  int        `json:"totalAnalyses,omitempty"`
	AvgScore10     *float64   `json:"avgScore10,omitempty"`
	BestScore10    *int       `json:"bestScore10,omitempty"`
	WorstScore10   *int       `json:"worstScore10,omitempty"`
	LastActivityAt *time.Time `json:"lastActivityAt,omitempty"`
	Recent         []Analysis `json:"recent"`
}
