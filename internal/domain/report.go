package domain

import (
	"strings"
	"time"

	"github.com/Piyushkr001/revix/internal/scoring"
)

// Preset selects the date range of a report.
type Preset string

const (
	Preset7d     Preset = "7d"
	Preset30d    Preset = "30d"
	Preset90d    Preset = "90d"
	PresetAll    Preset = "all"
	PresetCustom Preset = "custom"
)

// DefaultPreset is used when the request names none.
const DefaultPreset = Preset30d

// MaxReportProducts caps the top-products list of a snapshot.
const MaxReportProducts = 8

// Valid reports whether p is a known preset.
func (p Preset) Valid() bool {
	switch p {
	case Preset7d, Preset30d, Preset90d, PresetAll, PresetCustom:
		return true
	}
	return false
}

// Range resolves the preset against now. Custom bounds are parsed leniently:
// a missing or unparsable side is unbounded.
func (p Preset) Range(now time.Time, from, to string) DateRange {
	var days int
	switch p {
	case PresetAll:
		return DateRange{}
	case PresetCustom:
		return DateRange{From: ParseDate(from), To: ParseDate(to)}
	case Preset7d:
		days = 7
	case Preset90d:
		days = 90
	default:
		days = 30
	}
	start := now.Add(-time.Duration(days) * 24 * time.Hour)
	end := now
	return DateRange{From: &start, To: &end}
}

// ParseDate accepts RFC 3339 timestamps or YYYY-MM-DD dates (UTC midnight).
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// DefaultReportTitle is used when the request has no title.
func DefaultReportTitle(p Preset) string {
	return "Report (" + strings.ToUpper(string(p)) + ")"
}

// ReportKPIs are frozen headline figures. Pointer fields are nil for an
// empty range.
type ReportKPIs struct {
	TotalAnalyses  int        `json:"totalAnalyses"`
	AvgScore10     *float64   `json:"avgScore10"`
	BestScore10    *int       `json:"bestScore10"`
	WorstScore10   *int       `json:"worstScore10"`
	LastActivityAt *time.Time `json:"lastActivityAt"`
}

// ReportProduct is one entry of a snapshot's top-products list.
type ReportProduct struct {
	ProductName   string            `json:"productName"`
	Count         int               `json:"count"`
	AvgScore10    *float64          `json:"avgScore10"`
	SentimentMode scoring.Sentiment `json:"sentimentMode"`
}

// NewReportProduct rounds the average and derives the dominant sentiment
// from it. A nil average is neutral.
func NewReportProduct(s ProductStat) ReportProduct {
	avg := Round2Ptr(s.AvgScore)
	mode := scoring.SentimentNeutral
	if avg != nil {
		mode = scoring.SentimentForAverage(*avg)
	}
	return ReportProduct{
		ProductName:   s.ProductName,
		Count:         s.Count,
		AvgScore10:    avg,
		SentimentMode: mode,
	}
}

// Report is an immutable snapshot. It is never recomputed after creation.
type Report struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Title       string          `json:"title"`
	Preset      Preset          `json:"preset"`
	DateFrom    *time.Time      `json:"dateFrom"`
	DateTo      *time.Time      `json:"dateTo"`
	KPIs        ReportKPIs      `json:"kpis"`
	Sentiment   SentimentCounts `json:"sentiment"`
	TopProducts []ReportProduct `json:"topProducts"`
	CreatedAt   time.Time       `json:"createdAt"`
}
