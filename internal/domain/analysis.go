package domain

import (
	"math"
	"strings"
	"time"

	"github.com/Piyushkr001/revix/internal/scoring"
)

// Source identifies where the pasted reviews came from.
type Source string

const (
	SourceManual   Source = "manual"
	SourceAmazon   Source = "amazon"
	SourceFlipkart Source = "flipkart"
	SourceOther    Source = "other"
)

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	switch s {
	case SourceManual, SourceAmazon, SourceFlipkart, SourceOther:
		return true
	}
	return false
}

// NormalizeSource returns s when it is known and SourceManual otherwise.
func NormalizeSource(s string) Source {
	if src := Source(strings.TrimSpace(s)); src.Valid() {
		return src
	}
	return SourceManual
}

// MinReviewsTextLen is the minimum trimmed length of a submission.
const MinReviewsTextLen = 20

// Analysis is one scored submission. Rows are immutable once written.
type Analysis struct {
	ID           string            `json:"id"`
	UserID       string            `json:"userId"`
	Source       Source            `json:"source"`
	ProductName  string            `json:"productName"`
	ProductURL   *string           `json:"productUrl"`
	ReviewsText  string            `json:"reviewsText"`
	ReviewCount  int               `json:"reviewCount"`
	Score10      int               `json:"score10"`
	Sentiment    scoring.Sentiment `json:"sentiment"`
	Summary      string            `json:"summary"`
	Keywords     []string          `json:"keywords"`
	AspectScores map[string]int    `json:"aspectScores"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// AnalysisListItem is the projection returned by history search.
type AnalysisListItem struct {
	ID          string            `json:"id"`
	ProductName string            `json:"productName"`
	Source      Source            `json:"source"`
	Score10     int               `json:"score10"`
	Sentiment   scoring.Sentiment `json:"sentiment"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// HistorySort selects the ordering of history search results.
type HistorySort string

const (
	SortNewest    HistorySort = "newest"
	SortOldest    HistorySort = "oldest"
	SortScoreHigh HistorySort = "score_high"
	SortScoreLow  HistorySort = "score_low"
)

// ParseHistorySort maps unknown values to SortNewest.
func ParseHistorySort(s string) HistorySort {
	switch v := HistorySort(strings.TrimSpace(s)); v {
	case SortOldest, SortScoreHigh, SortScoreLow:
		return v
	}
	return SortNewest
}

// HistoryFilter narrows a history search. An empty Sentiment matches all.
type HistoryFilter struct {
	Query     string
	Sentiment scoring.Sentiment
	MinScore  int
	MaxScore  int
	Sort      HistorySort
}

// ParseSentimentFilter returns "" for "all" and any unknown label.
func ParseSentimentFilter(s string) scoring.Sentiment {
	v := scoring.Sentiment(strings.TrimSpace(s))
	if v.Valid() {
		return v
	}
	return ""
}

// DateRange bounds created_at. A nil side is unbounded.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// AnalysisStats are whole-population aggregates. Pointer fields are nil
// when Total is zero.
type AnalysisStats struct {
	Total          int
	TotalReviews   int64
	AvgScore       *float64
	BestScore      *int
	WorstScore     *int
	LastActivityAt *time.Time
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round2Ptr rounds v when it is set.
func Round2Ptr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := Round2(*v)
	return &r
}
