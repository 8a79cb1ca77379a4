// Package scoring turns raw review text into a trust score, a sentiment
// label, a keyword list and a summary sentence. It performs no I/O.
package scoring

import (
	"strings"
	"unicode"
)

// Sentiment is the label derived from a score.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Valid reports whether s is one of the three labels.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

// Polarity of a marker.
type Polarity int

const (
	Positive Polarity = iota + 1
	Negative
)

// Marker is a literal substring whose presence shifts the score by one.
type Marker struct {
	Token    string
	Polarity Polarity
}

// Markers is the fixed marker table. Matching is by substring, so "delay"
// also matches "delayed".
var Markers = []Marker{
	{"good", Positive},
	{"great", Positive},
	{"excellent", Positive},
	{"awesome", Positive},
	{"amazing", Positive},
	{"love", Positive},
	{"perfect", Positive},
	{"worth", Positive},
	{"bad", Negative},
	{"worst", Negative},
	{"poor", Negative},
	{"waste", Negative},
	{"broken", Negative},
	{"refund", Negative},
	{"return", Negative},
	{"delay", Negative},
	{"damaged", Negative},
}

const (
	MinScore     = 1
	MaxScore     = 10
	baseScore    = 5
	maxKeywords  = 8
	minKeywordLn = 5

	positiveThreshold = 7
	negativeThreshold = 4
)

var summaries = map[Sentiment]string{
	SentimentPositive: "Overall feedback is positive with multiple favorable mentions.",
	SentimentNegative: "Overall feedback is negative with several concerns highlighted.",
	SentimentNeutral:  "Overall feedback is mixed with both positives and negatives.",
}

// Result is the outcome of scoring one review text.
type Result struct {
	Score10   int
	Sentiment Sentiment
	Keywords  []string
	Summary   string
}

// Score evaluates text. It is deterministic and never fails; it does not
// enforce any minimum length.
func Score(text string) Result {
	t := strings.ToLower(text)

	var p, n int
	for _, m := range Markers {
		if !strings.Contains(t, m.Token) {
			continue
		}
		switch m.Polarity {
		case Positive:
			p++
		case Negative:
			n++
		}
	}

	score := clamp(baseScore+(p-n), MinScore, MaxScore)
	sentiment := SentimentFor(score)

	return Result{
		Score10:   score,
		Sentiment: sentiment,
		Keywords:  Keywords(t),
		Summary:   Summary(sentiment),
	}
}

// SentimentFor maps a score to its label: >= 7 positive, <= 4 negative.
func SentimentFor(score int) Sentiment {
	switch {
	case score >= positiveThreshold:
		return SentimentPositive
	case score <= negativeThreshold:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// SentimentForAverage applies the same thresholds to a fractional average.
func SentimentForAverage(avg float64) Sentiment {
	switch {
	case avg >= positiveThreshold:
		return SentimentPositive
	case avg <= negativeThreshold:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// Summary returns the fixed sentence for s.
func Summary(s Sentiment) string {
	if msg, ok := summaries[s]; ok {
		return msg
	}
	return summaries[SentimentNeutral]
}

// Keywords extracts up to eight distinct tokens of at least five characters
// from already-lowercased text, in order of first occurrence.
func Keywords(lower string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, lower)

	keywords := make([]string, 0, maxKeywords)
	seen := make(map[string]struct{})
	for _, tok := range strings.Fields(cleaned) {
		if len(tok) < minKeywordLn {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		keywords = append(keywords, tok)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
