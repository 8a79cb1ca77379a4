package postgres

import (
	"fmt"
	"strings"

	"github.com/Piyushkr001/revix/internal/domain"
	"github.com/Piyushkr001/revix/internal/scoring"
)

// where accumulates AND-ed conditions with positional arguments.
type where struct {
	conds []string
	args  []any
}

func ownedBy(userID string) *where {
	return &where{conds: []string{"user_id = $1"}, args: []any{userID}}
}

// add appends cond, replacing each "?" with the next placeholder.
func (w *where) add(cond string, args ...any) *where {
	for _, a := range args {
		w.args = append(w.args, a)
		cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(w.args)), 1)
	}
	w.conds = append(w.conds, cond)
	return w
}

func (w *where) dateRange(r domain.DateRange) *where {
	if r.From != nil {
		w.add("created_at >= ?", *r.From)
	}
	if r.To != nil {
		w.add("created_at <= ?", *r.To)
	}
	return w
}

func (w *where) history(f domain.HistoryFilter) *where {
	if q := strings.TrimSpace(f.Query); q != "" {
		pattern := "%" + escapeLike(q) + "%"
		w.add("(product_name ILIKE ? OR source ILIKE ?)", pattern, pattern)
	}
	if f.Sentiment != "" {
		w.add("sentiment = ?", string(f.Sentiment))
	}
	w.add("score10 >= ?", f.MinScore)
	w.add("score10 <= ?", f.MaxScore)
	return w
}

func (w *where) String() string {
	return "WHERE " + strings.Join(w.conds, " AND ")
}

// next returns the placeholder for an argument appended after the filter.
func (w *where) next(offset int) string {
	return fmt.Sprintf("$%d", len(w.args)+offset)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func historyOrder(s domain.HistorySort) string {
	switch s {
	case domain.SortOldest:
		return "created_at ASC, id ASC"
	case domain.SortScoreHigh:
		return "score10 DESC, id ASC"
	case domain.SortScoreLow:
		return "score10 ASC, id ASC"
	default:
		return "created_at DESC, id ASC"
	}
}

// sentimentOf trusts the column's CHECK constraint but never returns an
// unknown label.
func sentimentOf(s string) scoring.Sentiment {
	if v := scoring.Sentiment(s); v.Valid() {
		return v
	}
	return scoring.SentimentNeutral
}
