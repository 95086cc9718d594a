// Package render turns a session snapshot into what a user sees, either as a
// JSON view model for the browser or as plain text for the terminal.
package render

import (
	"fmt"
	"math"
	"strconv"

	"github.com/mind-engage/mindengage-quiz/internal/catalog"
	"github.com/mind-engage/mindengage-quiz/internal/session"
)

// DefaultMissingLimit caps how many missing keywords are displayed.
const DefaultMissingLimit = 15

type CategoryView struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}

type ScoreView struct {
	Score         float64  `json:"score"`
	Display       string   `json:"display"`
	BestMatchName string   `json:"best_match_name,omitempty"`
	Matched       []string `json:"matched_keywords"`
	Missing       []string `json:"missing_keywords"` // at most the display limit
	MissingTotal  int      `json:"missing_total"`
	MissingHidden int      `json:"missing_hidden"`
	Marker        string   `json:"missing_marker,omitempty"`
	ProblemKey    string   `json:"problem_key,omitempty"`
	Explanations  string   `json:"explanations,omitempty"`
}

type View struct {
	Phase       string            `json:"phase"`
	Categories  []CategoryView    `json:"categories"`
	Question    *session.Question `json:"question"`
	Answer      string            `json:"answer"`
	CanEvaluate bool              `json:"can_evaluate"`
	Generating  bool              `json:"generating"`
	Evaluating  bool              `json:"evaluating"`
	Score       *ScoreView        `json:"score"`
	// References is null until fetched, [] when the service has none.
	References []string `json:"reference_answers"`
}

func Categories(cat *catalog.Catalog, sel session.Selection) []CategoryView {
	all := cat.All()
	out := make([]CategoryView, len(all))
	for i, c := range all {
		out[i] = CategoryView{Key: c.Key, Label: c.Label, Enabled: sel.Has(c.Key)}
	}
	return out
}

// NewView copies everything it needs out of st; limit <= 0 means
// DefaultMissingLimit.
func NewView(st session.State, cat *catalog.Catalog, limit int) View {
	v := View{
		Phase:       st.Phase().String(),
		Categories:  Categories(cat, st.Selection),
		Question:    st.Question,
		Answer:      st.Draft,
		CanEvaluate: st.CanEvaluate(),
		Generating:  st.Generating(),
		Evaluating:  st.Evaluating(),
	}
	if st.Score != nil {
		v.Score = newScoreView(*st.Score, limit)
	}
	if st.References != nil {
		v.References = append([]string{}, st.References...)
	}
	return v
}

func newScoreView(sc session.ScoreResult, limit int) *ScoreView {
	shown, hidden := TruncateKeywords(sc.MissingKeywords, limit)
	sv := &ScoreView{
		Score:         sc.Score,
		Display:       FormatScore(sc.Score),
		BestMatchName: sc.BestMatchName,
		Matched:       append([]string{}, sc.MatchedKeywords...),
		Missing:       shown,
		MissingTotal:  len(sc.MissingKeywords),
		MissingHidden: hidden,
		ProblemKey:    sc.ProblemKey,
		Explanations:  sc.Explanations,
	}
	if hidden > 0 {
		sv.Marker = Marker(hidden)
	}
	return sv
}

// TruncateKeywords returns a copy of at most limit leading keywords and the
// number left out. The input is never modified.
func TruncateKeywords(kw []string, limit int) (shown []string, hidden int) {
	if limit <= 0 {
		limit = DefaultMissingLimit
	}
	if len(kw) <= limit {
		return append([]string{}, kw...), 0
	}
	return append([]string{}, kw[:limit]...), len(kw) - limit
}

// Marker is the truncation indicator shown after a cut keyword list.
func Marker(hidden int) string {
	return fmt.Sprintf("… (+%d more)", hidden)
}

// FormatScore renders a percentage with at most one decimal: 72 -> "72%".
func FormatScore(f float64) string {
	f = math.Round(f*10) / 10
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10) + "%"
	}
	return strconv.FormatFloat(f, 'f', 1, 64) + "%"
}
