package scoring

import "sort"

// Country is one of the three partner countries the guide can recommend.
type Country string

const (
	Guatemala Country = "Guatemala"
	Uganda    Country = "Uganda"
	Ethiopia  Country = "Ethiopia"
)

// Countries is the fixed scoring universe. Its order breaks score ties.
var Countries = []Country{Guatemala, Uganda, Ethiopia}

// BaseScore is every country's score before any rule runs.
const BaseScore = 50

// Confidence summarises how decisive the respondent's answers were.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// CountryScore is one ranked recommendation with its supporting reasons.
type CountryScore struct {
	Country Country  `json:"country"`
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

// Result is the engine output. Top3 carries display scores in [85,100]; AllScores keeps
// the raw post-tie-break totals, which may be negative or above 100.
type Result struct {
	Top3       []CountryScore  `json:"top3"`
	AllScores  map[Country]int `json:"all_scores"`
	Confidence Confidence      `json:"confidence"`
}

// Top returns the first-ranked recommendation.
func (r Result) Top() CountryScore {
	if len(r.Top3) == 0 {
		return CountryScore{}
	}
	return r.Top3[0]
}

// tally is the per-call accumulator threaded through every rule.
type tally struct {
	scores  map[Country]int
	reasons map[Country][]string
}

func newTally() *tally {
	t := &tally{
		scores:  make(map[Country]int, len(Countries)),
		reasons: make(map[Country][]string, len(Countries)),
	}
	for _, c := range Countries {
		t.scores[c] = BaseScore
		t.reasons[c] = []string{}
	}
	return t
}

func (t *tally) add(c Country, delta int, reason string) {
	t.scores[c] += delta
	if reason != "" {
		t.reasons[c] = append(t.reasons[c], reason)
	}
}

func (t *tally) addAll(delta int, reason string) {
	for _, c := range Countries {
		t.add(c, delta, reason)
	}
}

func (t *tally) note(c Country, reason string) {
	t.reasons[c] = append(t.reasons[c], reason)
}

// ranked orders the universe by score descending; equal scores keep universe order.
func (t *tally) ranked() []Country {
	out := make([]Country, len(Countries))
	copy(out, Countries)
	sort.SliceStable(out, func(i, j int) bool {
		return t.scores[out[i]] > t.scores[out[j]]
	})
	return out
}

// Score ranks the three countries for a completed answer set. It is a pure function:
// identical input yields identical output and nothing outside the returned Result is
// touched. The only error is a *ValidationError wrapping ErrInvalidAnswers.
func Score(answers AnswerSet) (Result, error) {
	if err := answers.Validate(); err != nil {
		return Result{}, err
	}
	in := prepare(answers)

	t := newTally()
	for _, apply := range rules {
		apply(in, t)
	}
	completeReasons(in, t)
	breakTies(in, t)

	order := t.ranked()
	return Result{
		Top3:       normalize(order, t),
		AllScores:  snapshot(t.scores),
		Confidence: deriveConfidence(in, t.scores[order[0]]-t.scores[order[1]]),
	}, nil
}

// input is the normalized view the rules read. Multi-select fields are deduplicated and
// the Spanish toggle is derived exactly once.
type input struct {
	AnswerSet
	spanish bool
}

func prepare(a AnswerSet) *input {
	a.Mobilization = uniqueMobilization(a.Mobilization)
	a.ImpactDNA = uniqueImpact(a.ImpactDNA)
	return &input{AnswerSet: a, spanish: a.SpanishToggle()}
}

func snapshot(scores map[Country]int) map[Country]int {
	out := make(map[Country]int, len(scores))
	for c, s := range scores {
		out[c] = s
	}
	return out
}
