// Package intent maps a free-text finance question to one analytics
// operation and its parameters using keyword rules.
package intent

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/vinodismyname/fpacopilot/config"
	"github.com/vinodismyname/fpacopilot/internal/analytics"
	"github.com/vinodismyname/fpacopilot/internal/dataset"
)

// Intent names an analytics operation.
type Intent string

const (
	RevenueVsBudget  Intent = "revenue_vs_budget"
	GrossMarginTrend Intent = "gross_margin_trend"
	OpexBreakdown    Intent = "opex_breakdown"
	CashRunway       Intent = "cash_runway"
	EBITDAProxy      Intent = "ebitda_proxy"
	Unknown          Intent = "unknown"
)

var (
	// ErrUnknownIntent is returned by Dispatch when no rule matched the question.
	ErrUnknownIntent = errors.New("intent: question not recognized")
	// ErrUnknownEntity is returned by Dispatch when the named entity has no
	// rows in the dataset.
	ErrUnknownEntity = errors.New("intent: entity not found in dataset")
)

// Params carries the values extracted from the question. Month holds the
// matched text verbatim; the engine resolves it.
type Params struct {
	Month  string `json:"month,omitempty"`
	Entity string `json:"entity,omitempty"`
	Months int    `json:"months,omitempty"`
}

// Result is a classified question.
type Result struct {
	Intent Intent `json:"intent"`
	Params Params `json:"params"`
}

var (
	namedMonthPattern = regexp.MustCompile(`[a-zA-Z]{3,9} \d{4}`)
	isoMonthPattern   = regexp.MustCompile(`\d{4}-\d{2}(?:-\d{2})?`)
	lastNPattern      = regexp.MustCompile(`last (\d+) months`)
	entityPattern     = regexp.MustCompile(`(?i)\bentity[:\s]+([A-Za-z0-9_-]+)`)
)

// entityStopwords follow "entity" in phrases such as "by entity for June"
// without naming one.
var entityStopwords = map[string]struct{}{
	"and": {}, "at": {}, "by": {}, "each": {}, "for": {}, "in": {}, "of": {},
	"on": {}, "per": {}, "the": {}, "to": {}, "vs": {}, "with": {},
}

type rule struct {
	intent       Intent
	matches      func(q string) bool
	wantsLen     bool
	// consolidated operations take no entity filter.
	consolidated bool
}

// Rules are evaluated in order; the first match wins.
var rules = []rule{
	{intent: RevenueVsBudget, matches: func(q string) bool {
		return strings.Contains(q, "revenue") && strings.Contains(q, "budget")
	}},
	{intent: GrossMarginTrend, matches: containsAny("gross margin"), wantsLen: true, consolidated: true},
	{intent: OpexBreakdown, matches: containsAny("opex", "operating expense")},
	{intent: CashRunway, matches: containsAny("cash runway", "runway")},
	{intent: EBITDAProxy, matches: containsAny("ebitda", "earnings", "operating profit")},
}

func containsAny(subs ...string) func(string) bool {
	return func(q string) bool {
		for _, s := range subs {
			if strings.Contains(q, s) {
				return true
			}
		}
		return false
	}
}

// Classify returns the intent of question. Unmatched questions yield Unknown
// with empty params.
func Classify(question string) Result {
	q := strings.ToLower(strings.Join(strings.Fields(question), " "))
	for _, r := range rules {
		if !r.matches(q) {
			continue
		}
		p := Params{Month: findMonth(q)}
		if !r.consolidated {
			p.Entity = findEntity(question)
		}
		if r.wantsLen {
			p.Months = config.DefaultLookbackMonths
			if m := lastNPattern.FindStringSubmatch(q); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil {
					p.Months = n
				}
			}
		}
		return Result{Intent: r.intent, Params: p}
	}
	return Result{Intent: Unknown}
}

// findMonth returns the leftmost candidate the month parser accepts, so that
// phrases such as "for 2025-06" do not resolve to "for 2025".
func findMonth(q string) string {
	best, bestAt := "", -1
	for _, re := range []*regexp.Regexp{namedMonthPattern, isoMonthPattern} {
		for _, loc := range re.FindAllStringIndex(q, -1) {
			if bestAt >= 0 && loc[0] >= bestAt {
				break
			}
			if _, err := dataset.ParseMonth(q[loc[0]:loc[1]]); err == nil {
				best, bestAt = q[loc[0]:loc[1]], loc[0]
				break
			}
		}
	}
	return best
}

func findEntity(question string) string {
	for _, m := range entityPattern.FindAllStringSubmatch(question, -1) {
		if _, stop := entityStopwords[strings.ToLower(m[1])]; !stop {
			return m[1]
		}
	}
	return ""
}

// resolveEntity maps a classified entity onto the dataset's spelling.
func resolveEntity(e *analytics.Engine, entity string) (string, error) {
	if entity == "" {
		return "", nil
	}
	for _, known := range e.Snapshot().Entities() {
		if strings.EqualFold(known, entity) {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEntity, entity)
}

// Answer is the outcome of running a classified question.
type Answer struct {
	Result
	Value any `json:"result"`
}

// Dispatch runs the operation named by r against e.
func Dispatch(e *analytics.Engine, r Result) (Answer, error) {
	if r.Intent == GrossMarginTrend {
		r.Params.Entity = ""
	}
	ans := Answer{Result: r}
	if r.Intent == Unknown {
		return ans, ErrUnknownIntent
	}
	entity, err := resolveEntity(e, r.Params.Entity)
	if err != nil {
		return ans, err
	}
	ans.Params.Entity = entity
	r.Params.Entity = entity
	switch r.Intent {
	case RevenueVsBudget:
		ans.Value, err = e.RevenueVsBudget(r.Params.Month, r.Params.Entity)
	case GrossMarginTrend:
		ans.Value, err = e.GrossMarginTrend(r.Params.Months, r.Params.Month)
	case OpexBreakdown:
		ans.Value, err = e.OpexBreakdown(r.Params.Month, r.Params.Entity)
	case CashRunway:
		ans.Value, err = e.CashRunway(r.Params.Month, r.Params.Entity)
	case EBITDAProxy:
		ans.Value, err = e.EBITDAProxy(r.Params.Month, r.Params.Entity)
	default:
		return ans, ErrUnknownIntent
	}
	return ans, err
}
