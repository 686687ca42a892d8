package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/kvalheim/dvrctl/recorder"
)

// Filter is a compiled filter expression over recordings.
type Filter struct {
	program    *vm.Program
	expression string
}

// Compile compiles a filter expression. Expressions see the recording as
// `Recording` plus a set of helper functions:
//
//	Recording.Title == "News" and daysSince(Recording.ProgramStartTime) > 30
//	watched() and Recording.FileSize > 1073741824
func Compile(expression string) (*Filter, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, fmt.Errorf("empty filter expression")
	}

	program, err := expr.Compile(expression,
		expr.Env(environment(recorder.Recording{})),
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compile filter expression: %w", err)
	}

	return &Filter{program: program, expression: expression}, nil
}

// Expression returns the source expression the filter was compiled from.
func (f *Filter) Expression() string { return f.expression }

// Match evaluates the filter against a single recording.
func (f *Filter) Match(rec recorder.Recording) (bool, error) {
	output, err := expr.Run(f.program, environment(rec))
	if err != nil {
		return false, fmt.Errorf("failed to evaluate filter expression: %w", err)
	}

	matched, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("filter expression must evaluate to a boolean, got %T", output)
	}
	return matched, nil
}

// Apply returns the recordings matching the filter, preserving order.
func (f *Filter) Apply(recordings []recorder.Recording) ([]recorder.Recording, error) {
	var matched []recorder.Recording
	for _, rec := range recordings {
		ok, err := f.Match(rec)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, rec)
		}
	}
	return matched, nil
}

// environment builds the evaluation environment for one recording.
func environment(rec recorder.Recording) map[string]any {
	return map[string]any{
		"Recording": rec,

		"watched": func() bool {
			return rec.Watched()
		},

		// Date helpers
		"daysSince": func(t time.Time) int {
			return int(time.Since(t).Hours() / 24)
		},
		"daysAgo": func(days int) time.Time {
			return time.Now().AddDate(0, 0, -days)
		},
		"monthsAgo": func(months int) time.Time {
			return time.Now().AddDate(0, -months, 0)
		},
		"parseDate": func(dateStr string) time.Time {
			t, _ := time.Parse("2006-01-02", dateStr)
			return t
		},
		"now": time.Now,

		// String helpers
		"contains": func(str, substr string) bool {
			return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
		},
		"startsWith": func(str, prefix string) bool {
			return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
		},
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
	}
}
