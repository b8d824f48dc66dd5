package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mwiater/fewshot/internal/dataset"
	"github.com/mwiater/fewshot/internal/metrics"
)

// Filter selects reports for comparison. An empty list accepts any value.
type Filter struct {
	Metric     string
	Preambles  []string
	Models     []string
	Conditions []dataset.Condition
	Budgets    []int
}

// Match reports whether r passes every filter dimension.
func (f Filter) Match(r *Report) bool {
	if f.Metric != "" && r.Metric != f.Metric {
		return false
	}
	if len(f.Preambles) > 0 && !contains(f.Preambles, r.SystemMessageFile) {
		return false
	}
	if len(f.Models) > 0 && !contains(f.Models, r.Model) {
		return false
	}
	if len(f.Budgets) > 0 && !contains(f.Budgets, r.K) {
		return false
	}
	if len(f.Conditions) > 0 {
		found := false
		for _, c := range f.Conditions {
			if equalCondition(c, r.Parameters) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func equalCondition(a, b dataset.Condition) bool {
	if len(a) != len(b) {
		return false
	}
	return a.Satisfies(b)
}

// Select returns the reports matching f, ordered by budget. Reports with the
// same budget keep their input order.
func Select(reports []*Report, f Filter) []*Report {
	var out []*Report
	for _, r := range reports {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].K < out[j].K })
	return out
}

// shortCondition abbreviates each key to its first letter: "l=English; t=formal".
func shortCondition(c dataset.Condition) string {
	parts := make([]string, 0, len(c))
	for _, k := range c.Keys() {
		first, _ := firstRune(k)
		parts = append(parts, first+"="+c[k])
	}
	return strings.Join(parts, "; ")
}

func firstRune(s string) (string, bool) {
	for _, r := range s {
		return string(r), true
	}
	return "", false
}

// Chart builds a box plot comparison of the score distributions in reports.
// Dimensions shared by every report go into the title. Dimensions that vary
// are added to each box label.
func Chart(project, metric string, reports []*Report) metrics.Chart {
	preambles := map[string]bool{}
	models := map[string]bool{}
	conditions := map[string]bool{}
	budgets := map[int]bool{}
	for _, r := range reports {
		preambles[r.SystemMessageFile] = true
		models[r.Model] = true
		conditions[shortCondition(r.Parameters)] = true
		budgets[r.K] = true
	}

	var common []string
	if len(preambles) == 1 {
		common = append(common, "system="+reports[0].SystemMessageFile)
	}
	if len(models) == 1 {
		common = append(common, "model="+reports[0].Model)
	}
	if len(conditions) == 1 {
		common = append(common, "p={"+shortCondition(reports[0].Parameters)+"}")
	}
	if len(budgets) == 1 {
		common = append(common, "k="+strconv.Itoa(reports[0].K))
	}

	chart := metrics.Chart{
		Title:  []string{project},
		YLabel: metric,
	}
	if len(common) > 0 {
		chart.Title = append(chart.Title, strings.Join(common, " "))
	}

	for _, r := range reports {
		label := []string{
			fmt.Sprintf("%.3f ± %.3f", r.Average, r.Std),
			fmt.Sprintf("med = %.3f", r.Median),
		}
		var varying []string
		if len(preambles) > 1 {
			varying = append(varying, "system="+r.SystemMessageFile)
		}
		if len(models) > 1 {
			varying = append(varying, "model="+r.Model)
		}
		if len(conditions) > 1 {
			varying = append(varying, "p={"+shortCondition(r.Parameters)+"}")
		}
		if len(budgets) > 1 {
			varying = append(varying, "k="+strconv.Itoa(r.K))
		}
		if len(varying) > 0 {
			label = append(label, strings.Join(varying, " "))
		}

		scores := make([]float64, len(r.Tests))
		for i, t := range r.Tests {
			scores[i] = t.Score
		}
		chart.Series = append(chart.Series, metrics.ChartSeries{Label: label, Scores: scores})
	}
	return chart
}
