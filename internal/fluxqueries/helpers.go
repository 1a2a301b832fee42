// Package fluxqueries builds the Flux query strings used by the service
// layer. Builders are pure: they format strings and never talk to the
// database.
package fluxqueries

import (
	"fmt"
	"strings"
	"time"
)

// ValidAggregateFunctions is the whitelist accepted by the /data endpoint.
var ValidAggregateFunctions = map[string]bool{
	"mean":   true,
	"median": true,
	"sum":    true,
	"count":  true,
	"min":    true,
	"max":    true,
	"stddev": true,
	"first":  true,
	"last":   true,
}

// RangeFilter renders the range() arguments. Zero times fall back to the
// last 24 hours ending now.
func RangeFilter(start, end *time.Time) string {
	startStr := "-24h"
	endStr := "now()"
	if start != nil {
		startStr = start.UTC().Format(time.RFC3339)
	}
	if end != nil {
		endStr = end.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("start: %s, stop: %s", startStr, endStr)
}

// LocationFilter renders an additional location predicate, or the empty
// string when no locations are requested.
func LocationFilter(locations []string) string {
	if len(locations) == 0 {
		return ""
	}
	clauses := make([]string, 0, len(locations))
	for _, loc := range locations {
		clauses = append(clauses, fmt.Sprintf(`r["location"] == "%s"`, escape(loc)))
	}
	return fmt.Sprintf(" and (%s)", strings.Join(clauses, " or "))
}

// AggregationClause renders an aggregateWindow stage. Window and function
// must be given together; the whitelist is enforced here as well as at the
// HTTP boundary.
func AggregationClause(window, fn string) (string, error) {
	if window == "" && fn == "" {
		return "", nil
	}
	if window == "" || fn == "" {
		return "", fmt.Errorf("aggregate window and function must be provided together")
	}
	if !ValidAggregateFunctions[fn] {
		return "", fmt.Errorf("unsupported aggregate function %q", fn)
	}
	if _, err := time.ParseDuration(window); err != nil {
		return "", fmt.Errorf("invalid aggregate window %q: %w", window, err)
	}
	return fmt.Sprintf("|> aggregateWindow(every: %s, fn: %s, createEmpty: false)", window, fn), nil
}

// Escape keeps user-supplied values from breaking out of Flux string
// literals.
func Escape(s string) string {
	return escape(s)
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
