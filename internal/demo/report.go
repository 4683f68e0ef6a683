package demo

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/middleware"
)

// Report renders the final state and the recorded action kinds as markdown.
func Report(s State, entries []middleware.Entry[domain.Action]) string {
	var b strings.Builder
	b.WriteString("# Weave demo\n\n")
	b.WriteString("| field | value |\n|---|---|\n")
	fmt.Fprintf(&b, "| counter | %d |\n", s.Counter.Value)
	fmt.Fprintf(&b, "| steps | %d |\n", s.Counter.Steps)
	fmt.Fprintf(&b, "| ticks | %d |\n", s.Ticks)
	fmt.Fprintf(&b, "| errors | %d |\n", s.Errors)
	fmt.Fprintf(&b, "| mode | %s |\n", s.Mode)

	if len(s.Fetches) > 0 {
		b.WriteString("\n## Fetches\n\n| id | value |\n|---|---|\n")
		ids := make([]int, 0, len(s.Fetches))
		for id := range s.Fetches {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			fmt.Fprintf(&b, "| %d | %d |\n", id, s.Fetches[id])
		}
	}

	if len(entries) > 0 {
		counts := map[string]int{}
		var kinds []string
		for _, e := range entries {
			k := domain.Kind(e.Action)
			if counts[k] == 0 {
				kinds = append(kinds, k)
			}
			counts[k]++
		}
		slices.Sort(kinds)
		fmt.Fprintf(&b, "\n## Last %d actions\n\n| kind | count |\n|---|---|\n", len(entries))
		for _, k := range kinds {
			fmt.Fprintf(&b, "| %s | %d |\n", k, counts[k])
		}
	}
	return b.String()
}
