package catalyst

import (
	"sort"

	"github.com/quitrk/stock-checker-sub001/models"
	"github.com/quitrk/stock-checker-sub001/providers"
)

// sourcePriority ranks sources for duplicate resolution. Unknown sources rank
// lowest (0) so a misconfigured adapter can never displace a known one.
var sourcePriority = map[string]int{
	providers.SourceFDA:            providers.PriorityFDA,
	providers.SourceClinicalTrials: providers.PriorityClinicalTrials,
	providers.SourceFinnhub:        providers.PriorityFinnhub,
	providers.SourceFMP:            providers.PriorityFMP,
}

func priorityOf(source string) int {
	return sourcePriority[source]
}

// Reconcile collapses duplicate events and sorts the result by date. Two
// events are duplicates when they share the (symbol, eventType, date) identity
// key; the winner is the highest-priority source, with the longer description
// breaking priority ties. Losers are discarded whole, never merged field by
// field. The operation is idempotent.
func Reconcile(events []models.CatalystEvent) []models.CatalystEvent {
	winners := make(map[string]models.CatalystEvent, len(events))
	order := make([]string, 0, len(events))

	for _, ev := range events {
		key := ev.IdentityKey()
		current, seen := winners[key]
		if !seen {
			winners[key] = ev
			order = append(order, key)
			continue
		}
		if beats(ev, current) {
			winners[key] = ev
		}
	}

	result := make([]models.CatalystEvent, 0, len(order))
	for _, key := range order {
		result = append(result, winners[key])
	}

	// Lexical comparison is exact for zero-padded ISO dates. The secondary
	// keys only make the order fully deterministic for same-day events.
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date < result[j].Date
		}
		if result[i].Symbol != result[j].Symbol {
			return result[i].Symbol < result[j].Symbol
		}
		return result[i].Type < result[j].Type
	})
	return result
}

// beats reports whether challenger displaces incumbent within one identity
// group: higher source priority wins, then the longer description.
func beats(challenger, incumbent models.CatalystEvent) bool {
	cp, ip := priorityOf(challenger.Source), priorityOf(incumbent.Source)
	if cp != ip {
		return cp > ip
	}
	return len(challenger.Description) > len(incumbent.Description)
}
