// Package recency bounds unbounded upstream feeds to a trailing time
// window anchored to "now".
package recency

import (
	"sort"
	"time"
)

// Item is one dated entry from a metadata feed.
type Item struct {
	Title      string
	Published  time.Time
	SourceName string
	VideoID    string
	URL        string
}

// FilterRecent keeps exactly the items published at or after
// now - windowDays. The boundary is inclusive: an item published exactly
// windowDays ago survives. Input order is preserved and input items are
// never mutated.
func FilterRecent(items []Item, windowDays int, now time.Time) []Item {
	cutoff := now.UTC().AddDate(0, 0, -windowDays)
	kept := make([]Item, 0, len(items))
	for _, item := range items {
		if !item.Published.Before(cutoff) {
			kept = append(kept, item)
		}
	}
	return kept
}

// SortChronological reorders items oldest-first. This is a documented
// post-processing step callers opt into, not part of the filter contract.
func SortChronological(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Published.Before(items[j].Published)
	})
}
