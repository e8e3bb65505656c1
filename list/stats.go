package list

// Stats aggregates counts across an owner's lists.
type Stats struct {
	Lists     int
	Items     int
	Purchased int
}

// Remaining returns the number of items not yet purchased.
func (s Stats) Remaining() int { return s.Items - s.Purchased }

// Summarize counts lists, items and purchased items.
func Summarize(lists []List) Stats {
	s := Stats{Lists: len(lists)}
	for _, l := range lists {
		s.Items += len(l.Items)
		for _, it := range l.Items {
			if it.Purchased {
				s.Purchased++
			}
		}
	}
	return s
}
