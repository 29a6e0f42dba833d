package types

// RecordID is the process-local surrogate key of a record. IDs start at 0,
// increase monotonically, and are never reused.
type RecordID int64

// Link is one entry of a record's ordered link list.
//
// A link with a nil Target is a general link: it refers to records by label
// only. A link with a Target is a specific link bound to exactly one record,
// which must exist when the link is created and cannot be removed while the
// link exists.
type Link struct {
	Label  string    `json:"label"`
	Target *RecordID `json:"target"`
}

// GeneralLink returns a link that references records by label only.
func GeneralLink(label string) Link {
	return Link{Label: label}
}

// SpecificLink returns a link bound to the record with the given ID.
func SpecificLink(label string, target RecordID) Link {
	return Link{Label: label, Target: &target}
}

// IsSpecific reports whether the link is bound to a record ID.
func (l Link) IsSpecific() bool {
	return l.Target != nil
}

// Equal reports whether two links have the same label and target.
func (l Link) Equal(o Link) bool {
	if l.Label != o.Label {
		return false
	}
	if l.Target == nil || o.Target == nil {
		return l.Target == nil && o.Target == nil
	}
	return *l.Target == *o.Target
}

// LinksEqual reports whether a and b hold equal links in the same order.
func LinksEqual(a, b []Link) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// clone returns a copy of l that shares no memory with it.
func (l Link) clone() Link {
	if l.Target == nil {
		return Link{Label: l.Label}
	}
	return SpecificLink(l.Label, *l.Target)
}

// CloneLinks returns a deep copy of links. A nil input yields an empty,
// non-nil slice so callers can compare results without special cases.
func CloneLinks(links []Link) []Link {
	out := make([]Link, len(links))
	for i, l := range links {
		out[i] = l.clone()
	}
	return out
}

// Backlink identifies the link at Position in the link list of record Source.
type Backlink struct {
	Source   RecordID `json:"source"`
	Position int      `json:"position"`
}
