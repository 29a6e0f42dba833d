package types

import "bytes"

// Record is a stored entity. Label, Links and Payload form the identity key:
// a store never holds two records with equal keys. Confirmed is mutable and
// not part of identity.
type Record struct {
	ID        RecordID
	Label     string
	Links     []Link
	Payload   []byte
	Confirmed bool
}

// SameIdentity reports whether r and o have equal identity keys.
func (r Record) SameIdentity(o Record) bool {
	return r.Label == o.Label && LinksEqual(r.Links, o.Links) && bytes.Equal(r.Payload, o.Payload)
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	payload := make([]byte, len(r.Payload))
	copy(payload, r.Payload)
	return Record{
		ID:        r.ID,
		Label:     r.Label,
		Links:     CloneLinks(r.Links),
		Payload:   payload,
		Confirmed: r.Confirmed,
	}
}

// Bool returns a pointer to v, for the optional confirmed argument of
// Store.Create.
func Bool(v bool) *bool {
	return &v
}
