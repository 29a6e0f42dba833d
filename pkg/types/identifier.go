package types

import "fmt"

// ValidIdentifier reports whether s may be used as a record or link label.
// Only ASCII letters, digits, '-', '_', '/' and '.' are accepted. The empty
// string is valid.
func ValidIdentifier(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '/', c == '.':
		default:
			return false
		}
	}
	return true
}

// ValidateRecord checks the label and every link label of a record about to
// be created. The returned error wraps ErrInvalidIdentifier.
func ValidateRecord(label string, links []Link) error {
	if !ValidIdentifier(label) {
		return fmt.Errorf("%w: label %q", ErrInvalidIdentifier, label)
	}
	for i, l := range links {
		if !ValidIdentifier(l.Label) {
			return fmt.Errorf("%w: link %d label %q", ErrInvalidIdentifier, i, l.Label)
		}
	}
	return nil
}
