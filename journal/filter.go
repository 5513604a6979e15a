package journal

import "strings"

// A Predicate decides whether a record belongs in a filtered result.
// Predicates are independent and AND-combined by Filter.
type Predicate func(Record) bool

// Filter returns the records matching all given predicates, preserving
// input order. The result is never nil.
func Filter(records []Record, preds ...Predicate) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if matchesAll(r, preds) {
			out = append(out, r)
		}
	}
	return out
}

func matchesAll(r Record, preds []Predicate) bool {
	for _, p := range preds {
		if !p(r) {
			return false
		}
	}
	return true
}

// OwnerOnly matches records authored by the viewer.
func OwnerOnly(viewerID string) Predicate {
	return func(r Record) bool {
		return r.UserID == viewerID
	}
}

// HashtagContains matches records where any hashtag contains the substring,
// case-insensitively.
func HashtagContains(substr string) Predicate {
	substr = strings.ToLower(substr)
	return func(r Record) bool {
		for _, tag := range r.Hashtags {
			if strings.Contains(strings.ToLower(tag), substr) {
				return true
			}
		}
		return false
	}
}

// AuthorNameContains matches on the denormalized author display name,
// case-insensitively.
func AuthorNameContains(substr string) Predicate {
	substr = strings.ToLower(substr)
	return func(r Record) bool {
		return strings.Contains(strings.ToLower(r.UserName), substr)
	}
}

// MemoContains matches the memo text or the location address,
// case-insensitively.
func MemoContains(substr string) Predicate {
	substr = strings.ToLower(substr)
	return func(r Record) bool {
		return strings.Contains(strings.ToLower(r.Memo), substr) ||
			strings.Contains(strings.ToLower(r.Location.Address), substr)
	}
}

// YearEquals matches records created in the given year.
func YearEquals(year int) Predicate {
	return func(r Record) bool {
		d, err := ParseDate(r.CreatedAt)
		if err != nil {
			return false
		}
		return d.Year() == year
	}
}

// DateEquals matches records created on the exact YYYY-MM-DD date.
func DateEquals(date string) Predicate {
	return func(r Record) bool {
		return r.CreatedAt == date
	}
}
