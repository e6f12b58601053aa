package facility

import (
	"github.com/jimelj/mailApp/internal/csm"
	"github.com/jimelj/mailApp/internal/table"
)

// SuffixKey returns the last KeyLength characters of key. Keys shorter than
// KeyLength are returned whole, so short keys can match each other.
func SuffixKey(key string) string {
	r := []rune(key)
	if len(r) <= KeyLength {
		return key
	}
	return string(r[len(r)-KeyLength:])
}

// Resolver matches locale keys to facilities by suffix key.
type Resolver struct {
	byKey map[string]Facility
}

// NewResolver indexes facilities by suffix key. When several facilities share
// a suffix key the first one wins.
func NewResolver(facilities []Facility) *Resolver {
	r := &Resolver{byKey: make(map[string]Facility, len(facilities))}
	for _, f := range facilities {
		key := SuffixKey(f.DropsiteKey)
		if _, seen := r.byKey[key]; seen {
			continue
		}
		r.byKey[key] = f
	}
	return r
}

// Size returns the number of distinct suffix keys.
func (r *Resolver) Size() int { return len(r.byKey) }

// Match returns the facility for a record's locale key.
func (r *Resolver) Match(localeKey string) (Facility, bool) {
	if localeKey == "" {
		return Facility{}, false
	}
	f, ok := r.byKey[SuffixKey(localeKey)]
	return f, ok
}

// Enrich returns a copy of t with an Address column holding the formatted
// facility address. Rows without a match have no Address value; no other
// column is touched.
func (r *Resolver) Enrich(t table.Table) table.Table {
	return t.WithColumn(csm.FieldAddress, func(row table.Row) (any, bool) {
		key, _ := row[csm.FieldLocaleKey].(string)
		f, ok := r.Match(key)
		if !ok {
			return nil, false
		}
		addr, ok := f.FormattedAddress()
		if !ok {
			return nil, false
		}
		return addr, true
	})
}
