// Package continent classifies rows by a fixed country-name lookup. The
// sets are not a partition: Cyprus belongs to both Europe and Asia.
package continent

import (
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"

	"energyeda/internal/transformer/builtin"
	"energyeda/pkg/records"
)

// Continent selects a membership set.
type Continent string

const (
	Europe Continent = "Europe"
	Asia   Continent = "Asia"
)

// All lists the supported continents in report order.
var All = []Continent{Europe, Asia}

var europe = newSet(
	"Albania", "Austria", "Belgium", "Bulgaria", "Croatia", "Cyprus",
	"Czechia", "Denmark", "Estonia", "Finland", "France", "Germany",
	"Greece", "Hungary", "Ireland", "Italy", "Latvia", "Lithuania",
	"Macedonia", "Netherlands", "Norway", "Poland", "Portugal", "Spain",
	"Sweden", "United Kingdom",
)

var asia = newSet(
	"Afghanistan", "Armenia", "Azerbaijan", "Bahrain", "Bangladesh", "Cambodia",
	"China", "Cyprus", "Georgia", "India", "Indonesia", "Iran",
	"Iraq", "Israel", "Japan", "Jordan", "Kazakhstan", "Kuwait",
	"Lebanon", "Malaysia", "Mongolia", "Nepal", "Oman", "Pakistan",
	"Philippines", "Qatar", "Saudi Arabia", "Singapore", "South Korea", "Sri Lanka",
	"Thailand", "Turkey", "United Arab Emirates", "Vietnam",
)

type set map[string]struct{}

func newSet(names ...string) set {
	s := make(set, len(names))
	for _, n := range names {
		s[key(n)] = struct{}{}
	}
	return s
}

func key(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

func (c Continent) members() (set, bool) {
	switch c {
	case Europe:
		return europe, true
	case Asia:
		return asia, true
	}
	return nil, false
}

// Parse resolves a selector case-insensitively. ok is false for anything
// other than Europe or Asia.
func Parse(s string) (Continent, bool) {
	for _, c := range All {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, true
		}
	}
	return "", false
}

// Size returns the number of countries in c's set, or 0 for an unknown c.
func (c Continent) Size() int {
	m, _ := c.members()
	return len(m)
}

// Names returns c's member countries sorted by name.
func (c Continent) Names() []string {
	m, _ := c.members()
	out := make([]string, 0, len(m))
	for n := range m {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Contains reports whether country belongs to c. Names are compared after
// trimming surrounding white space and NFC normalization; case is significant.
func (c Continent) Contains(country string) bool {
	m, ok := c.members()
	if !ok {
		return false
	}
	_, in := m[key(country)]
	return in
}

// Filter returns the rows of t whose Country is a member of sel, in input
// order. An unknown selector returns ok == false, which callers must keep
// apart from a valid selection that matched nothing. Rows whose Country is
// not a string never match. Membership uses Contains, so " Spain" selects
// the same rows as "Spain"; the rows themselves are returned unchanged.
func Filter(t records.Table, sel Continent) (records.Table, bool) {
	if _, ok := sel.members(); !ok {
		return records.Table{}, false
	}
	rows := make([]records.Record, 0)
	for _, r := range t.Rows {
		name, ok := r[builtin.ColCountry].(string)
		if ok && sel.Contains(name) {
			rows = append(rows, r)
		}
	}
	return t.WithRows(rows), true
}
