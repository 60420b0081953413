// Package regions maps region names to city strings and matches scraped
// post locations against them.
package regions

import (
	"errors"
	"fmt"
	"regexp"
	"sort"

	"jobposts-engine/internal/report"
)

var ErrInvalidRegion = errors.New("invalid region")

type city struct {
	name string
	re   *regexp.Regexp
}

// Table is immutable after New. Region names are exact keys; city matching is
// case-insensitive containment.
type Table struct {
	order   []string
	regions map[string][]city
}

func New(src map[string][]string) Table {
	t := Table{regions: make(map[string][]city, len(src))}
	for name, cities := range src {
		cs := make([]city, 0, len(cities))
		for _, c := range cities {
			cs = append(cs, city{name: c, re: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(c))})
		}
		t.regions[name] = cs
		t.order = append(t.order, name)
	}
	sort.Strings(t.order)
	return t
}

func (t Table) Names() []string {
	return append([]string(nil), t.order...)
}

func (t Table) Has(region string) bool {
	_, ok := t.regions[region]
	return ok
}

func (t Table) lookup(region string) ([]city, error) {
	cs, ok := t.regions[region]
	if !ok {
		return nil, &report.UserError{
			Msg: fmt.Sprintf("region %q not found (known: %v)", region, t.order),
			Err: ErrInvalidRegion,
		}
	}
	return cs, nil
}

// Cities returns the cities of one region in table order.
func (t Table) Cities(region string) ([]string, error) {
	cs, err := t.lookup(region)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.name)
	}
	return out, nil
}

// CitiesFor unions the cities of all regions, first occurrence wins. Every
// name is checked before anything is returned.
func (t Table) CitiesFor(regions []string) ([]string, error) {
	for _, r := range regions {
		if _, err := t.lookup(r); err != nil {
			return nil, err
		}
	}
	seen := map[string]bool{}
	var out []string
	for _, r := range regions {
		for _, c := range t.regions[r] {
			if seen[c.name] {
				continue
			}
			seen[c.name] = true
			out = append(out, c.name)
		}
	}
	return out, nil
}

func (t Table) MatchesRegion(location, region string) (bool, error) {
	cs, err := t.lookup(region)
	if err != nil {
		return false, err
	}
	return matchAny(cs, location), nil
}

func (t Table) MatchesAny(location string, regions []string) (bool, error) {
	for _, r := range regions {
		ok, err := t.MatchesRegion(location, r)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// IsKnownLocation reports whether location matches any city in the table.
// Unknown locations need a human to decide.
func (t Table) IsKnownLocation(location string) bool {
	for _, name := range t.order {
		if matchAny(t.regions[name], location) {
			return true
		}
	}
	return false
}

func matchAny(cs []city, location string) bool {
	for _, c := range cs {
		if c.re.MatchString(location) {
			return true
		}
	}
	return false
}
