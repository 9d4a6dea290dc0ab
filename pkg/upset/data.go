// Package upset computes the intersections of named sets and draws them as
// UpSet plots.
//
// [Data] holds a membership table of items by sets and derives the subset
// table from it: one [Subset] per distinct membership pattern, with its
// cardinality (number of items) and degree (number of sets). The subset
// table can be filtered, sorted and reset; sets can be reordered.
//
//	d, _ := upset.FromSets([]string{"A", "B", "C"}, [][]string{
//		{"1", "2", "3", "4"},
//		{"3", "4", "5", "6"},
//		{"1", "6", "10", "11"},
//	})
//	d.Filter(upset.Filter{MinCardinality: 2})
//	p, _ := upset.New(d, upset.SortSubsets(upset.ByDegree, false))
//	_ = render.Save(p, "upset.svg")
package upset

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/crossplot/pkg/errors"
)

// Subset is one intersection: the items that belong to exactly the sets
// marked in Members.
type Subset struct {
	// Members follows [Data.Sets].
	Members     []bool
	Sets        []string
	Items       []string
	Cardinality int
	Degree      int
}

func (s Subset) key() string {
	var b strings.Builder
	for _, m := range s.Members {
		if m {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// Data is a membership table and the subset table derived from it.
type Data struct {
	sets    []string
	items   []string
	member  [][]bool
	subsets []Subset
}

// NewData returns the data for a membership table: member[i][j] reports whether
// items[i] is in sets[j].
func NewData(sets, items []string, member [][]bool) (*Data, error) {
	if len(sets) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "upset data needs at least one set")
	}
	if err := unique("set", sets); err != nil {
		return nil, err
	}
	if err := unique("item", items); err != nil {
		return nil, err
	}
	if len(member) != len(items) {
		return nil, errors.New(errors.ErrCodeSizeMismatch, "membership has %d rows for %d items", len(member), len(items))
	}
	d := &Data{sets: slices.Clone(sets), items: slices.Clone(items), member: make([][]bool, len(member))}
	for i, row := range member {
		if len(row) != len(sets) {
			return nil, errors.New(errors.ErrCodeSizeMismatch, "item %q has %d memberships for %d sets", items[i], len(row), len(sets))
		}
		d.member[i] = slices.Clone(row)
	}
	d.Reset()
	return d, nil
}

func unique(what string, names []string) error {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return errors.New(errors.ErrCodeDuplicateName, "duplicate %s %q", what, n)
		}
		seen[n] = true
	}
	return nil
}

// FromSets builds the data from the members of every set. Items are taken in
// first-seen order. Nil names become "Set 1", "Set 2", ...
func FromSets(names []string, sets [][]string) (*Data, error) {
	if names == nil {
		for i := range sets {
			names = append(names, fmt.Sprintf("Set %d", i+1))
		}
	}
	if len(names) != len(sets) {
		return nil, errors.New(errors.ErrCodeSizeMismatch, "got %d names for %d sets", len(names), len(sets))
	}
	index := make(map[string]int)
	var items []string
	for _, s := range sets {
		for _, it := range s {
			if _, ok := index[it]; !ok {
				index[it] = len(items)
				items = append(items, it)
			}
		}
	}
	member := make([][]bool, len(items))
	for i := range member {
		member[i] = make([]bool, len(sets))
	}
	for j, s := range sets {
		for _, it := range s {
			member[index[it]][j] = true
		}
	}
	return NewData(names, items, member)
}

// FromMemberships builds the data from the sets every item belongs to. Sets
// are taken in first-seen order. Nil items become "Item 1", "Item 2", ...
func FromMemberships(items []string, memberships [][]string) (*Data, error) {
	if items == nil {
		for i := range memberships {
			items = append(items, fmt.Sprintf("Item %d", i+1))
		}
	}
	if len(items) != len(memberships) {
		return nil, errors.New(errors.ErrCodeSizeMismatch, "got %d items for %d memberships", len(items), len(memberships))
	}
	index := make(map[string]int)
	var sets []string
	for _, ms := range memberships {
		for _, s := range ms {
			if _, ok := index[s]; !ok {
				index[s] = len(sets)
				sets = append(sets, s)
			}
		}
	}
	member := make([][]bool, len(items))
	for i, ms := range memberships {
		member[i] = make([]bool, len(sets))
		for _, s := range ms {
			member[i][index[s]] = true
		}
	}
	return NewData(sets, items, member)
}

// Reset rebuilds the subset table from the membership table, dropping any
// filter or subset order. Subsets start in membership-key order: absence
// sorts before presence and the first set is most significant.
func (d *Data) Reset() *Data {
	groups := make(map[string]*Subset)
	var keys []string
	for i, row := range d.member {
		s := Subset{Members: row}
		k := s.key()
		g, ok := groups[k]
		if !ok {
			g = &Subset{Members: slices.Clone(row)}
			for j, m := range row {
				if m {
					g.Sets = append(g.Sets, d.sets[j])
					g.Degree++
				}
			}
			groups[k] = g
			keys = append(keys, k)
		}
		g.Items = append(g.Items, d.items[i])
		g.Cardinality++
	}
	slices.Sort(keys)
	d.subsets = make([]Subset, len(keys))
	for i, k := range keys {
		d.subsets[i] = *groups[k]
	}
	return d
}

// Filter bounds the subsets kept in the table. Zero leaves a bound open.
type Filter struct {
	MinDegree      int
	MaxDegree      int
	MinCardinality int
	MaxCardinality int
}

func (f Filter) keep(s Subset) bool {
	switch {
	case f.MinDegree > 0 && s.Degree < f.MinDegree,
		f.MaxDegree > 0 && s.Degree > f.MaxDegree,
		f.MinCardinality > 0 && s.Cardinality < f.MinCardinality,
		f.MaxCardinality > 0 && s.Cardinality > f.MaxCardinality:
		return false
	}
	return true
}

// Filter drops the subsets outside f. Filters accumulate until [Data.Reset].
func (d *Data) Filter(f Filter) *Data {
	d.subsets = slices.DeleteFunc(d.subsets, func(s Subset) bool { return !f.keep(s) })
	return d
}

// SortBy names the subset sort key.
type SortBy string

const (
	ByCardinality SortBy = "cardinality"
	ByDegree      SortBy = "degree"
)

// SortSubsets orders the subsets by cardinality or degree, largest first
// unless ascending. Ties keep their current order.
func (d *Data) SortSubsets(by SortBy, ascending bool) error {
	var key func(Subset) int
	switch by {
	case ByCardinality:
		key = func(s Subset) int { return s.Cardinality }
	case ByDegree:
		key = func(s Subset) int { return s.Degree }
	default:
		return errors.New(errors.ErrCodeInvalidOption, "sort subsets by %q or %q, got %q", ByCardinality, ByDegree, by)
	}
	slices.SortStableFunc(d.subsets, func(a, b Subset) int {
		if ascending {
			return cmp.Compare(key(a), key(b))
		}
		return cmp.Compare(key(b), key(a))
	})
	return nil
}

// SortSets reorders the sets. A non-nil order must name every set once;
// otherwise sets are ordered by size, largest first unless ascending.
func (d *Data) SortSets(order []string, ascending bool) error {
	perm := make([]int, len(d.sets))
	if order != nil {
		if len(order) != len(d.sets) {
			return errors.New(errors.ErrCodeInvalidOrder, "order names %d sets, the data has %d", len(order), len(d.sets))
		}
		pos := make(map[string]int, len(d.sets))
		for j, s := range d.sets {
			pos[s] = j
		}
		seen := make(map[string]bool, len(order))
		for i, s := range order {
			j, ok := pos[s]
			if !ok || seen[s] {
				return errors.New(errors.ErrCodeInvalidOrder, "order entry %q is unknown or repeated", s)
			}
			seen[s] = true
			perm[i] = j
		}
	} else {
		sizes := d.SetSizes()
		for i := range perm {
			perm[i] = i
		}
		slices.SortStableFunc(perm, func(a, b int) int {
			if ascending {
				return cmp.Compare(sizes[a], sizes[b])
			}
			return cmp.Compare(sizes[b], sizes[a])
		})
	}

	d.sets = permute(d.sets, perm)
	for i := range d.member {
		d.member[i] = permute(d.member[i], perm)
	}
	for i := range d.subsets {
		s := &d.subsets[i]
		s.Members = permute(s.Members, perm)
		s.Sets = s.Sets[:0]
		for j, m := range s.Members {
			if m {
				s.Sets = append(s.Sets, d.sets[j])
			}
		}
	}
	return nil
}

func permute[T any](xs []T, perm []int) []T {
	out := make([]T, len(perm))
	for i, j := range perm {
		out[i] = xs[j]
	}
	return out
}

// Mark selects subsets: those containing every Present set, none of the
// Absent sets, and within the bounds of the embedded filter.
type Mark struct {
	Filter
	Present []string
	Absent  []string
}

// Mark reports for every subset in table order whether m selects it.
func (d *Data) Mark(m Mark) ([]bool, error) {
	present, err := d.setIndices(m.Present)
	if err != nil {
		return nil, err
	}
	absent, err := d.setIndices(m.Absent)
	if err != nil {
		return nil, err
	}
	out := make([]bool, len(d.subsets))
	for i, s := range d.subsets {
		ok := m.keep(s)
		for _, j := range present {
			ok = ok && s.Members[j]
		}
		for _, j := range absent {
			ok = ok && !s.Members[j]
		}
		out[i] = ok
	}
	return out, nil
}

func (d *Data) setIndices(names []string) ([]int, error) {
	out := make([]int, len(names))
	for i, n := range names {
		j := slices.Index(d.sets, n)
		if j < 0 {
			return nil, errors.New(errors.ErrCodeInvalidName, "unknown set %q", n)
		}
		out[i] = j
	}
	return out, nil
}

// Sets returns the set names in display order.
func (d *Data) Sets() []string { return slices.Clone(d.sets) }

// Items returns the item names.
func (d *Data) Items() []string { return slices.Clone(d.items) }

// Subsets returns the current subset table.
func (d *Data) Subsets() []Subset { return slices.Clone(d.subsets) }

// SetSizes returns the number of items in every set, in display order.
func (d *Data) SetSizes() []int {
	out := make([]int, len(d.sets))
	for _, row := range d.member {
		for j, m := range row {
			if m {
				out[j]++
			}
		}
	}
	return out
}

// Cardinalities returns the cardinality of every subset in table order.
func (d *Data) Cardinalities() []int {
	out := make([]int, len(d.subsets))
	for i, s := range d.subsets {
		out[i] = s.Cardinality
	}
	return out
}

// HasItem returns the sets item belongs to.
func (d *Data) HasItem(item string) ([]string, error) {
	i := slices.Index(d.items, item)
	if i < 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "unknown item %q", item)
	}
	var out []string
	for j, m := range d.member[i] {
		if m {
			out = append(out, d.sets[j])
		}
	}
	return out, nil
}

// Intersection returns the items in every one of sets, whatever other sets
// they belong to.
func (d *Data) Intersection(sets ...string) ([]string, error) {
	idx, err := d.setIndices(sets)
	if err != nil {
		return nil, err
	}
	var out []string
	for i, row := range d.member {
		in := true
		for _, j := range idx {
			in = in && row[j]
		}
		if in {
			out = append(out, d.items[i])
		}
	}
	return out, nil
}

// ItemDegrees returns the number of sets every item belongs to.
func (d *Data) ItemDegrees() []int {
	out := make([]int, len(d.items))
	for i, row := range d.member {
		for _, m := range row {
			if m {
				out[i]++
			}
		}
	}
	return out
}

// clone returns a deep copy, so plotting never changes the caller's table.
func (d *Data) clone() *Data {
	c := &Data{sets: slices.Clone(d.sets), items: slices.Clone(d.items), member: make([][]bool, len(d.member))}
	for i, row := range d.member {
		c.member[i] = slices.Clone(row)
	}
	c.subsets = make([]Subset, len(d.subsets))
	for i, s := range d.subsets {
		c.subsets[i] = Subset{
			Members:     slices.Clone(s.Members),
			Sets:        slices.Clone(s.Sets),
			Items:       slices.Clone(s.Items),
			Cardinality: s.Cardinality,
			Degree:      s.Degree,
		}
	}
	return c
}
