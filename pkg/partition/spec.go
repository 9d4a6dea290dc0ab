package partition

import (
	"slices"

	"github.com/matzehuels/crossplot/pkg/cluster"
	"github.com/matzehuels/crossplot/pkg/errors"
)

// Mode is how an axis is partitioned.
type Mode int

const (
	ModeNone Mode = iota
	ModeLabels
	ModeBreakpoints
	ModeCluster
)

func (m Mode) String() string {
	switch m {
	case ModeLabels:
		return "labels"
	case ModeBreakpoints:
		return "breakpoints"
	case ModeCluster:
		return "cluster"
	}
	return "none"
}

// ClusterSpec requests hierarchical clustering along an axis.
//
// When the axis is also split, each chunk is clustered on its own and, unless
// KeepChunkOrder is set, the chunks themselves are reordered by a meta tree
// over their centroids. K > 0 cuts an unsplit axis into exactly K clusters
// which then become the chunks.
type ClusterSpec struct {
	Metric         string
	Method         string
	K              int
	KeepChunkOrder bool
}

// Spec describes how to partition one axis. Labels and Breakpoints are
// mutually exclusive; Cluster may be combined with either.
type Spec struct {
	Labels      []string
	Order       []string
	Breakpoints []int
	Cluster     *ClusterSpec
}

// Mode reports the split mode; clustering alone reports ModeCluster.
func (s Spec) Mode() Mode {
	switch {
	case s.Labels != nil:
		return ModeLabels
	case s.Breakpoints != nil:
		return ModeBreakpoints
	case s.Cluster != nil:
		return ModeCluster
	}
	return ModeNone
}

// Validate checks the spec against an axis of length n without computing
// anything.
func (s Spec) Validate(n int) error {
	if s.Labels != nil && s.Breakpoints != nil {
		return errors.New(errors.ErrCodeInvalidInput, "split by labels and by breakpoints at the same time")
	}
	if s.Order != nil && s.Labels == nil {
		return errors.New(errors.ErrCodeInvalidOrder, "a chunk order needs split labels")
	}
	if s.Labels != nil {
		if len(s.Labels) != n {
			return errors.New(errors.ErrCodeSizeMismatch, "got %d labels for an axis of length %d", len(s.Labels), n)
		}
		if s.Order != nil {
			if err := validateOrder(s.Labels, s.Order); err != nil {
				return err
			}
		}
	}
	if s.Breakpoints != nil {
		if err := validateBreakpoints(n, s.Breakpoints); err != nil {
			return err
		}
	}
	if c := s.Cluster; c != nil {
		if _, err := cluster.LookupMetric(c.Metric); err != nil {
			return err
		}
		if _, err := cluster.LookupMethod(c.Method); err != nil {
			return err
		}
		if c.K < 0 {
			return errors.New(errors.ErrCodeInvalidOption, "cluster count must not be negative, got %d", c.K)
		}
		if c.K > 0 && (s.Labels != nil || s.Breakpoints != nil) {
			return errors.New(errors.ErrCodeInvalidOption, "cannot cut into %d clusters on an axis that is already split", c.K)
		}
		if c.K > n {
			return errors.New(errors.ErrCodeInvalidOption, "cannot cut %d observations into %d clusters", n, c.K)
		}
	}
	return nil
}

func validateOrder(labels, order []string) error {
	present := make(map[string]bool)
	for _, l := range labels {
		present[l] = true
	}
	seen := make(map[string]bool, len(order))
	for _, o := range order {
		if seen[o] {
			return errors.New(errors.ErrCodeInvalidOrder, "chunk order lists %q twice", o)
		}
		if !present[o] {
			return errors.New(errors.ErrCodeInvalidOrder, "chunk order lists %q which is not a label", o)
		}
		seen[o] = true
	}
	for _, l := range sortedUnique(labels) {
		if !seen[l] {
			return errors.New(errors.ErrCodeInvalidOrder, "chunk order is missing label %q", l)
		}
	}
	return nil
}

func validateBreakpoints(n int, bps []int) error {
	if len(bps) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "breakpoints must not be empty")
	}
	prev := 0
	for _, b := range bps {
		if b <= prev || b >= n {
			return errors.New(errors.ErrCodeInvalidInput,
				"breakpoints must be strictly increasing within (0, %d), got %v", n, bps)
		}
		prev = b
	}
	return nil
}

func sortedUnique(labels []string) []string {
	out := slices.Clone(labels)
	slices.Sort(out)
	return slices.Compact(out)
}
