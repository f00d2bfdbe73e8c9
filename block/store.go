package block

import "github.com/railsignal/flexsipp/interval"

// newLabeledStore wraps interval.NewStore for BlockNode/BlockEdge
// construction, keeping the labelling convention in one place.
func newLabeledStore(label string) *interval.Store {
	return interval.NewStore(label)
}
