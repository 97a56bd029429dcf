package store

import (
	"bytes"
)

// BoundKind says how a range endpoint is treated.
type BoundKind uint8

const (
	Unbounded BoundKind = iota
	Included
	Excluded
)

// Bound is one endpoint of a raw key range.
type Bound struct {
	Kind BoundKind
	Key  []byte
}

func Unbound() Bound           { return Bound{Kind: Unbounded} }
func Include(key []byte) Bound { return Bound{Kind: Included, Key: key} }
func Exclude(key []byte) Bound { return Bound{Kind: Excluded, Key: key} }

func (b Bound) String() string {
	switch b.Kind {
	case Included:
		return "[" + string(b.Key)
	case Excluded:
		return "(" + string(b.Key)
	default:
		return "*"
	}
}

// Order is the direction of a range scan.
type Order uint8

const (
	Ascending Order = iota
	Descending
)

func (o Order) String() string {
	if o == Descending {
		return "desc"
	}
	return "asc"
}

// IsEmptyRange reports whether no key can lie between low and high. Backends
// and containers use it to skip opening a cursor at all.
func IsEmptyRange(low, high Bound) bool {
	if low.Kind == Unbounded || high.Kind == Unbounded {
		return false
	}
	c := bytes.Compare(low.Key, high.Key)
	if c > 0 {
		return true
	}
	return c == 0 && (low.Kind == Excluded || high.Kind == Excluded)
}

// AboveLow reports whether key satisfies the lower bound.
func AboveLow(low Bound, key []byte) bool {
	switch low.Kind {
	case Included:
		return bytes.Compare(key, low.Key) >= 0
	case Excluded:
		return bytes.Compare(key, low.Key) > 0
	default:
		return true
	}
}

// BelowHigh reports whether key satisfies the upper bound.
func BelowHigh(high Bound, key []byte) bool {
	switch high.Kind {
	case Included:
		return bytes.Compare(key, high.Key) <= 0
	case Excluded:
		return bytes.Compare(key, high.Key) < 0
	default:
		return true
	}
}

// InRange reports whether key lies within [low, high] honouring bound kinds.
func InRange(low, high Bound, key []byte) bool {
	return AboveLow(low, key) && BelowHigh(high, key)
}

// PrefixEnd returns the smallest key greater than every key starting with
// prefix, or nil if there is none (prefix empty or all 0xff).
func PrefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

// PrefixBounds returns the bounds covering exactly the keys that start
// with prefix.
func PrefixBounds(prefix []byte) (Bound, Bound) {
	if len(prefix) == 0 {
		return Unbound(), Unbound()
	}
	low := Include(prefix)
	if end := PrefixEnd(prefix); end != nil {
		return low, Exclude(end)
	}
	return low, Unbound()
}
