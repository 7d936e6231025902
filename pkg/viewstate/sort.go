package viewstate

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Direction is the order of a sorted column.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortSpec names the column a view is sorted by. A nil *SortSpec means
// source order.
type SortSpec struct {
	Key       string    `json:"key"`
	Direction Direction `json:"direction"`
}

func (s *SortSpec) String() string {
	if s == nil {
		return ""
	}
	return s.Key + ":" + string(s.Direction)
}

// ParseSortSpec is the inverse of String. Empty input yields nil.
func ParseSortSpec(v string) (*SortSpec, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	key, dir, _ := strings.Cut(v, ":")
	spec := &SortSpec{Key: key, Direction: Direction(dir)}
	switch spec.Direction {
	case Asc, Desc:
	case "":
		spec.Direction = Asc
	default:
		return nil, fmt.Errorf("sort direction %q: want asc or desc", dir)
	}
	if spec.Key == "" {
		return nil, fmt.Errorf("sort spec %q has no key", v)
	}
	return spec, nil
}

// NextSort cycles a header click: a new column sorts ascending, the same
// column flips to descending, and a third click clears the sort.
func NextSort(cur *SortSpec, key string) *SortSpec {
	if cur == nil || cur.Key != key {
		return &SortSpec{Key: key, Direction: Asc}
	}
	if cur.Direction == Asc {
		return &SortSpec{Key: key, Direction: Desc}
	}
	return nil
}

// SortStore owns the SortSpec of every view.
type SortStore struct {
	buckets[*SortSpec]
}

func NewSortStore() *SortStore {
	s := &SortStore{}
	s.init(func() *SortSpec { return nil })
	return s
}

// Get returns a copy of the sort for key, nil when unsorted.
func (s *SortStore) Get(key Key) *SortSpec {
	return cloneSpec(s.get(key))
}

// Set replaces the sort for key.
func (s *SortStore) Set(key Key, spec *SortSpec) {
	spec = cloneSpec(spec)
	s.update(key, func(*SortSpec) *SortSpec { return spec })
}

func cloneSpec(spec *SortSpec) *SortSpec {
	if spec == nil {
		return nil
	}
	dup := *spec
	return &dup
}

// Comparator orders column values: numbers numerically, everything else by
// locale-aware collation. Nil values sort last in both directions.
// A Comparator is not safe for concurrent use.
type Comparator struct {
	col *collate.Collator
}

// NewComparator builds a comparator for the given language.
func NewComparator(tag language.Tag) *Comparator {
	return &Comparator{col: collate.New(tag, collate.IgnoreCase)}
}

// Compare returns -1, 0 or 1.
func (c *Comparator) Compare(a, b any, dir Direction) int {
	an, bn := isNil(a), isNil(b)
	switch {
	case an && bn:
		return 0
	case an:
		return 1
	case bn:
		return -1
	}

	var r int
	if x, ok := toNumber(a); ok {
		if y, ok := toNumber(b); ok {
			r = x.Cmp(y)
			return applyDirection(r, dir)
		}
	}
	r = c.col.CompareString(fmt.Sprint(a), fmt.Sprint(b))
	return applyDirection(r, dir)
}

func applyDirection(r int, dir Direction) int {
	if dir == Desc {
		return -r
	}
	return r
}

// SortSlice sorts items in place by the column spec names. field extracts
// the column value for a row. A nil spec leaves items in source order.
func SortSlice[T any](items []T, spec *SortSpec, field func(item T, key string) any) {
	if spec == nil || spec.Key == "" || field == nil {
		return
	}
	c := NewComparator(language.English)
	sort.SliceStable(items, func(i, j int) bool {
		return c.Compare(field(items[i], spec.Key), field(items[j], spec.Key), spec.Direction) < 0
	})
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func toNumber(v any) (*big.Float, bool) {
	switch n := v.(type) {
	case int:
		return new(big.Float).SetInt64(int64(n)), true
	case int8:
		return new(big.Float).SetInt64(int64(n)), true
	case int16:
		return new(big.Float).SetInt64(int64(n)), true
	case int32:
		return new(big.Float).SetInt64(int64(n)), true
	case int64:
		return new(big.Float).SetInt64(n), true
	case uint:
		return new(big.Float).SetUint64(uint64(n)), true
	case uint8:
		return new(big.Float).SetUint64(uint64(n)), true
	case uint16:
		return new(big.Float).SetUint64(uint64(n)), true
	case uint32:
		return new(big.Float).SetUint64(uint64(n)), true
	case uint64:
		return new(big.Float).SetUint64(n), true
	case float32:
		return toNumber(float64(n))
	case float64:
		if math.IsNaN(n) {
			return nil, false
		}
		return big.NewFloat(n), true
	case *big.Int:
		return new(big.Float).SetInt(n), true
	case *big.Float:
		return n, true
	case json.Number:
		return parseDecimal(n.String())
	case string:
		return parseDecimal(n)
	}
	return nil, false
}

// parseDecimal accepts base-10 numbers only so hex addresses and hashes keep
// collating as text.
func parseDecimal(v string) (*big.Float, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, false
	}
	f, _, err := big.ParseFloat(v, 10, 256, big.ToNearestEven)
	if err != nil {
		return nil, false
	}
	return f, true
}
