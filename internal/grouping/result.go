package grouping

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Group is one decoded group: its key, its document count, and, for
// member-retaining directives, the member documents.
type Group struct {
	Key     any              `json:"key"`
	Count   int64            `json:"count"`
	Members []map[string]any `json:"members,omitempty"`
}

// Result wraps raw group-by output. It is immutable after construction;
// the derived views are computed on first access, cached, and never
// mutate the underlying groups, so a Result is freely shareable across
// goroutines.
type Result struct {
	groups []Group

	keyAscOnce, keyDescOnce     sync.Once
	countAscOnce, countDescOnce sync.Once
	lookupOnce                  sync.Once
	keyAsc, keyDesc             []Group
	countAsc, countDesc         []Group
	lookup                      map[string]int
}

// Decode converts raw aggregation output into a Result. className is the
// queried class; it supplies the class of trimmed member references when
// the directive asked for pointers.
func (d Directive) Decode(className string, raw []map[string]any) (*Result, error) {
	groups := make([]Group, 0, len(raw))
	for i, doc := range raw {
		g := Group{Key: groupKey(doc)}
		count, err := toInt64(doc["count"])
		if err != nil {
			return nil, fmt.Errorf("group %d: %w", i, err)
		}
		g.Count = count

		if members, ok := doc["members"].([]any); ok {
			g.Members = make([]map[string]any, 0, len(members))
			for _, m := range members {
				member, ok := m.(map[string]any)
				if !ok {
					continue
				}
				if d.returnPointers {
					member = map[string]any{
						"__type":    "Pointer",
						"className": className,
						"objectId":  member["objectId"],
					}
				}
				g.Members = append(g.Members, member)
			}
		}
		groups = append(groups, g)
	}
	return &Result{groups: groups}, nil
}

// NewResult wraps already-decoded groups.
func NewResult(groups []Group) *Result {
	return &Result{groups: append([]Group(nil), groups...)}
}

// groupKey reads the group key from a raw document. Remote output and
// wire-converted direct output both carry it as objectId; raw storage
// output carries _id.
func groupKey(doc map[string]any) any {
	if k, ok := doc["objectId"]; ok {
		return k
	}
	return doc["_id"]
}

// Len returns the number of groups.
func (r *Result) Len() int { return len(r.groups) }

// Groups returns the groups in pipeline output order.
func (r *Result) Groups() []Group {
	return append([]Group(nil), r.groups...)
}

// KeysAscending returns the groups sorted by key, ascending.
func (r *Result) KeysAscending() []Group {
	r.keyAscOnce.Do(func() {
		r.keyAsc = r.sorted(func(a, b Group) bool { return compareKeys(a.Key, b.Key) < 0 })
	})
	return append([]Group(nil), r.keyAsc...)
}

// KeysDescending returns the groups sorted by key, descending.
func (r *Result) KeysDescending() []Group {
	r.keyDescOnce.Do(func() {
		r.keyDesc = r.sorted(func(a, b Group) bool { return compareKeys(a.Key, b.Key) > 0 })
	})
	return append([]Group(nil), r.keyDesc...)
}

// CountsAscending returns the groups sorted by count, ascending.
func (r *Result) CountsAscending() []Group {
	r.countAscOnce.Do(func() {
		r.countAsc = r.sorted(func(a, b Group) bool { return a.Count < b.Count })
	})
	return append([]Group(nil), r.countAsc...)
}

// CountsDescending returns the groups sorted by count, descending.
func (r *Result) CountsDescending() []Group {
	r.countDescOnce.Do(func() {
		r.countDesc = r.sorted(func(a, b Group) bool { return a.Count > b.Count })
	})
	return append([]Group(nil), r.countDesc...)
}

// Get looks a group up by key.
func (r *Result) Get(key any) (Group, bool) {
	r.lookupOnce.Do(func() {
		r.lookup = make(map[string]int, len(r.groups))
		for i, g := range r.groups {
			r.lookup[keyString(g.Key)] = i
		}
	})
	i, ok := r.lookup[keyString(key)]
	if !ok {
		return Group{}, false
	}
	return r.groups[i], true
}

// MarshalJSON writes the groups in pipeline output order.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.groups)
}

func (r *Result) sorted(less func(a, b Group) bool) []Group {
	out := append([]Group(nil), r.groups...)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// compareKeys orders group keys: numbers numerically, strings and bools
// naturally, date keys component-wise coarsest first. Mixed or unknown
// types fall back to their printed form.
func compareKeys(a, b any) int {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}
	if as, aok := a.(string); aok {
		if bs, bok := b.(string); bok {
			return strings.Compare(as, bs)
		}
	}
	if am, aok := dateKeyMap(a); aok {
		if bm, bok := dateKeyMap(b); bok {
			for _, part := range []string{"year", "month", "day", "hour"} {
				av, _ := toFloat(am[part])
				bv, _ := toFloat(bm[part])
				switch {
				case av < bv:
					return -1
				case av > bv:
					return 1
				}
			}
			return 0
		}
	}
	return strings.Compare(keyString(a), keyString(b))
}

func dateKeyMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	_, hasYear := m["year"]
	return m, hasYear
}

// keyString renders a key in a canonical lookup form so that, say, an
// int 9 and the float64 the JSON decoder produced both find the group.
func keyString(v any) string {
	if f, ok := toFloat(v); ok {
		return fmt.Sprintf("%g", f)
	}
	if m, ok := dateKeyMap(v); ok {
		y, _ := toFloat(m["year"])
		mo, _ := toFloat(m["month"])
		d, _ := toFloat(m["day"])
		h, _ := toFloat(m["hour"])
		return fmt.Sprintf("%04.0f-%02.0f-%02.0f-%02.0f", y, mo, d, h)
	}
	return fmt.Sprint(v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func toInt64(v any) (int64, error) {
	f, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("count is %T, not a number", v)
	}
	return int64(f), nil
}
