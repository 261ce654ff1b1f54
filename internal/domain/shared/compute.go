package shared

import (
	"fmt"
	"sort"
)

// Field names a stored or derived attribute that compute rules read or write
type Field string

// ComputeRule derives one or more fields of T from the fields it reads.
// Apply must be deterministic so recomputing with unchanged inputs is a no-op.
type ComputeRule[T any] struct {
	Name   string
	Reads  []Field
	Writes []Field
	Apply  func(target T)
}

// ComputeGraph holds compute rules ordered so every rule runs after the rules
// producing the fields it reads.
type ComputeGraph[T any] struct {
	rules []ComputeRule[T]
}

// NewComputeGraph validates the rules and orders them topologically.
// A field may be written by only one rule, and cycles are rejected.
func NewComputeGraph[T any](rules ...ComputeRule[T]) (*ComputeGraph[T], error) {
	writer := make(map[Field]int, len(rules))
	for i, r := range rules {
		if r.Name == "" {
			return nil, fmt.Errorf("compute rule %d has no name", i)
		}
		if r.Apply == nil {
			return nil, fmt.Errorf("compute rule %q has no apply func", r.Name)
		}
		if len(r.Writes) == 0 {
			return nil, fmt.Errorf("compute rule %q writes no fields", r.Name)
		}
		for _, f := range r.Writes {
			if prev, ok := writer[f]; ok {
				return nil, fmt.Errorf("field %q written by both %q and %q", f, rules[prev].Name, r.Name)
			}
			writer[f] = i
		}
	}

	// Kahn's algorithm; ties keep registration order.
	indegree := make([]int, len(rules))
	edges := make([][]int, len(rules))
	for i, r := range rules {
		seen := make(map[int]bool)
		for _, f := range r.Reads {
			w, ok := writer[f]
			if !ok || seen[w] {
				continue
			}
			if w == i {
				return nil, fmt.Errorf("compute rule %q reads its own output %q", r.Name, f)
			}
			seen[w] = true
			edges[w] = append(edges[w], i)
			indegree[i]++
		}
	}

	ready := make([]int, 0, len(rules))
	for i := range rules {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	ordered := make([]ComputeRule[T], 0, len(rules))
	for len(ready) > 0 {
		sort.Ints(ready)
		next := ready[0]
		ready = ready[1:]
		ordered = append(ordered, rules[next])
		for _, dep := range edges[next] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}
	if len(ordered) != len(rules) {
		return nil, fmt.Errorf("compute rules contain a dependency cycle")
	}

	return &ComputeGraph[T]{rules: ordered}, nil
}

// MustComputeGraph is NewComputeGraph for package-level graphs; it panics on a bad graph
func MustComputeGraph[T any](rules ...ComputeRule[T]) *ComputeGraph[T] {
	g, err := NewComputeGraph(rules...)
	if err != nil {
		panic(err)
	}
	return g
}

// Recompute runs every rule reachable from the dirty fields, in dependency
// order, and returns the fields that were rewritten.
func (g *ComputeGraph[T]) Recompute(target T, dirty ...Field) []Field {
	if len(dirty) == 0 {
		return nil
	}
	pending := make(map[Field]bool, len(dirty))
	for _, f := range dirty {
		pending[f] = true
	}

	var written []Field
	for _, r := range g.rules {
		if !readsAny(r.Reads, pending) {
			continue
		}
		r.Apply(target)
		for _, f := range r.Writes {
			pending[f] = true
			written = append(written, f)
		}
	}
	return written
}

// Inputs returns every field some rule reads but no rule writes
func (g *ComputeGraph[T]) Inputs() []Field {
	written := make(map[Field]bool)
	for _, r := range g.rules {
		for _, f := range r.Writes {
			written[f] = true
		}
	}
	seen := make(map[Field]bool)
	var inputs []Field
	for _, r := range g.rules {
		for _, f := range r.Reads {
			if written[f] || seen[f] {
				continue
			}
			seen[f] = true
			inputs = append(inputs, f)
		}
	}
	return inputs
}

// RuleNames lists the rules in execution order
func (g *ComputeGraph[T]) RuleNames() []string {
	names := make([]string, len(g.rules))
	for i, r := range g.rules {
		names[i] = r.Name
	}
	return names
}

func readsAny(reads []Field, pending map[Field]bool) bool {
	for _, f := range reads {
		if pending[f] {
			return true
		}
	}
	return false
}

// ContainsField reports whether f is in fields
func ContainsField(fields []Field, f Field) bool {
	for _, x := range fields {
		if x == f {
			return true
		}
	}
	return false
}

// DirtySet tracks fields marked for recomputation. The zero value is ready to use.
type DirtySet struct {
	fields map[Field]struct{}
}

// Mark flags fields as changed
func (d *DirtySet) Mark(fields ...Field) {
	if d.fields == nil {
		d.fields = make(map[Field]struct{}, len(fields))
	}
	for _, f := range fields {
		d.fields[f] = struct{}{}
	}
}

// Has reports whether f is marked
func (d *DirtySet) Has(f Field) bool {
	_, ok := d.fields[f]
	return ok
}

// Len returns the number of marked fields
func (d *DirtySet) Len() int {
	return len(d.fields)
}

// Take returns the marked fields in sorted order and clears the set
func (d *DirtySet) Take() []Field {
	if len(d.fields) == 0 {
		return nil
	}
	out := make([]Field, 0, len(d.fields))
	for f := range d.fields {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	d.fields = nil
	return out
}
