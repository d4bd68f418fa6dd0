package provquery

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/provquery/internal/domain/query/filter"
	"github.com/kailas-cloud/provquery/internal/domain/query/vector"
)

// Conjunction joins the values of one filter field.
type Conjunction = filter.Conjunction

// Conjunction values.
const (
	OR  = filter.Or
	AND = filter.And
)

// FilterNode is the accumulated value set of one filter field.
type FilterNode = filter.Node

// Term is a filter value: a scalar or a nested FilterNode.
type Term = filter.Term

// VectorField is one of the five search vectors.
type VectorField = vector.Field

// Search vector tokens.
const (
	VectorName               = vector.Name
	VectorSpecialtySynonym   = vector.SpecialtySynonym
	VectorClinicalExperience = vector.ClinicalExperience
	VectorPracticeGroup      = vector.PracticeGroup
	VectorUnified            = vector.Unified
)

// Group is a set of key:value pairs added under AND by With.
type Group map[string]string

type vectorSlot struct {
	field VectorField
	value string
}

type locationSlot struct {
	place    string
	distance float64
}

// Builder is a fluent builder for provider search query strings.
// Every mutator returns the receiver; String can be called at any point.
// A Builder is not safe for concurrent use.
type Builder struct {
	filters     map[string]*FilterNode
	filterOrder []string

	vector   vectorSlot
	location locationSlot

	params     map[string]string
	paramOrder []string

	lastField string
}

// NewBuilder returns an empty Builder. It serializes to "".
func NewBuilder() *Builder {
	return &Builder{
		filters: make(map[string]*FilterNode),
		params:  make(map[string]string),
	}
}

// NewFilterNode creates a standalone node for use with Merge.
func NewFilterNode(c Conjunction, values ...string) *FilterNode {
	return filter.NewScalars(c, values...)
}

// Scalar wraps a plain filter value.
func Scalar(v string) Term { return filter.Scalar(v) }

// Nested wraps a node as a filter value.
func Nested(n *FilterNode) Term { return filter.Nested(n) }

// SetFilter adds values to field under the conjunction c.
//
// A new field gets a fresh node. An existing node of the same conjunction is
// extended. An existing node of the other conjunction is rewrapped: it
// becomes the single seed term of a new node tagged c, and the values are
// appended after it.
func (b *Builder) SetFilter(field string, c Conjunction, values ...string) *Builder {
	for _, v := range values {
		b.SetFilterTerm(field, c, filter.Scalar(v))
	}
	b.lastField = field
	return b
}

// SetFilterTerm is SetFilter for a single term, which may be a nested node.
// A nested node is copied, so later changes to it do not reach the builder.
func (b *Builder) SetFilterTerm(field string, c Conjunction, t Term) *Builder {
	c = filter.ParseConjunction(string(c))
	if t.IsNode() {
		t = filter.Nested(t.Node().Clone())
	}

	existing, ok := b.filters[field]
	switch {
	case !ok && t.IsNode() && t.Node().Conjunction() == c:
		b.filters[field] = filter.New(c, t.Node().Values()...)
		b.filterOrder = append(b.filterOrder, field)
	case !ok:
		b.filters[field] = filter.New(c, t)
		b.filterOrder = append(b.filterOrder, field)
	case existing.Conjunction() == c:
		existing.Append(t)
	default:
		b.filters[field] = filter.New(c, filter.Nested(existing)).Append(t)
	}
	b.lastField = field
	return b
}

// Merge adds a copy of n to field under n's own conjunction. When field
// already holds a node of the same conjunction the two value sets are unioned.
func (b *Builder) Merge(field string, n *FilterNode) *Builder {
	return b.SetFilterTerm(field, n.Conjunction(), filter.Nested(n.Clone()))
}

// Or extends the most recently touched filter field with alternatives.
// It does nothing if no filter has been set yet.
func (b *Builder) Or(values ...string) *Builder {
	if b.lastField == "" {
		return b
	}
	return b.SetFilter(b.lastField, OR, values...)
}

// With appends "key:value" terms under AND to the most recently touched
// filter field, one per group entry. Keys within a group are added in
// sorted order. Mixing terms of different object types is not checked.
func (b *Builder) With(groups ...Group) *Builder {
	if b.lastField == "" {
		return b
	}
	for _, g := range groups {
		keys := make([]string, 0, len(g))
		for k := range g {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.SetFilter(b.lastField, AND, k+":"+g[k])
		}
	}
	return b
}

// RemoveFromFilter removes values from field. Unknown fields and values are ignored.
func (b *Builder) RemoveFromFilter(field string, values ...string) *Builder {
	for _, v := range values {
		b.RemoveTerm(field, filter.Scalar(v))
	}
	return b
}

// RemoveTerm removes t from field. A nested term removes each of its values.
func (b *Builder) RemoveTerm(field string, t Term) *Builder {
	if n, ok := b.filters[field]; ok {
		n.Remove(t)
	}
	return b
}

// Delete removes field from the filters and the params, and clears the
// vector when it targets field.
func (b *Builder) Delete(field string) *Builder {
	if _, ok := b.filters[field]; ok {
		delete(b.filters, field)
		b.filterOrder = removeKey(b.filterOrder, field)
	}
	if _, ok := b.params[field]; ok {
		delete(b.params, field)
		b.paramOrder = removeKey(b.paramOrder, field)
	}
	if string(b.vector.field) == field {
		b.ClearVector()
	}
	if b.lastField == field {
		b.lastField = ""
	}
	return b
}

// SetVector makes (f, value) the single active search vector, replacing any previous one.
func (b *Builder) SetVector(f VectorField, value string) *Builder {
	b.vector = vectorSlot{field: f, value: value}
	return b
}

// ClearVector deactivates the search vector.
func (b *Builder) ClearVector() *Builder {
	b.vector = vectorSlot{}
	return b
}

// SetLocation replaces the location constraint.
func (b *Builder) SetLocation(place string, distance float64) *Builder {
	b.location = locationSlot{place: place, distance: distance}
	return b
}

// ClearLocation removes the location constraint.
func (b *Builder) ClearLocation() *Builder {
	b.location = locationSlot{}
	return b
}

// SetParam sets a free-form parameter such as page, per_page, sort or shuffle_seed.
// Overwriting keeps the parameter's original position.
func (b *Builder) SetParam(name string, value any) *Builder {
	if _, ok := b.params[name]; !ok {
		b.paramOrder = append(b.paramOrder, name)
	}
	b.params[name] = formatValue(value)
	return b
}

// Vector returns the active vector. ok is false when none is set.
func (b *Builder) Vector() (f VectorField, value string, ok bool) {
	return b.vector.field, b.vector.value, b.vector.field != "" && b.vector.value != ""
}

// Location returns the location constraint. ok is false when none is set.
func (b *Builder) Location() (place string, distance float64, ok bool) {
	return b.location.place, b.location.distance, b.location.place != ""
}

// Param returns the serialized value of a parameter.
func (b *Builder) Param(name string) (string, bool) {
	v, ok := b.params[name]
	return v, ok
}

// Filter returns a copy of field's node.
func (b *Builder) Filter(field string) (*FilterNode, bool) {
	n, ok := b.filters[field]
	if !ok {
		return nil, false
	}
	return n.Clone(), true
}

// Fields returns the filter fields in insertion order.
func (b *Builder) Fields() []string {
	out := make([]string, len(b.filterOrder))
	copy(out, b.filterOrder)
	return out
}

// LastField returns the field Or and With currently extend.
func (b *Builder) LastField() string { return b.lastField }

// Clone returns an independent copy of the builder.
func (b *Builder) Clone() *Builder {
	c := NewBuilder()
	for _, f := range b.filterOrder {
		c.filters[f] = b.filters[f].Clone()
	}
	c.filterOrder = append(c.filterOrder, b.filterOrder...)
	for k, v := range b.params {
		c.params[k] = v
	}
	c.paramOrder = append(c.paramOrder, b.paramOrder...)
	c.vector = b.vector
	c.location = b.location
	c.lastField = b.lastField
	return c
}

// Terms returns the key=value terms of the query in wire order:
// params, vector, location, then filters.
func (b *Builder) Terms() []string {
	terms := make([]string, 0, len(b.paramOrder)+len(b.filterOrder)+3)
	for _, k := range b.paramOrder {
		terms = append(terms, k+"="+b.params[k])
	}
	if f, v, ok := b.Vector(); ok {
		terms = append(terms, string(f)+"="+v)
	}
	if place, dist, ok := b.Location(); ok {
		terms = append(terms, "location="+place)
		if dist > 0 {
			terms = append(terms, "distance="+formatValue(dist))
		}
	}
	for _, f := range b.filterOrder {
		terms = append(terms, "filter="+f+":"+b.filters[f].String())
	}
	return terms
}

// String serializes the builder to "?k1=v1&k2=v2...", or "" when empty.
// Keys and values are emitted verbatim, without URL encoding.
func (b *Builder) String() string {
	terms := b.Terms()
	if len(terms) == 0 {
		return ""
	}
	return "?" + strings.Join(terms, "&")
}

// Serialize is an alias for String.
func (b *Builder) Serialize() string { return b.String() }

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

func removeKey(keys []string, key string) []string {
	for i, k := range keys {
		if k == key {
			return append(keys[:i], keys[i+1:]...)
		}
	}
	return keys
}
