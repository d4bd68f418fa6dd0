package filter

import "strings"

// Conjunction joins the values of one filter field.
type Conjunction string

// Conjunction constants.
const (
	Or  Conjunction = "or"
	And Conjunction = "and"
)

// ParseConjunction maps a token to a Conjunction.
// Anything other than "and" (case-insensitive) or "^" normalizes to Or.
func ParseConjunction(token string) Conjunction {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "and", "^":
		return And
	default:
		return Or
	}
}

// Separator returns the literal joining values on the wire: "|" for Or, "^" for And.
func (c Conjunction) Separator() string {
	if c == And {
		return "^"
	}
	return "|"
}

// Term is one value of a Node: either a plain scalar or a nested Node.
type Term struct {
	scalar string
	node   *Node
}

// Scalar wraps a plain value.
func Scalar(v string) Term { return Term{scalar: v} }

// Nested wraps a child node.
func Nested(n *Node) Term { return Term{node: n} }

// IsNode reports whether the term carries a nested node.
func (t Term) IsNode() bool { return t.node != nil }

// Node returns the nested node, or nil for scalars.
func (t Term) Node() *Node { return t.node }

// Value returns the scalar value ("" for nested nodes).
func (t Term) Value() string { return t.scalar }

// String renders the term as it appears inside a filter clause.
// Nested nodes are rendered without grouping.
func (t Term) String() string {
	if t.node != nil {
		return t.node.String()
	}
	return t.scalar
}

// equal compares scalars by value and nodes by identity.
func (t Term) equal(o Term) bool {
	if t.node != nil || o.node != nil {
		return t.node == o.node
	}
	return t.scalar == o.scalar
}

// Node holds the ordered values of one field and the conjunction joining them.
type Node struct {
	values      []Term
	conjunction Conjunction
}

// New creates a Node seeded with terms. An unrecognized conjunction becomes Or.
func New(c Conjunction, terms ...Term) *Node {
	if c != And {
		c = Or
	}
	values := make([]Term, len(terms))
	copy(values, terms)
	return &Node{values: values, conjunction: c}
}

// NewScalars creates a Node from plain values.
func NewScalars(c Conjunction, values ...string) *Node {
	terms := make([]Term, len(values))
	for i, v := range values {
		terms[i] = Scalar(v)
	}
	return New(c, terms...)
}

// Conjunction returns the operator joining this node's values.
func (n *Node) Conjunction() Conjunction { return n.conjunction }

// Values returns a copy of the node's terms in insertion order.
func (n *Node) Values() []Term {
	out := make([]Term, len(n.values))
	copy(out, n.values)
	return out
}

// Len returns the number of top-level terms.
func (n *Node) Len() int { return len(n.values) }

// Append adds a term to the node.
//
// A nested node with the same conjunction is merged by set union: the
// combined sequence keeps first-seen order and collapses duplicates.
// Any other term, including a node of the other conjunction, is appended
// as one raw element.
func (n *Node) Append(t Term) *Node {
	if t.node != nil && t.node.conjunction == n.conjunction {
		n.values = union(n.values, t.node.values)
		return n
	}
	n.values = append(n.values, t)
	return n
}

// Remove drops every occurrence of t from the node. Removing a nested node
// removes each of its values instead. Missing values are ignored.
func (n *Node) Remove(t Term) *Node {
	if t.node != nil {
		for _, sub := range t.node.Values() {
			n.Remove(sub)
		}
		return n
	}
	kept := n.values[:0]
	for _, v := range n.values {
		if !v.equal(t) {
			kept = append(kept, v)
		}
	}
	n.values = kept
	return n
}

// String joins the values with the conjunction separator.
// Separator characters inside values are not escaped.
func (n *Node) String() string {
	parts := make([]string, len(n.values))
	for i, v := range n.values {
		parts[i] = v.String()
	}
	return strings.Join(parts, n.conjunction.Separator())
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	c := &Node{values: make([]Term, len(n.values)), conjunction: n.conjunction}
	for i, v := range n.values {
		if v.node != nil {
			c.values[i] = Nested(v.node.Clone())
			continue
		}
		c.values[i] = v
	}
	return c
}

func union(a, b []Term) []Term {
	out := make([]Term, 0, len(a)+len(b))
	for _, seq := range [][]Term{a, b} {
		for _, t := range seq {
			if !contains(out, t) {
				out = append(out, t)
			}
		}
	}
	return out
}

func contains(ts []Term, t Term) bool {
	for _, x := range ts {
		if x.equal(t) {
			return true
		}
	}
	return false
}
