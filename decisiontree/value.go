package decisiontree

import "strconv"

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindLabel
	KindOutcome
	KindCounter
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindLabel:
		return "label"
	case KindOutcome:
		return "outcome"
	case KindCounter:
		return "counter"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is the item stored at a node: a category label, a boolean split
// outcome or a tally. The zero Value is the empty marker.
type Value struct {
	kind    Kind
	label   string
	outcome bool
	count   int
}

// Label returns a category label value.
func Label(s string) Value { return Value{kind: KindLabel, label: s} }

// Outcome returns a boolean split value.
func Outcome(b bool) Value { return Value{kind: KindOutcome, outcome: b} }

// Counter returns a tally value.
func Counter(n int) Value { return Value{kind: KindCounter, count: n} }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether v is the zero value.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// IsCounter reports whether v holds a tally.
func (v Value) IsCounter() bool { return v.kind == KindCounter }

// AsLabel returns the label and whether v holds one.
func (v Value) AsLabel() (string, bool) { return v.label, v.kind == KindLabel }

// AsOutcome returns the outcome and whether v holds one.
func (v Value) AsOutcome() (bool, bool) { return v.outcome, v.kind == KindOutcome }

// AsCounter returns the tally and whether v holds one.
func (v Value) AsCounter() (int, bool) { return v.count, v.kind == KindCounter }

// Equal reports whether both values hold the same variant and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindLabel:
		return v.label == o.label
	case KindOutcome:
		return v.outcome == o.outcome
	case KindCounter:
		return v.count == o.count
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindLabel:
		return v.label
	case KindOutcome:
		return strconv.FormatBool(v.outcome)
	case KindCounter:
		return strconv.Itoa(v.count)
	default:
		return ""
	}
}
