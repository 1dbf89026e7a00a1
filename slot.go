package as3

type slotState uint8

const (
	slotAbsent slotState = iota
	slotNull
	slotPresent
)

// Slot is the three-state value cell threaded through validation. Present
// carries a value, Null is an explicit null, Absent means the value was not
// supplied (input side) or not produced (output side). Object fields absent
// from input and explicit nulls take the same nullability path, but the two
// states stay distinguishable for callers that need to know the difference.
type Slot struct {
	state slotState
	value any
}

// Present returns a Slot carrying v.
func Present(v any) Slot { return Slot{state: slotPresent, value: v} }

// Null returns the explicit-null Slot.
func Null() Slot { return Slot{state: slotNull} }

// Absent returns the not-supplied Slot. It is also the zero value.
func Absent() Slot { return Slot{} }

func (s Slot) IsPresent() bool { return s.state == slotPresent }
func (s Slot) IsNull() bool    { return s.state == slotNull }
func (s Slot) IsAbsent() bool  { return s.state == slotAbsent }

// Value returns the carried value; nil unless IsPresent.
func (s Slot) Value() any { return s.value }

// slotOf classifies a raw input value: nil is an explicit null.
func slotOf(v any) Slot {
	if v == nil {
		return Null()
	}
	return Present(v)
}

// slotOut projects an output slot into a built container position. A failed
// node leaves its slot Absent; the position is kept and filled with
// Undefined rather than dropped.
func slotOut(s Slot) any {
	switch s.state {
	case slotPresent:
		return s.value
	case slotNull:
		return nil
	default:
		return Undefined
	}
}

type undefined struct{}

func (undefined) String() string { return "<undefined>" }

// Undefined marks container positions whose element failed validation.
var Undefined = undefined{}
