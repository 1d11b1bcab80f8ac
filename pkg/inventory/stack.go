package inventory

// Stack is the value held by a single slot. A stack with a nil Item is the
// empty slot value; its Quantity is always zero and its Parameters empty.
type Stack struct {
	Item       *ItemDefinition
	Quantity   int
	Parameters Parameters
	// Region is bound to the slot, not to the content: swaps exchange
	// everything except this field.
	Region Region
}

// EmptyStack returns the canonical empty value for a slot in region.
func EmptyStack(region Region) Stack {
	return Stack{Parameters: Parameters{}, Region: region}
}

// newStack builds a stack owning a private copy of state, falling back to the
// item defaults when state is nil.
func newStack(region Region, item *ItemDefinition, quantity int, state Parameters) Stack {
	src := state
	if src == nil {
		src = item.Defaults
	}
	return Stack{
		Item:       item,
		Quantity:   quantity,
		Parameters: src.Clone(),
		Region:     region,
	}
}

// IsEmpty reports whether the slot holds nothing.
func (s Stack) IsEmpty() bool {
	return s.Item == nil
}

// ItemID returns the held item's identity, or "" for an empty slot.
func (s Stack) ItemID() ItemID {
	if s.Item == nil {
		return ""
	}
	return s.Item.ID
}

// Headroom is how many more units the stack can absorb.
func (s Stack) Headroom() int {
	if s.Item == nil {
		return 0
	}
	if room := s.Item.stackLimit() - s.Quantity; room > 0 {
		return room
	}
	return 0
}

// Clone returns a deep copy safe to hand to callers.
func (s Stack) Clone() Stack {
	s.Parameters = s.Parameters.Clone()
	return s
}

// withQuantity returns a copy with a new quantity and its own parameter list.
func (s Stack) withQuantity(q int) Stack {
	return Stack{
		Item:       s.Item,
		Quantity:   q,
		Parameters: s.Parameters.Clone(),
		Region:     s.Region,
	}
}

// takeContent returns this slot holding other's content. The region tag stays
// with the receiver.
func (s Stack) takeContent(other Stack) Stack {
	return Stack{
		Item:       other.Item,
		Quantity:   other.Quantity,
		Parameters: other.Parameters,
		Region:     s.Region,
	}
}
