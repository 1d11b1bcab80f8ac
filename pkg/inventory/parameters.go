package inventory

// ParameterKind enumerates the numeric attributes an item can track.
type ParameterKind int

const (
	ParameterHealthRecovery ParameterKind = iota
	ParameterClipAmmoRemaining
	ParameterCurrentWeaponAmmoRecovery
)

// String returns the catalog name of the parameter kind.
func (k ParameterKind) String() string {
	switch k {
	case ParameterHealthRecovery:
		return "health_recovery"
	case ParameterClipAmmoRemaining:
		return "clip_ammo_remaining"
	case ParameterCurrentWeaponAmmoRecovery:
		return "current_weapon_ammo_recovery"
	default:
		return "unknown"
	}
}

// ParseParameterKind resolves a catalog name into a ParameterKind.
func ParseParameterKind(s string) (ParameterKind, bool) {
	for _, k := range []ParameterKind{ParameterHealthRecovery, ParameterClipAmmoRemaining, ParameterCurrentWeaponAmmoRecovery} {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// ParameterDescriptor names a typed numeric attribute. Descriptors are shared
// by pointer across every stack of an item and are never mutated.
type ParameterDescriptor struct {
	Name string
	Kind ParameterKind
}

// ParameterValue pairs a descriptor with its current value.
type ParameterValue struct {
	Descriptor *ParameterDescriptor
	Value      float64
}

// SameParameter compares descriptor identity only; the value is ignored so a
// parameter can be found and replaced regardless of its magnitude.
func (p ParameterValue) SameParameter(other ParameterValue) bool {
	return p.Descriptor == other.Descriptor
}

// Is reports whether the value belongs to a descriptor of the given kind.
func (p ParameterValue) Is(kind ParameterKind) bool {
	return p.Descriptor != nil && p.Descriptor.Kind == kind
}

// WithValue returns a copy carrying a new value.
func (p ParameterValue) WithValue(v float64) ParameterValue {
	return ParameterValue{Descriptor: p.Descriptor, Value: v}
}

// Name returns the descriptor's display name, or "" for a bare value.
func (p ParameterValue) Name() string {
	if p.Descriptor == nil {
		return ""
	}
	return p.Descriptor.Name
}

// Parameters is an ordered list of parameter values. A stack owns its list
// exclusively; use Clone whenever a list crosses a stack boundary.
type Parameters []ParameterValue

// Clone returns an independent copy. A nil receiver yields an empty, non-nil
// list so callers never share the backing array.
func (ps Parameters) Clone() Parameters {
	out := make(Parameters, len(ps))
	copy(out, ps)
	return out
}

// Index returns the position of the first value of the given kind.
func (ps Parameters) Index(kind ParameterKind) int {
	for i, p := range ps {
		if p.Is(kind) {
			return i
		}
	}
	return -1
}

// IndexOf returns the position of the value sharing p's descriptor.
func (ps Parameters) IndexOf(p ParameterValue) int {
	for i, existing := range ps {
		if existing.SameParameter(p) {
			return i
		}
	}
	return -1
}

// Get returns the first value of the given kind.
func (ps Parameters) Get(kind ParameterKind) (ParameterValue, bool) {
	if i := ps.Index(kind); i >= 0 {
		return ps[i], true
	}
	return ParameterValue{}, false
}

// Set replaces the value of the first parameter of the given kind in place.
// It reports false when the list has no such parameter.
func (ps Parameters) Set(kind ParameterKind, v float64) bool {
	i := ps.Index(kind)
	if i < 0 {
		return false
	}
	ps[i] = ps[i].WithValue(v)
	return true
}
