package metadata

// Tier identifies one of the three places a field can be resolved from.
type Tier int

const (
	TierFlat Tier = iota
	TierImage
	TierEXIF
)

func (t Tier) String() string {
	switch t {
	case TierFlat:
		return "flat"
	case TierImage:
		return "Image"
	case TierEXIF:
		return "EXIF"
	default:
		return "unknown"
	}
}

// AllTiers is the canonical resolution order: flat, then Image, then EXIF.
var AllTiers = []Tier{TierFlat, TierImage, TierEXIF}

// Value is the result of a lookup. The zero Value is absent, which is
// distinct from a present empty string.
type Value struct {
	raw     any
	tier    Tier
	present bool
}

// Absent returns the absent sentinel.
func Absent() Value { return Value{} }

// Present reports whether the field was found in any tier.
func (v Value) Present() bool { return v.present }

// Raw returns the stored value. Namespaced tiers always yield a string.
func (v Value) Raw() any { return v.raw }

// Tier returns the tier the value was resolved from.
func (v Value) Tier() Tier { return v.tier }

// String returns the stringified value, or "" when absent.
func (v Value) String() string {
	if !v.present {
		return ""
	}
	return Stringify(v.raw)
}

// Ptr returns a pointer to the string form, or nil when absent.
func (v Value) Ptr() *string {
	if !v.present {
		return nil
	}
	s := v.String()
	return &s
}

// Views pairs the two decoded metadata views of one image. Either may be
// nil; nil and empty are treated identically.
type Views struct {
	Flat       FlatView
	Namespaced NamespacedView
}

// Lookup resolves name through flat, "Image <name>" and "EXIF <name>" in
// that order.
func (vs Views) Lookup(name string) Value {
	return vs.LookupIn(name, AllTiers...)
}

// LookupIn resolves name through the given tiers only, in the order given.
func (vs Views) LookupIn(name string, tiers ...Tier) Value {
	for _, t := range tiers {
		switch t {
		case TierFlat:
			if v, ok := vs.Flat[name]; ok {
				return Value{raw: v, tier: t, present: true}
			}
		case TierImage:
			if v, ok := vs.Namespaced[Key(GroupImage, name)]; ok {
				return Value{raw: Stringify(v), tier: t, present: true}
			}
		case TierEXIF:
			if v, ok := vs.Namespaced[Key(GroupEXIF, name)]; ok {
				return Value{raw: Stringify(v), tier: t, present: true}
			}
		}
	}
	return Absent()
}

// Empty reports whether neither view holds any entry.
func (vs Views) Empty() bool {
	return len(vs.Flat) == 0 && len(vs.Namespaced) == 0
}
