package types

import (
	"encoding/json"
	"fmt"
)

// TrustTier is the ordered trust/engagement classification of a candidate.
// Transitions are monotonic upward except for explicit manual demotion.
type TrustTier int

const (
	TierCold TrustTier = iota
	TierWarm
	TierTrusted
)

var tierNames = map[TrustTier]string{
	TierCold:    "cold",
	TierWarm:    "warm",
	TierTrusted: "trusted",
}

func (t TrustTier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// Valid reports whether t is one of the defined tiers.
func (t TrustTier) Valid() bool {
	_, ok := tierNames[t]
	return ok
}

// ParseTier converts a tier name back into a TrustTier.
func ParseTier(s string) (TrustTier, error) {
	for t, name := range tierNames {
		if name == s {
			return t, nil
		}
	}
	return TierCold, fmt.Errorf("unknown trust tier %q", s)
}

// MarshalJSON encodes the tier as its name.
func (t TrustTier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a tier from its name.
func (t *TrustTier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTier(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Tiers lists all tiers from most to least trusted, the order in which
// the planner draws candidates.
func Tiers() []TrustTier {
	return []TrustTier{TierTrusted, TierWarm, TierCold}
}
