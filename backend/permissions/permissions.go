// Package permissions decodes the privilege bitmask stored on a user profile
// into named capabilities.
//
// Capability k (1-indexed) is granted when bit k-1 of the mask is set.
package permissions

import (
	"fmt"
	"strings"
)

type Capability uint8

const (
	ManageEnrollment Capability = iota + 1
	ManageInterview
	ParticipateInterview
	ManageLessons
	ManageActivity
	ManageFellow
	SetManager
	IsManager
)

// Mode selects how a set of capabilities is combined in Check.
type Mode int

const (
	AllOf Mode = iota
	AnyOf
)

var all = []Capability{
	ManageEnrollment,
	ManageInterview,
	ParticipateInterview,
	ManageLessons,
	ManageActivity,
	ManageFellow,
	SetManager,
	IsManager,
}

// All returns every known capability in bit order.
func All() []Capability {
	out := make([]Capability, len(all))
	copy(out, all)
	return out
}

func (c Capability) String() string {
	switch c {
	case ManageEnrollment:
		return "manage_enrollment"
	case ManageInterview:
		return "manage_interview"
	case ParticipateInterview:
		return "participate_interview"
	case ManageLessons:
		return "manage_lessons"
	case ManageActivity:
		return "manage_activity"
	case ManageFellow:
		return "manage_fellow"
	case SetManager:
		return "set_manager"
	case IsManager:
		return "is_manager"
	default:
		return fmt.Sprintf("capability(%d)", uint8(c))
	}
}

func (c Capability) Valid() bool {
	return c >= ManageEnrollment && c <= IsManager
}

// Bit returns the mask value of the capability, 1 << (c-1).
func (c Capability) Bit() int64 {
	if !c.Valid() {
		return 0
	}
	return 1 << (uint(c) - 1)
}

// Parse resolves a capability by name or by its 1-based bit number.
func Parse(name string) (Capability, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, c := range all {
		if c.String() == name || fmt.Sprint(uint8(c)) == name {
			return c, true
		}
	}
	return 0, false
}

func Has(mask int64, c Capability) bool {
	bit := c.Bit()
	return bit != 0 && mask&bit == bit
}

// HasAll reports whether every listed capability is granted. An empty list
// is granted.
func HasAll(mask int64, caps ...Capability) bool {
	for _, c := range caps {
		if !Has(mask, c) {
			return false
		}
	}
	return true
}

// HasAny reports whether at least one listed capability is granted.
func HasAny(mask int64, caps ...Capability) bool {
	for _, c := range caps {
		if Has(mask, c) {
			return true
		}
	}
	return false
}

func Check(mask int64, mode Mode, caps ...Capability) bool {
	if mode == AnyOf {
		return HasAny(mask, caps...)
	}
	return HasAll(mask, caps...)
}

// Grant sets the capability bits and keeps every other bit.
func Grant(mask int64, caps ...Capability) int64 {
	for _, c := range caps {
		mask |= c.Bit()
	}
	return mask
}

// Revoke clears the capability bits and keeps every other bit.
func Revoke(mask int64, caps ...Capability) int64 {
	for _, c := range caps {
		mask &^= c.Bit()
	}
	return mask
}

// Names decodes the mask into capability names in bit order.
func Names(mask int64) []string {
	names := make([]string, 0, len(all))
	for _, c := range all {
		if Has(mask, c) {
			names = append(names, c.String())
		}
	}
	return names
}

// FromNames parses capability names. Unknown names are reported together.
func FromNames(names []string) ([]Capability, error) {
	caps := make([]Capability, 0, len(names))
	var unknown []string
	for _, name := range names {
		c, ok := Parse(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		caps = append(caps, c)
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown capabilities: %s", strings.Join(unknown, ", "))
	}
	return caps, nil
}

// Describe renders a capability list for error messages, e.g. "manage_interview or participate_interview".
func Describe(mode Mode, caps ...Capability) string {
	parts := make([]string, len(caps))
	for i, c := range caps {
		parts[i] = c.String()
	}
	sep := " and "
	if mode == AnyOf {
		sep = " or "
	}
	return strings.Join(parts, sep)
}
