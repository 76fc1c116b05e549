package library

import (
	"encoding/json"
	"slices"
	"strings"
)

// Skill is an opaque competency code, e.g. "suma-basica".
type Skill string

// SkillSet is an immutable set of skills that remembers declaration order.
// The zero value is an empty set.
type SkillSet struct {
	order []Skill
	index map[Skill]struct{}
}

// NewSkillSet builds a set from skills, dropping duplicates and keeping the
// first occurrence of each.
func NewSkillSet(skills ...Skill) SkillSet {
	s := SkillSet{index: make(map[Skill]struct{}, len(skills))}
	for _, sk := range skills {
		if _, ok := s.index[sk]; ok {
			continue
		}
		s.index[sk] = struct{}{}
		s.order = append(s.order, sk)
	}
	return s
}

// SkillSetOf is NewSkillSet for plain string codes.
func SkillSetOf(codes ...string) SkillSet {
	skills := make([]Skill, len(codes))
	for i, c := range codes {
		skills[i] = Skill(c)
	}
	return NewSkillSet(skills...)
}

// Len returns the number of distinct skills.
func (s SkillSet) Len() int { return len(s.order) }

// Contains reports whether sk is in the set.
func (s SkillSet) Contains(sk Skill) bool {
	_, ok := s.index[sk]
	return ok
}

// ContainsAll reports whether s is a superset of other.
func (s SkillSet) ContainsAll(other SkillSet) bool {
	if other.Len() > s.Len() {
		return false
	}
	for _, sk := range other.order {
		if !s.Contains(sk) {
			return false
		}
	}
	return true
}

// Intersects reports whether s and other share at least one skill.
func (s SkillSet) Intersects(other SkillSet) bool {
	small, large := s, other
	if small.Len() > large.Len() {
		small, large = large, small
	}
	for _, sk := range small.order {
		if large.Contains(sk) {
			return true
		}
	}
	return false
}

// Union returns the skills of s followed by the skills of other not in s.
func (s SkillSet) Union(other SkillSet) SkillSet {
	all := make([]Skill, 0, s.Len()+other.Len())
	all = append(all, s.order...)
	all = append(all, other.order...)
	return NewSkillSet(all...)
}

// Slice returns the skills in declaration order.
func (s SkillSet) Slice() []Skill {
	return slices.Clone(s.order)
}

// Strings returns the skill codes in declaration order.
func (s SkillSet) Strings() []string {
	out := make([]string, len(s.order))
	for i, sk := range s.order {
		out[i] = string(sk)
	}
	return out
}

func (s SkillSet) String() string {
	return "[" + strings.Join(s.Strings(), ", ") + "]"
}

// MarshalJSON encodes the set as an array of codes in declaration order.
func (s SkillSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

// UnmarshalJSON decodes an array of codes.
func (s *SkillSet) UnmarshalJSON(data []byte) error {
	var codes []string
	if err := json.Unmarshal(data, &codes); err != nil {
		return err
	}
	*s = SkillSetOf(codes...)
	return nil
}
