package models

import "encoding/json"

// TagSet is an insertion-ordered, add-only set of string tags. It backs the
// cumulative hesitation-point and risk-factor collections on a booking
// context: there is no removal API, so "never shrinks" holds by construction.
type TagSet struct {
	tags  []string
	index map[string]struct{}
}

// NewTagSet returns a set seeded with the given tags.
func NewTagSet(tags ...string) *TagSet {
	s := &TagSet{}
	s.Add(tags...)
	return s
}

// Add records each tag not already present, preserving first-seen order.
// Empty tags are ignored.
func (s *TagSet) Add(tags ...string) {
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, seen := s.index[tag]; seen {
			continue
		}
		s.index[tag] = struct{}{}
		s.tags = append(s.tags, tag)
	}
}

// Has reports whether the tag has been recorded.
func (s *TagSet) Has(tag string) bool {
	_, ok := s.index[tag]
	return ok
}

// Values returns the tags in first-seen order. The returned slice is a copy.
func (s *TagSet) Values() []string {
	out := make([]string, len(s.tags))
	copy(out, s.tags)
	return out
}

// Len returns the number of distinct tags recorded.
func (s *TagSet) Len() int {
	return len(s.tags)
}

// MarshalJSON encodes the set as an ordered JSON array.
func (s *TagSet) MarshalJSON() ([]byte, error) {
	if s.tags == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.tags)
}

// UnmarshalJSON rebuilds the set from a JSON array, preserving order.
func (s *TagSet) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return err
	}
	s.tags = nil
	s.index = make(map[string]struct{})
	s.Add(tags...)
	return nil
}
