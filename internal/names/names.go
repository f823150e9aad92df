// Package names provides tagged names and the fresh-name source shared by
// the AST, the type grammar and the checker. A VName pairs the textual base
// name with a numeric tag, so two bindings of the same source identifier
// never collide.
package names

import "fmt"

// VName is a tagged name. The zero tag is reserved for names that come
// straight from the resolver-provided root environment.
type VName struct {
	Base string
	Tag  int
}

func (v VName) String() string {
	if v.Tag == 0 {
		return v.Base
	}
	return fmt.Sprintf("%s_%d", v.Base, v.Tag)
}

// Source hands out fresh names. Tags are strictly increasing and never
// reused, which lets the checker use a tag snapshot to tell variables
// created during one binding apart from older ones.
type Source struct {
	counter int
}

// NewSource returns a source whose first tag is 1.
func NewSource() *Source {
	return &Source{}
}

// Fresh returns a new VName with the given base and the next tag.
func (s *Source) Fresh(base string) VName {
	s.counter++
	return VName{Base: base, Tag: s.counter}
}

// Peek returns the tag the next Fresh call will use.
func (s *Source) Peek() int {
	return s.counter + 1
}
