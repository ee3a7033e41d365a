package models

// Section is one lecture or discussion row on the registrar results page.
type Section struct {
	Name   string `json:"section"`
	Kind   string `json:"kind"`
	Status string `json:"status"`
	IsOpen bool   `json:"is_open"`
}

// SectionGroup is a lecture together with its discussions. A group is an
// enrollable path when the lecture is open and either it has no discussions
// or at least one discussion is open.
type SectionGroup struct {
	Primary     Section
	Discussions []Section
}

// Enrollable reports whether this group offers an open path into the course.
func (g SectionGroup) Enrollable() bool {
	if !g.Primary.IsOpen {
		return false
	}
	if len(g.Discussions) == 0 {
		return true
	}
	for _, d := range g.Discussions {
		if d.IsOpen {
			return true
		}
	}
	return false
}

// CourseStatus is the resolver's answer for one course within one term.
// It lives for a single tick (or a single one-off check) and is never stored.
type CourseStatus struct {
	CourseNumber string
	CourseTitle  string
	Groups       []SectionGroup
}

// IsEnrollable aggregates the group-level rule: any open path counts.
func (c CourseStatus) IsEnrollable() bool {
	for _, g := range c.Groups {
		if g.Enrollable() {
			return true
		}
	}
	return false
}
