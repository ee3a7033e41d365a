package models

import "time"

// SectionOut is one flattened section row in a check response. Primary
// sections carry whether their group forms an open enrollment path.
type SectionOut struct {
	Section        string `json:"section"`
	Kind           string `json:"kind"`
	Status         string `json:"status"`
	IsOpen         bool   `json:"is_open"`
	EnrollablePath *bool  `json:"enrollable_path,omitempty"`
}

// CheckResult is the answer to a one-off availability check.
type CheckResult struct {
	CheckedAt    time.Time    `json:"checked_at"`
	CourseNumber string       `json:"course_number"`
	CourseTitle  string       `json:"course_title"`
	Term         string       `json:"term"`
	Enrollable   bool         `json:"enrollable"`
	Sections     []SectionOut `json:"sections"`
}

// NewCheckResult flattens a course status into the response shape.
func NewCheckResult(status CourseStatus, term string, checkedAt time.Time) CheckResult {
	result := CheckResult{
		CheckedAt:    checkedAt,
		CourseNumber: status.CourseNumber,
		CourseTitle:  status.CourseTitle,
		Term:         term,
		Enrollable:   status.IsEnrollable(),
	}
	for _, group := range status.Groups {
		path := group.Enrollable()
		primary := SectionOut{
			Section:        group.Primary.Name,
			Kind:           group.Primary.Kind,
			Status:         group.Primary.Status,
			IsOpen:         group.Primary.IsOpen,
			EnrollablePath: &path,
		}
		result.Sections = append(result.Sections, primary)
		for _, d := range group.Discussions {
			result.Sections = append(result.Sections, SectionOut{
				Section: d.Name,
				Kind:    d.Kind,
				Status:  d.Status,
				IsOpen:  d.IsOpen,
			})
		}
	}
	return result
}
