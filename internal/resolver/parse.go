package resolver

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/bruinwatch/bruinwatch-api/internal/models"
)

// parseResults extracts per-course section availability from the results page.
// Each course is a div.class-record with a heading and one row per section;
// lecture rows open a new section group, discussion rows attach to the
// current one.
func parseResults(body io.Reader) ([]models.CourseStatus, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var statuses []models.CourseStatus
	doc.Find("div.class-record").Each(func(_ int, record *goquery.Selection) {
		heading := strings.TrimSpace(record.Find(".course-head, h3").First().Text())
		number, title := splitHeading(heading)
		normalized, err := models.NormalizeCourseNumber(number)
		if err != nil {
			return
		}

		status := models.CourseStatus{CourseNumber: normalized, CourseTitle: title}
		record.Find(".section-row").Each(func(_ int, row *goquery.Selection) {
			section := models.Section{
				Name:   strings.TrimSpace(row.Find(".section-name").First().Text()),
				Kind:   strings.TrimSpace(row.Find(".section-type").First().Text()),
				Status: strings.TrimSpace(row.Find(".section-status").First().Text()),
			}
			section.IsOpen = isOpenStatus(section.Status)

			if isPrimaryKind(section.Kind) || len(status.Groups) == 0 {
				status.Groups = append(status.Groups, models.SectionGroup{Primary: section})
				return
			}
			last := &status.Groups[len(status.Groups)-1]
			last.Discussions = append(last.Discussions, section)
		})
		statuses = append(statuses, status)
	})

	if len(statuses) == 0 {
		return nil, fmt.Errorf("no course records found on page")
	}
	return statuses, nil
}

// splitHeading separates "COM SCI 31 - Introduction to Computer Science I"
// into the course token and title.
func splitHeading(heading string) (number, title string) {
	if idx := strings.Index(heading, " - "); idx >= 0 {
		return strings.TrimSpace(heading[:idx]), strings.TrimSpace(heading[idx+3:])
	}
	return strings.TrimSpace(heading), ""
}

// isPrimaryKind reports whether a section kind starts a new enrollment path.
// Lectures and seminars are primary; discussions and labs attach to them.
func isPrimaryKind(kind string) bool {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "lec", "lecture", "sem", "seminar":
		return true
	}
	return false
}

// isOpenStatus interprets the registrar status text. Anything other than an
// explicit Open prefix (waitlist, closed, cancelled, tentative) counts as not
// open.
func isOpenStatus(status string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(status)), "open")
}
