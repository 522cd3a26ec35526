package types

import "net/url"

type FilterField string

const (
	FilterSubject  FilterField = "subject"
	FilterCourse   FilterField = "course"
	FilterSemester FilterField = "semester"
	FilterCollege  FilterField = "college"
)

var FilterFields = []FilterField{FilterSubject, FilterCourse, FilterSemester, FilterCollege}

func (f FilterField) Label() string {
	switch f {
	case FilterSubject:
		return "Subject"
	case FilterCourse:
		return "Course"
	case FilterSemester:
		return "Semester"
	case FilterCollege:
		return "College"
	default:
		return string(f)
	}
}

// NoteQuery is the full input set of the note listing: free text plus the
// four categorical filters.
type NoteQuery struct {
	Search   string
	Subject  string
	Course   string
	Semester string
	College  string
}

func (q NoteQuery) Filter(field FilterField) string {
	switch field {
	case FilterSubject:
		return q.Subject
	case FilterCourse:
		return q.Course
	case FilterSemester:
		return q.Semester
	case FilterCollege:
		return q.College
	default:
		return ""
	}
}

func (q NoteQuery) WithFilter(field FilterField, value string) NoteQuery {
	switch field {
	case FilterSubject:
		q.Subject = value
	case FilterCourse:
		q.Course = value
	case FilterSemester:
		q.Semester = value
	case FilterCollege:
		q.College = value
	}
	return q
}

func (q NoteQuery) IsZero() bool {
	return q == NoteQuery{}
}

// Values encodes every parameter, including empty ones, so the backend
// always receives the same five keys.
func (q NoteQuery) Values() url.Values {
	values := url.Values{}
	values.Set("search", q.Search)
	values.Set("subject", q.Subject)
	values.Set("course", q.Course)
	values.Set("semester", q.Semester)
	values.Set("college", q.College)
	return values
}

type ReviewStatus string

const (
	ReviewStatusAll      ReviewStatus = "all"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusPending  ReviewStatus = "pending"
)

func (s ReviewStatus) Next() ReviewStatus {
	switch s {
	case ReviewStatusAll:
		return ReviewStatusApproved
	case ReviewStatusApproved:
		return ReviewStatusPending
	default:
		return ReviewStatusAll
	}
}
