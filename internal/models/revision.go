package models

import "time"

// RevisionScope pins a revision request to the exact grade sheet it reopens.
type RevisionScope struct {
	InstructorID string   `db:"instructor_id" json:"instructor_id"`
	SubjectID    string   `db:"subject_id" json:"subject_id"`
	AcademicYear string   `db:"academic_year" json:"academic_year"`
	Semester     Semester `db:"semester" json:"semester"`
	Department   string   `db:"department" json:"department"`
	Section      string   `db:"section" json:"section"`
	Term         Term     `db:"term" json:"term"`
}

// RevisionRequest is a registrar-granted exception allowing an instructor
// to edit an otherwise-closed term. At most one active request may exist
// per scope.
type RevisionRequest struct {
	ID             string     `db:"id" json:"id"`
	RequestCode    string     `db:"request_code" json:"request_code"`
	InstructorName string     `db:"instructor_name" json:"instructor_name"`
	RevisionScope
	IsActive  bool       `db:"is_active" json:"is_active"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	ClosedAt  *time.Time `db:"closed_at" json:"closed_at,omitempty"`
}

// RevisionFilter captures list filters for revision requests.
type RevisionFilter struct {
	InstructorID string
	SubjectID    string
	AcademicYear string
	Semester     Semester
	Term         Term
	ActiveOnly   bool
	Page         int
	PageSize     int
}
