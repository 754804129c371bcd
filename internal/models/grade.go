package models

import "time"

// Remark flags a special grading outcome for a student in one term.
type Remark string

const (
	RemarkWithdrawn  Remark = "W"
	RemarkIncomplete Remark = "INC"
)

// Valid reports whether the remark is a known value.
func (r Remark) Valid() bool {
	return r == RemarkWithdrawn || r == RemarkIncomplete
}

// Grade is one student's grade for a subject in a single term.
type Grade struct {
	ID           string    `db:"id" json:"id"`
	EnrollmentID string    `db:"enrollment_id" json:"enrollment_id"`
	SubjectID    string    `db:"subject_id" json:"subject_id"`
	Term         Term      `db:"term" json:"term"`
	GradeValue   *float64  `db:"grade_value" json:"grade_value,omitempty"`
	Remark       *Remark   `db:"remark" json:"remark,omitempty"`
	StudentID    string    `db:"student_id" json:"student_id"`
	StudentName  string    `db:"student_name" json:"student_name"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// GradeCell identifies a single editable grade target for gate evaluation.
type GradeCell struct {
	InstructorID string
	SubjectID    string
	Department   string
	Section      string
	AcademicYear string
	Semester     Semester
	Term         Term
}

// GradeFilter scopes grade sheet listings.
type GradeFilter struct {
	SubjectID    string
	AcademicYear string
	Semester     Semester
	Section      string
	Term         Term
}

// BulkGradeResult reports the outcome of a multi-row grade write.
// Rows whose (student, subject) pair resolved to no enrollment are
// reported in Missing; Locked lists students frozen by a later-term remark.
type BulkGradeResult struct {
	MatchedCount  int      `json:"matched_count"`
	ModifiedCount int      `json:"modified_count"`
	Missing       []string `json:"missing,omitempty"`
	Locked        []string `json:"locked,omitempty"`
}
