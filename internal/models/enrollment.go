package models

import "time"

// Enrollment links a student to a subject offering for one semester.
type Enrollment struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	StudentName  string    `db:"student_name" json:"student_name"`
	SubjectID    string    `db:"subject_id" json:"subject_id"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	Semester     Semester  `db:"semester" json:"semester"`
	Department   string    `db:"department" json:"department"`
	Section      string    `db:"section" json:"section"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// EnrollmentFilter captures filters for enrollment listings.
type EnrollmentFilter struct {
	StudentID    string
	SubjectID    string
	AcademicYear string
	Semester     Semester
	Section      string
	Page         int
	PageSize     int
}
