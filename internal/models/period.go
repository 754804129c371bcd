package models

import "time"

// Semester identifies one half of an academic year.
type Semester string

const (
	SemesterFirst  Semester = "FIRST"
	SemesterSecond Semester = "SECOND"
)

// Valid reports whether the semester is a known value.
func (s Semester) Valid() bool {
	return s == SemesterFirst || s == SemesterSecond
}

// Term identifies a grading sub-period within a semester.
type Term string

const (
	TermPrelim  Term = "PRELIM"
	TermMidterm Term = "MIDTERM"
	TermFinal   Term = "FINAL"
)

var termOrder = []Term{TermPrelim, TermMidterm, TermFinal}

// Valid reports whether the term is a known value.
func (t Term) Valid() bool {
	for _, known := range termOrder {
		if t == known {
			return true
		}
	}
	return false
}

// Index returns the ordinal position of the term, or -1 when unknown.
func (t Term) Index() int {
	for i, known := range termOrder {
		if t == known {
			return i
		}
	}
	return -1
}

// Next returns the successor term. ok is false for FINAL and unknown terms.
func (t Term) Next() (next Term, ok bool) {
	idx := t.Index()
	if idx < 0 || idx+1 >= len(termOrder) {
		return "", false
	}
	return termOrder[idx+1], true
}

// GradingPeriod is the per-institution record governing when grade entry
// is permitted. Mutations are guarded by the Version column.
type GradingPeriod struct {
	InstitutionID string     `db:"institution_id" json:"institution_id"`
	AcademicYear  string     `db:"academic_year" json:"academic_year"`
	Semester      Semester   `db:"semester" json:"semester"`
	Term          Term       `db:"term" json:"term"`
	PrelimDone    bool       `db:"prelim_done" json:"prelim_done"`
	MidtermDone   bool       `db:"midterm_done" json:"midterm_done"`
	FinalDone     bool       `db:"final_done" json:"final_done"`
	WindowPending bool       `db:"window_pending" json:"window_pending"`
	WindowActive  bool       `db:"window_active" json:"window_active"`
	StartAt       *time.Time `db:"start_at" json:"start_at,omitempty"`
	EndAt         *time.Time `db:"end_at" json:"end_at,omitempty"`
	LastTickAt    *time.Time `db:"last_tick_at" json:"last_tick_at,omitempty"`
	Version       int        `db:"version" json:"version"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// TermDone reports whether the given term has been closed out.
func (p *GradingPeriod) TermDone(t Term) bool {
	switch t {
	case TermPrelim:
		return p.PrelimDone
	case TermMidterm:
		return p.MidtermDone
	case TermFinal:
		return p.FinalDone
	}
	return false
}

// MarkTermDone flips the done flag for the given term.
func (p *GradingPeriod) MarkTermDone(t Term) {
	switch t {
	case TermPrelim:
		p.PrelimDone = true
	case TermMidterm:
		p.MidtermDone = true
	case TermFinal:
		p.FinalDone = true
	}
}

// ResetTermFlags clears all done flags, used on year and semester rollovers.
func (p *GradingPeriod) ResetTermFlags() {
	p.PrelimDone = false
	p.MidtermDone = false
	p.FinalDone = false
}

// WindowStatus is a lightweight projection of the scheduling state.
type WindowStatus struct {
	Pending    bool       `json:"pending"`
	Active     bool       `json:"active"`
	StartAt    *time.Time `json:"start_at,omitempty"`
	EndAt      *time.Time `json:"end_at,omitempty"`
	LastTickAt *time.Time `json:"last_tick_at,omitempty"`
}

// Window returns the scheduling projection of the period.
func (p *GradingPeriod) Window() WindowStatus {
	return WindowStatus{
		Pending:    p.WindowPending,
		Active:     p.WindowActive,
		StartAt:    p.StartAt,
		EndAt:      p.EndAt,
		LastTickAt: p.LastTickAt,
	}
}
