package models

import "time"

// ComplaintCategory enumerates the fixed complaint categories.
type ComplaintCategory string

const (
	CategoryInfrastructure ComplaintCategory = "Infrastructure"
	CategoryCleanliness    ComplaintCategory = "Cleanliness"
	CategoryFaculty        ComplaintCategory = "Faculty"
	CategoryIT             ComplaintCategory = "IT"
	CategoryLibrary        ComplaintCategory = "Library"
	CategorySecurity       ComplaintCategory = "Security"
	CategoryGeneral        ComplaintCategory = "General"
)

// Categories lists every recognised complaint category.
var Categories = []ComplaintCategory{
	CategoryInfrastructure,
	CategoryCleanliness,
	CategoryFaculty,
	CategoryIT,
	CategoryLibrary,
	CategorySecurity,
	CategoryGeneral,
}

// Valid reports whether the category is one of the recognised values.
func (c ComplaintCategory) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ComplaintStatus enumerates the complaint lifecycle states.
type ComplaintStatus string

const (
	StatusPending    ComplaintStatus = "Pending"
	StatusInProgress ComplaintStatus = "In Progress"
	StatusResolved   ComplaintStatus = "Resolved"
)

// Valid reports whether the status is one of the recognised values.
func (s ComplaintStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// Complaint represents a complaint raised by a student. Admins may set any
// status on any call; the lifecycle deliberately has no transition-graph
// restriction so corrections stay possible.
type Complaint struct {
	ID            string            `db:"id" json:"id"`
	Title         string            `db:"title" json:"title"`
	Description   string            `db:"description" json:"description"`
	Category      ComplaintCategory `db:"category" json:"category"`
	Status        ComplaintStatus   `db:"status" json:"status"`
	StudentID     string            `db:"student_id" json:"student_id"`
	AdminResponse string            `db:"admin_response" json:"admin_response"`
	ResolvedAt    *time.Time        `db:"resolved_at" json:"resolved_at,omitempty"`
	HasFeedback   bool              `db:"has_feedback" json:"has_feedback"`
	CreatedAt     time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time         `db:"updated_at" json:"updated_at"`
}

// ComplaintFilter captures filtering criteria for listing complaints.
// Empty or "All" values leave the dimension unfiltered.
type ComplaintFilter struct {
	Category string
	Status   string
}

// ComplaintStats aggregates complaint counts by status.
type ComplaintStats struct {
	Total      int `db:"total" json:"total"`
	Pending    int `db:"pending" json:"pending"`
	InProgress int `db:"in_progress" json:"inProgress"`
	Resolved   int `db:"resolved" json:"resolved"`
}

// CategoryCount holds a per-category complaint tally.
type CategoryCount struct {
	Category ComplaintCategory `db:"category" json:"category"`
	Count    int               `db:"count" json:"count"`
}
