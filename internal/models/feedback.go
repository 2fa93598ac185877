package models

import "time"

// Feedback is a student's rating of a resolved complaint. The complaint
// reference is unique, enforcing the one-feedback-per-complaint invariant
// at the storage layer. Category is copied from the complaint at submission
// time and never re-derived.
type Feedback struct {
	ID          string            `db:"id" json:"id"`
	ComplaintID string            `db:"complaint_id" json:"complaint_id"`
	StudentID   string            `db:"student_id" json:"student_id"`
	Category    ComplaintCategory `db:"category" json:"category"`
	Rating      int               `db:"rating" json:"rating"`
	Comment     string            `db:"comment" json:"comment"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`
}

// FeedbackFilter captures filtering criteria for listing feedback.
type FeedbackFilter struct {
	Category string
}

// CategoryRating aggregates per-category feedback ratings.
type CategoryRating struct {
	Category      ComplaintCategory `db:"category" json:"category"`
	AverageRating float64           `db:"average_rating" json:"averageRating"`
	Count         int               `db:"count" json:"count"`
}

// RatingBucket is one bar of the rating histogram.
type RatingBucket struct {
	Rating int `db:"rating" json:"rating"`
	Count  int `db:"count" json:"count"`
}

// FeedbackStats summarises all submitted feedback.
type FeedbackStats struct {
	Total              int              `json:"total"`
	AverageRating      float64          `json:"averageRating"`
	CategoryRatings    []CategoryRating `json:"categoryRatings"`
	RatingDistribution []RatingBucket   `json:"ratingDistribution"`
}
