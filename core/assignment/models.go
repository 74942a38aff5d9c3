package assignment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

type Assignment struct {
	ID          string     `json:"_id" bson:"_id,omitempty"`
	ClassID     string     `json:"class_id" bson:"class_id"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description" bson:"description"`
	DueDate     *time.Time `json:"due_date,omitempty" bson:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"` // UTC
}

type Submission struct {
	ID           string    `json:"_id" bson:"_id,omitempty"`
	AssignmentID string    `json:"assignment_id" bson:"assignment_id"`
	StudentID    string    `json:"student_id" bson:"student_id"`
	FilePath     string    `json:"file_path" bson:"file_path"`
	Filename     string    `json:"filename" bson:"filename"`
	SubmittedAt  time.Time `json:"submitted_at" bson:"submitted_at"` // UTC
}

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	ClassID     string     `json:"class_id" validate:"required"`
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.ClassID = core.CleanString(na.ClassID)
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	return validate.Struct(na)
}
