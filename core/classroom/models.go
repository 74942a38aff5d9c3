package classroom

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trezcool/darasa/core"
)

type Classroom struct {
	ID          string `json:"_id" bson:"_id,omitempty"`
	Name        string `json:"name" bson:"name"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	TeacherID   string `json:"teacher_id" bson:"teacher_id"`
	ClassCode   string `json:"class_code" bson:"class_code"`

	// Students and PendingRequests hold user IDs; an ID is never in both.
	Students        []string `json:"students" bson:"students"`
	PendingRequests []string `json:"pending_requests" bson:"pending_requests"`
}

// HasStudent reports whether the user is an approved member.
func (c *Classroom) HasStudent(userID string) bool {
	return contains(c.Students, userID)
}

// HasPendingRequest reports whether the user awaits approval.
func (c *Classroom) HasPendingRequest(userID string) bool {
	return contains(c.PendingRequests, userID)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// NewClassroom contains information needed to create a new Classroom.
type NewClassroom struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (nc *NewClassroom) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	return validate.Struct(nc)
}

// JoinRequest is the join-by-code payload.
type JoinRequest struct {
	ClassCode string `json:"class_code" validate:"required"`
}

func (jr *JoinRequest) Validate(validate *validator.Validate) error {
	jr.ClassCode = core.CleanString(jr.ClassCode)
	return validate.Struct(jr)
}

// newClassCode generates an 8-character join code. Codes are drawn from the
// uuid4 space; a store-wide collision is possible but negligible and is not
// re-checked on creation.
func newClassCode() string {
	return uuid.New().String()[:8]
}
