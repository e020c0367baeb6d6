// internal/app/features/organisations/types.go
package organisations

import (
	"time"

	"github.com/dalemusser/orgdesk/internal/domain/models"
)

// createInput is the body of POST /organisations. A top-level email takes
// precedence over contact.email.
type createInput struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Email   string `json:"email"`
	Contact struct {
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"contact"`
	Location        *models.Location `json:"location"`
	Employees       *int64           `json:"employees"`
	Password        string           `json:"password"`
	PasswordConfirm string           `json:"passwordConfirm"`
}

// refInput names a reference document in the body, as the session and
// proximity lookups take it.
type refInput struct {
	ID        string `json:"_id"`
	SessionID string `json:"sessionId"`
	Type      string `json:"type"`
}

// acceptInput is the body of POST /organisations/{id}/accept.
type acceptInput struct {
	Request *officerRequest `json:"request"`
}

type officerRequest struct {
	At        *time.Time `json:"at"`
	From      string     `json:"from"`
	Message   string     `json:"message"`
	RequestID string     `json:"request_id"`
}

// requestInput is the body of POST /organisations/{id}/requests.
type requestInput struct {
	From    string     `json:"from"`
	Message string     `json:"message"`
	At      *time.Time `json:"at"`
}
