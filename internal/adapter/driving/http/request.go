package httphandler

import (
	"encoding/json"
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/ericfisherdev/examdesk/internal/domain/model"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// decodeBody decodes a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

// CreateCustomerRequest is the JSON body for the create customer endpoint.
type CreateCustomerRequest struct {
	Email string `json:"email"`
}

// Validate checks the request fields.
func (r CreateCustomerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// LoginRequest is the JSON body for the customer login endpoint.
type LoginRequest struct {
	Token string `json:"token"`
}

// Validate checks the request fields.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
	)
}

// RecoverRequest is the JSON body for the recovery request endpoint.
type RecoverRequest struct {
	Email string `json:"email"`
}

// Validate checks the request fields.
func (r RecoverRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// ExamRequest is the JSON body for creating or updating an exam. On update,
// omitted fields are left unchanged.
type ExamRequest struct {
	Title           *string         `json:"title"`
	Subject         *string         `json:"subject"`
	Description     *string         `json:"description"`
	DurationMinutes *int            `json:"duration_minutes"`
	Questions       json.RawMessage `json:"questions"`
}

// ValidateCreate checks the request for exam creation, where a title is required.
func (r ExamRequest) ValidateCreate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.DurationMinutes, validation.NilOrNotEmpty, validation.Min(1)),
		validation.Field(&r.Questions, validation.By(jsonArray)),
	)
}

// ValidateUpdate checks the request for a partial exam update.
func (r ExamRequest) ValidateUpdate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&r.DurationMinutes, validation.NilOrNotEmpty, validation.Min(1)),
		validation.Field(&r.Questions, validation.By(jsonArray)),
	)
}

// patch converts the request into a domain patch.
func (r ExamRequest) patch() model.ExamPatch {
	p := model.ExamPatch{
		Title:           r.Title,
		Subject:         r.Subject,
		Description:     r.Description,
		DurationMinutes: r.DurationMinutes,
	}
	if len(r.Questions) > 0 && string(r.Questions) != "null" {
		p.Questions = r.Questions
	}
	return p
}

// jsonArray accepts an absent value or a JSON array.
func jsonArray(value any) error {
	raw, _ := value.(json.RawMessage)
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return errors.New("must be a JSON array")
	}
	return nil
}
