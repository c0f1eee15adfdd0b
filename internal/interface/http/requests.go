package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST BODIES
// Shape checks only; trimming, normalization and the score range are left to
// the domain.
// ══════════════════════════════════════════════════════════════════════════════

// AddStudentRequest is the body of POST /api/v1/students.
type AddStudentRequest struct {
	StudentID string `json:"student_id" validate:"required,max=64"`
	Name      string `json:"name" validate:"required,max=200"`
	Email     string `json:"email" validate:"required,max=254"`
}

// AddCourseRequest is the body of POST /api/v1/courses.
type AddCourseRequest struct {
	CourseCode string `json:"course_code" validate:"required,max=32"`
	CourseName string `json:"course_name" validate:"required,max=200"`
	Credits    int    `json:"credits" validate:"gt=0"`
}

// RecordGradeRequest is the body of PUT /api/v1/grades.
type RecordGradeRequest struct {
	StudentID  string   `json:"student_id" validate:"required"`
	CourseCode string   `json:"course_code" validate:"required"`
	Value      *float64 `json:"value" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// requestError is a malformed or invalid request body.
type requestError struct {
	status  int
	code    string
	message string
	details map[string]string
}

func (e *requestError) Error() string { return e.message }

// decodeAndValidate reads a JSON body into dst and validates it.
func decodeAndValidate(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return &requestError{
				status:  http.StatusRequestEntityTooLarge,
				code:    "payload_too_large",
				message: fmt.Sprintf("Request body exceeds %d bytes", maxErr.Limit),
			}
		case errors.Is(err, io.EOF):
			return &requestError{status: http.StatusBadRequest, code: "invalid_request", message: "Request body is required"}
		default:
			return &requestError{status: http.StatusBadRequest, code: "invalid_request", message: "Invalid JSON payload: " + err.Error()}
		}
	}
	if dec.More() {
		return &requestError{status: http.StatusBadRequest, code: "invalid_request", message: "Request body must contain a single JSON object"}
	}

	if err := validate.Struct(dst); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return &requestError{status: http.StatusBadRequest, code: "invalid_request", message: err.Error()}
		}
		details := make(map[string]string, len(ve))
		for _, fe := range ve {
			details[fe.Field()] = fe.Tag()
		}
		return &requestError{
			status:  http.StatusBadRequest,
			code:    "validation_failed",
			message: "Request validation failed",
			details: details,
		}
	}

	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// writeErr maps err to a status code and writes the error envelope.
//
//	not found      → 404
//	already exists → 409
//	other domain   → 400
//	anything else  → 500
func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		var details interface{}
		if len(reqErr.details) > 0 {
			details = reqErr.details
		}
		writeJSONError(w, r, reqErr.status, reqErr.code, reqErr.message, details)
		return
	}

	switch {
	case shared.IsNotFound(err):
		writeJSONError(w, r, http.StatusNotFound, "not_found", shared.MessageOf(err), nil)
	case shared.IsAlreadyExists(err):
		writeJSONError(w, r, http.StatusConflict, "already_exists", shared.MessageOf(err), nil)
	case shared.IsInvalidArgument(err):
		writeJSONError(w, r, http.StatusBadRequest, "invalid_argument", shared.MessageOf(err), nil)
	default:
		s.logger.Error("request failed", logger.Err(err), logger.String("path", r.URL.Path))
		writeJSONError(w, r, http.StatusInternalServerError, "internal_error", "An unexpected error occurred", nil)
	}
}
