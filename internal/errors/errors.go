package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrDuplicateEmail is returned when signing up with an email that is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials is returned when a stored user's password does not match.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNotAuthenticated is returned when a session operation needs a bound user.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrForbidden is returned when a non-administrator calls an organizer endpoint.
	ErrForbidden = errors.New("administrator access required")
	// ErrTeamNotFound is returned when no team matches a code or id.
	ErrTeamNotFound = errors.New("team not found")
	// ErrTeamFull is returned when a team already has the maximum number of members.
	ErrTeamFull = errors.New("team is full")
	// ErrAlreadyInTeam is returned when a user who is on a team tries to create or join another.
	ErrAlreadyInTeam = errors.New("user already belongs to a team")
	// ErrNotTeamMember is returned when leaving a team the user is not on.
	ErrNotTeamMember = errors.New("user is not a member of this team")
	// ErrTeamRequired is returned when a submission is attempted without a team.
	ErrTeamRequired = errors.New("a team is required")
	// ErrAlreadySubmitted is returned when a team already holds its final submission.
	ErrAlreadySubmitted = errors.New("team has already submitted")
	// ErrInvalidTrack is returned for tracks outside the fixed set.
	ErrInvalidTrack = errors.New("invalid track")
	// ErrInvalidApprovalStatus is returned for approval statuses outside the fixed set.
	ErrInvalidApprovalStatus = errors.New("invalid approval status")
	// ErrInvalidSubmission is returned when submission fields fail validation.
	ErrInvalidSubmission = errors.New("invalid submission")
	// ErrCodeExhausted is returned when no unused join code could be drawn.
	ErrCodeExhausted = errors.New("could not generate a unique team code")
	// ErrSessionRestoreFailed marks an unreadable persisted session. It is logged, never returned to callers.
	ErrSessionRestoreFailed = errors.New("session restore failed")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

var httpMappings = []struct {
	err    error
	status int
	code   string
}{
	{ErrDuplicateEmail, http.StatusConflict, "DUPLICATE_EMAIL"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{ErrNotAuthenticated, http.StatusUnauthorized, "NOT_AUTHENTICATED"},
	{ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{ErrTeamNotFound, http.StatusNotFound, "TEAM_NOT_FOUND"},
	{ErrTeamFull, http.StatusConflict, "TEAM_FULL"},
	{ErrAlreadyInTeam, http.StatusConflict, "ALREADY_IN_TEAM"},
	{ErrNotTeamMember, http.StatusBadRequest, "NOT_TEAM_MEMBER"},
	{ErrTeamRequired, http.StatusBadRequest, "TEAM_REQUIRED"},
	{ErrAlreadySubmitted, http.StatusConflict, "ALREADY_SUBMITTED"},
	{ErrInvalidTrack, http.StatusBadRequest, "INVALID_TRACK"},
	{ErrInvalidApprovalStatus, http.StatusBadRequest, "INVALID_APPROVAL_STATUS"},
	{ErrInvalidSubmission, http.StatusBadRequest, "INVALID_SUBMISSION"},
	{ErrCodeExhausted, http.StatusServiceUnavailable, "CODE_EXHAUSTED"},
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	for _, m := range httpMappings {
		if errors.Is(err, m.err) {
			return NewHTTPError(m.status, m.err.Error(), m.code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}
