package types

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorKind enumerates the error bodies the API declares
type ErrorKind int

const (
	ErrorKindUnauthorized ErrorKind = iota + 1
	ErrorKindInvalidAPIKey
	ErrorKindAccountNotFound
	ErrorKindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindUnauthorized:
		return "unauthorized"
	case ErrorKindInvalidAPIKey:
		return "invalid_api_key"
	case ErrorKindAccountNotFound:
		return "account_not_found"
	case ErrorKindInternal:
		return "internal_error"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Status is the HTTP status each kind is sent with
func (k ErrorKind) Status() int {
	switch k {
	case ErrorKindUnauthorized:
		return http.StatusUnauthorized
	case ErrorKindInvalidAPIKey:
		return http.StatusForbidden
	case ErrorKindAccountNotFound:
		return http.StatusNotFound
	case ErrorKindInternal:
		return http.StatusInternalServerError
	default:
		return 0
	}
}

const (
	UnauthorizedError   = "Unauthorized"
	UnauthorizedMessage = "API key is required. Please provide x-api-key header."

	InvalidAPIKeyError   = "Forbidden"
	InvalidAPIKeyMessage = "Invalid API key."

	AccountNotFoundError   = "Not Found"
	AccountNotFoundMessage = "Account not found."

	InternalServerError = "Internal Server Error"
)

// ErrorResponse is the body of every error the API returns
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e *ErrorResponse) UnmarshalJSON(data []byte) error {
	obj, err := decodeObject(data)
	if err != nil {
		return err
	}
	var out ErrorResponse
	if err := requiredString(obj, "error", &out.Error); err != nil {
		return err
	}
	if err := requiredString(obj, "message", &out.Message); err != nil {
		return err
	}
	*e = out
	return nil
}

// ErrorReply pairs an error body with the status it is sent with
type ErrorReply struct {
	Status int
	Body   ErrorResponse
}

// NewErrorReply builds a reply for an arbitrary error and message
func NewErrorReply(status int, errorText, message string) ErrorReply {
	return ErrorReply{
		Status: status,
		Body:   ErrorResponse{Error: errorText, Message: message},
	}
}

func Unauthorized() ErrorReply {
	return NewErrorReply(http.StatusUnauthorized, UnauthorizedError, UnauthorizedMessage)
}

func InvalidAPIKey() ErrorReply {
	return NewErrorReply(http.StatusForbidden, InvalidAPIKeyError, InvalidAPIKeyMessage)
}

func AccountNotFound() ErrorReply {
	return NewErrorReply(http.StatusNotFound, AccountNotFoundError, AccountNotFoundMessage)
}

// InternalError describes an unexpected failure; context completes the sentence
// "An unexpected error occurred while ...".
func InternalError(context string) ErrorReply {
	return NewErrorReply(http.StatusInternalServerError, InternalServerError,
		fmt.Sprintf("An unexpected error occurred while %s.", context))
}

// ErrorSchema declares the exact shape of one error kind. An empty Message accepts any string.
type ErrorSchema struct {
	Kind    ErrorKind
	Error   string
	Message string
}

var (
	UnauthorizedSchema    = ErrorSchema{Kind: ErrorKindUnauthorized, Error: UnauthorizedError, Message: UnauthorizedMessage}
	InvalidAPIKeySchema   = ErrorSchema{Kind: ErrorKindInvalidAPIKey, Error: InvalidAPIKeyError, Message: InvalidAPIKeyMessage}
	AccountNotFoundSchema = ErrorSchema{Kind: ErrorKindAccountNotFound, Error: AccountNotFoundError, Message: AccountNotFoundMessage}
	InternalErrorSchema   = ErrorSchema{Kind: ErrorKindInternal, Error: InternalServerError}
)

// Validate checks data against the schema. data may be raw JSON ([]byte, json.RawMessage,
// string) or any value that encodes to JSON, such as an ErrorResponse.
func (s ErrorSchema) Validate(data any) (ErrorResponse, error) {
	raw, err := toJSON(data)
	if err != nil {
		return ErrorResponse{}, err
	}
	var resp ErrorResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return ErrorResponse{}, atPath("", err)
	}
	if resp.Error != s.Error {
		return ErrorResponse{}, &ValidationError{Path: "error", Reason: fmt.Sprintf("expected %q, got %q", s.Error, resp.Error)}
	}
	if s.Message != "" && resp.Message != s.Message {
		return ErrorResponse{}, &ValidationError{Path: "message", Reason: fmt.Sprintf("expected %q, got %q", s.Message, resp.Message)}
	}
	return resp, nil
}

func ValidateUnauthorized(data any) (ErrorResponse, error) {
	return UnauthorizedSchema.Validate(data)
}

func ValidateInvalidAPIKey(data any) (ErrorResponse, error) {
	return InvalidAPIKeySchema.Validate(data)
}

func ValidateAccountNotFound(data any) (ErrorResponse, error) {
	return AccountNotFoundSchema.Validate(data)
}

func ValidateInternalError(data any) (ErrorResponse, error) {
	return InternalErrorSchema.Validate(data)
}

// ValidateErrorResponse accepts any body with string error and message members
func ValidateErrorResponse(data any) (ErrorResponse, error) {
	raw, err := toJSON(data)
	if err != nil {
		return ErrorResponse{}, err
	}
	var resp ErrorResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return ErrorResponse{}, atPath("", err)
	}
	return resp, nil
}

func toJSON(data any) ([]byte, error) {
	switch v := data.(type) {
	case []byte:
		return v, nil
	case json.RawMessage:
		return v, nil
	case string:
		return []byte(v), nil
	case ErrorReply:
		return json.Marshal(v.Body)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, &ValidationError{Reason: fmt.Sprintf("cannot encode %T: %v", data, err)}
		}
		return raw, nil
	}
}
