package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Problem implements RFC 9457
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	Extensions map[string]interface{} `json:"-"`

	Log error `json:"-"`
}

func (p *Problem) Error() string {
	return fmt.Sprintf("[%d] %s: %s", p.Status, p.Title, p.Detail)
}

func (p *Problem) Unwrap() error {
	return p.Log
}

func (p *Problem) MarshalJSON() ([]byte, error) {
	type Alias Problem

	data := make(map[string]interface{})

	for k, v := range p.Extensions {
		data[k] = v
	}

	stdJSON, err := json.Marshal(Alias(*p))
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(stdJSON, &data); err != nil {
		return nil, err
	}

	return json.Marshal(data)
}

type ProblemOption func(*Problem)

// New creates a generic Problem
func New(status int, title, detail string, opts ...ProblemOption) *Problem {
	p := &Problem{
		Type:       "about:blank", // Default as per RFC
		Title:      title,
		Status:     status,
		Detail:     detail,
		Extensions: make(map[string]interface{}),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// WithExtension adds a custom key-value pair to the response
func WithExtension(key string, value interface{}) ProblemOption {
	return func(p *Problem) {
		p.Extensions[key] = value
	}
}

// WithLog attaches an internal error for server-side logging
func WithLog(err error) ProblemOption {
	return func(p *Problem) {
		p.Log = err
	}
}

// WithType sets the RFC "type" URI
func WithType(uri string) ProblemOption {
	return func(p *Problem) {
		p.Type = uri
	}
}

// WithInstance sets the RFC "instance" URI, usually the request path
func WithInstance(uri string) ProblemOption {
	return func(p *Problem) {
		p.Instance = uri
	}
}

// ValidationError creates a rich validation error keyed by request field
func ValidationError(validationErrors map[string]string, opts ...ProblemOption) *Problem {
	opts = append([]ProblemOption{
		WithType("/problems/validation"),
		WithExtension("errors", validationErrors),
	}, opts...)
	return New(
		http.StatusBadRequest,
		"Validation Error",
		"One or more fields failed validation",
		opts...,
	)
}

// BadRequestError creates a standard error for a bad request
func BadRequestError(detail string, opts ...ProblemOption) *Problem {
	return New(http.StatusBadRequest, "Bad Request", detail, opts...)
}

// NotFoundError creates a standard 404 error
func NotFoundError(detail string, opts ...ProblemOption) *Problem {
	return New(http.StatusNotFound, "Not Found", detail, opts...)
}

// ServiceUnavailableError is returned when the record store cannot answer
func ServiceUnavailableError(detail string, err error, opts ...ProblemOption) *Problem {
	return New(http.StatusServiceUnavailable, "Service Unavailable", detail, append(opts, WithLog(err))...)
}

// TooManyRequestsError creates standard 429 rate limit error
func TooManyRequestsError(detail string, opts ...ProblemOption) *Problem {
	return New(http.StatusTooManyRequests, "Too Many Requests", detail, opts...)
}

// InternalError creates a standard error for any internal server error
func InternalError(err error, opts ...ProblemOption) *Problem {
	return New(http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred.", append(opts, WithLog(err))...)
}
