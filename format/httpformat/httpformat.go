// Package httpformat declares the types representing HTTP messages exchanged
// by the server, independently of how they are read from or written to the
// network.
package httpformat

import (
	"errors"
	"fmt"
)

var (
	// ErrBadMethod is returned when the request line carries a method token
	// which is not one of the supported methods.
	ErrBadMethod = errors.New("bad method")

	// ErrBadVersion is returned when the request line carries a protocol
	// version token which is not recognized.
	ErrBadVersion = errors.New("bad version")
)

// Method is an HTTP request method.
type Method string

const (
	GET  Method = "GET"
	POST Method = "POST"
)

// ParseMethod matches s against the supported methods. The match is case
// sensitive.
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case GET, POST:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrBadMethod, s)
	}
}

func (m Method) String() string { return string(m) }

// Version is an HTTP protocol version token. Versions are labels only, the
// server applies the same HTTP/1.1 framing whatever the version of the
// request is.
type Version string

const (
	HTTP09 Version = "HTTP/0.9"
	HTTP10 Version = "HTTP/1.0"
	HTTP11 Version = "HTTP/1.1"
	HTTP20 Version = "HTTP/2.0"
	HTTP30 Version = "HTTP/3.0"
)

// ParseVersion matches s against the recognized protocol versions.
func ParseVersion(s string) (Version, error) {
	switch v := Version(s); v {
	case HTTP09, HTTP10, HTTP11, HTTP20, HTTP30:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrBadVersion, s)
	}
}

func (v Version) String() string { return string(v) }

// Request is an HTTP request received by the server.
type Request struct {
	Method  Method  `json:"method"           yaml:"method"`
	Target  string  `json:"target"           yaml:"target"`
	Version Version `json:"version"          yaml:"version"`
	Header  Header  `json:"header,omitempty" yaml:"header,omitempty"`
	// Body is nil unless the request declared a positive Content-Length, in
	// which case it holds exactly that many bytes.
	Body []byte `json:"body,omitempty" yaml:"body,omitempty"`
}

// Response is an HTTP response produced by the server.
type Response struct {
	StatusCode int    `json:"statusCode"       yaml:"statusCode"`
	Header     Header `json:"header,omitempty" yaml:"header,omitempty"`
	Body       []byte `json:"body,omitempty"   yaml:"body,omitempty"`
}

// NewResponse returns a response with the given status code, no headers and
// no body.
func NewResponse(statusCode int) *Response {
	return &Response{StatusCode: statusCode, Header: make(Header)}
}

// SetBody sets the response body and its content type.
func (res *Response) SetBody(contentType string, body []byte) {
	if res.Header == nil {
		res.Header = make(Header)
	}
	res.Header.Set("Content-Type", contentType)
	res.Body = body
}

// StatusText returns the reason phrase of the response status code.
func (res *Response) StatusText() string {
	return StatusText(res.StatusCode)
}
