package http1_test

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"github.com/stealthrocket/httpcraft/format/httpformat"
	"github.com/stealthrocket/httpcraft/internal/assert"
	"github.com/stealthrocket/httpcraft/internal/http1"
)

func readRequest(s string, limits http1.Limits) (*httpformat.Request, *bufio.Reader, error) {
	r := bufio.NewReader(strings.NewReader(s))
	req, err := http1.ReadRequest(r, limits)
	return req, r, err
}

func TestReadRequest(t *testing.T) {
	tests := []struct {
		scenario string
		input    string
		request  *httpformat.Request
	}{
		{
			scenario: "request line without headers",
			input:    "GET / HTTP/1.1\r\n\r\n",
			request: &httpformat.Request{
				Method:  httpformat.GET,
				Target:  "/",
				Version: httpformat.HTTP11,
				Header:  httpformat.Header{},
			},
		},

		{
			scenario: "the target is used verbatim",
			input:    "GET /echo/a%20b?x=1 HTTP/1.0\r\n\r\n",
			request: &httpformat.Request{
				Method:  httpformat.GET,
				Target:  "/echo/a%20b?x=1",
				Version: httpformat.HTTP10,
				Header:  httpformat.Header{},
			},
		},

		{
			scenario: "header values are trimmed",
			input:    "GET /user-agent HTTP/1.1\r\nHost: localhost:4221\r\nUser-Agent:   curl/7.64.1  \r\n\r\n",
			request: &httpformat.Request{
				Method:  httpformat.GET,
				Target:  "/user-agent",
				Version: httpformat.HTTP11,
				Header: httpformat.Header{
					"Host":       {"localhost:4221"},
					"User-Agent": {"curl/7.64.1"},
				},
			},
		},

		{
			scenario: "repeated headers accumulate in order",
			input:    "GET / HTTP/1.1\r\nAccept: a\r\nAccept: b\r\nAccept: c\r\n\r\n",
			request: &httpformat.Request{
				Method:  httpformat.GET,
				Target:  "/",
				Version: httpformat.HTTP11,
				Header:  httpformat.Header{"Accept": {"a", "b", "c"}},
			},
		},

		{
			scenario: "header names keep their case",
			input:    "GET / HTTP/1.1\r\nuser-agent: x\r\n\r\n",
			request: &httpformat.Request{
				Method:  httpformat.GET,
				Target:  "/",
				Version: httpformat.HTTP11,
				Header:  httpformat.Header{"user-agent": {"x"}},
			},
		},

		{
			scenario: "folded header lines continue the previous value",
			input:    "GET / HTTP/1.1\r\nX-Long: first\r\n  second\r\n\tthird\r\n\r\n",
			request: &httpformat.Request{
				Method:  httpformat.GET,
				Target:  "/",
				Version: httpformat.HTTP11,
				Header:  httpformat.Header{"X-Long": {"first second third"}},
			},
		},

		{
			scenario: "bare line feeds are accepted as line terminators",
			input:    "GET / HTTP/2.0\nHost: h\n\n",
			request: &httpformat.Request{
				Method:  httpformat.GET,
				Target:  "/",
				Version: httpformat.HTTP20,
				Header:  httpformat.Header{"Host": {"h"}},
			},
		},

		{
			scenario: "the end of the stream terminates the header section",
			input:    "GET /echo/abc HTTP/1.1\r\nHost: h\r\n",
			request: &httpformat.Request{
				Method:  httpformat.GET,
				Target:  "/echo/abc",
				Version: httpformat.HTTP11,
				Header:  httpformat.Header{"Host": {"h"}},
			},
		},

		{
			scenario: "the version is the last token of the request line",
			input:    "GET /a b HTTP/3.0\r\n\r\n",
			request: &httpformat.Request{
				Method:  httpformat.GET,
				Target:  "/a",
				Version: httpformat.HTTP30,
				Header:  httpformat.Header{},
			},
		},

		{
			scenario: "the body is read when content length is set",
			input:    "POST /files/a HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello",
			request: &httpformat.Request{
				Method:  httpformat.POST,
				Target:  "/files/a",
				Version: httpformat.HTTP11,
				Header:  httpformat.Header{"Content-Length": {"5"}},
				Body:    []byte("hello"),
			},
		},

		{
			scenario: "a zero content length has no body",
			input:    "POST /files/a HTTP/1.1\r\nContent-Length: 0\r\n\r\n",
			request: &httpformat.Request{
				Method:  httpformat.POST,
				Target:  "/files/a",
				Version: httpformat.HTTP11,
				Header:  httpformat.Header{"Content-Length": {"0"}},
			},
		},

		{
			scenario: "no body is read without content length",
			input:    "POST /files/a HTTP/1.1\r\n\r\nignored",
			request: &httpformat.Request{
				Method:  httpformat.POST,
				Target:  "/files/a",
				Version: httpformat.HTTP11,
				Header:  httpformat.Header{},
			},
		},

		{
			scenario: "the body may contain line terminators",
			input:    "POST /files/a HTTP/1.1\r\ncontent-length: 6\r\n\r\na\r\nb\r\n",
			request: &httpformat.Request{
				Method:  httpformat.POST,
				Target:  "/files/a",
				Version: httpformat.HTTP11,
				Header:  httpformat.Header{"content-length": {"6"}},
				Body:    []byte("a\r\nb\r\n"),
			},
		},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			req, _, err := readRequest(test.input, http1.Limits{})
			assert.OK(t, err)
			assert.DeepEqual(t, req, test.request)
		})
	}
}

func TestReadRequestBodyIsNotOverread(t *testing.T) {
	_, r, err := readRequest("POST /files/a HTTP/1.1\r\nContent-Length: 3\r\n\r\nabcdef", http1.Limits{})
	assert.OK(t, err)

	rest, err := io.ReadAll(r)
	assert.OK(t, err)
	assert.Equal(t, string(rest), "def")
}

func TestReadRequestEOF(t *testing.T) {
	_, _, err := readRequest("", http1.Limits{})
	assert.Equal(t, err, io.EOF)
}

func TestReadRequestErrors(t *testing.T) {
	tests := []struct {
		scenario string
		input    string
		limits   http1.Limits
		err      error
	}{
		{
			scenario: "unsupported method",
			input:    "PATCH /files/a HTTP/1.1\r\n\r\n",
			err:      http1.ErrBadMethod,
		},

		{
			scenario: "methods are case sensitive",
			input:    "get / HTTP/1.1\r\n\r\n",
			err:      http1.ErrBadMethod,
		},

		{
			scenario: "unknown version",
			input:    "GET / HTTP/1.2\r\n\r\n",
			err:      http1.ErrBadVersion,
		},

		{
			scenario: "missing version",
			input:    "GET /\r\n\r\n",
			err:      http1.ErrBadVersion,
		},

		{
			scenario: "missing target",
			input:    "GET\r\n\r\n",
			err:      http1.ErrBadRequestLine,
		},

		{
			scenario: "empty request line",
			input:    "\r\n\r\n",
			err:      http1.ErrBadRequestLine,
		},

		{
			scenario: "header without a colon",
			input:    "GET / HTTP/1.1\r\nHost localhost\r\n\r\n",
			err:      http1.ErrBadHeader,
		},

		{
			scenario: "header with an empty name",
			input:    "GET / HTTP/1.1\r\n: value\r\n\r\n",
			err:      http1.ErrBadHeader,
		},

		{
			scenario: "whitespace before the colon",
			input:    "GET / HTTP/1.1\r\nHost : localhost\r\n\r\n",
			err:      http1.ErrBadHeader,
		},

		{
			scenario: "continuation line before any header",
			input:    "GET / HTTP/1.1\r\n folded\r\n\r\n",
			err:      http1.ErrBadHeader,
		},

		{
			scenario: "negative content length",
			input:    "POST /files/a HTTP/1.1\r\nContent-Length: -1\r\n\r\n",
			err:      http1.ErrBadContentLength,
		},

		{
			scenario: "non numeric content length",
			input:    "POST /files/a HTTP/1.1\r\nContent-Length: ten\r\n\r\n",
			err:      http1.ErrBadContentLength,
		},

		{
			scenario: "body shorter than the content length",
			input:    "POST /files/a HTTP/1.1\r\nContent-Length: 10\r\n\r\nabc",
			err:      http1.ErrTruncatedBody,
		},

		{
			scenario: "header section over the limit",
			input:    "GET / HTTP/1.1\r\nX-Padding: " + strings.Repeat("x", 100) + "\r\n\r\n",
			limits:   http1.Limits{MaxHeaderBytes: 64},
			err:      http1.ErrHeaderTooLarge,
		},

		{
			scenario: "content length over the limit",
			input:    "POST /files/a HTTP/1.1\r\nContent-Length: 11\r\n\r\nhello world",
			limits:   http1.Limits{MaxBodyBytes: 10},
			err:      http1.ErrBodyTooLarge,
		},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			_, _, err := readRequest(test.input, test.limits)
			assert.Error(t, err, test.err)
		})
	}
}

func TestReadRequestLongLines(t *testing.T) {
	value := strings.Repeat("v", 3*4096)
	req, _, err := readRequest("GET / HTTP/1.1\r\nX-Big: "+value+"\r\n\r\n", http1.Limits{})
	assert.OK(t, err)
	v, _ := req.Header.Get("X-Big")
	assert.Equal(t, v, value)
}
