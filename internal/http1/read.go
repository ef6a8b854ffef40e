// Package http1 implements reading requests from and writing responses to
// HTTP/1.1 byte streams.
package http1

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/stealthrocket/httpcraft/format/httpformat"
)

var (
	// Errors re-exported from httpformat so callers can classify every
	// parsing failure from this package.
	ErrBadMethod  = httpformat.ErrBadMethod
	ErrBadVersion = httpformat.ErrBadVersion

	ErrBadRequestLine   = errors.New("bad request line")
	ErrBadHeader        = errors.New("bad header")
	ErrBadContentLength = errors.New("bad content length")
	ErrTruncatedBody    = errors.New("truncated body")
	ErrHeaderTooLarge   = errors.New("header too large")
	ErrBodyTooLarge     = errors.New("body too large")
)

// Limits bounds the amount of data read from a request. Zero values mean no
// limit.
type Limits struct {
	// Maximum number of bytes of the request line and header section,
	// including line terminators.
	MaxHeaderBytes int64
	// Maximum value accepted for the Content-Length header.
	MaxBodyBytes int64
}

// ReadRequest reads a single request from r.
//
// io.EOF is returned unchanged when the stream ends before the first byte of
// the request line. The end of the stream also terminates the header section,
// the way a blank line does.
//
// The body is read only when a Content-Length header is present, exactly as
// many bytes as it declares are consumed from r.
func ReadRequest(r *bufio.Reader, limits Limits) (*httpformat.Request, error) {
	lr := &lineReader{r: r, limit: limits.MaxHeaderBytes}

	line, err := lr.readLine()
	if err != nil {
		return nil, err
	}
	req, err := parseRequestLine(line)
	if err != nil {
		return nil, err
	}

	if req.Header, err = readHeader(lr); err != nil {
		return nil, err
	}

	values := req.Header.Values("Content-Length")
	if len(values) == 0 {
		return req, nil
	}
	n, err := parseContentLength(values[0])
	if err != nil {
		return nil, err
	}
	if limits.MaxBodyBytes > 0 && n > limits.MaxBodyBytes {
		return nil, fmt.Errorf("%w: %d > %d", ErrBodyTooLarge, n, limits.MaxBodyBytes)
	}
	if n > 0 {
		if req.Body, err = readBody(r, n); err != nil {
			return nil, err
		}
	}
	return req, nil
}

func parseRequestLine(line string) (*httpformat.Request, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrBadRequestLine, line)
	}
	method, err := httpformat.ParseMethod(fields[0])
	if err != nil {
		return nil, err
	}
	if len(fields) < 2 {
		return nil, fmt.Errorf("%w: missing target: %q", ErrBadRequestLine, line)
	}
	version, err := httpformat.ParseVersion(fields[len(fields)-1])
	if err != nil {
		return nil, err
	}
	return &httpformat.Request{
		Method:  method,
		Target:  fields[1],
		Version: version,
	}, nil
}

func readHeader(lr *lineReader) (httpformat.Header, error) {
	header := make(httpformat.Header)
	lastName := ""

	for {
		line, err := lr.readLine()
		if err != nil {
			if err == io.EOF {
				return header, nil
			}
			return nil, err
		}
		if line == "" {
			return header, nil
		}

		if line[0] == ' ' || line[0] == '\t' {
			// obs-fold: the line continues the value of the previous header.
			if lastName == "" {
				return nil, fmt.Errorf("%w: continuation line without a header: %q", ErrBadHeader, line)
			}
			values := header[lastName]
			last := &values[len(values)-1]
			if value := strings.TrimSpace(line); value != "" {
				if *last == "" {
					*last = value
				} else {
					*last += " " + value
				}
			}
			continue
		}

		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("%w: missing colon: %q", ErrBadHeader, line)
		}
		if name == "" || strings.ContainsAny(name, " \t") {
			return nil, fmt.Errorf("%w: invalid name: %q", ErrBadHeader, line)
		}
		header.Add(name, strings.TrimSpace(value))
		lastName = name
	}
}

func parseContentLength(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty value", ErrBadContentLength)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("%w: %q", ErrBadContentLength, s)
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadContentLength, s)
	}
	return n, nil
}

func readBody(r io.Reader, n int64) ([]byte, error) {
	// The buffer grows with the bytes actually received instead of trusting
	// the declared length for a single allocation.
	body := new(bytes.Buffer)
	if _, err := io.CopyN(body, r, n); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: read %d/%d bytes", ErrTruncatedBody, body.Len(), n)
		}
		return nil, err
	}
	return body.Bytes(), nil
}

type lineReader struct {
	r     *bufio.Reader
	limit int64
	count int64
}

// readLine returns the next line without its LF or CRLF terminator. A final
// line ending without a terminator is returned as is. io.EOF is returned only
// when no bytes remain.
func (lr *lineReader) readLine() (string, error) {
	var line []byte
	for {
		chunk, err := lr.r.ReadSlice('\n')
		lr.count += int64(len(chunk))
		if lr.limit > 0 && lr.count > lr.limit {
			return "", fmt.Errorf("%w: more than %d bytes", ErrHeaderTooLarge, lr.limit)
		}
		line = append(line, chunk...)

		switch err {
		case nil:
			line = line[:len(line)-1]
			if n := len(line); n > 0 && line[n-1] == '\r' {
				line = line[:n-1]
			}
			return string(line), nil
		case bufio.ErrBufferFull:
			continue
		case io.EOF:
			if len(line) == 0 {
				return "", io.EOF
			}
			return string(line), nil
		default:
			return "", err
		}
	}
}
