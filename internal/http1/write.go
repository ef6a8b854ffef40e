package http1

import (
	"io"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/stealthrocket/httpcraft/format/httpformat"
	"github.com/stealthrocket/httpcraft/internal/buffer"
)

var bufferPool buffer.Pool

// WriteResponse serializes res to w with a single call to Write.
//
// The Content-Length header is always computed from the length of res.Body,
// any value present in res.Header is ignored. Other headers are written in
// sorted order, one line per value.
func WriteResponse(w io.Writer, res *httpformat.Response) error {
	b := bufferPool.Get(int64(256 + len(res.Body)))
	defer buffer.Release(&b, &bufferPool)

	b.Data = AppendResponse(b.Data, res)
	_, err := w.Write(b.Data)
	return err
}

// AppendResponse appends the wire representation of res to b.
func AppendResponse(b []byte, res *httpformat.Response) []byte {
	b = append(b, httpformat.HTTP11...)
	b = append(b, ' ')
	b = strconv.AppendInt(b, int64(res.StatusCode), 10)
	b = append(b, ' ')
	b = append(b, res.StatusText()...)
	b = append(b, "\r\n"...)

	names := maps.Keys(res.Header)
	slices.Sort(names)

	for _, name := range names {
		if strings.EqualFold(name, "Content-Length") {
			continue
		}
		for _, value := range res.Header[name] {
			b = appendHeader(b, name, value)
		}
	}

	b = appendHeader(b, "Content-Length", strconv.Itoa(len(res.Body)))
	b = append(b, "\r\n"...)
	return append(b, res.Body...)
}

func appendHeader(b []byte, name, value string) []byte {
	b = append(b, name...)
	b = append(b, ": "...)
	b = append(b, value...)
	return append(b, "\r\n"...)
}
