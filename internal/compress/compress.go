// Package compress implements content negotiation and encoding of response
// bodies.
package compress

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"

	"github.com/stealthrocket/httpcraft/format/httpformat"
)

// Level is a gzip compression level.
type Level int

const (
	DefaultCompression = Level(gzip.DefaultCompression)
	NoCompression      = Level(gzip.NoCompression)
	BestSpeed          = Level(gzip.BestSpeed)
	BestCompression    = Level(gzip.BestCompression)
	HuffmanOnly        = Level(gzip.HuffmanOnly)
)

// Validate returns an error if the level is not supported by the gzip
// encoder.
func (l Level) Validate() error {
	if l < HuffmanOnly || l > BestCompression {
		return fmt.Errorf("invalid gzip compression level: %d", l)
	}
	return nil
}

const gzipEncoding = "gzip"

// AcceptsGzip reports whether the first Accept-Encoding value of h lists the
// gzip token. Other tokens, and quality parameters, are ignored.
func AcceptsGzip(h httpformat.Header) bool {
	value, ok := h.Get("Accept-Encoding")
	if !ok {
		return false
	}
	for _, token := range strings.Split(value, ",") {
		if strings.TrimSpace(token) == gzipEncoding {
			return true
		}
	}
	return false
}

// Encode compresses the body of res when the request negotiated gzip, and
// sets the Content-Encoding header accordingly. The response is left
// unchanged otherwise.
func Encode(req *httpformat.Request, res *httpformat.Response, level Level) error {
	if !AcceptsGzip(req.Header) {
		return nil
	}
	body, err := Gzip(nil, res.Body, level)
	if err != nil {
		return err
	}
	if res.Header == nil {
		res.Header = make(httpformat.Header)
	}
	res.Header.Set("Content-Encoding", gzipEncoding)
	res.Body = body
	return nil
}

// Gzip appends the gzip encoding of src to dst.
func Gzip(dst, src []byte, level Level) ([]byte, error) {
	buf := bytes.NewBuffer(dst)

	w, err := getWriter(buf, level)
	if err != nil {
		return dst, err
	}
	defer putWriter(w, level)

	if _, err := w.Write(src); err != nil {
		return dst, err
	}
	if err := w.Close(); err != nil {
		return dst, err
	}
	return buf.Bytes(), nil
}

var (
	writerPoolsMutex sync.Mutex
	writerPools      = map[Level]*sync.Pool{}
)

func writerPool(level Level) *sync.Pool {
	writerPoolsMutex.Lock()
	defer writerPoolsMutex.Unlock()

	p := writerPools[level]
	if p == nil {
		p = new(sync.Pool)
		writerPools[level] = p
	}
	return p
}

func getWriter(buf *bytes.Buffer, level Level) (*gzip.Writer, error) {
	if w, ok := writerPool(level).Get().(*gzip.Writer); ok {
		w.Reset(buf)
		return w, nil
	}
	return gzip.NewWriterLevel(buf, int(level))
}

func putWriter(w *gzip.Writer, level Level) {
	writerPool(level).Put(w)
}
