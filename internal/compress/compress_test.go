package compress_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/stealthrocket/httpcraft/format/httpformat"
	"github.com/stealthrocket/httpcraft/internal/assert"
	"github.com/stealthrocket/httpcraft/internal/compress"
)

func gunzip(t *testing.T, b []byte) string {
	t.Helper()
	r, err := gzip.NewReader(bytes.NewReader(b))
	assert.OK(t, err)
	defer r.Close()
	out, err := io.ReadAll(r)
	assert.OK(t, err)
	return string(out)
}

func TestAcceptsGzip(t *testing.T) {
	tests := []struct {
		scenario string
		header   httpformat.Header
		accepts  bool
	}{
		{"no accept-encoding header", httpformat.Header{}, false},
		{"gzip alone", httpformat.Header{"Accept-Encoding": {"gzip"}}, true},
		{"gzip among other encodings", httpformat.Header{"Accept-Encoding": {"encoding-1, gzip, encoding-2"}}, true},
		{"tokens without spaces", httpformat.Header{"Accept-Encoding": {"br,gzip"}}, true},
		{"unsupported encodings only", httpformat.Header{"Accept-Encoding": {"invalid-encoding"}}, false},
		{"gzip with a quality parameter", httpformat.Header{"Accept-Encoding": {"gzip;q=1.0"}}, false},
		{"only the first value is considered", httpformat.Header{"Accept-Encoding": {"br", "gzip"}}, false},
		{"lower case header name", httpformat.Header{"accept-encoding": {"gzip"}}, true},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			assert.Equal(t, compress.AcceptsGzip(test.header), test.accepts)
		})
	}
}

func TestGzip(t *testing.T) {
	for _, level := range []compress.Level{
		compress.DefaultCompression,
		compress.NoCompression,
		compress.BestSpeed,
		compress.BestCompression,
		compress.HuffmanOnly,
	} {
		for _, input := range []string{"", "abc", strings.Repeat("hello world ", 1000)} {
			b, err := compress.Gzip(nil, []byte(input), level)
			assert.OK(t, err)
			assert.Equal(t, gunzip(t, b), input)
		}
	}
}

func TestGzipAppends(t *testing.T) {
	b, err := compress.Gzip([]byte("prefix"), []byte("abc"), compress.DefaultCompression)
	assert.OK(t, err)
	assert.HasPrefix(t, string(b), "prefix")
	assert.Equal(t, gunzip(t, b[len("prefix"):]), "abc")
}

func TestEncode(t *testing.T) {
	req := &httpformat.Request{Header: httpformat.Header{"Accept-Encoding": {"gzip"}}}
	res := httpformat.NewResponse(httpformat.StatusOK)
	res.SetBody("text/plain", []byte("abc"))

	assert.OK(t, compress.Encode(req, res, compress.DefaultCompression))
	encoding, _ := res.Header.Get("Content-Encoding")
	assert.Equal(t, encoding, "gzip")
	assert.Equal(t, gunzip(t, res.Body), "abc")
}

func TestEncodeNotNegotiated(t *testing.T) {
	req := &httpformat.Request{Header: httpformat.Header{"Accept-Encoding": {"deflate"}}}
	res := httpformat.NewResponse(httpformat.StatusOK)
	res.SetBody("text/plain", []byte("abc"))

	assert.OK(t, compress.Encode(req, res, compress.DefaultCompression))
	_, ok := res.Header.Get("Content-Encoding")
	assert.Equal(t, ok, false)
	assert.Equal(t, string(res.Body), "abc")
}

func TestLevelValidate(t *testing.T) {
	assert.OK(t, compress.DefaultCompression.Validate())
	assert.OK(t, compress.BestCompression.Validate())
	assert.NotEqual(t, compress.Level(10).Validate(), nil)
	assert.NotEqual(t, compress.Level(-3).Validate(), nil)
}
