// Package router maps requests to the handlers producing their responses.
//
// Routing is independent of the transport: handlers receive a parsed request
// and return the response to send back, they never see the connection.
package router

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"

	"github.com/stealthrocket/httpcraft/format/httpformat"
	"github.com/stealthrocket/httpcraft/internal/compress"
	"github.com/stealthrocket/httpcraft/internal/filestore"
)

const (
	indexFile = "index.html"

	echoPrefix  = "/echo/"
	filesPrefix = "/files/"
	userAgent   = "/user-agent"
)

// Router dispatches GET and POST requests to the fixed set of routes served
// by httpcraft.
type Router struct {
	// Store holds the files served by the "/" and "/files/" routes.
	Store filestore.Store
	// Compression is the gzip level used for negotiated encodings.
	Compression compress.Level
	// Log receives handler failures. When nil, the standard logger is used.
	Log *log.Logger
}

// New returns a router serving files from store.
func New(store filestore.Store) *Router {
	return &Router{Store: store, Compression: compress.DefaultCompression}
}

// Handle dispatches req to HandleGet or HandlePost depending on its method.
func (r *Router) Handle(ctx context.Context, req *httpformat.Request) *httpformat.Response {
	switch req.Method {
	case httpformat.GET:
		return r.HandleGet(ctx, req)
	case httpformat.POST:
		return r.HandlePost(ctx, req)
	default:
		return httpformat.NewResponse(httpformat.StatusBadRequest)
	}
}

// HandleGet produces the response to a GET request.
func (r *Router) HandleGet(ctx context.Context, req *httpformat.Request) *httpformat.Response {
	switch target := req.Target; {
	case target == "/":
		return r.serveFile(ctx, indexFile, "text/html")
	case strings.HasPrefix(target, echoPrefix):
		return r.echo(req, strings.TrimPrefix(target, echoPrefix))
	case target == userAgent:
		return r.userAgent(req)
	case strings.HasPrefix(target, filesPrefix):
		return r.serveFile(ctx, strings.TrimPrefix(target, filesPrefix), "application/octet-stream")
	default:
		return httpformat.NewResponse(httpformat.StatusNotFound)
	}
}

// HandlePost produces the response to a POST request.
func (r *Router) HandlePost(ctx context.Context, req *httpformat.Request) *httpformat.Response {
	if name, ok := strings.CutPrefix(req.Target, filesPrefix); ok {
		return r.writeFile(ctx, name, req.Body)
	}
	return httpformat.NewResponse(httpformat.StatusNotFound)
}

func (r *Router) echo(req *httpformat.Request, text string) *httpformat.Response {
	res := httpformat.NewResponse(httpformat.StatusOK)
	res.SetBody("text/plain", []byte(text))

	if err := compress.Encode(req, res, r.Compression); err != nil {
		r.logf("GET %s: %s", req.Target, err)
		return httpformat.NewResponse(httpformat.StatusInternalServerError)
	}
	return res
}

func (r *Router) userAgent(req *httpformat.Request) *httpformat.Response {
	value, ok := req.Header.Get("User-Agent")
	if !ok {
		return httpformat.NewResponse(httpformat.StatusBadRequest)
	}
	res := httpformat.NewResponse(httpformat.StatusOK)
	res.SetBody("text/plain", []byte(value))
	return res
}

func (r *Router) serveFile(ctx context.Context, name, contentType string) *httpformat.Response {
	b, err := r.Store.ReadFile(ctx, name)
	if err != nil {
		return r.storeError("GET", name, err)
	}
	res := httpformat.NewResponse(httpformat.StatusOK)
	res.SetBody(contentType, b)
	return res
}

func (r *Router) writeFile(ctx context.Context, name string, body []byte) *httpformat.Response {
	if err := r.Store.WriteFile(ctx, name, bytes.NewReader(body)); err != nil {
		return r.storeError("POST", name, err)
	}
	return httpformat.NewResponse(httpformat.StatusCreated)
}

func (r *Router) storeError(method, name string, err error) *httpformat.Response {
	switch {
	case errors.Is(err, filestore.ErrNotExist),
		errors.Is(err, filestore.ErrNotRegular),
		errors.Is(err, filestore.ErrInvalidName):
		return httpformat.NewResponse(httpformat.StatusNotFound)
	case errors.Is(err, filestore.ErrReadOnly):
		return httpformat.NewResponse(httpformat.StatusForbidden)
	default:
		r.logf("%s %s%s: %s", method, filesPrefix, name, err)
		return httpformat.NewResponse(httpformat.StatusInternalServerError)
	}
}

func (r *Router) logf(format string, args ...any) {
	if r.Log != nil {
		r.Log.Printf(format, args...)
	} else {
		log.Printf(format, args...)
	}
}
