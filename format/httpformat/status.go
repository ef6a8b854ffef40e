package httpformat

import "strconv"

const (
	StatusOK                          = 200
	StatusCreated                     = 201
	StatusBadRequest                  = 400
	StatusForbidden                   = 403
	StatusNotFound                    = 404
	StatusRequestEntityTooLarge       = 413
	StatusRequestHeaderFieldsTooLarge = 431
	StatusInternalServerError         = 500
)

var statusText = map[int]string{
	StatusOK:                          "OK",
	StatusCreated:                     "Created",
	StatusBadRequest:                  "Bad Request",
	StatusForbidden:                   "Forbidden",
	StatusNotFound:                    "Not Found",
	StatusRequestEntityTooLarge:       "Payload Too Large",
	StatusRequestHeaderFieldsTooLarge: "Request Header Fields Too Large",
	StatusInternalServerError:         "Internal Server Error",
}

// StatusText returns the reason phrase for code. Codes that the server never
// produces are rendered as "Status <code>".
func StatusText(code int) string {
	if text, ok := statusText[code]; ok {
		return text
	}
	return "Status " + strconv.Itoa(code)
}
