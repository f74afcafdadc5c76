package util

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Status  int
	Message string
	// Fields carries per-field validation messages when the failure is a
	// validation one. Empty otherwise.
	Fields map[string]string
}

func (he *HTTPError) Error() string {
	return fmt.Sprintf("%v (statusCode=%v)", he.Message, he.Status)
}

var (
	DbHTTPErr = HTTPError{
		Message: "database error",
		Status:  http.StatusInternalServerError,
	}
	MalformedIdHTTPErr = HTTPError{
		Message: "id malformed",
		Status:  http.StatusBadRequest,
	}
	NotFoundHTTPErr = HTTPError{
		Message: "not found",
		Status:  http.StatusNotFound,
	}
)

func BuildDbHTTPErr(err error) *HTTPError {
	return &DbHTTPErr
}

func BuildJSONBindHTTPErr(err error) *HTTPError {
	return &HTTPError{
		Status:  http.StatusBadRequest,
		Message: err.Error(),
	}
}

// RequestTimeout bounds every wrapped handler. The hosted backend imposes no
// timeout of its own, so an expired request must surface as an error here
// instead of hanging the caller.
const RequestTimeout = 10 * time.Second

// Handler receives the request-scoped context separately from the gin
// context: gin.Context does not surface the request deadline on this gin
// version, so the deadline must travel through ctx to reach blocking calls.
type Handler = func(ctx context.Context, c *gin.Context) (interface{}, *HTTPError)

type HandlerOpts struct {
	// NoTimeout disables the request deadline
	NoTimeout bool
}

// HandlerWrapper adapts a (data, *HTTPError) handler to gin and applies the
// uniform response envelope
func HandlerWrapper(handler Handler, opts *HandlerOpts) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if !opts.NoTimeout {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, RequestTimeout)
			defer cancel()
		}

		data, httpErr := handler(ctx, c)
		if httpErr != nil {
			HandleHTTPErrorRes(c, httpErr)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    data,
		})
	}
}

/*
	HandleHTTPErrorRes handles creating the appropriate response for the HTTP error.
	break the route after calling this function
*/
func HandleHTTPErrorRes(c *gin.Context, err *HTTPError) {
	res := gin.H{
		"success": false,
		"message": err.Message,
	}
	if len(err.Fields) > 0 {
		res["fields"] = err.Fields
	}
	c.JSON(err.Status, res)
}
