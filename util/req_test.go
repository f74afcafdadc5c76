package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newWrappedContext(t *testing.T, reqCtx context.Context) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil).WithContext(reqCtx)
	return c, recorder
}

func TestHandlerWrapperAppliesDeadline(t *testing.T) {
	c, _ := newWrappedContext(t, context.Background())

	var handlerCtx context.Context
	HandlerWrapper(func(ctx context.Context, c *gin.Context) (interface{}, *HTTPError) {
		handlerCtx = ctx
		return nil, nil
	}, &HandlerOpts{})(c)

	deadline, hasDeadline := handlerCtx.Deadline()
	require.True(t, hasDeadline)
	require.WithinDuration(t, time.Now().Add(RequestTimeout), deadline, time.Second)
	require.NotNil(t, handlerCtx.Done())
}

func TestHandlerWrapperNoTimeoutSkipsDeadline(t *testing.T) {
	c, _ := newWrappedContext(t, context.Background())

	var handlerCtx context.Context
	HandlerWrapper(func(ctx context.Context, c *gin.Context) (interface{}, *HTTPError) {
		handlerCtx = ctx
		return nil, nil
	}, &HandlerOpts{NoTimeout: true})(c)

	_, hasDeadline := handlerCtx.Deadline()
	require.False(t, hasDeadline)
}

func TestHandlerWrapperExpiredContextSurfacesError(t *testing.T) {
	reqCtx, cancel := context.WithCancel(context.Background())
	cancel()
	c, recorder := newWrappedContext(t, reqCtx)

	HandlerWrapper(func(ctx context.Context, c *gin.Context) (interface{}, *HTTPError) {
		// a blocking call would fail the same way once the deadline passes
		if err := ctx.Err(); err != nil {
			return nil, BuildDbHTTPErr(err)
		}
		return nil, nil
	}, &HandlerOpts{})(c)

	require.Equal(t, http.StatusInternalServerError, recorder.Code)
}
