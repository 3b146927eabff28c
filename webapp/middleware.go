package webapp

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/taskbridge/errors"
	"github.com/kbukum/taskbridge/logger"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-Id"

const requestKey = "webapp.request"

// RequestScope builds a *Request for every incoming request, with the
// application, its lifespan state and a request id, and stores it in the
// gin context and the request context.
func (a *App) RequestScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(HeaderRequestID, id)

		scope := Scope{
			App:       a,
			Type:      ScopeTypeHTTP,
			State:     a.State(),
			RequestID: id,
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			Header:    c.Request.Header,
		}
		ctx := WithScope(c.Request.Context(), scope)
		ctx = logger.ContextWithRequestID(ctx, id)
		c.Request = c.Request.WithContext(ctx)
		c.Set(requestKey, &Request{Connection: NewConnection(scope), http: c.Request})
		c.Next()
	}
}

// RequestFrom returns the *Request built by RequestScope.
func RequestFrom(c *gin.Context) (*Request, bool) {
	v, ok := c.Get(requestKey)
	if !ok {
		return nil, false
	}
	r, ok := v.(*Request)
	return r, ok
}

// Recovery recovers from handler panics and logs the stack.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error("Panic recovered", map[string]interface{}{
					logger.FieldError: fmt.Sprintf("%v", err),
					"stack":           string(debug.Stack()),
					"path":            c.Request.URL.Path,
					"method":          c.Request.Method,
				})
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					errors.Internal(fmt.Errorf("panic: %v", err)).ToResponse())
			}
		}()
		c.Next()
	}
}

// RequestLogger logs every request except health checks, at a level
// chosen by status code.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == healthPath {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := map[string]interface{}{
			"method":             c.Request.Method,
			"path":               c.Request.URL.Path,
			"status":             status,
			logger.FieldDuration: time.Since(start).Milliseconds(),
		}
		if id := c.Writer.Header().Get(HeaderRequestID); id != "" {
			fields[logger.FieldRequestID] = id
		}

		switch {
		case status >= 500:
			log.Error("Request completed", fields)
		case status >= 400:
			log.Warn("Request completed", fields)
		default:
			log.Debug("Request completed", fields)
		}
	}
}
