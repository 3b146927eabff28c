package webapp

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/kbukum/taskbridge/di"
)

// ScopeTypeHTTP is the scope type of HTTP requests, real or synthetic.
const ScopeTypeHTTP = "http"

// Capabilities under which request-like values are provided to task handlers.
const (
	CapabilityRequest    di.Capability = "webapp.request"
	CapabilityConnection di.Capability = "webapp.connection"
)

// Scope describes the connection a Request or Connection was built from.
// Worker processes build synthetic scopes that carry only the application
// and its lifespan state.
type Scope struct {
	App       any
	Type      string
	State     map[string]any
	RequestID string
	Synthetic bool
	Method    string
	Path      string
	Header    http.Header
}

// SyntheticScope returns an HTTP scope for code running outside a request.
func SyntheticScope(app any, state map[string]any) Scope {
	if state == nil {
		state = map[string]any{}
	}
	return Scope{
		App:       app,
		Type:      ScopeTypeHTTP,
		State:     state,
		RequestID: uuid.NewString(),
		Synthetic: true,
		Method:    http.MethodGet,
		Path:      "/",
		Header:    http.Header{},
	}
}

// Connection is the request-agnostic view of a scope.
type Connection struct {
	scope Scope
}

// NewConnection builds a connection from a scope.
func NewConnection(scope Scope) *Connection {
	return &Connection{scope: scope}
}

// Scope returns the underlying scope.
func (c *Connection) Scope() Scope { return c.scope }

// App returns the application the scope belongs to.
func (c *Connection) App() any { return c.scope.App }

// State returns the lifespan state. Callers must treat it as read-only.
func (c *Connection) State() map[string]any { return c.scope.State }

// StateValue returns one lifespan state entry.
func (c *Connection) StateValue(key string) (any, bool) {
	v, ok := c.scope.State[key]
	return v, ok
}

// RequestID returns the id assigned to the scope.
func (c *Connection) RequestID() string { return c.scope.RequestID }

// Synthetic reports whether the scope was built outside a real request.
func (c *Connection) Synthetic() bool { return c.scope.Synthetic }

// Request is a Connection with an HTTP request attached.
type Request struct {
	*Connection
	http *http.Request
}

// NewRequest builds a request from a scope. The attached *http.Request is
// synthetic and carries the scope in its context.
func NewRequest(scope Scope) *Request {
	method := scope.Method
	if method == "" {
		method = http.MethodGet
	}
	path := scope.Path
	if path == "" {
		path = "/"
	}
	header := scope.Header
	if header == nil {
		header = http.Header{}
	}
	hr := &http.Request{
		Method:     method,
		URL:        &url.URL{Path: path},
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     header,
		Host:       "localhost",
	}
	return &Request{
		Connection: NewConnection(scope),
		http:       hr.WithContext(WithScope(context.Background(), scope)),
	}
}

// HTTP returns the underlying *http.Request.
func (r *Request) HTTP() *http.Request { return r.http }

// AppAs returns the connection's application as T.
func AppAs[T any](c *Connection) (T, bool) {
	v, ok := c.App().(T)
	return v, ok
}

type scopeKey struct{}

// WithScope stores a scope in ctx.
func WithScope(ctx context.Context, scope Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// FromContext returns the scope stored in ctx.
func FromContext(ctx context.Context) (Scope, bool) {
	s, ok := ctx.Value(scopeKey{}).(Scope)
	return s, ok
}
