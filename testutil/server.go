package testutil

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/restadapter/component"
	"github.com/kbukum/restadapter/logger"
)

const (
	defaultServerName = "testserver"
	bodyKey           = "testutil.body"
	maxDelay          = 30 * time.Second
)

var ginModeOnce sync.Once

// RecordedRequest is one request received by a Server.
type RecordedRequest struct {
	Method  string
	Path    string
	Query   url.Values
	Host    string
	Header  http.Header
	Cookies []*http.Cookie
	Body    []byte
}

// Stub is a canned response for a method and path outside the built-in routes.
type Stub struct {
	Status int
	Header map[string]string
	Body   string
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerName sets the component name. Defaults to "testserver".
func WithServerName(name string) ServerOption {
	return func(s *Server) { s.name = name }
}

// WithTLSCertificate serves HTTPS with cert instead of plain HTTP.
func WithTLSCertificate(cert tls.Certificate) ServerOption {
	return func(s *Server) { s.cert = &cert }
}

// WithAccount adds a user accepted by the /basic-auth route.
func WithAccount(username, password string) ServerOption {
	return func(s *Server) { s.accounts[username] = password }
}

// WithServerLogger sets the logger used for request records.
func WithServerLogger(log *logger.Logger) ServerOption {
	return func(s *Server) { s.log = log }
}

// Server is a recording HTTP server for adapter tests. It is a
// TestComponent: Reset clears recorded requests and stubs, Snapshot and
// Restore capture both.
type Server struct {
	name     string
	cert     *tls.Certificate
	accounts gin.Accounts
	log      *logger.Logger

	mu       sync.Mutex
	srv      *httptest.Server
	requests []RecordedRequest
	stubs    map[string]Stub
}

type serverState struct {
	requests []RecordedRequest
	stubs    map[string]Stub
}

var (
	_ TestComponent         = (*Server)(nil)
	_ component.Describable = (*Server)(nil)
)

// NewServer creates a stopped Server.
func NewServer(opts ...ServerOption) *Server {
	ginModeOnce.Do(func() { gin.SetMode(gin.TestMode) })

	s := &Server{
		name:     defaultServerName,
		accounts: gin.Accounts{},
		stubs:    make(map[string]Stub),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get(s.name)
	}
	return s
}

// Name returns the component name.
func (s *Server) Name() string { return s.name }

// Start begins listening on a loopback port.
func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv != nil {
		return fmt.Errorf("server %s already started", s.name)
	}

	srv := httptest.NewUnstartedServer(s.engine())
	if s.cert != nil {
		srv.TLS = &tls.Config{Certificates: []tls.Certificate{*s.cert}}
		srv.StartTLS()
	} else {
		srv.Start()
	}
	s.srv = srv

	s.log.Debug("test server started", logger.Fields(logger.FieldURL, srv.URL))
	return nil
}

// Stop closes the listener and blocks until outstanding requests finish.
func (s *Server) Stop(_ context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.srv = nil
	s.mu.Unlock()

	if srv != nil {
		srv.Close()
	}
	return nil
}

// Health reports healthy while the server is listening.
func (s *Server) Health(_ context.Context) component.Health {
	h := component.Health{Name: s.name, Status: component.StatusHealthy}
	if s.URL() == "" {
		h.Status = component.StatusUnhealthy
		h.Message = "not started"
	}
	return h
}

// Describe returns a summary for startup output.
func (s *Server) Describe() component.Description {
	d := component.Description{Name: s.name, Type: "test-server", Details: "stopped"}
	if u := s.URL(); u != "" {
		d.Details = u
		if parsed, err := url.Parse(u); err == nil {
			d.Port, _ = strconv.Atoi(parsed.Port())
		}
	}
	return d
}

// URL returns the base URL, or "" when stopped.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv == nil {
		return ""
	}
	return s.srv.URL
}

// Stub serves a canned response for method and path. Built-in routes take
// precedence.
func (s *Server) Stub(method, path string, stub Stub) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stubs[stubKey(method, path)] = stub
}

// Requests returns a copy of every recorded request, oldest first.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

// LastRequest returns the most recent recorded request.
func (s *Server) LastRequest() (RecordedRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return RecordedRequest{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// Reset clears recorded requests and stubs.
func (s *Server) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
	s.stubs = make(map[string]Stub)
	return nil
}

// Snapshot captures recorded requests and stubs.
func (s *Server) Snapshot(_ context.Context) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return serverState{requests: slices.Clone(s.requests), stubs: maps.Clone(s.stubs)}, nil
}

// Restore returns to a state captured by Snapshot.
func (s *Server) Restore(_ context.Context, snapshot any) error {
	state, ok := snapshot.(serverState)
	if !ok {
		return errors.New("testutil: snapshot was not taken from a Server")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = slices.Clone(state.requests)
	s.stubs = maps.Clone(state.stubs)
	if s.stubs == nil {
		s.stubs = make(map[string]Stub)
	}
	return nil
}

func (s *Server) engine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.record)

	r.Any("/echo", s.echo)
	r.GET("/status/:code", s.status)
	r.GET("/redirect/:n", s.redirect)
	r.GET("/cookies", s.cookies)
	r.GET("/cookies/set", s.setCookies)
	r.GET("/delay/:ms", s.delay)
	if len(s.accounts) > 0 {
		r.Any("/basic-auth", gin.BasicAuthForRealm(s.accounts, "restadapter"), s.echo)
	}
	r.NoRoute(s.serveStub)
	return r
}

func (s *Server) record(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	c.Set(bodyKey, body)

	rec := RecordedRequest{
		Method:  c.Request.Method,
		Path:    c.Request.URL.Path,
		Query:   c.Request.URL.Query(),
		Host:    c.Request.Host,
		Header:  c.Request.Header.Clone(),
		Cookies: c.Request.Cookies(),
		Body:    body,
	}
	s.mu.Lock()
	s.requests = append(s.requests, rec)
	s.mu.Unlock()

	s.log.Debug("request recorded", logger.Fields(
		logger.FieldMethod, rec.Method,
		logger.FieldURL, rec.Path,
	))
	c.Next()
}

func (s *Server) echo(c *gin.Context) {
	headers := make(map[string]string, len(c.Request.Header))
	for k := range c.Request.Header {
		headers[k] = strings.Join(c.Request.Header.Values(k), ", ")
	}
	c.JSON(http.StatusOK, gin.H{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"query":   c.Request.URL.Query(),
		"host":    c.Request.Host,
		"headers": headers,
		"body":    string(bodyBytes(c)),
		"user":    c.GetString(gin.AuthUserKey),
	})
}

func (s *Server) status(c *gin.Context) {
	code, err := strconv.Atoi(c.Param("code"))
	if err != nil || code < 200 || code > 599 {
		c.String(http.StatusBadRequest, "invalid status %q", c.Param("code"))
		return
	}
	c.Status(code)
}

// redirect answers /redirect/n with a 302 to /redirect/n-1; /redirect/0 echoes.
func (s *Server) redirect(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil || n < 0 {
		c.String(http.StatusBadRequest, "invalid redirect count %q", c.Param("n"))
		return
	}
	if n == 0 {
		s.echo(c)
		return
	}
	c.Redirect(http.StatusFound, "/redirect/"+strconv.Itoa(n-1))
}

func (s *Server) cookies(c *gin.Context) {
	out := make(map[string]string)
	for _, ck := range c.Request.Cookies() {
		out[ck.Name] = ck.Value
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) setCookies(c *gin.Context) {
	set := make(map[string]string)
	for name, values := range c.Request.URL.Query() {
		if len(values) == 0 {
			continue
		}
		c.SetCookie(name, values[0], 0, "/", "", false, true)
		set[name] = values[0]
	}
	c.JSON(http.StatusOK, set)
}

func (s *Server) delay(c *gin.Context) {
	ms, err := strconv.Atoi(c.Param("ms"))
	if err != nil || ms < 0 {
		c.String(http.StatusBadRequest, "invalid delay %q", c.Param("ms"))
		return
	}
	d := min(time.Duration(ms)*time.Millisecond, maxDelay)
	select {
	case <-time.After(d):
		s.echo(c)
	case <-c.Request.Context().Done():
	}
}

func (s *Server) serveStub(c *gin.Context) {
	s.mu.Lock()
	stub, ok := s.stubs[stubKey(c.Request.Method, c.Request.URL.Path)]
	s.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no route", "path": c.Request.URL.Path})
		return
	}
	for k, v := range stub.Header {
		c.Header(k, v)
	}
	status := stub.Status
	if status == 0 {
		status = http.StatusOK
	}
	c.Data(status, "text/plain; charset=utf-8", []byte(stub.Body))
}

func bodyBytes(c *gin.Context) []byte {
	if v, ok := c.Get(bodyKey); ok {
		if b, ok := v.([]byte); ok {
			return b
		}
	}
	return nil
}

func stubKey(method, path string) string {
	return strings.ToUpper(method) + " " + path
}
