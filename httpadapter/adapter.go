package httpadapter

import (
	"context"
	"errors"
	"maps"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/restadapter/logger"
	"github.com/kbukum/restadapter/observability"
	"github.com/kbukum/restadapter/util"
)

const tracerName = "github.com/kbukum/restadapter/httpadapter"

// Adapter executes library-neutral requests on net/http. It owns the
// configuration applied to every call: timeouts, redirect policy, proxy,
// cookie store, challenge responder and default headers. Configuration
// changes take effect from the next call; calls already in flight keep the
// settings they started with, except socket timeouts which apply to the next
// I/O.
type Adapter struct {
	name      string
	transport *http.Transport
	dial      DialFunc
	log       *logger.Logger
	tracer    trace.Tracer
	metrics   *observability.Metrics

	timeouts timeouts

	mu              sync.RWMutex
	followRedirects bool
	maxRedirects    int
	proxy           *Proxy
	jar             CookieStore
	auth            Authenticator
	headers         map[string]string // canonical keys, copy-on-write
}

// Option customizes an Adapter at construction.
type Option func(*Adapter)

// WithLogger sets the logger used for request logging.
func WithLogger(l *logger.Logger) Option {
	return func(a *Adapter) { a.log = l }
}

// WithTracer sets the tracer used for request spans.
func WithTracer(t trace.Tracer) Option {
	return func(a *Adapter) { a.tracer = t }
}

// WithMetrics records request counts and durations on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(a *Adapter) { a.metrics = m }
}

// WithCookieStore sets the initial cookie store.
func WithCookieStore(s CookieStore) Option {
	return func(a *Adapter) {
		if s != nil {
			a.jar = s
		}
	}
}

// WithDialer replaces the raw network dialer. Timeouts, SOCKS proxying and
// TLS are still layered on top of it.
func WithDialer(d DialFunc) Option {
	return func(a *Adapter) {
		if d != nil {
			a.dial = d
		}
	}
}

// New creates a new HTTP adapter with the given configuration.
func New(cfg Config, opts ...Option) (*Adapter, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p, err := ParseProxy(cfg.Proxy)
	if err != nil {
		return nil, err
	}

	a := &Adapter{
		name:            cfg.Name,
		dial:            defaultDial(),
		followRedirects: util.Deref(cfg.FollowRedirects),
		maxRedirects:    cfg.MaxRedirects,
		proxy:           p,
		jar:             NewCookieStore(),
		headers:         make(map[string]string, len(cfg.Headers)+1),
	}
	a.timeouts.connect.Store(int64(cfg.ConnectTimeout))
	a.timeouts.read.Store(int64(cfg.ReadTimeout))
	a.timeouts.write.Store(int64(cfg.WriteTimeout))

	a.headers["User-Agent"] = cfg.UserAgent
	for k, v := range cfg.Headers {
		a.headers[http.CanonicalHeaderKey(k)] = v
	}
	if cfg.Auth != nil {
		a.auth = BasicAuth(cfg.Auth.Username, cfg.Auth.Password)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = a.dialContext
	transport.Proxy = a.proxyForRequest

	// Apply TLS configuration
	if cfg.TLS != nil {
		tlsCfg, err := cfg.TLS.Build()
		if err != nil {
			return nil, &ConfigurationError{Field: "tls", Message: err.Error(), Err: err}
		}
		if tlsCfg != nil {
			transport.TLSClientConfig = tlsCfg
		}
	}
	a.transport = transport

	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = logger.Get(a.name)
	}
	if a.tracer == nil {
		a.tracer = observability.Tracer(tracerName)
	}

	return a, nil
}

// settings is the per-call view of the mutable configuration.
type settings struct {
	followRedirects bool
	maxRedirects    int
	jar             CookieStore
	auth            Authenticator
	headers         map[string]string
}

func (a *Adapter) snapshot() settings {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return settings{
		followRedirects: a.followRedirects,
		maxRedirects:    a.maxRedirects,
		jar:             a.jar,
		auth:            a.auth,
		headers:         a.headers,
	}
}

func (s settings) checkRedirect(_ *http.Request, via []*http.Request) error {
	if !s.followRedirects || len(via) >= s.maxRedirects {
		return http.ErrUseLastResponse
	}
	return nil
}

// Execute sends req and returns the response. A non-2xx status yields a
// *NetworkError and no body; a transport failure yields an *IOError.
func (a *Adapter) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, newRequestError("build request", errors.New("nil request"))
	}

	requestID := uuid.NewString()
	ctx, span := a.tracer.Start(ctx, observability.SpanHTTPRequest, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String(observability.AttrServiceName, a.name),
		attribute.String(observability.AttrRequestID, requestID),
		attribute.String(observability.AttrHTTPMethod, methodOf(req)),
		attribute.String(observability.AttrHTTPURL, redactURL(req.URL)),
	)
	if p := a.Proxy(); p != nil {
		span.SetAttributes(attribute.String(observability.AttrProxy, p.String()))
	}

	if a.metrics != nil {
		a.metrics.RecordRequestStart(ctx)
	}
	start := time.Now()
	resp, err := a.execute(ctx, req)
	duration := time.Since(start)

	logCtx := logger.WithRequestID(ctx, requestID)
	if sc := span.SpanContext(); sc.IsValid() {
		logCtx = logger.WithTrace(logCtx, sc.TraceID().String(), sc.SpanID().String())
	}
	log := a.log.WithContext(logCtx)
	fields := logger.MergeWithDuration(logger.Fields(
		logger.FieldMethod, methodOf(req),
		logger.FieldURL, redactURL(req.URL),
	), duration)

	status := "error"
	if code, ok := StatusCode(err); ok {
		status = strconv.Itoa(code)
	} else if resp != nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	if a.metrics != nil {
		a.metrics.RecordRequestEnd(ctx, a.name, methodOf(req), status, duration)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if code, ok := StatusCode(err); ok {
			span.SetAttributes(attribute.Int(observability.AttrHTTPStatus, code))
			fields[logger.FieldStatus] = code
			log.Warn("request returned non-success status", fields)
		} else {
			log.Error("request failed", logger.MergeWithError(fields, err))
		}
		return nil, err
	}

	span.SetAttributes(
		attribute.Int(observability.AttrHTTPStatus, resp.StatusCode),
		attribute.String(observability.AttrHTTPProtocol, resp.Protocol),
	)
	fields[logger.FieldStatus] = resp.StatusCode
	log.Debug("request completed", fields)
	return resp, nil
}

// recordChallenge marks an answered authentication challenge on the
// request span and in metrics.
func (a *Adapter) recordChallenge(ctx context.Context, statusCode int) {
	observability.AddSpanEvent(ctx, observability.EventAuthChallenge,
		attribute.Int(observability.AttrHTTPStatus, statusCode))
	if a.metrics != nil {
		a.metrics.RecordAuthChallenge(ctx, a.name, statusCode)
	}
}

// Do is an alias for Execute.
func (a *Adapter) Do(ctx context.Context, req *Request) (*Response, error) {
	return a.Execute(ctx, req)
}

// Unwrap returns the underlying *http.Transport for advanced use cases.
func (a *Adapter) Unwrap() *http.Transport {
	return a.transport
}

func (a *Adapter) execute(ctx context.Context, req *Request) (*Response, error) {
	s := a.snapshot()

	httpReq, err := buildRequest(ctx, req, s.headers)
	if err != nil {
		return nil, err
	}

	client := &http.Client{
		Transport:     &challengeTransport{next: a.transport, auth: s.auth, jar: s.jar, onChallenge: a.recordChallenge},
		Jar:           s.jar,
		CheckRedirect: s.checkRedirect,
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, newIOError("round trip", err)
	}

	if netErr := ClassifyStatusCode(resp.StatusCode); netErr != nil {
		netErr.Status = resp.Status
		discardBody(resp.Body)
		return nil, netErr
	}

	return newResponse(req, resp), nil
}

// buildRequest constructs an *http.Request. Default headers are applied
// first and request headers override them key by key.
func buildRequest(ctx context.Context, req *Request, defaults map[string]string) (*http.Request, error) {
	var mirror *mirroredBody
	if req.Body != nil {
		m, err := mirrorBody(req.Body)
		if err != nil {
			return nil, newRequestError("encode body", err)
		}
		mirror = m
	}

	var httpReq *http.Request
	var err error
	if mirror != nil {
		httpReq, err = http.NewRequestWithContext(ctx, methodOf(req), req.URL, mirror.reader())
	} else {
		httpReq, err = http.NewRequestWithContext(ctx, methodOf(req), req.URL, nil)
	}
	if err != nil {
		return nil, newRequestError("build request", err)
	}

	for k, v := range defaults {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if host := httpReq.Header.Get("Host"); host != "" {
		httpReq.Host = host
		httpReq.Header.Del("Host")
	}

	if mirror != nil {
		mirror.apply(httpReq)
	}
	return httpReq, nil
}

func methodOf(req *Request) string {
	if req.Method == "" {
		return http.MethodGet
	}
	return req.Method
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Redacted()
}

// proxyForRequest is installed as the transport's Proxy hook. SOCKS proxies
// are handled by the dialer instead.
func (a *Adapter) proxyForRequest(_ *http.Request) (*url.URL, error) {
	p := a.Proxy()
	if p == nil || p.IsSOCKS() {
		return nil, nil
	}
	return p.URL(), nil
}

// --- configuration accessors ---

// ConnectTimeout returns the connect timeout. Zero means none.
func (a *Adapter) ConnectTimeout() time.Duration { return a.timeouts.connectTimeout() }

// SetConnectTimeout sets the connect timeout. Zero disables it.
func (a *Adapter) SetConnectTimeout(d time.Duration) error {
	return setTimeout(&a.timeouts.connect, "connect_timeout", d)
}

// ReadTimeout returns the per-read socket timeout. Zero means none.
func (a *Adapter) ReadTimeout() time.Duration { return a.timeouts.readTimeout() }

// SetReadTimeout sets the per-read socket timeout. Zero disables it.
func (a *Adapter) SetReadTimeout(d time.Duration) error {
	return setTimeout(&a.timeouts.read, "read_timeout", d)
}

// WriteTimeout returns the per-write socket timeout. Zero means none.
func (a *Adapter) WriteTimeout() time.Duration { return a.timeouts.writeTimeout() }

// SetWriteTimeout sets the per-write socket timeout. Zero disables it.
func (a *Adapter) SetWriteTimeout(d time.Duration) error {
	return setTimeout(&a.timeouts.write, "write_timeout", d)
}

func setTimeout(dst interface{ Store(int64) }, field string, d time.Duration) error {
	if d < 0 {
		return &ConfigurationError{Field: field, Message: "must not be negative"}
	}
	dst.Store(int64(d))
	return nil
}

// FollowRedirects reports whether redirects are followed.
func (a *Adapter) FollowRedirects() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.followRedirects
}

// SetFollowRedirects enables or disables redirect following.
func (a *Adapter) SetFollowRedirects(follow bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.followRedirects = follow
}

// Proxy returns a copy of the active proxy, or nil for direct connections.
func (a *Adapter) Proxy() *Proxy {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.proxy == nil {
		return nil
	}
	p := *a.proxy
	return &p
}

// SetProxy sets the proxy; nil selects direct connections. Idle pooled
// connections are closed so no later request reuses a connection made
// through the previous route.
func (a *Adapter) SetProxy(p *Proxy) error {
	var next *Proxy
	if p != nil {
		cp := *p
		if err := cp.validate(); err != nil {
			return err
		}
		next = &cp
	}
	a.mu.Lock()
	a.proxy = next
	a.mu.Unlock()
	a.transport.CloseIdleConnections()
	return nil
}

// CookieStore returns the active cookie store.
func (a *Adapter) CookieStore() CookieStore {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.jar
}

// SetCookieStore replaces the active cookie store. Calls that start after
// the swap present and store cookies in the new store only.
func (a *Adapter) SetCookieStore(s CookieStore) error {
	if s == nil {
		return &ConfigurationError{Field: "cookie_store", Message: "must not be nil"}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.jar = s
	return nil
}

// Authenticate installs a Basic challenge responder for creds, replacing any
// active responder.
func (a *Adapter) Authenticate(creds Credentials) {
	a.SetAuthenticator(BasicAuth(creds.Username, creds.Password))
}

// SetAuthenticator installs auth as the challenge responder. nil removes it.
func (a *Adapter) SetAuthenticator(auth Authenticator) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.auth = auth
}

// Deauthenticate removes the active challenge responder.
func (a *Adapter) Deauthenticate() {
	a.SetAuthenticator(nil)
}

// IsAuthenticated reports whether a challenge responder is installed.
func (a *Adapter) IsAuthenticated() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.auth != nil
}

// SetDefaultHeader sets a header sent with every request unless the request
// sets the same key.
func (a *Adapter) SetDefaultHeader(key, value string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	next := maps.Clone(a.headers)
	next[http.CanonicalHeaderKey(key)] = value
	a.headers = next
}

// DefaultHeader returns the default value for key, or "" if unset.
func (a *Adapter) DefaultHeader(key string) string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.headers[http.CanonicalHeaderKey(key)]
}

// RemoveDefaultHeader removes the default for key.
func (a *Adapter) RemoveDefaultHeader(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	next := maps.Clone(a.headers)
	delete(next, http.CanonicalHeaderKey(key))
	a.headers = next
}

// DefaultHeaders returns a copy of all default headers.
func (a *Adapter) DefaultHeaders() map[string]string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return maps.Clone(a.headers)
}

// --- provider.Provider interface ---

// Name returns the adapter name (implements provider.Provider).
func (a *Adapter) Name() string {
	return a.name
}

// IsAvailable reports whether the adapter can issue requests (implements provider.Provider).
func (a *Adapter) IsAvailable(_ context.Context) bool {
	return a.transport != nil
}

// --- provider.Closeable interface ---

// Close releases idle connections held by the adapter (implements provider.Closeable).
func (a *Adapter) Close(_ context.Context) error {
	a.transport.CloseIdleConnections()
	return nil
}

// GetConfig returns the adapter's current configuration. TLS settings are
// not reported since they are fixed at construction.
func (a *Adapter) GetConfig() Config {
	a.mu.RLock()
	defer a.mu.RUnlock()

	cfg := Config{
		Name:            a.name,
		ConnectTimeout:  a.timeouts.connectTimeout(),
		ReadTimeout:     a.timeouts.readTimeout(),
		WriteTimeout:    a.timeouts.writeTimeout(),
		FollowRedirects: util.Ptr(a.followRedirects),
		MaxRedirects:    a.maxRedirects,
		Headers:         maps.Clone(a.headers),
		UserAgent:       a.headers["User-Agent"],
	}
	if a.proxy != nil {
		cfg.Proxy = a.proxy.URL().String()
	}
	if basic, ok := a.auth.(*BasicAuthenticator); ok {
		creds := basic.creds
		cfg.Auth = &creds
	}
	return cfg
}
