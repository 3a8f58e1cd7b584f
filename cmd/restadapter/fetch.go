package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/kbukum/restadapter/component"
	"github.com/kbukum/restadapter/httpadapter"
	"github.com/kbukum/restadapter/logger"
	"github.com/kbukum/restadapter/observability"
	"github.com/kbukum/restadapter/provider"
	"github.com/kbukum/restadapter/util"
	"github.com/kbukum/restadapter/validation"
)

const defaultMaxBody = 10 * 1024 * 1024

var fetchMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
	http.MethodPatch, http.MethodDelete, http.MethodOptions,
}

type fetchOptions struct {
	method         string
	headers        []string
	data           string
	contentType    string
	user           string
	proxy          string
	connectTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	noRedirects    bool
	include        bool
	path           string
	maxBody        string
	otlpEndpoint   string
}

// fetchInput is what the fetch pipeline consumes.
type fetchInput struct {
	url     string
	method  string
	headers map[string]string
	body    httpadapter.Body
}

// fetchResult is a fully read response.
type fetchResult struct {
	protocol   string
	statusCode int
	message    string
	headers    http.Header
	body       []byte
	truncated  bool
}

func newFetchCmd(global *globalOptions) *cobra.Command {
	opts := &fetchOptions{}

	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Execute one request and print the response body",
		Example: `  restadapter fetch https://api.example.com/v1/me -H "Accept: application/json"
  restadapter fetch https://api.example.com/v1/items -X POST -d '{"name":"x"}'
  restadapter fetch https://api.example.com/v1/me --user alice:secret --path data.name`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, global, opts, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.method, "request", "X", http.MethodGet, "HTTP method")
	f.StringArrayVarP(&opts.headers, "header", "H", nil, `request header "Name: value" (repeatable)`)
	f.StringVarP(&opts.data, "data", "d", "", "request body; @file reads it from a file")
	f.StringVar(&opts.contentType, "content-type", "", "body content type (default: detected)")
	f.StringVarP(&opts.user, "user", "u", "", "Basic credentials user:password, sent when challenged")
	f.StringVar(&opts.proxy, "proxy", "", "proxy URL (http, https or socks5)")
	f.DurationVar(&opts.connectTimeout, "connect-timeout", 0, "connect timeout, 0 for none")
	f.DurationVar(&opts.readTimeout, "read-timeout", 0, "per-read timeout, 0 for none")
	f.DurationVar(&opts.writeTimeout, "write-timeout", 0, "per-write timeout, 0 for none")
	f.BoolVar(&opts.noRedirects, "no-redirects", false, "do not follow redirects")
	f.BoolVarP(&opts.include, "include", "i", false, "print response headers")
	f.StringVar(&opts.path, "path", "", "print only this gjson path of a JSON body")
	f.StringVar(&opts.maxBody, "max-body", "10MB", "maximum body size to read")
	f.StringVar(&opts.otlpEndpoint, "otlp-endpoint", "", "export traces and metrics to this OTLP HTTP endpoint")
	return cmd
}

func runFetch(cmd *cobra.Command, global *globalOptions, opts *fetchOptions, rawURL string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	method := strings.ToUpper(opts.method)
	if err := validation.New().
		Required("url", rawURL).
		URL("url", rawURL, "http", "https").
		OneOf("method", method, fetchMethods).
		Error(); err != nil {
		return withExitCode(ExitUsageError, err)
	}
	headers, err := util.ParseHeaders(opts.headers)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	cfg, err := loadAppConfig(global.configFile)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}
	if err := applyFetchFlags(cmd, opts, &cfg.HTTP); err != nil {
		return withExitCode(ExitUsageError, err)
	}
	log := setupLogger(cfg.Logging, global.logLevel, cfg.HTTP.Name)

	shutdown, err := setupTelemetry(ctx, cfg.Telemetry, opts.otlpEndpoint)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}
	defer shutdown()

	metrics, err := observability.NewMetrics(observability.Meter(serviceName))
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}

	comp := httpadapter.NewComponent(cfg.HTTP, httpadapter.WithMetrics(metrics))
	registry := component.NewRegistry()
	if err := registry.Register(comp); err != nil {
		return withExitCode(ExitConfigError, err)
	}
	if err := registry.StartAll(ctx); err != nil {
		return withExitCode(ExitConfigError, err)
	}
	defer func() { _ = registry.StopAll(context.Background()) }()

	for _, d := range registry.Describe() {
		log.Debug("component ready", logger.Fields(logger.FieldComponent, d.Name, "type", d.Type, "details", d.Details))
	}

	body, err := requestBody(opts)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	fetch := newFetcher(comp.Adapter(), log, metrics, util.ParseSize(opts.maxBody, defaultMaxBody))

	start := time.Now()
	res, err := fetch.Execute(ctx, fetchInput{url: rawURL, method: method, headers: headers, body: body})
	elapsed := time.Since(start)
	if err != nil {
		return reportError(cmd.ErrOrStderr(), err, elapsed)
	}

	printStatus(cmd.ErrOrStderr(), res.protocol, res.statusCode, res.message, elapsed)
	if res.truncated {
		log.Warn("response body truncated", logger.Fields("max_body", opts.maxBody))
	}
	return printBody(cmd.OutOrStdout(), res, opts)
}

// applyFetchFlags overrides config values with the flags the user set.
func applyFetchFlags(cmd *cobra.Command, opts *fetchOptions, cfg *httpadapter.Config) error {
	f := cmd.Flags()
	if f.Changed("connect-timeout") {
		cfg.ConnectTimeout = opts.connectTimeout
	}
	if f.Changed("read-timeout") {
		cfg.ReadTimeout = opts.readTimeout
	}
	if f.Changed("write-timeout") {
		cfg.WriteTimeout = opts.writeTimeout
	}
	if f.Changed("proxy") {
		cfg.Proxy = opts.proxy
	}
	if opts.noRedirects {
		cfg.FollowRedirects = util.Ptr(false)
	}
	if opts.user != "" {
		username, password, ok := strings.Cut(opts.user, ":")
		if !ok || username == "" {
			return fmt.Errorf("invalid --user %q: expected user:password", util.MaskSecret(opts.user, 0))
		}
		cfg.Auth = &httpadapter.Credentials{Username: username, Password: password}
	}
	return cfg.Validate()
}

// requestBody builds the request body from --data and --content-type.
func requestBody(opts *fetchOptions) (httpadapter.Body, error) {
	if opts.data == "" {
		return nil, nil
	}
	data := []byte(opts.data)
	if name, ok := strings.CutPrefix(opts.data, "@"); ok {
		b, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("reading body file: %w", err)
		}
		data = b
	}

	contentType := opts.contentType
	if contentType == "" {
		contentType = "application/x-www-form-urlencoded"
		if gjson.ValidBytes(data) {
			contentType = "application/json"
		}
	}
	return httpadapter.BytesBody(contentType, data), nil
}

// newFetcher wraps the adapter in the logging, tracing and metrics
// middleware and adapts it to read the whole body.
func newFetcher(a *httpadapter.Adapter, log *logger.Logger, metrics *observability.Metrics, maxBody int64) provider.RequestResponse[fetchInput, *fetchResult] {
	inner := provider.Chain(
		provider.WithLogging[*httpadapter.Request, *httpadapter.Response](log),
		provider.WithTracing[*httpadapter.Request, *httpadapter.Response](serviceName),
		provider.WithMetrics[*httpadapter.Request, *httpadapter.Response](metrics),
	)(a)

	return provider.Adapt(inner, "fetch",
		func(_ context.Context, in fetchInput) (*httpadapter.Request, error) {
			return &httpadapter.Request{
				Method:  in.method,
				URL:     in.url,
				Headers: in.headers,
				Body:    in.body,
			}, nil
		},
		func(resp *httpadapter.Response) (*fetchResult, error) {
			defer func() { _ = resp.Close() }()
			body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
			if err != nil {
				return nil, err
			}
			res := &fetchResult{
				protocol:   resp.Protocol,
				statusCode: resp.StatusCode,
				message:    resp.Message,
				headers:    resp.Headers,
				body:       body,
			}
			if int64(len(body)) > maxBody {
				res.body, res.truncated = body[:maxBody], true
			}
			return res, nil
		},
	)
}

// setupTelemetry starts OTLP exporters when an endpoint is configured. The
// returned function flushes and stops them.
func setupTelemetry(ctx context.Context, cfg telemetryConfig, override string) (func(), error) {
	endpoint := util.Coalesce(override, cfg.Endpoint)
	if endpoint == "" {
		return func() {}, nil
	}

	tcfg := observability.DefaultTracerConfig(serviceName)
	tcfg.Endpoint, tcfg.Insecure = endpoint, cfg.Insecure
	tp, err := observability.InitTracer(ctx, tcfg)
	if err != nil {
		return nil, err
	}
	mcfg := observability.DefaultMeterConfig(serviceName)
	mcfg.Endpoint, mcfg.Insecure = endpoint, cfg.Insecure
	mp, err := observability.InitMeter(ctx, &mcfg)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
		_ = mp.Shutdown(shutdownCtx)
	}, nil
}

func statusColor(code int) *color.Color {
	switch {
	case code >= 200 && code < 300:
		return color.New(color.FgGreen, color.Bold)
	case code >= 300 && code < 400:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

func printStatus(w io.Writer, protocol string, code int, message string, elapsed time.Duration) {
	status := statusColor(code).Sprintf("%d %s", code, message)
	dim := color.New(color.Faint).SprintFunc()
	fmt.Fprintf(w, "%s %s %s\n", protocol, status, dim(elapsed.Round(time.Millisecond)))
}

func printBody(w io.Writer, res *fetchResult, opts *fetchOptions) error {
	if opts.include {
		cyan := color.New(color.FgCyan).SprintFunc()
		keys := make([]string, 0, len(res.headers))
		for k := range res.headers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "%s: %s\n", cyan(k), strings.Join(res.headers.Values(k), ", "))
		}
		fmt.Fprintln(w)
	}

	if opts.path == "" {
		_, err := w.Write(res.body)
		return err
	}
	if !gjson.ValidBytes(res.body) {
		return withExitCode(ExitRequestFailure, errors.New("response body is not JSON"))
	}
	value := gjson.GetBytes(res.body, opts.path)
	if !value.Exists() {
		return withExitCode(ExitRequestFailure, fmt.Errorf("path %q not found in response", opts.path))
	}
	_, err := fmt.Fprintln(w, value.String())
	return err
}

// reportError prints a failed request and maps it to an exit code.
func reportError(w io.Writer, err error, elapsed time.Duration) error {
	code := ExitNetworkError
	var netErr *httpadapter.NetworkError
	var cfgErr *httpadapter.ConfigurationError
	switch {
	case errors.As(err, &netErr):
		code = ExitRequestFailure
		message := strings.TrimSpace(strings.TrimPrefix(netErr.Status, fmt.Sprint(netErr.StatusCode)))
		printStatus(w, "HTTP", netErr.StatusCode, message, elapsed)
	case errors.As(err, &cfgErr):
		code = ExitConfigError
	}

	appErr := httpadapter.ToAppError(err)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(appErr.ToResponse())
	return reported(code, appErr)
}
