package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/carlmjohnson/requests"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/pratik-mahalle/smmpanel/internal/domain/provider"
)

// DefaultTimeout applies when neither the provider nor the caller sets one
const DefaultTimeout = 30 * time.Second

const (
	bodyFormatForm = "form"
	bodyFormatJSON = "json"

	authInBody   = "body"
	authInQuery  = "query"
	authInHeader = "header"
)

// Request is a fully resolved outbound status request
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// StatusResult is a normalized status response. A nil field was not supplied
// by the provider and must not overwrite stored values.
type StatusResult struct {
	Status     *string
	Remains    *int64
	StartCount *int64
}

// Adapter translates one provider's APISpec into requests and parses its replies
type Adapter struct {
	providerID int64
	endpoint   *url.URL
	apiKey     string
	method     string
	spec       provider.APISpec
	timeout    time.Duration
	transport  http.RoundTripper
	limiter    *rate.Limiter
}

// Option customizes an Adapter
type Option func(*Adapter)

// WithTransport sets the round tripper used for outbound calls
func WithTransport(rt http.RoundTripper) Option {
	return func(a *Adapter) {
		a.transport = rt
	}
}

// WithLimiter throttles outbound calls for the provider
func WithLimiter(l *rate.Limiter) Option {
	return func(a *Adapter) {
		a.limiter = l
	}
}

// WithDefaultTimeout is used when the provider has no timeout of its own
func WithDefaultTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		if a.timeout <= 0 {
			a.timeout = d
		}
	}
}

// NewAdapter validates the provider's specification and returns an adapter for it.
// A *ConfigurationError is returned for unusable specifications.
func NewAdapter(p *provider.Provider, opts ...Option) (*Adapter, error) {
	spec, missing, reason := normalizeSpec(p)

	var endpoint *url.URL
	if p.APIURL == "" {
		missing = append(missing, "api_url")
	} else if u, err := url.Parse(p.APIURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		reason = joinReason(reason, "api_url must be an absolute http(s) URL")
	} else {
		endpoint = u
	}

	if len(missing) > 0 || reason != "" {
		return nil, &ConfigurationError{ProviderID: p.ID, Missing: missing, Reason: reason}
	}

	a := &Adapter{
		providerID: p.ID,
		endpoint:   endpoint,
		apiKey:     p.APIKey,
		method:     spec.Method,
		spec:       spec,
		timeout:    p.Timeout,
		transport:  http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.timeout <= 0 {
		a.timeout = DefaultTimeout
	}

	return a, nil
}

func normalizeSpec(p *provider.Provider) (provider.APISpec, []string, string) {
	spec := p.Spec
	var missing []string
	var reason string

	spec.Method = strings.ToUpper(strings.TrimSpace(spec.Method))
	if spec.Method == "" {
		spec.Method = strings.ToUpper(strings.TrimSpace(p.HTTPMethod))
	}
	if spec.Method == "" {
		spec.Method = http.MethodPost
	}
	if spec.Method != http.MethodGet && spec.Method != http.MethodPost {
		reason = joinReason(reason, "unsupported http method "+spec.Method)
	}

	spec.BodyFormat = strings.ToLower(spec.BodyFormat)
	if spec.BodyFormat == "" {
		spec.BodyFormat = bodyFormatForm
	}
	if spec.BodyFormat != bodyFormatForm && spec.BodyFormat != bodyFormatJSON {
		reason = joinReason(reason, "unsupported body format "+spec.BodyFormat)
	}

	spec.Auth.Placement = strings.ToLower(spec.Auth.Placement)
	if spec.Auth.Placement == "" {
		spec.Auth.Placement = authInBody
	}
	switch spec.Auth.Placement {
	case authInBody, authInQuery:
		if spec.Auth.Field == "" {
			spec.Auth.Field = "key"
		}
	case authInHeader:
		if spec.Auth.Header == "" {
			missing = append(missing, "auth.header")
		}
	default:
		reason = joinReason(reason, "unsupported auth placement "+spec.Auth.Placement)
	}

	if spec.Request.ActionField == "" {
		spec.Request.ActionField = "action"
	}
	if spec.Request.StatusAction == "" {
		spec.Request.StatusAction = "status"
	}
	if spec.Request.OrderIDField == "" {
		missing = append(missing, "request.order_id_field")
	}
	if spec.Response.Status == "" {
		missing = append(missing, "response.status")
	}

	return spec, missing, reason
}

func joinReason(existing, next string) string {
	if existing == "" {
		return next
	}
	return existing + "; " + next
}

// ProviderID returns the provider this adapter serves
func (a *Adapter) ProviderID() int64 {
	return a.providerID
}

// Timeout returns the per-request deadline
func (a *Adapter) Timeout() time.Duration {
	return a.timeout
}

// BuildOrderStatusRequest constructs the status request for providerOrderID
func (a *Adapter) BuildOrderStatusRequest(providerOrderID string) (*Request, error) {
	if strings.TrimSpace(providerOrderID) == "" {
		return nil, errors.New("provider order id is empty")
	}

	params := map[string]string{}
	for k, v := range a.spec.Request.Extra {
		params[k] = v
	}
	params[a.spec.Request.ActionField] = a.spec.Request.StatusAction
	params[a.spec.Request.OrderIDField] = providerOrderID

	u := *a.endpoint
	query := u.Query()
	header := http.Header{}
	header.Set("Accept", "application/json")

	switch a.spec.Auth.Placement {
	case authInBody:
		params[a.spec.Auth.Field] = a.apiKey
	case authInQuery:
		query.Set(a.spec.Auth.Field, a.apiKey)
	case authInHeader:
		header.Set(a.spec.Auth.Header, a.spec.Auth.Prefix+a.apiKey)
	}

	req := &Request{Method: a.method, Header: header}

	if a.method == http.MethodGet {
		for k, v := range params {
			query.Set(k, v)
		}
	} else {
		switch a.spec.BodyFormat {
		case bodyFormatJSON:
			body, err := json.Marshal(params)
			if err != nil {
				return nil, err
			}
			req.Body = body
			header.Set("Content-Type", "application/json")
		default:
			form := url.Values{}
			for k, v := range params {
				form.Set(k, v)
			}
			req.Body = []byte(form.Encode())
			header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}

	u.RawQuery = query.Encode()
	req.URL = u.String()

	return req, nil
}

// ParseOrderStatusResponse extracts the mapped fields from a raw response body
func (a *Adapter) ParseOrderStatusResponse(body []byte) (*StatusResult, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, &ResponseError{ProviderID: a.providerID, Reason: "empty response body"}
	}
	if !gjson.ValidBytes(trimmed) {
		return nil, &ResponseError{ProviderID: a.providerID, Reason: "response is not valid JSON", Body: snippet(trimmed)}
	}

	doc := gjson.ParseBytes(trimmed)
	if !doc.IsObject() {
		return nil, &ResponseError{ProviderID: a.providerID, Reason: "response is not a JSON object", Body: snippet(trimmed)}
	}

	if path := a.spec.Response.Error; path != "" {
		if msg, ok := errorAt(doc, path); ok {
			return nil, &ResponseError{ProviderID: a.providerID, Reason: "provider error: " + msg, Body: snippet(trimmed)}
		}
	}

	result := &StatusResult{}
	if s, ok := stringAt(doc, a.spec.Response.Status); ok {
		result.Status = &s
	}
	if path := a.spec.Response.Remains; path != "" {
		if n, ok := intAt(doc, path); ok {
			result.Remains = &n
		}
	}
	if path := a.spec.Response.StartCount; path != "" {
		if n, ok := intAt(doc, path); ok {
			result.StartCount = &n
		}
	}

	return result, nil
}

// stringAt returns the value at path when it is present, non-null and non-blank
func stringAt(doc gjson.Result, path string) (string, bool) {
	r := doc.Get(path)
	if !r.Exists() || r.Type == gjson.Null {
		return "", false
	}
	s := strings.TrimSpace(r.String())
	return s, s != ""
}

// errorAt reports a provider error when path holds a non-blank string or true.
// Panels that always send "error": false or 0 are not failing.
func errorAt(doc gjson.Result, path string) (string, bool) {
	r := doc.Get(path)
	switch r.Type {
	case gjson.String:
		s := strings.TrimSpace(r.Str)
		return s, s != ""
	case gjson.True:
		return "error flag set", true
	case gjson.JSON:
		s := strings.TrimSpace(r.Raw)
		return s, s != "{}" && s != "[]"
	}
	return "", false
}

// maxCount is 2^63, the first float64 past MaxInt64.
const maxCount = float64(1 << 63)

// intAt accepts non-negative integers given as JSON numbers or numeric strings.
// Integral floats such as 150.0 or 1e3 count; fractions, negatives, NaN, Inf and
// values past MaxInt64 are undefined so the stored count is kept.
func intAt(doc gjson.Result, path string) (int64, bool) {
	r := doc.Get(path)
	var raw string
	switch r.Type {
	case gjson.Number:
		raw = r.Raw
	case gjson.String:
		raw = strings.TrimSpace(r.Str)
	default:
		return 0, false
	}

	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n, n >= 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f >= maxCount || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}

// FetchOrderStatus sends the status request and parses the reply
func (a *Adapter) FetchOrderStatus(ctx context.Context, providerOrderID string) (*StatusResult, error) {
	req, err := a.BuildOrderStatusRequest(providerOrderID)
	if err != nil {
		return nil, err
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, &NetworkError{ProviderID: a.providerID, Err: err}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var buf bytes.Buffer
	builder := requests.
		URL(req.URL).
		Method(req.Method).
		Client(&http.Client{Transport: a.transport, Timeout: a.timeout}).
		AddValidator(checkStatus).
		ToBytesBuffer(&buf)
	for key, values := range req.Header {
		builder = builder.Header(key, values...)
	}
	if len(req.Body) > 0 {
		builder = builder.BodyBytes(req.Body)
	}

	if err := builder.Fetch(ctx); err != nil {
		return nil, a.classify(err)
	}

	return a.ParseOrderStatusResponse(buf.Bytes())
}

func (a *Adapter) classify(err error) error {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return &NetworkError{ProviderID: a.providerID, StatusCode: statusErr.StatusCode, Err: err}
	}
	if isTimeout(err) {
		return &NetworkError{ProviderID: a.providerID, Timeout: true, Err: err}
	}
	return &NetworkError{ProviderID: a.providerID, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func checkStatus(res *http.Response) error {
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	return &HTTPStatusError{StatusCode: res.StatusCode, Body: snippet(body)}
}
