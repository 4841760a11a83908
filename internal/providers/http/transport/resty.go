package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/GriffinCanCode/AgentOS/foundation/internal/providers/http/client"
	"github.com/GriffinCanCode/AgentOS/foundation/internal/providers/http/files"
	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/publicsuffix"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "AgentOS-Foundation/1.0"
)

// profile selects one underlying resty client. Options that can only be set on
// the connection (IP family, TLS verification, proxy) get their own client.
type profile struct {
	ipResolve string
	insecure  bool
	proxy     string
}

// Resty is the default transport. It builds requests with resty and sends
// them over a pooled http.Transport. It never retries.
type Resty struct {
	mu        sync.Mutex
	clients   map[profile]*resty.Client
	base      *http.Transport
	jar       http.CookieJar
	timeout   time.Duration
	userAgent string
}

// Option configures a Resty transport.
type Option func(*Resty)

// WithTimeout sets the per-request timeout used when the options carry none.
func WithTimeout(d time.Duration) Option {
	return func(t *Resty) { t.timeout = d }
}

// WithUserAgent sets the default User-Agent header.
func WithUserAgent(ua string) Option {
	return func(t *Resty) { t.userAgent = ua }
}

// WithBaseTransport replaces the pooled base transport. It is cloned per
// connection profile and never mutated.
func WithBaseTransport(base *http.Transport) Option {
	return func(t *Resty) { t.base = base }
}

// WithCookieJar replaces the shared cookie jar. A nil jar disables cookies.
func WithCookieJar(jar http.CookieJar) Option {
	return func(t *Resty) { t.jar = jar }
}

// New creates the default transport.
func New(opts ...Option) *Resty {
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})

	t := &Resty{
		clients:   make(map[profile]*resty.Client),
		base:      pooledTransport(),
		jar:       jar,
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// pooledTransport borrows the pooled transport retryablehttp builds for its
// own client. Retries stay with the caller.
func pooledTransport() *http.Transport {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil

	if tr, ok := retryClient.HTTPClient.Transport.(*http.Transport); ok {
		return tr
	}
	return http.DefaultTransport.(*http.Transport).Clone()
}

// Send implements client.Transport.
func (t *Resty) Send(ctx context.Context, method, rawURL string, opts client.Options) (*client.Response, error) {
	sub := opts.Sub(client.KeyTransport)

	prof, err := profileFrom(sub)
	if err != nil {
		return nil, err
	}

	timeout, err := durationOption(sub, client.KeyTimeout)
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	rc, err := t.client(prof)
	if err != nil {
		return nil, err
	}

	req := rc.R().SetContext(ctx)
	if err := applyOptions(req, opts); err != nil {
		return nil, err
	}
	if ua, _ := client.GetString(sub, client.KeyUserAgent, false); ua != "" {
		req.SetHeader("User-Agent", ua)
	}

	resp, err := req.Execute(method, rawURL)
	if err != nil {
		return nil, client.TransportError(method, rawURL, err)
	}

	out := client.NewResponse(
		resp.StatusCode(),
		client.ReasonPhrase(resp.StatusCode(), resp.Status()),
		resp.Header(),
		resp.Body(),
	)
	out.Raw = resp.RawResponse
	return out, nil
}

// client returns the resty client for a profile, creating it on first use.
func (t *Resty) client(p profile) (*resty.Client, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if rc, ok := t.clients[p]; ok {
		return rc, nil
	}

	tr, err := t.transportFor(p)
	if err != nil {
		return nil, err
	}

	rc := resty.New()
	rc.
		SetTransport(tr).
		SetTimeout(t.timeout).
		SetHeader("User-Agent", t.userAgent).
		SetCookieJar(t.jar)
	rc.JSONMarshal = sonic.Marshal
	rc.JSONUnmarshal = sonic.Unmarshal

	t.clients[p] = rc
	return rc, nil
}

func (t *Resty) transportFor(p profile) (*http.Transport, error) {
	tr := t.base.Clone()

	switch p.ipResolve {
	case client.IPResolveV4:
		tr.DialContext = dialFamily("tcp4")
	case client.IPResolveV6:
		tr.DialContext = dialFamily("tcp6")
	}

	if p.insecure {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	if p.proxy != "" {
		proxyURL, err := url.Parse(p.proxy)
		if err != nil {
			return nil, client.ConfigurationError(client.KeyProxy, err)
		}
		tr.Proxy = http.ProxyURL(proxyURL)
	}
	return tr, nil
}

func dialFamily(network string) func(ctx context.Context, _, addr string) (net.Conn, error) {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return func(ctx context.Context, _, addr string) (net.Conn, error) {
		return dialer.DialContext(ctx, network, addr)
	}
}

// CloseIdleConnections closes idle connections of every profile.
func (t *Resty) CloseIdleConnections() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, rc := range t.clients {
		rc.GetClient().CloseIdleConnections()
	}
}

func profileFrom(sub client.Options) (profile, error) {
	var p profile

	mode, err := client.GetString(sub, client.KeyIPResolve, false)
	if err != nil {
		return p, client.ConfigurationError(client.KeyIPResolve, err)
	}
	switch mode {
	case "", client.IPResolveAny:
		p.ipResolve = client.IPResolveAny
	case client.IPResolveV4, client.IPResolveV6:
		p.ipResolve = mode
	default:
		return p, client.ConfigurationError(client.KeyIPResolve, fmt.Errorf("unknown mode %q", mode))
	}

	p.insecure = !client.GetBool(sub, client.KeyVerify, true)

	proxy, err := client.GetString(sub, client.KeyProxy, false)
	if err != nil {
		return p, client.ConfigurationError(client.KeyProxy, err)
	}
	p.proxy = proxy

	return p, nil
}

// durationOption accepts a time.Duration, a duration string ("5s") or a number
// of seconds.
func durationOption(sub client.Options, key string) (time.Duration, error) {
	switch v := sub[key].(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return v, nil
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d, nil
		}
		secs, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, client.ConfigurationError(key, err)
		}
		return time.Duration(secs * float64(time.Second)), nil
	default:
		return 0, client.ConfigurationError(key, fmt.Errorf("unsupported value type %T", v))
	}
}

// applyOptions maps the request-shape keys onto the resty request.
func applyOptions(req *resty.Request, opts client.Options) error {
	if v, ok := opts[client.KeyHeaders]; ok {
		headers, err := headerMap(v)
		if err != nil {
			return client.ConfigurationError(client.KeyHeaders, err)
		}
		for k, vals := range headers {
			for _, val := range vals {
				req.Header.Add(k, val)
			}
		}
	}

	if v, ok := opts[client.KeyQuery]; ok {
		query, err := client.Values(v)
		if err != nil {
			return client.ConfigurationError(client.KeyQuery, err)
		}
		req.SetQueryParamsFromValues(query)
	}

	if v, ok := opts[client.KeyForm]; ok {
		form, err := client.Values(v)
		if err != nil {
			return client.ConfigurationError(client.KeyForm, err)
		}
		if len(form) > 0 {
			req.SetFormDataFromValues(form)
		}
	}

	if v, ok := opts[client.KeyJSON]; ok && v != nil {
		req.SetHeader("Content-Type", "application/json")
		req.SetBody(v)
	}

	if v, ok := opts[client.KeyMultipart]; ok && v != nil {
		parts, isParts := v.([]files.Part)
		if !isParts {
			return client.ConfigurationError(client.KeyMultipart, fmt.Errorf("unsupported value type %T", v))
		}
		fields := make([]*resty.MultipartField, 0, len(parts))
		for _, p := range parts {
			fields = append(fields, &resty.MultipartField{
				Param:       p.Name,
				FileName:    p.FileName,
				ContentType: p.ContentType,
				Reader:      p.Contents,
			})
		}
		req.SetMultipartFields(fields...)
	}

	return nil
}

// headerMap canonicalises header names, so "accept" from one map and "Accept"
// from another end up as one header.
func headerMap(v interface{}) (http.Header, error) {
	values, err := client.Values(v)
	if err != nil {
		return nil, err
	}
	h := make(http.Header, len(values))
	for k, vals := range values {
		for _, val := range vals {
			h.Add(k, val)
		}
	}
	return h, nil
}
