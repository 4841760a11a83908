package client

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// Body is a buffered, seekable response body.
//
// Reading moves the cursor like any reader; Rewind puts it back at the start.
// Close is a no-op so the body stays readable after a consumer closes it.
type Body struct {
	data []byte
	r    *bytes.Reader
}

// NewBody wraps b. The slice is not copied.
func NewBody(b []byte) *Body {
	return &Body{data: b, r: bytes.NewReader(b)}
}

func (b *Body) Read(p []byte) (int, error) { return b.r.Read(p) }

func (b *Body) Seek(offset int64, whence int) (int64, error) { return b.r.Seek(offset, whence) }

func (b *Body) Close() error { return nil }

// Rewind resets the read cursor to the first byte.
func (b *Body) Rewind() {
	_, _ = b.r.Seek(0, io.SeekStart)
}

// Bytes returns the full body regardless of the cursor position.
func (b *Body) Bytes() []byte { return b.data }

// String returns the full body as text regardless of the cursor position.
func (b *Body) String() string { return string(b.data) }

// Len returns the body size in bytes.
func (b *Body) Len() int { return len(b.data) }

// Response is what a transport hands back for one exchange.
type Response struct {
	StatusCode int
	Reason     string
	Header     http.Header
	Body       *Body

	// Raw is the underlying response when the transport has one. Its body has
	// already been consumed into Body.
	Raw *http.Response
}

// NewResponse builds a response from its parts. An empty reason is filled in
// from the status code.
func NewResponse(status int, reason string, header http.Header, body []byte) *Response {
	if reason == "" {
		reason = http.StatusText(status)
	}
	if header == nil {
		header = http.Header{}
	}
	return &Response{
		StatusCode: status,
		Reason:     reason,
		Header:     header,
		Body:       NewBody(body),
	}
}

// FromHTTP drains and closes resp.Body and returns the buffered response.
func FromHTTP(resp *http.Response) (*Response, error) {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	out := NewResponse(resp.StatusCode, ReasonPhrase(resp.StatusCode, resp.Status), resp.Header, data)
	out.Raw = resp
	return out, nil
}

// ReasonPhrase strips the numeric code from a status line such as "200 OK".
func ReasonPhrase(code int, status string) string {
	reason := strings.TrimSpace(strings.TrimPrefix(status, strconv.Itoa(code)))
	if reason == "" {
		return http.StatusText(code)
	}
	return reason
}

// JSON decodes the body into v without moving the read cursor.
func (r *Response) JSON(v interface{}) error {
	return sonic.Unmarshal(r.Body.Bytes(), v)
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
