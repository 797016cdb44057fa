package interceptor

import (
	"encoding/json"
	"net/http"
	"net/textproto"
	"sort"
)

// Header is one outbound header line.
type Header struct {
	Name  string
	Value string
}

// Headers is an ordered header list. Names compare case-insensitively.
// Methods never modify the receiver's backing array.
type Headers []Header

// Get returns the first value for name, or "".
func (h Headers) Get(name string) string {
	key := textproto.CanonicalMIMEHeaderKey(name)
	for _, hdr := range h {
		if textproto.CanonicalMIMEHeaderKey(hdr.Name) == key {
			return hdr.Value
		}
	}
	return ""
}

// Has reports whether any line for name exists.
func (h Headers) Has(name string) bool {
	key := textproto.CanonicalMIMEHeaderKey(name)
	for _, hdr := range h {
		if textproto.CanonicalMIMEHeaderKey(hdr.Name) == key {
			return true
		}
	}
	return false
}

// Set returns a copy of h where name has exactly one line with value. The
// line keeps the position of the first existing occurrence, or is appended.
func (h Headers) Set(name, value string) Headers {
	key := textproto.CanonicalMIMEHeaderKey(name)
	out := make(Headers, 0, len(h)+1)
	replaced := false
	for _, hdr := range h {
		if textproto.CanonicalMIMEHeaderKey(hdr.Name) != key {
			out = append(out, hdr)
			continue
		}
		if !replaced {
			out = append(out, Header{Name: key, Value: value})
			replaced = true
		}
	}
	if !replaced {
		out = append(out, Header{Name: key, Value: value})
	}
	return out
}

// Del returns a copy of h without any line for name.
func (h Headers) Del(name string) Headers {
	key := textproto.CanonicalMIMEHeaderKey(name)
	out := make(Headers, 0, len(h))
	for _, hdr := range h {
		if textproto.CanonicalMIMEHeaderKey(hdr.Name) != key {
			out = append(out, hdr)
		}
	}
	return out
}

// HTTP converts h to an http.Header.
func (h Headers) HTTP() http.Header {
	out := make(http.Header, len(h))
	for _, hdr := range h {
		out.Add(hdr.Name, hdr.Value)
	}
	return out
}

// HeadersFromHTTP converts an http.Header, ordering names alphabetically
// and keeping per-name value order.
func HeadersFromHTTP(src http.Header) Headers {
	names := make([]string, 0, len(src))
	for name := range src {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(Headers, 0, len(src))
	for _, name := range names {
		for _, v := range src[name] {
			out = append(out, Header{Name: textproto.CanonicalMIMEHeaderKey(name), Value: v})
		}
	}
	return out
}

// Request is the outbound call as interceptors see it.
type Request struct {
	Method string
	// Path is the backend path relative to the API base, e.g. "/api/ose/quotas".
	Path   string
	Header Headers
}

// Response is the inbound reply as interceptors see it.
type Response struct {
	Status int
	// Message is the body's "message" string; "" when absent.
	Message string
	Body    []byte
}

// HasMessage reports whether the body carried a non-empty message.
func (r Response) HasMessage() bool {
	return r.Message != ""
}

// ParseResponse builds a [Response], extracting a top-level "message"
// string from a JSON object body. Anything else leaves Message empty.
func ParseResponse(status int, body []byte) Response {
	resp := Response{Status: status, Body: body}

	var envelope struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Message) == 0 {
		return resp
	}
	var msg string
	if err := json.Unmarshal(envelope.Message, &msg); err != nil {
		return resp
	}
	resp.Message = msg
	return resp
}
