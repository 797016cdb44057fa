package interceptor

import (
	"net/http"
	"testing"
)

func TestHeadersSetIsCopyOnWrite(t *testing.T) {
	orig := Headers{{Name: "Accept", Value: "application/json"}}
	next := orig.Set("X-Request-Id", "1")

	if len(orig) != 1 {
		t.Fatalf("expected original untouched, got %+v", orig)
	}
	if next.Get("x-request-id") != "1" {
		t.Fatalf("expected case-insensitive get, got %+v", next)
	}
}

func TestHeadersSetCollapsesDuplicates(t *testing.T) {
	h := Headers{
		{Name: "A", Value: "1"},
		{Name: "Authorization", Value: "x"},
		{Name: "B", Value: "2"},
		{Name: "authorization", Value: "y"},
	}
	got := h.Set("AUTHORIZATION", "z")

	want := []string{"A", "Authorization", "B"}
	if len(got) != len(want) {
		t.Fatalf("expected %d lines, got %+v", len(want), got)
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("line %d: expected %s, got %s", i, name, got[i].Name)
		}
	}
	if got.Get("Authorization") != "z" {
		t.Fatalf("expected replaced value, got %q", got.Get("Authorization"))
	}
}

func TestHeadersDelAndHTTPRoundTrip(t *testing.T) {
	src := http.Header{}
	src.Add("b", "2")
	src.Add("a", "1")
	src.Add("a", "1b")

	h := HeadersFromHTTP(src)
	if h[0].Name != "A" || h[1].Value != "1b" || h[2].Name != "B" {
		t.Fatalf("expected sorted canonical headers, got %+v", h)
	}

	h = h.Del("a")
	back := h.HTTP()
	if back.Get("A") != "" || back.Get("B") != "2" {
		t.Fatalf("unexpected header after delete: %v", back)
	}
}

func TestParseResponseMessageShapes(t *testing.T) {
	if r := ParseResponse(200, []byte(`{"message":"ok","code":200}`)); r.Message != "ok" || !r.HasMessage() {
		t.Fatalf("expected message, got %+v", r)
	}
	if r := ParseResponse(200, []byte(`{"message":""}`)); r.HasMessage() {
		t.Fatal("empty message counts as absent")
	}
	if r := ParseResponse(200, []byte(`[{"message":"nested"}]`)); r.HasMessage() {
		t.Fatal("array bodies carry no message")
	}
	if r := ParseResponse(200, []byte(`null`)); r.HasMessage() {
		t.Fatal("null body carries no message")
	}
}
