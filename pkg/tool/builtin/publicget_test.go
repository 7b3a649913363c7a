package builtin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPublicGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte(`{"temp":21}`))
		case "/teapot":
			w.WriteHeader(http.StatusTeapot)
		case "/binary":
			w.Write([]byte{0xff, 0xfe, 0x00, 0xc1})
		}
	}))
	defer srv.Close()

	pg := NewPublicGet()
	pg.client = srv.Client()

	tests := []struct {
		name string
		args map[string]string
		want string
	}{
		{name: "missing url", args: nil, want: "You didn't provide a URL."},
		{name: "relative url", args: map[string]string{"url": "weather/today"}, want: "The URL you provided was invalid."},
		{name: "connection failure", args: map[string]string{"url": "http://127.0.0.1:1/x"}, want: "Unable to execute GET request."},
		{name: "non-200 status", args: map[string]string{"url": srv.URL + "/teapot"}, want: "Server returned error code 418"},
		{name: "binary payload", args: map[string]string{"url": srv.URL + "/binary"}, want: "Unable to parse data"},
		{name: "body passthrough", args: map[string]string{"url": srv.URL + "/ok"}, want: `{"temp":21}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := pg.Execute(context.Background(), tt.args)
			if err != nil {
				t.Fatalf("execute: %v", err)
			}
			if out != tt.want {
				t.Fatalf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestOpenURL(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone" {
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	var opened string
	ou := NewOpenURL(func(url string) error {
		opened = url
		return nil
	})
	ou.client = srv.Client()

	tests := []struct {
		name string
		args map[string]string
		want string
	}{
		{name: "missing url", args: nil, want: "Invalid input"},
		{name: "plain http rejected", args: map[string]string{"url": "http://example.com"}, want: "Invalid input"},
		{name: "non-200 status", args: map[string]string{"url": srv.URL + "/gone"}, want: "Website does not return OK status code, instead returned 404"},
		{name: "reachable page opens", args: map[string]string{"url": srv.URL + "/docs"}, want: "Successfully opened: " + srv.URL + "/docs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ou.Execute(context.Background(), tt.args)
			if err != nil {
				t.Fatalf("execute: %v", err)
			}
			if out != tt.want {
				t.Fatalf("output = %q, want %q", out, tt.want)
			}
		})
	}

	if !strings.HasSuffix(opened, "/docs") {
		t.Fatalf("opener received %q", opened)
	}
}
