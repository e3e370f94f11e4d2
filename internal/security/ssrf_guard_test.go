package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewSafeClient(t *testing.T) {
	client := NewGuard().NewSafeClient(5 * time.Second)
	if client == nil {
		t.Fatal("NewSafeClient() returned nil")
	}
	if client.Timeout != 5*time.Second {
		t.Errorf("expected timeout %v, got %v", 5*time.Second, client.Timeout)
	}
	if client.Transport == nil || client.Transport == http.DefaultTransport {
		t.Fatal("safeurlのTransportが設定されているべきです")
	}
}

// httptestサーバーは127.0.0.1で起動されるため、safeurlがブロックする。
func TestNewSafeClient_BlocksLoopback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := NewGuard().NewSafeClient(5 * time.Second)
	resp, err := client.Get(ts.URL)
	if err == nil {
		resp.Body.Close()
		t.Fatal("ループバックへのリクエストはエラーになるべきです")
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://codeforces.com/contests/1900", false},
		{"http://atcoder.jp/contests/abc400", false},
		{"https://www.codechef.com/START100?tab=x", false},
		{"", true},
		{"://bad", true},
		{"ftp://example.com/file", true},
		{"javascript:alert(1)", true},
		{"https:///path-only", true},
		{"http://10.0.0.1/", true},
		{"http://172.16.5.4/", true},
		{"http://192.168.1.100/", true},
		{"http://100.64.0.1/", true},
		{"http://127.0.0.1/", true},
		{"http://169.254.169.254/latest/meta-data", true},
		{"http://0.0.0.0/", true},
		{"http://[::1]/", true},
		{"http://[fe80::1]/", true},
		{"http://[::ffff:127.0.0.1]/", true},
		{"http://localhost:8080/", true},
		{"http://LOCALHOST./", true},
		{"http://app.localhost/", true},
		{"http://metadata.google.internal/", true},
		{"http://printer.local/", true},
	}

	guard := NewGuard()
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := guard.ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}
