package horosafe

import (
	"context"
	"errors"
	"net/netip"
	"strings"
	"testing"
)

func stubLookup(t *testing.T, answers map[string][]string) {
	t.Helper()
	orig := lookupHost
	lookupHost = func(_ context.Context, host string) ([]string, error) {
		if a, ok := answers[host]; ok {
			return a, nil
		}
		return nil, errors.New("no such host")
	}
	t.Cleanup(func() { lookupHost = orig })
}

func TestValidateURL(t *testing.T) {
	stubLookup(t, map[string][]string{
		"contoso.sharepoint.com": {"13.107.136.9"},
		"intranet.contoso.local": {"10.1.2.3"},
		"mixed.example.com":      {"93.184.216.34", "192.168.1.10"},
	})

	tests := []struct {
		url  string
		want error
	}{
		{"https://contoso.sharepoint.com/sites/x/stream.aspx?id=1", nil},
		{"http://93.184.216.34/v", nil},
		{"https://unresolvable.example.org/v", nil},
		{"ftp://contoso.sharepoint.com/v", ErrUnsafeScheme},
		{"javascript:alert(1)", ErrUnsafeScheme},
		{"http://169.254.169.254/latest/meta-data/", ErrSSRF},
		{"http://127.0.0.1:9222/json", ErrSSRF},
		{"http://10.0.0.5/admin", ErrSSRF},
		{"http://172.16.0.1/", ErrSSRF},
		{"http://[::1]:9222/json", ErrSSRF},
		{"http://[::ffff:127.0.0.1]/", ErrSSRF},
		{"http://0.0.0.0:9222/", ErrSSRF},
		{"http://100.100.100.200/latest/meta-data/", ErrSSRF},
		{"http://localhost:9222/json", ErrSSRF},
		{"http://app.localhost/", ErrSSRF},
		{"https://intranet.contoso.local/", ErrSSRF},
		{"https://mixed.example.com/", ErrSSRF},
	}
	for _, tt := range tests {
		err := ValidateURL(context.Background(), tt.url)
		if tt.want == nil && err != nil {
			t.Errorf("ValidateURL(%q): unexpected error %v", tt.url, err)
		}
		if tt.want != nil && !errors.Is(err, tt.want) {
			t.Errorf("ValidateURL(%q): got %v, want %v", tt.url, err, tt.want)
		}
	}
}

func TestValidateURL_NoHost(t *testing.T) {
	for _, raw := range []string{"https://", "http:///path", "stream.aspx"} {
		if err := ValidateURL(context.Background(), raw); err == nil {
			t.Errorf("ValidateURL(%q): expected error", raw)
		}
	}
}

func TestIsPrivate(t *testing.T) {
	tests := []struct {
		ip      string
		private bool
	}{
		{"127.0.0.1", true},
		{"10.0.0.1", true},
		{"172.31.255.255", true},
		{"192.168.0.1", true},
		{"169.254.169.254", true},
		{"fd00::1", true},
		{"fe80::1%eth0", true},
		{"8.8.8.8", false},
		{"13.107.136.9", false},
		{"2606:4700::1111", false},
	}
	for _, tt := range tests {
		if got := IsPrivate(netip.MustParseAddr(tt.ip)); got != tt.private {
			t.Errorf("IsPrivate(%s) = %v, want %v", tt.ip, got, tt.private)
		}
	}
}

func TestLimitedReadAll(t *testing.T) {
	data := strings.Repeat("x", 100)
	got, err := LimitedReadAll(strings.NewReader(data), 100)
	if err != nil || len(got) != 100 {
		t.Fatalf("at limit: got %d bytes, err %v", len(got), err)
	}
	if _, err := LimitedReadAll(strings.NewReader(data), 99); err == nil {
		t.Fatal("expected error over limit")
	}
}
