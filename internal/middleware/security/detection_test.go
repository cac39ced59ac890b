package security

import (
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestDetectSuspiciousRequest(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		want   bool
	}{
		{"normal api call", "GET", "/api/schedule?year=2025&month=6", false},
		{"health check", "GET", "/healthz", false},
		{"path traversal", "GET", "/api/../etc/passwd", true},
		{"dotenv probe", "GET", "/.env", true},
		{"wordpress scan", "GET", "/wp-admin/setup.php", true},
		{"git probe", "GET", "/.git/config", true},
		{"sql injection in query", "GET", "/api/schedule?year=1 UNION SELECT password", true},
		{"script tag in query", "GET", "/api/schedule?month=<script>alert(1)</script>", true},
		{"trace method", "TRACE", "/api/schedule", true},
		{"connect method", "CONNECT", "/api/schedule", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector()
			// Some targets contain raw spaces that httptest.NewRequest
			// rejects, so parse the target and attach it separately.
			u, err := url.Parse(tt.target)
			if err != nil {
				t.Fatalf("url.Parse(%q) error = %v", tt.target, err)
			}
			r := httptest.NewRequest(tt.method, "/", nil)
			r.URL = u
			if got := d.DetectSuspiciousRequest(r); got != tt.want {
				t.Errorf("DetectSuspiciousRequest(%s %s) = %v, want %v", tt.method, tt.target, got, tt.want)
			}
		})
	}
}

func TestDetectSuspiciousRequest_LongURL(t *testing.T) {
	d := NewDetector()
	target := "/api/schedule?pad="
	for len(target) <= 2048 {
		target += "aaaaaaaaaa"
	}
	r := httptest.NewRequest("GET", target, nil)
	if !d.DetectSuspiciousRequest(r) {
		t.Error("oversized URL should be suspicious")
	}
}

func TestSuspiciousCount(t *testing.T) {
	d := NewDetector()

	d.DetectSuspiciousRequest(httptest.NewRequest("GET", "/.env", nil))
	d.DetectSuspiciousRequest(httptest.NewRequest("GET", "/api/schedule", nil))
	d.DetectSuspiciousRequest(httptest.NewRequest("GET", "/wp-admin", nil))

	if got := d.SuspiciousCount(); got != 2 {
		t.Errorf("SuspiciousCount = %d, want 2", got)
	}
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		want       string
	}{
		{
			name:       "direct connection",
			remoteAddr: "203.0.113.7:4711",
			want:       "203.0.113.7",
		},
		{
			name:       "forwarded header from trusted proxy",
			remoteAddr: "127.0.0.1:4711",
			xff:        "203.0.113.7, 10.0.0.1",
			want:       "203.0.113.7",
		},
		{
			name:       "forwarded header from untrusted peer is ignored",
			remoteAddr: "203.0.113.9:4711",
			xff:        "1.2.3.4",
			want:       "203.0.113.9",
		},
		{
			name:       "x-real-ip from trusted proxy",
			remoteAddr: "192.168.1.10:4711",
			xri:        "203.0.113.7",
			want:       "203.0.113.7",
		},
		{
			name:       "garbage forwarded value falls back to peer",
			remoteAddr: "127.0.0.1:4711",
			xff:        "not-an-ip",
			want:       "127.0.0.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector()
			r := httptest.NewRequest("GET", "/api/schedule", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := d.ExtractClientIP(r); got != tt.want {
				t.Errorf("ExtractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAddTrustedProxy(t *testing.T) {
	d := NewDetector()

	if err := d.AddTrustedProxy("203.0.113.0/24"); err != nil {
		t.Fatalf("AddTrustedProxy() error = %v", err)
	}
	r := httptest.NewRequest("GET", "/api/schedule", nil)
	r.RemoteAddr = "203.0.113.50:4711"
	r.Header.Set("X-Forwarded-For", "198.51.100.1")
	if got := d.ExtractClientIP(r); got != "198.51.100.1" {
		t.Errorf("ExtractClientIP() = %q, want forwarded IP", got)
	}

	if err := d.AddTrustedProxy("not a cidr"); err == nil {
		t.Error("AddTrustedProxy should reject malformed CIDR")
	}
}
