package routepath

import (
	"errors"
	"reflect"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantPath    string
		wantQuery   string
		wantChanged bool
		wantErr     error
	}{
		{name: "root", input: "/", wantPath: "/"},
		{name: "empty string", input: "", wantPath: "/", wantChanged: true},
		{name: "no leading slash", input: "login", wantPath: "/login", wantChanged: true},
		{name: "trailing slash", input: "/admin/", wantPath: "/admin", wantChanged: true},
		{name: "collapse slashes", input: "/admin//conflicts", wantPath: "/admin/conflicts", wantChanged: true},
		{name: "single dot", input: "/admin/./conflicts", wantPath: "/admin/conflicts", wantChanged: true},
		{name: "double dot", input: "/admin/queries/../conflicts", wantPath: "/admin/conflicts", wantChanged: true},
		{name: "double dot to root", input: "/orders/..", wantPath: "/", wantChanged: true},
		{name: "query preserved", input: "/orders/new?sku=42", wantPath: "/orders/new", wantQuery: "sku=42"},
		{name: "fragment dropped", input: "/admin/conflicts#row-3", wantPath: "/admin/conflicts"},
		{name: "query escapes not validated", input: "/login?next=%GG", wantPath: "/login", wantQuery: "next=%GG"},
		{name: "valid escape kept", input: "/orders/a%20b", wantPath: "/orders/a%20b"},
		{name: "malformed escape kept", input: "/admin%G1", wantPath: "/admin%G1"},
		{name: "truncated escape kept", input: "/%zz/%2", wantPath: "/%zz/%2"},
		{name: "encoded nul kept", input: "/a%00b", wantPath: "/a%00b"},
		{name: "double dot at root", input: "/..", wantPath: "/", wantChanged: true},
		{name: "double dot above root", input: "/foo/../..", wantPath: "/", wantChanged: true},
		{name: "double dot clamps then descends", input: "/../admin", wantPath: "/admin", wantChanged: true},
		{name: "backslash", input: `/admin\conflicts`, wantErr: ErrBackslashInPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Canonicalize(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Canonicalize(%q) unexpected error: %v", tt.input, err)
			}
			if got.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", got.Path, tt.wantPath)
			}
			if got.Query != tt.wantQuery {
				t.Errorf("Query = %q, want %q", got.Query, tt.wantQuery)
			}
			if got.Changed != tt.wantChanged {
				t.Errorf("Changed = %v, want %v", got.Changed, tt.wantChanged)
			}
		})
	}
}

func TestNavPath(t *testing.T) {
	for _, bad := range []string{"https://evil.example", "//evil.example/x", "admin", "javascript://x"} {
		if _, err := NavPath(bad); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("NavPath(%q) error = %v, want ErrInvalidPath", bad, err)
		}
	}

	loc, err := NavPath("/admin/?tab=1")
	if err != nil {
		t.Fatalf("NavPath() error: %v", err)
	}
	if loc.String() != "/admin?tab=1" {
		t.Errorf("String() = %q, want /admin?tab=1", loc.String())
	}
}

func TestDecodeSegment(t *testing.T) {
	tests := []struct {
		segment  string
		catchAll bool
		want     string
		wantErr  error
	}{
		{segment: "a%20b", want: "a b"},
		{segment: "a%2Fb", wantErr: ErrEncodedSlashInSegment},
		{segment: "a%2Fb", catchAll: true, want: "a/b"},
		{segment: "%zz", wantErr: ErrInvalidPercentEscape},
		{segment: "%zz", catchAll: true, wantErr: ErrInvalidPercentEscape},
		{segment: "a%00b", wantErr: ErrNullByteInPath},
		{segment: "a%00b", catchAll: true, wantErr: ErrNullByteInPath},
	}

	for _, tt := range tests {
		got, err := DecodeSegment(tt.segment, tt.catchAll)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("DecodeSegment(%q, %v) error = %v, want %v", tt.segment, tt.catchAll, err, tt.wantErr)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("DecodeSegment(%q, %v) = %q, %v; want %q", tt.segment, tt.catchAll, got, err, tt.want)
		}
	}
}

func TestSegments(t *testing.T) {
	if got := Segments("/"); got != nil {
		t.Errorf("Segments(/) = %v, want nil", got)
	}
	want := []string{"admin", "reports", "daily-sync"}
	if got := Segments("/admin/reports/daily-sync"); !reflect.DeepEqual(got, want) {
		t.Errorf("Segments() = %v, want %v", got, want)
	}
}

func TestIsInvalid(t *testing.T) {
	_, err := Canonicalize(`/a\b`)
	if !IsInvalid(err) {
		t.Errorf("IsInvalid(backslash) = false, err = %v", err)
	}
	_, err = NavPath("https://evil.example")
	if !IsInvalid(err) {
		t.Errorf("IsInvalid(absolute URL) = false, err = %v", err)
	}

	for _, in := range []string{"/a%00", "/%zz", "/../x"} {
		if _, err := Canonicalize(in); err != nil {
			t.Errorf("Canonicalize(%q) error = %v, want nil", in, err)
		}
	}
	if IsInvalid(ErrInvalidPercentEscape) {
		t.Error("IsInvalid(ErrInvalidPercentEscape) = true")
	}
	if IsInvalid(nil) {
		t.Error("IsInvalid(nil) = true")
	}
	if IsInvalid(errors.New("other")) {
		t.Error("IsInvalid(other) = true")
	}
}
