package errors

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "config error",
			code:    "C100",
			wantMsg: "Config file not found",
			wantCat: CategoryConfig,
		},
		{
			name:    "auth error",
			code:    "C201",
			wantMsg: "Invalid credentials",
			wantCat: CategoryAuth,
		},
		{
			name:    "routing error",
			code:    "C401",
			wantMsg: "Navigation did not settle",
			wantCat: CategoryRouting,
		},
		{
			name:    "unknown error code",
			code:    "C999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "unknown backend %q", "tape")
	if err.Message != `unknown backend "tape"` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Category != CategoryCLI {
		t.Errorf("Category = %q, want %q", err.Category, CategoryCLI)
	}
	if err.Error() != `unknown backend "tape"` {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestConsoleError_ErrorIncludesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := New("C200").Wrap(cause)

	if got, want := err.Error(), "C200: Login failed: connection refused"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "C200") != nil {
		t.Fatal("FromError(nil) should return nil")
	}

	original := New("C201")
	if got := FromError(original, "C200"); got != original {
		t.Error("FromError should return an existing ConsoleError unchanged")
	}

	plain := stderrors.New("boom")
	got := FromError(plain, "C300")
	if got.Code != "C300" {
		t.Errorf("Code = %q, want C300", got.Code)
	}
	if got.Wrapped != plain {
		t.Error("FromError should wrap the plain error")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("C201").
		WithSuggestion("Run 'syncconsole login' again").
		Wrap(stderrors.New("INVALID_PASSWORD"))

	out := err.Format()
	for _, want := range []string{
		"ERROR C201: Invalid credentials [auth]",
		"rejected the username or password",
		"Cause: INVALID_PASSWORD",
		"Hint: Run 'syncconsole login' again",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("Format() should not contain ANSI codes when colors are disabled")
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("C400").Wrap(stderrors.New("path contains backslash"))
	if got, want := err.FormatCompact(), "C400: Invalid navigation path (path contains backslash)"; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFprint_PlainError(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, stderrors.New("plain failure"))
	if !strings.Contains(buf.String(), "ERROR: plain failure") {
		t.Errorf("Fprint() = %q", buf.String())
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six seven", 10)
	for _, line := range lines {
		if len(line) > 10 {
			t.Errorf("line %q exceeds width", line)
		}
	}
	if strings.Join(lines, " ") != "one two three four five six seven" {
		t.Errorf("wrapText lost words: %v", lines)
	}
}

func TestRegistryCodesHaveCategories(t *testing.T) {
	for _, code := range GetAllCodes() {
		tmpl, ok := GetTemplate(code)
		if !ok {
			t.Fatalf("GetTemplate(%q) not found", code)
		}
		if tmpl.Category == "" || tmpl.Message == "" {
			t.Errorf("code %s has empty category or message", code)
		}
	}
}
