package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
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
			code:    "F101",
			wantMsg: "Config file not found",
			wantCat: CategoryConfig,
		},
		{
			name:    "runtime error",
			code:    "F201",
			wantMsg: "Server failed to start",
			wantCat: CategoryRuntime,
		},
		{
			name:    "cli error",
			code:    "F302",
			wantMsg: "Invalid path",
			wantCat: CategoryCLI,
		},
		{
			name:    "unknown error code",
			code:    "F999",
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
	err := Newf(CategoryRuntime, "port %d in use", 8080)
	if err.Message != "port 8080 in use" {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Error() != "port 8080 in use" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"code only", New("F105"), "F105: Invalid auth mode"},
		{"wrapped", New("F102").Wrap(stderrors.New("unexpected end of JSON input")), "F102: Invalid config JSON: unexpected end of JSON input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := os.ErrNotExist
	err := New("F101").Wrap(cause)
	if !stderrors.Is(err, os.ErrNotExist) {
		t.Error("errors.Is should see the wrapped cause")
	}
}

func TestError_WithLocation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "floaties.json")
	content := "{\n  \"name\": \"floaties\",\n  \"listen\": \"nope\",\n  \"locale\": \"en\"\n}\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	err := New("F103").WithLocation(path, 3, 13)
	if err.Location.Line != 3 || err.Location.Column != 13 {
		t.Errorf("Location = %+v", err.Location)
	}
	if len(err.Context) != 5 {
		t.Fatalf("Context has %d lines, want 5: %q", len(err.Context), err.Context)
	}
	if err.Context[2] != `  "listen": "nope",` {
		t.Errorf("Context[2] = %q", err.Context[2])
	}
}

func TestError_WithOffset(t *testing.T) {
	data := []byte("{\n  \"listen\": ,\n}\n")
	// json.Unmarshal reports the offset after the offending comma.
	err := New("F102").WithOffset("floaties.json", data, 15)
	if err.Location == nil {
		t.Fatal("Location not set")
	}
	if err.Location.Line != 2 || err.Location.Column != 13 {
		t.Errorf("Location = %v, want floaties.json:2:13", err.Location)
	}
	want := []string{"{", `  "listen": ,`, "}"}
	if strings.Join(err.Context, "|") != strings.Join(want, "|") {
		t.Errorf("Context = %q, want %q", err.Context, want)
	}

	if New("F102").WithOffset("x", data, 999).Location != nil {
		t.Error("out of range offset should leave Location unset")
	}
}

func TestError_Builders(t *testing.T) {
	err := New("F107").
		WithDetail("got \"loud\"").
		WithSuggestion("Use info").
		WithExample(`"log": {"level": "info"}`)
	if err.Detail != `got "loud"` || err.Suggestion != "Use info" || err.Example == "" {
		t.Errorf("builders not applied: %+v", err)
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "F201") != nil {
		t.Error("FromError(nil) should be nil")
	}

	coded := New("F101")
	if got := FromError(fmt.Errorf("load: %w", coded), "F201"); got != coded {
		t.Errorf("FromError should return the existing *Error, got %v", got)
	}

	plain := stderrors.New("address already in use")
	got := FromError(plain, "F201")
	if got.Code != "F201" || got.Wrapped != plain {
		t.Errorf("FromError = %+v", got)
	}
}

func TestHasCode(t *testing.T) {
	nested := New("F201").Wrap(fmt.Errorf("config: %w", New("F103")))
	tests := []struct {
		name string
		err  error
		code string
		want bool
	}{
		{"direct", New("F101"), "F101", true},
		{"wrapped by fmt", fmt.Errorf("x: %w", New("F101")), "F101", true},
		{"nested coded", nested, "F103", true},
		{"other code", New("F101"), "F102", false},
		{"plain error", stderrors.New("boom"), "F101", false},
		{"nil", nil, "F101", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasCode(tt.err, tt.code); got != tt.want {
				t.Errorf("HasCode = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLocation_String(t *testing.T) {
	tests := []struct {
		name string
		loc  *Location
		want string
	}{
		{"nil location", nil, ""},
		{"with column", &Location{File: "floaties.json", Line: 10, Column: 5}, "floaties.json:10:5"},
		{"without column", &Location{File: "floaties.json", Line: 10}, "floaties.json:10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.loc.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	data := []byte("{\n  \"auth\": {\"mode\": \"magic\"}\n}\n")
	formatted := New("F105").
		WithOffset("floaties.json", data, 25).
		WithSuggestion(`Use "static" or "callback"`).
		WithExample(`"auth": {"mode": "static", "token": "dev"}`).
		Wrap(stderrors.New(`unknown mode "magic"`)).
		Format()

	for _, want := range []string{
		"ERROR F105: Invalid auth mode",
		"floaties.json:2:",
		`"mode": "magic"`,
		"Cause: unknown mode \"magic\"",
		"Hint: Use \"static\" or \"callback\"",
		"Example:",
	} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format() missing %q in:\n%s", want, formatted)
		}
	}
	if strings.Contains(formatted, "\033[") {
		t.Error("Format() emitted ANSI codes with colors disabled")
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("F103")
	err.Location = &Location{File: "floaties.json", Line: 3, Column: 13}

	want := "floaties.json:3:13: F103: Invalid listen address"
	if got := err.FormatCompact(); got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("F101").Wrap(os.ErrNotExist)
	err.Location = &Location{File: "floaties.json", Line: 1}

	var got map[string]any
	if jerr := json.Unmarshal([]byte(err.FormatJSON()), &got); jerr != nil {
		t.Fatalf("FormatJSON is not valid JSON: %v", jerr)
	}
	if got["code"] != "F101" || got["category"] != "config" || got["message"] != "Config file not found" {
		t.Errorf("FormatJSON = %v", got)
	}
	if got["cause"] != os.ErrNotExist.Error() {
		t.Errorf("cause = %v", got["cause"])
	}
	loc, ok := got["location"].(map[string]any)
	if !ok || loc["file"] != "floaties.json" {
		t.Errorf("location = %v", got["location"])
	}
	if _, ok := loc["column"]; ok {
		t.Error("zero column should be omitted")
	}
}

func TestRegistryCodes(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 {
		t.Fatal("GetAllCodes() should return codes")
	}
	for _, code := range codes {
		tmpl, ok := GetTemplate(code)
		if !ok {
			t.Errorf("GetTemplate(%q) not found", code)
			continue
		}
		var want Category
		switch code[1] {
		case '1':
			want = CategoryConfig
		case '2':
			want = CategoryRuntime
		case '3':
			want = CategoryCLI
		}
		if tmpl.Category != want {
			t.Errorf("%s category = %q, want %q", code, tmpl.Category, want)
		}
		if tmpl.Message == "" || tmpl.Detail == "" {
			t.Errorf("%s has an empty message or detail", code)
		}
	}
	if _, ok := GetTemplate("F999"); ok {
		t.Error("GetTemplate(F999) should not exist")
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  []string
	}{
		{"", 10, nil},
		{"short", 10, []string{"short"}},
		{"listen must be host and port", 12, []string{"listen must", "be host and", "port"}},
	}
	for _, tt := range tests {
		got := wrapText(tt.text, tt.width)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("wrapText(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func TestPrintError(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	PrintError(&buf, stderrors.New("boom"))
	if buf.String() != "\nERROR: boom\n\n" {
		t.Errorf("plain = %q", buf.String())
	}

	buf.Reset()
	PrintError(&buf, fmt.Errorf("serve: %w", New("F201")))
	if !strings.Contains(buf.String(), "ERROR F201: Server failed to start") {
		t.Errorf("coded = %q", buf.String())
	}
}
