package platform

import (
	"runtime"
	"testing"
)

func TestDetectOS(t *testing.T) {
	os := detectOS()

	if runtime.GOOS == "windows" && os != OSWindows {
		t.Errorf("detectOS() = %q, want %q", os, OSWindows)
	}

	if runtime.GOOS == "darwin" && os != OSDarwin {
		t.Errorf("detectOS() = %q, want %q", os, OSDarwin)
	}
}

func TestDetectOS_IgnoresEnvironment(t *testing.T) {
	want := detectOS()

	t.Setenv("OS", "Windows_NT")

	if got := detectOS(); got != want {
		t.Errorf("detectOS() with OS=Windows_NT = %q, want %q", got, want)
	}
}

func TestDetect(t *testing.T) {
	p := Detect()

	if p == nil {
		t.Fatal("Detect() returned nil")
	}

	switch p.OS {
	case OSLinux, OSWindows, OSDarwin:
	default:
		t.Errorf("OS = %q, want a known OS", p.OS)
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"linux", OSLinux, false},
		{"Windows", OSWindows, false},
		{" darwin ", OSDarwin, false},
		{"macos", OSDarwin, false},
		{"plan9", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCaseInsensitive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		os   string
		want bool
	}{
		{OSLinux, false},
		{OSWindows, true},
		{OSDarwin, true},
	}

	for _, tt := range tests {
		p := &Platform{OS: tt.os}
		if got := p.CaseInsensitive(); got != tt.want {
			t.Errorf("CaseInsensitive() for %s = %v, want %v", tt.os, got, tt.want)
		}
	}
}

func TestWithOS(t *testing.T) {
	t.Parallel()
	p := &Platform{OS: OSLinux}

	newP := p.WithOS(OSWindows)

	// Original should be unchanged
	if p.OS != OSLinux {
		t.Errorf("Original OS changed to %q", p.OS)
	}

	if newP.OS != OSWindows {
		t.Errorf("WithOS() OS = %q, want %q", newP.OS, OSWindows)
	}

	if !newP.IsWindows() {
		t.Error("IsWindows() = false after WithOS(windows)")
	}
}
