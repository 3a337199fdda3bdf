package pathguard

import (
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/AntoineGS/cursorrules/internal/platform"
)

func newTestValidator(t *testing.T) *Validator {
	t.Helper()

	v, err := New(t.TempDir(), &platform.Platform{OS: platform.OSLinux})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return v
}

func TestNew_RequiresRoot(t *testing.T) {
	t.Parallel()

	if _, err := New("  ", nil); err == nil {
		t.Error("New() with blank root should fail")
	}
}

func TestValidate_RelativePaths(t *testing.T) {
	t.Parallel()
	v := newTestValidator(t)
	root := v.Root()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"dot prefix", "./sub/dir", filepath.Join(root, "sub", "dir")},
		{"plain", "output", filepath.Join(root, "output")},
		{"hidden folder", ".cursor", filepath.Join(root, ".cursor")},
		{"windows separators", `sub\dir`, filepath.Join(root, "sub", "dir")},
		{"mixed separator runs", `sub//\\dir/`, filepath.Join(root, "sub", "dir")},
		{"legacy equals prefix", "= rules", filepath.Join(root, "rules")},
		{"current directory", ".", root},
		{"triple dots is a name", "...", filepath.Join(root, "...")},
		{"reserved name as prefix", "console", filepath.Join(root, "console")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Validate(tt.raw)
			if err != nil {
				t.Fatalf("Validate(%q) unexpected error = %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("Validate(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestValidate_Empty(t *testing.T) {
	t.Parallel()
	v := newTestValidator(t)

	for _, raw := range []string{"", "   ", "\t", "=", "=  "} {
		_, err := v.Validate(raw)
		if !errors.Is(err, ErrEmptyDestination) {
			t.Errorf("Validate(%q) error = %v, want ErrEmptyDestination", raw, err)
		}
	}
}

func TestValidate_Traversal(t *testing.T) {
	t.Parallel()
	v := newTestValidator(t)

	inputs := []string{
		"..",
		"../evil-lair",
		"sub/../../etc",
		`sub\..\..\etc`,
		"./a/b/..",
		v.Root() + string(filepath.Separator) + ".." + string(filepath.Separator) + "sibling",
	}

	for _, raw := range inputs {
		t.Run(raw, func(t *testing.T) {
			_, err := v.Validate(raw)
			if !errors.Is(err, ErrPathTraversal) {
				t.Fatalf("Validate(%q) error = %v, want ErrPathTraversal", raw, err)
			}

			var segErr *SegmentError
			if !errors.As(err, &segErr) {
				t.Fatalf("error is %T, want *SegmentError", err)
			}
			if segErr.Segment != ".." {
				t.Errorf("Segment = %q, want %q", segErr.Segment, "..")
			}
			if segErr.Attempted != raw {
				t.Errorf("Attempted = %q, want %q", segErr.Attempted, raw)
			}
		})
	}
}

func TestValidate_TraversalMessage(t *testing.T) {
	t.Parallel()
	v := newTestValidator(t)

	_, err := v.Validate("../evil-lair")
	if err == nil {
		t.Fatal("expected rejection")
	}

	msg := err.Error()
	if !strings.Contains(msg, "'..'") {
		t.Errorf("message %q does not name the segment", msg)
	}
	if !strings.Contains(msg, "../evil-lair") {
		t.Errorf("message %q does not include the attempted path", msg)
	}
}

func TestValidate_ForbiddenCharacters(t *testing.T) {
	t.Parallel()
	v := newTestValidator(t)

	for _, c := range forbiddenChars {
		if c == '\\' {
			// backslash is a separator and never survives splitting
			continue
		}
		raw := "out/bad" + string(c) + "name"
		_, err := v.Validate(raw)
		if !errors.Is(err, ErrInvalidCharacter) {
			t.Errorf("Validate(%q) error = %v, want ErrInvalidCharacter", raw, err)
		}
	}

	for c := byte(0); c < 0x20; c++ {
		raw := "out/bad" + string([]byte{c}) + "name"
		_, err := v.Validate(raw)
		if !errors.Is(err, ErrInvalidCharacter) {
			t.Errorf("Validate(control 0x%02x) error = %v, want ErrInvalidCharacter", c, err)
		}
	}
}

func TestValidate_ColonInSegment(t *testing.T) {
	t.Parallel()
	v := newTestValidator(t)

	_, err := v.Validate("folder:name")

	var segErr *SegmentError
	if !errors.As(err, &segErr) || !errors.Is(err, ErrInvalidCharacter) {
		t.Fatalf("Validate(folder:name) error = %v, want invalid character", err)
	}
	if segErr.Segment != "folder:name" {
		t.Errorf("Segment = %q, want %q", segErr.Segment, "folder:name")
	}
}

func TestValidate_ReservedNames(t *testing.T) {
	t.Parallel()
	v := newTestValidator(t)

	for _, name := range []string{"con", "PRN", "Aux", "nul", "com1", "COM9", "lpt1", "Lpt9"} {
		_, err := v.Validate("out/" + name)
		if !errors.Is(err, ErrInvalidCharacter) {
			t.Errorf("Validate(out/%s) error = %v, want ErrInvalidCharacter", name, err)
		}
	}
}

func TestValidate_DotSegments(t *testing.T) {
	t.Parallel()
	v := newTestValidator(t)

	inputs := []string{
		"sub/./dir",
		"sub/.",
		filepath.ToSlash(v.Root()) + "/./sub",
	}

	for _, raw := range inputs {
		_, err := v.Validate(raw)
		if !errors.Is(err, ErrInvalidCharacter) {
			t.Errorf("Validate(%q) error = %v, want ErrInvalidCharacter", raw, err)
		}
	}
}

func TestValidate_WindowsRoots(t *testing.T) {
	t.Parallel()
	v := newTestValidator(t)

	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"drive relative", "C:rules", ErrInvalidCharacter},
		{"bare drive", "D:", ErrInvalidCharacter},
		{"unc without share", `\\server`, ErrInvalidCharacter},
		{"unc empty share", `\\server\`, ErrInvalidCharacter},
		{"forbidden after drive", `C:\rules\bad|name`, ErrInvalidCharacter},
		{"traversal after unc", `\\server\share\..\x`, ErrPathTraversal},
	}

	if runtime.GOOS != "windows" {
		tests = append(tests,
			struct {
				name    string
				raw     string
				wantErr error
			}{"drive on posix host", `C:\rules`, ErrOutsideRoot},
			struct {
				name    string
				raw     string
				wantErr error
			}{"unc on posix host", `\\server\share\rules`, ErrOutsideRoot},
		)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(tt.raw)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate(%q) error = %v, want %v", tt.raw, err, tt.wantErr)
			}
		})
	}
}

func TestValidate_AbsoluteInsideRoot(t *testing.T) {
	t.Parallel()
	v := newTestValidator(t)

	want := filepath.Join(v.Root(), "rules", "out")

	got, err := v.Validate(want)
	if err != nil {
		t.Fatalf("Validate(%q) error = %v", want, err)
	}
	if got != want {
		t.Errorf("Validate(%q) = %q", want, got)
	}

	got, err = v.Validate(v.Root())
	if err != nil {
		t.Fatalf("Validate(root) error = %v", err)
	}
	if got != v.Root() {
		t.Errorf("Validate(root) = %q, want %q", got, v.Root())
	}
}

func TestValidate_AbsoluteOutsideRoot(t *testing.T) {
	t.Parallel()
	v := newTestValidator(t)
	other := t.TempDir()

	inputs := []string{
		other,
		filepath.Join(other, "rules"),
		// sibling sharing the root as a string prefix
		v.Root() + "-evil",
	}

	for _, raw := range inputs {
		_, err := v.Validate(raw)
		if !errors.Is(err, ErrOutsideRoot) {
			t.Errorf("Validate(%q) error = %v, want ErrOutsideRoot", raw, err)
		}
	}
}

func TestValidate_CaseSensitivity(t *testing.T) {
	t.Parallel()
	root := filepath.Join(t.TempDir(), "Project")

	sensitive, err := New(root, &platform.Platform{OS: platform.OSLinux})
	if err != nil {
		t.Fatal(err)
	}
	insensitive, err := New(root, &platform.Platform{OS: platform.OSWindows})
	if err != nil {
		t.Fatal(err)
	}

	upper := filepath.Join(filepath.Dir(sensitive.Root()), "PROJECT", "rules")

	if _, err := sensitive.Validate(upper); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("case-sensitive Validate(%q) error = %v, want ErrOutsideRoot", upper, err)
	}
	if _, err := insensitive.Validate(upper); err != nil {
		t.Errorf("case-insensitive Validate(%q) error = %v, want nil", upper, err)
	}
}

func TestValidate_Idempotent(t *testing.T) {
	t.Parallel()
	v := newTestValidator(t)

	for _, raw := range []string{"./sub/dir", ".cursor", `a\b\c`, "=out"} {
		first, err := v.Validate(raw)
		if err != nil {
			t.Fatalf("Validate(%q) error = %v", raw, err)
		}

		second, err := v.Validate(first)
		if err != nil {
			t.Fatalf("Validate(%q) second pass error = %v", first, err)
		}
		if second != first {
			t.Errorf("Validate not idempotent: %q -> %q -> %q", raw, first, second)
		}
	}
}
