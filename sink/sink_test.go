package sink

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
		errMsg  string
	}{
		{name: "valid simple path", path: "foo/bar.ts"},
		{name: "valid single file", path: "Chat.hub.ts"},
		{name: "empty path", path: "", wantErr: true, errMsg: "empty"},
		{name: "absolute path", path: "/absolute/path.ts", wantErr: true, errMsg: "absolute paths not allowed"},
		{name: "windows drive", path: "C:/path.ts", wantErr: true, errMsg: "absolute paths not allowed"},
		{name: "path traversal", path: "foo/../bar.ts", wantErr: true, errMsg: "path traversal not allowed"},
		{name: "path starting with ..", path: "../foo.ts", wantErr: true, errMsg: "path traversal not allowed"},
		{name: "current dir prefix", path: "./foo.ts", wantErr: true, errMsg: "not clean"},
		{name: "double slashes", path: "foo//bar.ts", wantErr: true, errMsg: "not clean"},
		{name: "trailing slash", path: "foo/bar/", wantErr: true, errMsg: "not clean"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err != nil && tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("ValidatePath() error = %v, want error containing %q", err, tt.errMsg)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		unit    string
		wantErr bool
	}{
		{"hub unit", "Chat.hub.ts", false},
		{"package unit", "example.com.app.ts", false},
		{"directory", "sub/Chat.ts", true},
		{"backslash", `sub\Chat.ts`, true},
		{"wrong extension", "Chat.js", true},
		{"extension only", ".ts", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.unit)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.unit, err, tt.wantErr)
			}
		})
	}
}

func TestUnitPath(t *testing.T) {
	if got := (Unit{Name: "Chat.hub.ts"}).Path(); got != "Chat.hub.ts" {
		t.Errorf("Path() = %q", got)
	}
	if got := (Unit{Name: "index.ts", Location: LocationRuntime}).Path(); got != "hubgen/index.ts" {
		t.Errorf("Path() = %q", got)
	}
}

func TestIsGenerated(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"lf", Header + "\nexport {};\n", true},
		{"crlf", Header + "\r\nexport {};\r\n", true},
		{"header only", Header, true},
		{"handwritten", "export const x = 1;\n", false},
		{"header later", "// note\n" + Header + "\n", false},
		{"longer first line", Header + " Really.\n", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".ts")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			got, err := IsGenerated(path)
			if err != nil {
				t.Fatalf("IsGenerated() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsGenerated() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMemorySink(t *testing.T) {
	t.Run("write and read", func(t *testing.T) {
		sink := NewMemorySink()
		ctx := context.Background()

		if err := sink.WriteFile(ctx, "b.ts", []byte("second")); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		if err := sink.WriteFile(ctx, "hubgen/a.ts", []byte("first")); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		if got := string(sink.Get("b.ts")); got != "second" {
			t.Errorf("Get() = %q, want %q", got, "second")
		}
		if got := sink.Get("missing.ts"); got != nil {
			t.Errorf("Get() = %v, want nil", got)
		}
		if got := strings.Join(sink.Paths(), ","); got != "b.ts,hubgen/a.ts" {
			t.Errorf("Paths() = %q", got)
		}
	})

	t.Run("Get returns copy", func(t *testing.T) {
		sink := NewMemorySink()
		if err := sink.WriteFile(context.Background(), "test.ts", []byte("original")); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		got := sink.Get("test.ts")
		got[0] = 'X'
		if got2 := string(sink.Get("test.ts")); got2 != "original" {
			t.Errorf("Get() = %q, want %q (modification leaked)", got2, "original")
		}
	})

	t.Run("Reset clears all files", func(t *testing.T) {
		sink := NewMemorySink()
		_ = sink.WriteFile(context.Background(), "a.ts", []byte("aaa"))
		sink.Reset()
		if files := sink.Files(); len(files) != 0 {
			t.Errorf("Files() after Reset() length = %d, want 0", len(files))
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		sink := NewMemorySink()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := sink.WriteFile(ctx, "test.ts", []byte("content")); err == nil {
			t.Error("WriteFile() with cancelled context should return error")
		}
	})

	t.Run("invalid path", func(t *testing.T) {
		sink := NewMemorySink()
		if err := sink.WriteFile(context.Background(), "../escape.ts", nil); err == nil {
			t.Error("WriteFile() with invalid path should return error")
		}
	})
}

func TestFilesystemSink(t *testing.T) {
	t.Run("nested write", func(t *testing.T) {
		tmpDir := t.TempDir()
		sink := NewFilesystemSink(tmpDir)

		if err := sink.WriteFile(context.Background(), "hubgen/index.ts", []byte("hello")); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		got, err := os.ReadFile(filepath.Join(tmpDir, "hubgen", "index.ts"))
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		if string(got) != "hello" {
			t.Errorf("content = %q, want %q", got, "hello")
		}

		info, err := os.Stat(filepath.Join(tmpDir, "hubgen", "index.ts"))
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0644 {
			t.Errorf("mode = %v, want 0644", info.Mode().Perm())
		}
	})

	t.Run("overwrite leaves no temp files", func(t *testing.T) {
		tmpDir := t.TempDir()
		sink := NewFilesystemSink(tmpDir)
		ctx := context.Background()

		for _, content := range []string{"first", "second"} {
			if err := sink.WriteFile(ctx, "test.ts", []byte(content)); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
		}
		got, _ := os.ReadFile(filepath.Join(tmpDir, "test.ts"))
		if string(got) != "second" {
			t.Errorf("content = %q, want %q", got, "second")
		}

		entries, _ := os.ReadDir(tmpDir)
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), ".hubgen-") {
				t.Errorf("temp file left behind: %s", e.Name())
			}
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		sink := NewFilesystemSink(t.TempDir())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := sink.WriteFile(ctx, "test.ts", []byte("content")); err == nil {
			t.Error("WriteFile() with cancelled context should return error")
		}
	})

	t.Run("path security", func(t *testing.T) {
		sink := NewFilesystemSink(t.TempDir())
		for _, p := range []string{"../escape.ts", "/etc/passwd", "a/../../b.ts"} {
			if err := sink.WriteFile(context.Background(), p, nil); err == nil {
				t.Errorf("WriteFile(%q) should fail", p)
			}
		}
	})
}
