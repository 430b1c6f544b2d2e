package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/keyplate/internal/config"
	"github.com/matzehuels/keyplate/pkg/errors"
	"github.com/matzehuels/keyplate/pkg/observability"
	"github.com/matzehuels/keyplate/pkg/plate"
)

const cliLayout = `// tiny board
["Esc","1","2"],
[{w:2.25},"Shift","z"]`

// testCLI isolates config and cache under temp dirs and captures stdout.
func testCLI(t *testing.T, stdin string) (*CLI, *bytes.Buffer) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var logs, out bytes.Buffer
	c := New(&logs, LogInfo)
	c.stdin = strings.NewReader(stdin)
	c.stdout = &out
	c.setStderr(&bytes.Buffer{})
	return c, &out
}

func run(t *testing.T, c *CLI, args ...string) error {
	t.Helper()
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.ExecuteContext(context.Background())
}

func writeLayout(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestKeysStdin(t *testing.T) {
	c, out := testCLI(t, cliLayout)
	if err := run(t, c, "keys", "-"); err != nil {
		t.Fatalf("keys - error = %v", err)
	}
	keys, err := plate.UnmarshalKeys(out.Bytes())
	if err != nil {
		t.Fatalf("stdout is not a key list: %v\n%s", err, out.String())
	}
	if len(keys) != 5 || keys[3].Label != "Shift" {
		t.Errorf("got %d keys: %+v", len(keys), keys)
	}
}

func TestKeysFile(t *testing.T) {
	c, _ := testCLI(t, "")
	dir := t.TempDir()
	input := writeLayout(t, dir, "board.kle", cliLayout)

	if err := run(t, c, "keys", input, "--unit", "1"); err != nil {
		t.Fatalf("keys error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "board.keys.json"))
	if err != nil {
		t.Fatalf("default output missing: %v", err)
	}
	keys, err := plate.UnmarshalKeys(data)
	if err != nil {
		t.Fatal(err)
	}
	if keys[0].Center.X != 0.5 || keys[0].Center.Y != -0.5 {
		t.Errorf("Esc center = %+v, want (0.5, -0.5) at unit 1", keys[0].Center)
	}
}

func TestKeysNoKeys(t *testing.T) {
	for name, stdin := range map[string]string{
		"modifiers only": `[{w:2}]`,
		"empty":          "",
		"whitespace":     " \n\t",
	} {
		t.Run(name, func(t *testing.T) {
			c, _ := testCLI(t, stdin)
			err := run(t, c, "keys", "-")
			if !errors.Is(err, errors.ErrCodeNoKeys) {
				t.Errorf("error = %v, want NO_KEYS", err)
			}
		})
	}
}

func TestPlateJSON(t *testing.T) {
	c, _ := testCLI(t, "")
	dir := t.TempDir()
	input := writeLayout(t, dir, "board.kle", cliLayout)

	if err := run(t, c, "plate", input, "--margin", "0"); err != nil {
		t.Fatalf("plate error = %v", err)
	}
	p, err := plate.ReadPlateFile(filepath.Join(dir, "board.plate.json"))
	if err != nil {
		t.Fatalf("read plate: %v", err)
	}
	if p.Margin != 0 {
		t.Errorf("margin = %g, want explicit 0", p.Margin)
	}
	if len(p.Switches) != 5 || len(p.Stabilizers) != 1 {
		t.Errorf("got %d switches, %d stabilizers", len(p.Switches), len(p.Stabilizers))
	}
	if p.Scheme != "kad" {
		t.Errorf("scheme = %q, want kad", p.Scheme)
	}
}

func TestPlateTOMLOutput(t *testing.T) {
	c, _ := testCLI(t, "")
	dir := t.TempDir()
	input := writeLayout(t, dir, "board.kle", cliLayout)
	out := filepath.Join(dir, "out", "plate.toml")

	if err := run(t, c, "plate", input, "-o", out, "--stabilizer", "none"); err != nil {
		t.Fatalf("plate error = %v", err)
	}
	p, err := plate.ReadPlateFile(out)
	if err != nil {
		t.Fatalf("read plate: %v", err)
	}
	if len(p.Stabilizers) != 0 {
		t.Errorf("stabilizer none should give no housings, got %d", len(p.Stabilizers))
	}
}

func TestPlateStdout(t *testing.T) {
	c, out := testCLI(t, cliLayout)
	if err := run(t, c, "plate", "-"); err != nil {
		t.Fatalf("plate - error = %v", err)
	}
	if _, err := plate.UnmarshalPlate(out.Bytes()); err != nil {
		t.Errorf("stdout is not a plate: %v", err)
	}
}

func TestPlateErrors(t *testing.T) {
	t.Run("malformed", func(t *testing.T) {
		c, _ := testCLI(t, `["a",{w:}]`)
		err := run(t, c, "plate", "-")
		if !errors.Is(err, errors.ErrCodeMalformedLayout) {
			t.Fatalf("error = %v, want MALFORMED_LAYOUT", err)
		}
		if !strings.Contains(err.Error(), `in: ["a",{w:}]`) {
			t.Errorf("error should show the fragment: %v", err)
		}
	})
	t.Run("missing file", func(t *testing.T) {
		c, _ := testCLI(t, "")
		err := run(t, c, "plate", filepath.Join(t.TempDir(), "nope.kle"))
		if !errors.Is(err, errors.ErrCodeFileNotFound) {
			t.Errorf("error = %v, want FILE_NOT_FOUND", err)
		}
	})
	t.Run("bad stabilizer", func(t *testing.T) {
		c, _ := testCLI(t, cliLayout)
		err := run(t, c, "plate", "-", "--stabilizer", "costar")
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("error = %v, want INVALID_INPUT", err)
		}
	})
}

func TestPlateUsesConfig(t *testing.T) {
	c, out := testCLI(t, cliLayout)
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	body := "[plate]\nthickness = 3.0\n\n[cache]\nbackend = \"none\"\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := run(t, c, "--config", cfgPath, "plate", "-"); err != nil {
		t.Fatalf("plate error = %v", err)
	}
	p, err := plate.UnmarshalPlate(out.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if p.Thickness != 3 {
		t.Errorf("thickness = %g, want 3 from config", p.Thickness)
	}
}

func TestConfigUnknownKey(t *testing.T) {
	c, _ := testCLI(t, cliLayout)
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, []byte("[plate]\ncolour = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := run(t, c, "--config", cfgPath, "plate", "-")
	if err == nil || !strings.Contains(err.Error(), "plate.colour") {
		t.Errorf("error = %v, want unknown key plate.colour", err)
	}
}

func TestBatch(t *testing.T) {
	c, _ := testCLI(t, "")
	dir := t.TempDir()
	a := writeLayout(t, dir, "a.kle", cliLayout)
	b := writeLayout(t, dir, "b.kle", `["x","y"]`)
	bad := writeLayout(t, dir, "bad.kle", `["a",`)
	outDir := filepath.Join(dir, "plates")

	err := run(t, c, "batch", a, b, bad, filepath.Join(dir, "missing.kle"), "-o", outDir, "-f", "toml", "-j", "2")
	if err == nil || !strings.Contains(err.Error(), "2 of 4 layouts failed") {
		t.Fatalf("error = %v, want 2 of 4 failed", err)
	}

	for _, name := range []string{"a.plate.toml", "b.plate.toml"} {
		if _, err := plate.ReadPlateFile(filepath.Join(outDir, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(outDir, "bad.plate.toml")); !os.IsNotExist(err) {
		t.Error("failed layout should not produce a file")
	}
}

func TestBatchBadFormat(t *testing.T) {
	c, _ := testCLI(t, "")
	err := run(t, c, "batch", "x.kle", "-f", "svg")
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestBatchOutputPath(t *testing.T) {
	tests := []struct {
		input, dir, format, want string
	}{
		{"layouts/a.kle", "", "json", filepath.Join("layouts", "a.plate.json")},
		{"layouts/a.kle", "out", "toml", filepath.Join("out", "a.plate.toml")},
		{"b", "", "json", "b.plate.json"},
	}
	for _, tt := range tests {
		if got := batchOutputPath(tt.input, tt.dir, tt.format); got != tt.want {
			t.Errorf("batchOutputPath(%q, %q, %q) = %q, want %q", tt.input, tt.dir, tt.format, got, tt.want)
		}
	}
}

func TestCachePathAndClear(t *testing.T) {
	c, out := testCLI(t, "")
	dir := t.TempDir()
	input := writeLayout(t, dir, "board.kle", cliLayout)

	if err := run(t, c, "cache", "path"); err != nil {
		t.Fatalf("cache path error = %v", err)
	}
	cacheRoot := strings.TrimSpace(out.String())
	if want := filepath.Join(os.Getenv("XDG_CACHE_HOME"), appName); cacheRoot != want {
		t.Errorf("cache path = %q, want %q", cacheRoot, want)
	}

	if err := run(t, c, "plate", input); err != nil {
		t.Fatalf("plate error = %v", err)
	}
	entries, _ := os.ReadDir(cacheRoot)
	if len(entries) == 0 {
		t.Fatal("plate run should populate the cache")
	}

	if err := run(t, c, "cache", "clear"); err != nil {
		t.Fatalf("cache clear error = %v", err)
	}
	entries, _ = os.ReadDir(cacheRoot)
	if len(entries) != 0 {
		t.Errorf("cache clear left %d entries", len(entries))
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c, _ := testCLI(t, "")
	root := c.RootCommand()
	for _, name := range []string{"keys", "plate", "batch", "serve", "cache", "completion"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestVerboseInstallsLogHooks(t *testing.T) {
	defer observability.Reset()
	c, _ := testCLI(t, cliLayout)
	if err := run(t, c, "-v", "keys", "-"); err != nil {
		t.Fatalf("keys -v error = %v", err)
	}
	if _, ok := observability.Pipeline().(*observability.LogHooks); !ok {
		t.Errorf("pipeline hooks = %T, want *observability.LogHooks", observability.Pipeline())
	}
}

func TestOutputPath(t *testing.T) {
	if got := outputPath("dir/board.kle", "", ".plate.json"); got != filepath.Join("dir", "board.plate.json") && got != "dir/board.plate.json" {
		t.Errorf("outputPath() = %q", got)
	}
	if got := outputPath("board.kle", "x.toml", ".plate.json"); got != "x.toml" {
		t.Errorf("explicit output should win, got %q", got)
	}
}

func TestCompletion(t *testing.T) {
	c, out := testCLI(t, "")
	if err := run(t, c, "completion", "fish"); err != nil {
		t.Fatalf("completion error = %v", err)
	}
	if !strings.Contains(out.String(), "keyplate") {
		t.Errorf("fish completion should mention the program name, got %d bytes", out.Len())
	}

	if err := run(t, c, "completion", "tcsh"); err == nil {
		t.Error("unsupported shell should fail")
	}
}

func TestCompleteLayouts(t *testing.T) {
	exts, directive := completeLayouts(nil, nil, "")
	if directive != cobra.ShellCompDirectiveFilterFileExt {
		t.Errorf("directive = %v, want FilterFileExt", directive)
	}
	if len(exts) == 0 || exts[0] != "kle" {
		t.Errorf("extensions = %v", exts)
	}
}

func TestRotatingLog(t *testing.T) {
	if rotatingLog(config.Server{}) != nil {
		t.Error("no log file should mean no writer")
	}

	path := filepath.Join(t.TempDir(), "logs", "server.log")
	rot := rotatingLog(config.Server{LogFile: path, LogMaxSizeMB: 1, LogMaxBackups: 2})
	if rot == nil {
		t.Fatal("rotatingLog() = nil")
	}
	defer rot.Close()

	if _, err := rot.Write([]byte("listening\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "listening\n" {
		t.Errorf("log file = %q, err %v", data, err)
	}
}
