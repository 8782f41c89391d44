package commands

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/thoreinstein/org-protocol/internal/config"
	"github.com/thoreinstein/org-protocol/internal/installer"
)

// executeCommand runs the root command with args against an empty config
// file and returns what it wrote to stdout. Flag values are reset
// afterwards so tests do not leak into each other.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("# test\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	origLogger := slog.Default()
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
		slog.SetDefault(origLogger)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// captureLogs sends the root command's error writer, and so the console
// logger built by setupLogging, to a buffer. The default logger is restored
// afterwards.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	orig := slog.Default()
	rootCmd.SetErr(&buf)
	t.Cleanup(func() {
		rootCmd.SetErr(nil)
		slog.SetDefault(orig)
	})
	return &buf
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// fakeInstaller records what the command asked it to do.
type fakeInstaller struct {
	cfg         *config.Config
	installed   int
	uninstalled int
	err         error
}

func (f *fakeInstaller) Install(context.Context) error   { f.installed++; return f.err }
func (f *fakeInstaller) Uninstall(context.Context) error { f.uninstalled++; return f.err }

// stubInstaller replaces newInstaller for the duration of the test.
func stubInstaller(t *testing.T, err error) *fakeInstaller {
	t.Helper()

	fake := &fakeInstaller{err: err}
	orig := newInstaller
	newInstaller = func(cfg *config.Config, _ ...installer.Option) (installer.Installer, error) {
		fake.cfg = cfg
		return fake, nil
	}
	t.Cleanup(func() { newInstaller = orig })
	return fake
}
