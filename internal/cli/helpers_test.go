package cli

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ItsDalk-Lane/gitbatch/internal/testutil"
)

// isolateHome points HOME at a temp dir and clears GITBATCH_* variables so
// the user's configuration never leaks into a test.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("NO_COLOR", "1")
	for _, kv := range os.Environ() {
		if name, _, _ := strings.Cut(kv, "="); strings.HasPrefix(name, "GITBATCH_") {
			t.Setenv(name, "")
			require.NoError(t, os.Unsetenv(name))
		}
	}
	// No pause between batches.
	t.Setenv("GITBATCH_BATCH_DELAY", "0s")
	t.Cleanup(CloseLogFile)
	return home
}

// setupRepo creates a repository with one initial commit.
func setupRepo(t *testing.T) string {
	t.Helper()
	dir := testutil.NewRepo(t)
	testutil.WriteFile(t, dir, "README.md", "readme\n")
	testutil.CommitAll(t, dir, "initial commit")
	return dir
}

// Local shorthands for the shared fixtures.
var (
	gitCmd        = testutil.Git
	writeRepoFile = testutil.WriteFile
)

// lines returns n newline-terminated lines.
func lines(n int) string {
	return strings.Repeat("some text\n", n)
}

// commitSubjects returns the commit subjects of HEAD, newest first.
func commitSubjects(t *testing.T, repo string) []string {
	t.Helper()
	return testutil.Subjects(t, repo, "HEAD")
}

// runCLI executes the root command with args, the same way Execute does.
func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, BuildInfo{Version: "test"})

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err = cmd.ExecuteContext(context.Background())
	if err != nil {
		renderError(cmd, flags, err)
	}
	return out.String(), errOut.String(), err
}
