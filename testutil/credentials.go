package testutil

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/kbukum/restadapter/util"
)

// CredentialsEnv names the environment variable consulted for the
// credentials file when no path is given.
const CredentialsEnv = "RESTADAPTER_CREDENTIALS"

const defaultCredentialsFile = "testdata/credentials.txt"

// LoadCredentials reads a newline-separated credentials file, one value per
// line. An empty path falls back to $RESTADAPTER_CREDENTIALS, then
// testdata/credentials.txt. CRLF line endings and trailing blank lines are
// dropped.
func LoadCredentials(path string) ([]string, error) {
	path = util.Coalesce(path, util.SanitizeEnvValue(os.Getenv(CredentialsEnv)), defaultCredentialsFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading credentials %s: %w", path, err)
	}

	content := strings.TrimRight(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	if content == "" {
		return []string{}, nil
	}
	return strings.Split(content, "\n"), nil
}

// MustCredentials is LoadCredentials that fails the test on error and
// requires at least minLines lines.
func MustCredentials(t testing.TB, path string, minLines int) []string {
	t.Helper()
	creds, err := LoadCredentials(path)
	if err != nil {
		t.Fatalf("loading credentials: %v", err)
	}
	if len(creds) < minLines {
		t.Fatalf("credentials file has %d lines, need %d", len(creds), minLines)
	}
	return creds
}
