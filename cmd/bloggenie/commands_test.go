package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func offlineEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"SUPABASE_URL", "OPENAI_API_KEY", "GCP_PROJECT_ID", "PAYSTACK_SECRET_KEY", "USAGE_BACKEND", "GENERATION_AUTH"} {
		t.Setenv(key, "")
	}
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	require.NoError(t, root.ExecuteContext(context.Background()))
	return out.String()
}

func TestPriceCommand(t *testing.T) {
	offlineEnv(t)

	out := run(t, "price", "--country", "Nigeria")
	assert.Contains(t, out, "Currency: NGN")
	assert.Contains(t, out, "4,000")
}

func TestIdeasCommand_Offline(t *testing.T) {
	offlineEnv(t)

	out := run(t, "ideas", "home", "gardening", "--count", "2")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "1. "))
	assert.True(t, strings.HasPrefix(lines[3], "2. "))
}

func TestIdeasCommand_RequiresTopic(t *testing.T) {
	offlineEnv(t)

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"ideas"})
	assert.Error(t, root.Execute())
}
