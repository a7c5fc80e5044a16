package tool_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/kioku/pkg/tool"
)

func writePolicy(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "tools.rego")
	gt.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return dir
}

func TestPolicyBuiltinReadWrite(t *testing.T) {
	ctx := context.Background()
	policy, err := tool.NewPolicy(ctx, "", false)
	gt.NoError(t, err)

	for _, kind := range []tool.Kind{
		tool.KindSearchNotes, tool.KindGetNote, tool.KindListCategories,
		tool.KindCreateNote, tool.KindUpdateNote, tool.KindDeleteNote,
	} {
		gt.True(t, policy.Allow(ctx, kind))
	}
}

func TestPolicyBuiltinReadOnly(t *testing.T) {
	ctx := context.Background()
	policy, err := tool.NewPolicy(ctx, "", true)
	gt.NoError(t, err)

	gt.True(t, policy.Allow(ctx, tool.KindSearchNotes))
	gt.False(t, policy.Allow(ctx, tool.KindCreateNote))
	gt.False(t, policy.Allow(ctx, tool.KindUpdateNote))
	gt.False(t, policy.Allow(ctx, tool.KindDeleteNote))
}

func TestPolicyRegoDeny(t *testing.T) {
	ctx := context.Background()
	dir := writePolicy(t, `package tools

default allow := false

allow if input.tool != "delete_note"
`)

	policy, err := tool.NewPolicy(ctx, dir, false)
	gt.NoError(t, err)

	gt.True(t, policy.Allow(ctx, tool.KindSearchNotes))
	gt.True(t, policy.Allow(ctx, tool.KindCreateNote))
	gt.False(t, policy.Allow(ctx, tool.KindDeleteNote))
}

func TestPolicyRegoMutatingInput(t *testing.T) {
	ctx := context.Background()
	dir := writePolicy(t, `package tools

default allow := false

allow if not input.mutating
`)

	policy, err := tool.NewPolicy(ctx, dir, false)
	gt.NoError(t, err)

	gt.True(t, policy.Allow(ctx, tool.KindGetNote))
	gt.False(t, policy.Allow(ctx, tool.KindUpdateNote))
}

func TestPolicyReadOnlyOverridesRego(t *testing.T) {
	ctx := context.Background()
	dir := writePolicy(t, `package tools

default allow := true
`)

	// Rego can narrow the active set but never re-enable mutation in a
	// read-only context
	policy, err := tool.NewPolicy(ctx, dir, true)
	gt.NoError(t, err)

	gt.True(t, policy.Allow(ctx, tool.KindSearchNotes))
	gt.False(t, policy.Allow(ctx, tool.KindDeleteNote))
}

func TestPolicyEmptyDirIsBuiltin(t *testing.T) {
	ctx := context.Background()
	policy, err := tool.NewPolicy(ctx, t.TempDir(), false)
	gt.NoError(t, err)
	gt.True(t, policy.Allow(ctx, tool.KindCreateNote))
}

func TestPolicyInvalidRego(t *testing.T) {
	ctx := context.Background()
	dir := writePolicy(t, "this is not rego")

	_, err := tool.NewPolicy(ctx, dir, false)
	gt.Error(t, err)
}
