// AngelaMos | 2026
// main_test.go

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeBookPassesValidation(t *testing.T) {
	v := validator.New(validator.WithRequiredStructEnabled())
	f := gofakeit.New(42)

	for range 25 {
		req := fakeBook(f)
		require.NoError(t, v.Struct(req))
		assert.Len(t, req.ISBN, 13)
	}
}

func TestKeygenRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	priv := filepath.Join(dir, "keys", "private.pem")
	pub := filepath.Join(dir, "keys", "public.pem")

	execute := func(args ...string) (string, error) {
		root := newRootCmd()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetArgs(append([]string{"keygen", "--private", priv, "--public", pub}, args...))
		err := root.Execute()
		return out.String(), err
	}

	out, err := execute()
	require.NoError(t, err)
	assert.Contains(t, out, "wrote")

	info, err := os.Stat(priv)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, err = execute()
	assert.ErrorContains(t, err, "already exists")

	_, err = execute("--force")
	assert.NoError(t, err)
}

func TestRootRegistersCommands(t *testing.T) {
	root := newRootCmd()

	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}

	assert.Subset(t, names, []string{"migrate", "keygen", "seed", "overdue", "purge-sessions"})
}
