package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCPFCheck(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{name: "valid formatted", args: []string{"111.444.777-35"}, want: "111.444.777-35\tvalid\n"},
		{name: "valid digits", args: []string{"52998224725"}, want: "529.982.247-25\tvalid\n"},
		{name: "mixed", args: []string{"11144477735", "11111111111"}, want: "111.444.777-35\tvalid\n111.111.111-11\tinvalid\n", wantErr: true},
		{name: "short input", args: []string{"123"}, want: "123\tinvalid\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append([]string{"cpf", "check"}, tt.args...)...)

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestCPFFormat(t *testing.T) {
	out, err := execute(t, "cpf", "format", "11144477735", "12.3")

	require.NoError(t, err)
	assert.Equal(t, "111.444.777-35\n123\n", out)
}

func TestCPFCheck_RequiresArgs(t *testing.T) {
	_, err := execute(t, "cpf", "check")
	assert.Error(t, err)
}

func TestMigrate_RejectsNonPostgresDriver(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DB_DRIVER=memory\n"), 0o600))

	_, err := execute(t, "migrate", "--config-dir", dir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DRIVER=postgres")
}
