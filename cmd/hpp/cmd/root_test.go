// SPDX-License-Identifier: MIT
package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gitlab.com/fisherprime/hpp/config"
	"gitlab.com/fisherprime/hpp/scan"
)

func writeHeaders(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	files := map[string]string{
		"a.h":        "class A;\n",
		"broken.h":   "class Broken {\n",
		"hpp.toml":   "format = \"outline\"\n",
		"ignored.md": "class Ignored;\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	return root
}

func execute(args ...string) (stdout string, err error) {
	cmd := NewRootCmd()

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err = cmd.Execute()

	return out.String(), err
}

func TestRootCmd(t *testing.T) {
	root := writeHeaders(t)

	tests := []struct {
		name     string
		args     []string
		want     string
		contains []string
		wantErr  error
	}{
		{
			name: "text",
			args: []string{root},
			want: "Parsing a.h\nDeclared class A\n",
		},
		{
			name: "outline from config",
			args: []string{"--config", filepath.Join(root, "hpp.toml"), root},
			want: "a.h\n  class A\n",
		},
		{
			name: "flag overrides config",
			args: []string{"--config", filepath.Join(root, "hpp.toml"), "--format", "text", root},
			want: "Parsing a.h\nDeclared class A\n",
		},
		{
			name:     "json",
			args:     []string{"-f", "json", "-w", "1", root},
			contains: []string{`"file":"a.h"`, `"name":"A"`},
		},
		{
			name:    "strict",
			args:    []string{"--strict", root},
			want:    "Parsing a.h\nDeclared class A\n",
			wantErr: scan.ErrFilesFailed,
		},
		{
			name:    "unknown format",
			args:    []string{"--format", "xml", root},
			wantErr: config.ErrUnknownFormat,
		},
		{
			name:    "missing config",
			args:    []string{"--config", filepath.Join(root, "missing.toml"), root},
			wantErr: config.ErrLoadConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := execute(tt.args...)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.want != "" && got != tt.want {
				t.Errorf("Execute() output = %q, want %q", got, tt.want)
			}
			for _, sub := range tt.contains {
				if !strings.Contains(got, sub) {
					t.Errorf("Execute() output = %q, missing %q", got, sub)
				}
			}
		})
	}
}

func TestTokensCmd(t *testing.T) {
	root := writeHeaders(t)

	got, err := execute("tokens", filepath.Join(root, "a.h"))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	want := "1:identifier(\"class\")\n1:identifier(\"A\")\n1:punctuation(\";\")\n"
	if got != want {
		t.Errorf("Execute() output = %q, want %q", got, want)
	}

	if _, err = execute("tokens", filepath.Join(root, "missing.h")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Execute() error = %v, want %v", err, os.ErrNotExist)
	}
}
