// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"

	"gitlab.com/fisherprime/hpp/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "hpp.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    func(*Config)
		wantErr error
	}{
		{
			name:    "full",
			content: "root = \"include\"\nextensions = [\"H\", \"hpp\", \".h\"]\nexclude = [\"third_party\"]\nworkers = 2\nformat = \"JSON\"\nstrict = true\nlog_level = \"warn\"\n",
			want: func(c *Config) {
				c.Root = "include"
				c.Extensions = types.StringSlice{".h", ".hpp"}
				c.Exclude = types.StringSlice{"third_party"}
				c.Workers = 2
				c.Format = FormatJSON
				c.Strict = true
				c.LogLevel = "warn"
			},
		},
		{
			name:    "defaults",
			content: "",
			want:    func(*Config) {},
		},
		{name: "unknown format", content: "format = \"xml\"\n", wantErr: ErrUnknownFormat},
		{name: "unknown key", content: "rooot = \".\"\n", wantErr: ErrUnknownKeys},
		{name: "invalid toml", content: "root = \n", wantErr: ErrLoadConfig},
		{name: "invalid log level", content: "log_level = \"loud\"\n", wantErr: ErrLoadConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(writeConfig(t, tt.content))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr != nil {
				return
			}

			want := DefConfig()
			tt.want(want)
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Load() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestConfig_Level(t *testing.T) {
	c := DefConfig()
	if got := c.Level(); got != logrus.InfoLevel {
		t.Errorf("Config.Level() = %v, want %v", got, logrus.InfoLevel)
	}

	c.Debug = true
	if got := c.Level(); got != logrus.DebugLevel {
		t.Errorf("Config.Level() = %v, want %v", got, logrus.DebugLevel)
	}
}
