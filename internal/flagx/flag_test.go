package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	serverFlags := []string{"-a", "-d", "-c"}

	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value",
			args:    []string{"-a", ":3333", "-x", "1"},
			allowed: serverFlags,
			want:    []string{"-a", ":3333"},
		},
		{
			name:    "equals form",
			args:    []string{"-d=postgres://db/newsnow", "-x=1"},
			allowed: serverFlags,
			want:    []string{"-d=postgres://db/newsnow"},
		},
		{
			name:    "double dash matches single dash listing",
			args:    []string{"--username", "root", "--role=author"},
			allowed: []string{"-username", "-role"},
			want:    []string{"--username", "root", "--role=author"},
		},
		{
			name:    "positional arguments and subcommands dropped",
			args:    []string{"create-user", "-username", "root", "extra"},
			allowed: []string{"-username"},
			want:    []string{"-username", "root"},
		},
		{
			name:    "flag at end kept without value",
			args:    []string{"-c"},
			allowed: serverFlags,
			want:    []string{"-c"},
		},
		{
			name:    "next flag is not taken as a value",
			args:    []string{"-c", "-a", ":3333"},
			allowed: serverFlags,
			want:    []string{"-c", "-a", ":3333"},
		},
		{
			name:    "equals value may start with a dash",
			args:    []string{"-c=--weird.json"},
			allowed: serverFlags,
			want:    []string{"-c=--weird.json"},
		},
		{
			name:    "repeats preserved in order",
			args:    []string{"-c", "one.json", "-c", "two.json"},
			allowed: serverFlags,
			want:    []string{"-c", "one.json", "-c", "two.json"},
		},
		{
			name:    "cmsctl flags invisible to the server",
			args:    []string{"create-user", "-name", "Site Owner", "-d", "postgres://x"},
			allowed: serverFlags,
			want:    []string{"-d", "postgres://x"},
		},
		{
			name:    "empty",
			args:    nil,
			allowed: serverFlags,
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	assert.Equal(t, "/etc/newsnow/short.json", ConfigFileFlag([]string{"-c", "/etc/newsnow/short.json"}))
	assert.Equal(t, "/etc/newsnow/long.json", ConfigFileFlag([]string{"--config=/etc/newsnow/long.json"}))
	assert.Empty(t, ConfigFileFlag([]string{"-a", ":3333", "-d", "postgres://x"}))
	assert.Equal(t, "/2.json", ConfigFileFlag([]string{"-c", "/1.json", "-config", "/2.json", "-s", "key"}))
}
