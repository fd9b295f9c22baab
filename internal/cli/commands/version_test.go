package commands

import (
	"bytes"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersionCommand(t *testing.T) {
	cmd := NewVersionCommand("1.2.3")
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "sonoprop v1.2.3")
	assert.Contains(t, out, "diffraction: none, exact, angular-spectrum (default exact)")
	assert.NotContains(t, out, "pseudo-differential")
	assert.Contains(t, out, "github.com/mjibson/go-dsp")
	assert.Contains(t, out, "gonum.org/v1/gonum")
}

func TestRenderVersion_ModuleVersions(t *testing.T) {
	tests := []struct {
		name    string
		info    *debug.BuildInfo
		wantOut []string
	}{
		{
			name:    "no build info",
			info:    nil,
			wantOut: []string{"go-dsp:      github.com/mjibson/go-dsp (unknown)"},
		},
		{
			name: "module versions",
			info: &debug.BuildInfo{Deps: []*debug.Module{
				{Path: "github.com/mjibson/go-dsp", Version: "v0.0.0-20180508042940-11479a337f12"},
				{Path: "gonum.org/v1/gonum", Version: "v0.16.0"},
			}},
			wantOut: []string{
				"github.com/mjibson/go-dsp v0.0.0-20180508042940-11479a337f12",
				"gonum.org/v1/gonum v0.16.0",
			},
		},
		{
			name: "replaced module",
			info: &debug.BuildInfo{Deps: []*debug.Module{
				{Path: "gonum.org/v1/gonum", Version: "v0.16.0", Replace: &debug.Module{Path: "../gonum", Version: "v0.16.1"}},
			}},
			wantOut: []string{"gonum.org/v1/gonum v0.16.1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := new(bytes.Buffer)
			renderVersion(buf, "dev", tt.info)

			assert.Contains(t, buf.String(), "sonoprop vdev")
			for _, want := range tt.wantOut {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestVersionCommandMetadata(t *testing.T) {
	cmd := NewVersionCommand("test")

	assert.Equal(t, "version", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
}
