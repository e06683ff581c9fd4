package profiling

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerNesting(t *testing.T) {
	timer := NewTimer()

	stopLoad := timer.Start("load")
	stopBuild := timer.Start("go build")
	stopBuild()
	stopLoad()
	stopExport := timer.Start("export")
	stopExport()
	stopExport() // closing twice is harmless

	spans := timer.Spans()
	require.Len(t, spans, 3)
	assert.Equal(t, "load", spans[0].Name)
	assert.Equal(t, 0, spans[0].Depth)
	assert.Equal(t, "go build", spans[1].Name)
	assert.Equal(t, 1, spans[1].Depth)
	assert.Equal(t, "export", spans[2].Name)
	assert.Equal(t, 0, spans[2].Depth)

	var buf bytes.Buffer
	timer.Summarize(&buf)
	out := buf.String()
	assert.Contains(t, out, "--- Timing Profile ---")
	assert.Contains(t, out, "  - load (")
	assert.Contains(t, out, "    - go build (")
	assert.Contains(t, out, "total ")
}

func TestNilTimer(t *testing.T) {
	var timer *Timer
	stop := timer.Start("load")
	stop()
	assert.Nil(t, timer.Spans())

	var buf bytes.Buffer
	timer.Summarize(&buf)
	assert.Empty(t, buf.String())
}

func TestCobraProfiler(t *testing.T) {
	p := NewCobraProfiler()
	var stderr bytes.Buffer

	cmd := &cobra.Command{
		Use:               "run",
		PersistentPreRunE: p.PreRun,
		PersistentPostRun: p.PostRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer p.Timer().Start("work")()
			return nil
		},
	}
	p.AddFlags(cmd)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--timing"})

	require.NoError(t, cmd.Execute())
	assert.True(t, strings.Contains(stderr.String(), "- work ("), stderr.String())
}
