package taint

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigSourcesAndSinks(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(`
# comment
source demo.Source taint

sink demo.Sink sink 0
`))
	require.NoError(t, err)
	require.Len(t, cfg.Sources, 1)
	assert.Equal(t, Source{Class: "demo.Source", Method: "taint"}, cfg.Sources[0])
	require.Len(t, cfg.Sinks, 1)
	assert.Equal(t, Sink{Class: "demo.Sink", Method: "sink", ArgIndex: 0}, cfg.Sinks[0])
}

func TestParseConfigRejectsMalformedLines(t *testing.T) {
	_, err := ParseConfig(strings.NewReader("source demo.Source\n"))
	assert.Error(t, err)

	_, err = ParseConfig(strings.NewReader("sink demo.Sink sink notanumber\n"))
	assert.Error(t, err)

	_, err = ParseConfig(strings.NewReader("bogus directive here\n"))
	assert.Error(t, err)
}
