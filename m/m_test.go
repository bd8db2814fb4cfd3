package m

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediocregopher/tiniredis/mcfg"
)

func TestRootComponentPopulatesLogLevel(t *testing.T) {
	cmp := RootComponent()
	cmp.SetValue(cmpKeyCfgSrc, mcfg.Source(mcfg.SourceCLI{Args: []string{"--log-level", "warn"}}))

	MustInit(cmp)
}

func TestRootServerComponentUsesEnvAndCLI(t *testing.T) {
	cmp := RootServerComponent()

	src, ok := cmp.Value(cmpKeyCfgSrc).(mcfg.Source)
	require.True(t, ok)
	assert.IsType(t, mcfg.Sources{}, src)
}
