package snake

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/benchquest/pkg/protocol"
)

func TestFieldsTimer(t *testing.T) {
	fields := Fields(protocol.DefaultConfig(protocol.Timer))
	require.Len(t, fields, 2)
	assert.Equal(t, Field{Name: "duration", Kind: reflect.Int, Default: "300"}, fields[0])
	assert.Equal(t, Field{Name: "autoStart", Kind: reflect.Bool, Default: "false"}, fields[1])
}

func TestFieldsNested(t *testing.T) {
	fields := Fields(protocol.DefaultConfig(protocol.PH))
	require.Len(t, fields, 2)
	assert.Equal(t, "7", fields[0].Default)
	assert.Equal(t, reflect.Struct, fields[1].Kind)
	assert.JSONEq(t, `{"min":6.5,"max":7.5}`, fields[1].Default)
}

func TestBuildConfig(t *testing.T) {
	fields := Fields(protocol.DefaultConfig(protocol.Timer))
	cfg, err := BuildConfig(protocol.Timer, fields, map[string]string{
		"duration":  "600",
		"autoStart": "yes",
	})
	require.NoError(t, err)
	assert.Equal(t, protocol.TimerConfig{Duration: 600, AutoStart: true}, cfg)
}

func TestBuildConfigList(t *testing.T) {
	fields := Fields(protocol.DefaultConfig(protocol.Checklist))
	cfg, err := BuildConfig(protocol.Checklist, fields, map[string]string{
		"items": "lyse, neutralize ,, spin",
	})
	require.NoError(t, err)
	assert.Equal(t, protocol.ChecklistConfig{Items: []string{"lyse", "neutralize", "spin"}}, cfg)
}

func TestBuildConfigKeepsDefaults(t *testing.T) {
	fields := Fields(protocol.DefaultConfig(protocol.PCR))
	cfg, err := BuildConfig(protocol.PCR, fields, map[string]string{"cycles": "25"})
	require.NoError(t, err)
	pcr := cfg.(protocol.PCRConfig)
	assert.Equal(t, 25, pcr.Cycles)
	assert.Equal(t, 95.0, pcr.Denaturation)
}

func TestBuildConfigRejects(t *testing.T) {
	fields := Fields(protocol.DefaultConfig(protocol.Timer))
	_, err := BuildConfig(protocol.Timer, fields, map[string]string{"duration": "soon"})
	assert.Error(t, err)

	_, err = BuildConfig(protocol.Timer, fields, map[string]string{"duration": "0"})
	assert.Error(t, err, "validation runs on the result")
}

func TestParseBool(t *testing.T) {
	for _, in := range []string{"y", "Yes", "1", "true"} {
		b, err := ParseBool(in)
		require.NoError(t, err)
		assert.True(t, b, in)
	}
	for _, in := range []string{"n", "No", "0", "false"} {
		b, err := ParseBool(in)
		require.NoError(t, err)
		assert.False(t, b, in)
	}
	_, err := ParseBool("maybe")
	assert.Error(t, err)
}
