package terrain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresets_Valid(t *testing.T) {
	for _, name := range ErosionPresetNames() {
		cfg, err := ErosionPreset(name)
		require.NoError(t, err, "пресет %s", name)
		assert.NoError(t, cfg.Validate(), "пресет %s должен проходить проверку", name)
	}
	assert.NoError(t, DefaultNoise().Validate())
}

func TestErosionPreset_Lookup(t *testing.T) {
	cfg, err := ErosionPreset("")
	require.NoError(t, err)
	assert.Equal(t, DefaultErosion(), cfg, "пустое имя — пресет по умолчанию")

	cfg, err = ErosionPreset(" Heavy ")
	require.NoError(t, err)
	assert.Equal(t, HeavyErosion(), cfg)

	_, err = ErosionPreset("catastrophic")
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func TestErosionPresetNames(t *testing.T) {
	assert.Equal(t, []string{"default", "heavy", "subtle"}, ErosionPresetNames())
}
