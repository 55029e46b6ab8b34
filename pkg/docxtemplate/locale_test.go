package docxtemplate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexFormatter(t *testing.T) {
	for _, locale := range []string{"en", "de", "fr-CH"} {
		t.Run(locale, func(t *testing.T) {
			format, err := NewIndexFormatter(locale)
			require.NoError(t, err)
			assert.Equal(t, "1", format(1))
			assert.Equal(t, "12", format(12))
			// Item positions never carry grouping separators.
			assert.Equal(t, "12345", format(12345))
		})
	}
}

func TestIndexFormatterInvalidLocale(t *testing.T) {
	_, err := NewIndexFormatter("not a locale!")
	assert.Error(t, err)
}

func TestNilIndexFormatter(t *testing.T) {
	var format IndexFormatter
	assert.Equal(t, "3", format.format(3))
}

func TestEngineFallsBackOnInvalidLocale(t *testing.T) {
	config := DefaultConfig()
	config.Locale = "not a locale!"
	e, _ := testEngine(config)

	assert.Nil(t, e.format)
	assert.Equal(t, "7", e.format.format(7))
}
