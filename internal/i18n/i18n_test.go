package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestTranslator_English(t *testing.T) {
	tr := New(language.English)

	assert.Equal(t, "Activity Type", tr.T("Activity Type"))
	assert.Equal(t, "Activity Tag IN", tr.T("Activity Tag %s", "IN"))
}

func TestTranslator_French(t *testing.T) {
	tr, err := Parse("fr")
	require.NoError(t, err)

	assert.Equal(t, "Type d'activité", tr.T("Activity Type"))
	assert.Equal(t, "Campagnes IN", tr.T("Campaigns %s", "IN"))
	assert.Equal(t, "ou", tr.T("or"))
}

func TestTranslator_UntranslatedKeyFallsBack(t *testing.T) {
	tr := New(language.French)

	assert.Equal(t, "Something new", tr.T("Something new"))
}

func TestTranslator_Nil(t *testing.T) {
	var tr *Translator

	assert.Equal(t, "Subject = - 'x'", tr.T("Subject %s - '%s'", "=", "x"))
	assert.Equal(t, language.English, tr.Tag())
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse("not a locale!")
	assert.Error(t, err)
}
