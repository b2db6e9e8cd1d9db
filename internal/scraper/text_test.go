package scraper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	assert.Equal(t, "", CleanText(""))
	assert.Equal(t, "Edital de Monitoria", CleanText("  Edital \n\t de   Monitoria  "))
	assert.Equal(t, "a b", CleanText("a  b"))
}

func TestParsePTDate_Numeric(t *testing.T) {
	got := ParsePTDate("29/08/2024")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, time.August, 29, 0, 0, 0, 0, time.UTC), *got)
}

func TestParsePTDate_LongForm(t *testing.T) {
	got := ParsePTDate("29 de Agosto de 2024")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, time.August, 29, 0, 0, 0, 0, time.UTC), *got)
}

func TestParsePTDate_Unparseable(t *testing.T) {
	assert.Nil(t, ParsePTDate(""))
	assert.Nil(t, ParsePTDate("ontem"))
	assert.Nil(t, ParsePTDate("29 de augusto de 2024"))
}
