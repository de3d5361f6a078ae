package styles_test

import (
	"testing"

	"github.com/arthur-debert/mirage/pkg/ui/styles"
	"github.com/arthur-debert/mirage/pkg/ui/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_DefinesViewStyles(t *testing.T) {
	sheet := styles.Default()

	for _, name := range []string{
		view.StyleHeader, view.StyleBanner, view.StyleLabel, view.StyleValue,
		view.StylePath, view.StyleSuccess, view.StyleWarning, view.StyleMuted, "Error",
	} {
		assert.True(t, sheet.Has(name), name)
	}
}

func TestParse(t *testing.T) {
	sheet, err := styles.Parse([]byte(`
colors:
  red: {light: "#ff0000", dark: "#ff5555"}
styles:
  Alert:
    bold: true
    foreground: red
    width: 10
`))
	require.NoError(t, err)

	alert := sheet.Get("Alert")
	assert.True(t, alert.GetBold())
	assert.Equal(t, 10, alert.GetWidth())
	assert.False(t, sheet.Get("Missing").GetBold())
}

func TestParse_Errors(t *testing.T) {
	_, err := styles.Parse([]byte("styles: [not, a, map"))
	assert.Error(t, err)

	_, err = styles.Parse([]byte("styles:\n  Alert:\n    foreground: nowhere\n"))
	assert.Error(t, err)
}
