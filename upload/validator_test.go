package upload

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateHTMLSelfContained_ExternalImageIsBlocking(t *testing.T) {
	result := ValidateHTMLSelfContained(`<html><body><img src="https://example.com/x.png"></body></html>`)

	require.NotEmpty(t, result.Errors)
	assert.False(t, result.Valid())
	for _, w := range result.Warnings {
		assert.NotContains(t, w, "image", "external image must never be demoted to a warning")
	}
}

func TestValidateHTMLSelfContained_ExternalStylesheetIsBlocking(t *testing.T) {
	result := ValidateHTMLSelfContained(
		`<html><head><link rel="stylesheet" href="https://cdn.example.com/style.css"></head></html>`)

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "stylesheet")
}

func TestValidateHTMLSelfContained_InlineStylesheetAllowed(t *testing.T) {
	result := ValidateHTMLSelfContained(
		`<html><head><link rel="stylesheet" href="style.css"><style>body{}</style></head></html>`)

	assert.Empty(t, result.Errors)
}

func TestValidateHTMLSelfContained_PlotlyCDNAllowed(t *testing.T) {
	result := ValidateHTMLSelfContained(
		`<html><head><script src="https://cdn.jsdelivr.net/npm/plotly.js@2.27.0/dist/plotly.min.js"></script></head></html>`)

	assert.Empty(t, result.Errors)
	assert.True(t, result.HasPlotly)
	assert.Empty(t, result.Warnings)
}

func TestValidateHTMLSelfContained_PlotlyPrimaryCDNAllowed(t *testing.T) {
	result := ValidateHTMLSelfContained(
		`<html><head><script src="https://cdn.plot.ly/plotly-2.27.0.min.js"></script></head></html>`)

	assert.Empty(t, result.Errors)
}

func TestValidateHTMLSelfContained_UnknownScriptBlocked(t *testing.T) {
	result := ValidateHTMLSelfContained(
		`<html><head><script src="https://evil.example.com/steal.js"></script></head></html>`)

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "https://evil.example.com/steal.js")
}

func TestValidateHTMLSelfContained_MissingPlotlyIsOnlyAWarning(t *testing.T) {
	result := ValidateHTMLSelfContained(`<html><body><p>plain report</p></body></html>`)

	assert.Empty(t, result.Errors)
	assert.True(t, result.Valid())
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Plotly")
	assert.False(t, result.HasPlotly)
}

func TestValidateHTMLSelfContained_InlinePlotlyDetected(t *testing.T) {
	result := ValidateHTMLSelfContained(
		`<html><body><script>window.Plotly.newPlot("chart", data)</script></body></html>`)

	assert.True(t, result.HasPlotly)
	assert.Empty(t, result.Warnings)
}

func TestValidateHTMLSelfContained_WarningsAndErrorsAreIndependent(t *testing.T) {
	// Embedded Plotly but an external image: one blocking error, no warnings.
	result := ValidateHTMLSelfContained(
		`<html><body><script>Plotly.newPlot()</script><img src="http://x.test/a.jpg"></body></html>`)

	assert.Len(t, result.Errors, 1)
	assert.Empty(t, result.Warnings)
	assert.True(t, result.HasPlotly)
}

func TestValidateFileSize(t *testing.T) {
	assert.NoError(t, ValidateFileSize([]byte("small"), 10))

	err := ValidateFileSize(make([]byte, 11), 10)
	require.Error(t, err)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Message, "exceeds limit")
}

func TestValidateRequiredFiles(t *testing.T) {
	assert.Equal(t, "DOCX file is required", ValidateRequiredFiles(nil, []byte("h")))
	assert.Equal(t, "HTML file is required", ValidateRequiredFiles([]byte("d"), nil))
	assert.Empty(t, ValidateRequiredFiles([]byte("d"), []byte("h")))
}

func TestHTMLWeightAdvisory(t *testing.T) {
	warning, err := HTMLWeightAdvisory([]byte(strings.Repeat("a", 1024)))
	assert.NoError(t, err)
	assert.Empty(t, warning)

	warning, err = HTMLWeightAdvisory(make([]byte, htmlWarnSize+1))
	assert.NoError(t, err)
	assert.Contains(t, warning, "slowly")

	_, err = HTMLWeightAdvisory(make([]byte, htmlErrorSize+1))
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}
