package upload

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// MaxFileSize is the hard per-file limit for both report files.
const MaxFileSize = 50 << 20 // 50 MiB

// HTML files above these thresholds degrade mobile viewing.
const (
	htmlErrorSize = 10 << 20
	htmlWarnSize  = 5 << 20
)

// ValidationError marks caller-supplied data as malformed or incomplete. It is
// always raised before any side effect, so it never requires rollback.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateFileSize checks the byte length against max (MaxFileSize when <= 0).
func ValidateFileSize(data []byte, max int64) error {
	if max <= 0 {
		max = MaxFileSize
	}
	if int64(len(data)) > max {
		return &ValidationError{Message: fmt.Sprintf(
			"file size %.2f MB exceeds limit of %d MB",
			float64(len(data))/1024/1024, max/1024/1024,
		)}
	}
	return nil
}

// ValidateRequiredFiles reports which of the two report files is missing, or
// an empty string when both are present.
func ValidateRequiredFiles(docx, htmlFile []byte) string {
	if len(docx) == 0 {
		return "DOCX file is required"
	}
	if len(htmlFile) == 0 {
		return "HTML file is required"
	}
	return ""
}

// HTMLValidation is the outcome of the self-containment check. Warnings are
// informational and never block; errors mark external dependencies that would
// break offline viewing. The two are independent axes.
type HTMLValidation struct {
	Warnings  []string `json:"warnings"`
	Errors    []string `json:"errors"`
	HasPlotly bool     `json:"has_plotly"`
}

// Valid reports whether the document carries no blocking errors.
func (v HTMLValidation) Valid() bool {
	return len(v.Errors) == 0
}

// Plotly is the only charting library whose CDN-hosted bundle is permitted as
// an external script, pinned to exact-version URLs on its two known hosts.
var allowedCDNPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https://cdn\.plot\.ly/plotly-[\d.]+\.min\.js$`),
	regexp.MustCompile(`^https://cdn\.jsdelivr\.net/npm/plotly\.js@[\d.]+/dist/plotly\.min\.js$`),
}

// ValidateHTMLSelfContained parses the document and flags every external
// stylesheet, script, and image reference. An allow-listed Plotly CDN script
// passes; everything else over http(s) is a blocking error. When no embedded
// Plotly bundle is detected, a non-blocking warning is added because
// interactive charts may not render.
func ValidateHTMLSelfContained(htmlContent string) HTMLValidation {
	result := HTMLValidation{Warnings: []string{}, Errors: []string{}}

	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		result.Errors = append(result.Errors, "HTML could not be parsed: "+err.Error())
		return result
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "link":
				if attr(n, "rel") == "stylesheet" && isExternal(attr(n, "href")) {
					result.Errors = append(result.Errors,
						"document references an external stylesheet and is not self-contained")
				}
			case "script":
				if src := attr(n, "src"); isExternal(src) && !isAllowedCDN(src) {
					result.Errors = append(result.Errors,
						"document references an unauthorized external script: "+src)
				}
				if scriptText(n) != "" && strings.Contains(scriptText(n), "Plotly") {
					result.HasPlotly = true
				}
			case "img":
				if isExternal(attr(n, "src")) {
					result.Errors = append(result.Errors,
						"document references an external image and is not self-contained")
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if !result.HasPlotly {
		result.HasPlotly = strings.Contains(htmlContent, "plotly.min.js") ||
			strings.Contains(htmlContent, "plotly-latest.min.js")
	}
	if !result.HasPlotly {
		result.Warnings = append(result.Warnings,
			"Plotly library not detected - interactive charts may not render")
	}

	return result
}

// HTMLWeightAdvisory checks the rendered HTML size for mobile performance:
// above 10 MB is a blocking error, above 5 MB a warning.
func HTMLWeightAdvisory(data []byte) (warning string, err error) {
	sizeMB := float64(len(data)) / 1024 / 1024
	if len(data) > htmlErrorSize {
		return "", &ValidationError{Message: fmt.Sprintf(
			"HTML file too large (%.1f MB), maximum is 10 MB", sizeMB)}
	}
	if len(data) > htmlWarnSize {
		return fmt.Sprintf("large HTML file (%.1f MB) may load slowly on mobile (under 5 MB recommended)", sizeMB), nil
	}
	return "", nil
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func isExternal(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

func isAllowedCDN(src string) bool {
	for _, pattern := range allowedCDNPatterns {
		if pattern.MatchString(src) {
			return true
		}
	}
	return false
}

func scriptText(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}
