package loader

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
)

// extractPDF returns the page text of a PDF concatenated in page order.
// The file is validated first so that a truncated upload is rejected with
// a clear error instead of producing garbage chunks.
func extractPDF(path string) (string, error) {
	if err := pdfapi.ValidateFile(path, nil); err != nil {
		return "", fmt.Errorf("invalid pdf: %w", err)
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single malformed page should not lose the document.
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("pdf contains no extractable text")
	}
	return b.String(), nil
}
