package pdftext

import (
	"context"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rotisserie/eris"
)

// Native extracts text in-process using github.com/ledongthuc/pdf. Pages are
// concatenated in page order; a page whose text cannot be read contributes an
// empty string rather than failing the document.
type Native struct{}

// NewNative creates a Native extractor.
func NewNative() *Native {
	return &Native{}
}

// ExtractText reads every page's plain text from the PDF at pdfPath.
func (n *Native) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", eris.Wrap(err, "pdftext: native")
	}

	f, reader, err := pdf.Open(pdfPath)
	if err != nil {
		return "", eris.Wrapf(err, "pdftext: open %s", pdfPath)
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Pages with unreadable text streams contribute nothing.
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}
