package render

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// Importer converts existing HTML (an old homepage, an exported document)
// into page markdown.
type Importer struct {
	conv *converter.Converter
}

// NewImporter returns an importer with commonmark and table support.
func NewImporter() *Importer {
	return &Importer{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// Import converts html. Relative links are resolved against domain when it
// is not empty.
func (i *Importer) Import(html, domain string) (string, error) {
	var (
		md  string
		err error
	)
	if domain != "" {
		md, err = i.conv.ConvertString(html, converter.WithDomain(domain))
	} else {
		md, err = i.conv.ConvertString(html)
	}
	if err != nil {
		return "", fmt.Errorf("failed to convert html: %w", err)
	}
	return strings.TrimSpace(md) + "\n", nil
}
