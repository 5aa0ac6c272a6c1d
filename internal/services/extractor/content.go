package extractor

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// Chrome elements that carry navigation and boilerplate, never unit data.
var strippedSelectors = []string{
	"script", "style", "noscript", "iframe",
	"nav", "header", "footer", "aside",
}

// CleanContent strips page chrome from HTML and converts what remains to
// markdown, truncated to maxChars. Markdown keeps the table and list
// structure that extraction models read prices out of while dropping the
// markup noise that inflates token counts.
func CleanContent(html, pageURL string, maxChars int) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	for _, selector := range strippedSelectors {
		doc.Find(selector).Remove()
	}

	cleanedHTML, err := doc.Find("body").Html()
	if err != nil || strings.TrimSpace(cleanedHTML) == "" {
		cleanedHTML, _ = doc.Html()
	}

	converter := md.NewConverter(pageURL, true, nil)
	markdown, err := converter.ConvertString(cleanedHTML)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}

	markdown = strings.TrimSpace(markdown)
	if maxChars > 0 && len(markdown) > maxChars {
		markdown = markdown[:maxChars]
	}
	return markdown, nil
}
