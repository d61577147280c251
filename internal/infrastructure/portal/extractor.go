package portal

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"BillAnalyzer/internal/domain"
)

const metadataTableSelector = "table.tabelaDados"

// ExtractDetails reads the two-column metadata table of a detail page.
// A page without the table yields an empty, non-nil mapping.
func ExtractDetails(doc *goquery.Document) domain.DetailFields {
	fields := domain.DetailFields{}
	if doc == nil {
		return fields
	}

	table := doc.Find(metadataTableSelector).First()
	if table.Length() == 0 {
		return fields
	}

	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cols := row.Find("td")
		if cols.Length() != 2 {
			return
		}

		label := joinedText(cols.Eq(0), "")
		value := cols.Eq(1)

		if label != domain.LabelDocument {
			fields[label] = joinedText(value, " ")
			return
		}

		link := value.Find("a[href]").First()
		if link.Length() == 0 {
			fields[label] = joinedText(value, "")
			return
		}
		href, _ := link.Attr("href")
		fields[label] = joinedText(link, "")
		fields[domain.LabelPDFReference] = strings.TrimSpace(href)
	})

	return fields
}

// joinedText trims every text node under sel, drops empty ones and joins the rest with sep.
func joinedText(sel *goquery.Selection, sep string) string {
	var parts []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(parts, sep)
}
