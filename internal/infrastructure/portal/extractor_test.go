package portal

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BillAnalyzer/internal/domain"
)

func mustDocument(t *testing.T, raw string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	require.NoError(t, err)
	return doc
}

const detailPage = `
<html><body>
<table class="tabelaDados">
  <tr><td> Documento </td><td><a href="/spl/2022/05/Propositura/1000445380_1000556904_Propositura.pdf"> Projeto de Lei </a></td></tr>
  <tr><td>Número Legislativo</td><td>500/2022</td></tr>
  <tr><td>Autor(es)</td><td><a href="/deputado/1">Dep. Fulana</a>
      <br/> <a href="/deputado/2">Dep. Beltrano</a></td></tr>
  <tr><td>Ementa</td><td> Institui a política estadual de proteção à primeira infância. </td></tr>
  <tr><th>Cabeçalho</th></tr>
  <tr><td>Três</td><td>colunas</td><td>ignorada</td></tr>
</table>
</body></html>`

func TestExtractDetails(t *testing.T) {
	t.Parallel()

	fields := ExtractDetails(mustDocument(t, detailPage))

	assert.Equal(t, domain.DetailFields{
		"Documento":          "Projeto de Lei",
		"pdf_url":            "/spl/2022/05/Propositura/1000445380_1000556904_Propositura.pdf",
		"Número Legislativo": "500/2022",
		"Autor(es)":          "Dep. Fulana Dep. Beltrano",
		"Ementa":             "Institui a política estadual de proteção à primeira infância.",
	}, fields)
}

func TestExtractDetails_DocumentWithoutLink(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, `<table class="tabelaDados"><tr><td>Documento</td><td> Indicação </td></tr></table>`)
	fields := ExtractDetails(doc)

	assert.Equal(t, "Indicação", fields["Documento"])
	_, hasPDF := fields["pdf_url"]
	assert.False(t, hasPDF)
}

func TestExtractDetails_MissingTable(t *testing.T) {
	t.Parallel()

	fields := ExtractDetails(mustDocument(t, `<html><body><table><tr><td>a</td><td>b</td></tr></table></body></html>`))

	require.NotNil(t, fields)
	assert.Empty(t, fields)
}

func TestExtractDetails_NilDocument(t *testing.T) {
	t.Parallel()

	assert.Empty(t, ExtractDetails(nil))
}

func TestJoinedText(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, `<div id="x">  um <b> dois </b>
	  <i>três</i> </div>`)
	sel := doc.Find("#x")

	assert.Equal(t, "um dois três", joinedText(sel, " "))
	assert.Equal(t, "umdoistrês", joinedText(sel, ""))
}
