package render

import (
	"bytes"
	"strconv"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/use-agent/setlist/models"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// newMarkdownConverter creates a reusable, goroutine-safe Converter. The
// table plugin keeps the track list as a Markdown table with minimal cell
// padding.
func newMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(
				table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
			),
		),
	)
}

var mdConverter = newMarkdownConverter()

// Markdown renders p as Markdown. sourceURL resolves a relative cover URL.
func Markdown(p *models.Playlist, sourceURL string) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, playlistHTML(p)); err != nil {
		return "", err
	}
	return mdConverter.ConvertString(buf.String(), converter.WithDomain(sourceURL))
}

// playlistHTML builds the document the Markdown converter works from.
func playlistHTML(p *models.Playlist) *html.Node {
	body := element(atom.Body, nil,
		element(atom.H1, nil, text(p.Name)),
	)
	if p.Description != "" {
		body.AppendChild(element(atom.P, nil, text(p.Description)))
	}
	if p.IsFallback() {
		return body
	}
	if p.CoverURL != "" {
		body.AppendChild(element(atom.P, nil,
			element(atom.Img, []html.Attribute{
				{Key: "src", Val: p.CoverURL},
				{Key: "alt", Val: "cover"},
			}),
		))
	}

	head := element(atom.Tr, nil)
	for _, h := range []string{"#", "Title", "Artist", "Album", "Duration"} {
		head.AppendChild(element(atom.Th, nil, text(h)))
	}
	tbody := element(atom.Tbody, nil)
	for i, t := range p.Tracks {
		row := element(atom.Tr, nil)
		for _, cell := range []string{strconv.Itoa(i + 1), t.Title, t.Artist, t.Album, t.Duration} {
			row.AppendChild(element(atom.Td, nil, text(cell)))
		}
		tbody.AppendChild(row)
	}
	body.AppendChild(element(atom.Table, nil, element(atom.Thead, nil, head), tbody))
	return body
}

func element(a atom.Atom, attrs []html.Attribute, children ...*html.Node) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
