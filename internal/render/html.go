package render

import (
	"io"
	"iter"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/diogo/mangroveguide/internal/models"
)

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// textNodes renders content as text nodes. With lineBreaks every newline
// becomes exactly one <br>. Text nodes are escaped on output, so content
// can never inject markup.
func textNodes(parent *html.Node, content string, lineBreaks bool) {
	if !lineBreaks {
		parent.AppendChild(text(Flow(content, false)))
		return
	}
	for i, seg := range Lines(content) {
		if i > 0 {
			parent.AppendChild(element(atom.Br))
		}
		if seg != "" {
			parent.AppendChild(text(seg))
		}
	}
}

// EntryNode renders one entry as an HTML fragment.
func EntryNode(e models.Entry, lineBreaks bool) *html.Node {
	class := "entry entry-" + string(e.Role) + " entry-" + string(e.Kind)
	div := element(atom.Div, attr("class", class), attr("id", e.ID))

	switch e.Kind {
	case models.KindText:
		p := element(atom.P)
		textNodes(p, e.Content, lineBreaks)
		div.AppendChild(p)
	case models.KindImage:
		grid := element(atom.Div, attr("class", "grid"))
		for _, img := range e.Images {
			fig := element(atom.Figure)
			fig.AppendChild(element(atom.Img, attr("src", img.Src), attr("alt", img.Alt)))
			if img.Label != "" {
				caption := element(atom.Figcaption)
				caption.AppendChild(text(img.Label))
				fig.AppendChild(caption)
			}
			grid.AppendChild(fig)
		}
		div.AppendChild(grid)
	case models.KindButton:
		btn := element(atom.Button, attr("type", "button"), attr("data-entry", e.ID))
		btn.AppendChild(text(e.Label))
		div.AppendChild(btn)
	}
	return div
}

const documentStyle = `body{font-family:sans-serif;background:#111827;color:#f9fafb;max-width:48rem;margin:auto}
.entry{margin:.75rem 0;display:flex}.entry-user{justify-content:flex-end}
.entry p{background:#1f2937;border-radius:1rem;padding:.75rem 1rem;margin:0}
.entry-user p{background:#0d9488}
.grid{display:grid;grid-template-columns:1fr 1fr;gap:.5rem}
figure{position:relative;margin:0}img{width:100%;border-radius:.5rem}
figcaption{position:absolute;bottom:.5rem;left:.5rem;background:rgba(0,0,0,.5);padding:.1rem .4rem}
button{background:#0d9488;color:#fff;border:0;border-radius:1rem;padding:.5rem 1rem}`

// WriteDocument writes a standalone HTML page holding the entries.
func WriteDocument(w io.Writer, title string, entries iter.Seq[models.Entry], lineBreaks bool) error {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html, attr("lang", "en"))
	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, attr("charset", "utf-8")))
	t := element(atom.Title)
	t.AppendChild(text(title))
	head.AppendChild(t)
	style := element(atom.Style)
	style.AppendChild(text(documentStyle))
	head.AppendChild(style)
	root.AppendChild(head)

	body := element(atom.Body)
	h1 := element(atom.H1)
	h1.AppendChild(text(title))
	body.AppendChild(h1)
	content := element(atom.Main)
	for e := range entries {
		content.AppendChild(EntryNode(e, lineBreaks))
	}
	body.AppendChild(content)
	root.AppendChild(body)
	doc.AppendChild(root)

	return html.Render(w, doc)
}
