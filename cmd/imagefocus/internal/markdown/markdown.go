// Package markdown renders Markdown documents as pages the overlay can run
// on. A paragraph holding a single image becomes a figure, captioned by the
// image title or alt text, inside the page's markdownBody container.
package markdown

import (
	"bytes"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/recera/imagefocus/pkg/dom/htmldom"
)

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<div id="markdownBody" class="markdownBody">
{{.Body}}</div>
</body>
</html>
`

var page = template.Must(template.New("page").Parse(pageTemplate))

// IsMarkdown reports whether path names a Markdown file
func IsMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// KindFigure is the node kind of a standalone image
var KindFigure = ast.NewNodeKind("Figure")

// Figure is a block holding one image and its caption
type Figure struct {
	ast.BaseBlock
	Caption []byte
}

// Kind implements ast.Node
func (n *Figure) Kind() ast.NodeKind {
	return KindFigure
}

// Dump implements ast.Node
func (n *Figure) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Caption": string(n.Caption)}, nil)
}

// figureTransformer replaces single-image paragraphs with figures
type figureTransformer struct{}

func (figureTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()
	var paragraphs []*ast.Paragraph
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if p, ok := n.(*ast.Paragraph); ok {
			if _, ok := p.FirstChild().(*ast.Image); ok && p.ChildCount() == 1 {
				paragraphs = append(paragraphs, p)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	for _, p := range paragraphs {
		img := p.FirstChild().(*ast.Image)
		caption := img.Title
		if len(caption) == 0 {
			caption = plainText(img, source)
		}
		fig := &Figure{Caption: caption}
		p.RemoveChild(p, img)
		fig.AppendChild(fig, img)
		p.Parent().ReplaceChild(p.Parent(), p, fig)
	}
}

// figureRenderer renders Figure nodes
type figureRenderer struct{}

func (figureRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindFigure, renderFigure)
}

func renderFigure(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString("<figure>")
		return ast.WalkContinue, nil
	}
	if caption := n.(*Figure).Caption; len(caption) > 0 {
		_, _ = w.WriteString("<figcaption>")
		_, _ = w.Write(util.EscapeHTML(caption))
		_, _ = w.WriteString("</figcaption>")
	}
	_, _ = w.WriteString("</figure>\n")
	return ast.WalkContinue, nil
}

// plainText concatenates the text under n
func plainText(n ast.Node, source []byte) []byte {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := c.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	return buf.Bytes()
}

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(util.Prioritized(figureTransformer{}, 500)),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
			renderer.WithNodeRenderers(util.Prioritized(figureRenderer{}, 500)),
		),
	)
}

// Convert renders source to HTML and returns the text of its first
// top-level heading as the title
func Convert(source []byte) (body []byte, title string, err error) {
	md := newMarkdown()
	doc := md.Parser().Parse(text.NewReader(source))

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 {
			title = string(plainText(h, source))
			break
		}
	}

	var buf bytes.Buffer
	if err := md.Renderer().Render(&buf, source, doc); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), title, nil
}

// RenderPage writes source as a complete HTML page
func RenderPage(w io.Writer, source []byte) error {
	body, title, err := Convert(source)
	if err != nil {
		return err
	}
	return page.Execute(w, struct {
		Title string
		Body  template.HTML
	}{title, template.HTML(body)})
}

// Load parses the page at path into a headless document, rendering Markdown
// files first
func Load(path string) (*htmldom.Document, error) {
	if !IsMarkdown(path) {
		return htmldom.ParseFile(path)
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := RenderPage(&buf, source); err != nil {
		return nil, err
	}
	return htmldom.Parse(&buf)
}
