// Package markdown turns local markdown files into Confluence storage format.
package markdown

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	mdhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Document is a markdown file ready to be published as a page.
type Document struct {
	Title  string
	Source string
	Path   string
}

// ParseFile reads a markdown file. The title is the first level one heading,
// or the file name without extension when there is none.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(path, string(data)), nil
}

// Parse builds a Document from markdown already in memory.
func Parse(path, source string) *Document {
	source = strings.ReplaceAll(source, "\r\n", "\n")
	return &Document{
		Title:  extractTitle(strings.Split(source, "\n"), path),
		Source: source,
		Path:   path,
	}
}

func extractTitle(lines []string, path string) string {
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Body returns the document in storage format. With dropTitle set the heading
// used as the page title is left out of the body.
func (d *Document) Body(dropTitle bool) (string, error) {
	src := d.Source
	if dropTitle {
		src = removeTitleHeading(src, d.Title)
	}
	return ToStorage(src)
}

func removeTitleHeading(src, title string) string {
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "# "+title {
			return strings.Join(append(lines[:i:i], lines[i+1:]...), "\n")
		}
	}
	return src
}

// storageMarkdown renders GitHub flavored markdown as XHTML, which is what
// the storage format expects. Code blocks become the code macro.
var storageMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		mdhtml.WithXHTML(),
		renderer.WithNodeRenderers(util.Prioritized(codeMacroRenderer{}, 100)),
	),
)

// ToStorage converts markdown to Confluence storage format. Raw HTML in the
// source is dropped.
func ToStorage(src string) (string, error) {
	var buf bytes.Buffer
	if err := storageMarkdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// codeMacroRenderer replaces the <pre><code> output of fenced and indented
// code blocks with the Confluence code macro.
type codeMacroRenderer struct{}

func (r codeMacroRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderCode)
	reg.Register(ast.KindCodeBlock, r.renderCode)
}

func (codeMacroRenderer) renderCode(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	var language string
	if fenced, ok := node.(*ast.FencedCodeBlock); ok {
		language = string(fenced.Language(source))
	}
	var body bytes.Buffer
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		body.Write(line.Value(source))
	}

	_, _ = w.WriteString(CodeMacro(language, strings.TrimSuffix(body.String(), "\n")))
	_ = w.WriteByte('\n')
	return ast.WalkSkipChildren, nil
}

// CodeMacro renders body inside the Confluence code macro.
func CodeMacro(language, body string) string {
	var sb strings.Builder
	sb.WriteString(`<ac:structured-macro ac:name="code" ac:schema-version="1">`)
	if language != "" {
		sb.WriteString(`<ac:parameter ac:name="language">`)
		sb.Write(util.EscapeHTML([]byte(language)))
		sb.WriteString(`</ac:parameter>`)
	}
	sb.WriteString(`<ac:plain-text-body><![CDATA[`)
	// CDATA cannot contain its own terminator.
	sb.WriteString(strings.ReplaceAll(body, "]]>", "]]]]><![CDATA[>"))
	sb.WriteString(`]]></ac:plain-text-body></ac:structured-macro>`)
	return sb.String()
}
