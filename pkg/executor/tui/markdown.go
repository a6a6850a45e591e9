package tui

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	gmtext "github.com/yuin/goldmark/text"
)

var (
	markdownOnce   sync.Once
	markdownParser goldmark.Markdown
)

func getMarkdownParser() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownParser = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		)
	})
	return markdownParser
}

// renderMarkdownText renders markdown source as styled terminal text wrapped
// to the given width. Unknown or unsupported constructs fall back to their
// plain text content, so rendering never fails.
func renderMarkdownText(source string, width int) string {
	if width <= 0 {
		width = 80
	}

	r := &markdownRenderer{
		width:  width,
		source: []byte(source),
	}

	doc := getMarkdownParser().Parser().Parse(gmtext.NewReader(r.source))
	_ = ast.Walk(doc, r.walk)
	r.flushInline()

	return strings.TrimRight(r.out.String(), "\n")
}

// listState tracks one level of list nesting
type listState struct {
	ordered bool
	index   int
}

// markdownRenderer walks the parsed AST and accumulates terminal output.
// Inline content collects in a buffer until a block boundary flushes it
// through wrapping and prefix application.
type markdownRenderer struct {
	out    strings.Builder
	inline strings.Builder
	width  int
	source []byte

	prefixStack   []string
	pendingBullet string
	lists         []listState
	tableRow      []string

	boldDepth   int
	italicDepth int
	strikeDepth int
	codeSpan    bool

	trailingNewlines int
}

//nolint:gocyclo
func (r *markdownRenderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		if entering {
			r.flushInline()
		} else {
			r.renderHeading(node.Level)
		}

	case *ast.Paragraph:
		if !entering {
			r.flushInline()
			r.ensureBlankLine()
		}

	case *ast.TextBlock:
		// Tight list items use text blocks instead of paragraphs
		if !entering {
			r.flushInline()
			r.ensureNewline()
		}

	case *ast.Text:
		if entering {
			r.writeInline(string(node.Segment.Value(r.source)))
			switch {
			case node.HardLineBreak():
				r.inline.WriteString("\n")
			case node.SoftLineBreak():
				r.inline.WriteString(" ")
			}
		}

	case *ast.String:
		if entering {
			r.writeInline(string(node.Value))
		}

	case *ast.Emphasis:
		if node.Level >= 2 {
			r.boldDepth += enterDelta(entering)
		} else {
			r.italicDepth += enterDelta(entering)
		}

	case *extast.Strikethrough:
		r.strikeDepth += enterDelta(entering)

	case *ast.CodeSpan:
		r.codeSpan = entering

	case *ast.Link:
		if !entering {
			url := lipgloss.NewStyle().Foreground(mutedGray).Render(fmt.Sprintf(" (%s)", node.Destination))
			r.inline.WriteString(url)
		}

	case *ast.AutoLink:
		if entering {
			r.writeInline(string(node.URL(r.source)))
		}

	case *ast.Image:
		if entering {
			return ast.WalkSkipChildren, nil
		}

	case *ast.List:
		if entering {
			r.flushInline()
			r.lists = append(r.lists, listState{ordered: node.IsOrdered(), index: node.Start})
		} else {
			r.lists = r.lists[:len(r.lists)-1]
			if len(r.lists) == 0 {
				r.ensureBlankLine()
			}
		}

	case *ast.ListItem:
		if entering {
			r.startListItem()
		} else {
			r.flushInline()
			r.popPrefix()
		}

	case *ast.Blockquote:
		if entering {
			r.flushInline()
			r.ensureNewline()
			r.prefixStack = append(r.prefixStack, "│ ")
		} else {
			r.flushInline()
			r.popPrefix()
			r.ensureBlankLine()
		}

	case *ast.FencedCodeBlock:
		if entering {
			r.flushInline()
			r.renderCode(blockText(node, r.source), string(node.Language(r.source)))
			return ast.WalkSkipChildren, nil
		}

	case *ast.CodeBlock:
		if entering {
			r.flushInline()
			r.renderCode(blockText(node, r.source), "")
			return ast.WalkSkipChildren, nil
		}

	case *ast.ThematicBreak:
		if !entering {
			r.renderRule()
		}

	case *ast.HTMLBlock, *ast.RawHTML:
		return ast.WalkSkipChildren, nil

	case *extast.Table:
		if !entering {
			r.ensureBlankLine()
		}

	case *extast.TableHeader, *extast.TableRow:
		if entering {
			r.tableRow = r.tableRow[:0]
		} else {
			r.writeTableRow()
		}

	case *extast.TableCell:
		if !entering {
			r.tableRow = append(r.tableRow, strings.TrimSpace(r.inline.String()))
			r.inline.Reset()
		}
	}

	return ast.WalkContinue, nil
}

func enterDelta(entering bool) int {
	if entering {
		return 1
	}
	return -1
}

// writeInline appends text to the inline buffer with the active styles applied
func (r *markdownRenderer) writeInline(text string) {
	if text == "" {
		return
	}

	style := lipgloss.NewStyle()
	styled := false
	if r.codeSpan {
		style = style.Foreground(seafoam)
		styled = true
	}
	if r.boldDepth > 0 {
		style = style.Bold(true)
		styled = true
	}
	if r.italicDepth > 0 {
		style = style.Italic(true)
		styled = true
	}
	if r.strikeDepth > 0 {
		style = style.Strikethrough(true)
		styled = true
	}

	if styled {
		text = style.Render(text)
	}
	r.inline.WriteString(text)
}

// flushInline wraps the accumulated inline content and writes it with prefixes
func (r *markdownRenderer) flushInline() {
	content := strings.TrimRight(r.inline.String(), " ")
	r.inline.Reset()
	if content == "" {
		return
	}

	wrapWidth := r.width - r.prefixWidth()
	if wrapWidth < 20 {
		wrapWidth = 20
	}

	wrapped := ansi.Wrap(content, wrapWidth, " ,.;-+|")
	r.applyPrefixes(strings.Split(wrapped, "\n"))
}

// applyPrefixes writes lines with the current prefix stack. The first line
// after a list item start carries the bullet in place of its continuation
// indent.
func (r *markdownRenderer) applyPrefixes(lines []string) {
	for _, line := range lines {
		prefix := strings.Join(r.prefixStack, "")
		if r.pendingBullet != "" {
			if len(r.prefixStack) > 0 {
				prefix = strings.Join(r.prefixStack[:len(r.prefixStack)-1], "") + r.pendingBullet
			} else {
				prefix = r.pendingBullet
			}
			r.pendingBullet = ""
		}

		full := prefix + line
		r.out.WriteString(full)
		r.out.WriteString("\n")
		if strings.TrimSpace(full) == "" {
			r.trailingNewlines++
		} else {
			r.trailingNewlines = 1
		}
	}
}

func (r *markdownRenderer) prefixWidth() int {
	return ansi.StringWidth(strings.Join(r.prefixStack, ""))
}

func (r *markdownRenderer) popPrefix() {
	if len(r.prefixStack) > 0 {
		r.prefixStack = r.prefixStack[:len(r.prefixStack)-1]
	}
}

// startListItem sets up the bullet and continuation indent for a list item
func (r *markdownRenderer) startListItem() {
	r.flushInline()
	r.ensureNewline()

	state := &r.lists[len(r.lists)-1]
	var bullet string
	if state.ordered {
		bullet = fmt.Sprintf("%d. ", state.index)
		state.index++
	} else {
		bullet = "- "
	}

	r.pendingBullet = bullet
	r.prefixStack = append(r.prefixStack, strings.Repeat(" ", len(bullet)))
}

// renderHeading styles the accumulated heading text and writes it
func (r *markdownRenderer) renderHeading(level int) {
	text := ansi.Strip(strings.TrimSpace(r.inline.String()))
	r.inline.Reset()
	if text == "" {
		return
	}

	style := lipgloss.NewStyle().Bold(true)
	if level <= 2 {
		style = style.Foreground(skyBlue)
	}

	r.ensureBlankLine()
	r.applyPrefixes([]string{style.Render(text)})
	r.ensureBlankLine()
}

// renderCode writes a code block with syntax highlighting when the language
// is known, indented two spaces past the current prefix
func (r *markdownRenderer) renderCode(code, language string) {
	if strings.TrimRight(code, "\n") == "" {
		return
	}

	r.ensureBlankLine()
	highlighted := highlightCode(code, language)
	prefix := strings.Join(r.prefixStack, "") + "  "
	for _, line := range strings.Split(strings.TrimRight(highlighted, "\n"), "\n") {
		r.out.WriteString(prefix + line + "\n")
	}
	r.trailingNewlines = 1
	r.ensureBlankLine()
}

// highlightCode runs chroma highlighting, falling back to faint plain text
func highlightCode(code, language string) string {
	if language != "" {
		var buf bytes.Buffer
		if err := quick.Highlight(&buf, code, language, "terminal256", "monokai"); err == nil {
			return buf.String()
		}
	}
	return lipgloss.NewStyle().Faint(true).Render(code)
}

// renderRule writes a horizontal rule
func (r *markdownRenderer) renderRule() {
	r.flushInline()
	width := r.width - r.prefixWidth()
	if width > 40 {
		width = 40
	}
	if width < 4 {
		width = 4
	}

	r.ensureBlankLine()
	r.applyPrefixes([]string{lipgloss.NewStyle().Foreground(mutedGray).Render(strings.Repeat("─", width))})
	r.ensureBlankLine()
}

// writeTableRow joins collected cells into one unwrapped line
func (r *markdownRenderer) writeTableRow() {
	if len(r.tableRow) == 0 {
		return
	}
	r.ensureNewline()
	r.applyPrefixes([]string{strings.Join(r.tableRow, " | ")})
	r.tableRow = r.tableRow[:0]
}

// blockText concatenates the source lines of a block node
func blockText(node ast.Node, source []byte) string {
	var b strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		b.Write(segment.Value(source))
	}
	return b.String()
}

func (r *markdownRenderer) ensureNewline() {
	if r.out.Len() == 0 {
		return
	}
	if r.trailingNewlines < 1 {
		r.out.WriteString("\n")
		r.trailingNewlines++
	}
}

func (r *markdownRenderer) ensureBlankLine() {
	if r.out.Len() == 0 {
		return
	}
	for r.trailingNewlines < 2 {
		r.out.WriteString("\n")
		r.trailingNewlines++
	}
}
