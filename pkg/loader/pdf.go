package loader

import (
	"bytes"
	"io"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ExtractPDFPages extracts text from a PDF, one entry per page.
//
// A page that cannot be read or contains no text yields an empty entry so
// one bad page never fails the whole document. Only an unreadable document
// as a whole returns an ExtractError.
//
// Extraction decodes the text-showing operators of each page's content
// stream. Text written with CID-keyed fonts is not mapped back through the
// font's CMap, so such pages may extract incompletely.
func ExtractPDFPages(name string, data []byte) ([]string, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, &ExtractError{Name: name, Err: err}
	}

	pages := make([]string, 0, pdfCtx.PageCount)
	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		reader, err := pdfcpu.ExtractPageContent(pdfCtx, pageNr)
		if err != nil || reader == nil {
			pages = append(pages, "")
			continue
		}
		content, err := io.ReadAll(reader)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, decodePageText(content))
	}

	return pages, nil
}

// decodePageText scans a decoded content stream and reassembles the strings
// consumed by the text-showing operators (Tj, TJ, ' and ").
func decodePageText(content []byte) string {
	var out strings.Builder
	var pending []string

	i := 0
	inTextObject := false
	for i < len(content) {
		c := content[i]
		switch {
		case c == '%':
			for i < len(content) && content[i] != '\n' && content[i] != '\r' {
				i++
			}
		case c == '(':
			s, next := parseLiteralString(content, i)
			if inTextObject {
				pending = append(pending, s)
			}
			i = next
		case c == '<' && i+1 < len(content) && content[i+1] != '<':
			s, next := parseHexString(content, i)
			if inTextObject {
				pending = append(pending, s)
			}
			i = next
		case isRegularChar(c):
			start := i
			for i < len(content) && isRegularChar(content[i]) {
				i++
			}
			token := string(content[start:i])
			switch token {
			case "BT":
				inTextObject = true
			case "ET":
				inTextObject = false
				pending = nil
			case "Tj", "TJ":
				flushText(&out, &pending, false)
			case "'", "\"":
				flushText(&out, &pending, true)
			case "Td", "TD", "T*":
				if out.Len() > 0 && !strings.HasSuffix(out.String(), "\n") {
					out.WriteByte('\n')
				}
				pending = nil
			default:
				// Numbers are operands (kerning inside TJ arrays);
				// any other operator consumes its operands.
				if !isNumericToken(token) {
					pending = nil
				}
			}
		default:
			i++
		}
	}

	return strings.TrimSpace(printable(out.String()))
}

// flushText appends the pending operand strings to the output.
func flushText(out *strings.Builder, pending *[]string, newline bool) {
	if newline && out.Len() > 0 {
		out.WriteByte('\n')
	}
	for _, s := range *pending {
		out.WriteString(s)
	}
	*pending = nil
}

// parseLiteralString parses a PDF literal string starting at the opening
// parenthesis and returns its decoded value and the index past the closing
// parenthesis.
func parseLiteralString(data []byte, start int) (string, int) {
	var sb strings.Builder
	depth := 1
	i := start + 1
	for i < len(data) && depth > 0 {
		c := data[i]
		switch c {
		case '\\':
			i++
			if i >= len(data) {
				break
			}
			e := data[i]
			switch e {
			case 'n':
				sb.WriteByte('\n')
			case 'r', 't':
				sb.WriteByte(' ')
			case 'b', 'f':
				// No visible text.
			case '\r', '\n':
				// Line continuation.
			default:
				if e >= '0' && e <= '7' {
					val := int(e - '0')
					for j := 0; j < 2 && i+1 < len(data) && data[i+1] >= '0' && data[i+1] <= '7'; j++ {
						i++
						val = val*8 + int(data[i]-'0')
					}
					sb.WriteByte(byte(val))
				} else {
					sb.WriteByte(e)
				}
			}
			i++
		case '(':
			depth++
			sb.WriteByte(c)
			i++
		case ')':
			depth--
			if depth > 0 {
				sb.WriteByte(c)
			}
			i++
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String(), i
}

// parseHexString parses a PDF hex string starting at the opening angle
// bracket and returns its decoded bytes and the index past the closing
// bracket.
func parseHexString(data []byte, start int) (string, int) {
	var sb strings.Builder
	i := start + 1
	var hi byte
	haveHi := false
	for i < len(data) && data[i] != '>' {
		v, ok := hexValue(data[i])
		if ok {
			if haveHi {
				sb.WriteByte(hi<<4 | v)
				haveHi = false
			} else {
				hi = v
				haveHi = true
			}
		}
		i++
	}
	if haveHi {
		sb.WriteByte(hi << 4)
	}
	if i < len(data) {
		i++ // Skip '>'
	}
	return sb.String(), i
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// isNumericToken reports whether the token is a numeric operand.
func isNumericToken(token string) bool {
	if token == "" {
		return false
	}
	c := token[0]
	return (c >= '0' && c <= '9') || c == '+' || c == '-' || c == '.'
}

// isRegularChar reports whether c can appear in an operator token.
func isRegularChar(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0,
		'(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return false
	}
	return true
}

// printable drops control bytes that survive decoding, keeping newlines.
func printable(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r >= 0x20 {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
