package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"

	"github.com/joseph-ayodele/po-extractor/constants"
)

var (
	reBlankRuns = regexp.MustCompile(`\n{4,}`)
	reRTFGroup  = regexp.MustCompile(`(?s)\{\\\*[^{}]*\}`)
	reRTFHex    = regexp.MustCompile(`\\'([0-9a-fA-F]{2})`)
	reRTFPar    = regexp.MustCompile(`\\(par|line|row|cell)\b ?`)
	reRTFTab    = regexp.MustCompile(`\\tab\b ?`)
	reRTFCtrl   = regexp.MustCompile(`\\[a-zA-Z]+-?\d* ?`)
)

// pages of plain-text inputs are separated by form feeds, like pdftotext output.
func textDocument(path, format, method, text string) *Document {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return newDocument(path, format, method, strings.Split(text, "\f"), nil)
}

// decodeText returns b as UTF-8, reading invalid input as Windows-1252.
func decodeText(b []byte) (string, error) {
	b = bytes.TrimPrefix(b, []byte("\xef\xbb\xbf"))
	if utf8.Valid(b) {
		return string(b), nil
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("decode windows-1252: %w", err)
	}
	return string(out), nil
}

func readText(path string) (*Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := decodeText(b)
	if err != nil {
		return nil, err
	}
	return textDocument(path, constants.FormatTXT, "text", s), nil
}

func readRTF(path string) (*Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return textDocument(path, constants.FormatRTF, "rtf", StripRTF(string(b))), nil
}

// StripRTF removes RTF control words and groups, keeping paragraph breaks.
func StripRTF(s string) string {
	s = reRTFGroup.ReplaceAllString(s, "")
	s = reRTFHex.ReplaceAllStringFunc(s, func(m string) string {
		var v byte
		fmt.Sscanf(m[2:], "%02x", &v)
		r, _ := charmap.Windows1252.NewDecoder().Bytes([]byte{v})
		return string(r)
	})
	s = reRTFPar.ReplaceAllString(s, "\n")
	s = reRTFTab.ReplaceAllString(s, "\t")
	s = strings.ReplaceAll(s, `\page`, "\f")
	s = reRTFCtrl.ReplaceAllString(s, "")
	s = strings.NewReplacer("{", "", "}", "", `\\`, `\`).Replace(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")

	var lines []string
	for _, l := range strings.Split(s, "\n") {
		lines = append(lines, strings.TrimRight(l, " \t"))
	}
	return strings.TrimSpace(reBlankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n\n"))
}

func readHTML(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	text, err := HTMLText(f)
	if err != nil {
		return nil, err
	}
	return textDocument(path, constants.FormatHTML, "html", text), nil
}

var htmlBlocks = map[string]bool{
	"p": true, "div": true, "br": true, "tr": true, "li": true, "table": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// HTMLText extracts visible text from an HTML document. Block elements end a
// line and table cells are separated with " | ".
func HTMLText(r io.Reader) (string, error) {
	z := html.NewTokenizer(r)
	var (
		b     strings.Builder
		skip  int
		inRow bool
		cells int
	)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return cleanLines(b.String()), nil
			}
			return "", z.Err()
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			switch tag {
			case "script", "style", "head":
				skip++
			case "tr":
				inRow, cells = true, 0
			case "td", "th":
				if inRow && cells > 0 {
					b.WriteString(TableCellSep)
				}
				cells++
			}
			if htmlBlocks[tag] && tag != "tr" {
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			switch tag {
			case "script", "style", "head":
				if skip > 0 {
					skip--
				}
			case "tr":
				inRow = false
				b.WriteByte('\n')
			}
			if htmlBlocks[tag] && tag != "tr" && tag != "br" {
				b.WriteByte('\n')
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			t := strings.Join(strings.Fields(string(z.Text())), " ")
			if t == "" {
				continue
			}
			b.WriteString(t)
		}
	}
}

func readDOCX(path string) (*Document, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		text, err := DOCXText(rc)
		if err != nil {
			return nil, err
		}
		return textDocument(path, constants.FormatDOCX, "docx", text), nil
	}
	return nil, fmt.Errorf("docx: word/document.xml not found")
}

// DOCXText extracts paragraph text from a WordprocessingML body. Paragraphs
// end a line, tabs become tabs, and table cells are separated with " | ".
func DOCXText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var (
		b      strings.Builder
		inText bool
		cells  int
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return cleanLines(b.String()), nil
		}
		if err != nil {
			return "", fmt.Errorf("docx xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br":
				b.WriteByte('\n')
			case "tr":
				cells = 0
			case "tc":
				if cells > 0 {
					b.WriteString(TableCellSep)
				}
				cells++
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if cells == 0 {
					b.WriteByte('\n')
				}
			case "tr":
				cells = 0
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
}

func cleanLines(s string) string {
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		lines = append(lines, strings.TrimRight(l, " \t"))
	}
	return strings.TrimSpace(reBlankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n\n"))
}
