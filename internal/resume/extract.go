// Package resume turns resume documents into plain text for the profile extractor.
package resume

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Format is a supported resume document type.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatText Format = "text"
)

// ErrUnsupportedFormat is returned for documents that are neither PDF, DOCX nor text.
var ErrUnsupportedFormat = errors.New("unsupported resume format")

// ErrNoText is returned when a document holds no extractable text.
var ErrNoText = errors.New("resume has no extractable text")

// ExtractText reads the file at path and returns its text.
func ExtractText(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading resume %q: %w", path, err)
	}

	text, err := ExtractTextFromBytes(data, filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("extracting text from %q: %w", path, err)
	}
	return text, nil
}

// ExtractTextFromBytes extracts text from an in-memory document. The format is
// taken from the file name extension, falling back to content sniffing.
func ExtractTextFromBytes(data []byte, fileName string) (string, error) {
	var (
		text string
		err  error
	)

	switch format := DetectFormat(fileName, data); format {
	case FormatPDF:
		text, err = extractPDF(data)
	case FormatDOCX:
		text, err = extractDOCX(data)
	case FormatText:
		text = string(bytes.TrimPrefix(data, []byte("\ufeff")))
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

// DetectFormat picks the document format from the extension or, when the
// extension is unknown, from the content.
func DetectFormat(fileName string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return FormatPDF
	case ".docx":
		return FormatDOCX
	case ".txt", ".text", ".md":
		return FormatText
	}

	mime := http.DetectContentType(data)
	switch {
	case strings.HasPrefix(mime, "application/pdf"):
		return FormatPDF
	case strings.HasPrefix(mime, "application/zip"):
		return FormatDOCX
	case strings.HasPrefix(mime, "text/plain"):
		return FormatText
	}
	return Format(mime)
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return stripDocxXML(doc.Editable().GetContent()), nil
}

// stripDocxXML keeps the character data of a document.xml body and turns
// paragraph and line breaks into newlines.
func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.Write(t)
		case xml.EndElement:
			if (t.Name.Local == "p" || t.Name.Local == "br") && buf.Len() > 0 {
				buf.WriteString("\n")
			}
		case xml.StartElement:
			if t.Name.Local == "tab" {
				buf.WriteString("\t")
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
