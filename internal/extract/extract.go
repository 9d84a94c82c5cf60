// Package extract pulls plain text out of uploaded CV files.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	// MaxUploadBytes is the largest file accepted for extraction.
	MaxUploadBytes = 10 << 20
)

var (
	// ErrInvalidFormat matches every *InputFormatError.
	ErrInvalidFormat   = errors.New("invalid file format")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file exceeds 10 MB limit")
)

// InputFormatError reports a file whose bytes don't match its declared type.
type InputFormatError struct {
	Kind string // "PDF" or "DOCX"
	Err  error
}

func (e *InputFormatError) Error() string {
	return fmt.Sprintf("Invalid %s file format", e.Kind)
}

func (e *InputFormatError) Unwrap() error { return e.Err }

func (e *InputFormatError) Is(target error) bool { return target == ErrInvalidFormat }

// ExtractFile reads a CV from disk and extracts its text.
func ExtractFile(ctx context.Context, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.Size() > MaxUploadBytes {
		return "", ErrTooLarge
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return ExtractTextFromBytes(ctx, data, "", filepath.Base(path))
}

// ExtractTextFromBytes extracts text from an in-memory payload. The type is
// taken from mimeType, falling back to the file extension and then to the
// leading bytes.
func ExtractTextFromBytes(ctx context.Context, data []byte, mimeType string, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) > MaxUploadBytes {
		return "", ErrTooLarge
	}
	normalized := normalizeMimeType(mimeType, fileName, data)
	switch normalized {
	case MimePDF:
		return extractPDF(data)
	case MimeDOCX:
		return extractDOCX(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, normalized)
	}
}

func extractPDF(data []byte) (string, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return "", &InputFormatError{Kind: "PDF"}
	}
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", &InputFormatError{Kind: "PDF", Err: err}
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", &InputFormatError{Kind: "PDF", Err: err}
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &InputFormatError{Kind: "DOCX", Err: err}
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if normalizeZipName(f.Name) == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", &InputFormatError{Kind: "DOCX", Err: errors.New("document.xml file not found")}
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", &InputFormatError{Kind: "DOCX", Err: err}
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", &InputFormatError{Kind: "DOCX", Err: err}
	}

	return stripDocxXML(string(raw)), nil
}

// stripDocxXML keeps character data, ending a line at each paragraph or break
// and turning tabs into spaces.
func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				buf.WriteString(" ")
			}
		case xml.CharData:
			if inText {
				buf.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p", "br":
				buf.WriteString("\n")
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func normalizeMimeType(mimeType string, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	switch clean {
	case MimePDF, MimeDOCX:
		return clean
	case "application/zip":
		if isDOCX(data) {
			return MimeDOCX
		}
		return clean
	case "", "application/octet-stream":
	default:
		return clean
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDOCX
	}
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return MimePDF
	}
	if isDOCX(data) {
		return MimeDOCX
	}
	if clean == "" {
		return "unknown"
	}
	return clean
}

func isDOCX(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if normalizeZipName(f.Name) == "word/document.xml" {
			return true
		}
	}
	return false
}

func normalizeZipName(name string) string {
	return strings.ReplaceAll(name, "\\", "/")
}
