// Package textextract turns uploaded résumé files into plain text.
package textextract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/spigell/resume-scorer/internal/logger"
	"github.com/spigell/resume-scorer/internal/utils"
	"go.uber.org/zap"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeZIP  = "application/zip"

	docxBody = "word/document.xml"

	defaultMaxBytes = 16 << 20
)

// Loader extracts best-effort plain text. It never fails: any problem is
// logged and yields an empty string.
type Loader struct {
	logger   *zap.Logger
	maxBytes int64
}

func NewLoader(log *zap.Logger, maxBytes int64) *Loader {
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &Loader{logger: logger.WithComponent(log, "textextract"), maxBytes: maxBytes}
}

func (l *Loader) LoadText(path string) string {
	text, kind, err := l.load(path)
	if err != nil {
		l.logger.Warn("could not extract text", zap.String("path", path), zap.String("kind", kind), zap.Error(err))
		return ""
	}

	l.logger.Debug("extracted text", zap.String("kind", kind), zap.Int("length", len(text)))
	return text
}

func (l *Loader) load(path string) (string, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, l.maxBytes+1))
	if err != nil {
		return "", "", err
	}
	if int64(len(data)) > l.maxBytes {
		return "", "", fmt.Errorf("file exceeds %d bytes", l.maxBytes)
	}

	mime := mimetype.Detect(data)
	switch {
	case mime.Is(mimePDF):
		text, err := pdfText(data)
		if err != nil || text == "" {
			// Unparseable or text-less PDFs are read as plain text.
			l.logger.Debug("pdf extraction fell back to raw text", zap.Error(err))
			return utils.CleanText(string(data)), "pdf-as-text", nil
		}
		return text, "pdf", nil
	case mime.Is(mimeDOCX), mime.Is(mimeZIP):
		text, err := docxText(data)
		return text, "docx", err
	default:
		return utils.CleanText(string(data)), mime.String(), nil
	}
}

func pdfText(data []byte) (text string, err error) {
	// The pdf package panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return utils.CleanText(buf.String()), nil
}

func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	for _, f := range zr.File {
		if f.Name != docxBody {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		return wordprocessingText(rc)
	}

	return "", errors.New("no " + docxBody + " in docx")
}

// wordprocessingText keeps the character runs of a WordprocessingML body,
// with paragraphs on separate lines.
func wordprocessingText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var b strings.Builder
	inText := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}

	return utils.CleanText(b.String()), nil
}
