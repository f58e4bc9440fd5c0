package text

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// docxDocument mirrors the WordprocessingML layout of word/document.xml.
type docxDocument struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
	} `xml:"body"`
}

type docxParagraph struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Text []docxText `xml:"t"`
}

type docxText struct {
	Content string `xml:",chardata"`
}

// docxCore mirrors docProps/core.xml.
type docxCore struct {
	Title string `xml:"title"`
}

// extractDocx pulls plain text and the declared title out of a DOCX
// archive. A missing document.xml yields an empty body, not an error.
func extractDocx(content []byte) (title, body string, err error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", "", fmt.Errorf("opening docx archive: %w", err)
	}

	for _, f := range reader.File {
		switch f.Name {
		case "word/document.xml":
			raw, rerr := readZipFile(f)
			if rerr != nil {
				return "", "", rerr
			}
			body = docxBodyText(raw)
		case "docProps/core.xml":
			raw, rerr := readZipFile(f)
			if rerr != nil {
				continue
			}
			var core docxCore
			if xml.Unmarshal(raw, &core) == nil {
				title = strings.TrimSpace(core.Title)
			}
		}
	}
	return title, body, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// docxBodyText joins paragraph runs with newlines.
func docxBodyText(raw []byte) string {
	var doc docxDocument
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return ""
	}

	var b strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			b.WriteString("\n")
		}
		for _, r := range para.Runs {
			for _, t := range r.Text {
				b.WriteString(t.Content)
			}
		}
	}
	return strings.TrimSpace(b.String())
}
