// Package document fills document templates with work item text.
package document

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// Sink receives text destined for placeholder tags in a document
type Sink interface {
	// ApplyReplacement inserts text immediately before the first occurrence of tag
	ApplyReplacement(tag, text string) error
	// Flush persists the document
	Flush() error
}

// DocxOptions configures a DocxSink
type DocxOptions struct {
	// Output defaults to the template path
	Output string
	// StripTags removes every remaining tag on Flush
	StripTags bool
}

// DocxSink edits a .docx template in memory and writes it on Flush
type DocxSink struct {
	reader  *docx.ReplaceDocx
	doc     *docx.Docx
	output  string
	strip   bool
	tags    map[string]struct{}
	applied int
}

var _ Sink = (*DocxSink)(nil)

// OpenDocx loads the template at path. The file is read fully so the
// output may overwrite the template itself.
func OpenDocx(path string, opts DocxOptions) (*DocxSink, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", path, err)
	}

	reader, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open template %s: %w", path, err)
	}

	output := opts.Output
	if output == "" {
		output = path
	}

	return &DocxSink{
		reader: reader,
		doc:    reader.Editable(),
		output: output,
		strip:  opts.StripTags,
		tags:   make(map[string]struct{}),
	}, nil
}

// ApplyReplacement inserts text before the first occurrence of tag. When the
// template has no such tag the text is appended as a new paragraph at the end
// of the body.
func (s *DocxSink) ApplyReplacement(tag, text string) error {
	if tag == "" {
		return fmt.Errorf("placeholder tag must not be empty")
	}
	s.tags[tag] = struct{}{}

	encodedTag, err := escape(tag)
	if err != nil {
		return err
	}

	if strings.Contains(s.doc.GetContent(), encodedTag) {
		if err := s.doc.Replace(tag, text+tag, 1); err != nil {
			return fmt.Errorf("failed to insert text before %s: %w", tag, err)
		}
		s.applied++
		return nil
	}

	if err := s.appendParagraph(text); err != nil {
		return err
	}
	s.applied++
	return nil
}

// Applied returns the number of replacements applied so far
func (s *DocxSink) Applied() int {
	return s.applied
}

// Output returns the path the document is written to
func (s *DocxSink) Output() string {
	return s.output
}

// Flush writes the document to the output path
func (s *DocxSink) Flush() error {
	if s.strip {
		for tag := range s.tags {
			if err := s.doc.Replace(tag, "", -1); err != nil {
				return fmt.Errorf("failed to strip %s: %w", tag, err)
			}
		}
	}

	if err := s.doc.WriteToFile(s.output); err != nil {
		return fmt.Errorf("failed to write document %s: %w", s.output, err)
	}
	return nil
}

// Close releases the template
func (s *DocxSink) Close() error {
	return s.reader.Close()
}

func (s *DocxSink) appendParagraph(text string) error {
	encoded, err := escape(text)
	if err != nil {
		return err
	}
	paragraph := "<w:p><w:r><w:t xml:space=\"preserve\">" + encoded + "</w:t></w:r></w:p>"

	content := s.doc.GetContent()
	// Body-level section properties must stay the last child of w:body
	idx := strings.LastIndex(content, "<w:sectPr")
	if idx < 0 || idx < strings.LastIndex(content, "</w:p>") {
		idx = strings.LastIndex(content, "</w:body>")
	}
	if idx < 0 {
		return fmt.Errorf("document has no body")
	}

	s.doc.SetContent(content[:idx] + paragraph + content[idx:])
	return nil
}

func escape(s string) (string, error) {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return "", err
	}
	return buf.String(), nil
}
