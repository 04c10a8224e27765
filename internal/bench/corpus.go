// Package bench scores SRX rulesets against gold-standard sentence corpora.
package bench

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

// Header contains metadata parsed from a gold document header.
type Header struct {
	Source   string
	Language string
	Title    string
}

// ParseHeader extracts metadata from the leading "# Key: value" comments.
// Returns the header, remaining text after header, and any error.
func ParseHeader(text string) (Header, string, error) {
	var h Header
	scanner := bufio.NewScanner(strings.NewReader(text))
	bodyStart := len(text)
	lineEnd := 0

	for scanner.Scan() {
		line := scanner.Text()
		lineEnd += len(line) + 1 // +1 for newline

		if !strings.HasPrefix(line, "#") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			bodyStart = lineEnd - len(line) - 1
			break
		}

		line = strings.TrimSpace(strings.TrimPrefix(line, "#"))
		if value, ok := strings.CutPrefix(line, "Source:"); ok {
			h.Source = strings.TrimSpace(value)
		} else if value, ok := strings.CutPrefix(line, "Language:"); ok {
			h.Language = strings.TrimSpace(value)
		} else if value, ok := strings.CutPrefix(line, "Title:"); ok {
			h.Title = strings.TrimSpace(value)
		}
	}

	if err := scanner.Err(); err != nil {
		return Header{}, "", fmt.Errorf("scan header: %w", err)
	}

	if h.Source == "" {
		return Header{}, "", errors.New("missing Source in header")
	}

	body := strings.TrimSpace(text[min(bodyStart, len(text)):])
	return h, body, nil
}

// Sentence is one gold sentence with byte offsets into Document.Text.
type Sentence struct {
	Text  string
	Start int
	End   int
}

// ParseSentences reads a gold body: one sentence per line, blank lines
// between paragraphs. Sentences of a paragraph are joined with a space and
// paragraphs with a newline. It returns the joined text and the sentences.
func ParseSentences(body string) (string, []Sentence) {
	var (
		b         strings.Builder
		sentences []Sentence
		sep       string
	)

	for line := range strings.Lines(body) {
		line = strings.TrimSpace(line)
		if line == "" {
			if len(sentences) > 0 {
				sep = "\n"
			}
			continue
		}

		b.WriteString(sep)
		start := b.Len()
		b.WriteString(line)
		sentences = append(sentences, Sentence{Text: line, Start: start, End: b.Len()})
		sep = " "
	}

	return b.String(), sentences
}

// Document is a loaded gold document.
type Document struct {
	ID        string // filename without extension
	Source    string
	Language  string
	Title     string
	Text      string // sentences joined back into running text
	Sentences []Sentence
}

// Boundaries returns the gold break offsets: the end of every sentence but
// the last.
func (d *Document) Boundaries() []int {
	if len(d.Sentences) < 2 {
		return nil
	}
	return lo.Map(d.Sentences[:len(d.Sentences)-1], func(s Sentence, _ int) int {
		return s.End
	})
}

// LoadDocument loads and parses a gold document file.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	header, body, err := ParseHeader(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}

	base := filepath.Base(path)
	id := strings.TrimSuffix(base, filepath.Ext(base))
	text, sentences := ParseSentences(body)

	return &Document{
		ID:        id,
		Source:    header.Source,
		Language:  header.Language,
		Title:     header.Title,
		Text:      text,
		Sentences: sentences,
	}, nil
}

// LoadCorpus loads all .txt gold documents from a directory.
func LoadCorpus(dir string) ([]*Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var docs []*Document
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) != ".txt" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		doc, err := LoadDocument(path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", entry.Name(), err)
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

// FilterLanguage returns the documents tagged with code, plus untagged ones.
// Tags compare case-insensitively.
func FilterLanguage(docs []*Document, code string) []*Document {
	return lo.Filter(docs, func(d *Document, _ int) bool {
		return d.Language == "" || strings.EqualFold(d.Language, code)
	})
}
