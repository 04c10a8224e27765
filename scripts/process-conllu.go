//go:build ignore

// Process CoNLL-U treebank files into gold documents for srx-bench.
// Each "# newdoc" starts a new document and each "# newpar" a new paragraph.
// Usage: go run ./scripts/process-conllu.go -in en_ewt-ud-test.conllu -out testdata/gold -lang en
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// document is one gold document being assembled.
type document struct {
	id         string
	paragraphs [][]string
}

func (d *document) sentences() int {
	n := 0
	for _, p := range d.paragraphs {
		n += len(p)
	}
	return n
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func main() {
	var (
		in     = flag.String("in", "", "CoNLL-U file (required)")
		outDir = flag.String("out", "testdata/gold", "output directory")
		lang   = flag.String("lang", "en", "language code written to each document")
		source = flag.String("source", "", "source written to each document (default: input filename)")
		minLen = flag.Int("min", 2, "skip documents with fewer sentences")
	)
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "error: -in required")
		flag.Usage()
		os.Exit(1)
	}
	if *source == "" {
		*source = filepath.Base(*in)
	}

	docs, err := processCoNLLU(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", *in, err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", *outDir, err)
		os.Exit(1)
	}

	written := 0
	for _, doc := range docs {
		if doc.sentences() < *minLen {
			continue
		}
		path := filepath.Join(*outDir, unsafeName.ReplaceAllString(doc.id, "_")+".txt")
		if err := writeDocument(path, doc, *source, *lang); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
			continue
		}
		written++
	}

	fmt.Printf("Done! %d of %d documents written to %s\n", written, len(docs), *outDir)
}

func processCoNLLU(path string) ([]*document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	var (
		docs []*document
		cur  *document
	)
	newDoc := func(id string) {
		if id == "" {
			id = fmt.Sprintf("%s-%03d", base, len(docs)+1)
		}
		cur = &document{id: id}
		docs = append(docs, cur)
	}
	newPar := func() {
		if cur == nil {
			newDoc("")
		}
		if n := len(cur.paragraphs); n == 0 || len(cur.paragraphs[n-1]) > 0 {
			cur.paragraphs = append(cur.paragraphs, nil)
		}
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "# newdoc"):
			_, id, _ := strings.Cut(line, "=")
			newDoc(strings.TrimSpace(id))
			newPar()
		case strings.HasPrefix(line, "# newpar"):
			newPar()
		case strings.HasPrefix(line, "# text = "):
			if cur == nil {
				newPar()
			}
			n := len(cur.paragraphs) - 1
			cur.paragraphs[n] = append(cur.paragraphs[n], strings.TrimSpace(strings.TrimPrefix(line, "# text = ")))
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning file: %w", err)
	}
	return docs, nil
}

func writeDocument(path string, doc *document, source, lang string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Source: %s\n# Language: %s\n# Title: %s\n", source, lang, doc.id)
	for _, p := range doc.paragraphs {
		if len(p) == 0 {
			continue
		}
		b.WriteString("\n")
		for _, s := range p {
			b.WriteString(s)
			b.WriteString("\n")
		}
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
