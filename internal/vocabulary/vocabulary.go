// Package vocabulary corrects recurring transcription mistakes before a
// transcript is enhanced or delivered.
//
// A vocabulary file holds one correction per line:
//
//	open router => OpenRouter
//	/\bsilicon\s*flow\b/ => SiliconFlow
//
// Plain entries match whole words without regard to case. Entries wrapped in
// slashes are RE2 expressions, case-insensitive, and may use $1 style groups.
// Blank lines and lines starting with # are skipped.
package vocabulary

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// FileName is the vocabulary file inside the data directory.
const FileName = "vocabulary.txt"

const separator = "=>"

// Correction rewrites every match of Pattern to Replacement.
type Correction struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// Dictionary applies corrections in file order, each once over the text.
type Dictionary struct {
	corrections []Correction
}

// Path returns the vocabulary file for dataDir.
func Path(dataDir string) string {
	return filepath.Join(dataDir, FileName)
}

// Load reads the vocabulary at path. A missing file is an empty dictionary.
func Load(path string) (*Dictionary, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Dictionary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read vocabulary %q: %w", path, err)
	}
	dict, err := Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("vocabulary %q: %w", path, err)
	}
	return dict, nil
}

// Parse compiles vocabulary text.
func Parse(text string) (*Dictionary, error) {
	dict := &Dictionary{}
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		correction, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		dict.corrections = append(dict.corrections, correction)
	}
	return dict, nil
}

func parseLine(line string) (Correction, error) {
	from, to, ok := strings.Cut(line, separator)
	if !ok {
		return Correction{}, fmt.Errorf("missing %q", separator)
	}
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" {
		return Correction{}, errors.New("empty source")
	}

	var expr string
	if len(from) > 2 && strings.HasPrefix(from, "/") && strings.HasSuffix(from, "/") {
		expr = "(?i)" + from[1:len(from)-1]
	} else {
		words := lo.Map(strings.Fields(from), func(word string, _ int) string {
			return regexp.QuoteMeta(word)
		})
		expr = `(?i)\b` + strings.Join(words, `\s+`) + `\b`
		to = strings.ReplaceAll(to, "$", "$$")
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return Correction{}, fmt.Errorf("invalid pattern %q: %w", from, err)
	}
	return Correction{Pattern: re, Replacement: to}, nil
}

// Len reports the number of corrections.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.corrections)
}

// Apply returns text with every correction applied.
func (d *Dictionary) Apply(text string) string {
	if d == nil {
		return text
	}
	for _, c := range d.corrections {
		text = c.Pattern.ReplaceAllString(text, c.Replacement)
	}
	return text
}
