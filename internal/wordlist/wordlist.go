// Package wordlist loads word lists from files.
package wordlist

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed data/en.txt
var defaultEnglish []byte

// Default returns the built-in English word list.
func Default() []string {
	words, err := Parse(bytes.NewReader(defaultEnglish))
	if err != nil {
		// The embedded list is never empty.
		panic(err)
	}
	return words
}

// LoadWords reads one word per line from the provided file path.
func LoadWords(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()
	return Parse(file)
}

// Parse reads one word per line. Blank lines are skipped and words containing
// spaces are rejected, since space separates words in generated text.
func Parse(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		word := strings.TrimSpace(scanner.Text())
		if word == "" {
			continue
		}
		if strings.ContainsAny(word, " \t") {
			return nil, fmt.Errorf("line %d: word %q contains whitespace", line, word)
		}
		words = append(words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return words, nil
}
