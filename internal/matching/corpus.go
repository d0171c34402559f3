package matching

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
)

const (
	ColumnTitle     = "Job Title"
	ColumnKeySkills = "Key Skills"

	byteOrderMark = "\ufeff"
)

var ErrMissingColumn = errors.New("corpus column is missing")

// Row is one reference job title with its skill text.
type Row struct {
	Title     string `mapstructure:"Job Title" json:"title"`
	KeySkills string `mapstructure:"Key Skills" json:"key_skills"`
}

// Corpus is loaded once and shared read-only between matching calls.
type Corpus []Row

// Titles returns row titles in corpus order, duplicates included.
func (c Corpus) Titles() []string {
	titles := make([]string, 0, len(c))
	for _, row := range c {
		titles = append(titles, row.Title)
	}
	return titles
}

// LoadCorpus reads a CSV corpus file.
func LoadCorpus(path string) (Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus: %w", err)
	}
	defer f.Close()

	corpus, err := ReadCorpus(f)
	if err != nil {
		return nil, fmt.Errorf("reading corpus %q: %w", path, err)
	}
	return corpus, nil
}

// ReadCorpus decodes CSV with a header row. Only the title and key skills
// columns are used, other columns are ignored.
func ReadCorpus(r io.Reader) (Corpus, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: no header row", ErrMissingColumn)
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], byteOrderMark))
	}
	for _, required := range []string{ColumnTitle, ColumnKeySkills} {
		if !contains(header, required) {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, required)
		}
	}

	corpus := Corpus{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", line, err)
		}

		raw := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				raw[name] = record[i]
			}
		}

		var row Row
		if err := mapstructure.Decode(raw, &row); err != nil {
			return nil, fmt.Errorf("decoding line %d: %w", line, err)
		}
		row.Title = strings.TrimSpace(row.Title)

		corpus = append(corpus, row)
	}

	return corpus, nil
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
