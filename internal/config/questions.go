package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/TheorieLearn/TheorieLearn-sub000/internal/grading"
)

// ErrDuplicateQuestion is returned when two questions share an ID.
var ErrDuplicateQuestion = errors.New("duplicate question id")

// questionFile is the layout of a question bank file.
type questionFile struct {
	Questions []grading.Question `yaml:"questions"`
}

// LoadQuestions reads the question bank at path, which is either a YAML
// file or a directory whose *.yaml and *.yml files are read in name order.
// Questions are returned sorted by ID. IDs must be non-empty and unique.
func LoadQuestions(path string) ([]grading.Question, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("question bank: %w", err)
	}
	files := []string{path}
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("question bank: %w", err)
		}
		files = files[:0]
		for _, e := range entries {
			ext := strings.ToLower(filepath.Ext(e.Name()))
			if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
				files = append(files, filepath.Join(path, e.Name()))
			}
		}
	}

	var out []grading.Question
	seen := make(map[string]string)
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read questions: %w", err)
		}
		var qf questionFile
		if err := decodeStrict(data, &qf); err != nil {
			return nil, fmt.Errorf("parse questions %s: %w", f, err)
		}
		for _, q := range qf.Questions {
			if q.ID == "" {
				return nil, fmt.Errorf("%s: question without id", f)
			}
			if prev, dup := seen[q.ID]; dup {
				return nil, fmt.Errorf("%w: %q in %s and %s", ErrDuplicateQuestion, q.ID, prev, f)
			}
			seen[q.ID] = f
			out = append(out, q)
		}
	}
	slices.SortFunc(out, func(a, b grading.Question) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}
