// Package patterns provides the accumulator pattern library: a set of
// built-in presets plus user-defined patterns loaded from a YAML file in
// the base directory.
package patterns

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/avelius/halo/internal/accum"
	"github.com/avelius/halo/internal/errors"
)

// UserFileName is the patterns file looked up under the base directory.
const UserFileName = "patterns.yaml"

// builtins are always available. User patterns with the same ID override
// them.
var builtins = []accum.Pattern{
	{
		ID:          "emails",
		Name:        "Email addresses",
		Expr:        `[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`,
		Description: "Collect email addresses",
		Delimiter:   accum.DelimiterComma,
		Dedup:       true,
	},
	{
		ID:          "urls",
		Name:        "URLs",
		Expr:        `https?://[^\s]+`,
		Description: "Collect web links",
		Delimiter:   accum.DelimiterNewline,
		Dedup:       true,
	},
	{
		ID:          "phones",
		Name:        "Phone numbers",
		Expr:        `\+?[0-9][0-9 ().-]{5,}[0-9]`,
		Description: "Collect phone numbers",
		Delimiter:   accum.DelimiterComma,
		Dedup:       true,
	},
	{
		ID:          "numbers",
		Name:        "Numbers",
		Expr:        `-?\d+(?:\.\d+)?`,
		Description: "Collect numeric values",
		Delimiter:   accum.DelimiterSpace,
	},
	{
		ID:          "hashtags",
		Name:        "Hashtags",
		Expr:        `#\w+`,
		Description: "Collect hashtags",
		Delimiter:   accum.DelimiterSpace,
		Dedup:       true,
	},
}

// userFile is the on-disk YAML shape.
type userFile struct {
	Patterns []userPattern `yaml:"patterns"`
}

type userPattern struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Expr        string `yaml:"expr"`
	Description string `yaml:"description"`
	Delimiter   string `yaml:"delimiter"`
	CustomDelim string `yaml:"custom_delim"`
	MaxItems    int    `yaml:"max_items"`
	Dedup       bool   `yaml:"dedup"`
}

// Builtins returns a copy of the built-in presets, sorted by ID.
func Builtins() []accum.Pattern {
	out := make([]accum.Pattern, len(builtins))
	copy(out, builtins)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Load returns the full pattern library for baseDir: built-ins merged with
// the user file, user entries winning on ID collision. A missing user file
// is not an error.
func Load(baseDir string) ([]accum.Pattern, error) {
	merged := make(map[string]accum.Pattern, len(builtins))
	for _, p := range builtins {
		merged[p.ID] = p
	}

	user, err := loadUserFile(filepath.Join(baseDir, UserFileName))
	if err != nil {
		return nil, err
	}
	for _, p := range user {
		merged[p.ID] = p
	}

	out := make([]accum.Pattern, 0, len(merged))
	for _, p := range merged {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Find looks up a pattern by ID in the library for baseDir.
func Find(baseDir, id string) (accum.Pattern, error) {
	lib, err := Load(baseDir)
	if err != nil {
		return accum.Pattern{}, err
	}
	for _, p := range lib {
		if p.ID == id {
			return p, nil
		}
	}
	return accum.Pattern{}, errors.NewPatternNotFound(id)
}

func loadUserFile(path string) ([]accum.Pattern, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read patterns file: %w", err)
	}

	var f userFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.NewInvalidPattern(fmt.Sprintf("invalid patterns file: %v", err))
	}

	out := make([]accum.Pattern, 0, len(f.Patterns))
	for i, up := range f.Patterns {
		if up.ID == "" {
			return nil, errors.NewInvalidPattern(fmt.Sprintf("pattern %d: missing id", i))
		}
		if up.Expr == "" {
			return nil, errors.NewInvalidPattern(fmt.Sprintf("pattern %s: missing expr", up.ID))
		}
		p := accum.NewPattern(up.ID, up.Name, up.Expr, accum.Delimiter(up.Delimiter), up.MaxItems, up.Dedup)
		p.Description = up.Description
		p.CustomDelim = up.CustomDelim
		if !p.Valid() {
			return nil, errors.NewInvalidPattern(fmt.Sprintf("pattern %s: expression does not compile", up.ID))
		}
		out = append(out, p)
	}
	return out, nil
}
