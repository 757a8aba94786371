package quiz

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed trivia.yaml
var defaultTrivia []byte

// TriviaItem is one hand-written question.
type TriviaItem struct {
	ID      string   `yaml:"id"`
	Prompt  string   `yaml:"prompt"`
	Options []string `yaml:"options"`
	Answer  string   `yaml:"answer"`
}

func (it TriviaItem) validate() error {
	if strings.TrimSpace(it.Prompt) == "" {
		return fmt.Errorf("trivia %q: empty prompt", it.ID)
	}
	if len(it.Options) != OptionCount {
		return fmt.Errorf("trivia %q: %d options, need %d", it.ID, len(it.Options), OptionCount)
	}
	if !slices.Contains(it.Options, it.Answer) {
		return fmt.Errorf("trivia %q: answer %q is not an option", it.ID, it.Answer)
	}
	return nil
}

type triviaFile struct {
	Items []TriviaItem `yaml:"items"`
}

// Bank is an immutable set of trivia items.
type Bank struct {
	items []TriviaItem
}

// DefaultBank returns the built-in trivia bank.
func DefaultBank() *Bank {
	b, err := ParseBank(bytes.NewReader(defaultTrivia))
	if err != nil {
		panic(fmt.Sprintf("embedded trivia: %v", err))
	}
	return b
}

// ParseBank reads a YAML document with an items list. Invalid items fail
// the whole document.
func ParseBank(r io.Reader) (*Bank, error) {
	var f triviaFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding trivia: %w", err)
	}
	for i := range f.Items {
		if f.Items[i].ID == "" {
			f.Items[i].ID = fmt.Sprintf("trivia-%d", i+1)
		}
		if err := f.Items[i].validate(); err != nil {
			return nil, err
		}
	}
	return &Bank{items: f.Items}, nil
}

// LoadBankDir walks dir and merges every .yaml/.yml file into one bank.
// Files that do not parse are skipped with a warning; later files replace
// earlier items with the same ID.
func LoadBankDir(dir string) (*Bank, error) {
	byID := make(map[string]TriviaItem)
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !(strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")) {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		b, err := ParseBank(f)
		if err != nil {
			slog.Warn("skipping invalid trivia file", "path", path, "error", err)
			return nil
		}
		for _, it := range b.items {
			byID[it.ID] = it
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading trivia from %s: %w", dir, err)
	}
	if len(byID) == 0 {
		return nil, fmt.Errorf("no trivia items under %s", dir)
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	items := make([]TriviaItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, byID[id])
	}

	slog.Info("trivia loaded", "dir", dir, "items", len(items))
	return &Bank{items: items}, nil
}

// Len returns the number of items.
func (b *Bank) Len() int { return len(b.items) }

// Items returns a copy of the items.
func (b *Bank) Items() []TriviaItem { return slices.Clone(b.items) }

// Pick draws one item uniformly and returns it as a question. Options keep
// their authored order.
func (b *Bank) Pick(rng *rand.Rand) (Question, error) {
	if len(b.items) == 0 {
		return Question{}, fmt.Errorf("trivia bank is empty: %w", ErrPoolExhausted)
	}
	it := b.items[rng.IntN(len(b.items))]
	return Question{
		ID:      it.ID,
		Mode:    Trivia,
		Prompt:  it.Prompt,
		Options: slices.Clone(it.Options),
		Correct: slices.Index(it.Options, it.Answer),
	}, nil
}
