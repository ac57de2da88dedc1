package annotate

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ppiankov/quotescan/internal/model"
)

// ConllAnnotator serves annotations from a pre-annotated file, so items can
// be processed without a running engine.
//
// One token per line, tab separated: id word pos ner head relation. Items
// are separated by blank lines. A "# text = ..." line names the raw text of
// the following item; otherwise the concatenated words are used.
type ConllAnnotator struct {
	items map[string][]model.Token
}

// LoadConll reads a pre-annotated file
func LoadConll(path string) (*ConllAnnotator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open conll: %w", err)
	}
	defer func() { _ = f.Close() }()

	a, err := ParseConll(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// ParseConll reads pre-annotated items from r
func ParseConll(r io.Reader) (*ConllAnnotator, error) {
	a := &ConllAnnotator{items: make(map[string][]model.Token)}

	var (
		text   string
		tokens []model.Token
		lineNo int
	)
	flush := func() {
		if len(tokens) == 0 {
			text = ""
			return
		}
		key := text
		if key == "" {
			key = strings.Join(model.Words(tokens), "")
		}
		a.items[strings.TrimSpace(key)] = tokens
		text, tokens = "", nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")

		switch {
		case strings.TrimSpace(line) == "":
			flush()
			continue
		case strings.HasPrefix(line, "#"):
			if rest, ok := strings.CutPrefix(line, "# text ="); ok {
				text = strings.TrimSpace(rest)
			}
			continue
		}

		tok, err := parseConllLine(line, len(tokens))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		tokens = append(tokens, tok)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan conll: %w", err)
	}
	flush()

	return a, nil
}

func parseConllLine(line string, index int) (model.Token, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 6 {
		return model.Token{}, fmt.Errorf("%w: expected 6 tab-separated fields, got %d", ErrInconsistent, len(fields))
	}

	id, err := strconv.Atoi(fields[0])
	if err != nil || id != index+1 {
		return model.Token{}, fmt.Errorf("%w: token id %q, expected %d", ErrInconsistent, fields[0], index+1)
	}
	head, err := strconv.Atoi(fields[4])
	if err != nil {
		return model.Token{}, fmt.Errorf("%w: head %q is not a number", ErrInconsistent, fields[4])
	}

	return model.Token{
		Index:    index,
		Text:     fields[1],
		POS:      fields[2],
		Entity:   model.ParseEntityTag(fields[3]),
		Head:     head,
		Relation: fields[5],
	}, nil
}

// Annotate returns the stored tokens for text
func (a *ConllAnnotator) Annotate(ctx context.Context, text string) ([]model.Token, error) {
	tokens, ok := a.items[strings.TrimSpace(text)]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]model.Token, len(tokens))
	copy(out, tokens)
	return out, nil
}

// Len returns the number of annotated items
func (a *ConllAnnotator) Len() int {
	return len(a.items)
}
