// Package notes implements the polymorphic note model and the note store.
//
// A note attaches free text to a transaction identity. Some text carries a
// structured meaning recognized by its tag: "link:" folds one transaction's
// amount into another, "cat:" overrides automatic categorization, and
// "split:" redistributes an amount across categories. Everything else is a
// plain searchable note.
package notes

import (
	"fmt"
	"regexp"
	"strings"

	"fjacquet/budget-cli/internal/budgeterror"
)

// Kind identifies the note variant.
type Kind int

const (
	KindPlain Kind = iota
	KindCategory
	KindLink
	KindSplit
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindCategory:
		return "category"
	case KindLink:
		return "link"
	case KindSplit:
		return "split"
	}
	return "unknown"
}

// Note is a closed tagged variant. Exactly the fields of the active Kind are
// populated: Category for KindCategory, Target for KindLink, Parts for
// KindSplit. Text always holds the canonical serialized form.
type Note struct {
	TransactionID string
	Text          string
	Kind          Kind
	Category      string
	Target        string
	Parts         []SplitPart
}

// Variant tags in priority order. When text contains more than one tag, the
// first one in this order decides the variant.
const (
	tagLink     = "link:"
	tagCategory = "cat:"
	tagSplit    = "split:"
)

var (
	linkRe     = regexp.MustCompile(`^link: ([0-9A-Za-z]+)$`)
	categoryRe = regexp.MustCompile(`^cat: (.+)$`)
	splitRe    = regexp.MustCompile(`^split: (.+)$`)
)

// Parse builds a Note from raw text. The tag priority is link, cat, split;
// untagged text becomes a Plain note with the text preserved verbatim. Text
// that carries a tag but fails the variant's sub-grammar is a
// NoteParseError; callers degrade it to a Plain note.
func Parse(transactionID, text string) (Note, error) {
	switch {
	case strings.Contains(text, tagLink):
		m := linkRe.FindStringSubmatch(text)
		if m == nil {
			return Note{}, &budgeterror.NoteParseError{
				TransactionID: transactionID,
				Text:          text,
				Err:           fmt.Errorf("link note must have the form 'link: <transaction id>'"),
			}
		}
		n := Note{TransactionID: transactionID, Kind: KindLink, Target: m[1]}
		n.Text = n.Serialize()
		return n, nil

	case strings.Contains(text, tagCategory):
		m := categoryRe.FindStringSubmatch(text)
		if m == nil {
			return Note{}, &budgeterror.NoteParseError{
				TransactionID: transactionID,
				Text:          text,
				Err:           fmt.Errorf("category note must have the form 'cat: <category>'"),
			}
		}
		n := Note{TransactionID: transactionID, Kind: KindCategory, Category: m[1]}
		n.Text = n.Serialize()
		return n, nil

	case strings.Contains(text, tagSplit):
		m := splitRe.FindStringSubmatch(text)
		if m == nil {
			return Note{}, &budgeterror.NoteParseError{
				TransactionID: transactionID,
				Text:          text,
				Err:           fmt.Errorf("split note must have the form 'split: <parts>'"),
			}
		}
		parts, err := parseSplitParts(m[1])
		if err != nil {
			return Note{}, &budgeterror.NoteParseError{TransactionID: transactionID, Text: text, Err: err}
		}
		n := Note{TransactionID: transactionID, Kind: KindSplit, Parts: parts}
		n.Text = n.Serialize()
		return n, nil
	}

	return Note{TransactionID: transactionID, Text: text, Kind: KindPlain}, nil
}

// Serialize renders the canonical text form of the note. Parsing the result
// reconstructs a note equal in all observable fields; persistence stores
// only this string.
func (n Note) Serialize() string {
	switch n.Kind {
	case KindLink:
		return tagLink + " " + n.Target
	case KindCategory:
		return tagCategory + " " + n.Category
	case KindSplit:
		rendered := make([]string, len(n.Parts))
		for i, p := range n.Parts {
			rendered[i] = p.String()
		}
		return tagSplit + " " + strings.Join(rendered, ", ")
	}
	return n.Text
}

// PartFor returns the split rule targeting the given category. The empty
// category matches a bare rule, which drives the raw/remainder context.
func (n Note) PartFor(category string) (SplitRule, bool) {
	for _, p := range n.Parts {
		if p.Category == category {
			return p.Rule, true
		}
	}
	return nil, false
}

// SplitCategories returns the category names targeted by the split's named
// parts, in part order.
func (n Note) SplitCategories() []string {
	var out []string
	for _, p := range n.Parts {
		if p.Category != "" {
			out = append(out, p.Category)
		}
	}
	return out
}
