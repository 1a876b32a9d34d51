package browse

import (
	"strconv"
	"strings"
)

const (
	// MinRandomCount and MaxRandomCount bound the random-recipes count.
	MinRandomCount = 1
	MaxRandomCount = 10
)

// Query is the raw input of one search submission. Text screens use Text,
// the ingredient screen puts a comma-separated list in Text, and the random
// screen uses Count.
type Query struct {
	Text  string `json:"query,omitempty"`
	Count *int   `json:"count,omitempty"`
}

// TextQuery builds a text or ingredient query.
func TextQuery(text string) Query {
	return Query{Text: text}
}

// CountQuery builds a random-recipes query.
func CountQuery(n int) Query {
	return Query{Count: &n}
}

// normalized is a validated query ready to be sent upstream.
type normalized struct {
	text        string
	ingredients []string
	count       int
}

// display is what the controller remembers as the query text.
func (n normalized) display() string {
	if n.text != "" {
		return n.text
	}
	if n.count > 0 {
		return strconv.Itoa(n.count)
	}
	return ""
}

// ClampCount bounds a random-recipes count to [1, 10].
func ClampCount(n int) int {
	if n < MinRandomCount {
		return MinRandomCount
	}
	if n > MaxRandomCount {
		return MaxRandomCount
	}
	return n
}

// SplitIngredients splits a comma-separated ingredient list, trimming each
// entry and dropping blanks.
func SplitIngredients(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalizeText(q Query, emptyMsg string) (normalized, error) {
	text := strings.Join(strings.Fields(q.Text), " ")
	if text == "" {
		return normalized{}, &ValidationError{Field: "query", Message: emptyMsg}
	}
	return normalized{text: text}, nil
}

func normalizeIngredients(q Query, emptyMsg string) (normalized, error) {
	ingredients := SplitIngredients(q.Text)
	if len(ingredients) == 0 {
		return normalized{}, &ValidationError{Field: "query", Message: emptyMsg}
	}
	return normalized{text: strings.Join(ingredients, ","), ingredients: ingredients}, nil
}

// normalizeCount also accepts the count typed into the text field, the way
// the random screen's number input submits it.
func normalizeCount(q Query, emptyMsg string) (normalized, error) {
	if q.Count != nil {
		return normalized{count: ClampCount(*q.Count)}, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(q.Text))
	if err != nil {
		return normalized{}, &ValidationError{Field: "count", Message: emptyMsg}
	}
	return normalized{count: ClampCount(n)}, nil
}
