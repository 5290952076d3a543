// Package faq holds the advising knowledge base: a small embedded
// dataset of common questions with keyword matching over it. The Q&A
// page lists it and the chat advisor answers from it.
package faq

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

//go:embed faq.json
var dataset []byte

// Entry is one question with its canned answer. Answer is markdown.
type Entry struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Keywords []string `json:"keywords"`
}

var (
	once    sync.Once
	entries []Entry
	loadErr error
)

// Load parses the embedded dataset once and returns it sorted by
// question.
func Load() ([]Entry, error) {
	once.Do(func() {
		var parsed []Entry
		if err := json.Unmarshal(dataset, &parsed); err != nil {
			loadErr = fmt.Errorf("faq: parse dataset: %w", err)
			return
		}
		sort.Slice(parsed, func(i, j int) bool {
			return parsed[i].Question < parsed[j].Question
		})
		entries = parsed
	})
	return entries, loadErr
}

// ByID returns the entry with the given id.
func ByID(id string) (Entry, bool) {
	all, err := Load()
	if err != nil {
		return Entry{}, false
	}
	for _, e := range all {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Match scores every entry against the query by keyword overlap and
// returns the best one. No overlap means no match.
func Match(query string) (Entry, bool) {
	all, err := Load()
	if err != nil {
		return Entry{}, false
	}
	words := tokenize(query)
	if len(words) == 0 {
		return Entry{}, false
	}

	var best Entry
	bestScore := 0
	for _, e := range all {
		score := 0
		for _, kw := range e.Keywords {
			if words[strings.ToLower(kw)] {
				score++
			}
		}
		for _, qw := range tokenizeList(e.Question) {
			if words[qw] {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = e, score
		}
	}
	return best, bestScore > 0
}

func tokenize(s string) map[string]bool {
	out := map[string]bool{}
	for _, w := range tokenizeList(s) {
		out[w] = true
	}
	return out
}

func tokenizeList(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	var out []string
	for _, f := range fields {
		if len(f) > 2 {
			out = append(out, f)
		}
	}
	return out
}
