// Package suggest provides prefix matching over a static product vocabulary.
package suggest

import (
	"strings"
	"sync"
)

// MaxResults caps the number of suggestions returned by Query.
const MaxResults = 6

// products is the vocabulary the application ships with.
var products = []string{
	"Arroz", "Feijão", "Açúcar", "Café", "Leite", "Pão", "Manteiga", "Óleo", "Sal",
	"Farinha de trigo", "Macarrão", "Molho de tomate", "Carne", "Frango", "Ovos",
	"Queijo", "Presunto", "Iogurte", "Frutas", "Legumes", "Verduras", "Papel higiênico",
	"Sabonete", "Shampoo", "Detergente", "Sabão em pó", "Água mineral", "Refrigerante",
	"Cerveja", "Suco", "Azeite", "Vinagre", "Margarina", "Biscoito", "Chocolate",
	"Batata", "Cebola", "Alho", "Tomate", "Cenoura", "Banana", "Maçã", "Laranja",
}

// Index is an immutable vocabulary with its entries pre-split into lowercase tokens.
type Index struct {
	entries []string
	lower   []string
	tokens  [][]string
}

// New builds an Index over a copy of vocabulary.
func New(vocabulary []string) *Index {
	idx := &Index{
		entries: make([]string, len(vocabulary)),
		lower:   make([]string, len(vocabulary)),
		tokens:  make([][]string, len(vocabulary)),
	}
	copy(idx.entries, vocabulary)
	for i, v := range idx.entries {
		idx.lower[i] = strings.ToLower(v)
		idx.tokens[i] = strings.Fields(idx.lower[i])
	}
	return idx
}

var (
	defaultOnce  sync.Once
	defaultIndex *Index
)

// Default returns the process-wide index over the built-in product vocabulary.
func Default() *Index {
	defaultOnce.Do(func() {
		defaultIndex = New(products)
	})
	return defaultIndex
}

// Query returns up to MaxResults entries having a whitespace-delimited word
// that starts with prefix, ignoring case, in vocabulary order. A prefix
// spanning several words matches entries that begin with it.
// A blank prefix matches nothing. Surrounding whitespace is part of the
// prefix, so "fr " matches no single word.
func (idx *Index) Query(prefix string) []string {
	if strings.TrimSpace(prefix) == "" {
		return []string{}
	}
	p := strings.ToLower(prefix)

	out := []string{}
	for i, words := range idx.tokens {
		if !strings.HasPrefix(idx.lower[i], p) && !anyHasPrefix(words, p) {
			continue
		}
		out = append(out, idx.entries[i])
		if len(out) == MaxResults {
			break
		}
	}
	return out
}

// Len returns the vocabulary size.
func (idx *Index) Len() int { return len(idx.entries) }

// Vocabulary returns a copy of the entries in their original order.
func (idx *Index) Vocabulary() []string {
	out := make([]string, len(idx.entries))
	copy(out, idx.entries)
	return out
}

func anyHasPrefix(words []string, prefix string) bool {
	for _, w := range words {
		if strings.HasPrefix(w, prefix) {
			return true
		}
	}
	return false
}
