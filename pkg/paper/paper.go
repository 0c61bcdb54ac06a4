// Package paper implements the preprocessing stage of the classification
// pipeline: joining the document fields into one text, POS tagging it, and
// extracting both the semantic (grammar-based) and syntactic
// (stopword-split) chunks consumed by the two classifier modules
// (spec.md §4.C).
package paper

import (
	"strings"

	"github.com/jdkato/prose/v2"

	"github.com/cognicore/csoclassifier/pkg/stoplist"
)

// Input is the tagged input record accepted by the pipeline (spec.md §6):
// any field may be missing; Keywords collapses a list to one comma-joined
// string before reaching Paper.
type Input struct {
	Title    string
	Abstract string
	Keywords string // already-joined; see JoinKeywords for the list form
}

// JoinKeywords normalizes the keywords variant (list<string> | string) to a
// single string, joined by ", " as spec.md §3 requires.
func JoinKeywords(keywords any) string {
	switch v := keywords.(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, ", ")
	case nil:
		return ""
	default:
		return ""
	}
}

// Paper is the preprocessed document (spec.md §3). It is built once per
// request and never mutated afterward.
type Paper struct {
	Title, Abstract, Keywords string

	Text            string
	SemanticChunks  []string
	SyntacticChunks []string
}

// New joins title/abstract/keywords into Text (periods-joined, trailing-dot
// stripped) without running POS tagging yet; call Preprocess to populate the
// chunk fields.
func New(title, abstract, keywords string) *Paper {
	fields := make([]string, 0, 3)
	for _, f := range []string{title, abstract, keywords} {
		f = strings.TrimSpace(f)
		f = strings.TrimSuffix(f, ".")
		if f != "" {
			fields = append(fields, f)
		}
	}
	return &Paper{
		Title:    title,
		Abstract: abstract,
		Keywords: keywords,
		Text:     strings.Join(fields, ". "),
	}
}

// Preprocess runs POS tagging and populates SemanticChunks (grammar-based)
// and SyntacticChunks (stopword-split). Empty text yields two empty slices,
// never an error (spec.md §8 boundary behavior).
func (p *Paper) Preprocess(stops *stoplist.Manager) error {
	if strings.TrimSpace(p.Text) == "" {
		return nil
	}

	doc, err := prose.NewDocument(p.Text)
	if err != nil {
		return err
	}

	tokens := stripRootVerbs(doc)
	p.SemanticChunks = extractGrammarChunks(tokens)
	p.SyntacticChunks = extractStopwordChunks(tokens, stops)
	return nil
}

// taggedToken is a lightweight POS-tagged token, decoupled from prose's type
// so the grammar/stopword extraction below is independently testable.
type taggedToken struct {
	Text string
	Tag  string
}

// stripRootVerbs replaces each sentence's apparent root verb with a "."
// boundary marker before chunking, per spec.md §4.C. prose/v2 exposes POS
// tags but not a dependency parse, so the root verb is approximated as the
// first VB*-tagged token in each sentence — a deliberate simplification,
// recorded as an open-question resolution in DESIGN.md.
func stripRootVerbs(doc *prose.Document) []taggedToken {
	var out []taggedToken
	for _, sent := range doc.Sentences() {
		sentDoc, err := prose.NewDocument(sent.Text, prose.WithExtraction(false), prose.WithSegmentation(false))
		if err != nil {
			continue
		}
		strippedRoot := false
		for _, tok := range sentDoc.Tokens() {
			if !strippedRoot && isVerbTag(tok.Tag) {
				out = append(out, taggedToken{Text: ".", Tag: "."})
				strippedRoot = true
				continue
			}
			out = append(out, taggedToken{Text: tok.Text, Tag: tok.Tag})
		}
	}
	return out
}

func isVerbTag(tag string) bool {
	switch tag {
	case "VB", "VBD", "VBG", "VBN", "VBP", "VBZ":
		return true
	default:
		return false
	}
}

// extractGrammarChunks implements the semantic grammar of spec.md §4.C:
// (JJ* HYPH* JJ* HYPH* NN* HYPH* NN+) — adjectives, hyphens, and nouns,
// requiring at least one trailing noun. Adjectives or hyphens after the last
// noun of a run are dropped; the order of tags before that noun is not
// checked.
func extractGrammarChunks(tokens []taggedToken) []string {
	var chunks []string
	var cur []string
	lastNoun := -1 // index in cur of the most recent noun, -1 if none

	flush := func() {
		if lastNoun >= 0 {
			chunks = append(chunks, normalizeChunk(cur[:lastNoun+1]))
		}
		cur = nil
		lastNoun = -1
	}

	for _, tok := range tokens {
		switch {
		case isAdjTag(tok.Tag):
			cur = append(cur, tok.Text)
		case isHyphen(tok.Text):
			if len(cur) == 0 {
				continue
			}
			cur = append(cur, tok.Text)
		case isNounTag(tok.Tag):
			cur = append(cur, tok.Text)
			lastNoun = len(cur) - 1
		default:
			flush()
		}
	}
	flush()
	return chunks
}

func isAdjTag(tag string) bool { return tag == "JJ" || tag == "JJR" || tag == "JJS" }
func isNounTag(tag string) bool {
	switch tag {
	case "NN", "NNS", "NNP", "NNPS":
		return true
	default:
		return false
	}
}
func isHyphen(text string) bool { return text == "-" || text == "–" || text == "—" }

// normalizeChunk lowercases and collapses whitespace. Punctuation tokens
// inside a chunk, such as hyphens, are kept as they are.
func normalizeChunk(words []string) string {
	joined := strings.Join(words, " ")
	joined = strings.ToLower(joined)
	fields := strings.Fields(joined)
	return strings.Join(fields, " ")
}

// extractStopwordChunks implements the syntactic chunking of spec.md §4.C:
// split tokens on English stopwords used as delimiters; each non-empty run
// forms a chunk.
func extractStopwordChunks(tokens []taggedToken, stops *stoplist.Manager) []string {
	var chunks []string
	var cur []string
	for _, tok := range tokens {
		word := strings.ToLower(strings.TrimSpace(tok.Text))
		if word == "" || isHyphen(tok.Text) || tok.Text == "." {
			if len(cur) > 0 {
				chunks = append(chunks, strings.Join(cur, " "))
				cur = nil
			}
			continue
		}
		if stops != nil && stops.IsStop(word) {
			if len(cur) > 0 {
				chunks = append(chunks, strings.Join(cur, " "))
				cur = nil
			}
			continue
		}
		cur = append(cur, word)
	}
	if len(cur) > 0 {
		chunks = append(chunks, strings.Join(cur, " "))
	}
	return chunks
}
