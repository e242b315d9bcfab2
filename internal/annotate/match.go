package annotate

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/Lukasvo/cookiedoo-filler/internal/models"
)

// minWordLen is the shortest word, in characters, that the fallback search
// stages will accept as a needle. Shorter words match too much prose.
const minWordLen = 3

// Confidence ranks how an ingredient reference was located in step text,
// from the single-word fallback up to the full ingredient line found
// verbatim.
type Confidence int

const (
	MatchNone Confidence = iota
	MatchWord
	MatchSuffix
	MatchNormalized
	MatchContained
	MatchMention
	MatchExact
)

func (c Confidence) String() string {
	switch c {
	case MatchWord:
		return "word"
	case MatchSuffix:
		return "suffix"
	case MatchNormalized:
		return "normalized"
	case MatchContained:
		return "contained"
	case MatchMention:
		return "mention"
	case MatchExact:
		return "exact"
	default:
		return "none"
	}
}

// Match is a located ingredient reference span.
type Match struct {
	Position   models.Position
	Confidence Confidence
}

// FindMention locates the span of text that refers to an ingredient,
// searching at or after the from character offset. mention is the surface
// form proposed by the translator and may be empty; ingredient is the
// canonical ingredient line. The search cascades from the full line down to
// a single-word fallback, trading confidence for recall at each stage.
func FindMention(text, mention, ingredient string, from int) (Match, bool) {
	mention = strings.TrimSpace(mention)
	ingredient = strings.TrimSpace(ingredient)
	if ingredient == "" {
		ingredient = mention
	}
	if ingredient == "" {
		return Match{}, false
	}

	if mention == "" || strings.EqualFold(mention, ingredient) {
		if pos, ok := findFold(text, ingredient, from); ok {
			return Match{Position: pos, Confidence: MatchExact}, true
		}
	} else if containsFold(ingredient, mention) {
		if pos, ok := findFold(text, mention, from); ok {
			return Match{Position: pos, Confidence: MatchMention}, true
		}
	} else if containsFold(mention, ingredient) {
		if pos, ok := findFold(text, ingredient, from); ok {
			return Match{Position: pos, Confidence: MatchContained}, true
		}
	}

	stripped := StripQuantity(ingredient)
	if !strings.EqualFold(stripped, ingredient) {
		if pos, ok := findFold(text, stripped, from); ok {
			return Match{Position: pos, Confidence: MatchNormalized}, true
		}
	}

	// Dutch compounds put the head noun last: "kokosmelk" should still be
	// found when the step only says "melk", and vice versa.
	if key := lastWord(stripped); len([]rune(key)) >= minWordLen {
		for _, w := range splitWords(text) {
			if w.offset < from {
				continue
			}
			if suffixOverlap(w.text, key) {
				return Match{
					Position:   models.Position{Offset: w.offset, Length: w.length},
					Confidence: MatchSuffix,
				}, true
			}
		}
	}

	if long := longestWord(stripped); len([]rune(long)) >= minWordLen {
		if pos, ok := findFold(text, long, from); ok {
			return Match{Position: pos, Confidence: MatchWord}, true
		}
	}

	return Match{}, false
}

// ScoreMention binds a free-form mention to the canonical ingredient it most
// plausibly refers to, by word overlap: a mention word found verbatim in a
// candidate counts 1.0, a partial overlap of three or more characters counts
// 0.5. A candidate is accepted only when its score reaches 1; on a tie the
// earlier candidate wins.
func ScoreMention(mention string, candidates []string) (string, float64) {
	var best string
	var bestScore float64
	for _, cand := range candidates {
		if score := overlapScore(mention, cand); score > bestScore {
			best, bestScore = cand, score
		}
	}
	if bestScore < 1 {
		return "", bestScore
	}
	return best, bestScore
}

func overlapScore(mention, candidate string) float64 {
	cwords := splitWords(candidate)
	var score float64
	for _, mw := range splitWords(mention) {
		mr := foldRunes(mw.text)
		var matched float64
		for _, cw := range cwords {
			cr := foldRunes(cw.text)
			if runesEqual(mr, cr) {
				matched = 1
				break
			}
			if len(mr) >= minWordLen && len(cr) >= minWordLen &&
				(runesContain(cr, mr) || runesContain(mr, cr)) {
				matched = 0.5
			}
		}
		score += matched
	}
	return score
}

// quantityWords are units and quantity nouns stripped from the front of an
// ingredient line before searching, so "200 g cashewnoten" can still match a
// step that only says "cashewnoten".
var quantityWords = map[string]bool{
	"g": true, "gr": true, "gram": true, "kg": true, "kilo": true,
	"ml": true, "cl": true, "dl": true, "l": true, "liter": true,
	"el": true, "tl": true, "eetlepel": true, "eetlepels": true,
	"theelepel": true, "theelepels": true, "kopje": true, "kopjes": true,
	"snuf": true, "snufje": true, "mespunt": true, "mespuntje": true,
	"teen": true, "teentje": true, "teentjes": true,
	"blik": true, "blikje": true, "zakje": true, "bosje": true,
	"takje": true, "takjes": true, "plak": true, "plakje": true, "plakjes": true,
	"scheut": true, "scheutje": true, "handje": true, "handvol": true,
	"stuk": true, "stuks": true, "stukje": true, "stukjes": true,
	"tbsp": true, "tsp": true, "cup": true, "cups": true, "oz": true, "lb": true,
	"pinch": true, "clove": true, "cloves": true, "can": true,
	"slice": true, "slices": true,
}

var quantityNumber = regexp.MustCompile(`^\d+(?:[.,]\d+)?(?:[-\x{2013}/]\d+(?:[.,]\d+)?)?$|^[¼½¾⅓⅔⅛⅜⅝⅞]+$`)

// StripQuantity removes leading quantity and unit words from an ingredient
// line: "200 g cashewnoten" becomes "cashewnoten". The line is returned
// unchanged when no words would remain.
func StripQuantity(line string) string {
	fields := strings.Fields(line)
	i := 0
	for i < len(fields) {
		w := strings.ToLower(strings.Trim(fields[i], ".,()"))
		if quantityNumber.MatchString(w) || quantityWords[w] {
			i++
			continue
		}
		break
	}
	if i == 0 || i == len(fields) {
		return strings.TrimSpace(line)
	}
	return strings.Join(fields[i:], " ")
}

type word struct {
	text   string
	offset int
	length int
}

// splitWords breaks text into letter-and-digit runs with their character
// offsets.
func splitWords(text string) []word {
	var ws []word
	rs := []rune(text)
	start := -1
	for i, r := range rs {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			ws = append(ws, word{text: string(rs[start:i]), offset: start, length: i - start})
			start = -1
		}
	}
	if start >= 0 {
		ws = append(ws, word{text: string(rs[start:]), offset: start, length: len(rs) - start})
	}
	return ws
}

func lastWord(s string) string {
	ws := splitWords(s)
	if len(ws) == 0 {
		return ""
	}
	return ws[len(ws)-1].text
}

func longestWord(s string) string {
	var long string
	var longLen int
	for _, w := range splitWords(s) {
		if w.length > longLen {
			long, longLen = w.text, w.length
		}
	}
	return long
}

// suffixOverlap reports whether one word is a suffix of the other, either
// way around. Both words must be at least minWordLen characters.
func suffixOverlap(a, b string) bool {
	ar, br := foldRunes(a), foldRunes(b)
	if len(ar) < minWordLen || len(br) < minWordLen {
		return false
	}
	return hasSuffix(ar, br) || hasSuffix(br, ar)
}

func hasSuffix(rs, suffix []rune) bool {
	if len(suffix) > len(rs) {
		return false
	}
	return runesEqual(rs[len(rs)-len(suffix):], suffix)
}

// foldRunes lowercases s one rune at a time, preserving the character count.
func foldRunes(s string) []rune {
	rs := []rune(s)
	for i, r := range rs {
		rs[i] = unicode.ToLower(r)
	}
	return rs
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func runesContain(haystack, needle []rune) bool {
	return runesIndex(haystack, needle, 0) >= 0
}

func runesIndex(haystack, needle []rune, from int) int {
	if len(needle) == 0 {
		return -1
	}
	if from < 0 {
		from = 0
	}
	for i := from; i+len(needle) <= len(haystack); i++ {
		j := 0
		for ; j < len(needle); j++ {
			if haystack[i+j] != needle[j] {
				break
			}
		}
		if j == len(needle) {
			return i
		}
	}
	return -1
}

// findFold locates the first case-insensitive occurrence of needle in text
// at or after the from character offset.
func findFold(text, needle string, from int) (models.Position, bool) {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return models.Position{}, false
	}
	idx := runesIndex(foldRunes(text), foldRunes(needle), from)
	if idx < 0 {
		return models.Position{}, false
	}
	return models.Position{Offset: idx, Length: len([]rune(needle))}, true
}

func containsFold(haystack, needle string) bool {
	return runesIndex(foldRunes(haystack), foldRunes(needle), 0) >= 0
}
