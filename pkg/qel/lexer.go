package qel

import (
	"strconv"
	"strings"
	"unicode"

	"go.qel.dev/qelc/pkg/utils"
)

// ----------------------------------------------------------------------------
// Lexer: source text -> classified token list.
//
// Three passes:
//   1. stripComments   (comment removal)
//   2. tokenize        (the longest-match scan)
//   3. classifyScopes + forceLiterals (declaration/reference/literal classification)

// rejectChars are punctuation characters that, outside of a catalogue match,
// terminate the current identifier and are themselves emitted as
// KindPunctuation tokens, which the parser does not accept anywhere.
const rejectChars = "!@#$%^&*()-=+[]{}|;:'\",.<>?/"

// stripComments removes `//` line comments and `/* */` block comments.
// A line comment's terminating newline is preserved in the output so that
// surrounding token positions are unaffected. An unterminated block comment
// silently consumes the remainder of the input: documented data loss, not a
// lexer failure.
func stripComments(input string) string {
	var out strings.Builder
	runes := []rune(input)
	n := len(runes)
	inLine, inBlock := false, false

	for i := 0; i < n; i++ {
		switch {
		case inBlock:
			if i+1 < n && runes[i] == '*' && runes[i+1] == '/' {
				inBlock = false
				i++
			}
		case inLine:
			if runes[i] == '\n' {
				inLine = false
				out.WriteRune('\n')
			}
		case i+1 < n && runes[i] == '/' && runes[i+1] == '*':
			inBlock = true
			i++
		case i+1 < n && runes[i] == '/' && runes[i+1] == '/':
			inLine = true
			i++
		default:
			out.WriteRune(runes[i])
		}
	}
	return out.String()
}

// tokenize scans comment-stripped source left to right, preferring the longest
// catalogue match at each position, and accumulating anything else into a
// pending raw identifier. A catalogue match is accepted only under the
// accept rule (checked by acceptMatch below); a rejected match falls
// through to identifier accumulation one character at a time.
func tokenize(input string) []Token {
	runes := []rune(stripComments(input))
	n := len(runes)
	var tokens []Token
	var pending strings.Builder

	flush := func() {
		if pending.Len() > 0 {
			tokens = append(tokens, Token{Kind: KindIdentRaw, Text: pending.String()})
			pending.Reset()
		}
	}

	for i := 0; i < n; {
		if entry, matchLen, ok := longestMatch(runes, i); ok && acceptMatch(runes, i, matchLen) {
			flush()
			tokens = append(tokens, Token{Kind: entry.kind, Text: entry.text})
			i += matchLen
			continue
		}

		c := runes[i]
		if unicode.IsSpace(c) || strings.ContainsRune(rejectChars, c) {
			flush()
			if !unicode.IsSpace(c) {
				tokens = append(tokens, Token{Kind: KindPunctuation, Text: string(c)})
			}
			i++
			continue
		}
		pending.WriteRune(c)
		i++
	}
	flush()
	return tokens
}

// longestMatch finds the catalogue entry with the longest lexeme matching
// runes starting at i, preferring length over table order: the tie-break
// only updates on strictly greater length, so an earlier, shorter entry
// never wins against a later, longer one.
func longestMatch(runes []rune, i int) (catalogueEntry, int, bool) {
	best := catalogueEntry{}
	bestLen := 0
	found := false
	for _, entry := range catalogue {
		lexeme := []rune(entry.text)
		if i+len(lexeme) > len(runes) {
			continue
		}
		if string(runes[i:i+len(lexeme)]) != entry.text {
			continue
		}
		found = true
		if len(lexeme) > bestLen {
			bestLen = len(lexeme)
			best = entry
		}
	}
	return best, bestLen, found
}

// acceptMatch applies the accept rule: the character immediately
// following the match is a delimiter, or the match itself is a single
// character from the tight punctuation set, or the match is the range
// operator `..`.
func acceptMatch(runes []rune, i, matchLen int) bool {
	if i+matchLen < len(runes) && followAcceptSet[byte(runes[i+matchLen])] {
		return true
	}
	if matchLen == 1 && singleCharAcceptSet[byte(runes[i])] {
		return true
	}
	return matchLen == 2 && string(runes[i:i+2]) == ".."
}

// isNumeric reports whether s parses as a (possibly signed, possibly
// fractional) number.
func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// classifyScopes is the second lexer pass: it walks the token list once,
// maintaining a stack of per-brace-depth declaration sets, and reclassifies
// each KindIdentRaw token as KindNew (declaration), KindOld (reference), or
// KindLiteral (parses as a number). One frame per nesting level; popping a
// frame on `}` drops every name declared at or below the level being closed,
// since frames are pushed/popped exactly in step with scope depth.
func classifyScopes(tokens []Token) []Token {
	scopes := utils.NewStack[map[string]struct{}]()
	scopes.Push(map[string]struct{}{})

	out := make([]Token, len(tokens))
	copy(out, tokens)

	for idx, tok := range out {
		switch tok.Kind {
		case KindLBrace:
			scopes.Push(map[string]struct{}{})
		case KindRBrace:
			if scopes.Count() > 1 {
				scopes.Pop()
			}
		case KindIdentRaw:
			if declaredInAnyScope(&scopes, tok.Text) {
				out[idx].Kind = KindOld
			} else if isNumeric(tok.Text) {
				out[idx].Kind = KindLiteral
			} else {
				top, _ := scopes.Top()
				top[tok.Text] = struct{}{}
				out[idx].Kind = KindNew
			}
		}
	}
	return out
}

// declaredInAnyScope reports whether name was declared in the current scope
// or any enclosing one (i.e. any frame currently on the stack).
func declaredInAnyScope(scopes *utils.Stack[map[string]struct{}], name string) bool {
	found := false
	for frame := range scopes.Iterator() {
		if _, ok := frame[name]; ok {
			found = true
			break
		}
	}
	return found
}

// forceLiterals is the lexer's third pass: any token whose text still parses
// as a number is forced to KindLiteral regardless of how the scope pass
// classified it. classifyScopes already tags numeric text as KindLiteral
// before it would record a declaration, so this pass changes nothing in the
// tokens that pass produces.
func forceLiterals(tokens []Token) []Token {
	out := make([]Token, len(tokens))
	copy(out, tokens)
	for i, tok := range out {
		if (tok.Kind == KindNew || tok.Kind == KindOld) && isNumeric(tok.Text) {
			out[i].Kind = KindLiteral
		}
	}
	return out
}

// Lex runs all three passes over source and returns the final classified
// token list, terminated with a KindEOF sentinel for the parser's lookahead.
func Lex(source string) []Token {
	tokens := tokenize(source)
	tokens = classifyScopes(tokens)
	tokens = forceLiterals(tokens)
	return append(tokens, Token{Kind: KindEOF})
}
