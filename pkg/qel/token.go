package qel

// ----------------------------------------------------------------------------
// Token catalogue

// The lexer matches source text against this fixed, ordered catalogue using a longest-match
// rule (see lexer.go). Kind values before KindIdentRaw mirror the fixed keyword/punctuation
// table 1:1 in declaration order; Kind values from KindIdentRaw onward lie outside that
// table: the primary scan emits KindIdentRaw and KindPunctuation, the scope-classification
// pass turns KindIdentRaw into KindNew/KindOld/KindLiteral, and Lex appends KindEOF.
type Kind int

const (
	// Comment delimiters (consumed by stripComments, never reach the token stream themselves).
	KindSlashSlash Kind = iota
	KindStarSlash
	KindSlashStar

	// Punctuation.
	KindLParen
	KindRParen
	KindLBrace
	KindRBrace
	KindLBracket
	KindRBracket
	KindColon
	KindSemicolon
	KindComma
	KindEquals
	KindAmpersand
	KindStar
	KindRange // ".."

	// Reserved words.
	KindLet
	KindConst
	KindStruct
	KindQbit
	KindVoid
	KindHash
	KindMacro
	KindGateKw

	// Gate mnemonics (closed set; a gate call is distinguished from a function call here).
	KindHAD
	KindPX
	KindPY
	KindPZ
	KindCNT
	KindCY
	KindID
	KindTOF
	KindRX
	KindRY
	KindRZ
	KindS
	KindT
	KindSDG
	KindTDG

	// Remaining punctuation / reserved words.
	KindDot
	KindIf
	KindFor
	KindIn
	KindReturn
	KindBreak
	KindDollar
	KindQudit
	KindMES
	KindTR
	KindDPX

	// Kinds outside the catalogue (see the Kind doc comment for which pass produces each).
	KindIdentRaw  // not observed outside the lexer's internal state
	KindNew       // declaration identifier
	KindOld       // reference identifier
	KindLiteral   // identifier text that parses as a number
	KindPunctuation
	KindEOF
)

// gateKinds is the closed set of gate mnemonic kinds, used by the parser to distinguish a
// GateCall from a FunctionCall at the token level.
var gateKinds = map[Kind]bool{
	KindHAD: true, KindPX: true, KindPY: true, KindPZ: true, KindCNT: true,
	KindCY: true, KindID: true, KindTOF: true, KindRX: true, KindRY: true,
	KindRZ: true, KindS: true, KindT: true, KindSDG: true, KindTDG: true,
	KindMES: true, KindTR: true, KindDPX: true,
}

// catalogueEntry pairs a literal lexeme with the Kind it produces; order matters; the lexer
// always prefers the longest matching entry, never the first.
type catalogueEntry struct {
	text string
	kind Kind
}

// catalogue is the fixed, ordered keyword/punctuation/gate-mnemonic token table.
var catalogue = []catalogueEntry{
	{"//", KindSlashSlash}, {"*/", KindStarSlash}, {"/*", KindSlashStar},
	{"(", KindLParen}, {")", KindRParen}, {"{", KindLBrace}, {"}", KindRBrace},
	{"[", KindLBracket}, {"]", KindRBracket}, {":", KindColon}, {";", KindSemicolon},
	{",", KindComma}, {"=", KindEquals}, {"&", KindAmpersand}, {"*", KindStar}, {"..", KindRange},
	{"let", KindLet}, {"const", KindConst}, {"struct", KindStruct}, {"qbit", KindQbit},
	{"void", KindVoid}, {"#", KindHash}, {"macro", KindMacro}, {"gate", KindGateKw},
	{"HAD", KindHAD}, {"PX", KindPX}, {"PY", KindPY}, {"PZ", KindPZ}, {"CNT", KindCNT},
	{"CY", KindCY}, {"ID", KindID}, {"TOF", KindTOF}, {"RX", KindRX}, {"RY", KindRY},
	{"RZ", KindRZ}, {"S", KindS}, {"T", KindT}, {"SDG", KindSDG}, {"TDG", KindTDG},
	{".", KindDot}, {"if", KindIf}, {"for", KindFor}, {"in", KindIn}, {"return", KindReturn},
	{"break", KindBreak}, {"$", KindDollar}, {"qudit", KindQudit}, {"MES", KindMES},
	{"TR", KindTR}, {"DPX", KindDPX},
}

// singleCharAcceptSet is the punctuation set accepted without a following delimiter check
// (the second accept condition in lexer.go's acceptMatch).
var singleCharAcceptSet = map[byte]bool{
	'(': true, ')': true, '{': true, '}': true, '[': true, ']': true,
	':': true, ';': true, ',': true, '&': true, '*': true, '$': true,
}

// followAcceptSet is the set of characters that may legally follow an accepted keyword match
// (the first accept condition in lexer.go's acceptMatch).
var followAcceptSet = map[byte]bool{'(': true, '[': true, ';': true, ' ': true}

// Token is a (kind, text) pair; text carries the semantic payload for identifiers and numbers.
type Token struct {
	Kind Kind
	Text string
}
