package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// FerrumLexer tokenizes ferrum source. There is no `>>` token: a right shift
// is two adjacent `>` so that nested generics like Map<K, Map<K, V>> close
// without help from the parser.
var FerrumLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `//[^\n]*`, nil},

		// Keywords and Identifiers (order matters)
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},

		{"Integer", `0x[0-9a-fA-F_]+|[0-9][0-9_]*`, nil},

		{"Operator", `(\*\*=|<<=|>>=|\*\*|<<|==|!=|<=|>=|->|::|\+=|-=|\*=|/=|%=|&=|\|=|\^=|[-+*/%&|^~<>=])`, nil},

		// Punctuation (must come after operators)
		{"Punctuation", `[{}\[\]():,;.]`, nil},

		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
