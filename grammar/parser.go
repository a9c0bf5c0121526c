package grammar

import (
	"github.com/alecthomas/participle/v2"
)

var fileParser = participle.MustBuild[File](
	participle.Lexer(FerrumLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(4),
)

// Parse parses a ferrum source file held in memory. On a syntax error the
// returned error is a participle.Error carrying the offending position.
func Parse(filename, source string) (*File, error) {
	return fileParser.ParseString(filename, source)
}
