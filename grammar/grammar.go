package grammar

import "github.com/alecthomas/participle/v2/lexer"

// The grammar structs only record start positions. End positions are
// derived during lowering from the last token of each node, which is why
// closing delimiters are captured as their own small structs.

type File struct {
	Pos   lexer.Position
	Items []*Item `@@*`
}

type Item struct {
	Pos      lexer.Position
	Use      *Use      `  @@`
	Event    *Event    `| @@`
	Contract *Contract `| @@`
	Function *Function `| @@`
	Const    *Const    `| @@`
	Alias    *Alias    `| @@`
}

type Name struct {
	Pos   lexer.Position
	Value string `@Ident`
}

type RBrace struct {
	Pos   lexer.Position
	Value string `@"}"`
}

type RParen struct {
	Pos   lexer.Position
	Value string `@")"`
}

type RBracket struct {
	Pos   lexer.Position
	Value string `@"]"`
}

type RAngle struct {
	Pos   lexer.Position
	Value string `@">"`
}

type Use struct {
	Pos      lexer.Position
	Head     *Name         `"use" @@`
	Segments []*UseSegment `( "::" @@ )* ";"?`
}

type UseSegment struct {
	Pos   lexer.Position
	Name  *Name   `(  @@`
	Group []*Name `| "{" @@ ( "," @@ )*`
	Close *RBrace `  @@ )`
}

type Const struct {
	Pos   lexer.Position
	Name  *Name `"const" @@ ":"`
	Type  *Type `@@ "="`
	Value *Expr `@@ ";"?`
}

type Alias struct {
	Pos  lexer.Position
	Name *Name `"type" @@ "="`
	Type *Type `@@ ";"?`
}

type Event struct {
	Pos    lexer.Position
	Name   *Name         `"event" @@ "{"`
	Fields []*EventField `@@*`
	Close  *RBrace       `@@`
}

type EventField struct {
	Pos     lexer.Position
	Indexed bool  `@"idx"?`
	Name    *Name `@@ ":"`
	Type    *Type `@@ ( "," | ";" )?`
}

type Contract struct {
	Pos   lexer.Position
	Name  *Name           `"contract" @@ "{"`
	Items []*ContractItem `@@*`
	Close *RBrace         `@@`
}

type ContractItem struct {
	Pos      lexer.Position
	Event    *Event    `  @@`
	Function *Function `| @@`
	Field    *Field    `| @@`
}

type Field struct {
	Pos  lexer.Position
	Name *Name `@@ ":"`
	Type *Type `@@ ( "," | ";" )?`
}

type Modifier struct {
	Pos     lexer.Position
	Keyword string `@( "pub" | "unsafe" )`
}

type Function struct {
	Pos       lexer.Position
	Modifiers []*Modifier `@@*`
	Name      *Name       `"fn" @@ "("`
	Params    []*Param    `( @@ ( "," @@ )* )?`
	Close     *RParen     `@@`
	Return    *Type       `( "->" @@ )?`
	Body      *Block      `@@`
}

type Param struct {
	Pos  lexer.Position
	Self bool  `(  @"self"`
	Name *Name `| @@ ":"`
	Type *Type `  @@ )`
}

type Type struct {
	Pos   lexer.Position
	Tuple *TupleType `  @@`
	Named *NamedType `| @@`
}

type NamedType struct {
	Pos   lexer.Position
	Name  *Name   `@@`
	Args  []*Type `( "<" @@ ( "," @@ )*`
	Close *RAngle `  @@ )?`
}

type TupleType struct {
	Pos   lexer.Position
	Elems []*Type `"(" ( @@ ( "," @@ )* )?`
	Close *RParen `@@`
}

type Block struct {
	Pos   lexer.Position
	Stmts []*Statement `"{" @@*`
	Close *RBrace      `@@`
}

type Statement struct {
	Pos    lexer.Position
	Let    *Let      `(  @@`
	If     *If       ` | @@`
	While  *While    ` | @@`
	Return *Return   ` | @@`
	Break  *Keyword  ` | @@`
	Assert *Assert   ` | @@`
	Emit   *Emit     ` | @@`
	Unsafe *Unsafe   ` | @@`
	Expr   *ExprStmt ` | @@ ) ";"?`
}

// Keyword covers the statements that are a single keyword.
type Keyword struct {
	Pos   lexer.Position
	Value string `@( "break" | "continue" | "revert" )`
}

type Let struct {
	Pos   lexer.Position
	Mut   bool  `"let" @"mut"?`
	Name  *Name `@@`
	Type  *Type `( ":" @@ )?`
	Value *Expr `( "=" @@ )?`
}

type If struct {
	Pos    lexer.Position
	Cond   *Expr  `"if" @@`
	Then   *Block `@@`
	ElseIf *If    `( "else" ( @@`
	Else   *Block `         | @@ ) )?`
}

type While struct {
	Pos  lexer.Position
	Cond *Expr  `"while" @@`
	Body *Block `@@`
}

type Return struct {
	Pos   lexer.Position
	Value *Expr `"return" @@?`
}

type Assert struct {
	Pos  lexer.Position
	Cond *Expr `"assert" @@`
}

type Emit struct {
	Pos  lexer.Position
	Name *Name     `"emit" @@`
	Args *CallArgs `@@`
}

type Unsafe struct {
	Pos  lexer.Position
	Body *Block `"unsafe" @@`
}

type ExprStmt struct {
	Pos    lexer.Position
	Target *Expr  `@@`
	Op     string `( @( "=" | "+=" | "-=" | "*=" | "/=" | "%=" | "**=" | "<<=" | ">>=" | "|=" | "^=" | "&=" )`
	Value  *Expr  `  @@ )?`
}

// Expressions are layered by precedence, loosest first.

type Expr struct {
	Pos   lexer.Position
	Left  *AndExpr   `@@`
	Right []*AndExpr `( "or" @@ )*`
}

type AndExpr struct {
	Pos   lexer.Position
	Left  *NotExpr   `@@`
	Right []*NotExpr `( "and" @@ )*`
}

type NotExpr struct {
	Pos     lexer.Position
	Not     *NotExpr `  "not" @@`
	Operand *CmpExpr `| @@`
}

type CmpExpr struct {
	Pos   lexer.Position
	Left  *BinaryExpr `@@`
	Op    string      `( @( "==" | "!=" | "<=" | ">=" | "<" | ">" )`
	Right *BinaryExpr `  @@ )?`
}

// BinaryExpr holds a flat operator chain; precedence among the bitwise,
// shift and arithmetic operators is resolved during lowering.
type BinaryExpr struct {
	Pos   lexer.Position
	Left  *UnaryExpr  `@@`
	Tails []*BinaryOp `@@*`
}

type BinaryOp struct {
	Pos   lexer.Position
	Op    string     `@( "|" | "^" | "&" | "<<" | ">" ">" | "+" | "-" | "*" | "/" | "%" )`
	Right *UnaryExpr `@@`
}

type UnaryExpr struct {
	Pos     lexer.Position
	Op      string     `(  @( "-" | "~" )`
	Operand *UnaryExpr `   @@ )`
	Pow     *PowExpr   `| @@`
}

type PowExpr struct {
	Pos      lexer.Position
	Base     *PostfixExpr `@@`
	Exponent *UnaryExpr   `( "**" @@ )?`
}

type PostfixExpr struct {
	Pos     lexer.Position
	Primary *Primary   `@@`
	Ops     []*Postfix `@@*`
}

type Postfix struct {
	Pos   lexer.Position
	Field *Name        `  "." @@`
	Index *IndexSuffix `| @@`
	Call  *CallArgs    `| @@`
}

type IndexSuffix struct {
	Pos   lexer.Position
	Index *Expr     `"[" @@`
	Close *RBracket `@@`
}

type CallArgs struct {
	Pos   lexer.Position
	Args  []*Arg  `"(" ( @@ ( "," @@ )* )?`
	Close *RParen `@@`
}

type Arg struct {
	Pos   lexer.Position
	Label *Name `( @@ ":" )?`
	Value *Expr `@@`
}

type Primary struct {
	Pos   lexer.Position
	Int   *IntLit    `  @@`
	Bool  *BoolLit   `| @@`
	Self  *SelfLit   `| @@`
	Path  *Path      `| @@`
	Paren *ParenExpr `| @@`
}

type IntLit struct {
	Pos lexer.Position
	Raw string `@Integer`
}

type BoolLit struct {
	Pos   lexer.Position
	Value string `@( "true" | "false" )`
}

type SelfLit struct {
	Pos   lexer.Position
	Value string `@"self"`
}

type Path struct {
	Pos      lexer.Position
	Segments []*Name `@@ ( "::" @@ )*`
}

type ParenExpr struct {
	Pos      lexer.Position
	Elems    []*Expr `"(" ( @@ ( "," @@ )* )?`
	Trailing bool    `@","?`
	Close    *RParen `@@`
}
