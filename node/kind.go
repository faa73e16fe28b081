package node

import "fmt"

// Kind identifies the variant of a Node.
type Kind int

const (
	KindUnknown Kind = iota

	// structural
	KindList
	KindArg
	KindComponentValue
	KindDeclaration
	KindOpenCurly
	KindOpenParen
	KindOpenSquare
	KindFunction
	KindAtKeyword
	KindComment

	// leaf values
	KindIdentifier
	KindString
	KindInteger
	KindDecimal
	KindColor
	KindHash
	KindURL
	KindBoolean
	KindAnPlusB

	// bindings
	KindVariable
	KindVariableFunction
	KindVariableDefinition
	KindFunctionDefinition

	// operators
	KindEqual
	KindIncludeMatch
	KindPrefixMatch
	KindSuffixMatch
	KindSubstringMatch
	KindDashMatch
	KindScope
	KindPeriod
	KindColon
	KindComma
	KindSemicolon
	KindWhitespace
	KindGreaterThan
	KindAdd
	KindSubtract
	KindMultiply
	KindDivide
	KindModulo
	KindTilde
	KindReference
	KindPlaceholder
	KindExclamation
	KindNotEqual
	KindLessThan
	KindLessEqual
	KindGreaterEqual

	kindCount
)

var kindNames = [kindCount]string{
	KindUnknown:            "UNKNOWN",
	KindList:               "LIST",
	KindArg:                "ARG",
	KindComponentValue:     "COMPONENT_VALUE",
	KindDeclaration:        "DECLARATION",
	KindOpenCurly:          "OPEN_CURLYBRACKET",
	KindOpenParen:          "OPEN_PARENTHESIS",
	KindOpenSquare:         "OPEN_SQUAREBRACKET",
	KindFunction:           "FUNCTION",
	KindAtKeyword:          "AT_KEYWORD",
	KindComment:            "COMMENT",
	KindIdentifier:         "IDENTIFIER",
	KindString:             "STRING",
	KindInteger:            "INTEGER",
	KindDecimal:            "DECIMAL_NUMBER",
	KindColor:              "COLOR",
	KindHash:               "HASH",
	KindURL:                "URL",
	KindBoolean:            "BOOLEAN",
	KindAnPlusB:            "AN_PLUS_B",
	KindVariable:           "VARIABLE",
	KindVariableFunction:   "VARIABLE_FUNCTION",
	KindVariableDefinition: "VARIABLE_DEFINITION",
	KindFunctionDefinition: "FUNCTION_DEFINITION",
	KindEqual:              "EQUAL",
	KindIncludeMatch:       "INCLUDE_MATCH",
	KindPrefixMatch:        "PREFIX_MATCH",
	KindSuffixMatch:        "SUFFIX_MATCH",
	KindSubstringMatch:     "SUBSTRING_MATCH",
	KindDashMatch:          "DASH_MATCH",
	KindScope:              "SCOPE",
	KindPeriod:             "PERIOD",
	KindColon:              "COLON",
	KindComma:              "COMMA",
	KindSemicolon:          "SEMICOLON",
	KindWhitespace:         "WHITESPACE",
	KindGreaterThan:        "GREATER_THAN",
	KindAdd:                "ADD",
	KindSubtract:           "SUBTRACT",
	KindMultiply:           "MULTIPLY",
	KindDivide:             "DIVIDE",
	KindModulo:             "MODULO",
	KindTilde:              "PRESERVED_TILDE",
	KindReference:          "REFERENCE",
	KindPlaceholder:        "PLACEHOLDER",
	KindExclamation:        "EXCLAMATION",
	KindNotEqual:           "NOT_EQUAL",
	KindLessThan:           "LESS_THAN",
	KindLessEqual:          "LESS_EQUAL",
	KindGreaterEqual:       "GREATER_EQUAL",
}

func (k Kind) String() string {
	if k >= 0 && k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsValid reports whether k is one of the defined kinds.
func (k Kind) IsValid() bool {
	return k > KindUnknown && k < kindCount
}

// IsLeaf reports whether nodes of this kind carry a literal value.
func (k Kind) IsLeaf() bool {
	switch k {
	case KindIdentifier, KindString, KindInteger, KindDecimal, KindColor,
		KindHash, KindURL, KindBoolean, KindAnPlusB:
		return true
	}
	return false
}

// IsNumber reports whether nodes of this kind are numeric literals.
func (k Kind) IsNumber() bool {
	return k == KindInteger || k == KindDecimal
}

// IsAttributeOperator reports whether k is one of the attribute selector
// match operators.
func (k Kind) IsAttributeOperator() bool {
	switch k {
	case KindEqual, KindIncludeMatch, KindPrefixMatch, KindSuffixMatch,
		KindSubstringMatch, KindDashMatch:
		return true
	}
	return false
}

// Symbol returns source text of operator kinds and an empty string for
// everything else.
func (k Kind) Symbol() string {
	switch k {
	case KindEqual:
		return "="
	case KindIncludeMatch:
		return "~="
	case KindPrefixMatch:
		return "^="
	case KindSuffixMatch:
		return "$="
	case KindSubstringMatch:
		return "*="
	case KindDashMatch:
		return "|="
	case KindScope:
		return "|"
	case KindPeriod:
		return "."
	case KindColon:
		return ":"
	case KindComma:
		return ","
	case KindSemicolon:
		return ";"
	case KindWhitespace:
		return " "
	case KindGreaterThan:
		return ">"
	case KindAdd:
		return "+"
	case KindSubtract:
		return "-"
	case KindMultiply:
		return "*"
	case KindDivide:
		return "/"
	case KindModulo:
		return "%"
	case KindTilde:
		return "~"
	case KindReference:
		return "&"
	case KindExclamation:
		return "!"
	case KindNotEqual:
		return "!="
	case KindLessThan:
		return "<"
	case KindLessEqual:
		return "<="
	case KindGreaterEqual:
		return ">="
	}
	return ""
}
