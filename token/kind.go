package token

// Kind classifies a lexeme. The set and names follow spec §4.1 exactly.
type Kind int

const (
	Identifier Kind = iota + 1
	Number
	String
	Equals
	OpenBrace
	CloseBrace
	GreaterThan
	LessThan
	GreaterThanEq
	LessThanEq
	ExistenceCheck // ?=
	Boolean
	Date
)

func (k Kind) String() string {
	return kindNames[k]
}

func (k Kind) GoString() string {
	return kindNames[k]
}

var kindNames = map[Kind]string{
	Identifier:     "Identifier",
	Number:         "Number",
	String:         "String",
	Equals:         "Equals",
	OpenBrace:      "OpenBrace",
	CloseBrace:     "CloseBrace",
	GreaterThan:    "GreaterThan",
	LessThan:       "LessThan",
	GreaterThanEq:  "GreaterThanEq",
	LessThanEq:     "LessThanEq",
	ExistenceCheck: "ExistenceCheck",
	Boolean:        "Boolean",
	Date:           "Date",
}

func init() {
	// Mirrors the teacher's tokentype.go completeness check: panic early in
	// development if a Kind is added without a name.
	for k := Identifier; k <= Date; k++ {
		if kindNames[k] == "" {
			panic("token: missing name for Kind")
		}
	}
}

// Real is the coarse look-ahead classification described in spec §3. It is
// deliberately coarser than Kind: ObjectOrArray covers both OpenBrace cases
// before the reader has peeked inside the brace group.
type Real int

const (
	RealNumber Real = iota + 1
	RealBoolean
	RealString
	RealIdentifier
	RealDate
	RealObjectOrArray
)

func (r Real) String() string {
	switch r {
	case RealNumber:
		return "Number"
	case RealBoolean:
		return "Boolean"
	case RealString:
		return "String"
	case RealIdentifier:
		return "Identifier"
	case RealDate:
		return "Date"
	case RealObjectOrArray:
		return "ObjectOrArray"
	default:
		return "Unknown"
	}
}

// RealOf maps a token Kind to its coarse Real classification. Punctuation
// kinds other than OpenBrace have no Real classification (reader never asks
// for one) and return 0.
func RealOf(k Kind) Real {
	switch k {
	case Number:
		return RealNumber
	case Boolean:
		return RealBoolean
	case String:
		return RealString
	case Identifier:
		return RealIdentifier
	case Date:
		return RealDate
	case OpenBrace:
		return RealObjectOrArray
	default:
		return 0
	}
}
