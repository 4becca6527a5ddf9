package crlfstat

// EOLClass is the line-ending class of a text file.
type EOLClass int

const (
	// EOLNone means no line break was seen.
	EOLNone EOLClass = iota
	// EOLLF means only bare LF line breaks were seen.
	EOLLF
	// EOLCRLF means only CRLF line breaks were seen.
	EOLCRLF
	// EOLMixed means both LF and CRLF line breaks were seen.
	EOLMixed
)

// String returns the label used in reports.
func (c EOLClass) String() string {
	switch c {
	case EOLLF:
		return "LF"
	case EOLCRLF:
		return "CRLF"
	case EOLMixed:
		return "MIX"
	default:
		return "NONE"
	}
}

// IndentClass is the indentation class of a text file.
type IndentClass int

const (
	// IndentNone means no line started with a space or a tab.
	IndentNone IndentClass = iota
	// IndentSpace means only space-indented lines were seen.
	IndentSpace
	// IndentTab means only tab-indented lines were seen.
	IndentTab
	// IndentMixed means both space- and tab-indented lines were seen.
	IndentMixed
)

// String returns the label used in reports.
func (c IndentClass) String() string {
	switch c {
	case IndentSpace:
		return "SPACE"
	case IndentTab:
		return "TAB"
	case IndentMixed:
		return "MIX"
	default:
		return "NONE"
	}
}

// Verdict is the classification of a single file.
type Verdict struct {
	// Binary is set when a non-text byte was found; the other flags are then meaningless.
	Binary bool
	// LF is set when at least one bare LF was seen.
	LF bool
	// CRLF is set when at least one CRLF pair was seen.
	CRLF bool
	// SpaceIndent is set when at least one line-start run contained a space.
	SpaceIndent bool
	// TabIndent is set when at least one line-start run contained a tab.
	TabIndent bool
	// Ext is the file suffix including the dot, or "" when there is none.
	Ext string
	// Bytes is the number of bytes consumed before the scan finished.
	Bytes int64
}

// EOL derives the line-ending class.
func (v Verdict) EOL() EOLClass {
	switch {
	case v.LF && v.CRLF:
		return EOLMixed
	case v.CRLF:
		return EOLCRLF
	case v.LF:
		return EOLLF
	default:
		return EOLNone
	}
}

// Indent derives the indentation class.
func (v Verdict) Indent() IndentClass {
	switch {
	case v.SpaceIndent && v.TabIndent:
		return IndentMixed
	case v.SpaceIndent:
		return IndentSpace
	case v.TabIndent:
		return IndentTab
	default:
		return IndentNone
	}
}
