package assembler

// Mode selects output layout.
//
//	expanded   - one declaration per line, indented, every declaration ends with ';'
//	compact    - one declaration per line, no indentation or optional spaces
//	tidy       - one rule per line with spaces
//	compressed - everything on one line, no optional characters
//
// ENUM(expanded, compact, tidy, compressed)
type Mode int

//go:generate go tool go-enum --marshal --names

// readable modes keep optional spaces.
func (m Mode) readable() bool {
	return m == ModeExpanded || m == ModeTidy
}
