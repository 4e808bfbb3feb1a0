package perr

import (
	"bufio"
	"os"
)

// SourceLine reads line row (1-based) of the file at path for display
// alongside an error, the same way the teacher's SpecError annotated a
// parse failure with the offending source line. It returns "" if the
// file can't be read or the row doesn't exist, since this is cosmetic:
// callers should still render the error without it.
func SourceLine(path string, row int) string {
	if path == "" || row <= 0 {
		return ""
	}

	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	i := 1
	s := bufio.NewScanner(f)
	for s.Scan() {
		if i == row {
			return s.Text()
		}
		i++
	}
	return ""
}

// LineAt converts a zero-based byte offset into src to a 1-based line
// number, the way encoding/json's *json.SyntaxError.Offset needs
// translating before it means anything to a human.
func LineAt(src []byte, offset int64) int {
	if offset < 0 {
		return 0
	}
	line := 1
	for i := int64(0); i < offset && i < int64(len(src)); i++ {
		if src[i] == '\n' {
			line++
		}
	}
	return line
}
