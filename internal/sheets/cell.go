package sheets

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidCellRef is returned for references that are not column letters
// followed by a 1-based row number.
var ErrInvalidCellRef = errors.New("invalid cell reference")

// maxColumnLetters bounds the column part of a reference. ZZZ (18278) is the
// widest grid the Sheets API allows.
const maxColumnLetters = 3

// ParseCellRef converts an A1-style reference such as "B2" or "aa10" into a
// zero-based row and column.
func ParseCellRef(ref string) (row, col int, err error) {
	i := 0
	for i < len(ref) && isLetter(ref[i]) {
		if i == maxColumnLetters {
			return 0, 0, fmt.Errorf("%w: %q", ErrInvalidCellRef, ref)
		}
		col = col*26 + int(upper(ref[i])-'A'+1)
		i++
	}
	if i == 0 || i == len(ref) {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidCellRef, ref)
	}

	n, convErr := strconv.Atoi(ref[i:])
	if convErr != nil || n < 1 || ref[i] == '+' {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidCellRef, ref)
	}

	return n - 1, col - 1, nil
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
