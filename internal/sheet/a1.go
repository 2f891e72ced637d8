package sheet

import (
	"fmt"
	"strings"
)

// columnLetter converts a 1-based column index to A1 letters (1 -> A, 27 -> AA).
func columnLetter(n int) string {
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

// quoteTitle quotes a worksheet title for use in an A1 range.
func quoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func cellRange(title string, row, col int) string {
	return fmt.Sprintf("%s!%s%d", quoteTitle(title), columnLetter(col), row)
}

func rowRange(title string, row int) string {
	return fmt.Sprintf("%s!%d:%d", quoteTitle(title), row, row)
}
