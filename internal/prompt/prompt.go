// Package prompt implements the interactive confirmation gate used before
// sending.
package prompt

import (
	"bufio"
	"fmt"
	"io"
)

// Confirm asks the user to press Y to continue or n to abort, re-prompting
// until one of the two exact answers is read. It returns true for Y and
// false for n; the caller decides how to act on a decline. Reaching EOF or
// a read failure before a decision is an error.
func Confirm(r io.Reader, w io.Writer) (bool, error) {
	fmt.Fprintln(w, "Press Y to continue, or n to abort")

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		fmt.Fprintf(w, "You pressed %s\n", line)

		switch line {
		case "Y":
			return true, nil
		case "n":
			return false, nil
		}
		fmt.Fprintln(w, "You did not press Y or n, try again")
	}

	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	return false, fmt.Errorf("input closed before a decision was made")
}
