package probe

import (
	"fmt"
	"io"
)

// FormatText writes one line per target token in the classic probe format,
// followed by the top-k table when the result has one.
func FormatText(w io.Writer, res *Result) error {
	for _, t := range res.Tokens {
		if _, err := fmt.Fprintf(w, "Token %d: prob = %f, token = %s\n", t.ID, t.Probability, t.Token); err != nil {
			return err
		}
	}
	if len(res.Top) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "\nTop %d:\n", len(res.Top)); err != nil {
		return err
	}
	for i, t := range res.Top {
		if _, err := fmt.Fprintf(w, "%3d. %-8d %f  %q\n", i+1, t.ID, t.Probability, t.Token); err != nil {
			return err
		}
	}
	return nil
}
