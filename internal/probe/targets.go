package probe

import (
	"fmt"
	"strings"
)

// ParseTargets splits targets on ',' and tokenizes each piece on its own,
// without special markers. The ids are concatenated in order, duplicates
// included. Empty pieces contribute nothing, so "" yields an empty list.
func ParseTargets(tok Tokenizer, targets string) ([]int, error) {
	ids := []int{}
	if targets == "" {
		return ids, nil
	}
	for _, piece := range strings.Split(targets, ",") {
		if piece == "" {
			continue
		}
		got, err := tok.Tokenize(piece, false)
		if err != nil {
			return nil, newInvalidRequest(fmt.Sprintf("tokenize target %q: %v", piece, err))
		}
		ids = append(ids, got...)
	}
	return ids, nil
}
