package tokenizer

// Tokenizer is the surface the engine needs from a vocabulary.
type Tokenizer interface {
	// Encode tokenizes text. With addSpecial the configured BOS/EOS markers
	// are added around the result. With parseSpecial, special-token literals
	// in text become control tokens instead of plain text.
	Encode(text string, addSpecial, parseSpecial bool) ([]int, error)
	// Decode joins the surface text of ids.
	Decode(ids []int) (string, error)
	// Piece returns the surface text of a single token, or "" for an
	// unknown id.
	Piece(id int) string
	VocabSize() int
}
