package tokenizer

import (
	"regexp"

	json "github.com/goccy/go-json"
)

// ByteLevelBOS is the marker NewByteLevel prepends when addSpecial is set.
const ByteLevelBOS = "<|bos|>"

// NewByteLevel returns a merge-free byte-level tokenizer: token id b is the
// single byte b, and id 256 is ByteLevelBOS. Every string is encodable, one
// token per byte.
func NewByteLevel() *HFTokenizer {
	enc, dec := bytesToUnicode()
	encoder := make(map[string]int, 257)
	decoder := make([]string, 257)
	for b := 0; b < 256; b++ {
		s := enc[byte(b)]
		encoder[s] = b
		decoder[b] = s
	}
	encoder[ByteLevelBOS] = 256
	decoder[256] = ByteLevelBOS

	return &HFTokenizer{
		encoder:     encoder,
		decoder:     decoder,
		bpeRanks:    map[Pair]int{},
		byteEncoder: enc,
		byteDecoder: dec,
		pattern:     regexp.MustCompile(defaultPattern),
		addBOS:      true,
		bosID:       256,
		eosID:       -1,
		unkID:       -1,
		special:     []string{ByteLevelBOS},
		cache:       make(map[string][]string),
		cacheLimit:  defaultCacheLimit,
	}
}

// ByteLevelJSON renders the NewByteLevel vocabulary as a tokenizer.json and
// tokenizer_config.json pair, so an exported model directory loads back
// into an equivalent tokenizer.
func ByteLevelJSON() (tokJSON, tokConfig []byte, err error) {
	enc, _ := bytesToUnicode()
	vocab := make(map[string]int, 256)
	for b := 0; b < 256; b++ {
		vocab[enc[byte(b)]] = b
	}

	type addedToken struct {
		ID      int    `json:"id"`
		Content string `json:"content"`
		Special bool   `json:"special"`
	}
	doc := map[string]any{
		"model": map[string]any{
			"type":   "BPE",
			"vocab":  vocab,
			"merges": []string{},
		},
		"added_tokens": []addedToken{{ID: 256, Content: ByteLevelBOS, Special: true}},
	}
	if tokJSON, err = json.Marshal(doc); err != nil {
		return nil, nil, err
	}
	tokConfig, err = json.Marshal(map[string]any{
		"add_bos_token": true,
		"bos_token":     ByteLevelBOS,
	})
	if err != nil {
		return nil, nil, err
	}
	return tokJSON, tokConfig, nil
}
