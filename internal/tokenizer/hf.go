package tokenizer

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
)

// HFTokenizer is a byte-level BPE tokenizer loaded from a HuggingFace
// tokenizer.json. It is safe for concurrent use.
type HFTokenizer struct {
	encoder      map[string]int
	decoder      []string
	bpeRanks     map[Pair]int
	byteEncoder  map[byte]string
	byteDecoder  map[string]byte
	pattern      *regexp.Regexp
	addBOS       bool
	addEOS       bool
	bosID        int
	eosID        int
	unkID        int
	ignoreMerges bool
	special      []string

	mu         sync.Mutex
	cache      map[string][]string
	cacheLimit int
}

const (
	// defaultCacheLimit bounds the merge cache; it is cleared when full.
	defaultCacheLimit = 1 << 16
	// maxCachedWord is the longest byte-encoded word worth caching.
	maxCachedWord = 64
)

type hfPreTokenizer struct {
	Type          string `json:"type"`
	Pretokenizers []struct {
		Type    string `json:"type"`
		Pattern struct {
			Regex string `json:"Regex"`
		} `json:"pattern"`
	} `json:"pretokenizers"`
}

type hfTokenizerJSON struct {
	Model struct {
		Type         string         `json:"type"`
		Vocab        map[string]int `json:"vocab"`
		Merges       []any          `json:"merges"`
		IgnoreMerges bool           `json:"ignore_merges"`
		UnkToken     string         `json:"unk_token"`
	} `json:"model"`
	PreTokenizer  hfPreTokenizer `json:"pre_tokenizer"`
	PostProcessor struct {
		Type       string `json:"type"`
		Processors []struct {
			Type          string `json:"type"`
			SpecialTokens map[string]struct {
				IDs []int `json:"ids"`
			} `json:"special_tokens"`
		} `json:"processors"`
	} `json:"post_processor"`
	AddedTokens []struct {
		ID      int    `json:"id"`
		Content string `json:"content"`
		Special bool   `json:"special"`
	} `json:"added_tokens"`
}

type hfTokenizerConfig struct {
	AddBOS *bool           `json:"add_bos_token"`
	AddEOS *bool           `json:"add_eos_token"`
	BOS    json.RawMessage `json:"bos_token"`
	EOS    json.RawMessage `json:"eos_token"`
}

// LoadHFTokenizer reads tokenizer.json and, when tokConfig is non-empty,
// tokenizer_config.json from disk.
func LoadHFTokenizer(tokJSON, tokConfig string) (*HFTokenizer, error) {
	data, err := os.ReadFile(tokJSON)
	if err != nil {
		return nil, err
	}
	var cfg []byte
	if tokConfig != "" {
		cfg, err = os.ReadFile(tokConfig)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}
	return LoadHFTokenizerBytes(data, cfg)
}

func LoadHFTokenizerBytes(tokJSON []byte, tokConfig []byte) (*HFTokenizer, error) {
	var tj hfTokenizerJSON
	if err := json.Unmarshal(tokJSON, &tj); err != nil {
		return nil, fmt.Errorf("parse tokenizer.json: %w", err)
	}
	if strings.ToUpper(tj.Model.Type) != "BPE" {
		return nil, fmt.Errorf("unsupported tokenizer model: %q", tj.Model.Type)
	}

	encoder := make(map[string]int, len(tj.Model.Vocab)+len(tj.AddedTokens))
	maxID := -1
	for tok, id := range tj.Model.Vocab {
		encoder[tok] = id
		maxID = max(maxID, id)
	}
	for _, at := range tj.AddedTokens {
		encoder[at.Content] = at.ID
		maxID = max(maxID, at.ID)
	}
	decoder := make([]string, maxID+1)
	for tok, id := range encoder {
		if id >= 0 {
			decoder[id] = tok
		}
	}

	bpeRanks := make(map[Pair]int, len(tj.Model.Merges))
	rank := 0
	for _, raw := range tj.Model.Merges {
		p, ok := parseMerge(raw)
		if !ok {
			continue
		}
		if _, seen := bpeRanks[p]; !seen {
			bpeRanks[p] = rank
			rank++
		}
	}

	var cfg hfTokenizerConfig
	if len(tokConfig) > 0 {
		if err := json.Unmarshal(tokConfig, &cfg); err != nil {
			return nil, fmt.Errorf("parse tokenizer_config.json: %w", err)
		}
	}

	t := &HFTokenizer{
		encoder:      encoder,
		decoder:      decoder,
		bpeRanks:     bpeRanks,
		pattern:      buildHFPattern(tj.PreTokenizer),
		bosID:        lookupSpecial(encoder, cfg.BOS),
		eosID:        lookupSpecial(encoder, cfg.EOS),
		unkID:        -1,
		ignoreMerges: tj.Model.IgnoreMerges,
		cache:        make(map[string][]string),
		cacheLimit:   defaultCacheLimit,
	}
	t.byteEncoder, t.byteDecoder = bytesToUnicode()
	if cfg.AddBOS != nil {
		t.addBOS = *cfg.AddBOS && t.bosID >= 0
	}
	if cfg.AddEOS != nil {
		t.addEOS = *cfg.AddEOS && t.eosID >= 0
	}
	// A TemplateProcessing post-processor that names a special token means
	// the model was trained with it prepended.
	for _, proc := range tj.PostProcessor.Processors {
		if proc.Type != "TemplateProcessing" {
			continue
		}
		for _, spec := range proc.SpecialTokens {
			if len(spec.IDs) > 0 {
				t.bosID = spec.IDs[0]
				t.addBOS = true
				break
			}
		}
	}
	if tj.Model.UnkToken != "" {
		if id, ok := encoder[tj.Model.UnkToken]; ok {
			t.unkID = id
		}
	}

	specials := make([]string, 0, len(tj.AddedTokens))
	for _, at := range tj.AddedTokens {
		if at.Special || isSpecialToken(at.Content) {
			specials = append(specials, at.Content)
		}
	}
	t.special = collectSpecials(append(specials, specialLike(decoder)...))
	return t, nil
}

// Encode tokenizes text. addSpecial controls the BOS/EOS markers. With
// parseSpecial, special-token literals in text are matched as single control
// tokens; otherwise they are encoded as ordinary text.
func (t *HFTokenizer) Encode(text string, addSpecial, parseSpecial bool) ([]int, error) {
	var ids []int
	if addSpecial && t.addBOS && t.bosID >= 0 {
		ids = append(ids, t.bosID)
	}
	parts := []textPart{{text: text}}
	if parseSpecial {
		parts = splitSpecials(text, t.special)
	}
	for _, part := range parts {
		if part.isSpecial {
			ids = append(ids, t.encoder[part.text])
			continue
		}
		for _, word := range t.pattern.FindAllString(part.text, -1) {
			for _, piece := range t.bpe(t.byteEncode(word)) {
				id, ok := t.encoder[piece]
				if !ok {
					if t.unkID < 0 {
						return nil, fmt.Errorf("unknown token %q", piece)
					}
					id = t.unkID
				}
				ids = append(ids, id)
			}
		}
	}
	if addSpecial && t.addEOS && t.eosID >= 0 {
		ids = append(ids, t.eosID)
	}
	return ids, nil
}

func (t *HFTokenizer) Decode(ids []int) (string, error) {
	var b []byte
	for _, id := range ids {
		if id < 0 || id >= len(t.decoder) {
			return "", fmt.Errorf("token id out of range: %d", id)
		}
		b = t.appendPiece(b, t.decoder[id])
	}
	return string(b), nil
}

func (t *HFTokenizer) Piece(id int) string {
	if id < 0 || id >= len(t.decoder) {
		return ""
	}
	return string(t.appendPiece(nil, t.decoder[id]))
}

func (t *HFTokenizer) appendPiece(b []byte, token string) []byte {
	if t.isSpecial(token) {
		return append(b, token...)
	}
	for _, r := range token {
		if by, ok := t.byteDecoder[string(r)]; ok {
			b = append(b, by)
		} else {
			b = append(b, string(r)...)
		}
	}
	return b
}

func (t *HFTokenizer) isSpecial(token string) bool {
	for _, sp := range t.special {
		if sp == token {
			return true
		}
	}
	return false
}

func (t *HFTokenizer) VocabSize() int { return len(t.decoder) }
func (t *HFTokenizer) BOSID() int     { return t.bosID }
func (t *HFTokenizer) EOSID() int     { return t.eosID }
func (t *HFTokenizer) AddBOS() bool   { return t.addBOS }

func (t *HFTokenizer) byteEncode(s string) string {
	var b strings.Builder
	for _, by := range []byte(s) {
		b.WriteString(t.byteEncoder[by])
	}
	return b.String()
}

func (t *HFTokenizer) bpe(token string) []string {
	if len(token) > maxCachedWord {
		return t.merge(token)
	}
	t.mu.Lock()
	cached, ok := t.cache[token]
	t.mu.Unlock()
	if ok {
		return cached
	}

	word := t.merge(token)

	t.mu.Lock()
	if len(t.cache) >= t.cacheLimit {
		clear(t.cache)
	}
	t.cache[token] = word
	t.mu.Unlock()
	return word
}

func (t *HFTokenizer) merge(token string) []string {
	if t.ignoreMerges {
		if _, ok := t.encoder[token]; ok {
			return []string{token}
		}
	}
	word := splitRunes(token)
	for len(word) > 1 {
		bestRank := int(^uint(0) >> 1)
		var best Pair
		found := false
		for p := range getPairs(word) {
			if rank, ok := t.bpeRanks[p]; ok && rank < bestRank {
				bestRank, best, found = rank, p, true
			}
		}
		if !found {
			break
		}
		word = mergePair(word, best)
	}
	return word
}

func parseMerge(raw any) (Pair, bool) {
	var line string
	switch v := raw.(type) {
	case string:
		line = v
	case []any:
		if len(v) == 2 {
			a, aok := v[0].(string)
			b, bok := v[1].(string)
			if aok && bok {
				line = a + " " + b
			}
		}
	}
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Pair{}, false
	}
	parts := strings.Split(line, " ")
	if len(parts) != 2 {
		return Pair{}, false
	}
	return Pair{A: parts[0], B: parts[1]}, true
}

// lookupSpecial resolves a bos_token/eos_token entry, which HF writes either
// as a bare string or as an AddedToken object with a "content" field.
func lookupSpecial(encoder map[string]int, raw json.RawMessage) int {
	if len(raw) == 0 {
		return -1
	}
	var content string
	if err := json.Unmarshal(raw, &content); err != nil {
		var obj struct {
			Content string `json:"content"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return -1
		}
		content = obj.Content
	}
	if id, ok := encoder[content]; ok && content != "" {
		return id
	}
	return -1
}

const defaultPattern = `'s|'t|'re|'ve|'m|'ll|'d| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|\s+`

// llama3Pattern replaces Llama-3 style split regexes, whose lookahead Go's
// RE2 engine cannot compile. It is the llama.cpp equivalent.
const llama3Pattern = `(?:'[sS]|'[tT]|'[rR][eE]|'[vV][eE]|'[mM]|'[lL][lL]|'[dD])|[^\r\n\p{L}\p{N}]?\p{L}+|\p{N}{1,3}| ?[^\s\p{L}\p{N}]+[\r\n]*|\s*[\r\n]+|\s+`

func buildHFPattern(pre hfPreTokenizer) *regexp.Regexp {
	pat := defaultPattern
	if pre.Type == "Sequence" {
		for _, p := range pre.Pretokenizers {
			if p.Type == "Split" && p.Pattern.Regex != "" {
				pat = p.Pattern.Regex
				break
			}
		}
	}
	if strings.Contains(pat, `(?!\S)`) || strings.Contains(pat, "(?i:") {
		pat = llama3Pattern
	}
	re, err := regexp.Compile(pat)
	if err != nil {
		return regexp.MustCompile(llama3Pattern)
	}
	return re
}
