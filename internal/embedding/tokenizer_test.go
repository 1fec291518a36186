package embedding

import "testing"

func TestSimpleTokenizer(t *testing.T) {
	tok := &SimpleTokenizer{}
	inputIDs, attentionMask, tokenTypeIDs := tok.Tokenize("hello world", 8)
	if len(inputIDs) != 8 || len(attentionMask) != 8 || len(tokenTypeIDs) != 8 {
		t.Fatalf("lengths: got %d %d %d", len(inputIDs), len(attentionMask), len(tokenTypeIDs))
	}
	if inputIDs[0] != 101 {
		t.Errorf("expected [CLS] at position 0, got %d", inputIDs[0])
	}
	if attentionMask[0] != 1 || attentionMask[1] != 1 || attentionMask[2] != 1 {
		t.Error("attention mask should cover CLS and both words")
	}
	if inputIDs[3] != 102 {
		t.Errorf("expected [SEP] after words, got %d", inputIDs[3])
	}
}

func TestHashString(t *testing.T) {
	h := HashString("abc")
	if h < 0 {
		t.Errorf("hash should be non-negative, got %d", h)
	}
	if HashString("abc") != HashString("abc") {
		t.Error("hash should be deterministic")
	}
}

func TestSplitWords(t *testing.T) {
	words := SplitWords("  foo\nbar\tbaz ")
	if len(words) != 3 || words[0] != "foo" || words[2] != "baz" {
		t.Errorf("SplitWords: got %v", words)
	}
}
