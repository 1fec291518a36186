package discover

import "testing"

func TestQueryTermsFrequencyOrder(t *testing.T) {
	text := "rust rust rust borrow borrow checker and the the a of"
	got := QueryTerms(text, 5)
	if got != "rust borrow checker" {
		t.Errorf("got %q", got)
	}
}

func TestQueryTermsTieBreakFirstSeen(t *testing.T) {
	got := QueryTerms("alpha beta gamma", 5)
	if got != "alpha beta gamma" {
		t.Errorf("ties must keep first-seen order, got %q", got)
	}
}

func TestQueryTermsCapsAtN(t *testing.T) {
	got := QueryTerms("one1 two2 three3 four4 five5 six6 seven7", 5)
	if got != "one1 two2 three3 four4 five5" {
		t.Errorf("got %q", got)
	}
}

func TestQueryTermsStripsPunctuationAndShortTokens(t *testing.T) {
	got := QueryTerms("Go, go! C++ error-handling (in depth)", 5)
	if got != "error handling depth" {
		t.Errorf("got %q", got)
	}
}

func TestQueryTermsAllStopwords(t *testing.T) {
	if got := QueryTerms("the and of to a", 5); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestQueryTermsLowercases(t *testing.T) {
	if got := QueryTerms("Kubernetes KUBERNETES kubernetes", 5); got != "kubernetes" {
		t.Errorf("got %q", got)
	}
}
