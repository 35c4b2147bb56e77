package scanner

import "testing"

func TestGitignoreMatcher_ExtensionPattern(t *testing.T) {
	m := newGitignoreMatcher()
	m.addPattern("*.log", "")
	if !m.match("debug.log") {
		t.Fatalf("expected debug.log to be ignored")
	}
	if m.match("debug.txt") {
		t.Fatalf("expected debug.txt to be kept")
	}
}

func TestGitignoreMatcher_DirectoryPatternIgnoresContents(t *testing.T) {
	m := newGitignoreMatcher()
	m.addPattern("build/", "")
	if !m.match("build/output.md") {
		t.Fatalf("expected build/output.md to be ignored")
	}
	if m.match("notbuild/output.md") {
		t.Fatalf("expected notbuild/output.md to be kept")
	}
}

func TestGitignoreMatcher_NegationOverridesLaterRule(t *testing.T) {
	m := newGitignoreMatcher()
	m.addPattern("*.log", "")
	m.addPattern("!keep.log", "")
	if m.match("keep.log") {
		t.Fatalf("expected keep.log to be kept after negation")
	}
	if !m.match("other.log") {
		t.Fatalf("expected other.log to remain ignored")
	}
}

func TestGitignoreMatcher_CommentsAndBlankLinesIgnored(t *testing.T) {
	m := newGitignoreMatcher()
	m.addPattern("# a comment", "")
	m.addPattern("", "")
	if len(m.rules) != 0 {
		t.Fatalf("expected no rules from comments/blank lines, got %d", len(m.rules))
	}
}
