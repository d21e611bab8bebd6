package observation

import "testing"

func TestIsMeaningfulByStructure(t *testing.T) {
	cases := map[string]bool{
		"get_user":  true,
		"a":         false,
		"x":         false,
		"compute":   true,
		"HTTPError": true,
		"id":        false,
	}
	for name, want := range cases {
		if got := isMeaningfulByStructure(name); got != want {
			t.Errorf("isMeaningfulByStructure(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestIsBuiltinOrCommon(t *testing.T) {
	if !isBuiltinOrCommon("len") {
		t.Error("expected len to be a recognized builtin")
	}
	if isBuiltinOrCommon("parse_config") {
		t.Error("did not expect parse_config to be a builtin")
	}
}

func TestCleanPurposeTruncatesAtFirstBlankLine(t *testing.T) {
	doc := "Loads the project config.\n\nRaises if the file is missing."
	got := cleanPurpose(doc)
	if got != "Loads the project config." {
		t.Errorf("unexpected purpose: %q", got)
	}
}

func TestFirstSentence(t *testing.T) {
	got := firstSentence("Handles incoming webhooks. Validates signatures too.")
	if got != "Handles incoming webhooks" {
		t.Errorf("unexpected sentence: %q", got)
	}
}
