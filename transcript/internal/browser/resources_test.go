package browser

import "testing"

func TestShouldBlock(t *testing.T) {
	set := blockSet([]string{"Images", " media ", "xhr"})

	cases := map[string]bool{
		"Image":      true,
		"Media":      true,
		"Font":       false,
		"Stylesheet": false,
		"XHR":        true,
		"Document":   false,
	}
	for typ, want := range cases {
		if got := shouldBlock(set, typ); got != want {
			t.Errorf("shouldBlock(%q): got %v, want %v", typ, got, want)
		}
	}
}

func TestParseMode(t *testing.T) {
	if ParseMode("headful") != ModeHeadful {
		t.Error("headful")
	}
	if ParseMode("headless") != ModeHeadless || ParseMode("") != ModeHeadless {
		t.Error("headless")
	}
	if ModeHeadful.String() != "headful" || ModeHeadless.String() != "headless" {
		t.Error("String")
	}
}
