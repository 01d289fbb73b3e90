package fraud

import (
	"reflect"
	"testing"
)

func TestScreen(t *testing.T) {
	s := NewScreener(DefaultKeywords())

	tests := []struct {
		name    string
		text    string
		flagged bool
		matches []string
	}{
		{"empty", "", false, []string{}},
		{"whitespace", " \n\t ", false, []string{}},
		{"clean", "Thanks for calling, your order ships tomorrow.", false, []string{}},
		{"case insensitive", "JOB GUARANTEE now", true, []string{"Job guarantee"}},
		{
			"placement call",
			"We offer a 100% placement guarantee and free classes",
			true,
			[]string{"100% placement guarantee", "Free classes"},
		},
		{
			"declaration order not text order",
			"Global offices will process your Refund",
			true,
			[]string{"Refund", "Global"},
		},
		{
			"nested phrases",
			"free classes we are not provided here",
			true,
			[]string{"Free classes", "Free classes we are not provided"},
		},
		{
			"trial",
			"you get + 45 days trial classes",
			true,
			[]string{"Trial classes", "+ 45 Days Trial Classes"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := s.Screen(tt.text)
			if v.Flagged != tt.flagged {
				t.Errorf("Flagged = %v, want %v", v.Flagged, tt.flagged)
			}
			if v.Matches == nil {
				t.Fatalf("Matches is nil")
			}
			if !reflect.DeepEqual(v.Matches, tt.matches) {
				t.Errorf("Matches = %q, want %q", v.Matches, tt.matches)
			}
		})
	}
}

func TestScreenIsDeterministic(t *testing.T) {
	s := NewScreener(DefaultKeywords())
	text := "Pay later with the lifetime membership, it is a free trial"

	first := s.Screen(text)
	for i := 0; i < 10; i++ {
		if got := s.Screen(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: %+v != %+v", i, got, first)
		}
	}
	want := []string{"Lifetime Membership", "Pay later", "Free trial"}
	if !reflect.DeepEqual(first.Matches, want) {
		t.Errorf("Matches = %q, want %q", first.Matches, want)
	}
}

func TestScreenerCopiesKeywords(t *testing.T) {
	list := KeywordList{"alpha", "beta"}
	s := NewScreener(list)
	list[0] = "gamma"

	if v := s.Screen("ALPHA"); !v.Flagged {
		t.Errorf("screener observed caller mutation")
	}
	if got := s.Keywords(); !reflect.DeepEqual(got, KeywordList{"alpha", "beta"}) {
		t.Errorf("Keywords() = %q", got)
	}
}

func TestCustomList(t *testing.T) {
	s := NewScreener(KeywordList{"wire transfer", "", "gift card"})
	v := s.Screen("Buy a Gift Card and send a wire transfer")
	want := []string{"wire transfer", "gift card"}
	if !v.Flagged || !reflect.DeepEqual(v.Matches, want) {
		t.Errorf("Screen = %+v, want %q", v, want)
	}
}

func TestDefaultKeywordsIsCopy(t *testing.T) {
	a := DefaultKeywords()
	a[0] = "changed"
	if b := DefaultKeywords(); b[0] != "Job guarantee" {
		t.Errorf("DefaultKeywords shares backing array")
	}
	if n := len(DefaultKeywords()); n != 23 {
		t.Errorf("len = %d, want 23", n)
	}
}
