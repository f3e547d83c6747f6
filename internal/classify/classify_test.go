package classify

import (
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        Category
	}{
		{"empty string", "", Other},
		{"whitespace only", "   ", Other},
		{"no keyword match", "zzz nonsense qqq", Other},
		{"coffee is food", "coffee with friends", FoodDining},
		{"case insensitive", "COFFEE AT STARBUCKS", FoodDining},
		{"grocery run", "weekly grocery run", Groceries},
		{"gas station", "gas fill up", Transportation},
		{"pharmacy", "cvs pharmacy", Healthcare},
		{"electric bill", "electric bill march", Utilities},
		{"movie night", "movie tickets", Entertainment},
		{"amazon order", "amazon order", Shopping},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.description); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.description, got, tt.want)
			}
		})
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	// A description matching two categories resolves to whichever is scanned
	// first: Healthcare, Transportation, Groceries, Food & Dining, Utilities,
	// Entertainment, Shopping, Other.
	tests := []struct {
		description string
		want        Category
	}{
		{"doctor shopping trip", Healthcare},
		{"pharmacy shopping", Healthcare},
		{"gas station coffee", Transportation},
		{"supermarket restaurant", Groceries},
		{"dinner and a movie", FoodDining},
	}

	for _, tt := range tests {
		if got := Classify(tt.description); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.description, got, tt.want)
		}
	}
}

func TestClassifyIdempotent(t *testing.T) {
	inputs := []string{"", "coffee", "doctor shopping trip", "zzz"}
	for _, in := range inputs {
		first := Classify(in)
		second := Classify(in)
		if first != second {
			t.Errorf("Classify(%q) not deterministic: %q then %q", in, first, second)
		}
	}
}

func TestClassifyTotality(t *testing.T) {
	inputs := []string{"", " ", "\t\n", "12345", "ünïcödé", strings.Repeat("x", 1000)}
	for _, in := range inputs {
		if got := Classify(in); !Valid(string(got)) {
			t.Errorf("Classify(%q) = %q, not in the category set", in, got)
		}
	}
}

func TestSuggestShortInput(t *testing.T) {
	// "é" is one rune but two bytes; it must count as short input.
	for _, partial := range []string{"a", "é", " x "} {
		got := Suggest(partial)
		want := All()
		if len(got) != len(want) {
			t.Fatalf("Suggest(%q) returned %d categories, want %d", partial, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("Suggest(%q)[%d] = %q, want %q (declaration order)", partial, i, got[i], want[i])
			}
		}
	}
}

func TestSuggestRanked(t *testing.T) {
	got := Suggest("coffee shopping bill")
	if len(got) == 0 || len(got) > 3 {
		t.Fatalf("Suggest returned %d entries, want 1..3", len(got))
	}
	for _, cat := range got {
		if !Valid(string(cat)) {
			t.Errorf("suggestion %q not in category set", cat)
		}
	}
	// "shopping" + "shop" (12) beats "coffee" (6) beats "bill" (4).
	want := []Category{Shopping, FoodDining, Utilities}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Suggest()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSuggestExcludesZeroScore(t *testing.T) {
	got := Suggest("coffee")
	for _, cat := range got {
		if cat == Healthcare || cat == Other {
			t.Errorf("Suggest('coffee') included non-matching category %q", cat)
		}
	}
}

func TestSuggestNoMatch(t *testing.T) {
	if got := Suggest("zzz nonsense qqq"); len(got) != 0 {
		t.Errorf("Suggest(no match) = %v, want empty", got)
	}
}

func TestValid(t *testing.T) {
	for _, cat := range All() {
		if !Valid(string(cat)) {
			t.Errorf("Valid(%q) = false", cat)
		}
	}
	if Valid("Gambling") {
		t.Error("Valid('Gambling') = true")
	}
	if Valid("") {
		t.Error("Valid('') = true")
	}
}

func TestIconAndColors(t *testing.T) {
	for _, cat := range All() {
		if Icon(cat) == "" {
			t.Errorf("Icon(%q) empty", cat)
		}
		colors := Colors(cat)
		if colors.Background == "" || colors.Foreground == "" {
			t.Errorf("Colors(%q) incomplete: %+v", cat, colors)
		}
	}

	if got := Icon(Category("Unknown")); got != Icon(Other) {
		t.Errorf("Icon(unknown) = %q, want default %q", got, Icon(Other))
	}
	if got := Colors(Category("Unknown")); got != Colors(Other) {
		t.Errorf("Colors(unknown) = %+v, want default", got)
	}
}
