package tooltip

import (
	"testing"

	"github.com/vanderheijden86/proteoview/pkg/model"
)

func row() model.Row {
	return model.Row{
		"Primary Accession": model.ParseValue("P02768"),
		"Gene":              model.ParseValue("ALB"),
		"log2FC":            model.ParseValue("2.34567"),
		"neglog10p":         model.ParseValue("7"),
	}
}

func TestContentOrderAndFormat(t *testing.T) {
	b := Builder{IDColumn: "Primary Accession", IDLabel: "Protein", Details: []string{"log2FC", "Gene", "neglog10p"}}
	got := b.Content(row())
	want := []Field{
		{"Protein", "P02768"},
		{"log2FC", "2.35"},
		{"Gene", "ALB"},
		{"neglog10p", "7.00"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d fields, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestContentShowsZeroAsTyped(t *testing.T) {
	r := model.Row{
		"id": model.ParseValue("P1"),
		"fc": model.ParseValue("0"),
		"p":  model.ParseValue("0.0"),
	}
	got := Builder{IDColumn: "id", Details: []string{"fc", "p"}}.Content(r)
	if got[1].Value != "0" || got[2].Value != "0.0" {
		t.Errorf("fields = %+v", got)
	}
}

func TestContentSkipsDuplicateID(t *testing.T) {
	b := Builder{IDColumn: "Gene", Details: []string{"Gene", "log2FC"}}
	got := b.Content(row())
	if len(got) != 2 || got[0].Label != "Gene" || got[1].Label != "log2FC" {
		t.Errorf("unexpected fields %+v", got)
	}
}

func TestText(t *testing.T) {
	s := Text([]Field{{"a", "1"}, {"b", "2"}})
	if s != "a: 1\nb: 2" {
		t.Errorf("Text = %q", s)
	}
}

func TestStateLifecycle(t *testing.T) {
	var s State
	s.Enter([]Field{{"id", "x"}}, 100, 50)
	if !s.Visible || s.X != 120 || s.Y != 45 {
		t.Fatalf("after Enter: %+v", s)
	}
	s.Move(10, 10)
	if s.X != 30 || s.Y != 5 {
		t.Errorf("after Move: %+v", s)
	}
	s.Leave()
	if s.Visible || s.Fields != nil {
		t.Errorf("after Leave: %+v", s)
	}
}

func TestRecordURL(t *testing.T) {
	cases := []struct {
		base, id, want string
	}{
		{"", "P02768", "https://salivaryproteome.org/protein/P02768"},
		{"https://example.org/p/", "A B/C", "https://example.org/p/A%20B%2FC"},
		{"https://example.org/p/", " Q9 ", "https://example.org/p/%20Q9%20"},
		{"", "a&b=c+d", "https://salivaryproteome.org/protein/a%26b%3Dc%2Bd"},
		{"", "x:y@z$1,2;3?#", "https://salivaryproteome.org/protein/x%3Ay%40z%241%2C2%3B3%3F%23"},
		{"", "keep-_.!~*'()", "https://salivaryproteome.org/protein/keep-_.!~*'()"},
		{"", "é", "https://salivaryproteome.org/protein/%C3%A9"},
	}
	for _, c := range cases {
		if got := RecordURL(c.base, c.id); got != c.want {
			t.Errorf("RecordURL(%q, %q) = %q, want %q", c.base, c.id, got, c.want)
		}
	}
}
