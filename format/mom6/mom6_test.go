package mom6

import (
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/confit/config"
)

const complexInput = `
/* This is a comment
   spanning two lines */
REGRIDDING_COORDINATE_MODE = Z*
KPP%
N_SMOOTH = 4
%KPP

#COMMENT_DIRECTIVE = 1
# INCORRECT_DIRECTIVE = 2
#override IGNORED_DIRECTIVE = 3
DT = 1800.0  ! This is a comment
! This is another comment
!COMMENTED_VAR = 3
TO_BE_REMOVED = 10.0
BOOL = True
`

const complexModified = `
/* This is a comment
   spanning two lines */
REGRIDDING_COORDINATE_MODE = Z*
KPP%
N_SMOOTH = 4
%KPP

#COMMENT_DIRECTIVE = 1
# INCORRECT_DIRECTIVE = 2
#override IGNORED_DIRECTIVE = 3
DT = 900.0  ! This is a comment
! This is another comment
!COMMENTED_VAR = 3
BOOL = True


ADDED_VAR = 32
`

func TestParse_RoundTrip(t *testing.T) {
	doc, err := Parse(complexInput)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if got := doc.String(); got != complexInput {
		t.Errorf("String() = %q, want input unchanged", got)
	}
}

func TestParse_Values(t *testing.T) {
	doc, err := Parse(complexInput)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	mode, err := doc.Get("REGRIDDING_COORDINATE_MODE")
	if err != nil {
		t.Fatalf("Get(REGRIDDING_COORDINATE_MODE): %v", err)
	}

	if mode != "Z*" {
		t.Errorf("mode = %#v, want Z*", mode)
	}

	// Keys are case-insensitive.
	dt, err := doc.Get("dt")
	if err != nil {
		t.Fatalf("Get(dt): %v", err)
	}

	if dt != 1800.0 {
		t.Errorf("dt = %#v, want 1800.0", dt)
	}

	b, err := doc.Get("BOOL")
	if err != nil {
		t.Fatalf("Get(BOOL): %v", err)
	}

	if b != true {
		t.Errorf("BOOL = %#v, want true", b)
	}

	kpp, err := doc.Get("KPP")
	if err != nil {
		t.Fatalf("Get(KPP): %v", err)
	}

	block, ok := kpp.(*config.Document)
	if !ok {
		t.Fatalf("Get(KPP) = %T, want *config.Document", kpp)
	}

	n, err := block.Get("n_smooth")
	if err != nil {
		t.Fatalf("block Get(n_smooth): %v", err)
	}

	if n != 4 {
		t.Errorf("n_smooth = %#v, want 4", n)
	}

	// Directive and comment lines are raw text, not keys.
	for _, key := range []string{"COMMENT_DIRECTIVE", "IGNORED_DIRECTIVE", "COMMENTED_VAR"} {
		if doc.Contains(key) {
			t.Errorf("Contains(%q) = true, want raw text", key)
		}
	}
}

func TestEdit_RoundTrip(t *testing.T) {
	doc, err := Parse(complexInput)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if err := doc.Set("dt", 900.0); err != nil {
		t.Fatalf("Set(dt): %v", err)
	}

	if err := doc.Delete("TO_BE_REMOVED"); err != nil {
		t.Fatalf("Delete(TO_BE_REMOVED): %v", err)
	}

	doc, err = Add(doc, "ADDED_VAR", 32)
	if err != nil {
		t.Fatalf("Add(ADDED_VAR): %v", err)
	}

	added, err := doc.Get("ADDED_VAR")
	if err != nil {
		t.Fatalf("Get(ADDED_VAR): %v", err)
	}

	if added != 32 {
		t.Errorf("ADDED_VAR = %#v, want 32", added)
	}

	if got := doc.String(); got != complexModified {
		t.Errorf("String() = %q, want %q", got, complexModified)
	}
}

func TestAdd_ExistingKey(t *testing.T) {
	doc, err := Parse("DT = 900.0\n")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if _, err := Add(doc, "dt", 1.0); err == nil {
		t.Error("Add(dt) = nil error, want rejection for existing key")
	}
}

func TestWritePlain(t *testing.T) {
	entries := map[string]any{
		"REGRIDDING_COORDINATE_MODE": "ZSTAR",
		"N_SMOOTH":                   4,
		"INCORRECT_DIRECTIVE":        2,
		"IGNORED_DIRECTIVE":          3,
		"DT":                         1800.0,
		"BOOL":                       true,
	}

	want := `BOOL = True
DT = 1800.0
IGNORED_DIRECTIVE = 3
INCORRECT_DIRECTIVE = 2
N_SMOOTH = 4
REGRIDDING_COORDINATE_MODE = 'ZSTAR'
`

	var sb strings.Builder
	if err := WritePlain(&sb, entries); err != nil {
		t.Fatalf("WritePlain: %v", err)
	}

	if got := sb.String(); got != want {
		t.Errorf("WritePlain = %q, want %q", got, want)
	}
}

func TestParse_Lists(t *testing.T) {
	doc, err := Parse("LAYOUT = 2, 4\nEOS = (1.0, 2.0)\n")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	v, err := doc.Get("LAYOUT")
	if err != nil {
		t.Fatalf("Get(LAYOUT): %v", err)
	}

	list, ok := v.(*config.List)
	if !ok {
		t.Fatalf("Get(LAYOUT) = %T, want *config.List", v)
	}

	if list.Len() != 2 || list.At(0) != 2 || list.At(1) != 4 {
		t.Errorf("LAYOUT = %v, want [2 4]", list.Values())
	}

	// A parenthesized pair is one complex value, not a two-element list.
	eos, err := doc.Get("EOS")
	if err != nil {
		t.Fatalf("Get(EOS): %v", err)
	}

	if eos != complex(1.0, 2.0) {
		t.Errorf("EOS = %#v, want (1+2i)", eos)
	}
}

func TestParse_InlineBlockKey(t *testing.T) {
	doc, err := Parse("KPP%N_SMOOTH = 4\n")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	v, err := doc.Get("KPP%N_SMOOTH")
	if err != nil {
		t.Fatalf("Get(KPP%%N_SMOOTH): %v", err)
	}

	if v != 4 {
		t.Errorf("KPP%%N_SMOOTH = %#v, want 4", v)
	}
}

func TestParse_Errors(t *testing.T) {
	for _, tt := range []struct {
		name string
		text string
	}{
		{"unterminated block", "KPP%\nN_SMOOTH = 4\n"},
		{"unmatched terminator", "%KPP\n"},
		{"wrong terminator", "KPP%\nN_SMOOTH = 4\n%CVMIX\n"},
		{"missing assignment", "JUST SOME WORDS\n"},
		{"unterminated comment", "/* no end\nDT = 1.0\n"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			if err == nil {
				t.Fatal("expected parse error")
			}

			if !errors.Is(err, config.ErrParse) {
				t.Errorf("errors.Is(err, ErrParse) = false for %v", err)
			}
		})
	}
}
