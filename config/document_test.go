package config

import (
	"errors"
	"slices"
	"testing"
)

func TestDocument_EndToEnd(t *testing.T) {
	const text = "A = 1\nB = 2,3,4\nC:\n  D = .true.\n"

	doc := mustParse(t, text, true)

	if got := doc.String(); got != text {
		t.Fatalf("String() = %q, want %q", got, text)
	}

	b, err := doc.Get("B")
	if err != nil {
		t.Fatalf("Get(B): %v", err)
	}

	if err := b.(*List).Set(1, 30); err != nil {
		t.Fatalf("list Set(1, 30): %v", err)
	}

	if got, want := doc.String(), "A = 1\nB = 2,30,4\nC:\n  D = .true.\n"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestDocument_SetScalar(t *testing.T) {
	doc := mustParse(t, "DT = 900.0\nTITLE = 'run a'\n", true)

	if err := doc.Set("DT", 1800.0); err != nil {
		t.Fatalf("Set(DT): %v", err)
	}

	if err := doc.Set("TITLE", "run b"); err != nil {
		t.Fatalf("Set(TITLE): %v", err)
	}

	if got, want := doc.String(), "DT = 1800.0\nTITLE = 'run b'\n"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	v, err := doc.Get("DT")
	if err != nil {
		t.Fatalf("Get(DT): %v", err)
	}

	if v != 1800.0 {
		t.Errorf("Get(DT) = %#v, want 1800.0", v)
	}
}

func TestDocument_SetSameValueKeepsText(t *testing.T) {
	const text = "A = 1\nF = 2.5\nS = 'str'\nL = .true.\n"

	doc := mustParse(t, text, true)

	for _, key := range []string{"A", "F", "S", "L"} {
		v, err := doc.Get(key)
		if err != nil {
			t.Fatalf("Get(%q): %v", key, err)
		}

		if err := doc.Set(key, v); err != nil {
			t.Fatalf("Set(%q, Get(%q)): %v", key, key, err)
		}
	}

	if got := doc.String(); got != text {
		t.Errorf("String() = %q, want %q", got, text)
	}
}

func TestDocument_SetTypeGuard(t *testing.T) {
	const text = "FLAG = .true.\n"

	doc := mustParse(t, text, true)

	if err := doc.Set("FLAG", false); err != nil {
		t.Fatalf("Set(FLAG, false): %v", err)
	}

	if err := doc.Set("FLAG", 1); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Set(FLAG, 1) = %v, want ErrTypeMismatch", err)
	}

	if got, want := doc.String(), "FLAG = .false.\n"; got != want {
		t.Errorf("String() = %q, want %q after rejected edit", got, want)
	}
}

func TestDocument_SetMissingKey(t *testing.T) {
	doc := mustParse(t, "A = 1\n", true)

	if err := doc.Set("B", 2); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Set(B) = %v, want ErrKeyNotFound", err)
	}

	if _, err := doc.Get("B"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get(B) = %v, want ErrKeyNotFound", err)
	}
}

func TestDocument_SetNull(t *testing.T) {
	doc := mustParse(t, "PATTERN =\n", true)

	if !doc.Contains("PATTERN") {
		t.Fatal("Contains(PATTERN) = false, want true")
	}

	v, err := doc.Get("PATTERN")
	if err != nil {
		t.Fatalf("Get(PATTERN): %v", err)
	}

	if v != nil {
		t.Errorf("Get(PATTERN) = %#v, want nil", v)
	}

	if err := doc.Set("PATTERN", nil); err != nil {
		t.Errorf("Set(PATTERN, nil) = %v, want no-op", err)
	}

	if err := doc.Set("PATTERN", 1); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Set(PATTERN, 1) = %v, want ErrTypeMismatch", err)
	}

	if got, want := doc.String(), "PATTERN =\n"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestDocument_SetBlock(t *testing.T) {
	doc := mustParse(t, "C:\n  D = .true.\n", true)

	if err := doc.Set("C", 1); !errors.Is(err, ErrStructuralEdit) {
		t.Errorf("Set(C, 1) = %v, want ErrStructuralEdit", err)
	}

	c, err := doc.Get("C")
	if err != nil {
		t.Fatalf("Get(C): %v", err)
	}

	if err := c.(*Document).Set("D", false); err != nil {
		t.Fatalf("nested Set(D): %v", err)
	}

	if got, want := doc.String(), "C:\n  D = .false.\n"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestDocument_SetList(t *testing.T) {
	const text = "B = 2,3,4\n"

	t.Run("replace", func(t *testing.T) {
		doc := mustParse(t, text, true)

		if err := doc.Set("B", []any{9, 8, 7}); err != nil {
			t.Fatalf("Set(B): %v", err)
		}

		if got, want := doc.String(), "B = 9,8,7\n"; got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	})

	t.Run("length guard", func(t *testing.T) {
		doc := mustParse(t, text, true)

		if err := doc.Set("B", []any{9, 8}); !errors.Is(err, ErrLengthMismatch) {
			t.Errorf("Set(B, 2 elements) = %v, want ErrLengthMismatch", err)
		}

		if got := doc.String(); got != text {
			t.Errorf("String() = %q, want %q after rejected edit", got, text)
		}
	})

	t.Run("element type guard", func(t *testing.T) {
		doc := mustParse(t, text, true)

		if err := doc.Set("B", []any{9, "x", 7}); !errors.Is(err, ErrTypeMismatch) {
			t.Errorf("Set(B, mixed) = %v, want ErrTypeMismatch", err)
		}

		// The first element passed its check; nothing may have been written.
		if got := doc.String(); got != text {
			t.Errorf("String() = %q, want %q after rejected edit", got, text)
		}
	})

	t.Run("scalar rejected", func(t *testing.T) {
		doc := mustParse(t, text, true)

		if err := doc.Set("B", 9); !errors.Is(err, ErrTypeMismatch) {
			t.Errorf("Set(B, 9) = %v, want ErrTypeMismatch", err)
		}
	})
}

func TestDocument_CaseFolding(t *testing.T) {
	t.Run("insensitive", func(t *testing.T) {
		doc := mustParse(t, "Foo = 1\n", false)

		if err := doc.Set("foo", 2); err != nil {
			t.Fatalf("Set(foo): %v", err)
		}

		v, err := doc.Get("FOO")
		if err != nil {
			t.Fatalf("Get(FOO): %v", err)
		}

		if v != 2 {
			t.Errorf("Get(FOO) = %#v, want 2", v)
		}

		if got := slices.Collect(doc.Keys()); !slices.Equal(got, []string{"FOO"}) {
			t.Errorf("Keys() = %v, want [FOO]", got)
		}

		if got, want := doc.String(), "Foo = 2\n"; got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	})

	t.Run("sensitive", func(t *testing.T) {
		doc := mustParse(t, "Foo = 1\n", true)

		if _, err := doc.Get("FOO"); !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("Get(FOO) = %v, want ErrKeyNotFound", err)
		}

		if _, err := doc.Get("Foo"); err != nil {
			t.Errorf("Get(Foo) = %v, want value", err)
		}
	})
}

func TestDocument_Delete(t *testing.T) {
	const text = "A = 1\nB = 2,3,4\nC:\n  D = .true.\n"

	t.Run("list key", func(t *testing.T) {
		doc := mustParse(t, text, true)

		if err := doc.Delete("B"); err != nil {
			t.Fatalf("Delete(B): %v", err)
		}

		if doc.Contains("B") {
			t.Error("Contains(B) = true after delete")
		}

		if _, err := doc.Get("B"); !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("Get(B) = %v, want ErrKeyNotFound", err)
		}

		if err := doc.Delete("B"); !errors.Is(err, ErrKeyNotFound) {
			t.Errorf("Delete(B) again = %v, want ErrKeyNotFound", err)
		}

		if got, want := doc.String(), "A = 1\nC:\n  D = .true.\n"; got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}

		if got := slices.Collect(doc.Keys()); !slices.Equal(got, []string{"A", "C"}) {
			t.Errorf("Keys() = %v, want [A C]", got)
		}
	})

	t.Run("block key", func(t *testing.T) {
		doc := mustParse(t, text, true)

		if err := doc.Delete("C"); err != nil {
			t.Fatalf("Delete(C): %v", err)
		}

		if got, want := doc.String(), "A = 1\nB = 2,3,4\n"; got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	})

	t.Run("nested key", func(t *testing.T) {
		doc := mustParse(t, text, true)

		c, err := doc.Get("C")
		if err != nil {
			t.Fatalf("Get(C): %v", err)
		}

		if err := c.(*Document).Delete("D"); err != nil {
			t.Fatalf("nested Delete(D): %v", err)
		}

		if got, want := doc.String(), "A = 1\nB = 2,3,4\nC:\n"; got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	})
}

func TestDocument_NotationPreserved(t *testing.T) {
	doc := mustParse(t, "F = 1.000000D-08\n", true)

	v, err := doc.Get("F")
	if err != nil {
		t.Fatalf("Get(F): %v", err)
	}

	if v != 1e-08 {
		t.Fatalf("Get(F) = %#v, want 1e-08", v)
	}

	if err := doc.Set("F", -8.0); err != nil {
		t.Fatalf("Set(F, -8.0): %v", err)
	}

	if got, want := doc.String(), "F = -8D+00\n"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestDocument_DuplicateKeys(t *testing.T) {
	doc := mustParse(t, "X = 1\nY = 2\nX = 3\n", true)

	v, err := doc.Get("X")
	if err != nil {
		t.Fatalf("Get(X): %v", err)
	}

	if v != 3 {
		t.Errorf("Get(X) = %#v, want last occurrence 3", v)
	}

	if got := slices.Collect(doc.Keys()); !slices.Equal(got, []string{"X", "Y"}) {
		t.Errorf("Keys() = %v, want first-occurrence order [X Y]", got)
	}

	// Delete detaches the statement the key resolves to, which after
	// last-write-wins is the second occurrence.
	if err := doc.Delete("X"); err != nil {
		t.Fatalf("Delete(X): %v", err)
	}

	if got, want := doc.String(), "X = 1\nY = 2\n"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	if doc.Contains("X") {
		t.Error("Contains(X) = true after delete")
	}
}

func TestDocument_Len(t *testing.T) {
	doc := mustParse(t, "A = 1\nB = 2\n", true)

	if doc.Len() != 2 {
		t.Errorf("Len() = %d, want 2", doc.Len())
	}

	if err := doc.Delete("A"); err != nil {
		t.Fatalf("Delete(A): %v", err)
	}

	if doc.Len() != 1 {
		t.Errorf("Len() = %d, want 1", doc.Len())
	}
}
