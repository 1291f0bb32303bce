package cmd

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

func TestError_SentinelDerivation(t *testing.T) {
	t.Run("with keeps identity", func(t *testing.T) {
		err := ErrBadValue.With(slog.String("value", "nope"))

		if !errors.Is(err, ErrBadValue) {
			t.Errorf("errors.Is(%v, ErrBadValue) = false", err)
		}

		if errors.Is(err, ErrUnknownFormat) {
			t.Errorf("errors.Is(%v, ErrUnknownFormat) = true", err)
		}
	})

	t.Run("wrap keeps identity and cause", func(t *testing.T) {
		err := ErrReadSource.Wrap(io.ErrUnexpectedEOF)

		if !errors.Is(err, ErrReadSource) {
			t.Errorf("errors.Is(%v, ErrReadSource) = false", err)
		}

		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("errors.Is(%v, io.ErrUnexpectedEOF) = false", err)
		}
	})

	t.Run("chained derivation", func(t *testing.T) {
		err := ErrBadSelection.
			With(slog.String("generator", "om3")).
			Wrap(errors.New("boom")).
			With(slog.Int("nodes", 0))

		if !errors.Is(err, ErrBadSelection) {
			t.Errorf("errors.Is(%v, ErrBadSelection) = false", err)
		}
	})
}
