package profile

import "testing"

func TestMake_Options(t *testing.T) {
	cfg := Make(
		WithMode("cpu"),
		WithPath("/tmp/prof"),
		WithQuiet(true),
	)

	want := Config{mode: "cpu", path: "/tmp/prof", quiet: true}
	if cfg != want {
		t.Errorf("Make = %+v, want %+v", cfg, want)
	}
}

func TestConfig_StartUnsetMode(t *testing.T) {
	// Must return a stoppable no-op handle.
	p := Make().Start()
	p.Stop()
	p.Stop()
}
