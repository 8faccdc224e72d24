package notify

import "testing"

type stubBackend struct{ available bool }

func (s stubBackend) Available() bool { return s.available }

func TestCheckAndRequestPermissionsGrantsOnFirstUsableBackend(t *testing.T) {
	res := CheckAndRequestPermissions(stubBackend{available: false}, stubBackend{available: true})
	if !res.Granted {
		t.Fatalf("expected granted, got %+v", res)
	}
	if res.NeedsManualSetup {
		t.Fatalf("granted result must not ask for manual setup")
	}
}

func TestCheckAndRequestPermissionsNeedsManualSetup(t *testing.T) {
	res := CheckAndRequestPermissions(stubBackend{available: false})
	if res.Granted {
		t.Fatalf("expected not granted")
	}
	if !res.NeedsManualSetup {
		t.Fatalf("expected manual setup flag")
	}
	if res.Platform == "" {
		t.Fatalf("expected platform tag")
	}
	if len(res.Instructions) == 0 {
		t.Fatalf("expected setup instructions")
	}
}

func TestManualSetupInstructionsPerPlatform(t *testing.T) {
	for _, goos := range []string{"windows", "darwin", "linux", "plan9"} {
		steps := manualSetupInstructions(goos)
		if len(steps) == 0 {
			t.Fatalf("%s: expected instructions", goos)
		}
	}
}
