package commands

import (
	"errors"
	"testing"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"/add morning run freq:daily", TypeAdd},
		{"done morning run", TypeDone},
		{"redeem movie night", TypeRedeem},
		{"show habits cat:Health", TypeShow},
		{"/export backup.json", TypeExport},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseAddExtractsFrequencyAndCategory(t *testing.T) {
	cmd, err := Parse("/add read 20 pages freq:weekly cat:Learning")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Add.Name != "read 20 pages" {
		t.Fatalf("unexpected name: %q", cmd.Add.Name)
	}
	if cmd.Add.Frequency != "weekly" {
		t.Fatalf("unexpected frequency: %q", cmd.Add.Frequency)
	}
	if cmd.Add.Category != "Learning" {
		t.Fatalf("unexpected category: %q", cmd.Add.Category)
	}
}

func TestParseShowCategoryFilter(t *testing.T) {
	cmd, err := Parse("show habits cat:Health")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Show.Subject != "habits" || cmd.Show.Category != "Health" {
		t.Fatalf("unexpected show args: %+v", cmd.Show)
	}
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := Parse("/unknown do x")
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeUnknownCommand {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestParseEmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "/"} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeEmptyInput {
			t.Fatalf("parse %q: expected empty input error, got %v", in, err)
		}
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/done morning run")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Done: func(a DoneArgs) (Result, error) {
			called = true
			if a.Target != "morning run" {
				t.Fatalf("unexpected target: %q", a.Target)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	cmd, err := Parse("show habits")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	_, err = Execute(cmd, Handlers{})
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
		t.Fatalf("expected missing handler error, got %v", err)
	}
}
