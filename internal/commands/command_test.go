package commands

import (
	"errors"
	"testing"

	"github.com/sandeepkv93/wird/internal/model"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"/done morning 3", TypeDone},
		{"done Evening all", TypeDone},
		{"show streak", TypeShow},
		{"/remind evening 17:15", TypeRemind},
		{"/reconcile", TypeReconcile},
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

func TestParseDoneArgs(t *testing.T) {
	cmd, err := Parse("/done morning 3")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Done.Routine != model.RoutineMorning || cmd.Done.Item != 3 || cmd.Done.Index() != 2 || cmd.Done.All {
		t.Fatalf("unexpected done args: %+v", cmd.Done)
	}
	cmd, err = Parse("done evening ALL")
	if err != nil || !cmd.Done.All {
		t.Fatalf("expected all items, got %+v err=%v", cmd.Done, err)
	}
}

func TestParseRemindArgs(t *testing.T) {
	cmd, err := Parse("/remind morning 04:45")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Remind.Routine != model.RoutineMorning || cmd.Remind.At.String() != "04:45" {
		t.Fatalf("unexpected remind args: %+v", cmd.Remind)
	}
}

func TestParseInvalidArguments(t *testing.T) {
	inputs := []string{
		"/done",
		"/done noon 1",
		"/done morning 0",
		"/done morning two",
		"/show",
		"/show tasks",
		"/remind evening 24:00",
		"/remind evening",
	}
	for _, in := range inputs {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
			t.Fatalf("parse %q: expected invalid argument, got %v", in, err)
		}
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

func TestParseEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "/"} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeEmptyInput {
			t.Fatalf("parse %q: expected empty input, got %v", in, err)
		}
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/done evening 2")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Done: func(a DoneArgs) (Result, error) {
			called = true
			if a.Routine != model.RoutineEvening || a.Index() != 1 {
				t.Fatalf("unexpected args: %+v", a)
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
	cmd, err := Parse("reconcile")
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
