package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandeepkv93/wird/internal/model"
)

type Type string

const (
	TypeDone      Type = "done"
	TypeShow      Type = "show"
	TypeRemind    Type = "remind"
	TypeReconcile Type = "reconcile"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// DoneArgs marks items of a routine. Items are 1-based as displayed; All
// marks every item.
type DoneArgs struct {
	Routine model.RoutineType
	Item    int
	All     bool
}

// Index is the 0-based item index.
func (a DoneArgs) Index() int { return a.Item - 1 }

type Subject string

const (
	SubjectStreak    Subject = "streak"
	SubjectWeek      Subject = "week"
	SubjectRecords   Subject = "records"
	SubjectReminders Subject = "reminders"
)

type ShowArgs struct {
	Subject Subject
}

type RemindArgs struct {
	Routine model.RoutineType
	At      model.TimeOfDay
}

type Command struct {
	Type   Type
	Raw    string
	Done   *DoneArgs
	Show   *ShowArgs
	Remind *RemindArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeDone:
		return parseDone(input, args)
	case TypeShow:
		return parseShow(input, args)
	case TypeRemind:
		return parseRemind(input, args)
	case TypeReconcile:
		return Command{Type: TypeReconcile, Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseRoutine(raw string) (model.RoutineType, error) {
	routine, err := model.ParseRoutineType(strings.ToLower(raw))
	if err != nil {
		return "", &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown routine %q (morning or evening)", raw)}
	}
	return routine, nil
}

func parseDone(raw string, args []string) (Command, error) {
	if len(args) != 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "done requires a routine and an item number or all"}
	}
	routine, err := parseRoutine(args[0])
	if err != nil {
		return Command{}, err
	}
	out := &DoneArgs{Routine: routine}
	if strings.EqualFold(args[1], "all") {
		out.All = true
	} else {
		n, convErr := strconv.Atoi(args[1])
		if convErr != nil || n < 1 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("item must be a positive number, got %q", args[1])}
		}
		out.Item = n
	}
	return Command{Type: TypeDone, Raw: raw, Done: out}, nil
}

func parseShow(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "show requires a subject"}
	}
	subject := Subject(strings.ToLower(args[0]))
	switch subject {
	case SubjectStreak, SubjectWeek, SubjectRecords, SubjectReminders:
	default:
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown subject %q", args[0])}
	}
	return Command{Type: TypeShow, Raw: raw, Show: &ShowArgs{Subject: subject}}, nil
}

func parseRemind(raw string, args []string) (Command, error) {
	if len(args) != 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "remind requires a routine and HH:MM"}
	}
	routine, err := parseRoutine(args[0])
	if err != nil {
		return Command{}, err
	}
	at, err := model.ParseTimeOfDay(args[1])
	if err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid time %q (HH:MM)", args[1])}
	}
	return Command{Type: TypeRemind, Raw: raw, Remind: &RemindArgs{Routine: routine, At: at}}, nil
}
