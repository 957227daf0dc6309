package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Done      func(DoneArgs) (Result, error)
	Show      func(ShowArgs) (Result, error)
	Remind    func(RemindArgs) (Result, error)
	Reconcile func() (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeDone:
		if handlers.Done == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "done handler not configured"}
		}
		return handlers.Done(*cmd.Done)
	case TypeShow:
		if handlers.Show == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "show handler not configured"}
		}
		return handlers.Show(*cmd.Show)
	case TypeRemind:
		if handlers.Remind == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "remind handler not configured"}
		}
		return handlers.Remind(*cmd.Remind)
	case TypeReconcile:
		if handlers.Reconcile == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "reconcile handler not configured"}
		}
		return handlers.Reconcile()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
