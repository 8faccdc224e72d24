package commands

import (
	"fmt"
	"strings"
)

type Type string

const (
	TypeAdd    Type = "add"
	TypeDone   Type = "done"
	TypeRedeem Type = "redeem"
	TypeShow   Type = "show"
	TypeExport Type = "export"
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

type AddArgs struct {
	Name      string
	Frequency string
	Category  string
}

type DoneArgs struct {
	Target string
}

type RedeemArgs struct {
	Target string
}

type ShowArgs struct {
	Subject  string
	Category string
}

type ExportArgs struct {
	Path string
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Done   *DoneArgs
	Redeem *RedeemArgs
	Show   *ShowArgs
	Export *ExportArgs
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
	case TypeAdd:
		return parseAdd(input, args)
	case TypeDone:
		return parseDone(input, args)
	case TypeRedeem:
		return parseRedeem(input, args)
	case TypeShow:
		return parseShow(input, args)
	case TypeExport:
		return parseExport(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a habit name"}
	}
	parsed := AddArgs{}
	nameParts := make([]string, 0, len(args))
	for _, arg := range args {
		lower := strings.ToLower(arg)
		switch {
		case strings.HasPrefix(lower, "freq:"):
			parsed.Frequency = strings.TrimSpace(strings.TrimPrefix(lower, "freq:"))
		case strings.HasPrefix(lower, "cat:"):
			parsed.Category = strings.TrimSpace(arg[len("cat:"):])
		default:
			nameParts = append(nameParts, arg)
		}
	}
	parsed.Name = strings.TrimSpace(strings.Join(nameParts, " "))
	if parsed.Name == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a habit name"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &parsed}, nil
}

func parseDone(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "done requires a habit name or id"}
	}
	return Command{Type: TypeDone, Raw: raw, Done: &DoneArgs{Target: strings.Join(args, " ")}}, nil
}

func parseRedeem(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "redeem requires a reward name or id"}
	}
	return Command{Type: TypeRedeem, Raw: raw, Redeem: &RedeemArgs{Target: strings.Join(args, " ")}}, nil
}

func parseShow(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "show requires a subject"}
	}
	subject := strings.ToLower(args[0])
	category := ""
	for _, arg := range args[1:] {
		if strings.HasPrefix(strings.ToLower(arg), "cat:") {
			category = strings.TrimSpace(arg[len("cat:"):])
		}
	}
	return Command{Type: TypeShow, Raw: raw, Show: &ShowArgs{Subject: subject, Category: category}}, nil
}

func parseExport(raw string, args []string) (Command, error) {
	path := ""
	if len(args) > 0 {
		path = strings.Join(args, " ")
	}
	return Command{Type: TypeExport, Raw: raw, Export: &ExportArgs{Path: path}}, nil
}
