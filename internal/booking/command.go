package booking

import "strings"

// Command is a REPL keyword recognized before a line is treated as a
// flight request
type Command string

const (
	CmdNone    Command = ""
	CmdQuit    Command = "quit"
	CmdCheck   Command = "check"
	CmdHelp    Command = "help"
	CmdUsage   Command = "usage"
	CmdHistory Command = "history"
)

// ParseCommand extracts the command and its argument. Anything that is not a
// command returns CmdNone and the trimmed line.
func ParseCommand(line string) (Command, string) {
	line = strings.TrimSpace(line)

	parts := strings.SplitN(line, " ", 2)
	word := strings.ToLower(parts[0])
	args := ""
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}

	switch word {
	case "quit", "exit", "q":
		if args == "" {
			return CmdQuit, ""
		}
	case "check":
		return CmdCheck, args
	case "help", "usage", "history":
		if args == "" {
			return Command(word), ""
		}
	}
	return CmdNone, line
}

// menu answers while choosing among presented options
func isCancel(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "no", "n", "cancel":
		return true
	}
	return false
}

func isShowMore(answer string) bool {
	return strings.EqualFold(strings.Join(strings.Fields(answer), " "), "show more")
}
