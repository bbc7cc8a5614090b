package telegram

import (
	"strings"
)

// CommandKind вид команды бота
type CommandKind int

const (
	CommandNone CommandKind = iota
	CommandHelp
	CommandRecognize
	CommandViewResults
)

// String имя команды для логов и метрик
func (k CommandKind) String() string {
	switch k {
	case CommandHelp:
		return "tagger"
	case CommandRecognize:
		return "rec"
	case CommandViewResults:
		return "view-results"
	default:
		return "none"
	}
}

// Command разобранная команда и её аргумент
type Command struct {
	Kind CommandKind
	Arg  string
}

var commandNames = map[string]CommandKind{
	"start":               CommandHelp,
	"help":                CommandHelp,
	"tagger":              CommandHelp,
	"tagger.rec":          CommandRecognize,
	"rec":                 CommandRecognize,
	"tagger.view-results": CommandViewResults,
	"tagger.view_results": CommandViewResults,
	"view-results":        CommandViewResults,
	"view_results":        CommandViewResults,
}

var subcommandNames = map[string]CommandKind{
	"rec":          CommandRecognize,
	"view-results": CommandViewResults,
	"view_results": CommandViewResults,
}

// ParseCommand разбирает текст сообщения. botName — имя бота без "@";
// команды, адресованные другому боту, игнорируются.
func ParseCommand(text, botName string) (Command, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return Command{}, false
	}

	head, rest, _ := strings.Cut(text[1:], " ")
	if i := strings.IndexAny(head, "\n\t"); i >= 0 {
		rest = head[i+1:] + " " + rest
		head = head[:i]
	}

	name, target, addressed := strings.Cut(head, "@")
	if addressed && botName != "" && !strings.EqualFold(target, botName) {
		return Command{}, false
	}

	kind, ok := commandNames[strings.ToLower(name)]
	if !ok {
		return Command{}, false
	}

	rest = strings.TrimSpace(rest)
	if strings.EqualFold(name, "tagger") {
		sub, subRest, _ := strings.Cut(rest, " ")
		if subKind, ok := subcommandNames[strings.ToLower(sub)]; ok {
			kind = subKind
			rest = strings.TrimSpace(subRest)
		}
	}

	return Command{Kind: kind, Arg: rest}, true
}

// firstArg первое слово аргумента
func (c Command) firstArg() string {
	fields := strings.Fields(c.Arg)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
