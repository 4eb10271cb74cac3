package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

var errNotLoggedIn = errors.New("not logged in, use 'login' or 'register'")

type command struct {
	usage   string
	help    string
	private bool
	run     func(a *App, ctx context.Context, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"register":  {usage: "register", help: "create an account", run: (*App).Register},
		"login":     {usage: "login", help: "sign in", run: (*App).Login},
		"logout":    {usage: "logout", help: "sign out", private: true, run: (*App).Logout},
		"list":      {usage: "list [category] [-f] [-q text]", help: "list notes, newest first", private: true, run: (*App).List},
		"show":      {usage: "show <id>", help: "show a note", private: true, run: (*App).Show},
		"add":       {usage: "add", help: "create a note", private: true, run: (*App).Add},
		"edit":      {usage: "edit <id>", help: "edit a note and attach more images", private: true, run: (*App).Edit},
		"fav":       {usage: "fav <id>", help: "toggle favorite", private: true, run: (*App).Fav},
		"delete":    {usage: "delete <id>", help: "delete a note", private: true, run: (*App).Delete},
		"rmimage":   {usage: "rmimage <id> <imageId>", help: "remove an image from a note", private: true, run: (*App).RemoveImage},
		"templates": {usage: "templates", help: "list note templates", private: true, run: (*App).Templates},
		"use":       {usage: "use <templateId> [title]", help: "create a note from a template", private: true, run: (*App).UseTemplate},
		"stats":     {usage: "stats", help: "show note statistics", private: true, run: (*App).Stats},
		"export":    {usage: "export <json|txt|md|pdf> [file]", help: "download notes", private: true, run: (*App).Export},
	}
}

// dispatch runs one input line. It reports false when the shell should exit.
func (a *App) dispatch(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	name, args := parts[0], parts[1:]

	switch name {
	case "exit", "quit":
		fmt.Fprintln(a.out, "Bye!")
		return false
	case "help":
		a.help(a.out)
		return true
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintln(a.out, "Unknown command:", name)
		return true
	}
	if cmd.private && !a.isLoggedIn() {
		printErr(a.out, errNotLoggedIn)
		return true
	}
	if err := cmd.run(a, ctx, args); err != nil {
		printErr(a.out, err)
	}
	return true
}

func (a *App) repl(ctx context.Context) {
	for {
		fmt.Fprintf(a.out, "notes %s> ", a.status())
		line, err := a.reader.ReadString('\n')
		if line != "" && !a.dispatch(ctx, line) {
			return
		}
		if err != nil {
			return
		}
	}
}

func (a *App) help(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name, cmd := range commands {
		if cmd.private == a.isLoggedIn() {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		c := commands[name]
		fmt.Fprintf(w, "  %-34s %s\n", c.usage, c.help)
	}
	fmt.Fprintf(w, "  %-34s %s\n", "help", "show this help")
	fmt.Fprintf(w, "  %-34s %s\n", "exit", "leave the shell")
}

func usage(name string) error {
	return fmt.Errorf("usage: %s", commands[name].usage)
}
