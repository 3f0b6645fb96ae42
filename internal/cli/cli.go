// Package cli is the interactive front end: a readline loop translating
// text commands into store operations. Nodes are addressed by index paths
// ("2", "2.1", "2.1.3") resolved against the hierarchy at command time.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/kittclouds/goprep/internal/app"
)

// CLI drives one application instance from a readline loop.
type CLI struct {
	app *app.App
	out io.Writer
}

// New creates a CLI around an application.
func New(a *app.App, out io.Writer) *CLI {
	return &CLI{app: a, out: out}
}

// Run reads and executes commands until exit or EOF.
func (c *CLI) Run(ctx context.Context) error {
	rl, err := readline.New("goprep> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		args := parseArgs(strings.TrimSpace(line))
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			return nil
		}
		if err := c.Execute(ctx, args); err != nil {
			fmt.Fprintln(c.out, "error:", err)
		}
	}
}

// Execute dispatches a single parsed command.
func (c *CLI) Execute(ctx context.Context, args []string) error {
	switch args[0] {
	case "show":
		return c.handleShow(args[1:])
	case "add":
		return c.handleAdd(args[1:])
	case "rename":
		return c.handleRename(args[1:])
	case "del":
		return c.handleDelete(args[1:])
	case "reorder":
		return c.handleReorder(args[1:])
	case "move":
		return c.handleMove(args[1:])
	case "expand":
		return c.handleExpand(args[1:], true)
	case "collapse":
		return c.handleExpand(args[1:], false)
	case "undo":
		return c.handleUndo()
	case "redo":
		return c.handleRedo()
	case "seed":
		return c.handleSeed(ctx)
	case "save":
		return c.app.Save()
	case "help":
		c.printHelp()
		return nil
	default:
		return fmt.Errorf("unknown command %q (try help)", args[0])
	}
}

// parseArgs splits a line on spaces, honoring double quotes.
func parseArgs(input string) []string {
	var args []string
	var current strings.Builder
	inQuotes := false

	for _, char := range input {
		switch char {
		case '"':
			inQuotes = !inQuotes
		case ' ':
			if !inQuotes {
				if current.Len() > 0 {
					args = append(args, current.String())
					current.Reset()
				}
			} else {
				current.WriteRune(char)
			}
		default:
			current.WriteRune(char)
		}
	}
	if current.Len() > 0 {
		args = append(args, current.String())
	}
	return args
}

func (c *CLI) printHelp() {
	fmt.Fprint(c.out, `Commands (paths are 1-based: TOPIC, TOPIC.SUB or TOPIC.SUB.QUESTION):
  show [PATH]                      print the hierarchy (or one subtree)
  add topic "Name"                 create a topic
  add sub PATH "Name"              create a sub-topic under topic PATH
  add q PATH "Title" [DIFF] [URL]  create a question under sub-topic PATH
  rename PATH "New name"           rename a node / retitle a question
  del PATH                         delete a node (cascades)
  reorder PATH INDEX               move a node to INDEX within its container
  move PATH DEST [INDEX]           move a sub-topic or question to container DEST
  expand PATH | collapse PATH      toggle UI expansion
  undo | redo                      walk the edit history
  seed                             replace everything with a fresh seed sheet
  save                             persist now (mutations also autosave)
  exit
`)
}
