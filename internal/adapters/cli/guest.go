package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmarkov/docuchat/internal/bootstrap"
	"github.com/dmarkov/docuchat/internal/core/usecase"
)

const guestHelp = `commands:
  add <path>...     add .txt/.md files (kept in memory only)
  remove <id>       remove a document
  docs              show documents
  ask <question>    ask about your documents
  history           show the current transcript
  help              show this help
  quit              exit`

// Guest is the REPL over the zero-persistence demo surface. Documents never
// leave memory except inline with each question.
type Guest struct {
	app *bootstrap.GuestApp
	in  io.Reader
	out io.Writer
}

func NewGuest(app *bootstrap.GuestApp, in io.Reader, out io.Writer) *Guest {
	return &Guest{app: app, in: in, out: out}
}

func (g *Guest) Run(ctx context.Context) error {
	fmt.Fprintln(g.out, "docuchat guest demo - documents stay in memory, nothing is stored")
	fmt.Fprintln(g.out, "type 'help' for commands")

	scanner := bufio.NewScanner(g.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(g.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, arg := splitCommand(line)

		switch cmd {
		case "quit", "exit":
			return nil
		case "help":
			fmt.Fprintln(g.out, guestHelp)
		case "add":
			g.add(arg)
		case "remove":
			if arg == "" {
				fmt.Fprintln(g.out, "usage: remove <id>")
				continue
			}
			g.app.Chat.RemoveDocument(arg)
			fmt.Fprintln(g.out, "document removed")
		case "docs":
			g.showDocuments()
		case "ask":
			g.ask(ctx, arg)
		case "history":
			for _, msg := range g.app.Chat.Messages() {
				renderMessage(g.out, msg)
			}
		default:
			fmt.Fprintf(g.out, "unknown command %q, type 'help'\n", cmd)
		}
	}
}

// add reads each named file and hands the batch to the adapter. A bad file
// only skips itself.
func (g *Guest) add(args string) {
	if args == "" {
		fmt.Fprintln(g.out, "usage: add <path>...")
		return
	}

	var files []usecase.GuestFile
	for _, path := range strings.Fields(args) {
		content, err := os.ReadFile(path)
		if err != nil {
			renderError(g.out, err)
			continue
		}
		files = append(files, usecase.GuestFile{
			Name:    filepath.Base(path),
			Content: content,
		})
	}

	added, errs := g.app.Chat.AddFiles(files)
	for _, err := range errs {
		renderError(g.out, err)
	}
	if len(added) > 0 {
		fmt.Fprintf(g.out, "added %d document(s), you can now ask questions\n", len(added))
	}
}

func (g *Guest) ask(ctx context.Context, question string) {
	if question == "" {
		fmt.Fprintln(g.out, "usage: ask <question>")
		return
	}
	before := len(g.app.Chat.Messages())
	if err := g.app.Chat.Submit(ctx, question); err != nil {
		renderError(g.out, err)
		return
	}
	for _, msg := range g.app.Chat.Messages()[before:] {
		renderMessage(g.out, msg)
	}
}

func (g *Guest) showDocuments() {
	docs := g.app.Chat.Documents()
	if len(docs) == 0 {
		fmt.Fprintln(g.out, "no documents yet - 'add <path>' to get started")
		return
	}
	for _, doc := range docs {
		fmt.Fprintf(g.out, "  %s  %s  %s\n", doc.ID, doc.Name, formatSize(doc.SizeBytes))
	}
}
