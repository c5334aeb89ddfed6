// Package cli implements the interactive terminal surfaces over the
// orchestration layer: the authenticated workspace and the guest demo.
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
)

const workspaceHelp = `commands:
  list              refresh and show documents
  upload <path>     upload a .txt/.md/.pdf file
  process <id>      chunk and index a pending document
  delete <id>       delete a document
  select <id>       scope chat to one ready document
  deselect          chat across all ready documents
  ask <question>    ask about your documents
  history           show the current transcript
  help              show this help
  quit              exit`

// Workspace is the REPL over the persisted surface.
type Workspace struct {
	app *bootstrap.App
	in  io.Reader
	out io.Writer
}

func NewWorkspace(app *bootstrap.App, in io.Reader, out io.Writer) *Workspace {
	return &Workspace{app: app, in: in, out: out}
}

func (w *Workspace) Run(ctx context.Context) error {
	fmt.Fprintln(w.out, "docuchat workspace - type 'help' for commands")
	w.showDocuments()

	scanner := bufio.NewScanner(w.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(w.out, "> ")
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
			fmt.Fprintln(w.out, workspaceHelp)
		case "list":
			if _, err := w.app.Registry.List(ctx); err != nil {
				renderError(w.out, err)
				continue
			}
			w.showDocuments()
		case "upload":
			w.upload(ctx, arg)
		case "process":
			w.process(ctx, arg)
		case "delete":
			w.delete(ctx, arg)
		case "select":
			if err := w.app.Chat.Select(arg); err != nil {
				renderError(w.out, err)
				continue
			}
			fmt.Fprintf(w.out, "chat scoped to %s\n", arg)
		case "deselect":
			w.app.Chat.Deselect()
			fmt.Fprintln(w.out, "chat scoped to all ready documents")
		case "ask":
			w.ask(ctx, arg)
		case "history":
			for _, msg := range w.app.Chat.Messages() {
				renderMessage(w.out, msg)
			}
		default:
			fmt.Fprintf(w.out, "unknown command %q, type 'help'\n", cmd)
		}
	}
}

func (w *Workspace) upload(ctx context.Context, path string) {
	if path == "" {
		fmt.Fprintln(w.out, "usage: upload <path>")
		return
	}
	file, err := os.Open(path)
	if err != nil {
		renderError(w.out, err)
		return
	}
	defer file.Close()

	doc, err := w.app.Lifecycle.Upload(ctx, filepath.Base(path), file)
	if err != nil {
		renderError(w.out, err)
		return
	}
	fmt.Fprintf(w.out, "uploaded %q (%s), run 'process %s' to enable search\n", doc.Name, doc.ID, doc.ID)
}

func (w *Workspace) process(ctx context.Context, id string) {
	if id == "" {
		fmt.Fprintln(w.out, "usage: process <id>")
		return
	}
	outcome, err := w.app.Coordinator.Process(ctx, id)
	if err != nil {
		renderError(w.out, err)
		return
	}
	fmt.Fprintf(w.out, "processed: %d chunks created\n", outcome.ChunksCreated)
}

func (w *Workspace) delete(ctx context.Context, id string) {
	if id == "" {
		fmt.Fprintln(w.out, "usage: delete <id>")
		return
	}
	if err := w.app.Lifecycle.Delete(ctx, id); err != nil {
		renderError(w.out, err)
		return
	}
	fmt.Fprintln(w.out, "document deleted")
}

func (w *Workspace) ask(ctx context.Context, question string) {
	if question == "" {
		fmt.Fprintln(w.out, "usage: ask <question>")
		return
	}
	before := len(w.app.Chat.Messages())
	if err := w.app.Chat.Submit(ctx, question); err != nil {
		renderError(w.out, err)
		return
	}
	for _, msg := range w.app.Chat.Messages()[before:] {
		renderMessage(w.out, msg)
	}
}

func (w *Workspace) showDocuments() {
	docs := w.app.Registry.Documents()
	if len(docs) == 0 {
		fmt.Fprintln(w.out, "no documents yet - 'upload <path>' to get started")
		return
	}
	scope := w.app.Chat.Scope()
	for _, doc := range docs {
		renderDocument(w.out, doc, scope != nil && *scope == doc.ID)
	}
}

func splitCommand(line string) (string, string) {
	parts := strings.SplitN(line, " ", 2)
	cmd := strings.ToLower(parts[0])
	if len(parts) == 1 {
		return cmd, ""
	}
	return cmd, strings.TrimSpace(parts[1])
}
