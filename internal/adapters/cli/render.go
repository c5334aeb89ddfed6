package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/dmarkov/docuchat/internal/core/domain"
)

var (
	userColor      = color.New(color.FgCyan, color.Bold)
	assistantColor = color.New(color.FgGreen)
	sourceColor    = color.New(color.FgHiBlack)
	errorColor     = color.New(color.FgRed)
	statusColors   = map[domain.DocumentStatus]*color.Color{
		domain.StatusPending:    color.New(color.FgYellow),
		domain.StatusProcessing: color.New(color.FgBlue),
		domain.StatusReady:      color.New(color.FgGreen),
		domain.StatusError:      color.New(color.FgRed),
	}
)

func renderMessage(w io.Writer, msg domain.ConversationMessage) {
	switch msg.Role {
	case domain.RoleUser:
		userColor.Fprintf(w, "you> ")
	default:
		assistantColor.Fprintf(w, "bot> ")
	}
	fmt.Fprintln(w, msg.Content)

	for _, src := range msg.Sources {
		if src.Preview != "" {
			sourceColor.Fprintf(w, "     [%s] %s\n", src.DocumentName, src.Preview)
		} else {
			sourceColor.Fprintf(w, "     [%s]\n", src.DocumentName)
		}
	}
}

func renderDocument(w io.Writer, doc domain.Document, selected bool) {
	marker := " "
	if selected {
		marker = "*"
	}
	fmt.Fprintf(w, "%s %s  %s  %s", marker, doc.ID, doc.Name, formatSize(doc.SizeBytes))
	if sc, ok := statusColors[doc.Status]; ok {
		sc.Fprintf(w, "  [%s]", doc.Status)
	} else {
		fmt.Fprintf(w, "  [%s]", doc.Status)
	}
	if doc.ChunkCount != nil {
		fmt.Fprintf(w, "  %d chunks", *doc.ChunkCount)
	}
	if doc.ErrorMessage != "" {
		errorColor.Fprintf(w, "  %s", doc.ErrorMessage)
	}
	fmt.Fprintln(w)
}

func renderError(w io.Writer, err error) {
	errorColor.Fprintf(w, "error: %v\n", err)
}

func formatSize(bytes int64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d B", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	}
}
