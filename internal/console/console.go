// Package console prints the user-facing transcript of a session.
package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

const (
	BannerTitle = "ASTRA :: SISTEMA INTEGRADO"
	saidPrefix  = "Astra:"
	heardPrefix = "Você disse:"
	listening   = "Ouvindo ambiente..."
)

type Transcript struct {
	mu     sync.Mutex
	w      io.Writer
	banner lipgloss.Style
	astra  lipgloss.Style
	user   lipgloss.Style
	dim    lipgloss.Style
}

func New(w io.Writer) *Transcript {
	r := lipgloss.NewRenderer(w)
	return &Transcript{
		w: w,
		banner: r.NewStyle().
			Foreground(lipgloss.Color("#06B6D4")).
			Bold(true).
			Padding(0, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#374151")),
		astra: r.NewStyle().Foreground(lipgloss.Color("#7C3AED")).Bold(true),
		user:  r.NewStyle().Foreground(lipgloss.Color("#10B981")),
		dim:   r.NewStyle().Foreground(lipgloss.Color("#6B7280")).Italic(true),
	}
}

func (t *Transcript) println(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, s)
}

func (t *Transcript) Banner(subtitle string) {
	body := BannerTitle
	if subtitle != "" {
		body += "\n" + subtitle
	}
	t.println(t.banner.Render(body))
}

// Said records a line spoken by the assistant.
func (t *Transcript) Said(text string) {
	t.println(t.astra.Render(saidPrefix) + " " + text)
}

// Heard records a recognized utterance.
func (t *Transcript) Heard(text string) {
	t.println(t.user.Render(heardPrefix) + " " + text)
}

func (t *Transcript) Listening() {
	t.println(t.dim.Render(listening))
}
