package tui

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/mpicalc/internal/config"
	apperrors "github.com/agbru/mpicalc/internal/errors"
	"github.com/agbru/mpicalc/internal/format"
)

// HistoryEntry is one submitted line and its outcome.
type HistoryEntry struct {
	Input    string
	Backend  string
	Value    *big.Int
	Err      error
	Duration time.Duration
	// Details holds extra lines, such as the per-backend rows of a comparison.
	Details []string
}

// HistoryModel is the scrollable transcript of the session. It also
// remembers inputs for recall with the arrow keys.
type HistoryModel struct {
	entries []HistoryEntry
	inputs  []string
	recall  int
	scroll  int
	hex     bool
	full    bool
	width   int
	height  int
}

// NewHistoryModel returns an empty transcript.
func NewHistoryModel(hex, full bool) HistoryModel {
	return HistoryModel{hex: hex, full: full}
}

// SetSize updates the panel dimensions.
func (h *HistoryModel) SetSize(w, hgt int) {
	h.width = w
	h.height = hgt
}

// Add appends an entry and scrolls back to the bottom.
func (h *HistoryModel) Add(e HistoryEntry) {
	h.entries = append(h.entries, e)
	if n := len(h.inputs); n == 0 || h.inputs[n-1] != e.Input {
		h.inputs = append(h.inputs, e.Input)
	}
	h.recall = len(h.inputs)
	h.scroll = 0
}

// Clear empties the transcript. Recalled inputs are kept.
func (h *HistoryModel) Clear() {
	h.entries = nil
	h.scroll = 0
}

// Len returns the number of entries.
func (h *HistoryModel) Len() int { return len(h.entries) }

// Prev returns the previous input for recall, or false at the oldest one.
func (h *HistoryModel) Prev() (string, bool) {
	if h.recall == 0 {
		return "", false
	}
	h.recall--
	return h.inputs[h.recall], true
}

// Next returns the next input for recall. Past the newest one it returns
// an empty line.
func (h *HistoryModel) Next() (string, bool) {
	if h.recall >= len(h.inputs) {
		return "", false
	}
	h.recall++
	if h.recall == len(h.inputs) {
		return "", true
	}
	return h.inputs[h.recall], true
}

// ScrollUp moves the view towards older entries.
func (h *HistoryModel) ScrollUp(n int) {
	h.scroll = min(h.scroll+n, max(len(h.lines())-h.visibleRows(), 0))
}

// ScrollDown moves the view towards the newest entry.
func (h *HistoryModel) ScrollDown(n int) {
	h.scroll = max(h.scroll-n, 0)
}

func (h HistoryModel) visibleRows() int {
	return max(h.height-2, 1)
}

func (h HistoryModel) lines() []string {
	var out []string
	for _, e := range h.entries {
		out = append(out, promptStyle.Render(e.Backend+"> ")+inputEchoStyle.Render(e.Input))
		if e.Err != nil {
			out = append(out, "  "+errorStyle.Render(fmt.Sprintf("error [%s]: %v", apperrors.KindOf(e.Err), e.Err)))
		} else {
			out = append(out, h.renderValue(e)...)
		}
		for _, d := range e.Details {
			out = append(out, "    "+dimStyle.Render(d))
		}
	}
	return out
}

func (h HistoryModel) renderValue(e HistoryEntry) []string {
	if e.Value == nil {
		return []string{"  " + dimStyle.Render(fmt.Sprintf("ok (%s)", format.FormatExecutionDuration(e.Duration)))}
	}
	s := e.Value.String()
	if !h.full {
		s = format.TruncateDigits(s, config.DefaultTruncate)
	}
	out := []string{"  " + valueStyle.Render("= "+s) + " " +
		dimStyle.Render(fmt.Sprintf("(%s, %d bits)", format.FormatExecutionDuration(e.Duration), e.Value.BitLen()))}
	if h.hex {
		out = append(out, "  "+valueStyle.Render("= 0x"+e.Value.Text(16)))
	}
	return out
}

// View renders the visible part of the transcript.
func (h HistoryModel) View() string {
	all := h.lines()
	rows := h.visibleRows()
	end := max(len(all)-h.scroll, 0)
	start := max(end-rows, 0)
	body := strings.Join(all[start:end], "\n")
	if len(h.entries) == 0 {
		body = dimStyle.Render("Type an expression and press enter. Variables persist between lines.")
	}

	style := panelStyle
	if h.width > 2 {
		style = style.Width(h.width - 2)
	}
	if h.height > 2 {
		style = style.Height(h.height - 2).MaxHeight(h.height)
	}
	view := style.Render(body)
	if h.scroll > 0 {
		view = lipgloss.JoinVertical(lipgloss.Left, view, dimStyle.Render(fmt.Sprintf(" ↓ %d more", h.scroll)))
	}
	return view
}
