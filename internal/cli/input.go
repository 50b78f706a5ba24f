// Package cli handles cmd line input for classifying text and fetching candidates, for DBG and testing
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/bastiangx/pinserve/internal/logger"
	"github.com/bastiangx/pinserve/pkg/detect"
	"github.com/bastiangx/pinserve/pkg/normalize"
	"github.com/bastiangx/pinserve/pkg/suggest"
	"github.com/bastiangx/pinserve/pkg/syllable"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	typeStyle = map[detect.InputType]lipgloss.Style{
		detect.Chinese: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"}),
		detect.Pinyin:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#56949f", Dark: "#31748f"}),
		detect.Mixed:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#ea9d34", Dark: "#f6c177"}),
		detect.Invalid: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#b4637a", Dark: "#eb6f92"}),
	}
	candidateStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	hintStyle      = lipgloss.NewStyle().Italic(true).Faint(true)
)

// Options controls what the handler prints.
type Options struct {
	Limit     int
	ShowTrace bool
	// Stats, when set, backs the ":stats" command.
	Stats func() map[string]int
}

// InputHandler reads lines, classifies each one and, for pinyin, asks the
// suggester for candidates.
type InputHandler struct {
	suggester    *suggest.Suggester
	opts         Options
	out          *log.Logger
	requestCount int
}

// NewInputHandler writes its report to w. A nil suggester only classifies.
func NewInputHandler(sg *suggest.Suggester, w io.Writer, opts Options) *InputHandler {
	if opts.Limit < 1 {
		opts.Limit = 6
	}
	return &InputHandler{
		suggester: sg,
		opts:      opts,
		out:       logger.Plain(w, ""),
	}
}

// Start begins the interface loop and returns nil at end of input.
func (h *InputHandler) Start(ctx context.Context, r io.Reader) error {
	h.out.Print("PinServe CLI [BETA]")
	h.out.Print("type Chinese or pinyin and press Enter (:stats for cache info, Ctrl+C to exit):")

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			h.handleCommand(line)
			continue
		}
		h.handleInput(ctx, line)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return scanner.Err()
}

func (h *InputHandler) handleCommand(cmd string) {
	switch cmd {
	case ":stats":
		if h.opts.Stats == nil {
			h.out.Print("no cache in use")
			return
		}
		stats := h.opts.Stats()
		keys := make([]string, 0, len(stats))
		for k := range stats {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			h.out.Printf("%-14s %d", k, stats[k])
		}
		h.out.Printf("%-14s %d", "requests", h.requestCount)
	default:
		h.out.Printf("unknown command %s", cmd)
	}
}

// handleInput classifies one line and prints the verdict, the syllable trace
// and any candidates.
func (h *InputHandler) handleInput(ctx context.Context, text string) {
	h.requestCount++
	start := time.Now()

	kind := detect.DetectInputType(text)
	h.out.Printf("%s  %s", typeStyle[kind].Render(kind.String()), text)

	switch kind {
	case detect.Invalid:
		h.out.Print(detect.InvalidInputMessage)
		if tail := partialSyllable(text); tail != "" {
			h.out.Print(hintStyle.Render(fmt.Sprintf("'%s' starts a syllable, keep typing", tail)))
		}
		return
	case detect.Chinese, detect.Mixed:
		log.Debugf("Took [ %v ] for '%s'", time.Since(start), text)
		return
	}

	if h.opts.ShowTrace {
		cov, _ := detect.Score(text)
		h.out.Printf("coverage %d/%d (%.2f), %d syllables: %s",
			cov.MatchedChars, cov.TotalLength, cov.Ratio(), cov.SyllableCount, formatTrace(detect.Segment(text)))
	}
	if h.suggester == nil {
		return
	}

	found := h.suggester.Suggest(ctx, text, h.opts.Limit)
	log.Debugf("Took [ %v ] for '%s'", time.Since(start), text)
	if len(found) == 0 {
		h.out.Warnf("No candidates for '%s'", text)
		return
	}
	h.out.Printf("Found %d candidates:", len(found))
	for i, c := range found {
		h.out.Printf("%2d. %s", i+1, candidateStyle.Render(c))
	}
}

func formatTrace(matches []syllable.Match) string {
	parts := make([]string, len(matches))
	for i, m := range matches {
		parts[i] = m.Syllable
	}
	return strings.Join(parts, " · ")
}

// partialSyllable returns the last word of text when it is too short to be
// judged but could still grow into a syllable, like "zh".
func partialSyllable(text string) string {
	if detect.ContainsIdeograph(text) {
		return ""
	}
	fields := strings.FieldsFunc(normalize.ForMatching(text), func(r rune) bool {
		return r == ' ' || r == '\''
	})
	if len(fields) == 0 {
		return ""
	}
	last := fields[len(fields)-1]
	d := syllable.Default()
	if d.Contains(last) || !d.HasPrefix(last) {
		return ""
	}
	return last
}
