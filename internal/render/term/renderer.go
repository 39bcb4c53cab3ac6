// Package term renders notifications as styled text cards for terminal
// hosts. Heights are measured in rows, so stacking offsets translate
// directly to line positions inside a host view.
package term

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/croutonhq/crouton/internal/theme"
	"github.com/croutonhq/crouton/internal/toast"
)

// DefaultExitDuration is how long the engine waits before destroying a
// card after its exit starts. Terminals cannot tween, so this is just a
// short grace period during which the card renders dimmed.
const DefaultExitDuration = 150 * time.Millisecond

type card struct {
	content  toast.Content
	events   toast.Events
	rendered string
	height   int
	offset   int
	exiting  bool
	order    int
}

// Renderer implements toast.Renderer for terminal hosts. Mounted cards are
// kept in a set; View composes them in offset order for embedding into the
// host application's frame.
type Renderer struct {
	mu     sync.Mutex
	logger *slog.Logger
	theme  *theme.Theme
	width  int
	cards  map[*card]struct{}
	seq    int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithWidth sets the card width in columns.
func WithWidth(width int) Option {
	return func(r *Renderer) { r.width = width }
}

// WithTheme sets the theme used for card styling.
func WithTheme(t *theme.Theme) Option {
	return func(r *Renderer) { r.theme = t }
}

// WithLogger sets the renderer's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) { r.logger = logger }
}

// New creates a terminal renderer with the default theme.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		logger: slog.Default(),
		theme:  theme.Load(theme.DefaultThemeName, nil),
		width:  48,
		cards:  make(map[*card]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Mount renders the card once and registers it. The rendered string is
// cached; height is its line count.
func (r *Renderer) Mount(c toast.Content, ev toast.Events) (toast.Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rendered := r.renderCard(c, false)
	cd := &card{
		content:  c,
		events:   ev,
		rendered: rendered,
		height:   lipgloss.Height(rendered),
		order:    r.seq,
	}
	r.seq++
	r.cards[cd] = struct{}{}
	return cd, nil
}

// AnimateIn is a no-op for terminals; the card appears on the next frame.
func (r *Renderer) AnimateIn(h toast.Handle) {}

// AnimateOut marks the card as exiting so it renders dimmed, and returns
// the grace period before Destroy.
func (r *Renderer) AnimateOut(h toast.Handle) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	cd := h.(*card)
	cd.exiting = true
	cd.rendered = r.renderCard(cd.content, true)
	return DefaultExitDuration
}

// Destroy removes the card from the set.
func (r *Renderer) Destroy(h toast.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cards, h.(*card))
}

// MeasureHeight returns the card height in rows.
func (r *Renderer) MeasureHeight(h toast.Handle) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return h.(*card).height
}

// Reposition records the card's offset from the anchor.
func (r *Renderer) Reposition(h toast.Handle, offset int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h.(*card).offset = offset
}

// View composes all mounted cards in stacking order, separated by blank
// rows where the offsets dictate spacing. Bottom anchors produce negative
// offsets; cards are emitted from the anchor outward either way.
func (r *Renderer) View() string {
	r.mu.Lock()
	cards := make([]*card, 0, len(r.cards))
	for cd := range r.cards {
		cards = append(cards, cd)
	}
	r.mu.Unlock()

	if len(cards) == 0 {
		return ""
	}

	sort.Slice(cards, func(i, j int) bool {
		oi, oj := abs(cards[i].offset), abs(cards[j].offset)
		if oi != oj {
			return oi < oj
		}
		return cards[i].order < cards[j].order
	})

	blocks := make([]string, 0, len(cards))
	prevEnd := 0
	for _, cd := range cards {
		if gap := abs(cd.offset) - prevEnd; gap > 0 && prevEnd > 0 {
			// Joined with "\n" on both sides, gap-1 newlines yield gap
			// blank rows between cards.
			blocks = append(blocks, strings.Repeat("\n", gap-1))
		}
		blocks = append(blocks, cd.rendered)
		prevEnd = abs(cd.offset) + cd.height
	}
	return strings.Join(blocks, "\n")
}

// CardCount returns the number of mounted cards.
func (r *Renderer) CardCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cards)
}

// DismissNewest fires the dismiss event of the most recently mounted card
// that is not already exiting. Terminal hosts bind this to a key.
func (r *Renderer) DismissNewest() {
	r.mu.Lock()
	var newest *card
	for cd := range r.cards {
		if cd.exiting {
			continue
		}
		if newest == nil || cd.order > newest.order {
			newest = cd
		}
	}
	r.mu.Unlock()

	if newest != nil && newest.events.OnDismiss != nil {
		newest.events.OnDismiss()
	}
}

// InvokeNewestAction fires the first action of the most recently mounted
// card that has one.
func (r *Renderer) InvokeNewestAction() {
	r.mu.Lock()
	var newest *card
	for cd := range r.cards {
		if cd.exiting || len(cd.content.Actions) == 0 {
			continue
		}
		if newest == nil || cd.order > newest.order {
			newest = cd
		}
	}
	r.mu.Unlock()

	if newest != nil && newest.events.OnAction != nil {
		newest.events.OnAction(0)
	}
}

func (r *Renderer) renderCard(c toast.Content, exiting bool) string {
	style := r.theme.StyleFor(c.Kind.String())

	border := lipgloss.RoundedBorder()
	switch r.theme.Border {
	case "normal":
		border = lipgloss.NormalBorder()
	case "thick":
		border = lipgloss.ThickBorder()
	}

	accent := lipgloss.Color(style.Color)
	frame := lipgloss.NewStyle().
		Border(border).
		BorderForeground(accent).
		Width(r.width).
		Padding(0, 1)
	if exiting {
		frame = frame.Faint(true)
	}

	titleStyle := lipgloss.NewStyle().Foreground(accent).Bold(style.Urgent)
	title := titleStyle.Render(style.Icon + " " + c.Title)

	lines := []string{title}
	if c.Body != "" {
		lines = append(lines, c.Body)
	}
	if len(c.Actions) > 0 {
		actionStyle := lipgloss.NewStyle().Foreground(accent).Underline(true)
		labels := make([]string, len(c.Actions))
		for i, label := range c.Actions {
			labels[i] = actionStyle.Render("[" + label + "]")
		}
		lines = append(lines, strings.Join(labels, " "))
	}
	if !c.CreatedAt.IsZero() {
		stamp := lipgloss.NewStyle().Faint(true).Render(humanize.Time(c.CreatedAt))
		lines = append(lines, stamp)
	}

	return frame.Render(strings.Join(lines, "\n"))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
