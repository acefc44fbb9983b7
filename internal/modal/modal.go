// Package modal models the page-level side effects of an overlay dialog.
//
// A Host stands in for the page: it counts scroll locks and bound Escape
// listeners and remembers which element has focus. A Modal acquires those
// effects on Open and gives every one of them back exactly once, whichever of
// Close, Escape, overlay click or Unmount ends it.
package modal

import "sync"

type Size string

const (
	SizeSM   Size = "sm"
	SizeMD   Size = "md"
	SizeLG   Size = "lg"
	SizeXL   Size = "xl"
	SizeFull Size = "full"
)

// MaxWidthClass returns the CSS width class for s. Unknown sizes fall back to md.
func (s Size) MaxWidthClass() string {
	switch s {
	case SizeSM:
		return "max-w-md"
	case SizeLG:
		return "max-w-2xl"
	case SizeXL:
		return "max-w-4xl"
	case SizeFull:
		return "max-w-7xl mx-4"
	default:
		return "max-w-lg"
	}
}

// Columns is the terminal width used for s.
func (s Size) Columns() int {
	switch s {
	case SizeSM:
		return 48
	case SizeLG:
		return 72
	case SizeXL:
		return 96
	case SizeFull:
		return 0
	default:
		return 60
	}
}

// Host tracks the effects modals apply to the surrounding page.
type Host struct {
	mu          sync.Mutex
	scrollLocks int
	escHandlers int
	focus       string
}

func NewHost() *Host { return &Host{} }

func (h *Host) ScrollLocked() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.scrollLocks > 0
}

func (h *Host) EscapeListeners() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.escHandlers
}

func (h *Host) Focused() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.focus
}

// Focus moves focus to id, e.g. when the page itself changes focus.
func (h *Host) Focus(id string) {
	h.mu.Lock()
	h.focus = id
	h.mu.Unlock()
}

func (h *Host) acquire(focus string) (prev string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.scrollLocks++
	h.escHandlers++
	prev = h.focus
	h.focus = focus
	return prev
}

func (h *Host) release(focus, restore string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.scrollLocks > 0 {
		h.scrollLocks--
	}
	if h.escHandlers > 0 {
		h.escHandlers--
	}
	if h.focus == focus {
		h.focus = restore
	}
}

type Options struct {
	Title           string
	Size            Size
	ShowCloseButton bool
	CloseOnOverlay  bool
	OnClose         func()
}

// DefaultOptions mirrors the dialog defaults: medium width, a close button and
// dismiss on overlay click.
func DefaultOptions(title string) Options {
	return Options{Title: title, Size: SizeMD, ShowCloseButton: true, CloseOnOverlay: true}
}

type Modal struct {
	ID   string
	opts Options

	host      *Host
	prevFocus string
}

func New(id string, opts Options) *Modal {
	if opts.Size == "" {
		opts.Size = SizeMD
	}
	return &Modal{ID: id, opts: opts}
}

func (m *Modal) Options() Options { return m.opts }
func (m *Modal) IsOpen() bool     { return m.host != nil }

// Open applies the modal's effects to h. Opening an open modal is a no-op.
func (m *Modal) Open(h *Host) {
	if m.host != nil || h == nil {
		return
	}
	m.host = h
	m.prevFocus = h.acquire(m.ID)
}

// Close runs OnClose and releases the modal's effects.
func (m *Modal) Close() {
	if !m.release() {
		return
	}
	if m.opts.OnClose != nil {
		m.opts.OnClose()
	}
}

// HandleKey closes the modal on Escape and reports whether the key was used.
func (m *Modal) HandleKey(key string) bool {
	if !m.IsOpen() || (key != "esc" && key != "escape") {
		return false
	}
	m.Close()
	return true
}

// ClickOverlay closes the modal unless overlay dismissal is disabled.
func (m *Modal) ClickOverlay() bool {
	if !m.IsOpen() || !m.opts.CloseOnOverlay {
		return false
	}
	m.Close()
	return true
}

// Unmount releases the effects without running OnClose.
func (m *Modal) Unmount() { m.release() }

func (m *Modal) release() bool {
	if m.host == nil {
		return false
	}
	m.host.release(m.ID, m.prevFocus)
	m.host = nil
	m.prevFocus = ""
	return true
}
