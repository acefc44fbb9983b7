package modal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeMaxWidthClass(t *testing.T) {
	cases := map[Size]string{
		SizeSM:   "max-w-md",
		SizeMD:   "max-w-lg",
		SizeLG:   "max-w-2xl",
		SizeXL:   "max-w-4xl",
		SizeFull: "max-w-7xl mx-4",
		"huge":   "max-w-lg",
		"":       "max-w-lg",
	}
	for size, want := range cases {
		assert.Equal(t, want, size.MaxWidthClass(), "size %q", size)
	}
}

func TestModal_EffectsReleasedOnEveryExit(t *testing.T) {
	exits := map[string]func(m *Modal){
		"close":   func(m *Modal) { m.Close() },
		"escape":  func(m *Modal) { require.True(t, m.HandleKey("esc")) },
		"overlay": func(m *Modal) { require.True(t, m.ClickOverlay()) },
		"unmount": func(m *Modal) { m.Unmount() },
	}
	for name, exit := range exits {
		t.Run(name, func(t *testing.T) {
			h := NewHost()
			h.Focus("new-note-button")

			closed := 0
			opts := DefaultOptions("Create New Note")
			opts.OnClose = func() { closed++ }
			m := New("note-modal", opts)
			m.Open(h)

			assert.True(t, h.ScrollLocked())
			assert.Equal(t, 1, h.EscapeListeners())
			assert.Equal(t, "note-modal", h.Focused())

			exit(m)

			assert.False(t, m.IsOpen())
			assert.False(t, h.ScrollLocked())
			assert.Zero(t, h.EscapeListeners())
			assert.Equal(t, "new-note-button", h.Focused())
			if name == "unmount" {
				assert.Zero(t, closed, "unmount does not call onClose")
			} else {
				assert.Equal(t, 1, closed)
			}

			m.Close()
			m.Unmount()
			assert.Zero(t, h.EscapeListeners(), "second release is a no-op")
			assert.LessOrEqual(t, closed, 1)
		})
	}
}

func TestModal_OverlayDisabled(t *testing.T) {
	h := NewHost()
	opts := DefaultOptions("Invite")
	opts.CloseOnOverlay = false
	m := New("invite", opts)
	m.Open(h)

	assert.False(t, m.ClickOverlay())
	assert.True(t, m.IsOpen())
	assert.False(t, m.HandleKey("enter"))
	assert.True(t, h.ScrollLocked())
}

func TestModal_StackedModalsShareHost(t *testing.T) {
	h := NewHost()
	a := New("a", DefaultOptions("A"))
	b := New("b", DefaultOptions("B"))
	a.Open(h)
	a.Open(h)
	b.Open(h)
	assert.Equal(t, 2, h.EscapeListeners())

	b.Close()
	assert.True(t, h.ScrollLocked())
	assert.Equal(t, "a", h.Focused())
	a.Close()
	assert.False(t, h.ScrollLocked())
}

func TestConfirm_DefaultsAndBusy(t *testing.T) {
	h := NewHost()
	cancelled := 0
	c := NewConfirm("delete", func() { cancelled++ })
	c.Open(h)

	assert.Equal(t, "Delete Note", c.TitleText())
	assert.Equal(t, "Are you sure you want to delete this note? This action cannot be undone.", c.MessageText())
	assert.Equal(t, "Delete Note", c.ConfirmText())
	assert.Equal(t, "Cancel", c.CancelText())

	c.Busy = true
	assert.True(t, c.ButtonsDisabled())
	assert.Equal(t, "Deleting...", c.ConfirmText())
	assert.False(t, c.HandleKey("esc"))
	assert.False(t, c.ClickOverlay())
	assert.False(t, c.Cancel())
	assert.True(t, c.Modal().IsOpen())

	c.Busy = false
	assert.True(t, c.ClickOverlay())
	assert.Equal(t, 1, cancelled)
	assert.False(t, h.ScrollLocked())
}

func TestConfirm_CustomLabels(t *testing.T) {
	c := NewConfirm("x", nil)
	c.Title = "Remove"
	c.ConfirmLabel = "Yes"
	c.CancelLabel = "No"
	assert.Equal(t, "Remove", c.TitleText())
	assert.Equal(t, "Yes", c.ConfirmText())
	assert.Equal(t, "No", c.CancelText())
}
