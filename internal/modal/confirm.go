package modal

const (
	defaultConfirmTitle   = "Delete Note"
	defaultConfirmMessage = "Are you sure you want to delete this note? This action cannot be undone."
	defaultConfirmLabel   = "Delete Note"
	defaultCancelLabel    = "Cancel"
)

// Confirm is the two-button delete confirmation dialog. Empty fields take the
// delete-note defaults.
type Confirm struct {
	Title        string
	Message      string
	ConfirmLabel string
	CancelLabel  string
	Busy         bool

	modal *Modal
}

func NewConfirm(id string, onCancel func()) *Confirm {
	c := &Confirm{}
	c.modal = New(id, Options{Size: SizeSM, CloseOnOverlay: true, OnClose: onCancel})
	return c
}

func (c *Confirm) Modal() *Modal { return c.modal }

func (c *Confirm) Open(h *Host) {
	c.Busy = false
	c.modal.Open(h)
}

func (c *Confirm) TitleText() string   { return or(c.Title, defaultConfirmTitle) }
func (c *Confirm) MessageText() string { return or(c.Message, defaultConfirmMessage) }
func (c *Confirm) CancelText() string  { return or(c.CancelLabel, defaultCancelLabel) }

func (c *Confirm) ConfirmText() string {
	if c.Busy {
		return "Deleting..."
	}
	return or(c.ConfirmLabel, defaultConfirmLabel)
}

// ButtonsDisabled is true while the confirmed action is in flight.
func (c *Confirm) ButtonsDisabled() bool { return c.Busy }

// Cancel closes the dialog unless it is busy.
func (c *Confirm) Cancel() bool {
	if c.Busy || !c.modal.IsOpen() {
		return false
	}
	c.modal.Close()
	return true
}

func (c *Confirm) HandleKey(key string) bool {
	if c.Busy {
		return false
	}
	return c.modal.HandleKey(key)
}

func (c *Confirm) ClickOverlay() bool {
	if c.Busy {
		return false
	}
	return c.modal.ClickOverlay()
}

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
