package views

// pane holds the sizing and one-line flash notice every view model
// shares. Views embed it and print the flash in their footer: Flash for
// confirmations like a completed or copied task, FlashError for
// failures from the vault.
type pane struct {
	width    int
	height   int
	flash    string
	flashErr bool
}

// SetSize records the terminal dimensions from the latest resize.
func (p *pane) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// Flash shows a confirmation notice until the next ClearFlash.
func (p *pane) Flash(text string) {
	p.flash = text
	p.flashErr = false
}

// FlashError shows an error notice until the next ClearFlash.
func (p *pane) FlashError(text string) {
	p.flash = text
	p.flashErr = true
}

// ClearFlash removes the current notice.
func (p *pane) ClearFlash() {
	p.flash = ""
	p.flashErr = false
}
