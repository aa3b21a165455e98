package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
)

// progressObserver draws one progress bar per translated document.
type progressObserver struct {
	bar *progressbar.ProgressBar
}

func newProgressObserver() *progressObserver {
	return &progressObserver{}
}

func (o *progressObserver) FileStarted(name string, total int) {
	if total == 0 {
		o.bar = nil
		return
	}
	o.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan]%s[reset]", filepath.Base(name))),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
	)
}

func (o *progressObserver) EntryDone(string, bool) {
	if o.bar != nil {
		_ = o.bar.Add(1)
	}
}

func (o *progressObserver) FileDone(string, error) {
	if o.bar == nil {
		return
	}
	if !o.bar.IsFinished() {
		_ = o.bar.Finish()
	}
	o.bar = nil
}
