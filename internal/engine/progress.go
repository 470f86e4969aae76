package engine

import (
	"os"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// passBar renders pass progress on stderr. A disabled bar is a no-op so the
// write loop never branches on the progress setting.
type passBar struct {
	p   *mpb.Progress
	bar *mpb.Bar
}

func newPassBar(enabled bool, iters uint64) *passBar {
	if !enabled {
		return &passBar{}
	}
	p := mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
	bar := p.AddBar(int64(iters),
		mpb.PrependDecorators(
			decor.Name("pass: ", decor.WC{W: len("pass: "), C: decor.DindentRight}),
			decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(decor.Percentage(decor.WC{W: 5})),
		mpb.BarFillerClearOnComplete(),
	)
	return &passBar{p: p, bar: bar}
}

func (b *passBar) step() {
	if b.bar != nil {
		b.bar.Increment()
	}
}

func (b *passBar) done() {
	if b.p == nil {
		return
	}
	// An aborted run leaves the bar incomplete; drop it so Wait returns.
	if b.bar != nil && !b.bar.Completed() {
		b.bar.Abort(true)
	}
	b.p.Wait()
}
