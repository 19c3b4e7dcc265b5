package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"

	"github.com/custodia-labs/ledgerscrape/internal/core/ports/driving"
	"github.com/custodia-labs/ledgerscrape/internal/logger"
)

// progress shows a spinner with the current crawl position.
// It is inert when stderr is not a terminal or verbose logging is on.
type progress struct {
	mu      sync.Mutex
	spinner *spinner.Spinner
}

// isTerminal is replaced in tests.
var isTerminal = func(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func newProgress(w io.Writer) *progress {
	if logger.IsVerbose() || !isTerminal(os.Stderr) {
		return &progress{}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " starting"
	return &progress{spinner: s}
}

// onPage updates the spinner text.
func (p *progress) onPage(pp driving.PageProgress) {
	if p.spinner == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.spinner.Suffix = fmt.Sprintf(" %s: page %d, %d records, cursor %d", pp.Source, pp.Page, pp.Total, pp.Cursor)
	if !p.spinner.Active() {
		p.spinner.Start()
	}
}

// stop clears the spinner line.
func (p *progress) stop() {
	if p.spinner == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.spinner.Stop()
}
