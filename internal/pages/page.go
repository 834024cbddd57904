package pages

import (
	"context"
	"errors"
	"sync"
)

// Status is the banner and progress part of every screen's state.
type Status struct {
	Loading   bool
	Uploading bool
	Error     string // Error banner, empty when the last action succeeded
	Notice    string // Success banner, e.g. the import summary
}

// page is the mutex-guarded core embedded by every controller.
type page struct {
	env

	mu     sync.Mutex
	seq    sequencer
	status Status
}

// begin issues a token for a fetch and marks the screen as loading.
func (p *page) begin() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.Loading = true
	return p.seq.next()
}

func (p *page) setUploading(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.Uploading = v
}

func (p *page) setError(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.Error = msg
	p.status.Notice = ""
}

func (p *page) setNotice(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.Notice = msg
	p.status.Error = ""
}

// uploadFailed shows the rejection message for classifier rejects and the
// backend detail or generic upload message for everything else.
func (p *page) uploadFailed(ctx context.Context, err error) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		p.setError(rej.Message)
		return
	}
	p.logger.ErrorContext(ctx, "upload failed", "error", err)
	p.setError(p.userMessage(err, msgUpload))
}
