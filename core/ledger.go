// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/devblok/trigon/gfx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Kind orders resources by dependency. A resource may only be recorded
// after every resource of a lower kind it depends on.
type Kind int

// Resource kinds in acquisition order.
const (
	KindLibrary Kind = iota
	KindInstance
	KindSurface
	KindDevice
	KindSwapchain
	KindImageView
	KindShaderModule
	KindRenderPass
	KindPipelineLayout
	KindPipeline
	KindFramebuffer
	KindCommandPool
	KindCommandBuffers
	KindSemaphore
)

var kindNames = [...]string{
	"library",
	"instance",
	"surface",
	"device",
	"swapchain",
	"image view",
	"shader module",
	"render pass",
	"pipeline layout",
	"pipeline",
	"framebuffer",
	"command pool",
	"command buffers",
	"semaphore",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// InFlight reports whether the GPU may still be using resources of
// this kind after their last submission.
func (k Kind) InFlight() bool {
	switch k {
	case KindSwapchain, KindCommandPool, KindCommandBuffers, KindSemaphore:
		return true
	}
	return false
}

type entry struct {
	kind    Kind
	handle  gfx.Handle
	release func() error
}

// Ledger records owned resources in acquisition order and releases
// them in exactly the reverse order.
type Ledger struct {
	entries []entry

	barrier     func() error
	barrierDone bool
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Push records handle of kind. release is called once during Unwind
// unless handle is null.
func (l *Ledger) Push(kind Kind, handle gfx.Handle, release func() error) error {
	if n := len(l.entries); n > 0 && kind < l.entries[n-1].kind {
		return errors.Wrapf(ErrOutOfOrder, "%s after %s", kind, l.entries[n-1].kind)
	}
	l.entries = append(l.entries, entry{
		kind:    kind,
		handle:  handle,
		release: release,
	})
	l.barrierDone = false
	return nil
}

// SetBarrier installs the wait that has to complete before the first
// in-flight resource is released, usually a device wait idle.
func (l *Ledger) SetBarrier(barrier func() error) {
	l.barrier = barrier
	l.barrierDone = false
}

// Len returns the number of live entries.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Top returns the kind of the most recently recorded resource.
func (l *Ledger) Top() (Kind, bool) {
	if len(l.entries) == 0 {
		return 0, false
	}
	return l.entries[len(l.entries)-1].kind, true
}

// Unwind releases every recorded resource, newest first. Null handles
// are skipped, a failing release does not stop the unwind and the
// first error is returned. Calling Unwind again is a no-op.
func (l *Ledger) Unwind() error {
	var first error
	for len(l.entries) > 0 {
		e := l.entries[len(l.entries)-1]
		l.entries = l.entries[:len(l.entries)-1]

		if e.handle.IsNull() || e.release == nil {
			continue
		}

		if e.kind.InFlight() && !l.barrierDone {
			l.barrierDone = true
			if l.barrier != nil {
				if err := l.barrier(); err != nil {
					log.WithError(err).Warn("wait before teardown failed")
					if first == nil {
						first = err
					}
				}
			}
		}

		log.WithFields(log.Fields{
			"kind":   e.kind,
			"handle": uintptr(e.handle),
		}).Debug("releasing")
		if err := e.release(); err != nil {
			log.WithError(err).WithField("kind", e.kind).Error("release failed")
			if first == nil {
				first = errors.Wrapf(err, "releasing %s", e.kind)
			}
		}
	}
	l.barrier = nil
	return first
}
