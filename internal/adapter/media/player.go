package media

import "sync"

// InstantPlayer is the headless playback adapter: every non-looping clip
// completes immediately, with the continuation invoked on its own goroutine
// so callers may hold their lock across Play. The slot holds at most one
// continuation; replacing or stopping invalidates the pending one.
type InstantPlayer struct {
	mu  sync.Mutex
	gen uint64
}

func NewInstantPlayer() *InstantPlayer { return &InstantPlayer{} }

func (p *InstantPlayer) Play(clip string, loop bool, onEnd func()) {
	p.mu.Lock()
	p.gen++
	gen := p.gen
	p.mu.Unlock()

	if loop || onEnd == nil {
		return
	}
	go func() {
		p.mu.Lock()
		stale := p.gen != gen
		p.mu.Unlock()
		if !stale {
			onEnd()
		}
	}()
}

func (p *InstantPlayer) PlaySound(clip string) {}

func (p *InstantPlayer) Stop() {
	p.mu.Lock()
	p.gen++
	p.mu.Unlock()
}

// ManualPlayer waits for an external end-of-clip confirmation, the mode used
// when a browser client actually plays the video and reports back. The slot
// semantics match InstantPlayer: one pending continuation, replaced by the
// next Play.
type ManualPlayer struct {
	mu      sync.Mutex
	clip    string
	looping bool
	onEnd   func()
	sounds  []string
}

func NewManualPlayer() *ManualPlayer { return &ManualPlayer{} }

func (p *ManualPlayer) Play(clip string, loop bool, onEnd func()) {
	p.mu.Lock()
	p.clip = clip
	p.looping = loop
	if loop {
		p.onEnd = nil
	} else {
		p.onEnd = onEnd
	}
	p.mu.Unlock()
}

func (p *ManualPlayer) PlaySound(clip string) {
	p.mu.Lock()
	p.sounds = append(p.sounds, clip)
	p.mu.Unlock()
}

func (p *ManualPlayer) Stop() {
	p.mu.Lock()
	p.clip = ""
	p.looping = false
	p.onEnd = nil
	p.mu.Unlock()
}

// NotifyEnded reports that the current clip finished. The continuation is
// cleared before it runs, so a re-entrant Play starts from an empty slot.
func (p *ManualPlayer) NotifyEnded() {
	p.mu.Lock()
	cb := p.onEnd
	p.onEnd = nil
	p.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// Current reports the clip on stage and whether it loops.
func (p *ManualPlayer) Current() (clip string, looping bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clip, p.looping
}
