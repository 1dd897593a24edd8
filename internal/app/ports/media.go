package ports

// MediaPlayer is the playback collaborator. Play replaces any pending onEnd
// callback: the slot holds at most one continuation, never a list. Looping
// clips have no natural end; their onEnd, if any, is ignored. PlaySound is
// fire and forget and does not touch the continuation slot.
type MediaPlayer interface {
	Play(clip string, loop bool, onEnd func())
	PlaySound(clip string)
	Stop()
}
