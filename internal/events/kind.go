package events

// Kind identifies what changed. The meaning of an event's Param depends on its Kind.
type Kind int

const (
	None Kind = iota
	// PlaylistChange: Param is the index of the first inserted or changed
	// entry, or -1 when the playlist was cleared.
	PlaylistChange
	// QueueChange: Param is the new queue length.
	QueueChange
	// TrackChange: Param is the 1-based playlist position, or -1 for a file
	// played outside the playlist.
	TrackChange
	// PlaybackStateChange: Param is a player.Status value.
	PlaybackStateChange
	// PlaymodeChange: Param is a playlist.PlayMode value.
	PlaymodeChange
	// VolumeChange: Param is the volume in percent.
	VolumeChange
	TrackInfoChange
	// PlaybackTimeChange: Param is the elapsed time in milliseconds.
	PlaybackTimeChange
	Quit
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case None:
		return "NONE"
	case PlaylistChange:
		return "PLAYLIST_CHANGE"
	case QueueChange:
		return "QUEUE_CHANGE"
	case TrackChange:
		return "TRACK_CHANGE"
	case PlaybackStateChange:
		return "PLAYBACK_STATE_CHANGE"
	case PlaymodeChange:
		return "PLAYMODE_CHANGE"
	case VolumeChange:
		return "VOLUME_CHANGE"
	case TrackInfoChange:
		return "TRACKINFO_CHANGE"
	case PlaybackTimeChange:
		return "PLAYBACK_TIME_CHANGE"
	case Quit:
		return "QUIT"
	default:
		return "UNKNOWN"
	}
}

// Event is a single notification carried by the Queue.
type Event struct {
	Kind  Kind
	Param int
}
