package checkpointer

import "fmt"

// nEpisode implements checkpointing every N episodes
type nEpisode struct {
	interval int
	object   Serializable // Object to save

	// filename returns the filename of the file to save the object in.
	//
	// Use Enumerate to keep every checkpoint in its own file, or
	// Filename to overwrite a single file.
	filename func() string
}

// NewNEpisode returns a checkpointer that checkpoints every n episodes
func NewNEpisode(n int, object Serializable,
	filename func() string) (Checkpointer, error) {
	if n <= 0 {
		return nil, fmt.Errorf("newNEpisode: interval must be positive, "+
			"got %v", n)
	}
	return &nEpisode{
		interval: n,
		object:   object,
		filename: filename,
	}, nil
}

// Checkpoint saves the tracked object if episode is a multiple of the
// checkpoint interval
func (n *nEpisode) Checkpoint(episode int) error {
	if episode > 0 && episode%n.interval == 0 {
		return n.object.Save(n.filename())
	}
	return nil
}
