// Package checkpointer implements periodic saving of objects, such as
// learned action values, during an experiment
package checkpointer

// Serializable is an object that can be saved to a file
type Serializable interface {
	Save(filename string) error
}

// Checkpointer checkpoints/saves serializable objects at the end of
// episodes
type Checkpointer interface {
	// Checkpoint is called with the number of episodes finished so far
	Checkpoint(episode int) error
}
