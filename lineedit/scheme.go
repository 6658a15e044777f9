package lineedit

// Event represents the result of handling a key press.
type Event struct {
	Consumed    bool // true if the scheme handled the key
	TextChanged bool // true if editor content was modified
	Submit      bool // true if user wants to submit (Enter)
	Cancel      bool // true if user wants to cancel/exit
}

// KeyScheme interprets key presses and translates them to editor actions.
// Keys are named the way render.KeyReader names them.
type KeyScheme interface {
	// Name returns the scheme name for display/config.
	Name() string

	// HandleKey performs the editor action bound to key.
	HandleKey(e *Editor, key string) Event
}
