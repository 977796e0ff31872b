package engine

// Rules holds configurable game rule settings.
type Rules struct {
	RecycleWaste bool   // if true, Take on an empty stock turns the waste back over
	MaxUndo      uint16 // 0 = unlimited undo history
}

// DefaultRules returns the standard Klondike rules.
func DefaultRules() Rules {
	return Rules{
		RecycleWaste: true,
		MaxUndo:      0,
	}
}
