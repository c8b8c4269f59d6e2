package domain

// Screen is everything needed to render one menu message.
type Screen struct {
	Image    string
	Caption  string
	Keyboard Keyboard
}

// Keyboard is an inline keyboard layout, row by row.
type Keyboard struct {
	Rows [][]Button
}

// Button is an inline button carrying packed callback data.
type Button struct {
	Text string
	Data string
}

// IsEmpty reports whether the keyboard has no buttons.
func (k Keyboard) IsEmpty() bool {
	for _, row := range k.Rows {
		if len(row) > 0 {
			return false
		}
	}
	return true
}
