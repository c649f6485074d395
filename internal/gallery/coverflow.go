package gallery

// Cover is the coverflow placement of one record relative to the selection.
type Cover struct {
	Index      int `json:"index"`
	Offset     int `json:"offset"`
	TranslateX int `json:"translate_x"`
	TranslateZ int `json:"translate_z"`
	RotateY    int `json:"rotate_y"`
	ZIndex     int `json:"z_index"`
}

// Placement computes where cover index sits when selected is in front.
// The selected cover faces the viewer; the rest fan out to either side,
// angled toward the centre.
func Placement(index, selected int) Cover {
	diff := index - selected
	if diff == 0 {
		return Cover{Index: index, TranslateZ: 100, ZIndex: 100}
	}

	sign := 1
	if diff < 0 {
		sign = -1
	}
	abs := diff * sign

	return Cover{
		Index:      index,
		Offset:     diff,
		TranslateX: sign * (80 + abs*80),
		TranslateZ: -250,
		RotateY:    -sign * 55,
		ZIndex:     10 - abs,
	}
}

// Covers returns the placement of every record for the given state.
func Covers(s State) []Cover {
	covers := make([]Cover, s.Total)
	for i := range covers {
		covers[i] = Placement(i, s.Selected)
	}
	return covers
}
