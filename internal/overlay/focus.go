package overlay

// FocusSurface is the document the sheet manages keyboard focus within.
// Elements are addressed by id; Focusables returns the focusable
// descendants of the open overlay in tab order.
type FocusSurface interface {
	ActiveElement() string
	Focus(id string)
	Focusables() []string
}

// advanceFocus moves focus one step through the overlay's focusable set,
// wrapping last to first (and first to last for shift-tab). Focus never
// escapes to the rest of the document while the trap is active; an active
// element outside the set snaps back to the boundary.
func advanceFocus(surface FocusSurface, backwards bool) {
	ids := surface.Focusables()
	if len(ids) == 0 {
		return
	}

	cur := -1
	active := surface.ActiveElement()
	for i, id := range ids {
		if id == active {
			cur = i
			break
		}
	}

	var next int
	switch {
	case cur == -1 && backwards:
		next = len(ids) - 1
	case cur == -1:
		next = 0
	case backwards:
		next = (cur - 1 + len(ids)) % len(ids)
	default:
		next = (cur + 1) % len(ids)
	}
	surface.Focus(ids[next])
}

// firstFocusable returns the id to receive initial focus, or "".
func firstFocusable(surface FocusSurface) string {
	ids := surface.Focusables()
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}
