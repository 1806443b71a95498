package reorder

import "caretaker/internal/groups"

// FromDrag translates a drag from one flattened row index to another into an
// intent. flat must come from Collection.Flatten on the collection the intent
// will be applied to. It returns false when the drag means nothing: a header
// was dragged, an index is out of range, or the task was dropped on itself.
func FromDrag(flat []groups.Item, from, to int) (Intent, bool) {
	if from < 0 || from >= len(flat) || to < 0 || to >= len(flat) || from == to {
		return nil, false
	}
	src, dst := flat[from], flat[to]
	if src.Header {
		return nil, false
	}

	// Dropped onto a header: move into that group.
	if dst.Header {
		if dst.Group == src.Group {
			return nil, false
		}
		return AcrossGroups{TaskID: src.Task.ID, ToGroup: dst.Group}, true
	}

	if dst.Group != src.Group {
		return AcrossGroups{TaskID: src.Task.ID, ToGroup: dst.Group, Before: dst.Task.ID}, true
	}

	var ids []string
	for _, it := range flat {
		if !it.Header && it.Group == src.Group {
			ids = append(ids, it.Task.ID)
		}
	}
	fromIdx, toIdx := indexOf(ids, src.Task.ID), indexOf(ids, dst.Task.ID)
	if fromIdx < 0 || toIdx < 0 {
		return nil, false
	}
	return WithinGroup{Group: src.Group, TaskIDs: move(ids, fromIdx, toIdx)}, true
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// move returns a copy of ids with the element at from relocated to to.
func move(ids []string, from, to int) []string {
	out := make([]string, 0, len(ids))
	moved := ids[from]
	for i, id := range ids {
		if i != from {
			out = append(out, id)
		}
	}
	out = append(out[:to], append([]string{moved}, out[to:]...)...)
	return out
}
