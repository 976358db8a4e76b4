package store

import "routegraph/dashboard/internal/models"

// Apply merges one change event into items and returns the new collection.
// The input slice is never modified.
//
// Create and Update replace the element with the same id in place, or insert
// at the front when the id is unknown. Delete removes the element or does
// nothing. Events whose record carries no id leave the collection unchanged.
func Apply[T models.Identifiable](items []T, event models.ChangeEvent[T]) []T {
	id, ok := event.Data.EntityID()
	if !ok {
		return append([]T(nil), items...)
	}
	idx := indexOf(items, id)

	switch event.Action {
	case models.ActionCreate, models.ActionUpdate:
		if idx >= 0 {
			out := append([]T(nil), items...)
			out[idx] = event.Data
			return out
		}
		out := make([]T, 0, len(items)+1)
		out = append(out, event.Data)
		return append(out, items...)
	case models.ActionDelete:
		if idx < 0 {
			return append([]T(nil), items...)
		}
		out := make([]T, 0, len(items)-1)
		out = append(out, items[:idx]...)
		return append(out, items[idx+1:]...)
	default:
		return append([]T(nil), items...)
	}
}

// ApplyToPage merges one change event into a page window.
//
// Create of an unknown id is unshifted and counted; Update of an unknown id
// is ignored because the record belongs to another page; Delete of a present
// id is removed and uncounted with a floor of zero. Page boundaries are not
// recomputed, so content can exceed the nominal size until the next fetch.
// A nil page yields nil and false.
func ApplyToPage[T models.Identifiable](page *models.Page[T], event models.ChangeEvent[T]) (*models.Page[T], bool) {
	if page == nil {
		return nil, false
	}
	id, ok := event.Data.EntityID()
	if !ok {
		return page.Clone(), false
	}
	present := indexOf(page.Content, id) >= 0

	out := page.Clone()
	switch event.Action {
	case models.ActionCreate:
		out.Content = Apply(page.Content, event)
		if !present {
			out.TotalElements++
		}
	case models.ActionUpdate:
		if !present {
			return out, false
		}
		out.Content = Apply(page.Content, event)
	case models.ActionDelete:
		if !present {
			return out, false
		}
		out.Content = Apply(page.Content, event)
		if out.TotalElements > 0 {
			out.TotalElements--
		}
	default:
		return out, false
	}
	return out, true
}

func indexOf[T models.Identifiable](items []T, id int64) int {
	for i, item := range items {
		if got, ok := item.EntityID(); ok && got == id {
			return i
		}
	}
	return -1
}

func findByID[T models.Identifiable](items []T, id int64) (T, bool) {
	if idx := indexOf(items, id); idx >= 0 {
		return items[idx], true
	}
	var zero T
	return zero, false
}
