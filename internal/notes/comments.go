package notes

import "notedeck/internal/types"

// PatchCommentText returns a copy of comments with the matching comment's
// text replaced. ok is false when no comment has that id.
func PatchCommentText(comments []types.Comment, id, text string) ([]types.Comment, bool) {
	out := append([]types.Comment{}, comments...)
	for i := range out {
		if out[i].ID == id {
			out[i].Text = text
			return out, true
		}
	}
	return out, false
}

func RemoveComment(comments []types.Comment, id string) []types.Comment {
	out := make([]types.Comment, 0, len(comments))
	for _, comment := range comments {
		if comment.ID != id {
			out = append(out, comment)
		}
	}
	return out
}

// RemoveByID drops the note with id and leaves every other entry in order.
func RemoveByID(list []*types.Note, id string) []*types.Note {
	out := make([]*types.Note, 0, len(list))
	for _, note := range list {
		if note != nil && note.ID == id {
			continue
		}
		out = append(out, note)
	}
	return out
}

// ReplaceByID swaps in updated for the note with the same id.
func ReplaceByID(list []*types.Note, updated *types.Note) []*types.Note {
	out := make([]*types.Note, len(list))
	copy(out, list)
	if updated == nil {
		return out
	}
	for i, note := range out {
		if note != nil && note.ID == updated.ID {
			out[i] = updated
		}
	}
	return out
}

func FindByID(list []*types.Note, id string) *types.Note {
	for _, note := range list {
		if note != nil && note.ID == id {
			return note
		}
	}
	return nil
}
