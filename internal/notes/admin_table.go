package notes

import (
	"sort"
	"strings"
	"sync"

	"notedeck/internal/types"
)

type SortKey string

const (
	SortTitle     SortKey = "title"
	SortSubject   SortKey = "subject"
	SortCollege   SortKey = "collegeName"
	SortApproved  SortKey = "approved"
	SortDownloads SortKey = "downloadCount"
	SortCreated   SortKey = "createdAt"
)

type SortState struct {
	Key  SortKey
	Desc bool
}

func DefaultSortState() SortState {
	return SortState{Key: SortCreated, Desc: true}
}

// Toggle clicks a column header: the active column flips direction, any
// other column becomes active ascending.
func (s SortState) Toggle(key SortKey) SortState {
	key = ParseSortKey(string(key))
	if s.Key == key {
		return SortState{Key: key, Desc: !s.Desc}
	}
	return SortState{Key: key}
}

// SortKeySpec describes one sortable column. Compare orders two non-nil
// notes and returns <0, 0 or >0.
type SortKeySpec struct {
	Key     SortKey
	Label   string
	Compare func(left, right *types.Note) int
}

var (
	sortRegistryMu sync.RWMutex
	sortSpecs      = map[SortKey]SortKeySpec{}
	sortOrder      = []SortKey{}
)

func init() {
	RegisterSortKey(SortKeySpec{Key: SortTitle, Label: "Title", Compare: func(l, r *types.Note) int {
		return compareStrings(l.Title, r.Title)
	}})
	RegisterSortKey(SortKeySpec{Key: SortSubject, Label: "Subject", Compare: func(l, r *types.Note) int {
		return compareStrings(l.SubjectName, r.SubjectName)
	}})
	RegisterSortKey(SortKeySpec{Key: SortCollege, Label: "College", Compare: func(l, r *types.Note) int {
		return compareStrings(l.CollegeName, r.CollegeName)
	}})
	RegisterSortKey(SortKeySpec{Key: SortApproved, Label: "Status", Compare: func(l, r *types.Note) int {
		return compareBools(l.Approved, r.Approved)
	}})
	RegisterSortKey(SortKeySpec{Key: SortDownloads, Label: "Downloads", Compare: func(l, r *types.Note) int {
		return l.DownloadCount - r.DownloadCount
	}})
	RegisterSortKey(SortKeySpec{Key: SortCreated, Label: "Uploaded", Compare: func(l, r *types.Note) int {
		return l.CreatedAt.Compare(r.CreatedAt)
	}})
}

func RegisterSortKey(spec SortKeySpec) {
	key := SortKey(strings.TrimSpace(string(spec.Key)))
	if key == "" || spec.Compare == nil {
		return
	}
	spec.Key = key
	if strings.TrimSpace(spec.Label) == "" {
		spec.Label = string(key)
	}
	sortRegistryMu.Lock()
	defer sortRegistryMu.Unlock()
	if _, exists := sortSpecs[key]; !exists {
		sortOrder = append(sortOrder, key)
	}
	sortSpecs[key] = spec
}

// SortKeys lists registered columns in registration order.
func SortKeys() []SortKey {
	sortRegistryMu.RLock()
	defer sortRegistryMu.RUnlock()
	return append([]SortKey(nil), sortOrder...)
}

func ParseSortKey(raw string) SortKey {
	key := SortKey(strings.TrimSpace(raw))
	sortRegistryMu.RLock()
	defer sortRegistryMu.RUnlock()
	if _, ok := sortSpecs[key]; ok {
		return key
	}
	return SortCreated
}

func SortLabel(key SortKey) string {
	key = ParseSortKey(string(key))
	sortRegistryMu.RLock()
	defer sortRegistryMu.RUnlock()
	return sortSpecs[key].Label
}

// SortNotes returns a sorted copy. Ties keep their input order and nil
// entries sort first.
func SortNotes(list []*types.Note, state SortState) []*types.Note {
	key := ParseSortKey(string(state.Key))
	sortRegistryMu.RLock()
	spec := sortSpecs[key]
	sortRegistryMu.RUnlock()

	out := append([]*types.Note(nil), list...)
	sort.SliceStable(out, func(i, j int) bool {
		left, right := out[i], out[j]
		var cmp int
		switch {
		case left == nil && right == nil:
			cmp = 0
		case left == nil:
			cmp = -1
		case right == nil:
			cmp = 1
		default:
			cmp = spec.Compare(left, right)
		}
		if state.Desc {
			return cmp > 0
		}
		return cmp < 0
	})
	return out
}

// compareStrings is case-insensitive; empty values sort before any text.
func compareStrings(left, right string) int {
	return strings.Compare(strings.ToLower(strings.TrimSpace(left)), strings.ToLower(strings.TrimSpace(right)))
}

func compareBools(left, right bool) int {
	switch {
	case left == right:
		return 0
	case !left:
		return -1
	default:
		return 1
	}
}

// AdminFilter is the conjunction the moderation table applies.
type AdminFilter struct {
	Search  string
	College string
	Status  types.ReviewStatus
}

func (f AdminFilter) Match(note *types.Note) bool {
	if note == nil {
		return false
	}
	if search := strings.ToLower(strings.TrimSpace(f.Search)); search != "" {
		if !strings.Contains(strings.ToLower(note.Title), search) &&
			!strings.Contains(strings.ToLower(note.SubjectName), search) &&
			!strings.Contains(strings.ToLower(note.UploaderName()), search) {
			return false
		}
	}
	if college := strings.TrimSpace(f.College); college != "" && note.CollegeName != college {
		return false
	}
	switch f.Status {
	case types.ReviewStatusApproved:
		return note.Approved
	case types.ReviewStatusPending:
		return !note.Approved
	default:
		return true
	}
}

// AdminView derives the visible rows from the cached corpus.
func AdminView(list []*types.Note, filter AdminFilter, state SortState) []*types.Note {
	sorted := SortNotes(list, state)
	out := make([]*types.Note, 0, len(sorted))
	for _, note := range sorted {
		if filter.Match(note) {
			out = append(out, note)
		}
	}
	return out
}

type ReviewCounts struct {
	Total    int
	Approved int
	Pending  int
}

func CountReviews(list []*types.Note) ReviewCounts {
	var counts ReviewCounts
	for _, note := range list {
		if note == nil {
			continue
		}
		counts.Total++
		if note.Approved {
			counts.Approved++
		} else {
			counts.Pending++
		}
	}
	return counts
}
