package notes

import (
	"strings"
	"sync"
	"time"

	"notedeck/internal/types"
)

// FilterOptions holds the suggestion lists for the four categorical filters.
type FilterOptions struct {
	Subjects  []string
	Courses   []string
	Semesters []string
	Colleges  []string
}

func (o FilterOptions) For(field types.FilterField) []string {
	switch field {
	case types.FilterSubject:
		return o.Subjects
	case types.FilterCourse:
		return o.Courses
	case types.FilterSemester:
		return o.Semesters
	case types.FilterCollege:
		return o.Colleges
	default:
		return nil
	}
}

func (o FilterOptions) Empty() bool {
	return len(o.Subjects) == 0 && len(o.Courses) == 0 && len(o.Semesters) == 0 && len(o.Colleges) == 0
}

// DeriveOptions collects the distinct non-empty values of each filter field
// in first-seen order.
func DeriveOptions(list []*types.Note) FilterOptions {
	return FilterOptions{
		Subjects:  distinct(list, func(n *types.Note) string { return n.SubjectName }),
		Courses:   distinct(list, func(n *types.Note) string { return n.CourseName }),
		Semesters: distinct(list, func(n *types.Note) string { return n.Semester }),
		Colleges:  distinct(list, func(n *types.Note) string { return n.CollegeName }),
	}
}

// CollegeOptions is the college list shown by the admin table.
func CollegeOptions(list []*types.Note) []string {
	return distinct(list, func(n *types.Note) string { return n.CollegeName })
}

func distinct(list []*types.Note, value func(*types.Note) string) []string {
	out := []string{}
	seen := map[string]struct{}{}
	for _, note := range list {
		if note == nil {
			continue
		}
		v := strings.TrimSpace(value(note))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// OptionCache keeps the derived option sets for ttl. The first non-empty
// result always populates it; later non-empty results replace it only once
// the ttl has elapsed. A zero ttl refreshes on every non-empty result.
type OptionCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	options  FilterOptions
	loadedAt time.Time
	loaded   bool
}

func NewOptionCache(ttl time.Duration) *OptionCache {
	if ttl < 0 {
		ttl = 0
	}
	return &OptionCache{ttl: ttl, now: time.Now}
}

// Observe offers a freshly fetched collection and reports whether the
// options were refreshed from it.
func (c *OptionCache) Observe(list []*types.Note) bool {
	if len(list) == 0 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if c.loaded && c.ttl > 0 && now.Sub(c.loadedAt) < c.ttl {
		return false
	}
	c.options = DeriveOptions(list)
	c.loadedAt = now
	c.loaded = true
	return true
}

func (c *OptionCache) Options() FilterOptions {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.options
}

func (c *OptionCache) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}
