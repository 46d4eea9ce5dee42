// Package content holds the static course material. Lessons are plain text
// files embedded at build time; a day without an authored file is not an
// error, the caller falls back to a placeholder.
package content

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

//go:embed lessons
var LessonsFS embed.FS

// Catalog maps course day numbers to authored lesson text.
type Catalog struct {
	lessons map[int]string
	maxDay  int
}

// NewCatalog scans lessons/day<N>.txt for N in 1..maxDay. Missing days are
// simply absent from the catalog.
func NewCatalog(fsys fs.FS, maxDay int) (*Catalog, error) {
	if maxDay <= 0 {
		maxDay = 7
	}
	lessons := make(map[int]string)
	for day := 1; day <= maxDay; day++ {
		name := path.Join("lessons", fmt.Sprintf("day%d.txt", day))
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			continue
		}
		text := strings.TrimRight(string(data), "\n")
		if strings.TrimSpace(text) == "" {
			continue
		}
		lessons[day] = text
	}
	return &Catalog{lessons: lessons, maxDay: maxDay}, nil
}

// Lesson returns the authored text for the day, if any.
func (c *Catalog) Lesson(day int) (string, bool) {
	text, ok := c.lessons[day]
	return text, ok
}

// MaxDay is the highest day the bot registers a command for.
func (c *Catalog) MaxDay() int { return c.maxDay }

// AuthoredDays returns how many days have real content.
func (c *Catalog) AuthoredDays() int { return len(c.lessons) }
