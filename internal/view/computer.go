package view

import (
	"golang.org/x/text/language"

	"github.com/tgienger/todo/internal/models"
)

// Source is a versioned collection, such as an engine.Store
type Source interface {
	Snapshot() models.Collection
	Version() uint64
}

// Computer caches the last Result and recomputes only when the source
// version or the spec changes.
type Computer struct {
	lang language.Tag

	valid   bool
	version uint64
	spec    Spec
	result  Result
}

// NewComputer returns a Computer collating text with lang
func NewComputer(lang language.Tag) *Computer {
	return &Computer{lang: lang}
}

// View returns the tasks of src selected by s
func (c *Computer) View(src Source, s Spec) Result {
	if c.valid && c.version == src.Version() && c.spec == s {
		return c.result
	}
	c.result = ComputeIn(c.lang, src.Snapshot(), s)
	c.version = src.Version()
	c.spec = s
	c.valid = true
	return c.result
}
