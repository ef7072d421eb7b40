package classfile

import (
	"fmt"
	"sort"
)

// MapLoader is an in-memory Loader keyed by class name.
type MapLoader struct {
	classes map[string]*ClassFile
}

// NewMapLoader creates a loader containing classes.
func NewMapLoader(classes ...*ClassFile) *MapLoader {
	l := &MapLoader{classes: make(map[string]*ClassFile, len(classes))}
	for _, c := range classes {
		l.Add(c)
	}
	return l
}

// Add registers or replaces a class.
func (l *MapLoader) Add(c *ClassFile) {
	l.classes[c.Name] = c
}

// Load implements Loader.
func (l *MapLoader) Load(name string) (*ClassFile, error) {
	c, ok := l.classes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return c, nil
}

// Names returns all class names in sorted order.
func (l *MapLoader) Names() []string {
	names := make([]string, 0, len(l.classes))
	for name := range l.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of classes.
func (l *MapLoader) Len() int {
	return len(l.classes)
}
