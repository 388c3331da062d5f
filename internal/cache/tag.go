package cache

import (
	"fmt"
	"strconv"
)

type TagType string

const (
	TagProjects TagType = "Projects"
	TagTasks    TagType = "Tasks"
	TagUsers    TagType = "Users"
	TagTeams    TagType = "Teams"
)

// Tag labels the data a cache entry holds. A tag without an id stands for the
// whole resource type.
type Tag struct {
	Type  TagType
	ID    int
	HasID bool
}

func TypeTag(t TagType) Tag {
	return Tag{Type: t}
}

func IDTag(t TagType, id int) Tag {
	return Tag{Type: t, ID: id, HasID: true}
}

// Invalidates reports whether invalidating t affects an entry that provided p.
// A type-level tag hits every entry of that type; an id tag only hits entries
// that provided the same id.
func (t Tag) Invalidates(p Tag) bool {
	if t.Type != p.Type {
		return false
	}
	if !t.HasID {
		return true
	}
	return p.HasID && p.ID == t.ID
}

func (t Tag) String() string {
	if !t.HasID {
		return string(t.Type)
	}
	return string(t.Type) + ":" + strconv.Itoa(t.ID)
}

// InvalidationRule is one tag pattern a mutation invalidates. With ByID the
// pattern resolves to the id the mutation was called with.
type InvalidationRule struct {
	Type TagType
	ByID bool
}

// InvalidationTable maps a mutation kind to the tag patterns it invalidates.
type InvalidationTable map[string][]InvalidationRule

func (t InvalidationTable) Tags(kind string, id int) ([]Tag, error) {
	rules, ok := t[kind]
	if !ok {
		return nil, fmt.Errorf("no invalidation rule for mutation %q", kind)
	}
	tags := make([]Tag, 0, len(rules))
	for _, r := range rules {
		if r.ByID {
			tags = append(tags, IDTag(r.Type, id))
		} else {
			tags = append(tags, TypeTag(r.Type))
		}
	}
	return tags, nil
}

// ListTags tags each item by id, or returns fallback when there is nothing to tag.
func ListTags[T any](typ TagType, items []T, id func(T) int, fallback Tag) []Tag {
	if len(items) == 0 {
		return []Tag{fallback}
	}
	tags := make([]Tag, 0, len(items))
	for _, item := range items {
		tags = append(tags, IDTag(typ, id(item)))
	}
	return tags
}
