package domain

import "maps"

// EntryKind identifies the shape of a validation entry.
type EntryKind int

const (
	// EntryField is a field with one or more rule violations.
	EntryField EntryKind = iota

	// EntryStruct is a nested object that itself failed validation.
	EntryStruct

	// EntryList is a collection field that failed at specific indices.
	EntryList
)

// Violation is one elementary rule violation.
type Violation struct {
	Code string
	Args map[string]string
}

// IndexedTree is the nested failure set of one list element.
type IndexedTree struct {
	Index int
	Tree  *ValidationTree
}

// ValidationEntry is one entry of a ValidationTree. Which of Violations,
// Nested and Items is populated depends on Kind.
type ValidationEntry struct {
	Kind       EntryKind
	Field      string
	Violations []Violation
	Nested     *ValidationTree
	Items      []IndexedTree
}

// ValidationTree is an ordered, possibly nested set of validation failures.
// Entries keep the order in which fields were first reported.
type ValidationTree struct {
	Entries []ValidationEntry
}

// AddField records violations for a field. Violations for a field already
// present are appended to its entry, keeping rule order.
func (t *ValidationTree) AddField(field string, violations ...Violation) {
	for i := range t.Entries {
		if t.Entries[i].Kind == EntryField && t.Entries[i].Field == field {
			t.Entries[i].Violations = append(t.Entries[i].Violations, violations...)
			return
		}
	}

	t.Entries = append(t.Entries, ValidationEntry{
		Kind:       EntryField,
		Field:      field,
		Violations: violations,
	})
}

// Struct returns the nested tree for a struct-valued field, creating it on
// first use.
func (t *ValidationTree) Struct(field string) *ValidationTree {
	for i := range t.Entries {
		if t.Entries[i].Kind == EntryStruct && t.Entries[i].Field == field {
			return t.Entries[i].Nested
		}
	}

	nested := &ValidationTree{}
	t.Entries = append(t.Entries, ValidationEntry{
		Kind:   EntryStruct,
		Field:  field,
		Nested: nested,
	})

	return nested
}

// Item returns the nested tree for element index of a list-valued field,
// creating the list entry and the element on first use.
func (t *ValidationTree) Item(field string, index int) *ValidationTree {
	var entry *ValidationEntry

	for i := range t.Entries {
		if t.Entries[i].Kind == EntryList && t.Entries[i].Field == field {
			entry = &t.Entries[i]
			break
		}
	}

	if entry == nil {
		t.Entries = append(t.Entries, ValidationEntry{Kind: EntryList, Field: field})
		entry = &t.Entries[len(t.Entries)-1]
	}

	for _, item := range entry.Items {
		if item.Index == index {
			return item.Tree
		}
	}

	nested := &ValidationTree{}
	entry.Items = append(entry.Items, IndexedTree{Index: index, Tree: nested})

	return nested
}

// Count returns the number of elementary rule violations in the tree.
func (t *ValidationTree) Count() int {
	if t == nil {
		return 0
	}

	n := 0

	for _, e := range t.Entries {
		switch e.Kind {
		case EntryField:
			n += len(e.Violations)
		case EntryStruct:
			n += e.Nested.Count()
		case EntryList:
			for _, item := range e.Items {
				n += item.Tree.Count()
			}
		}
	}

	return n
}

// Empty reports whether the tree holds no violations.
func (t *ValidationTree) Empty() bool {
	return t.Count() == 0
}

// Flatten converts a nested validation tree into leaf nodes, one per
// elementary violation, in field declaration order and, within a field, in
// rule order. It never fails; an empty tree yields an empty slice. The
// aggregating root node is the caller's business.
func Flatten(tree ValidationTree) []ErrorNode {
	nodes := make([]ErrorNode, 0, tree.Count())

	return flattenInto(nodes, &tree)
}

func flattenInto(nodes []ErrorNode, tree *ValidationTree) []ErrorNode {
	if tree == nil {
		return nodes
	}

	for _, e := range tree.Entries {
		switch e.Kind {
		case EntryField:
			for _, v := range e.Violations {
				nodes = append(nodes, ErrorNode{Code: v.Code, Args: maps.Clone(v.Args)})
			}
		case EntryStruct:
			nodes = flattenInto(nodes, e.Nested)
		case EntryList:
			for _, item := range e.Items {
				nodes = flattenInto(nodes, item.Tree)
			}
		}
	}

	return nodes
}
