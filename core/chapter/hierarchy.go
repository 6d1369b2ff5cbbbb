package chapter

// Tree partitions a flat chapter list by type. The three buckets are
// exhaustive and disjoint; chapters carrying an unknown type are
// reported in Unknown instead of being silently dropped.
type Tree struct {
	National []Chapter `json:"national"`
	State    []Chapter `json:"state"`
	Local    []Chapter `json:"local"`
	Unknown  []Chapter `json:"unknown,omitempty"`
}

// Partition buckets chapters by type.
func Partition(chapters []Chapter) Tree {
	var tree Tree
	for _, c := range chapters {
		switch c.Type {
		case TypeNational:
			tree.National = append(tree.National, c)
		case TypeState:
			tree.State = append(tree.State, c)
		case TypeLocal:
			tree.Local = append(tree.Local, c)
		default:
			tree.Unknown = append(tree.Unknown, c)
		}
	}
	return tree
}

// ChildrenOf returns the direct children of the chapter with the given id.
func ChildrenOf(chapters []Chapter, id string) []Chapter {
	var children []Chapter
	for _, c := range chapters {
		if c.ParentChapterID != "" && c.ParentChapterID == id {
			children = append(children, c)
		}
	}
	return children
}

// ParentOf resolves the parent of a chapter, if any.
func ParentOf(chapters []Chapter, c Chapter) (Chapter, bool) {
	if c.ParentChapterID == "" {
		return Chapter{}, false
	}
	for _, p := range chapters {
		if p.ID == c.ParentChapterID {
			return p, true
		}
	}
	return Chapter{}, false
}

// AncestorsOf walks the parent chain bottom-up. A visited set guards
// against cyclic parent chains; the walk stops at the first repeat.
func AncestorsOf(chapters []Chapter, c Chapter) []Chapter {
	var ancestors []Chapter
	visited := map[string]bool{c.ID: true}

	curr := c
	for {
		parent, ok := ParentOf(chapters, curr)
		if !ok || visited[parent.ID] {
			return ancestors
		}
		visited[parent.ID] = true
		ancestors = append(ancestors, parent)
		curr = parent
	}
}

// DescendantsOf collects all chapters below the given id, breadth-first,
// with the same cycle guard as AncestorsOf.
func DescendantsOf(chapters []Chapter, id string) []Chapter {
	var descendants []Chapter
	visited := map[string]bool{id: true}

	queue := []string{id}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, child := range ChildrenOf(chapters, curr) {
			if visited[child.ID] {
				continue
			}
			visited[child.ID] = true
			descendants = append(descendants, child)
			queue = append(queue, child.ID)
		}
	}
	return descendants
}
