package chapter

import (
	"testing"
)

func chp(id, typ, parentID string) Chapter {
	return Chapter{ID: id, Name: "Chapter " + id, Type: typ, ParentChapterID: parentID}
}

func TestPartition(t *testing.T) {
	national := chp("nat", TypeNational, "")
	ca := chp("ca", TypeState, "nat")
	tx := chp("tx", TypeState, "nat")
	la := chp("la", TypeLocal, "ca")
	odd := chp("odd", "regional", "")

	chapters := []Chapter{national, ca, tx, la, odd}
	tree := Partition(chapters)

	if got := len(tree.National); got != 1 {
		t.Errorf("Partition() national = %v; want 1", got)
	}
	if got := len(tree.State); got != 2 {
		t.Errorf("Partition() state = %v; want 2", got)
	}
	if got := len(tree.Local); got != 1 {
		t.Errorf("Partition() local = %v; want 1", got)
	}
	if got := len(tree.Unknown); got != 1 {
		t.Errorf("Partition() unknown = %v; want 1", got)
	}

	// exhaustive: every chapter lands in exactly one bucket
	total := len(tree.National) + len(tree.State) + len(tree.Local) + len(tree.Unknown)
	if total != len(chapters) {
		t.Errorf("Partition() buckets total = %v; want %v", total, len(chapters))
	}

	// disjoint: no id appears twice across buckets
	seen := make(map[string]bool)
	for _, bucket := range [][]Chapter{tree.National, tree.State, tree.Local, tree.Unknown} {
		for _, c := range bucket {
			if seen[c.ID] {
				t.Errorf("Partition() chapter %q appears in more than one bucket", c.ID)
			}
			seen[c.ID] = true
		}
	}
}

func TestChildrenOf(t *testing.T) {
	chapters := []Chapter{
		chp("nat", TypeNational, ""),
		chp("ca", TypeState, "nat"),
		chp("tx", TypeState, "nat"),
		chp("la", TypeLocal, "ca"),
		chp("sf", TypeLocal, "ca"),
	}

	tests := []struct {
		name string
		id   string
		want int
	}{
		{"national children", "nat", 2},
		{"state children", "ca", 2},
		{"leaf", "la", 0},
		{"unknown id", "nope", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(ChildrenOf(chapters, tt.id)); got != tt.want {
				t.Errorf("ChildrenOf(%q) = %v children; want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestParentOf(t *testing.T) {
	nat := chp("nat", TypeNational, "")
	ca := chp("ca", TypeState, "nat")
	orphan := chp("or", TypeState, "gone")
	chapters := []Chapter{nat, ca, orphan}

	if p, ok := ParentOf(chapters, ca); !ok || p.ID != "nat" {
		t.Errorf("ParentOf(ca) = %v, %v; want nat, true", p.ID, ok)
	}
	if _, ok := ParentOf(chapters, nat); ok {
		t.Error("ParentOf(nat) found a parent; want none")
	}
	if _, ok := ParentOf(chapters, orphan); ok {
		t.Error("ParentOf(orphan) found a parent; want none")
	}
}

func TestAncestorsOf(t *testing.T) {
	nat := chp("nat", TypeNational, "")
	ca := chp("ca", TypeState, "nat")
	la := chp("la", TypeLocal, "ca")
	chapters := []Chapter{nat, ca, la}

	ancestors := AncestorsOf(chapters, la)
	if len(ancestors) != 2 || ancestors[0].ID != "ca" || ancestors[1].ID != "nat" {
		t.Errorf("AncestorsOf(la) = %v; want [ca nat]", ids(ancestors))
	}
}

func TestAncestorsOf_cyclicChain(t *testing.T) {
	// a -> b -> c -> a : the walk must terminate
	a := chp("a", TypeState, "b")
	b := chp("b", TypeState, "c")
	c := chp("c", TypeState, "a")
	chapters := []Chapter{a, b, c}

	ancestors := AncestorsOf(chapters, a)
	if len(ancestors) != 2 {
		t.Errorf("AncestorsOf(a) = %v; want 2 ancestors before the cycle closes", ids(ancestors))
	}
}

func TestDescendantsOf(t *testing.T) {
	chapters := []Chapter{
		chp("nat", TypeNational, ""),
		chp("ca", TypeState, "nat"),
		chp("tx", TypeState, "nat"),
		chp("la", TypeLocal, "ca"),
		chp("sf", TypeLocal, "ca"),
	}

	descendants := DescendantsOf(chapters, "nat")
	if len(descendants) != 4 {
		t.Errorf("DescendantsOf(nat) = %v; want 4 descendants", ids(descendants))
	}

	descendants = DescendantsOf(chapters, "ca")
	if len(descendants) != 2 {
		t.Errorf("DescendantsOf(ca) = %v; want 2 descendants", ids(descendants))
	}
}

func TestDescendantsOf_cyclicChain(t *testing.T) {
	a := chp("a", TypeState, "c")
	b := chp("b", TypeState, "a")
	c := chp("c", TypeState, "b")
	chapters := []Chapter{a, b, c}

	descendants := DescendantsOf(chapters, "a")
	if len(descendants) != 2 {
		t.Errorf("DescendantsOf(a) = %v; want 2 before the cycle closes", ids(descendants))
	}
}

func ids(chapters []Chapter) []string {
	out := make([]string, 0, len(chapters))
	for _, c := range chapters {
		out = append(out, c.ID)
	}
	return out
}
