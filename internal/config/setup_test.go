package config

import (
	"testing"
	"time"
)

func TestAddChildNestsWithinParent(t *testing.T) {
	root := NewRoot(10 * time.Hour)
	child := NewMember("weights", "WETTZELL", 2*time.Hour, 4*time.Hour, Hard)
	if err := root.AddChild(child); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(root.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(root.Children))
	}
}

func TestAddChildRejectsOutOfBoundsSpan(t *testing.T) {
	root := NewRoot(1 * time.Hour)
	child := NewMember("weights", "WETTZELL", 30*time.Minute, 2*time.Hour, Hard)
	if err := root.AddChild(child); err == nil {
		t.Fatalf("expected error for child extending past parent span")
	}
}

func TestOverlappingSiblingsMustBeDisjoint(t *testing.T) {
	root := NewRoot(10 * time.Hour)
	a := NewMember("weights", "WETTZELL", 0, 5*time.Hour, Smooth)
	b := NewMember("weights", "WETTZELL", 2*time.Hour, 6*time.Hour, Smooth)
	if err := root.AddChild(a); err != nil {
		t.Fatalf("unexpected error adding a: %v", err)
	}
	if err := root.AddChild(b); err == nil {
		t.Fatalf("expected error: overlapping siblings share member WETTZELL")
	}
}

func TestOverlappingSiblingsDisjointMembersOK(t *testing.T) {
	root := NewRoot(10 * time.Hour)
	a := NewMember("weights", "WETTZELL", 0, 5*time.Hour, Smooth)
	b := NewMember("weights", "ONSALA60", 2*time.Hour, 6*time.Hour, Smooth)
	if err := root.AddChild(a); err != nil {
		t.Fatalf("unexpected error adding a: %v", err)
	}
	if err := root.AddChild(b); err != nil {
		t.Fatalf("unexpected error adding b with disjoint member: %v", err)
	}
}

func TestResolveFindsInnermostApplicableSetup(t *testing.T) {
	root := NewRoot(10 * time.Hour)
	mid := NewMember("weights", "WETTZELL", 1*time.Hour, 9*time.Hour, Smooth)
	inner := NewMember("weights", "WETTZELL", 3*time.Hour, 5*time.Hour, Hard)
	if err := root.AddChild(mid); err != nil {
		t.Fatal(err)
	}
	if err := root.AddChild(inner); err != nil {
		t.Fatal(err)
	}

	r := root.Resolve("WETTZELL", 4*time.Hour)
	if r == nil || r.Transition != Hard {
		t.Fatalf("expected innermost (hard) setup to resolve, got %#v", r)
	}
	r = root.Resolve("WETTZELL", 2*time.Hour)
	if r == nil || r.Transition != Smooth {
		t.Fatalf("expected mid (smooth) setup outside inner span, got %#v", r)
	}
	r = root.Resolve("ONSALA60", 4*time.Hour)
	if r == nil {
		t.Fatalf("expected fall back to root __all__ setup for an unmentioned member")
	}
}

func TestDeleteChildRemovesMatchingNode(t *testing.T) {
	root := NewRoot(10 * time.Hour)
	child := NewMember("weights", "WETTZELL", 0, 1*time.Hour, Hard)
	if err := root.AddChild(child); err != nil {
		t.Fatal(err)
	}
	if !root.DeleteChild(child) {
		t.Fatalf("expected deletion to succeed")
	}
	if len(root.Children) != 0 {
		t.Fatalf("expected no children after deletion")
	}
}
