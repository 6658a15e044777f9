package lineedit

import "testing"

func TestInsert(t *testing.T) {
	e := New()
	e.Insert("h")
	e.Insert("i")
	if e.Text() != "hi" {
		t.Errorf("expected 'hi', got %q", e.Text())
	}
	if e.Cursor() != 2 {
		t.Errorf("expected cursor at 2, got %d", e.Cursor())
	}
}

func TestInsertMiddle(t *testing.T) {
	e := New()
	e.Set("hllo")
	e.SetCursor(1)
	e.Insert("e")
	if e.Text() != "hello" {
		t.Errorf("expected 'hello', got %q", e.Text())
	}
	if e.Cursor() != 2 {
		t.Errorf("expected cursor at 2, got %d", e.Cursor())
	}
}

func TestCombiningMarks(t *testing.T) {
	e := New()
	e.Insert("e")
	e.Insert("\u0301")
	e.Insert("t")
	if e.Len() != 2 {
		t.Errorf("combining mark should join its base, got %d clusters", e.Len())
	}
	if e.Cursor() != 2 {
		t.Errorf("expected cursor at 2, got %d", e.Cursor())
	}

	e.Left()
	e.DeleteBackward()
	if e.Text() != "t" {
		t.Errorf("backspace should remove the whole cluster, got %q", e.Text())
	}
}

func TestCursorColumn(t *testing.T) {
	e := New()
	e.Set("日本e\u0301")
	if got := e.CursorColumn(); got != 5 {
		t.Errorf("expected column 5, got %d", got)
	}
	e.Home()
	e.Right()
	if got := e.CursorColumn(); got != 2 {
		t.Errorf("expected column 2, got %d", got)
	}
}

func TestDeleteBackward(t *testing.T) {
	e := New()
	e.Set("hello")
	e.DeleteBackward()
	if e.Text() != "hell" {
		t.Errorf("expected 'hell', got %q", e.Text())
	}

	// At start, should return false
	e.Home()
	if e.DeleteBackward() {
		t.Error("DeleteBackward at start should return false")
	}
}

func TestDeleteForward(t *testing.T) {
	e := New()
	e.Set("hello")
	e.Home()
	e.DeleteForward()
	if e.Text() != "ello" {
		t.Errorf("expected 'ello', got %q", e.Text())
	}

	e.End()
	if e.DeleteForward() {
		t.Error("DeleteForward at end should return false")
	}
}

func TestMovement(t *testing.T) {
	e := New()
	e.Set("héllo")

	if e.Cursor() != 5 {
		t.Errorf("expected cursor at 5, got %d", e.Cursor())
	}
	e.Home()
	if e.Left() {
		t.Error("Left at start should return false")
	}
	e.Right()
	e.Right()
	if e.BeforeCursor() != "hé" || e.AfterCursor() != "llo" {
		t.Errorf("got %q|%q", e.BeforeCursor(), e.AfterCursor())
	}
	e.End()
	if e.Right() {
		t.Error("Right at end should return false")
	}
	e.SetCursor(99)
	if e.Cursor() != 5 {
		t.Errorf("SetCursor should clamp, got %d", e.Cursor())
	}
}

func TestWordMovement(t *testing.T) {
	e := New()
	e.Set("foo bar.baz")

	e.WordLeft()
	if e.Cursor() != 8 {
		t.Errorf("expected 8, got %d", e.Cursor())
	}
	e.WordLeft()
	if e.Cursor() != 7 {
		t.Errorf("expected 7, got %d", e.Cursor())
	}
	e.Home()
	e.WordRight()
	if e.Cursor() != 4 {
		t.Errorf("expected 4, got %d", e.Cursor())
	}
}

func TestDeleteWordBackward(t *testing.T) {
	e := New()
	e.Set("hello world")
	e.DeleteWordBackward()
	if e.Text() != "hello " {
		t.Errorf("expected 'hello ', got %q", e.Text())
	}
}

func TestDeleteWordForward(t *testing.T) {
	e := New()
	e.Set("hello world")
	e.Home()
	e.DeleteWordForward()
	if e.Text() != "world" {
		t.Errorf("expected 'world', got %q", e.Text())
	}
}

func TestKill(t *testing.T) {
	e := New()
	e.Set("hello world")
	e.SetCursor(5)
	e.KillToEnd()
	if e.Text() != "hello" {
		t.Errorf("expected 'hello', got %q", e.Text())
	}

	e.Set("hello world")
	e.SetCursor(6)
	e.KillToStart()
	if e.Text() != "world" || e.Cursor() != 0 {
		t.Errorf("expected 'world' at 0, got %q at %d", e.Text(), e.Cursor())
	}
}

func TestTranspose(t *testing.T) {
	e := New()
	e.Set("ab")
	e.Transpose()
	if e.Text() != "ba" {
		t.Errorf("expected 'ba', got %q", e.Text())
	}

	e.Set("abc")
	e.SetCursor(1)
	e.Transpose()
	if e.Text() != "bac" || e.Cursor() != 2 {
		t.Errorf("expected 'bac' at 2, got %q at %d", e.Text(), e.Cursor())
	}
}

func TestUndoRedo(t *testing.T) {
	e := New()
	e.Set("hello")
	e.SaveState()
	e.DeleteBackward()
	e.SaveState()
	e.DeleteBackward()

	if !e.Undo() || e.Text() != "hell" {
		t.Errorf("expected 'hell' after undo, got %q", e.Text())
	}
	if !e.Undo() || e.Text() != "hello" {
		t.Errorf("expected 'hello' after undo, got %q", e.Text())
	}
	if e.Undo() {
		t.Error("undo with empty history should return false")
	}
	if !e.Redo() || e.Text() != "hell" {
		t.Errorf("expected 'hell' after redo, got %q", e.Text())
	}
}

func TestClear(t *testing.T) {
	e := New()
	e.Set("hello")
	e.Clear()
	if e.Text() != "" || e.Cursor() != 0 {
		t.Errorf("expected empty editor, got %q at %d", e.Text(), e.Cursor())
	}
}
