package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileTable_Intern(t *testing.T) {
	ft := NewFileTable()

	assert.Equal(t, 0, ft.Intern(100, "main.cpp"))
	assert.Equal(t, 1, ft.Intern(200, "vector.h"))

	// Same identity resolves to the same index; the name is stored once.
	assert.Equal(t, 1, ft.Intern(200, "vector.h"))
	assert.Equal(t, 0, ft.Intern(100, "main.cpp"))

	assert.Equal(t, 2, ft.Len())
	assert.Equal(t, []string{"main.cpp", "vector.h"}, ft.Names())
}

func TestFileTable_Reset(t *testing.T) {
	ft := NewFileTable()
	ft.Intern(1, "a.cpp")
	ft.Intern(2, "b.cpp")

	ft.Reset()
	assert.Equal(t, 0, ft.Len())
	assert.Empty(t, ft.Names())

	// Indexes restart from zero after a reset.
	assert.Equal(t, 0, ft.Intern(2, "b.cpp"))
}
