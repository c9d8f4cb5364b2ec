package config

import (
	"testing"

	"github.com/specialistvlad/scriptgrid/internal/ref"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings_WithDefaults(t *testing.T) {
	s := Settings{InputsMeta: "in.meta"}.WithDefaults()

	assert.Equal(t, Settings{
		RunDescriptor: DefaultRunDescriptor,
		InputsMeta:    "in.meta",
		OutputsMeta:   DefaultOutputsMeta,
	}, s)
}

func TestProject_AddNode(t *testing.T) {
	p := &Project{}
	require.NoError(t, p.AddNode(&NodeDecl{ID: "A"}))
	require.NoError(t, p.AddNode(&NodeDecl{ID: "B", Joins: []JoinDecl{{Input: "x", From: ref.Ref{Node: "A", Socket: "x"}}}}))

	t.Run("duplicate id", func(t *testing.T) {
		err := p.AddNode(&NodeDecl{ID: "A"})
		assert.ErrorIs(t, err, ErrDuplicateNode)
	})

	t.Run("invalid id", func(t *testing.T) {
		err := p.AddNode(&NodeDecl{ID: "a.b"})
		assert.ErrorIs(t, err, ErrInvalidNodeID)
	})

	t.Run("input joined twice", func(t *testing.T) {
		err := p.AddNode(&NodeDecl{ID: "C", Joins: []JoinDecl{
			{Input: "x", From: ref.Ref{Node: "A", Socket: "x"}},
			{Input: "x", From: ref.Ref{Node: "B", Socket: "y"}},
		}})
		assert.ErrorIs(t, err, ErrDuplicateJoin)
	})

	assert.Len(t, p.Nodes, 2)
	assert.Equal(t, "B", p.Node("B").ID)
	assert.Nil(t, p.Node("C"))
}
