package types

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributesClone(t *testing.T) {
	orig := Attributes{"owner": "lab", "iterations": 12}
	clone := orig.Clone()

	clone["owner"] = "other"
	clone["extra"] = true

	assert.Equal(t, "lab", orig["owner"])
	assert.NotContains(t, orig, "extra")
}

func TestAttributesCloneNil(t *testing.T) {
	var a Attributes
	clone := a.Clone()
	require.NotNil(t, clone)

	// Writable without panicking.
	clone["k"] = "v"
	assert.Len(t, clone, 1)
}

func TestProjectValidate(t *testing.T) {
	p := &Project{Name: "foo"}
	assert.NoError(t, p.Validate())

	p.Name = ""
	assert.ErrorIs(t, p.Validate(), ErrInvalidName)
}

func TestDirectoryError(t *testing.T) {
	osErr := os.ErrPermission
	err := &DirectoryError{Kind: ErrDirectoryCreate, Path: "/tmp/x", Err: osErr}

	assert.ErrorIs(t, err, ErrDirectoryCreate)
	assert.NotErrorIs(t, err, ErrDirectoryCopy)
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.Contains(t, err.Error(), "/tmp/x")

	var de *DirectoryError
	require.True(t, errors.As(error(err), &de))
	assert.Equal(t, "/tmp/x", de.Path)
}
