package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finetrack/pkg/requestcontext"
)

func TestSubjectFor(t *testing.T) {
	s, err := subjectFor(requestcontext.RoleCivilian, "u1", "", "199012345v")
	require.NoError(t, err)
	assert.Equal(t, "199012345V", s.IdentityCode)

	_, err = subjectFor(requestcontext.RoleCivilian, "u1", "", "12")
	assert.Error(t, err)

	_, err = subjectFor(requestcontext.RoleOfficer, "u1", "", "")
	assert.Error(t, err)

	s, err = subjectFor(requestcontext.RoleAdmin, "u1", "", "")
	require.NoError(t, err)
	assert.Equal(t, "admin", s.Role)

	_, err = subjectFor("mayor", "u1", "", "")
	assert.Error(t, err)
}
