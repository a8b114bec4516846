package domain_test

import (
	"testing"

	"github.com/fitpulse/fitpulse/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_RoundTrip(t *testing.T) {
	cases := []domain.User{
		{Token: "abc", ID: 7},
		{Token: "eyJhbGciOiJIUzI1NiJ9.e30.sig", ID: 0},
		{Token: "tok with \"quotes\" and \\ slashes", ID: 9007199254740993},
		{Token: "neg", ID: -1},
	}

	for _, u := range cases {
		encoded, err := domain.EncodeUser(u)
		require.NoError(t, err)

		decoded, err := domain.DecodeUser(encoded)
		require.NoError(t, err)
		assert.Equal(t, u, *decoded)
	}
}

func TestEncodeUser_Versioned(t *testing.T) {
	encoded, err := domain.EncodeUser(domain.User{Token: "abc", ID: 7})
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1,"token":"abc","id":7}`, encoded)
}

func TestEncodeUser_EmptyToken(t *testing.T) {
	_, err := domain.EncodeUser(domain.User{ID: 7})
	assert.ErrorIs(t, err, domain.ErrMalformedSession)
}

func TestDecodeUser_Legacy(t *testing.T) {
	u, err := domain.DecodeUser(`{"token":"abc","id":7}`)
	require.NoError(t, err)
	assert.Equal(t, domain.User{Token: "abc", ID: 7}, *u)

	u, err = domain.DecodeUser(`{"token":"abc","id":"12"}`)
	require.NoError(t, err)
	assert.Equal(t, int64(12), u.ID)
}

func TestDecodeUser_Malformed(t *testing.T) {
	inputs := []string{
		"",
		"not json",
		"null",
		`{"id":7}`,
		`{"token":null,"id":null}`,
		`{"v":2,"token":"abc","id":7}`,
		`{"token":"abc","id":"seven"}`,
		`{"token":"abc","id":7}garbage`,
		`{"token":"abc","id":7}{"token":"def","id":8}`,
	}

	for _, in := range inputs {
		_, err := domain.DecodeUser(in)
		assert.ErrorIs(t, err, domain.ErrMalformedSession, "input %q", in)
	}
}

func TestDecodeUser_TrailingWhitespace(t *testing.T) {
	u, err := domain.DecodeUser("{\"v\":1,\"token\":\"abc\",\"id\":7}\n  ")
	require.NoError(t, err)
	assert.Equal(t, domain.User{Token: "abc", ID: 7}, *u)
}
