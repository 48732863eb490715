package main

import (
	"bytes"
	"context"
	"testing"

	"casting-api/internal/auth"
	"casting-api/internal/auth/authtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintKeySet(t *testing.T) {
	idp := authtest.NewProvider(t)
	idp.Rotate(t, true)

	set, err := auth.NewKeySetCache(auth.KeySetCacheConfig{URL: idp.JWKSURL()}).Fetch(context.Background())
	require.NoError(t, err)

	var out bytes.Buffer
	printKeySet(&out, idp.JWKSURL(), set)

	assert.Contains(t, out.String(), idp.JWKSURL()+" (2 keys, fetched ")
	assert.Contains(t, out.String(), "  kid=test-key-2 alg=RS256 use=sig\n")
	assert.Contains(t, out.String(), "  kid=test-key-1 alg=RS256 use=sig\n")
}
