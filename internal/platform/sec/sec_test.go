// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-publish/internal/platform/sec"
)

/*
TestTokenService_RoundTrip signs a token and verifies the claims survive.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	service := sec.NewTokenServiceFromKey(key, "yomira.app")

	token, err := service.GenerateAccessToken("user-1", "mika", string(sec.RoleAuthor), time.Minute)
	require.NoError(t, err)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "mika", claims.Username)
	assert.Equal(t, "author", claims.Role)
}

func TestTokenService_RejectsForeignIssuer(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	token, err := sec.NewTokenServiceFromKey(key, "someone-else").GenerateAccessToken("u", "n", "member", time.Minute)
	require.NoError(t, err)

	_, err = sec.NewTokenServiceFromKey(key, "yomira.app").VerifyToken(token)
	assert.Error(t, err)
}

func TestTokenService_RejectsExpired(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	service := sec.NewTokenServiceFromKey(key, "yomira.app")
	token, err := service.GenerateAccessToken("u", "n", "member", -time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyToken(token)
	assert.Error(t, err)
}

/*
TestUserRole_AtLeast checks the role ladder used by chapter routes.
*/
func TestUserRole_AtLeast(t *testing.T) {
	tests := []struct {
		role   sec.UserRole
		target sec.UserRole
		want   bool
	}{
		{sec.RoleAdmin, sec.RoleAuthor, true},
		{sec.RoleModerator, sec.RoleAuthor, true},
		{sec.RoleAuthor, sec.RoleAuthor, true},
		{sec.RoleMember, sec.RoleAuthor, false},
		{sec.UserRole("guest"), sec.RoleMember, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"_"+string(tt.target), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.AtLeast(tt.target))
		})
	}

	assert.True(t, sec.RoleModerator.IsValid())
	assert.False(t, sec.UserRole("guest").IsValid())
}
