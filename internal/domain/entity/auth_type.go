// Package entity contains the core business objects of the project.
package entity

import "slices"

// AuthType names the variant of an AuthContext.
type AuthType string

const (
	// AuthTypeGuest is an anonymous caller.
	AuthTypeGuest AuthType = "Guest"
	// AuthTypeUser is a caller authenticated through a local session.
	AuthTypeUser AuthType = "User"
	// AuthTypeAccessToken is a third party acting for a user through an OAuth access token.
	AuthTypeAccessToken AuthType = "AccessToken"
	// AuthTypeOauthClient is an OAuth client authenticated with its own credentials.
	AuthTypeOauthClient AuthType = "OauthClient"
	// AuthTypeSystem is the process itself.
	AuthTypeSystem AuthType = "System"
)

// String returns the string representation of the AuthType.
func (t AuthType) String() string {
	return string(t)
}

// IsValid checks if the AuthType is a known variant.
func (t AuthType) IsValid() bool {
	switch t {
	case AuthTypeGuest, AuthTypeUser, AuthTypeAccessToken, AuthTypeOauthClient, AuthTypeSystem:
		return true
	default:
		return false
	}
}

// AuthScope restricts what an authenticated caller may do.
type AuthScope string

const (
	// AuthScopeDefault grants the default permissions of the variant.
	AuthScopeDefault AuthScope = "Default"
)

// AuthScopes is a slice of AuthScope for convenience.
type AuthScopes []AuthScope

// Contains checks if the scopes contain a specific scope.
func (ss AuthScopes) Contains(scope AuthScope) bool {
	return slices.Contains(ss, scope)
}
