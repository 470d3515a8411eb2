package entity

// AuthContext is the authenticated identity threaded through every core
// operation. The set of variants is closed: only the types declared in this
// file implement it, so a type switch over them is exhaustive.
type AuthContext interface {
	Type() AuthType
	Scope() AuthScope
	isAuthContext()
}

// GuestAuthContext is an anonymous caller.
type GuestAuthContext struct {
	AuthScope AuthScope
}

// UserAuthContext is a caller authenticated as a local user.
type UserAuthContext struct {
	AuthScope       AuthScope
	User            ShortUser
	IsAdministrator bool
}

// AccessTokenAuthContext is an OAuth client acting for a user.
type AccessTokenAuthContext struct {
	AuthScope AuthScope
	Client    ShortOauthClient
	User      ShortUser
}

// OauthClientAuthContext is an OAuth client acting for itself.
type OauthClientAuthContext struct {
	AuthScope AuthScope
	Client    ShortOauthClient
}

// SystemAuthContext is used by internal callers that bypass permission checks.
type SystemAuthContext struct {
	AuthScope AuthScope
}

// Guest returns the default guest context.
func Guest() *GuestAuthContext {
	return &GuestAuthContext{AuthScope: AuthScopeDefault}
}

// System returns the default system context.
func System() *SystemAuthContext {
	return &SystemAuthContext{AuthScope: AuthScopeDefault}
}

// NewUserAuthContext builds a user context from a loaded user.
func NewUserAuthContext(user *User) *UserAuthContext {
	return &UserAuthContext{
		AuthScope:       AuthScopeDefault,
		User:            user.Short(),
		IsAdministrator: user.IsAdministrator,
	}
}

func (*GuestAuthContext) Type() AuthType       { return AuthTypeGuest }
func (*UserAuthContext) Type() AuthType        { return AuthTypeUser }
func (*AccessTokenAuthContext) Type() AuthType { return AuthTypeAccessToken }
func (*OauthClientAuthContext) Type() AuthType { return AuthTypeOauthClient }
func (*SystemAuthContext) Type() AuthType      { return AuthTypeSystem }

func (a *GuestAuthContext) Scope() AuthScope       { return a.AuthScope }
func (a *UserAuthContext) Scope() AuthScope        { return a.AuthScope }
func (a *AccessTokenAuthContext) Scope() AuthScope { return a.AuthScope }
func (a *OauthClientAuthContext) Scope() AuthScope { return a.AuthScope }
func (a *SystemAuthContext) Scope() AuthScope      { return a.AuthScope }

func (*GuestAuthContext) isAuthContext()       {}
func (*UserAuthContext) isAuthContext()        {}
func (*AccessTokenAuthContext) isAuthContext() {}
func (*OauthClientAuthContext) isAuthContext() {}
func (*SystemAuthContext) isAuthContext()      {}
