package entity

import (
	"slices"
	"time"
)

// RemoteService is one of the legacy game platforms accounts can be linked to.
type RemoteService string

const (
	RemoteServiceHammerfest RemoteService = "hammerfest"
	RemoteServiceDinoparc   RemoteService = "dinoparc"
	RemoteServiceTwinoid    RemoteService = "twinoid"
)

// Known servers. Twinoid has a single server.
const (
	HammerfestServerFr  = "hammerfest.fr"
	HammerfestServerNet = "hfest.net"
	HammerfestServerEs  = "hammerfest.es"

	DinoparcServerCom   = "dinoparc.com"
	DinoparcServerEnCom = "en.dinoparc.com"
	DinoparcServerSpCom = "sp.dinoparc.com"

	TwinoidServer = "twinoid.com"
)

// RemoteServices lists every supported service.
var RemoteServices = []RemoteService{RemoteServiceDinoparc, RemoteServiceHammerfest, RemoteServiceTwinoid}

// String returns the string representation of the RemoteService.
func (s RemoteService) String() string {
	return string(s)
}

// Servers returns the servers of the service.
func (s RemoteService) Servers() []string {
	switch s {
	case RemoteServiceHammerfest:
		return []string{HammerfestServerFr, HammerfestServerNet, HammerfestServerEs}
	case RemoteServiceDinoparc:
		return []string{DinoparcServerCom, DinoparcServerEnCom, DinoparcServerSpCom}
	case RemoteServiceTwinoid:
		return []string{TwinoidServer}
	default:
		return nil
	}
}

// IsValidServer reports whether server belongs to the service.
func (s RemoteService) IsValidServer(server string) bool {
	return slices.Contains(s.Servers(), server)
}

func (s RemoteService) displayNamePrefix() string {
	switch s {
	case RemoteServiceHammerfest:
		return "hf_"
	case RemoteServiceDinoparc:
		return "dparc_"
	default:
		return "tid_"
	}
}

func (s RemoteService) fallbackDisplayName() string {
	switch s {
	case RemoteServiceHammerfest:
		return "hammerfestPlayer"
	case RemoteServiceDinoparc:
		return "dinoparcPlayer"
	default:
		return "twinoidPlayer"
	}
}

// RemoteAccountKey identifies one account on one server of a remote service.
type RemoteAccountKey struct {
	Service  RemoteService
	Server   string
	RemoteID string
}

// HammerfestKey builds the key of a Hammerfest account.
func HammerfestKey(server, id string) RemoteAccountKey {
	return RemoteAccountKey{Service: RemoteServiceHammerfest, Server: server, RemoteID: id}
}

// DinoparcKey builds the key of a Dinoparc account.
func DinoparcKey(server, id string) RemoteAccountKey {
	return RemoteAccountKey{Service: RemoteServiceDinoparc, Server: server, RemoteID: id}
}

// TwinoidKey builds the key of a Twinoid account.
func TwinoidKey(id string) RemoteAccountKey {
	return RemoteAccountKey{Service: RemoteServiceTwinoid, Server: TwinoidServer, RemoteID: id}
}

// String renders the key as "service/server/id"; it is also used as a lock name.
func (k RemoteAccountKey) String() string {
	return string(k.Service) + "/" + k.Server + "/" + k.RemoteID
}

// RemoteUser is the short descriptor of a remote account, as last observed.
type RemoteUser struct {
	Key      RemoteAccountKey
	Username string // Login name on Hammerfest and Dinoparc, display name on Twinoid.
}

// RemoteCredentials are the username and password of a remote account.
type RemoteCredentials struct {
	Server   string
	Username string
	Password string
}

// RemoteSession is an authenticated session on a remote server.
type RemoteSession struct {
	Key   string
	User  RemoteUser
	CTime time.Time
	ATime time.Time
}

// RemoteProfile is the public profile of a remote account.
type RemoteProfile struct {
	User RemoteUser
}

// TwinoidOauthToken is an access token granted by Twinoid.
type TwinoidOauthToken struct {
	AccessToken    string
	RefreshToken   *string
	ExpirationTime time.Time
	TwinoidUserID  string
}
