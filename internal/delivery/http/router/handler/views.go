package handler

import (
	"time"

	"etwin/internal/domain/entity"

	"github.com/google/uuid"
)

// JSON views of the domain objects. Field names follow the public API.

type shortUserView struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
}

type shortClientView struct {
	ID          uuid.UUID `json:"id"`
	Key         *string   `json:"key"`
	DisplayName string    `json:"display_name"`
}

type userView struct {
	ID              uuid.UUID  `json:"id"`
	DisplayName     string     `json:"display_name"`
	IsAdministrator bool       `json:"is_administrator"`
	CreatedAt       time.Time  `json:"created_at"`
	Username        *string    `json:"username,omitempty"`
	Email           *string    `json:"email,omitempty"`
	HasPassword     *bool      `json:"has_password,omitempty"`
	Links           *linksView `json:"links,omitempty"`
}

type sessionView struct {
	ID    uuid.UUID     `json:"id"`
	User  shortUserView `json:"user"`
	CTime time.Time     `json:"ctime"`
	ATime time.Time     `json:"atime"`
}

type userAndSessionView struct {
	User    userView    `json:"user"`
	Session sessionView `json:"session"`
}

type authContextView struct {
	Type            string           `json:"type"`
	Scope           string           `json:"scope"`
	User            *shortUserView   `json:"user,omitempty"`
	IsAdministrator bool             `json:"is_administrator,omitempty"`
	Client          *shortClientView `json:"client,omitempty"`
}

type remoteUserView struct {
	Service  string `json:"service"`
	Server   string `json:"server"`
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
}

type linkActionView struct {
	Time time.Time     `json:"time"`
	User shortUserView `json:"user"`
}

type linkView struct {
	Remote remoteUserView  `json:"remote"`
	User   shortUserView   `json:"user"`
	Link   linkActionView  `json:"link"`
	Unlink *linkActionView `json:"unlink,omitempty"`
}

type versionedLinkView struct {
	Current *linkView  `json:"current"`
	Old     []linkView `json:"old"`
}

type linksView struct {
	DinoparcCom   versionedLinkView `json:"dinoparc_com"`
	EnDinoparcCom versionedLinkView `json:"en_dinoparc_com"`
	SpDinoparcCom versionedLinkView `json:"sp_dinoparc_com"`
	HammerfestFr  versionedLinkView `json:"hammerfest_fr"`
	HfestNet      versionedLinkView `json:"hfest_net"`
	HammerfestEs  versionedLinkView `json:"hammerfest_es"`
	Twinoid       versionedLinkView `json:"twinoid"`
}

func toShortUserView(u entity.ShortUser) shortUserView {
	return shortUserView{ID: u.ID, DisplayName: u.DisplayName}
}

func toShortClientView(c entity.ShortOauthClient) *shortClientView {
	return &shortClientView{ID: c.ID, Key: c.Key, DisplayName: c.DisplayName}
}

func toUserView(u *entity.User) userView {
	return userView{
		ID:              u.ID,
		DisplayName:     u.DisplayName,
		IsAdministrator: u.IsAdministrator,
		CreatedAt:       u.CreatedAt,
		Username:        u.Username,
		Email:           u.Email,
	}
}

func toUserAndSessionView(result *entity.UserAndSession) userAndSessionView {
	return userAndSessionView{
		User: toUserView(result.User),
		Session: sessionView{
			ID:    result.Session.ID,
			User:  toShortUserView(result.Session.User),
			CTime: result.Session.CTime,
			ATime: result.Session.ATime,
		},
	}
}

func toUserWithLinksView(u *entity.UserWithLinks) userView {
	view := toUserView(u.User)
	view.HasPassword = u.HasPassword
	if u.Links != nil {
		links := toLinksView(u.Links)
		view.Links = &links
	}

	return view
}

func toAuthContextView(acx entity.AuthContext) authContextView {
	view := authContextView{Type: acx.Type().String(), Scope: string(acx.Scope())}
	switch acx := acx.(type) {
	case *entity.UserAuthContext:
		user := toShortUserView(acx.User)
		view.User = &user
		view.IsAdministrator = acx.IsAdministrator
	case *entity.AccessTokenAuthContext:
		user := toShortUserView(acx.User)
		view.User = &user
		view.Client = toShortClientView(acx.Client)
	case *entity.OauthClientAuthContext:
		view.Client = toShortClientView(acx.Client)
	case *entity.GuestAuthContext, *entity.SystemAuthContext:
	}

	return view
}

func toLinkActionView(a entity.LinkAction) linkActionView {
	return linkActionView{Time: a.Time, User: toShortUserView(a.User)}
}

func toLinkView(l entity.Link) linkView {
	view := linkView{
		Remote: remoteUserView{
			Service:  l.Remote.Key.Service.String(),
			Server:   l.Remote.Key.Server,
			ID:       l.Remote.Key.RemoteID,
			Username: l.Remote.Username,
		},
		User: toShortUserView(l.User),
		Link: toLinkActionView(l.Link),
	}
	if l.Unlink != nil {
		unlink := toLinkActionView(*l.Unlink)
		view.Unlink = &unlink
	}

	return view
}

func toVersionedLinkView(v *entity.VersionedLink) versionedLinkView {
	view := versionedLinkView{Old: make([]linkView, 0, len(v.Old))}
	if v.Current != nil {
		current := toLinkView(*v.Current)
		view.Current = &current
	}
	for _, old := range v.Old {
		view.Old = append(view.Old, toLinkView(old))
	}

	return view
}

func toLinksView(v *entity.VersionedLinks) linksView {
	return linksView{
		DinoparcCom:   toVersionedLinkView(&v.DinoparcCom),
		EnDinoparcCom: toVersionedLinkView(&v.EnDinoparcCom),
		SpDinoparcCom: toVersionedLinkView(&v.SpDinoparcCom),
		HammerfestFr:  toVersionedLinkView(&v.HammerfestFr),
		HfestNet:      toVersionedLinkView(&v.HfestNet),
		HammerfestEs:  toVersionedLinkView(&v.HammerfestEs),
		Twinoid:       toVersionedLinkView(&v.Twinoid),
	}
}
