// Package mail renders the emails sent to users.
package mail

import (
	"bytes"
	htmltemplate "html/template"
	"net/url"
	"strings"
	texttemplate "text/template"

	"etwin/config"
	"etwin/internal/domain/entity"
	"etwin/internal/domain/service"

	"github.com/pkg/errors"
)

const defaultWebsiteURL = "http://localhost:50320"

type verifyRegistrationData struct {
	Link string
}

// registrationTemplates is the localized content of the registration email.
type registrationTemplates struct {
	title string
	text  *texttemplate.Template
	html  *htmltemplate.Template
}

func newRegistrationTemplates(title, text, html string) registrationTemplates {
	return registrationTemplates{
		title: title,
		text:  texttemplate.Must(texttemplate.New("text").Parse(text)),
		html:  htmltemplate.Must(htmltemplate.New("html").Parse(html)),
	}
}

//nolint:gochecknoglobals
var verifyRegistration = map[string]registrationTemplates{
	"en-US": newRegistrationTemplates(
		"Eternaltwin: Verify your email address",
		"Welcome to Eternaltwin!\n\nClick the following link to finish your registration:\n{{.Link}}\n",
		`<p>Welcome to Eternaltwin!</p><p>Click the following link to finish your registration:</p><p><a href="{{.Link}}">{{.Link}}</a></p>`,
	),
	"fr-FR": newRegistrationTemplates(
		"Eternaltwin : Vérifiez votre adresse email",
		"Bienvenue sur Eternaltwin !\n\nCliquez sur le lien suivant pour terminer votre inscription :\n{{.Link}}\n",
		`<p>Bienvenue sur Eternaltwin !</p><p>Cliquez sur le lien suivant pour terminer votre inscription :</p><p><a href="{{.Link}}">{{.Link}}</a></p>`,
	),
	"es-SP": newRegistrationTemplates(
		"Eternaltwin: Verifica tu dirección de correo",
		"¡Bienvenido a Eternaltwin!\n\nHaz clic en el siguiente enlace para terminar tu registro:\n{{.Link}}\n",
		`<p>¡Bienvenido a Eternaltwin!</p><p>Haz clic en el siguiente enlace para terminar tu registro:</p><p><a href="{{.Link}}">{{.Link}}</a></p>`,
	),
}

type templater struct {
	websiteURL string
}

// NewEmailTemplater creates the templater linking to the configured website.
func NewEmailTemplater(cfg *config.Config) service.EmailTemplater {
	websiteURL := strings.TrimRight(cfg.Website.BaseURL, "/")
	if websiteURL == "" {
		websiteURL = defaultWebsiteURL
	}

	return &templater{websiteURL: websiteURL}
}

// VerifyRegistrationEmail renders the registration email. Unknown locales
// fall back to entity.DefaultLocale.
func (t *templater) VerifyRegistrationEmail(locale, token string) (*entity.EmailContent, error) {
	tpl, ok := verifyRegistration[locale]
	if !ok {
		tpl = verifyRegistration[entity.DefaultLocale]
	}

	data := verifyRegistrationData{
		Link: t.websiteURL + "/register/verified-email?" + url.Values{"token": {token}}.Encode(),
	}

	var text, html bytes.Buffer
	if err := tpl.text.Execute(&text, data); err != nil {
		return nil, errors.Wrap(err, "failed to render text body")
	}
	if err := tpl.html.Execute(&html, data); err != nil {
		return nil, errors.Wrap(err, "failed to render html body")
	}

	return &entity.EmailContent{
		Title:    tpl.title,
		TextBody: text.String(),
		HTMLBody: html.String(),
	}, nil
}
