package mail

import (
	"testing"

	"etwin/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyRegistrationEmail(t *testing.T) {
	tpl := NewEmailTemplater(&config.Config{Website: config.WebsiteConfig{BaseURL: "https://eternaltwin.example/"}})

	tests := []struct {
		name      string
		locale    string
		wantTitle string
	}{
		{name: "english", locale: "en-US", wantTitle: "Eternaltwin: Verify your email address"},
		{name: "french", locale: "fr-FR", wantTitle: "Eternaltwin : Vérifiez votre adresse email"},
		{name: "unknown locale falls back", locale: "xx-XX", wantTitle: "Eternaltwin: Verify your email address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := tpl.VerifyRegistrationEmail(tt.locale, "a.b+c")
			require.NoError(t, err)

			assert.Equal(t, tt.wantTitle, content.Title)
			assert.Contains(t, content.TextBody, "https://eternaltwin.example/register/verified-email?token=a.b%2Bc")
			assert.Contains(t, content.HTMLBody, "https://eternaltwin.example/register/verified-email?token=a.b%2Bc")
		})
	}
}

func TestVerifyRegistrationEmail_DefaultWebsite(t *testing.T) {
	content, err := NewEmailTemplater(&config.Config{}).VerifyRegistrationEmail("en-US", "tok")
	require.NoError(t, err)

	assert.Contains(t, content.TextBody, defaultWebsiteURL+"/register/verified-email?token=tok")
}
