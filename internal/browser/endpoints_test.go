package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginURL(t *testing.T) {
	assert.Equal(t, "https://www.instagram.com/accounts/login/", LoginURL(""))
	assert.Equal(t, "http://localhost:8080/accounts/login/", LoginURL("http://localhost:8080/"))
}

func TestProfileURL(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		profile string
		want    string
		wantErr bool
	}{
		{name: "username", profile: "someone", want: "https://www.instagram.com/someone/"},
		{name: "at username", profile: "@some.one", want: "https://www.instagram.com/some.one/"},
		{name: "padded", profile: "  someone \n", want: "https://www.instagram.com/someone/"},
		{name: "custom base", base: "http://127.0.0.1:9000/", profile: "someone", want: "http://127.0.0.1:9000/someone/"},
		{name: "full url", profile: "https://www.instagram.com/someone/", want: "https://www.instagram.com/someone/"},
		{name: "empty", profile: "", wantErr: true},
		{name: "url without user", profile: "https://www.instagram.com/", wantErr: true},
		{name: "path in username", profile: "someone/reels", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProfileURL(tt.base, tt.profile)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
