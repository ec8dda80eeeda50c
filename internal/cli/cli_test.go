package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pratik-mahalle/smmpanel/internal/auth"
)

func TestInspectToken(t *testing.T) {
	token, err := auth.MintToken(7, "ops@example.com", auth.RoleAdmin, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := inspectToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.True(t, claims.IsAdmin())

	expired, err := auth.MintToken(7, "", auth.RoleUser, "secret", -time.Minute)
	require.NoError(t, err)
	_, err = inspectToken(expired)
	assert.ErrorContains(t, err, "expired")

	_, err = inspectToken("not-a-token")
	assert.Error(t, err)
}

func TestTableRender(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable("ORDER", "OUTCOME")
	tbl.writer = &buf
	tbl.AddRow("42", formatStatus("synced"))
	tbl.AddRow("7", formatStatus("failed"))
	tbl.Render()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "-----"))
	assert.Contains(t, lines[2], "[+] synced")
	assert.Contains(t, lines[3], "[-] failed")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}

func TestValidateSetting(t *testing.T) {
	tests := []struct {
		key, value string
		ok         bool
	}{
		{"server_url", "https://panel.example.com", true},
		{"server_url", "panel.example.com", false},
		{"output", "yaml", true},
		{"output", "xml", false},
		{"timeout", "90s", true},
		{"timeout", "-1s", false},
		{"auth.token", "abc", false},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			err := validateSetting(tt.key, tt.value)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}

	assert.Equal(t, "(stored)", displaySetting("auth.token", "eyJ..."))
	assert.Equal(t, "json", displaySetting("output", "json"))
}
