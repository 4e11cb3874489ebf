package perm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllTokensAreWellFormed(t *testing.T) {
	seen := make(map[Permission]bool)

	for _, p := range All() {
		assert.False(t, seen[p], "duplicate token %q", p)
		seen[p] = true

		// resource.action shape
		parts := strings.SplitN(string(p), ".", 2)
		assert.Len(t, parts, 2, "token %q is not resource.action", p)
		assert.NotEmpty(t, parts[0])
		assert.NotEmpty(t, parts[1])
	}
}

func TestValid(t *testing.T) {
	for _, p := range All() {
		assert.True(t, Valid(p))
	}

	assert.False(t, Valid("player.fly"))
	assert.False(t, Valid(""))
	assert.False(t, Valid("PLAYER.BAN"))
}

func TestFromStringsDropsUnknown(t *testing.T) {
	got := FromStrings([]string{
		"player.ban",
		"not.a.token",
		"ticket.view",
		"",
	})

	assert.Equal(t, []Permission{PlayerBan, TicketView}, got)
}

func TestStringsRoundTrip(t *testing.T) {
	in := []Permission{DashboardView, KYCReview}

	raw := Strings(in)
	assert.Equal(t, []string{"dashboard.view", "kyc.review"}, raw)
	assert.Equal(t, in, FromStrings(raw))
}
