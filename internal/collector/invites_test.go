package collector

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInviteCounter_CountsMatchingLines(t *testing.T) {
	out := "INVITE sip:1000@pbx\n" +
		"SIP/2.0 180 Ringing\n" +
		"SIP/2.0 200 OK\n" +
		"INVITE sip:1001@pbx\n" +
		"SIP/2.0 200 OK\n" +
		"INVITE sip:1002@pbx\n" +
		"SIP/2.0 180 Ringing\n"
	r := &fakeRunner{out: out}
	c := NewInviteCounter(r, "/var/log/asterisk/full", nil)

	assert.Equal(t, 7, c.Count(context.Background()))

	require.Len(t, r.calls, 1)
	assert.Equal(t, []string{"grep", "-E", "-e", "INVITE|180 Ringing|200 OK", "/var/log/asterisk/full"}, r.calls[0])
}

func TestInviteCounter_NoTrailingNewline(t *testing.T) {
	c := NewInviteCounter(&fakeRunner{out: "INVITE\nINVITE"}, "full", nil)
	assert.Equal(t, 2, c.Count(context.Background()))
}

func TestInviteCounter_FailureIsZero(t *testing.T) {
	c := NewInviteCounter(&fakeRunner{err: errors.New("grep: /var/log/asterisk/full: No such file or directory")}, "full", nil)
	assert.Equal(t, 0, c.Count(context.Background()))
}

func TestInviteCounter_CustomMarkersAreQuoted(t *testing.T) {
	c := NewInviteCounter(&fakeRunner{}, "full", []string{"BYE", "a.b"})
	assert.Equal(t, `BYE|a\.b`, c.pattern)
}

func TestInviteCounter_RealGrep(t *testing.T) {
	if _, err := exec.LookPath("grep"); err != nil {
		t.Skip("grep not available")
	}
	path := writeTempLog(t, "INVITE sip:a\nOPTIONS sip:b\nSIP/2.0 200 OK\nBYE\nSIP/2.0 180 Ringing\n")
	c := NewInviteCounter(osRunner(), path, nil)

	assert.Equal(t, 3, c.Count(context.Background()))

	empty := writeTempLog(t, "OPTIONS\nBYE\n")
	assert.Equal(t, 0, NewInviteCounter(osRunner(), empty, nil).Count(context.Background()))
}

func TestInviteCounter_RealGrepSevenLines(t *testing.T) {
	if _, err := exec.LookPath("grep"); err != nil {
		t.Skip("grep not available")
	}
	path := writeTempLog(t, "INVITE sip:1000@pbx\n"+
		"OPTIONS sip:1000@pbx\n"+
		"SIP/2.0 180 Ringing\n"+
		"SIP/2.0 200 OK\n"+
		"INVITE sip:1001@pbx\n"+
		"SIP/2.0 100 Trying\n"+
		"SIP/2.0 200 OK\n"+
		"INVITE sip:1002@pbx\n"+
		"BYE sip:1002@pbx\n"+
		"SIP/2.0 180 Ringing\n")

	assert.Equal(t, 7, NewInviteCounter(osRunner(), path, nil).Count(context.Background()))
}

func TestInviteCounter_RealGrepQuotedMarkers(t *testing.T) {
	if _, err := exec.LookPath("grep"); err != nil {
		t.Skip("grep not available")
	}
	path := writeTempLog(t, "call a.b done\n"+
		"call axb done\n"+
		"codec (g729)+\n"+
		"codec g729\n"+
		"[pjsip] up\n"+
		"p up\n")
	c := NewInviteCounter(osRunner(), path, []string{"a.b", "(g729)+", "[pjsip]"})

	assert.Equal(t, 3, c.Count(context.Background()))
}
