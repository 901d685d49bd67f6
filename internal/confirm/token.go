// Package confirm issues and checks the one-time confirmation codes mailed
// to users during signup.
//
// A code is "<timestamp>-<mac>": the timestamp is seconds since 2001-01-01 in
// base 36 and the mac is a truncated HMAC-SHA256 over the user's id, email and
// last login. Logging in changes last login, so a code stops working once it
// has been exchanged; changing the email does the same.
package confirm

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"yamdb/internal/http-api/models"
)

// MaxLength is the longest code MakeToken produces.
const MaxLength = 30

const macLength = 20

var epoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

type Generator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewGenerator(secret string, ttl time.Duration) *Generator {
	return &Generator{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// MakeToken returns a code bound to the user's current state.
func (g *Generator) MakeToken(user *models.User) string {
	return g.makeAt(user, g.elapsed(g.now()))
}

// CheckToken reports whether token was issued for user, is unexpired and not
// dated in the future.
func (g *Generator) CheckToken(user *models.User, token string) bool {
	if user == nil || token == "" || len(token) > MaxLength {
		return false
	}

	tsPart, _, ok := strings.Cut(token, "-")
	if !ok || tsPart == "" {
		return false
	}
	ts, err := strconv.ParseInt(tsPart, 36, 64)
	if err != nil || ts < 0 {
		return false
	}

	if !hmac.Equal([]byte(g.makeAt(user, ts)), []byte(token)) {
		return false
	}

	age := g.elapsed(g.now()) - ts
	if age < 0 {
		return false
	}
	return time.Duration(age)*time.Second <= g.ttl
}

func (g *Generator) makeAt(user *models.User, ts int64) string {
	tsPart := strconv.FormatInt(ts, 36)

	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(user.ID))
	mac.Write([]byte{0})
	mac.Write([]byte(user.Email))
	mac.Write([]byte{0})
	if user.LastLogin != nil {
		mac.Write([]byte(strconv.FormatInt(user.LastLogin.Unix(), 10)))
	}
	mac.Write([]byte{0})
	mac.Write([]byte(tsPart))

	sum := hex.EncodeToString(mac.Sum(nil))
	return tsPart + "-" + sum[:macLength]
}

func (g *Generator) elapsed(t time.Time) int64 {
	return int64(t.Sub(epoch) / time.Second)
}
