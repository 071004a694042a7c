package webdav

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

const (
	digestScheme = "digest"
	// nc is fixed: a challenge nonce is answered exactly once.
	digestNonceCount = "00000001"
	defaultQop       = "auth"
)

// Challenge is the parameter map of a `WWW-Authenticate: Digest ...` header. Keys are lower case.
type Challenge map[string]string

func (c Challenge) Realm() string  { return c["realm"] }
func (c Challenge) Nonce() string  { return c["nonce"] }
func (c Challenge) Opaque() string { return c["opaque"] }

// Algorithm returns the upper-cased algorithm, or "" when the server did not name one.
func (c Challenge) Algorithm() string { return strings.ToUpper(c["algorithm"]) }

// Qop returns the first qop token offered by the server. auth-int is not supported and a
// missing qop is answered as if "auth" had been offered.
func (c Challenge) Qop() string {
	first, _, _ := strings.Cut(c["qop"], ",")
	first = strings.TrimSpace(first)
	if first == "" || strings.EqualFold(first, "auth-int") {
		return defaultQop
	}
	return first
}

// IsDigestChallenge reports whether a WWW-Authenticate value offers Digest authentication.
func IsDigestChallenge(header string) bool {
	return strings.Contains(strings.ToLower(header), digestScheme)
}

// ParseChallenge extracts key/value pairs from a Digest challenge. Quoted values may contain
// commas and backslash escapes.
func ParseChallenge(header string) Challenge {
	if idx := strings.Index(strings.ToLower(header), digestScheme); idx >= 0 {
		header = header[idx+len(digestScheme):]
	}

	res := make(Challenge)
	rest := header
	for {
		rest = strings.TrimLeft(rest, " \t,")
		if rest == "" {
			break
		}

		eq := strings.IndexByte(rest, '=')
		if eq <= 0 {
			break
		}
		key := strings.ToLower(strings.TrimSpace(rest[:eq]))
		rest = strings.TrimLeft(rest[eq+1:], " \t")

		var value string
		value, rest = readParamValue(rest)
		res[key] = value
	}

	return res
}

func readParamValue(s string) (value, rest string) {
	if !strings.HasPrefix(s, `"`) {
		end := strings.IndexByte(s, ',')
		if end < 0 {
			return strings.TrimSpace(s), ""
		}
		return strings.TrimSpace(s[:end]), s[end+1:]
	}

	var b strings.Builder
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			}
		case '"':
			return b.String(), s[i+1:]
		default:
			b.WriteByte(s[i])
		}
	}

	// unterminated quote, take what we have
	return b.String(), ""
}

// BuildDigestAuth computes an RFC 2617 Authorization header value (qop=auth) for a single
// request against target.
func BuildDigestAuth(method, target, username, password string, challenge Challenge) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid digest target %q: %w", target, err)
	}
	uri := u.RequestURI()

	cnonce, err := newCnonce()
	if err != nil {
		return "", err
	}

	response := digestResponse(method, uri, username, password, cnonce, challenge)
	header := fmt.Sprintf(
		`Digest username="%s", realm="%s", nonce="%s", uri="%s", response="%s", qop=%s, nc=%s, cnonce="%s"`,
		quoteEscape(username), quoteEscape(challenge.Realm()), quoteEscape(challenge.Nonce()), uri, response,
		challenge.Qop(), digestNonceCount, cnonce,
	)
	if opaque := challenge.Opaque(); opaque != "" {
		header += fmt.Sprintf(`, opaque="%s"`, quoteEscape(opaque))
	}
	if algorithm := challenge["algorithm"]; algorithm != "" {
		header += ", algorithm=" + algorithm
	}

	return header, nil
}

// digestResponse computes the request-digest for nc=00000001.
func digestResponse(method, uri, username, password, cnonce string, challenge Challenge) string {
	nonce := challenge.Nonce()

	ha1 := md5Hex(username + ":" + challenge.Realm() + ":" + password)
	if challenge.Algorithm() == "MD5-SESS" {
		ha1 = md5Hex(ha1 + ":" + nonce + ":" + cnonce)
	}
	ha2 := md5Hex(method + ":" + uri)

	return md5Hex(strings.Join([]string{ha1, nonce, digestNonceCount, cnonce, challenge.Qop(), ha2}, ":"))
}

func newCnonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate cnonce: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func quoteEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
