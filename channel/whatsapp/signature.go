package whatsapp

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/url"
	"sort"
	"strings"
)

// ComputeSignature builds the relay's X-Twilio-Signature value: the
// public URL with each form key and value appended in sorted key order,
// HMAC-SHA1 under the auth token, base64.
func ComputeSignature(authToken, publicURL string, form url.Values) string {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(publicURL)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(form.Get(k))
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// ValidSignature checks a webhook callback signature in constant time.
func ValidSignature(authToken, publicURL string, form url.Values, header string) bool {
	want := ComputeSignature(authToken, publicURL, form)
	return hmac.Equal([]byte(want), []byte(header))
}
