package token

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/LoosePrince/Huisheen/internal/domain/auth"
	"github.com/google/uuid"
)

const verificationCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var notifyCodePattern = regexp.MustCompile(`^notify:user:([0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}):([A-Z0-9]{6})@(.+)$`)

// NewNotifyID derives a stable public identity string in the form
// xxxx-xxxx-xxxx from a fresh UUID.
func NewNotifyID() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("%s-%s-%s", hex[0:4], hex[4:8], hex[8:12])
}

// NewVerificationCode returns a 6-character uppercase alphanumeric code.
func NewVerificationCode() (string, error) {
	var sb strings.Builder
	for i := 0; i < 6; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(verificationCodeChars))))
		if err != nil {
			return "", err
		}
		sb.WriteByte(verificationCodeChars[n.Int64()])
	}
	return sb.String(), nil
}

// FormatNotifyCode assembles the copy-pasteable verification string a user
// hands to a third party.
func FormatNotifyCode(notifyID, code, domain string) string {
	return fmt.Sprintf("notify:user:%s:%s@%s", notifyID, code, domain)
}

// ParseNotifyCode splits a verification string into its notify id and code.
// The domain suffix is accepted as-is; identity is proven by the code, not
// by the host the string mentions.
func ParseNotifyCode(notifyCode string) (notifyID, code string, err error) {
	m := notifyCodePattern.FindStringSubmatch(strings.TrimSpace(notifyCode))
	if m == nil {
		return "", "", auth.ErrInvalidNotifyCode
	}
	return m[1], m[2], nil
}
