package account

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// codeAlphabet holds uppercase letters and the digits 1-9. The digit 0 is
// deliberately absent; existing clients depend on never receiving it.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ123456789"

// DefaultCodeLength is the verification code length used when none is
// configured.
const DefaultCodeLength = 4

// GenerateCode returns a verification code of the given length drawn
// uniformly from codeAlphabet. Codes are short-lived shared secrets, not
// credentials; the same channel carries both email-verification and
// password-reset codes.
func GenerateCode(length int) (string, error) {
	if length <= 0 {
		length = DefaultCodeLength
	}

	buf := make([]byte, length)
	size := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", fmt.Errorf("account: generate code: %w", err)
		}
		buf[i] = codeAlphabet[n.Int64()]
	}

	return string(buf), nil
}
