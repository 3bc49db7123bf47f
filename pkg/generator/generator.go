package generator

import (
	"crypto/rand"
	"math/big"
)

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// TokenIDLength is the length of the identifier stamped into every
// session token; logout revokes by this value.
const TokenIDLength = 24

func GenerateRandomID(length int) (string, error) {
	result := make([]byte, length)
	max := big.NewInt(int64(len(alphabet)))

	for i := 0; i < length; i++ {
		randomIndex, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		result[i] = alphabet[randomIndex.Int64()]
	}

	return string(result), nil
}

func GenerateTokenID() (string, error) {
	return GenerateRandomID(TokenIDLength)
}
