package utils

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"time"
)

const orderIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

const orderIDSuffixLen = 9

// NewOrderID returns an identifier of the form ORD-<unix ms>-<9 chars>.
func NewOrderID(now time.Time) (string, error) {
	suffix := make([]byte, orderIDSuffixLen)
	max := big.NewInt(int64(len(orderIDAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		suffix[i] = orderIDAlphabet[n.Int64()]
	}
	return "ORD-" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + string(suffix), nil
}
