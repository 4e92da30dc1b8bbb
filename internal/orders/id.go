package orders

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"
)

const (
	orderIDPrefix    = "ORD"
	orderIDSuffixLen = 9
	base36Alphabet   = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// IDGenerator mints human-readable order ids of the form ORD-<unix-ms>-<9 base36>.
type IDGenerator struct {
	now    func() time.Time
	random io.Reader
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now, random: rand.Reader}
}

func (g *IDGenerator) Next() (string, error) {
	suffix := make([]byte, orderIDSuffixLen)
	radix := big.NewInt(int64(len(base36Alphabet)))
	for i := range suffix {
		n, err := rand.Int(g.random, radix)
		if err != nil {
			return "", fmt.Errorf("generate order id: %w", err)
		}
		suffix[i] = base36Alphabet[n.Int64()]
	}
	return fmt.Sprintf("%s-%d-%s", orderIDPrefix, g.now().UnixMilli(), suffix), nil
}
