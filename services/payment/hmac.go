package paymentsvc

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/enroll"
)

// HMACGateway signs and verifies payment callbacks the way hosted
// checkout providers do: signature = HMAC-SHA256(orderID + "|" + paymentID).
// Order creation is local; the order ID doubles as the provider reference.
type HMACGateway struct {
	secret []byte
}

var _ enroll.Gateway = (*HMACGateway)(nil)

func NewHMACGateway(secret string) *HMACGateway {
	return &HMACGateway{secret: []byte(secret)}
}

func (g *HMACGateway) CreateOrder(ctx context.Context, orderID string, amount int) (string, error) {
	return "order_" + orderID, nil
}

func (g *HMACGateway) Sign(orderID, providerPaymentID string) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(orderID + "|" + providerPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func (g *HMACGateway) VerifySignature(orderID, providerPaymentID, signature string) error {
	expected := g.Sign(orderID, providerPaymentID)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return errors.New("signature mismatch")
	}
	return nil
}
