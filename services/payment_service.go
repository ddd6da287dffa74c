// Package services holds the payment gateway stubs and the OTP store.
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/seblak-delivery/api/models"
)

var ErrInvalidPaymentMethod = errors.New("invalid payment method")

// PaymentResult is what a gateway returns: pass/fail plus a transaction id.
type PaymentResult struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id,omitempty"`
	Method        string `json:"method"`
	Note          string `json:"note,omitempty"`
}

// PaymentDetails carries the method-specific fields from the client. None of
// them are validated here; the gateways are simulated.
type PaymentDetails struct {
	QRCode        string `json:"qr_code,omitempty"`
	GopayAccount  string `json:"gopay_account,omitempty"`
	OVOAccount    string `json:"ovo_account,omitempty"`
	DANAAccount   string `json:"dana_account,omitempty"`
	BankCode      string `json:"bank_code,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
}

// ProcessPayment dispatches to the gateway stub for the given method. Real
// gateway integration is out of scope; each stub fabricates a transaction id
// and reports success.
func ProcessPayment(order *models.Order, method models.PaymentMethod, details PaymentDetails) (PaymentResult, error) {
	switch method {
	case models.PaymentQRIS:
		return simulate("QRIS", method), nil
	case models.PaymentGopay:
		return simulate("GOPAY", method), nil
	case models.PaymentOVO:
		return simulate("OVO", method), nil
	case models.PaymentDANA:
		return simulate("DANA", method), nil
	case models.PaymentBankTransfer:
		return simulate("BANK", method), nil
	case models.PaymentCash:
		result := simulate("CASH", method)
		result.Note = "payment will be collected on delivery"
		return result, nil
	default:
		return PaymentResult{}, ErrInvalidPaymentMethod
	}
}

func simulate(prefix string, method models.PaymentMethod) PaymentResult {
	return PaymentResult{
		Success:       true,
		TransactionID: fmt.Sprintf("%s_%d", prefix, time.Now().UnixMilli()),
		Method:        string(method),
	}
}

// PaymentMethodInfo describes one selectable payment option.
type PaymentMethodInfo struct {
	ID          models.PaymentMethod `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Icon        string               `json:"icon"`
	IsActive    bool                 `json:"is_active"`
}

// ListPaymentMethods returns the fixed set of supported payment options.
func ListPaymentMethods() []PaymentMethodInfo {
	return []PaymentMethodInfo{
		{ID: models.PaymentQRIS, Name: "QRIS", Description: "Bayar dengan QR Code", Icon: "qris-icon.png", IsActive: true},
		{ID: models.PaymentGopay, Name: "GoPay", Description: "Bayar dengan GoPay", Icon: "gopay-icon.png", IsActive: true},
		{ID: models.PaymentOVO, Name: "OVO", Description: "Bayar dengan OVO", Icon: "ovo-icon.png", IsActive: true},
		{ID: models.PaymentDANA, Name: "DANA", Description: "Bayar dengan DANA", Icon: "dana-icon.png", IsActive: true},
		{ID: models.PaymentBankTransfer, Name: "Transfer Bank", Description: "Transfer melalui ATM/Mobile Banking", Icon: "bank-icon.png", IsActive: true},
		{ID: models.PaymentCash, Name: "Bayar Tunai", Description: "Bayar saat makanan diantar", Icon: "cash-icon.png", IsActive: true},
	}
}
