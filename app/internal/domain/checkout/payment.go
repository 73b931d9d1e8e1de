package checkout

import (
	domcart "example.com/coffee-shop/app/internal/domain/cart"
)

// PaymentRequest is what the payment step charges for.
type PaymentRequest struct {
	UserID  int64
	Lines   []domcart.LineItem
	Summary domcart.Summary
}

// PaymentResult is either a success carrying the order id or a failure
// carrying a reason.
type PaymentResult struct {
	OrderID       int64
	FailureReason string
}

func PaymentSucceeded(orderID int64) PaymentResult {
	return PaymentResult{OrderID: orderID}
}

func PaymentFailed(reason string) PaymentResult {
	if reason == "" {
		reason = "payment declined"
	}
	return PaymentResult{FailureReason: reason}
}

func (r PaymentResult) Succeeded() bool {
	return r.FailureReason == "" && r.OrderID > 0
}

func (r PaymentResult) Reason() string {
	if r.FailureReason != "" {
		return r.FailureReason
	}
	if r.OrderID <= 0 {
		return "payment returned no order id"
	}
	return ""
}
