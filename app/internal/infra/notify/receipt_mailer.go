package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	domorder "example.com/coffee-shop/app/internal/domain/order"
	domuser "example.com/coffee-shop/app/internal/domain/user"
)

type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*domuser.User, error)
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// ReceiptMailer emails an order receipt to the customer over plain SMTP
// (Mailpit in development).
type ReceiptMailer struct {
	addr  string
	from  string
	users UserLookup
	send  sendFunc
}

func NewReceiptMailer(addr, from string, users UserLookup) *ReceiptMailer {
	return &ReceiptMailer{
		addr:  addr,
		from:  from,
		users: users,
		send:  smtp.SendMail,
	}
}

func (m *ReceiptMailer) Record(ctx context.Context, o *domorder.Order) error {
	u, err := m.users.GetByID(ctx, o.UserID)
	if err != nil {
		return fmt.Errorf("receipt for order %d: %w", o.Number, err)
	}
	if err := m.send(m.addr, nil, m.from, []string{u.Email}, receiptMessage(u.Email, o)); err != nil {
		return fmt.Errorf("send receipt for order %d: %w", o.Number, err)
	}
	return nil
}

func receiptMessage(to string, o *domorder.Order) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: Your coffee shop order #%d\r\n", o.Number)
	b.WriteString("\r\n")
	b.WriteString("Thank you for your order!\r\n\r\n")
	for _, item := range o.Items {
		fmt.Fprintf(&b, "%d x %s @ $%s\r\n", item.Quantity, item.Name, item.Price.StringFixed(2))
	}
	fmt.Fprintf(&b, "\r\nSubtotal: $%s\r\n", o.Subtotal.StringFixed(2))
	fmt.Fprintf(&b, "Tax (7%%): $%s\r\n", o.Tax.StringFixed(2))
	fmt.Fprintf(&b, "Total: $%s\r\n", o.Total.StringFixed(2))
	return []byte(b.String())
}
