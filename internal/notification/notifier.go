package notification

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ridloal/woodkits-store/internal/order/domain"
	"github.com/ridloal/woodkits-store/internal/platform/money"
	"github.com/shopspring/decimal"
)

// OrderNotifier emails the customer and the shop owner about order events.
type OrderNotifier struct {
	sender      EmailSender
	shopName    string
	shopAddress string
}

func NewOrderNotifier(sender EmailSender, shopName, shopAddress string) *OrderNotifier {
	return &OrderNotifier{sender: sender, shopName: shopName, shopAddress: shopAddress}
}

type templateData struct {
	Order   *domain.Order
	Shop    string
	ShortID string
}

func (n *OrderNotifier) data(o *domain.Order) templateData {
	short := o.ID
	if len(short) > 8 {
		short = short[:8]
	}
	return templateData{Order: o, Shop: n.shopName, ShortID: short}
}

func (n *OrderNotifier) OrderPlaced(ctx context.Context, o *domain.Order) error {
	var errs []error
	msg, err := render(pick(customerConfirmation, o.Locale), n.data(o))
	if err == nil {
		msg.To, msg.ToName = o.Customer.Email, o.Customer.Name
		err = n.sender.Send(ctx, msg)
	}
	if err != nil {
		errs = append(errs, fmt.Errorf("customer confirmation: %w", err))
	}

	if n.shopAddress != "" {
		msg, err := render(shopNewOrder, n.data(o))
		if err == nil {
			msg.To, msg.ToName = n.shopAddress, n.shopName
			err = n.sender.Send(ctx, msg)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("shop notification: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (n *OrderNotifier) PaymentReceived(ctx context.Context, o *domain.Order) error {
	msg, err := render(pick(paymentReceived, o.Locale), n.data(o))
	if err != nil {
		return err
	}
	msg.To, msg.ToName = o.Customer.Email, o.Customer.Name
	return n.sender.Send(ctx, msg)
}

func pick(templates map[string]emailTemplate, locale string) emailTemplate {
	if t, ok := templates[locale]; ok {
		return t
	}
	return templates["he"]
}

func render(t emailTemplate, data templateData) (Message, error) {
	var subject, text, html bytes.Buffer
	if err := t.subject.Execute(&subject, data); err != nil {
		return Message{}, fmt.Errorf("render subject: %w", err)
	}
	if err := t.text.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("render text body: %w", err)
	}
	if err := t.html.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("render html body: %w", err)
	}
	return Message{Subject: subject.String(), Text: text.String(), HTML: html.String()}, nil
}

func formatAmount(amount decimal.Decimal, currency string) string {
	return amount.StringFixed(money.Exponent(currency))
}

func formatConfiguration(item domain.OrderItem) string {
	var parts []string
	dims := make([]string, 0, len(item.Configuration.Dimensions))
	for name := range item.Configuration.Dimensions {
		dims = append(dims, name)
	}
	sort.Strings(dims)
	for _, name := range dims {
		parts = append(parts, fmt.Sprintf("%s=%v", name, item.Configuration.Dimensions[name]))
	}
	opts := make([]string, 0, len(item.Configuration.Options))
	for name, on := range item.Configuration.Options {
		if on {
			opts = append(opts, name)
		}
	}
	sort.Strings(opts)
	return strings.Join(append(parts, opts...), ", ")
}
