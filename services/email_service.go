package services

import (
	"canteen-storefront/models"
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/gomail.v2"
)

// Notifier tells a customer that their order went through.
type Notifier interface {
	OrderConfirmed(ctx context.Context, user models.User, order models.Order) error
}

type NoopNotifier struct{}

func (NoopNotifier) OrderConfirmed(context.Context, models.User, models.Order) error { return nil }

type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailService struct {
	sender mailSender
	from   string
}

func NewEmailService(host string, port int, user, pass, from string) *EmailService {
	if from == "" {
		from = user
	}
	return &EmailService{
		sender: gomail.NewDialer(host, port, user, pass),
		from:   from,
	}
}

func (s *EmailService) OrderConfirmed(_ context.Context, user models.User, order models.Order) error {
	if user.Email == "" {
		return nil
	}

	m := s.confirmationMessage(user, order)
	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *EmailService) confirmationMessage(user models.User, order models.Order) *gomail.Message {
	orderNumber := fmt.Sprintf("ORD-%d", order.ID)

	canteen := "the canteen"
	if order.Canteen != nil {
		canteen = order.Canteen.Name
	}
	table := "pickup"
	if order.TableNumber != nil && *order.TableNumber != "" {
		table = "table " + *order.TableNumber
	}

	var rows strings.Builder
	for _, item := range order.Items {
		name := "Item"
		if item.MenuItem != nil {
			name = item.MenuItem.Name
		}
		fmt.Fprintf(&rows, "<tr><td>%d &times; %s</td><td style=\"text-align:right\">%s</td></tr>",
			item.Quantity, name, formatAmount(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))))
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", user.Email)
	m.SetHeader("Subject", fmt.Sprintf("Order Confirmation #%s", orderNumber))

	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
    <div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 30px; border-radius: 10px;">
        <h2 style="color: #333;">Order Confirmation</h2>
        <p>Hello %s,</p>
        <p>Thank you for your order at %s. We'll let you know when it is ready.</p>
        <p><strong>Order Number:</strong> %s<br><strong>Serving:</strong> %s</p>
        <table style="width: 100%%;">%s</table>
        <p><strong>Total Amount:</strong> %s</p>
    </div>
</body>
</html>
	`, user.FullName(), canteen, orderNumber, table, rows.String(), formatAmount(order.TotalPrice))

	m.SetBody("text/html", body)
	return m
}

// formatAmount renders a price with thousands separators and two decimals.
func formatAmount(amount decimal.Decimal) string {
	str := amount.StringFixed(2)
	sign := ""
	if strings.HasPrefix(str, "-") {
		sign, str = "-", str[1:]
	}
	whole, frac, _ := strings.Cut(str, ".")

	n := len(whole)
	var result strings.Builder
	for i, digit := range whole {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteByte(',')
		}
		result.WriteRune(digit)
	}
	return "Rs. " + sign + result.String() + "." + frac
}
