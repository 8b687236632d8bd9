// Package reply renders the fixed WhatsApp reply texts. It performs no I/O.
package reply

import (
	"fmt"
	"strings"
	"time"

	"whatsledger/internal/domain"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	Greeting = "👋 Hello! Welcome to WhatsApp Accounting.\n\nHow can I help you today?\n\n- Record a payment\n- Check balance\n- View transaction history\n- Type \"help\" for more information"

	Help = "📚 *WhatsApp Accounting Help*\n\nHere's how you can use me:\n\n*Recording Payments*\n- \"Received 500 from Rahul\"\n- \"Paid 1000 to Priya via UPI\"\n- \"Got 2500 from Jay on 15th June\"\n\n*Checking Balance*\n- \"Balance for Rahul\"\n- \"What's my balance?\"\n\n*Viewing History*\n- \"Show transactions for Priya\"\n- \"Show my history\"\n\nFor more help, contact customer support."

	Unclear = "I'm not sure what you mean. Here are some things you can do:\n\n- Record a payment: \"Received 500 from Rahul\"\n- Check balance: \"Balance for Rahul\"\n- View history: \"Show transactions for Priya\"\n\nType \"help\" for more information."

	InvalidPayment = "I couldn't process that payment. Please include who the payment is to/from and the amount. For example: 'Received 500 from Rahul' or 'Paid 1000 to Priya via UPI'."

	PaymentFailed = "I couldn't save that payment due to a technical issue. Please try again later."
	BalanceFailed = "I couldn't retrieve the balance information due to a technical issue. Please try again later."
	HistoryFailed = "I couldn't retrieve the transaction history due to a technical issue. Please try again later."

	SelfNotFound = "I couldn't find your records in our system. Would you like to add a payment to get started?"

	// Apology is sent when handling failed outside the ledger.
	Apology = "Sorry, something went wrong. Please try again later."

	// ProviderFallback is returned when no reply could be produced for a provider webhook.
	ProviderFallback = "I'm having trouble processing your message right now. Please try again later."

	TestMessage = "🔄 Test message from WhatsApp Accounting. If you're receiving this, your integration is working correctly! ✅"
)

const (
	DefaultLocale = "en-IN"
	DefaultSymbol = "₹"

	historyDateLayout = "02/01/2006"
)

// Renderer formats amounts for one locale and currency symbol.
type Renderer struct {
	printer *message.Printer
	symbol  string
}

func NewRenderer(locale, symbol string) *Renderer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Make(DefaultLocale)
	}
	return &Renderer{printer: message.NewPrinter(tag), symbol: symbol}
}

// Currency renders whole currency units with locale digit grouping, e.g. ₹1,500.
func (r *Renderer) Currency(amount decimal.Decimal) string {
	n := amount.Round(0).IntPart()
	if n < 0 {
		return "-" + r.symbol + r.printer.Sprintf("%d", -n)
	}
	return r.symbol + r.printer.Sprintf("%d", n)
}

func balanceSide(balance decimal.Decimal) string {
	if balance.Sign() >= 0 {
		return "(to receive)"
	}
	return "(to pay)"
}

// PaymentRecorded confirms a payment. direction is "paid" or "received".
func (r *Renderer) PaymentRecorded(amount decimal.Decimal, direction, name string, balance decimal.Decimal) string {
	action, preposition := "paid", "to"
	if direction == domain.DirectionReceived {
		action, preposition = "received", "from"
	}
	return fmt.Sprintf("✅ Successfully recorded: %s %s %s %s.\n\nCurrent balance with %s: %s %s",
		r.Currency(amount), action, preposition, name,
		name, r.Currency(balance.Abs()), balanceSide(balance))
}

func (r *Renderer) BalanceStatement(name string, received, paid, balance decimal.Decimal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Balance Statement for %s*\n\n", name)
	fmt.Fprintf(&b, "Total Received: %s\n", r.Currency(received))
	fmt.Fprintf(&b, "Total Paid: %s\n", r.Currency(paid))
	fmt.Fprintf(&b, "Current Balance: %s %s", r.Currency(balance.Abs()), balanceSide(balance))
	return b.String()
}

// HistoryEntry is one transaction line in a history reply.
type HistoryEntry struct {
	Date      time.Time
	Direction string // CREDIT | DEBIT
	Amount    decimal.Decimal
	Method    string
	Note      string
}

func (r *Renderer) HistoryLine(e HistoryEntry) string {
	label := "Paid"
	if e.Direction == domain.LedgerCredit {
		label = "Received"
	}
	method := e.Method
	if method == "" {
		method = domain.DefaultPaymentMethod
	}
	line := fmt.Sprintf("%s: %s %s via %s", e.Date.Format(historyDateLayout), label, r.Currency(e.Amount), method)
	if e.Note != "" {
		line += " (" + e.Note + ")"
	}
	return line
}

func (r *Renderer) History(name string, entries []HistoryEntry) string {
	if len(entries) == 0 {
		return NoHistory(name)
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = r.HistoryLine(e)
	}
	return fmt.Sprintf("📝 *Recent Transactions for %s*\n\n%s", name, strings.Join(lines, "\n"))
}

func NoHistory(name string) string {
	return fmt.Sprintf("No transaction history found for %s. Add a payment to get started.", name)
}

func NamedNotFound(name string) string {
	return fmt.Sprintf("I couldn't find any records for %s. Please check the spelling or add them as a new customer.", name)
}

// NotFound picks the named or self lookup variant.
func NotFound(name string) string {
	if name == "" {
		return SelfNotFound
	}
	return NamedNotFound(name)
}

// Static returns the fixed reply for intents that need no ledger access.
func Static(intentType string) (string, bool) {
	switch intentType {
	case domain.IntentGreeting:
		return Greeting, true
	case domain.IntentHelp:
		return Help, true
	case domain.IntentUnclear:
		return Unclear, true
	}
	return "", false
}
