package domain

const (
	RoleAdmin    = "ADMIN"
	RoleBusiness = "BUSINESS"
)

// Intent types produced by the message classifier.
const (
	IntentPayment      = "PAYMENT"
	IntentBalanceQuery = "BALANCE_QUERY"
	IntentHistoryQuery = "HISTORY_QUERY"
	IntentGreeting     = "GREETING"
	IntentHelp         = "HELP"
	IntentUnclear      = "UNCLEAR"
)

// Direction as worded by the business: "paid" money out or "received" money in.
const (
	DirectionPaid     = "paid"
	DirectionReceived = "received"
)

// Ledger directions stored on payments.
const (
	LedgerCredit = "CREDIT"
	LedgerDebit  = "DEBIT"
)

const DefaultPaymentMethod = "Cash"

// Conversation states.
const (
	StateReceived   = "RECEIVED"
	StateClassified = "CLASSIFIED"
	StateResolved   = "RESOLVED"
	StateReplied    = "REPLIED"
	StateFailed     = "FAILED"
)

const (
	AccessCodeActive  = "active"
	AccessCodeUsed    = "used"
	AccessCodeExpired = "expired"
)

const (
	MessageIncoming = "INCOMING"
	MessageOutgoing = "OUTGOING"
)

// Provider names for inbound adapters and outbound senders.
const (
	ProviderAPI       = "api"
	ProviderBotbiz    = "botbiz"
	ProviderMeta      = "meta"
	ProviderTwilio    = "twilio"
	ProviderDialog360 = "dialog360"
	ProviderLog       = "log"
)

// LedgerDirection maps a business-worded direction to the stored ledger enum.
func LedgerDirection(direction string) string {
	if direction == DirectionReceived {
		return LedgerCredit
	}
	return LedgerDebit
}
