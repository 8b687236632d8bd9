// Package intent turns a free-text WhatsApp message into a structured bookkeeping intent.
package intent

import (
	"regexp"
	"strconv"
	"strings"

	"whatsledger/internal/domain"
)

// Parsed is the classifier result. Name is empty when the message names nobody;
// Amount and Direction are only set for payments.
type Parsed struct {
	Type            string `json:"type"`
	Name            string `json:"name,omitempty"`
	Amount          int64  `json:"amount,omitempty"`
	Direction       string `json:"direction,omitempty"`
	OriginalMessage string `json:"originalMessage"`
}

// IsPayment reports whether the intent records money movement.
func (p Parsed) IsPayment() bool { return p.Type == domain.IntentPayment }

type paymentRule struct {
	name    string
	re      *regexp.Regexp
	extract func(m []string, text string) (name, amount, direction string)
}

// paymentRules are tried in order; the first rule that matches and yields a valid amount wins.
var paymentRules = []paymentRule{
	{
		name: "amount-received-from",
		re:   regexp.MustCompile(`^(\d+)\s+(received|got)\s+from\s+([a-z\s]+)`),
		extract: func(m []string, _ string) (string, string, string) {
			return m[3], m[1], domain.DirectionReceived
		},
	},
	{
		name: "amount-first",
		re:   regexp.MustCompile(`^(\d+)\s+(paid|received|gave|got|sent)\s+(?:to|from)\s+([a-z\s]+)`),
		extract: func(m []string, text string) (string, string, string) {
			return m[3], m[1], resolveDirection(m[2], text)
		},
	},
	{
		// The verb describes what the named person did, so the business sees the opposite.
		name: "name-first",
		re:   regexp.MustCompile(`([a-z\s]+)\s+(paid|received|gave|got|sent)\s+(\d+)`),
		extract: func(m []string, _ string) (string, string, string) {
			switch m[2] {
			case "paid", "gave", "sent":
				return m[1], m[3], domain.DirectionReceived
			}
			return m[1], m[3], domain.DirectionPaid
		},
	},
	{
		name: "verb-first",
		re:   regexp.MustCompile(`(paid|received|gave|got|sent)\s+(\d+)\s+(?:to|from)\s+([a-z\s]+)`),
		extract: func(m []string, text string) (string, string, string) {
			return m[3], m[2], resolveDirection(m[1], text)
		},
	},
}

var (
	balanceNameRe = regexp.MustCompile(`(balance\s+for\s+)([a-z\s]+)|(balance\s+of\s+)([a-z\s]+)|([a-z\s]+)(\s+balance)`)
	historyNameRe = regexp.MustCompile(`(history\s+for\s+)([a-z\s]+)|(transactions\s+of\s+)([a-z\s]+)|([a-z\s]+)(\s+history)|([a-z\s]+)(\s+transactions)`)

	balanceNameGroups = []int{2, 4, 5}
	historyNameGroups = []int{2, 4, 5, 7}

	historyKeywords  = []string{"history", "transactions", "statement"}
	greetingKeywords = []string{"hi", "hello", "hey", "greetings", "howdy", "hola", "namaste"}
	helpKeywords     = []string{"help", "?", "menu", "options"}
)

// Classify never fails: anything it cannot make sense of is UNCLEAR.
func Classify(message string) Parsed {
	text := strings.ToLower(strings.TrimSpace(message))
	if text == "" {
		return Parsed{Type: domain.IntentUnclear, OriginalMessage: message}
	}

	for _, rule := range paymentRules {
		m := rule.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		name, rawAmount, direction := rule.extract(m, text)
		amount, err := strconv.ParseInt(rawAmount, 10, 64)
		if err != nil {
			continue
		}
		return Parsed{
			Type:            domain.IntentPayment,
			Name:            strings.TrimSpace(name),
			Amount:          amount,
			Direction:       direction,
			OriginalMessage: message,
		}
	}

	switch {
	case strings.Contains(text, "balance"):
		return Parsed{
			Type:            domain.IntentBalanceQuery,
			Name:            extractName(balanceNameRe, balanceNameGroups, text),
			OriginalMessage: message,
		}
	case containsAny(text, historyKeywords):
		return Parsed{
			Type:            domain.IntentHistoryQuery,
			Name:            extractName(historyNameRe, historyNameGroups, text),
			OriginalMessage: message,
		}
	case containsAny(text, greetingKeywords):
		return Parsed{Type: domain.IntentGreeting, OriginalMessage: message}
	case containsAny(text, helpKeywords):
		return Parsed{Type: domain.IntentHelp, OriginalMessage: message}
	}
	return Parsed{Type: domain.IntentUnclear, OriginalMessage: message}
}

// resolveDirection handles amount-first and verb-first forms, where the verb is the business's own action.
func resolveDirection(verb, text string) string {
	if verb == "received" || verb == "got" {
		return domain.DirectionReceived
	}
	if strings.Contains(text, "from") && !strings.Contains(text, "to") {
		return domain.DirectionReceived
	}
	return domain.DirectionPaid
}

func extractName(re *regexp.Regexp, groups []int, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	for _, g := range groups {
		if m[g] != "" {
			return strings.TrimSpace(m[g])
		}
	}
	return ""
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
