package intent

import (
	"testing"

	"whatsledger/internal/domain"
)

func TestClassifyPayments(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantName string
		wantAmt  int64
		wantDir  string
	}{
		{"amount received from", "500 received from Rahul", "rahul", 500, domain.DirectionReceived},
		{"amount got from", "750 got from Meera", "meera", 750, domain.DirectionReceived},
		{"amount paid to", "1000 paid to Priya", "priya", 1000, domain.DirectionPaid},
		{"amount sent from falls back to received", "500 sent from Ravi", "ravi", 500, domain.DirectionReceived},
		{"amount gave to", "300 gave to Anil", "anil", 300, domain.DirectionPaid},
		{"name first paid inverts to received", "Kumar paid 2000", "kumar", 2000, domain.DirectionReceived},
		{"name first received inverts to paid", "Kumar received 2000", "kumar", 2000, domain.DirectionPaid},
		{"name first got inverts to paid", "Sita got 150", "sita", 150, domain.DirectionPaid},
		{"verb first received", "Received 500 from Rahul", "rahul", 500, domain.DirectionReceived},
		{"verb first paid keeps trailing words", "Paid 1000 to Priya via UPI", "priya via upi", 1000, domain.DirectionPaid},
		{"verb first got stops at digits", "Got 2500 from Jay on 15th June", "jay on", 2500, domain.DirectionReceived},
		{"surrounding whitespace", "   200 paid to  Dev  ", "dev", 200, domain.DirectionPaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.input)
			if got.Type != domain.IntentPayment {
				t.Fatalf("type = %s, want PAYMENT", got.Type)
			}
			if got.Name != tt.wantName {
				t.Errorf("name = %q, want %q", got.Name, tt.wantName)
			}
			if got.Amount != tt.wantAmt {
				t.Errorf("amount = %d, want %d", got.Amount, tt.wantAmt)
			}
			if got.Direction != tt.wantDir {
				t.Errorf("direction = %s, want %s", got.Direction, tt.wantDir)
			}
			if got.OriginalMessage != tt.input {
				t.Errorf("original message = %q, want %q", got.OriginalMessage, tt.input)
			}
		})
	}
}

func TestClassifyQueriesAndChat(t *testing.T) {
	tests := []struct {
		input    string
		wantType string
		wantName string
	}{
		{"Balance for Rahul", domain.IntentBalanceQuery, "rahul"},
		{"balance of Priya", domain.IntentBalanceQuery, "priya"},
		{"Rahul balance", domain.IntentBalanceQuery, "rahul"},
		{"balance", domain.IntentBalanceQuery, ""},
		{"balance history", domain.IntentBalanceQuery, ""},
		{"history for Priya", domain.IntentHistoryQuery, "priya"},
		{"transactions of Amit", domain.IntentHistoryQuery, "amit"},
		{"Rahul history", domain.IntentHistoryQuery, "rahul"},
		{"statement", domain.IntentHistoryQuery, ""},
		{"Hello", domain.IntentGreeting, ""},
		{"namaste ji", domain.IntentGreeting, ""},
		{"help", domain.IntentHelp, ""},
		{"menu", domain.IntentHelp, ""},
		{"?", domain.IntentHelp, ""},
		{"options please", domain.IntentHelp, ""},
		{"qwerty", domain.IntentUnclear, ""},
		{"", domain.IntentUnclear, ""},
		{"   ", domain.IntentUnclear, ""},
	}
	for _, tt := range tests {
		got := Classify(tt.input)
		if got.Type != tt.wantType {
			t.Errorf("Classify(%q).Type = %s, want %s", tt.input, got.Type, tt.wantType)
		}
		if got.Name != tt.wantName {
			t.Errorf("Classify(%q).Name = %q, want %q", tt.input, got.Name, tt.wantName)
		}
	}
}

func TestClassifyOverflowFallsThrough(t *testing.T) {
	got := Classify("99999999999999999999 received from rahul")
	if got.Type != domain.IntentUnclear {
		t.Fatalf("type = %s, want UNCLEAR", got.Type)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	for _, in := range []string{"500 received from Rahul", "Kumar paid 2000", "balance", "hey"} {
		if a, b := Classify(in), Classify(in); a != b {
			t.Errorf("Classify(%q) not deterministic: %+v vs %+v", in, a, b)
		}
	}
}
