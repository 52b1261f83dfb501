package negotiation

import "testing"

func TestDetectPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		want     DecisionType
		price    float64
		hasPrice bool
	}{
		{
			name:     "acceptance with price wins over everything",
			content:  "Deal! I accept 14 HBAR, sorry for the back and forth.",
			want:     DecisionPriceAgreed,
			price:    14,
			hasPrice: true,
		},
		{
			name:    "acceptance without price is still acceptance",
			content: "Sounds good, I agree to your terms.",
			want:    DecisionAccepted,
		},
		{
			name:     "acceptance beats rejection keywords",
			content:  "Sorry for the delay, but yes - deal at 12 HBAR.",
			want:     DecisionPriceAgreed,
			price:    12,
			hasPrice: true,
		},
		{
			name:     "rejection beats counter-offer keywords",
			content:  "Sorry, I cannot accept. How about we stop here.",
			want:     DecisionRejected,
			hasPrice: false,
		},
		{
			name:     "counter offer with price",
			content:  "How about 13 HBAR instead?",
			want:     DecisionCounterOffer,
			price:    13,
			hasPrice: true,
		},
		{
			name:    "plain text is none",
			content: "Let me check the item condition first.",
			want:    DecisionNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Detect(tt.content)
			if d.Type != tt.want {
				t.Fatalf("Detect(%q).Type = %s, want %s", tt.content, d.Type, tt.want)
			}
			if d.HasPrice != tt.hasPrice {
				t.Errorf("HasPrice = %v, want %v", d.HasPrice, tt.hasPrice)
			}
			if tt.hasPrice && d.Price != tt.price {
				t.Errorf("Price = %v, want %v", d.Price, tt.price)
			}
		})
	}
}

func TestExtractPrice(t *testing.T) {
	tests := []struct {
		content string
		want    float64
		ok      bool
	}{
		{"I can do 14 HBAR", 14, true},
		{"I can do 14.5HBAR", 14.5, true},
		{"my offer is HBAR 20", 20, true},
		{"first 12 HBAR then 15 HBAR", 12, true},
		{"the price is 14", 0, false},
		{"no numbers here", 0, false},
	}

	for _, tt := range tests {
		got, ok := ExtractPrice(tt.content)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ExtractPrice(%q) = (%v, %v), want (%v, %v)", tt.content, got, ok, tt.want, tt.ok)
		}
	}
}
