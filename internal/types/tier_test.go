package types

import (
	"encoding/json"
	"testing"
)

func TestTrustTierJSON(t *testing.T) {
	for _, tier := range Tiers() {
		data, err := json.Marshal(tier)
		if err != nil {
			t.Fatalf("marshal %v: %v", tier, err)
		}
		var back TrustTier
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if back != tier {
			t.Errorf("round trip changed tier: %v -> %v", tier, back)
		}
	}
}

func TestTrustTierUnmarshalRejectsUnknown(t *testing.T) {
	var tier TrustTier
	if err := json.Unmarshal([]byte(`"platinum"`), &tier); err == nil {
		t.Error("expected error for unknown tier name")
	}
}

func TestParseTier(t *testing.T) {
	tests := []struct {
		in      string
		want    TrustTier
		wantErr bool
	}{
		{"cold", TierCold, false},
		{"warm", TierWarm, false},
		{"trusted", TierTrusted, false},
		{"hot", TierCold, true},
		{"", TierCold, true},
	}
	for _, tt := range tests {
		got, err := ParseTier(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTier(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseTier(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTiersOrderedByTrust(t *testing.T) {
	tiers := Tiers()
	if len(tiers) != 3 {
		t.Fatalf("expected 3 tiers, got %d", len(tiers))
	}
	if tiers[0] != TierTrusted || tiers[1] != TierWarm || tiers[2] != TierCold {
		t.Errorf("unexpected tier order: %v", tiers)
	}
}

func TestSizeDistance(t *testing.T) {
	if d := SizeDistance(SizeSmallLocal, SizeNational); d != 3 {
		t.Errorf("small to national = %d, want 3", d)
	}
	if d := SizeDistance(SizeNational, SizeSmallLocal); d != 3 {
		t.Errorf("distance should be symmetric, got %d", d)
	}
	if d := SizeDistance(SizeMidSized, SizeMidSized); d != 0 {
		t.Errorf("same size = %d, want 0", d)
	}
	if d := SizeDistance("", SizeMidSized); d != 0 {
		t.Errorf("unknown size = %d, want 0", d)
	}
}
