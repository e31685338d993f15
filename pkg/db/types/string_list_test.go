package dbtypes

import "testing"

func TestStringListScanAndValue(t *testing.T) {
	var list StringList
	if err := list.Scan("{S,M,\"XL\"}"); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(list) != 3 || list[2] != "XL" {
		t.Fatalf("unexpected list %v", list)
	}
	if !list.Contains("m") || list.Contains("L") {
		t.Fatalf("unexpected membership for %v", list)
	}

	value, err := StringList(nil).Value()
	if err != nil || value != "{}" {
		t.Fatalf("nil list should encode as {}, got %v %v", value, err)
	}

	if err := list.Scan(nil); err != nil || list == nil || len(list) != 0 {
		t.Fatalf("nil scan should give empty list, got %v %v", list, err)
	}
}
