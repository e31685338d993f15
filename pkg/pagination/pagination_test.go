package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSlicePage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	tests := []struct {
		name       string
		page, size int
		want       []int
		totalPages int
		wantPage   int
	}{
		{name: "first page", page: 1, size: 3, want: []int{1, 2, 3}, totalPages: 3, wantPage: 1},
		{name: "last partial page", page: 3, size: 3, want: []int{7}, totalPages: 3, wantPage: 3},
		{name: "past the end", page: 9, size: 3, want: []int{}, totalPages: 3, wantPage: 9},
		{name: "page clamps to one", page: 0, size: 5, want: []int{1, 2, 3, 4, 5}, totalPages: 2, wantPage: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SlicePage(items, tc.page, tc.size)
			if len(got.Items) != len(tc.want) {
				t.Fatalf("expected %v got %v", tc.want, got.Items)
			}
			for i := range tc.want {
				if got.Items[i] != tc.want[i] {
					t.Fatalf("expected %v got %v", tc.want, got.Items)
				}
			}
			if got.Total != len(items) || got.TotalPages != tc.totalPages || got.Page != tc.wantPage {
				t.Fatalf("unexpected page info %+v", got.PageInfo)
			}
		})
	}
}

func TestCursorRoundTrip(t *testing.T) {
	original := Cursor{CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), ID: uuid.New()}
	parsed, err := ParseCursor(EncodeCursor(original))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !parsed.CreatedAt.Equal(original.CreatedAt) || parsed.ID != original.ID {
		t.Fatalf("cursor mismatch: %+v vs %+v", parsed, original)
	}
	if c, err := ParseCursor("  "); err != nil || c != nil {
		t.Fatalf("blank cursor should be nil, got %v %v", c, err)
	}
	if _, err := ParseCursor("not-base64!"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestNormalizeLimit(t *testing.T) {
	if NormalizeLimit(0) != DefaultLimit || NormalizeLimit(1000) != MaxLimit || NormalizeLimit(7) != 7 {
		t.Fatal("unexpected limit normalization")
	}
	if LimitWithBuffer(7) != 8 {
		t.Fatal("expected buffer of one")
	}
}
