package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/giftkeeper/internal/common"
)

func TestParseEntityType(t *testing.T) {
	for _, et := range PullOrder {
		got, err := ParseEntityType(string(et))
		require.NoError(t, err)
		assert.Equal(t, et, got)
	}
	_, err := ParseEntityType("wishlists")
	require.Error(t, err)
}

func TestPullOrder_ParentsFirst(t *testing.T) {
	assert.Equal(t, []EntityType{EntityHolidays, EntityRecipients, EntityGifts}, PullOrder)
}

func TestRecord_Clone_IsIndependent(t *testing.T) {
	uid := "u1"
	del := time.Now()
	r := &Record{ID: "x", UserID: &uid, DeletedAt: &del, Fields: map[string]any{"name": "a"}}

	c := r.Clone()
	c.Fields["name"] = "b"
	*c.UserID = "u2"

	assert.Equal(t, "a", r.Fields["name"])
	assert.Equal(t, "u1", *r.UserID)
	assert.Nil(t, (*Record)(nil).Clone())
	assert.NotNil(t, (&Record{}).Clone().Fields)
}

func TestRecord_Accessors(t *testing.T) {
	r := &Record{Fields: map[string]any{"s": "txt", "f": 2.5, "i": 3, "bad": true}}

	assert.Equal(t, "txt", r.String("s"))
	assert.Equal(t, "", r.String("f"))
	assert.Equal(t, 2.5, r.Number("f"))
	assert.Equal(t, 3.0, r.Number("i"))
	assert.Equal(t, 0.0, r.Number("bad"))
	assert.Equal(t, "", r.Owner())
	assert.Nil(t, StringPtr(""))
}

func TestGiftFromRecord_CarriesAllFields(t *testing.T) {
	uid := "u1"
	g := Gift{
		ID: "g1", UserID: &uid, RecipientID: "r1", HolidayID: "h1", Title: "Book",
		Price: 12.5, Status: GiftBought, URL: "https://example.com", Notes: "n",
		CreatedAt: base, UpdatedAt: base.Add(time.Minute),
	}

	assert.Equal(t, g, GiftFromRecord(g.Record()))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"holiday ok", Holiday{Name: "Xmas", Date: "2025-12-25"}.Validate(), false},
		{"holiday bad date", Holiday{Name: "Xmas", Date: "25.12.2025"}.Validate(), true},
		{"holiday empty name", Holiday{Name: " ", Date: "2025-12-25"}.Validate(), true},
		{"holiday negative budget", Holiday{Name: "Xmas", Date: "2025-12-25", Budget: -1}.Validate(), true},
		{"recipient ok", Recipient{HolidayID: "h1", Name: "Ann"}.Validate(), false},
		{"recipient orphan", Recipient{Name: "Ann"}.Validate(), true},
		{"gift ok", Gift{RecipientID: "r1", Title: "Book", Status: GiftIdea}.Validate(), false},
		{"gift bad status", Gift{RecipientID: "r1", Title: "Book", Status: "lost"}.Validate(), true},
		{"gift negative price", Gift{RecipientID: "r1", Title: "Book", Status: GiftIdea, Price: -2}.Validate(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantErr {
				require.ErrorIs(t, tt.err, common.ErrorValidation)
			} else {
				require.NoError(t, tt.err)
			}
		})
	}
}

func TestGiftStatus_Paid(t *testing.T) {
	assert.False(t, GiftIdea.Paid())
	assert.False(t, GiftNotBought.Paid())
	assert.True(t, GiftBought.Paid())
	assert.True(t, GiftWrapped.Paid())
	assert.True(t, GiftGiven.Paid())
}

func TestHolidaySummary_Remaining(t *testing.T) {
	s := HolidaySummary{Holiday: Holiday{Budget: 100}, Spent: 30}
	assert.Equal(t, 70.0, s.Remaining())
}
