package entity

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(id string, qty int) CartLine {
	return CartLine{ID: id, Name: "Product " + id, Price: decimal.NewFromInt(10), Image: "fa-" + id, Quantity: qty}
}

func TestMergeCarts_Scenario(t *testing.T) {
	user := []CartLine{line("1", 2)}
	guest := []CartLine{line("1", 1), line("2", 3)}

	merged := MergeCarts(user, guest)

	require.Len(t, merged, 2)
	assert.Equal(t, "1", merged[0].ID)
	assert.Equal(t, 3, merged[0].Quantity)
	assert.Equal(t, "2", merged[1].ID)
	assert.Equal(t, 3, merged[1].Quantity)
}

func TestMergeCarts_DisjointKeepsEveryLine(t *testing.T) {
	user := []CartLine{line("1", 1), line("2", 2)}
	guest := []CartLine{line("3", 3), line("4", 4), line("5", 5)}

	merged := MergeCarts(user, guest)

	assert.Len(t, merged, len(user)+len(guest))
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(merged))
}

func TestMergeCarts_SumsSharedQuantities(t *testing.T) {
	tests := []struct {
		name   string
		userQ  int
		guestQ int
	}{
		{"one and one", 1, 1},
		{"small and large", 2, 40},
		{"large and small", 99, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := MergeCarts([]CartLine{line("x", tt.userQ)}, []CartLine{line("x", tt.guestQ)})
			require.Len(t, merged, 1)
			assert.Equal(t, tt.userQ+tt.guestQ, merged[0].Quantity)
		})
	}
}

func TestMergeCarts_EmptyGuestIsIdentity(t *testing.T) {
	user := []CartLine{line("1", 2), line("7", 1)}

	assert.Equal(t, user, MergeCarts(user, nil))
	assert.Equal(t, user, MergeCarts(user, []CartLine{}))
}

func TestMergeCarts_EmptyUserIsIdentity(t *testing.T) {
	guest := []CartLine{line("4", 1), line("2", 5)}

	assert.Equal(t, guest, MergeCarts(nil, guest))
	assert.Empty(t, MergeCarts(nil, nil))
}

func TestMergeCarts_UserLinesComeFirst(t *testing.T) {
	user := []CartLine{line("9", 1), line("3", 1)}
	guest := []CartLine{line("1", 1), line("3", 2), line("8", 1)}

	merged := MergeCarts(user, guest)

	assert.Equal(t, []string{"9", "3", "1", "8"}, ids(merged))
	assert.Equal(t, 3, merged[1].Quantity)
}

func TestMergeCarts_DoesNotMutateInputs(t *testing.T) {
	user := []CartLine{line("1", 2)}
	guest := []CartLine{line("1", 1), line("2", 3)}

	_ = MergeCarts(user, guest)

	assert.Equal(t, 2, user[0].Quantity)
	assert.Len(t, user, 1)
	assert.Equal(t, 1, guest[0].Quantity)
	assert.Len(t, guest, 2)
}

func TestMergeCarts_KeepsUniqueIDs(t *testing.T) {
	user := []CartLine{line("a", 1), line("b", 1), line("c", 1)}
	guest := []CartLine{line("c", 1), line("d", 1), line("a", 1)}

	seen := map[string]bool{}
	for _, l := range MergeCarts(user, guest) {
		assert.False(t, seen[l.ID], "duplicate id %s", l.ID)
		seen[l.ID] = true
	}
	assert.Len(t, seen, 4)
}

func TestCart_AddLine(t *testing.T) {
	cart := NewCart("user1")

	require.NoError(t, cart.AddLine(line("1", 1)))
	require.NoError(t, cart.AddLine(line("2", 1)))
	require.NoError(t, cart.AddLine(line("1", 2)))

	assert.Equal(t, []string{"1", "2"}, ids(cart.Lines))
	assert.Equal(t, 3, cart.Lines[0].Quantity)
	assert.Equal(t, 4, cart.ItemCount())
	assert.True(t, decimal.NewFromInt(40).Equal(cart.Total()))
}

func TestCart_AddLine_Invalid(t *testing.T) {
	cart := NewCart("user1")

	assert.ErrorIs(t, cart.AddLine(line("1", 0)), ErrInvalidQuantity)
	assert.ErrorIs(t, cart.AddLine(line("", 1)), ErrEmptyProductID)
	assert.Empty(t, cart.Lines)
}

func TestCart_UpdateQuantityAndRemove(t *testing.T) {
	cart := NewCart("user1")
	require.NoError(t, cart.AddLine(line("1", 1)))
	require.NoError(t, cart.AddLine(line("2", 1)))
	require.NoError(t, cart.AddLine(line("3", 1)))

	require.NoError(t, cart.UpdateQuantity("2", 5))
	assert.Equal(t, 5, cart.Lines[1].Quantity)

	require.NoError(t, cart.UpdateQuantity("2", 0))
	assert.Equal(t, []string{"1", "3"}, ids(cart.Lines))

	require.NoError(t, cart.RemoveLine("1"))
	assert.Equal(t, []string{"3"}, ids(cart.Lines))

	assert.ErrorIs(t, cart.RemoveLine("1"), ErrLineNotFound)
	assert.ErrorIs(t, cart.UpdateQuantity("42", 1), ErrLineNotFound)
}

func TestCartLine_JSONShape(t *testing.T) {
	l := CartLine{ID: "3", Name: "Queen Size Bed", Price: decimal.RequireFromString("15"), Image: "fa-bed", Quantity: 2}

	data, err := json.Marshal(l)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"3","name":"Queen Size Bed","price":"15","image":"fa-bed","quantity":2}`, string(data))
}

func ids(lines []CartLine) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.ID)
	}
	return out
}
