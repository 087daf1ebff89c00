package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in      string
		want    Money
		wantErr bool
	}{
		{in: "100", want: 10000},
		{in: "100.5", want: 10050},
		{in: "100.50", want: 10050},
		{in: "0.01", want: 1},
		{in: " 7.25 ", want: 725},
		{in: "-1.00", want: -100},
		{in: "1.005", wantErr: true},
		{in: "", wantErr: true},
		{in: ".50", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "1e2", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMoney(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidMoney)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "200.00", Money(20000).String())
	assert.Equal(t, "0.05", Money(5).String())
	assert.Equal(t, "-3.10", Money(-310).String())
}

func TestMoney_JSON(t *testing.T) {
	var req AddTicketTypeRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"VIP","price":100.5,"quantity":2}`), &req))
	assert.Equal(t, Money(10050), req.Price)

	require.NoError(t, json.Unmarshal([]byte(`{"name":"VIP","price":"12.00","quantity":2}`), &req))
	assert.Equal(t, Money(1200), req.Price)

	require.Error(t, json.Unmarshal([]byte(`{"price":"12.001"}`), &req))

	out, err := json.Marshal(TicketType{ID: 1, Name: "VIP", Price: 10000})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"price":"100.00"`)
}

func TestRegistration_SummaryAndTotal(t *testing.T) {
	reg := Registration{
		Tickets: []PurchasedTicket{
			{TicketID: 9, TypeName: "General", Quantity: 1, UnitPrice: 2500},
			{TicketID: 3, TypeName: "VIP", Quantity: 2, UnitPrice: 10000},
		},
	}
	assert.Equal(t, "2x VIP, 1x General", reg.Summary())
	assert.Equal(t, Money(22500), reg.Total())
	assert.Equal(t, int64(9), reg.Tickets[0].TicketID, "summary must not reorder the registration")
}

func TestRegistration_AttendeeTickets(t *testing.T) {
	reg := Registration{
		Attendee: Attendee{ID: 11},
		Tickets: []PurchasedTicket{
			{TicketID: 9, TypeName: "General", Quantity: 1, UnitPrice: 2500},
			{TicketID: 3, TypeName: "VIP", Quantity: 2, UnitPrice: 10000},
		},
	}
	assert.Equal(t, []AttendeeTicket{
		{AttendeeID: 11, TicketID: 9, Quantity: 1},
		{AttendeeID: 11, TicketID: 3, Quantity: 2},
	}, reg.AttendeeTickets())
}

func TestMaxPrice_FitsNumericColumn(t *testing.T) {
	assert.Equal(t, "99999999.99", MaxPrice.String())
}
