package midtrans

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/smallbiznis/charity/internal/gateway/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testServerKey = "SB-Mid-server-test"

func notificationBody(signature string) []byte {
	return []byte(fmt.Sprintf(`{
		"transaction_time": "2026-10-14 10:00:00",
		"transaction_status": "settlement",
		"transaction_id": "f1d3a0b0-1111-2222-3333-444455556666",
		"status_message": "midtrans payment notification",
		"status_code": "200",
		"signature_key": %q,
		"payment_type": "bank_transfer",
		"order_id": "DONATION-7-1700000000000",
		"gross_amount": "200000.00",
		"fraud_status": "accept",
		"currency": "IDR",
		"va_numbers": [{"bank": "bca", "va_number": "12345678901"}]
	}`, signature))
}

func TestParseNotification(t *testing.T) {
	n, err := ParseNotification(notificationBody("abc"))
	require.NoError(t, err)

	assert.Equal(t, "DONATION-7-1700000000000", n.OrderID)
	assert.Equal(t, "settlement", n.TransactionStatus)
	assert.Equal(t, "accept", n.FraudStatus)
	assert.Equal(t, "200000.00", n.GrossAmount)
	assert.Equal(t, "bca", n.Bank)
	require.Len(t, n.VANumbers, 1)
	assert.Equal(t, "12345678901", n.VANumbers[0].VANumber)
	require.NotNil(t, n.TransactionTime)
	assert.Equal(t, time.Date(2026, 10, 14, 3, 0, 0, 0, time.UTC), *n.TransactionTime)
}

func TestParseNotificationRejectsMalformedJSON(t *testing.T) {
	_, err := ParseNotification([]byte(`{"order_id":`))
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestParseNotificationPermataVA(t *testing.T) {
	n, err := ParseNotification([]byte(`{"order_id":"DONATION-1-1","transaction_status":"pending","permata_va_number":"8562000"}`))
	require.NoError(t, err)
	assert.Equal(t, "permata", n.Bank)
	assert.Equal(t, "8562000", n.VANumbers[0].VANumber)
}

func TestVerifyNotification(t *testing.T) {
	gw := New(Config{ServerKey: testServerKey})
	valid := Signature("DONATION-7-1700000000000", "200", "200000.00", testServerKey)

	n, err := gw.ParseNotification(context.Background(), notificationBody(valid), nil)
	require.NoError(t, err)
	assert.Equal(t, Provider, n.Provider)
	assert.NoError(t, gw.VerifyNotification(context.Background(), n))

	forged, err := gw.ParseNotification(context.Background(), notificationBody(Signature("DONATION-7-1700000000000", "200", "200000.00", "wrong")), nil)
	require.NoError(t, err)
	assert.ErrorIs(t, gw.VerifyNotification(context.Background(), forged), domain.ErrInvalidSignature)

	unsigned, err := gw.ParseNotification(context.Background(), notificationBody(""), nil)
	require.NoError(t, err)
	assert.ErrorIs(t, gw.VerifyNotification(context.Background(), unsigned), domain.ErrInvalidSignature)
}

func TestSignatureIsHexSHA512(t *testing.T) {
	sig := Signature("order", "200", "10000.00", "key")
	assert.Len(t, sig, 128)
	assert.Equal(t, sig, Signature("order", "200", "10000.00", "key"))
	assert.NotEqual(t, sig, Signature("order", "201", "10000.00", "key"))
}

func TestParseNotificationGrossAmountForms(t *testing.T) {
	cases := []struct {
		name   string
		amount string
		want   string
	}{
		{name: "decimal string", amount: `"200000.00"`, want: "200000.00"},
		{name: "integer number", amount: `200000`, want: "200000"},
		{name: "decimal number", amount: `200000.50`, want: "200000.50"},
		{name: "null", amount: `null`, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := `{"order_id":"DONATION-1","transaction_status":"settlement","status_code":200,"gross_amount":` + tc.amount + `}`
			n, err := ParseNotification([]byte(body))
			require.NoError(t, err)
			assert.Equal(t, tc.want, n.GrossAmount)
			assert.Equal(t, "200", n.StatusCode)
		})
	}

	_, err := ParseNotification([]byte(`{"order_id":"DONATION-1","gross_amount":{"value":1}}`))
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestVerifyNumericGrossAmount(t *testing.T) {
	gw := New(Config{ServerKey: testServerKey})
	sig := Signature("DONATION-1", "200", "200000", testServerKey)
	body := `{"order_id":"DONATION-1","transaction_status":"settlement","status_code":"200","gross_amount":200000,"signature_key":"` + sig + `"}`

	n, err := gw.ParseNotification(context.Background(), []byte(body), nil)
	require.NoError(t, err)
	assert.NoError(t, gw.VerifyNotification(context.Background(), n))
}
