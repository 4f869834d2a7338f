package receipt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/wifinet-dashboard/internal/models"
	"github.com/magabrotheeeer/wifinet-dashboard/internal/storage"
)

var biller = Biller{CompanyName: "WiFiNet", CompanyAddress: "123 Internet Lane, Web City", CurrencySymbol: "₱"}

func strPtr(s string) *string { return &s }

func snapshot() models.Snapshot {
	return models.Snapshot{
		Subscribers: []models.Subscriber{
			{ID: "u1", Name: "Ana <Cruz>", Email: "ana@example.com", PlanID: strPtr("p1"), Status: models.StatusActive},
			{ID: "u2", Name: "Ben", Email: "ben@example.com", PlanID: strPtr("gone"), Status: models.StatusActive},
		},
		Plans: []models.Plan{{ID: "p1", Name: "Basic", Speed: 25, Price: 999}},
		Payments: []models.Payment{
			{ID: "pay1", UserID: "u1", Amount: 1999, Date: models.NewDate(2024, 6, 14), Method: models.MethodEWallet},
			{ID: "pay2", UserID: "u2", Amount: 500, Date: models.NewDate(2024, 6, 1), Method: models.MethodCash},
			{ID: "pay3", UserID: "ghost", Amount: 10, Date: models.NewDate(2024, 5, 1), Method: models.MethodCash},
		},
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name      string
		paymentID string
		wantItem  string
		wantTo    string
	}{
		{"known plan", "pay1", "Basic (25Mbps)", "Ana <Cruz>"},
		{"dangling plan", "pay2", DefaultItem, "Ben"},
		{"unknown subscriber", "pay3", DefaultItem, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, err := Build(snapshot(), tc.paymentID, biller)
			require.NoError(t, err)
			assert.Equal(t, tc.paymentID, r.Number)
			assert.Equal(t, tc.wantItem, r.Item)
			assert.Equal(t, tc.wantTo, r.BilledTo)
		})
	}
}

func TestBuild_NotFound(t *testing.T) {
	_, err := Build(snapshot(), "missing", biller)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRender(t *testing.T) {
	r, err := Build(snapshot(), "pay1", biller)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, r))
	html := buf.String()

	assert.Contains(t, html, `onload="window.focus(); window.print()"`)
	assert.Contains(t, html, "<h1>WiFiNet</h1>")
	assert.Contains(t, html, "123 Internet Lane, Web City")
	assert.Contains(t, html, "<b>Receipt #:</b> pay1")
	assert.Contains(t, html, "<b>Date:</b> 2024-06-14")
	assert.Contains(t, html, "Ana &lt;Cruz&gt;")
	assert.Contains(t, html, "Basic (25Mbps)")
	assert.Contains(t, html, "₱1,999")
	assert.Contains(t, html, "<span>GCash</span>")
}
