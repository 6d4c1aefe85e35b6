package telegram

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-dashboard/internal/entity"
)

func TestFormatWatchlistAlert(t *testing.T) {
	at := time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)
	quote := entity.Quote{ID: "bitcoin", Kind: entity.AssetKindCrypto, Name: "Bitcoin", Ticker: "btc", Price: 63581.12, ChangePercent: -6.25}

	msg := FormatWatchlistAlert(AlertTypeForChange(quote.ChangePercent), quote, 5, at)
	assert.Contains(t, msg, "[BTC] Price Drop")
	assert.Contains(t, msg, "$63581.12")
	assert.Contains(t, msg, "-6.25%")
	assert.Contains(t, msg, "threshold 5.00%")
	assert.Contains(t, msg, "04 May 2026 10:30 UTC")

	quote.ChangePercent = 7
	msg = FormatWatchlistAlert(AlertTypeForChange(quote.ChangePercent), quote, 5, at)
	assert.Contains(t, msg, "Price Surge")
	assert.Contains(t, msg, "+7.00%")
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$1.00", formatPrice(1))
	assert.Equal(t, "$0.1500", formatPrice(0.15))
	assert.Equal(t, "$0.00001234", formatPrice(0.00001234))
}

func TestFormatErrorAlertMessage(t *testing.T) {
	msg := FormatErrorAlertMessage(time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC), "refresh_stocks", "boom")
	assert.True(t, strings.HasPrefix(msg, "📛 [ERROR ALERT]"))
	assert.Contains(t, msg, "refresh\\_stocks")
	assert.Contains(t, msg, "boom")
}

func TestClient_SendMessage(t *testing.T) {
	var (
		mu   sync.Mutex
		sent []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"dash","username":"dash_bot"}}`)
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			assert.NoError(t, r.ParseForm())
			mu.Lock()
			sent = append(sent, r.PostForm.Get("chat_id")+"|"+r.PostForm.Get("parse_mode")+"|"+r.PostForm.Get("text"))
			mu.Unlock()
			fmt.Fprint(w, `{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`)
		default:
			fmt.Fprint(w, `{"ok":false,"error_code":404,"description":"Not Found"}`)
		}
	}))
	defer srv.Close()

	n, err := NewClientWithEndpoint("token", srv.URL+"/bot%s/%s", 42, srv.Client())
	require.NoError(t, err)
	require.NoError(t, n.SendMessage("hello"))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, sent, 1)
	assert.Equal(t, "42|Markdown|hello", sent[0])
}

func TestNewClient_EmptyToken(t *testing.T) {
	_, err := NewClient("", 1)
	require.Error(t, err)
}
