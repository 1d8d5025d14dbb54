package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"admissions/backend/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWeChatServer(t *testing.T, handler http.HandlerFunc) *WeChatClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWeChatClient(srv.URL+"/", "app", "shh", srv.Client())
}

func TestWeChatExchangeReturnsOpenID(t *testing.T) {
	client := newWeChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sns/jscode2session", r.URL.Path)
		assert.Equal(t, "app", r.URL.Query().Get("appid"))
		assert.Equal(t, "shh", r.URL.Query().Get("secret"))
		assert.Equal(t, "code-1", r.URL.Query().Get("js_code"))
		assert.Equal(t, "authorization_code", r.URL.Query().Get("grant_type"))
		_, _ = w.Write([]byte(`{"session_key":"k","openid":"oSNkC5ag6hpZ"}`))
	})

	openID, err := client.Exchange(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Equal(t, "oSNkC5ag6hpZ", openID)
}

func TestWeChatExchangeRejectsInvalidCode(t *testing.T) {
	client := newWeChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errcode":40029,"errmsg":"invalid code"}`))
	})

	_, err := client.Exchange(context.Background(), "bad")
	require.ErrorIs(t, err, ErrInvalidCode)
	assert.Contains(t, err.Error(), "40029")
}

func TestWeChatExchangeUnavailable(t *testing.T) {
	client := newWeChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Exchange(context.Background(), "code")
	require.ErrorIs(t, err, ErrUnavailable)

	client = newWeChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})
	_, err = client.Exchange(context.Background(), "code")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestWeChatExchangeEmptyCode(t *testing.T) {
	client := NewWeChatClient("http://127.0.0.1:0", "app", "shh", nil)
	_, err := client.Exchange(context.Background(), "  ")
	require.ErrorIs(t, err, ErrInvalidCode)
}

func TestStatic(t *testing.T) {
	id, err := Static{}.Exchange(context.Background(), " candidate-7 ")
	require.NoError(t, err)
	assert.Equal(t, "candidate-7", id)

	_, err = Static{}.Exchange(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidCode)
}

func TestNew(t *testing.T) {
	_, err := New(&config.Config{IdentityProvider: "wechat"})
	require.Error(t, err)

	ex, err := New(&config.Config{IdentityProvider: "static"})
	require.NoError(t, err)
	assert.IsType(t, Static{}, ex)

	ex, err = New(&config.Config{IdentityProvider: "wechat", WeChatAppID: "a", WeChatSecret: "b", WeChatBaseURL: "https://api.weixin.qq.com"})
	require.NoError(t, err)
	assert.IsType(t, &WeChatClient{}, ex)

	_, err = New(&config.Config{IdentityProvider: "ldap"})
	require.Error(t, err)
}
