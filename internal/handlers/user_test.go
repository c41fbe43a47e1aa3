package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, url string, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	return resp
}

func decodeReply(t *testing.T, resp *http.Response) httpReply {
	t.Helper()
	defer resp.Body.Close()
	var out httpReply
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestRegisterThenLoginFlow(t *testing.T) {
	e := newTestEnv(t)

	resp := postJSON(t, e.ts.URL+"/reg", `{"username":"a","password":"p"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decodeReply(t, resp).Result)

	resp = postJSON(t, e.ts.URL+"/login", `{"username":"a","password":"p"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var ssidCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookieName {
			ssidCookie = c
		}
	}
	require.NotNil(t, ssidCookie, "login must set the SSID cookie")
	assert.Equal(t, "1", ssidCookie.Value, "first session id is 1")
	assert.True(t, decodeReply(t, resp).Result)

	req, err := http.NewRequest(http.MethodGet, e.ts.URL+"/information", nil)
	require.NoError(t, err)
	req.AddCookie(ssidCookie)
	infoResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer infoResp.Body.Close()
	require.Equal(t, http.StatusOK, infoResp.StatusCode)

	var profile map[string]interface{}
	require.NoError(t, json.NewDecoder(infoResp.Body).Decode(&profile))
	assert.Equal(t, "a", profile["username"])
	assert.EqualValues(t, 1000, profile["score"])
	assert.EqualValues(t, 0, profile["total_count"])
	assert.EqualValues(t, 0, profile["win_count"])
	assert.NotContains(t, profile, "password")
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	e := newTestEnv(t)

	resp := postJSON(t, e.ts.URL+"/reg", `{"username":"a","password":"p"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, e.ts.URL+"/reg", `{"username":"a","password":"other"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	out := decodeReply(t, resp)
	assert.False(t, out.Result)
	assert.Equal(t, "username already taken", out.Reason)
}

func TestRegisterValidation(t *testing.T) {
	e := newTestEnv(t)

	resp := postJSON(t, e.ts.URL+"/reg", `{"username":"","password":"p"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, e.ts.URL+"/reg", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(e.ts.URL + "/reg")
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	resp.Body.Close()
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	e := newTestEnv(t)

	resp := postJSON(t, e.ts.URL+"/reg", `{"username":"a","password":"p"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, e.ts.URL+"/login", `{"username":"a","password":"wrong"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.False(t, decodeReply(t, resp).Result)

	resp = postJSON(t, e.ts.URL+"/login", `{"username":"nobody","password":"p"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.False(t, decodeReply(t, resp).Result)

	assert.Empty(t, resp.Cookies())
}

func TestInformationRequiresSession(t *testing.T) {
	e := newTestEnv(t)

	resp, err := http.Get(e.ts.URL + "/information")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	req, err := http.NewRequest(http.MethodGet, e.ts.URL+"/information", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "999"})
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestInformationRefreshesSessionTTL(t *testing.T) {
	e := newTestEnv(t)
	_, ssid := e.loggedInUser(t, "a")

	// shrink the TTL to something a test can outlive, then keep the
	// session alive by polling /information
	e.srv.SessionTTL = 80 * time.Millisecond
	e.srv.Sessions.SetExpire(ssid, e.srv.SessionTTL)

	req, err := http.NewRequest(http.MethodGet, e.ts.URL+"/information", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: strconv.FormatUint(ssid, 10)})

	for i := 0; i < 4; i++ {
		time.Sleep(40 * time.Millisecond)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	_, alive := e.srv.Sessions.Get(ssid)
	assert.True(t, alive, "polled session must not expire")

	time.Sleep(200 * time.Millisecond)
	_, alive = e.srv.Sessions.Get(ssid)
	assert.False(t, alive, "idle session must expire")
}
