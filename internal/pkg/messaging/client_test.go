package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SendTemplate(t *testing.T) {
	t.Parallel()

	// Arrange
	var got *http.Request
	var form map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		assert.NoError(t, r.ParseForm())
		form = map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM123"}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{BaseURL: srv.URL + "/", AccountID: "AC1", AuthToken: "tok", Sender: "+15550001"})

	// Act
	sid, err := c.SendTemplate(context.Background(), TemplateMessage{
		To:         "+966501234567",
		TemplateID: "HX-salary",
		Variables:  map[string]string{"period": "يونيو/2024", "net": "9,800.00"},
		MediaURL:   "https://files.example/p.pdf",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "SM123", sid)
	assert.Equal(t, "/Accounts/AC1/Messages.json", got.URL.Path)
	user, pass, ok := got.BasicAuth()
	assert.True(t, ok)
	assert.Equal(t, "AC1", user)
	assert.Equal(t, "tok", pass)
	assert.Equal(t, "whatsapp:+966501234567", form["To"])
	assert.Equal(t, "whatsapp:+15550001", form["From"])
	assert.Equal(t, "HX-salary", form["ContentSid"])
	assert.Equal(t, "https://files.example/p.pdf", form["MediaUrl"])

	var vars map[string]string
	require.NoError(t, json.Unmarshal([]byte(form["ContentVariables"]), &vars))
	assert.Equal(t, "9,800.00", vars["net"])
}

func TestClient_SendTemplate_StatusError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"invalid To"}`))
	}))
	t.Cleanup(srv.Close)
	c := NewClient(Config{BaseURL: srv.URL, AccountID: "AC1", AuthToken: "tok", Sender: "+1"})

	_, err := c.SendTemplate(context.Background(), TemplateMessage{To: "+1", TemplateID: "HX"})

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.Status)
	assert.Contains(t, se.Body, "invalid To")
}

func TestClient_SendTemplate_Timeout(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	c := NewClient(Config{BaseURL: srv.URL, AccountID: "AC1", AuthToken: "tok", Sender: "+1", Timeout: 50 * time.Millisecond})

	_, err := c.SendTemplate(context.Background(), TemplateMessage{To: "+1", TemplateID: "HX"})

	require.Error(t, err)
	var se *StatusError
	assert.False(t, errors.As(err, &se))
}

func TestClient_Enabled(t *testing.T) {
	t.Parallel()
	assert.False(t, NewClient(Config{}).Enabled())
	assert.False(t, NewClient(Config{BaseURL: "http://x", AccountID: "a", AuthToken: "t"}).Enabled())
	assert.True(t, NewClient(Config{BaseURL: "http://x", AccountID: "a", AuthToken: "t", Sender: "s"}).Enabled())
	assert.Equal(t, defaultTimeout, NewClient(Config{}).cfg.Timeout)
}
