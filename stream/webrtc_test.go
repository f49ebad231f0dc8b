package stream

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWebRTCHandlerRejects(t *testing.T) {
	h, err := NewWebRTCHandler(NewBroadcaster(NewFramer(48000, 1)), 48000, discard)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range []struct {
		method, body string
		code         int
	}{
		{http.MethodOptions, "", http.StatusOK},
		{http.MethodGet, "", http.StatusMethodNotAllowed},
		{http.MethodPost, "not json", http.StatusBadRequest},
		{http.MethodPost, `{"type":"offer"}`, http.StatusBadRequest},
		{http.MethodPost, `{"type":"answer","sdp":"v=0"}`, http.StatusBadRequest},
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(c.method, "/offer", strings.NewReader(c.body)))
		if rec.Code != c.code {
			t.Errorf("%s %q: code %d, want %d", c.method, c.body, rec.Code, c.code)
		}
	}
	if h.PeerCount() != 0 {
		t.Errorf("PeerCount = %d", h.PeerCount())
	}
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestWebRTCHandlerNeedsOpusRate(t *testing.T) {
	for _, rate := range []int{8000, 12000, 16000, 24000, 48000} {
		if _, err := NewWebRTCHandler(NewBroadcaster(NewFramer(float64(rate), 1)), rate, discard); err != nil {
			t.Errorf("%d: %v", rate, err)
		}
	}
	for _, rate := range []int{22050, 44100, 96000} {
		_, err := NewWebRTCHandler(NewBroadcaster(NewFramer(float64(rate), 1)), rate, discard)
		if !errors.Is(err, ErrSampleRate) {
			t.Errorf("%d: err = %v, want ErrSampleRate", rate, err)
		}
	}
}
