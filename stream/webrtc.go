package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
	"gopkg.in/hraban/opus.v2"
)

const (
	opusBitrate   = 128000
	maxOpusPacket = 4000
	maxOfferSize  = 64 * 1024
)

// ErrSampleRate is returned for sample rates Opus cannot encode.
var ErrSampleRate = errors.New("opus needs a sample rate of 8, 12, 16, 24 or 48kHz")

var errBadOffer = errors.New("bad offer")

func opusRate(sampleRate int) bool {
	switch sampleRate {
	case 8000, 12000, 16000, 24000, 48000:
		return true
	}
	return false
}

// WebRTCHandler answers SDP offers posted over HTTP and streams the
// broadcast to each peer as Opus.
type WebRTCHandler struct {
	broadcaster *Broadcaster
	sampleRate  int
	log         *slog.Logger

	mu    sync.Mutex
	peers map[*peer]struct{}
}

// NewWebRTCHandler streams frames from b, which carry audio at sampleRate.
func NewWebRTCHandler(b *Broadcaster, sampleRate int, log *slog.Logger) (*WebRTCHandler, error) {
	if !opusRate(sampleRate) {
		return nil, fmt.Errorf("%w: got %d", ErrSampleRate, sampleRate)
	}
	return &WebRTCHandler{broadcaster: b, sampleRate: sampleRate, log: log, peers: map[*peer]struct{}{}}, nil
}

func (h *WebRTCHandler) PeerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.peers)
}

func (h *WebRTCHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	switch r.Method {
	case http.MethodOptions:
		w.Header().Set("Access-Control-Allow-Methods", "POST")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var offer webrtc.SessionDescription
	err := json.NewDecoder(io.LimitReader(r.Body, maxOfferSize)).Decode(&offer)
	if err != nil || offer.Type != webrtc.SDPTypeOffer || offer.SDP == "" {
		http.Error(w, "invalid SDP offer", http.StatusBadRequest)
		return
	}

	p, err := h.newPeer()
	if err != nil {
		h.log.Error("webrtc peer", slog.Any("error", err))
		http.Error(w, "create peer failed", http.StatusInternalServerError)
		return
	}
	answer, err := p.answer(r.Context(), offer)
	if err != nil {
		p.close()
		switch {
		case errors.Is(err, errBadOffer):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case r.Context().Err() != nil:
		default:
			h.log.Error("webrtc answer", slog.Any("error", err))
			http.Error(w, "negotiation failed", http.StatusInternalServerError)
		}
		return
	}

	h.mu.Lock()
	h.peers[p] = struct{}{}
	n := len(h.peers)
	h.mu.Unlock()
	h.log.Info("webrtc peer connected", slog.Int("peers", n))

	p.pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		switch s {
		case webrtc.PeerConnectionStateFailed, webrtc.PeerConnectionStateClosed, webrtc.PeerConnectionStateDisconnected:
			h.remove(p)
		}
	})
	go h.stream(p)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(answer)
}

// peer is one listening browser.
type peer struct {
	pc    *webrtc.PeerConnection
	track *webrtc.TrackLocalStaticSample
	enc   *opus.Encoder
	once  sync.Once
	done  chan struct{}
}

func (h *WebRTCHandler) newPeer() (*peer, error) {
	enc, err := opus.NewEncoder(h.sampleRate, Channels, opus.AppAudio)
	if err != nil {
		return nil, fmt.Errorf("opus encoder: %w", err)
	}
	if err := enc.SetBitrate(opusBitrate); err != nil {
		return nil, fmt.Errorf("opus bitrate: %w", err)
	}
	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		return nil, fmt.Errorf("peer connection: %w", err)
	}
	track, err := webrtc.NewTrackLocalStaticSample(webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus}, "audio", "ambient")
	if err == nil {
		_, err = pc.AddTrack(track)
	}
	if err != nil {
		pc.Close()
		return nil, fmt.Errorf("audio track: %w", err)
	}
	return &peer{pc: pc, track: track, enc: enc, done: make(chan struct{})}, nil
}

// answer completes negotiation, waiting for ICE gathering so the answer
// carries every candidate.
func (p *peer) answer(ctx context.Context, offer webrtc.SessionDescription) (*webrtc.SessionDescription, error) {
	if err := p.pc.SetRemoteDescription(offer); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadOffer, err)
	}
	answer, err := p.pc.CreateAnswer(nil)
	if err != nil {
		return nil, fmt.Errorf("create answer: %w", err)
	}
	gathered := webrtc.GatheringCompletePromise(p.pc)
	if err := p.pc.SetLocalDescription(answer); err != nil {
		return nil, fmt.Errorf("set local description: %w", err)
	}
	select {
	case <-gathered:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return p.pc.LocalDescription(), nil
}

func (p *peer) close() {
	p.once.Do(func() {
		close(p.done)
		p.pc.Close()
	})
}

// remove forgets p and closes it.
func (h *WebRTCHandler) remove(p *peer) {
	h.mu.Lock()
	_, ok := h.peers[p]
	delete(h.peers, p)
	n := len(h.peers)
	h.mu.Unlock()
	p.close()
	if ok {
		h.log.Info("webrtc peer disconnected", slog.Int("peers", n))
	}
}

// stream encodes each broadcast frame, 20ms of interleaved stereo, as one
// Opus packet.
func (h *WebRTCHandler) stream(p *peer) {
	l := h.broadcaster.Subscribe()
	defer func() {
		h.broadcaster.Unsubscribe(l)
		h.log.Debug("webrtc stream ended", slog.Uint64("frames_dropped", l.Dropped()))
	}()

	packet := make([]byte, maxOpusPacket)
	for {
		select {
		case <-p.done:
			return
		case frame := <-l.C:
			n, err := p.enc.Encode(frame, packet)
			if err != nil {
				h.log.Warn("opus encode", slog.Any("error", err))
				continue
			}
			if err := p.track.WriteSample(media.Sample{Data: packet[:n], Duration: FrameDuration}); err != nil {
				h.remove(p)
				return
			}
		}
	}
}
