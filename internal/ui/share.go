package ui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"github.com/hashicorp/mdns"

	"LocalPaint/internal/config"
	"LocalPaint/internal/logger"
	pnet "LocalPaint/internal/net"
	"LocalPaint/internal/state"
)

var errAlreadySharing = errors.New("already in a shared session")

// Share runs the optional live session: either hosting the canvas for
// others or following someone else's.
type Share struct {
	ctrl *Controller
	cfg  config.Share
	log  logger.Logger

	hub  *pnet.Hub
	zone *mdns.Server

	mu     sync.Mutex
	client *pnet.Client

	// OnStatus is called on the UI goroutine.
	OnStatus func(string)
}

func NewShare(ctrl *Controller, cfg config.Share, log logger.Logger) *Share {
	return &Share{ctrl: ctrl, cfg: cfg, log: log}
}

func (s *Share) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hub != nil || s.client != nil
}

// Host starts serving the canvas and returns the link to hand out.
func (s *Share) Host() (string, error) {
	if s.Active() {
		return "", errAlreadySharing
	}
	hub := pnet.NewHub(s.log)
	hub.OnOp = func(op state.Op) {
		fyne.Do(func() { s.ctrl.ApplyRemote(op) })
	}
	hub.Snapshot = func() (op state.Op, ok bool) {
		fyne.DoAndWait(func() { op, ok = s.ctrl.SnapshotOp() })
		return op, ok
	}
	if _, err := hub.Start(fmt.Sprintf(":%d", s.cfg.Port)); err != nil {
		return "", err
	}
	s.hub = hub
	s.ctrl.SetPublisher(hub)

	if s.cfg.Advertise {
		zone, err := pnet.Advertise(s.cfg.Service, s.cfg.Port)
		if err != nil {
			s.log.Warning("share", "mdns advertise failed", map[string]interface{}{"error": err.Error()})
		} else {
			s.zone = zone
		}
	}

	ip, err := pnet.GetOutgoingIP()
	if err != nil {
		ip = "127.0.0.1"
	}
	return pnet.ShareLink(ip, s.cfg.Port), nil
}

// Discover lists hosts advertising on the local network. It blocks for the
// configured timeout and must not run on the UI goroutine.
func (s *Share) Discover() ([]pnet.Host, error) {
	return pnet.Browse(s.cfg.Service, s.cfg.DiscoverTimeout.Duration)
}

// Join connects to a host. Drawing done here is sent to the host and
// everything the host relays is painted locally.
func (s *Share) Join(ctx context.Context, link string) error {
	if s.Active() {
		return errAlreadySharing
	}
	addr, err := pnet.ParseLink(link)
	if err != nil {
		return err
	}
	client, err := pnet.Dial(ctx, pnet.WebSocketURL(addr), func(op state.Op) {
		fyne.Do(func() { s.ctrl.ApplyRemote(op) })
	}, s.log)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.client = client
	s.mu.Unlock()
	s.ctrl.SetPublisher(client)

	go func() {
		<-client.Done()
		fyne.Do(func() {
			s.mu.Lock()
			current := s.client == client
			if current {
				s.client = nil
			}
			s.mu.Unlock()
			if !current {
				return
			}
			s.ctrl.SetPublisher(nil)
			s.status(fmt.Sprintf("Disconnected from host: %v", client.Err()))
		})
	}()
	return nil
}

// Stop leaves or closes the session.
func (s *Share) Stop() {
	s.ctrl.SetPublisher(nil)
	s.mu.Lock()
	client := s.client
	s.client = nil
	s.mu.Unlock()
	if client != nil {
		_ = client.Close()
	}
	if s.zone != nil {
		_ = s.zone.Shutdown()
		s.zone = nil
	}
	if s.hub != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.hub.Close(ctx); err != nil {
			s.log.Warning("share", "share server shutdown", map[string]interface{}{"error": err.Error()})
		}
		s.hub = nil
	}
}

func (s *Share) status(text string) {
	if s.OnStatus != nil {
		s.OnStatus(text)
	}
}
