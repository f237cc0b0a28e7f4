package scroll

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"DENAC/internal/services"
)

const writeTimeout = 2 * time.Second

// Handler upgrades to a websocket and streams frame and panel updates for
// the client's scroll position.
func Handler(svc *services.Services, lg *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// The server's read and write timeouts must not cut long-lived sessions.
		rc := http.NewResponseController(w)
		_ = rc.SetReadDeadline(time.Time{})
		_ = rc.SetWriteDeadline(time.Time{})

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			lg.Warn("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		id := uuid.NewString()
		log := lg.With("session", id)
		log.Debug("scroll session opened")

		g, ctx := errgroup.WithContext(r.Context())
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		sess := NewSession(id, svc.Mapper, svc.Sequencer, svc.RefreshRate, func(u Update) {
			wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
			defer wcancel()
			if err := wsjson.Write(wctx, conn, u); err != nil {
				log.Debug("scroll write failed", "error", err)
				cancel()
			}
		})
		defer sess.Close()
		sess.Prime()

		g.Go(func() error {
			return sess.Run(ctx)
		})
		g.Go(func() error {
			defer cancel()
			for {
				var msg Message
				if err := wsjson.Read(ctx, conn, &msg); err != nil {
					return err
				}
				if err := sess.Apply(msg); err != nil {
					log.Debug("ignoring scroll message", "error", err)
				}
			}
		})

		err = g.Wait()
		status := websocket.CloseStatus(err)
		if status == -1 && !errors.Is(err, context.Canceled) {
			log.Debug("scroll session ended", "error", err)
		}
		conn.Close(websocket.StatusNormalClosure, "")
	}
}
