package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/mcdev12/cueroom/go/internal/gateway"
	"github.com/mcdev12/cueroom/go/internal/timer"
)

// NewRouter assembles the full HTTP surface: the JSON API, the WebSocket
// viewer endpoint, and health.
func NewRouter(h *Handler, ws *gateway.WebSocketHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	// WS endpoint: no timeout middleware, connections are long-lived.
	r.Get("/ws/rooms/{roomID}", ws.HandleRoomConnection)
	r.Get("/ws/stats", ws.HandleConnectionStats)

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(chimw.Timeout(30 * time.Second))

		v1.Route("/playback", func(pb chi.Router) {
			pb.Get("/status/{roomID}", h.GetPlaybackStatus)
			pb.Put("/status/{roomID}", h.PutPlaybackStatus)
			pb.Delete("/status/{roomID}", h.DeletePlaybackStatus)
			pb.Post("/event/{roomID}", h.PostPlaybackEvent)
			pb.Put("/data/{roomID}/{key}", h.PutRoomData)
			pb.Get("/data/{roomID}/{key}", h.GetRoomData)
			pb.Get("/keys/{roomID}", h.GetRoomKeys)
		})

		v1.Route("/rooms", func(rm chi.Router) {
			rm.Post("/", h.CreateRoom)
			rm.Get("/", h.ListRooms)
			rm.Route("/{roomID}", func(rr chi.Router) {
				rr.Get("/", h.GetRoom)
				rr.Patch("/", h.UpdateRoom)
				rr.Delete("/", h.DeleteRoom)
				rr.Delete("/db", h.EraseRoom)
				rr.Get("/timers", h.ListRoomTimers)
				rr.Get("/displays", h.ListRoomDisplays)
			})
		})

		v1.Route("/timers", func(tm chi.Router) {
			tm.Post("/", h.CreateTimer)
			tm.Get("/share/{shareUUID}", h.GetTimerByShare)
			tm.Route("/{timerID}", func(tr chi.Router) {
				tr.Get("/", h.GetTimer)
				tr.Patch("/", h.UpdateTimer)
				tr.Delete("/", h.DeleteTimer)
				tr.Delete("/db", h.EraseTimer)
				tr.Post("/start", h.TimerTransition(timer.TransitionStart))
				tr.Post("/pause", h.TimerTransition(timer.TransitionPause))
				tr.Post("/resume", h.TimerTransition(timer.TransitionResume))
				tr.Post("/stop", h.TimerTransition(timer.TransitionStop))
				tr.Post("/adjust", h.TimerTransition(timer.TransitionAdjust))
			})
		})

		v1.Route("/displays", func(d chi.Router) {
			d.Post("/", h.CreateDisplay)
			d.Route("/{displayID}", func(dr chi.Router) {
				dr.Get("/", h.GetDisplay)
				dr.Patch("/", h.UpdateDisplay)
				dr.Delete("/", h.DeleteDisplay)
			})
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", ownerHeader},
		AllowCredentials: false,
		MaxAge:           86400,
	})
	return c.Handler(r)
}
