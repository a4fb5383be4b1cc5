package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/unicampus/internal/client/advisor"
	"github.com/dmitrijs2005/unicampus/internal/client/feed"
	"github.com/dmitrijs2005/unicampus/internal/client/models"
	"github.com/dmitrijs2005/unicampus/internal/client/services"
	"github.com/dmitrijs2005/unicampus/internal/client/session"
	"github.com/dmitrijs2005/unicampus/internal/common"
	"github.com/dmitrijs2005/unicampus/internal/logging"
)

// Server wires the services to HTTP handlers.
type Server struct {
	accounts services.AccountService
	profiles services.ProfileService
	hearted  services.HeartedService
	board    *services.Board
	courses  services.CourseService
	composer *feed.Composer
	swiper   *feed.Swiper
	advisor  *advisor.Advisor
	metrics  *Metrics
	logger   logging.Logger

	stopBoardGauge func()
}

// Deps are the collaborators of a Server. Board must be started by the
// caller so the feed sees requests written by other sessions.
type Deps struct {
	Accounts services.AccountService
	Profiles services.ProfileService
	Hearted  services.HeartedService
	Board    *services.Board
	Courses  services.CourseService
	Advisor  *advisor.Advisor
	Metrics  *Metrics
	Logger   logging.Logger
}

func NewServer(d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	m := d.Metrics
	if m == nil {
		m = NewMetrics("unicampus")
	}
	adv := d.Advisor
	if adv == nil {
		adv = advisor.New(nil, advisor.DefaultBreakerConfig(), logger)
	}

	s := &Server{
		accounts: d.Accounts,
		profiles: d.Profiles,
		hearted:  d.Hearted,
		board:    d.Board,
		courses:  d.Courses,
		composer: feed.NewComposer(d.Board),
		swiper:   feed.NewSwiper(d.Hearted, d.Board),
		advisor:  adv,
		metrics:  m,
		logger:   logger.With("module", "httpapi"),
	}

	m.BoardRequests.Set(float64(len(d.Board.Requests())))
	s.stopBoardGauge = d.Board.OnChange(func(reqs []models.CollabRequest) {
		m.BoardRequests.Set(float64(len(reqs)))
	})
	return s
}

// Close detaches the server from the board.
func (s *Server) Close() {
	if s.stopBoardGauge != nil {
		s.stopBoardGauge()
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.metrics.instrument)
	r.Use(s.requestLogger)

	r.Get("/health", s.health)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", s.listAccounts)
			r.Post("/", s.createAccount)
			r.Put("/active", s.switchAccount)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.withSession)

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", s.getProfile)
				r.Patch("/", s.patchProfile)
				r.Post("/onboarding", s.completeOnboarding)
				r.Put("/avatar", s.putAvatar)
			})

			r.Route("/hearted", func(r chi.Router) {
				r.Get("/", s.listHearted)
				r.Post("/", s.heart)
				r.Delete("/{id}", s.unheart)
			})

			r.Route("/board", func(r chi.Router) {
				r.Get("/", s.getBoard)
				r.Post("/", s.createRequest)
				r.Post("/{id}/interest", s.toggleInterest)
				r.Delete("/{id}", s.deleteRequest)
			})

			r.Get("/courses", s.listCourses)
			r.Route("/courses/{course}", func(r chi.Router) {
				r.Put("/membership", s.joinCourse)
				r.Delete("/membership", s.leaveCourse)
				r.Get("/chat", s.getCourseChat)
				r.Post("/chat", s.postCourseMessage)
				r.Get("/groups", s.getCourseGroups)
				r.Post("/groups", s.postCourseGroup)
				r.Post("/groups/{id}/interest", s.bumpCourseGroup)
				r.Get("/deck", s.getCourseDeck)
				r.Post("/swipes", s.swipeClassmate)
				r.Delete("/swipes", s.resetCourseSwipes)
				r.Get("/matches", s.getCourseMatches)
				r.Get("/dm/{other}", s.getCourseThread)
				r.Post("/dm/{other}", s.sendCourseDM)
			})

			r.Get("/feed", s.getFeed)
			r.Post("/feed/swipe", s.swipe)
			r.Get("/calendar", s.getCalendar)

			r.Route("/advisor", func(r chi.Router) {
				r.Get("/recommendations", s.recommendations)
				r.Get("/icebreakers", s.icebreakers)
				r.Get("/match-reason", s.matchReason)
			})
		})
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", chimiddleware.GetReqID(r.Context()),
		)
	})
}

// withSession resolves the acting account and stores a session for it in
// the request context.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		sess, err := s.resolveSession(ctx, r.Header.Get(common.AccountHeaderName))
		if err != nil {
			writeError(ctx, w, s.logger, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(session.NewContext(ctx, sess)))
	})
}

func (s *Server) resolveSession(ctx context.Context, id string) (*session.Session, error) {
	if id == "" {
		active, err := s.accounts.Active(ctx)
		if err != nil {
			return nil, err
		}
		id = active.ID
	} else {
		accounts, err := s.accounts.List(ctx)
		if err != nil {
			return nil, err
		}
		if !containsAccount(accounts, id) {
			return nil, common.ErrAccountNotFound
		}
	}

	sess := session.New(id)
	// Sets the onboarded flag.
	if _, _, err := s.profiles.LoadOrInitialize(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func containsAccount(accounts []models.Account, id string) bool {
	for _, a := range accounts {
		if a.ID == id {
			return true
		}
	}
	return false
}

func sessionFrom(ctx context.Context) (*session.Session, error) {
	sess, ok := session.FromContext(ctx)
	if !ok {
		return nil, common.ErrNoSession
	}
	return sess, nil
}
