package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/unicampus/internal/client/advisor"
	"github.com/dmitrijs2005/unicampus/internal/client/avatar"
	"github.com/dmitrijs2005/unicampus/internal/client/backup"
	"github.com/dmitrijs2005/unicampus/internal/client/config"
	"github.com/dmitrijs2005/unicampus/internal/client/feed"
	"github.com/dmitrijs2005/unicampus/internal/client/models"
	"github.com/dmitrijs2005/unicampus/internal/client/services"
	"github.com/dmitrijs2005/unicampus/internal/client/session"
	"github.com/dmitrijs2005/unicampus/internal/kv"
	"github.com/dmitrijs2005/unicampus/internal/logging"
	"github.com/dmitrijs2005/unicampus/internal/storage"
)

// Deps are the collaborators an App runs on.
type Deps struct {
	Store   kv.Store
	Advisor *advisor.Advisor
	// Backup is nil when no bucket is configured.
	Backup *backup.Exporter
	Logger logging.Logger
	In     io.Reader
	Out    io.Writer
}

type App struct {
	store    kv.Store
	accounts services.AccountService
	profiles services.ProfileService
	hearted  services.HeartedService
	board    *services.Board
	courses  services.CourseService
	composer *feed.Composer
	swiper   *feed.Swiper
	advisor  *advisor.Advisor
	backup   *backup.Exporter
	logger   logging.Logger

	reader      *bufio.Reader
	out         io.Writer
	interactive bool

	sess     *session.Session
	profile  models.Profile
	cursor   *feed.Cursor
	category string
	sub      string
	course   string
}

// New assembles an App from already opened collaborators.
func New(d Deps) *App {
	if d.Logger == nil {
		d.Logger = logging.Nop()
	}
	if d.In == nil {
		d.In = os.Stdin
	}
	if d.Out == nil {
		d.Out = os.Stdout
	}
	if d.Advisor == nil {
		d.Advisor = advisor.New(nil, advisor.DefaultBreakerConfig(), d.Logger)
	}

	accounts := services.NewAccountService(d.Store, d.Logger)
	hearted := services.NewHeartedService(d.Store, d.Logger)
	board := services.NewBoard(d.Store, d.Logger)

	return &App{
		store:    d.Store,
		accounts: accounts,
		profiles: services.NewProfileService(d.Store, accounts, d.Logger),
		hearted:  hearted,
		board:    board,
		courses:  services.NewCourseService(d.Store, d.Logger),
		composer: feed.NewComposer(board),
		swiper:   feed.NewSwiper(hearted, board),
		advisor:  d.Advisor,
		backup:   d.Backup,
		logger:   d.Logger.With("module", "cli"),
		reader:   bufio.NewReader(d.In),
		out:      d.Out,
		category: feed.CategoryAll,
	}
}

// NewApp opens storage and the optional AI and backup clients described by c.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	store, err := storage.Open(ctx, c.Storage, logger)
	if err != nil {
		logger.Error(ctx, "error opening storage", "error", err)
		return nil, err
	}

	var gen advisor.Generator = advisor.Unavailable{}
	if c.GeminiAPIKey != "" {
		g, err := advisor.NewGenAIGenerator(ctx, c.GeminiAPIKey, c.GeminiModel)
		if err != nil {
			logger.Warn(ctx, "AI advisor disabled", "error", err)
		} else {
			gen = g
		}
	}

	var exporter *backup.Exporter
	if c.BackupEnabled() {
		client, err := backup.NewS3Client(ctx, c.S3)
		if err != nil {
			logger.Warn(ctx, "backup disabled", "error", err)
		} else {
			exporter = backup.NewExporter(store, client, c.S3.Bucket, c.S3.Prefix, logger).WithPassphrase(c.S3.Passphrase)
		}
	}

	app := New(Deps{
		Store:   store,
		Advisor: advisor.New(gen, advisor.DefaultBreakerConfig(), logger),
		Backup:  exporter,
		Logger:  logger,
	})
	app.interactive = isTerminal(int(os.Stdin.Fd()))
	return app, nil
}

// Start initializes the account registry, loads the active profile and
// begins following the board.
func (a *App) Start(ctx context.Context) error {
	sess, err := a.accounts.Initialize(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize accounts: %w", err)
	}
	if err := a.enterSession(ctx, sess); err != nil {
		return err
	}
	if err := a.board.Start(ctx); err != nil {
		return fmt.Errorf("failed to load board: %w", err)
	}
	a.board.OnChange(func(reqs []models.CollabRequest) {
		a.logger.Debug(context.Background(), "board changed", "requests", len(reqs))
	})
	return nil
}

// Run starts the app, onboards a new account if needed and blocks in the
// REPL until the user exits.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	if err := a.Start(ctx); err != nil {
		return err
	}

	a.println("Welcome to unicampus (type 'help' for commands)")
	if !a.sess.Onboarded() {
		if err := a.Onboard(ctx, nil); err != nil {
			printlnFn("Error:", userError(err))
		}
	}

	runREPL(ctx, a.commands(), a.getStatus, a.reader, a.interactive)
	return nil
}

// Close stops board notifications and releases the store.
func (a *App) Close() {
	a.board.Close()
	if err := a.store.Close(); err != nil {
		a.logger.Warn(context.Background(), "store close failed", "error", err)
	}
}

// enterSession replaces all per-account state so nothing leaks between
// accounts.
func (a *App) enterSession(ctx context.Context, sess *session.Session) error {
	p, _, err := a.profiles.LoadOrInitialize(ctx, sess)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	a.sess = sess
	a.profile = p
	a.cursor = nil
	a.category = feed.CategoryAll
	a.sub = ""
	a.course = ""
	return nil
}

func (a *App) getStatus() string {
	if a.sess == nil {
		return ""
	}
	s := a.profile.Name
	if !a.sess.Onboarded() {
		s += " *onboarding*"
	}
	return fmt.Sprintf("(%s)", s)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) print(s string) {
	fmt.Fprint(a.out, s)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) commands() []command {
	return []command{
		{name: "whoami", aliases: []string{"me"}, run: a.WhoAmI},
		{name: "accounts", run: a.ListAccounts},
		{name: "newaccount", run: a.NewAccount},
		{name: "switch", usage: "<account-id>", run: a.Switch},
		{name: "onboard", run: a.Onboard},
		{name: "set", usage: "name|major|bio|gpa <value>", run: a.SetField},
		{name: "interests", usage: "[a, b, ...]", run: a.SetInterests},
		{name: "skill", usage: "add|set <n> <text>|rm <n>", run: a.EditSkills},
		{name: "exp", usage: "add|set <n> <text>|rm <n>", run: a.EditExperience},
		{name: "avatar", usage: "<path>", run: a.Avatar},
		{name: "feed", usage: "[category] [sub]", run: a.Feed},
		{name: "next", aliases: []string{"n", "skip"}, run: a.Next},
		{name: "like", aliases: []string{"y"}, run: a.Like},
		{name: "hearted", run: a.Hearted},
		{name: "unheart", usage: "<item-id>", run: a.Unheart},
		{name: "board", aliases: []string{"l", "list"}, run: a.Board},
		{name: "post", run: a.Post},
		{name: "join", usage: "<request-id>", run: a.Join},
		{name: "delete", usage: "<request-id>", run: a.Delete},
		{name: "courses", usage: "[subject]", run: a.Courses},
		{name: "enroll", usage: "<course>", run: a.Enroll},
		{name: "open", usage: "<course>", run: a.Open},
		{name: "drop", usage: "[course]", run: a.Drop},
		{name: "chat", run: a.Chat},
		{name: "say", usage: "<text>", run: a.Say},
		{name: "groups", run: a.Groups},
		{name: "group", run: a.Group},
		{name: "bump", usage: "<group-id>", run: a.Bump},
		{name: "classmates", aliases: []string{"deck"}, run: a.Classmates},
		{name: "swipe", usage: "like|pass|reset", run: a.Swipe},
		{name: "matches", run: a.Matches},
		{name: "dm", usage: "<classmate-id> [text]", run: a.DM},
		{name: "calendar", aliases: []string{"cal"}, usage: "[yyyy-mm-dd]", run: a.Calendar},
		{name: "recommend", run: a.Recommend},
		{name: "icebreakers", usage: "<scenario>", run: a.Icebreakers},
		{name: "why", run: a.Why},
		{name: "backup", run: a.Backup},
		{name: "restore", usage: "<object-key>", run: a.Restore},
	}
}

// userError turns err into the line shown to the user.
func userError(err error) string {
	if msg := avatar.UserMessage(err); msg != "" {
		return msg
	}
	return err.Error()
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
