// Package store implements the storefront bot: catalog commands, the product
// intake conversation, and the web-app order channel.
package store

import (
	"context"
	"time"

	"github.com/xomakone3/storebot/core/catalog"
	coreconfig "github.com/xomakone3/storebot/core/config"
	"github.com/xomakone3/storebot/core/logger"
	tg "github.com/xomakone3/storebot/core/telegram"
	"github.com/xomakone3/storebot/core/telegram/commands"
	"github.com/xomakone3/storebot/core/telegram/middleware"
	"github.com/xomakone3/storebot/core/telegram/retry"
	"github.com/xomakone3/storebot/core/telegram/state"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// DownloadFunc fetches a Telegram file to a local path. Overridable in tests.
type DownloadFunc func(c tele.Context, file *tele.File, dst string) error

// App wires the catalog store, the intake FSM, and the retry policy into
// telebot handlers.
type App struct {
	cfg      *coreconfig.Config
	store    *catalog.Store
	fsm      state.Manager
	policy   retry.Policy
	download DownloadFunc
}

// New constructs the application around its dependencies.
func New(cfg *coreconfig.Config, st *catalog.Store, fsm state.Manager) *App {
	a := &App{
		cfg:    cfg,
		store:  st,
		fsm:    fsm,
		policy: retry.Policy{},
		download: func(c tele.Context, file *tele.File, dst string) error {
			return c.Bot().Download(file, dst)
		},
	}
	a.registerStates()
	return a
}

func (a *App) isAdmin(userID int64) bool {
	return userID == a.cfg.Telegram.AdminID
}

// deny sends the fixed denial message and leaves all state untouched.
func (a *App) deny(c tele.Context) error {
	return c.Send(msgDenied)
}

// Registry builds the command/callback registry for this bot.
func (a *App) Registry() *tg.Registry {
	reg := tg.NewRegistry()
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Start working with the bot",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     a.handleHelp,
		Description: "Show the command list",
	})
	reg.RegisterCommand("/list_products", commands.Command{
		Handler:     a.handleListProducts,
		Description: "Show the product list",
		AdminOnly:   true,
	})
	reg.RegisterCommand("/add_product", commands.Command{
		Handler:     a.handleAddProduct,
		Description: "Add a new product",
		AdminOnly:   true,
	})
	reg.RegisterCommand("/delete_product", commands.Command{
		Handler:     a.handleDeleteProduct,
		Description: "Delete a product",
		AdminOnly:   true,
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     a.handleCancel,
		Description: "Cancel the current operation",
		Hidden:      true,
	})
	_ = reg.RegisterCallback("cart", a.handleCartCallback)
	return reg
}

// Routes builds every bot route with the shared middleware chain and the
// retry policy applied uniformly at registration time.
func (a *App) Routes(reg *tg.Registry) []tg.Route {
	adminOpts := middleware.AdminOptions{
		AdminID:  a.cfg.Telegram.AdminID,
		OnReject: a.deny,
	}

	routes := make([]tg.Route, 0, len(reg.Commands())+3)
	for cmd, def := range reg.Commands() {
		h := a.policy.Wrap(def.Handler)
		if def.AdminOnly {
			h = middleware.AdminOnlyMiddleware(adminOpts)(h)
		}
		h = middleware.LoggerMiddleware(h)
		h = middleware.RecoverMiddleware(h)
		routes = append(routes, tg.Route{Endpoint: cmd, Handler: h})
	}

	// Free text and photos feed the active conversation, if any.
	routes = append(routes,
		tg.Route{Endpoint: tele.OnText, Handler: a.wrapConversation()},
		tg.Route{Endpoint: tele.OnPhoto, Handler: a.wrapConversation()},
		tg.Route{Endpoint: tele.OnWebApp, Handler: a.wrapPlain(a.handleWebAppData)},
		tg.Route{Endpoint: tele.OnCallback, Handler: a.wrapPlain(a.routeCallback(reg))},
	)

	logger.LogEvent(logger.Background(), logger.TWire, slog.LevelInfo, "wire.complete",
		slog.Int("commands", len(reg.Commands())),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)
	return routes
}

func (a *App) wrapConversation() tele.HandlerFunc {
	h := a.policy.Wrap(func(c tele.Context) error {
		if !a.fsm.InProgress(c.Sender().ID) {
			return nil
		}
		return a.fsm.HandleCurrent(c)
	})
	return middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
}

func (a *App) wrapPlain(h tele.HandlerFunc) tele.HandlerFunc {
	return middleware.RecoverMiddleware(middleware.LoggerMiddleware(a.policy.Wrap(h)))
}

func (a *App) routeCallback(reg *tg.Registry) tele.HandlerFunc {
	return func(c tele.Context) error {
		cb := c.Callback()
		if cb == nil {
			return nil
		}
		key, _ := tg.ParseCallbackData(cb)
		handler, ok := reg.GetCallback(key)
		if !ok || handler == nil {
			if fallback := reg.CallbackNotFound(); fallback != nil {
				return fallback(c)
			}
			return nil
		}
		return handler(c)
	}
}

// Middlewares builds the global middleware chain from configuration.
func (a *App) Middlewares() []tg.Middleware {
	mws := []tg.Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
	}
	interval := time.Duration(a.cfg.RateLimit.IntervalMS) * time.Millisecond
	if interval > 0 {
		ex := make(map[string]struct{}, len(a.cfg.RateLimit.ExcludeUpdates))
		for _, t := range a.cfg.RateLimit.ExcludeUpdates {
			ex[t] = struct{}{}
		}
		mws = append(mws, tg.Middleware{
			Name: "rate_limit",
			Use:  middleware.RateLimitMiddleware(middleware.RateLimitOptions{Interval: interval, Exclude: ex}),
		})
	}
	return mws
}

// RunOptions assembles everything RunBot needs.
func (a *App) RunOptions() tg.RunOptions {
	reg := a.Registry()
	return tg.RunOptions{
		Config:      a.cfg,
		Registry:    reg,
		Middlewares: a.Middlewares(),
		Routes:      a.Routes(reg),
		OnStart: func(ctx context.Context, _ *tele.Bot) error {
			logger.L.With("component", "app").Info("bot started",
				slog.String("event", "ready"),
			)
			return nil
		},
	}
}
