// Package bot wires the key shop behaviour onto the reusable bot core.
package bot

import (
	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/keybot/core/apperrors"
	tg "github.com/m3rciful/keybot/core/telegram"
	"github.com/m3rciful/keybot/core/telegram/commands"
	tghelpers "github.com/m3rciful/keybot/core/telegram/helpers"
	"github.com/m3rciful/keybot/core/telegram/router"
	appconfig "github.com/m3rciful/keybot/internal/config"
	"github.com/m3rciful/keybot/internal/fsm"
	"github.com/m3rciful/keybot/internal/service"
	"github.com/m3rciful/keybot/internal/storage"

	tele "gopkg.in/telebot.v4"
)

// App holds the assembled application.
type App struct {
	cfg *appconfig.Config

	users    *service.Users
	payments *service.Payments
	keys     *service.Keys
	fsm      *fsm.Manager

	// Outbound send paths, replaceable in tests. sendTo is best-effort
	// through the async dispatcher; sendNow is synchronous so the caller
	// observes delivery failures.
	sendTo  func(c tele.Context, to tele.Recipient, what any, opts ...any) error
	sendNow func(c tele.Context, to tele.Recipient, what any, opts ...any) error
}

// New builds the application on top of an open database handle.
func New(cfg *appconfig.Config, db *sqlx.DB) *App {
	store := storage.New(db)
	return newApp(cfg, service.NewUsers(store), service.NewPayments(store), service.NewKeys(store))
}

func newApp(cfg *appconfig.Config, users *service.Users, payments *service.Payments, keys *service.Keys) *App {
	a := &App{
		cfg:      cfg,
		users:    users,
		payments: payments,
		keys:     keys,
		fsm:      fsm.NewManager(),
	}
	a.sendTo = tghelpers.SendTo
	a.sendNow = func(c tele.Context, to tele.Recipient, what any, opts ...any) error {
		_, err := c.Bot().Send(to, what, opts...)
		return err
	}

	a.fsm.OnPhoto(fsm.StateAwaitingProof, a.dispatchErrors(a.onProofPhoto))
	a.fsm.OnText(fsm.StateAwaitingProof, a.dispatchErrors(a.onAwaitProofText))
	a.fsm.OnText(fsm.StateAwaitingKey, a.dispatchErrors(a.onKeyText))
	a.fsm.OnText(fsm.StateAwaitingReply, a.dispatchErrors(a.onReplyText))

	return a
}

func (a *App) buildRegistry() *tg.Registry {
	reg := tg.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.dispatchErrors(a.handleStart),
		Description: "Open the main menu",
	})
	reg.RegisterCommand("/mykeys", commands.Command{
		Handler:     a.dispatchErrors(a.handleMyKeys),
		Description: "Show purchased keys",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     a.dispatchErrors(a.handleHelp),
		Description: "FAQ and usage tips",
		Aliases:     []string{"faq"},
	})
	reg.RegisterCommand("/myid", commands.Command{
		Handler:     a.dispatchErrors(a.handleMyID),
		Description: "Show your Telegram ID",
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     a.dispatchErrors(a.handleCancel),
		Description: "Abort the current flow",
	})
	reg.RegisterCommand("/admin", commands.Command{
		Handler:     a.dispatchErrors(a.handleAdmin),
		Description: "Admin panel",
		AdminOnly:   true,
		Hidden:      true,
	})

	callbackHandlers := map[string]tele.HandlerFunc{
		cbMenu:     a.cbMenuHandler,
		cbBuy:      a.cbBuyHandler,
		cbMyKeys:   a.handleMyKeys,
		cbHelp:     a.handleHelp,
		cbTariff:   a.cbTariffHandler,
		cbApprove:  a.adminOnly(a.cbApproveHandler),
		cbReply:    a.adminOnly(a.cbReplyHandler),
		cbDelete:   a.adminOnly(a.cbDeleteHandler),
		cbStats:    a.adminOnly(a.cbStatsHandler),
		cbPending:  a.adminOnly(a.cbPendingHandler),
		cbAllPays:  a.adminOnly(a.cbAllPaymentsHandler),
		cbAdminTop: a.adminOnly(a.handleAdmin),
	}
	for key, h := range callbackHandlers {
		_ = reg.RegisterCallback(key, a.dispatchErrors(h))
	}

	fb := fallbacks{}
	reg.SetTextFallback(fb.UnknownText())
	reg.SetCallbackNotFound(fb.UnknownCallback())

	return reg
}

// dispatchErrors is the shared failure contract for every handler: an
// unexpected error is reported to the actor as a generic failure with its
// textual reason, and the actor's transient state is dropped. The error is
// still returned so the router logs its code.
func (a *App) dispatchErrors(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		err := next(c)
		if err == nil {
			return nil
		}
		switch apperrors.CodeOf(err) {
		case apperrors.CodeInternal, apperrors.CodeUnknown:
			a.fsm.Clear(c.Sender().ID)
			_ = tghelpers.SendText(c, failureText(apperrors.Reason(err)))
		}
		return err
	}
}

// rateLimitedNotice answers throttled updates. The limiter runs before the
// callback router answers the query, so callbacks can still get a popup alert.
func (a *App) rateLimitedNotice(c tele.Context) error {
	if c.Callback() != nil {
		return tghelpers.RespondAlert(c, textRateLimited)
	}
	return tghelpers.SendText(c, textRateLimited)
}

// adminOnly guards callback handlers; commands use the router's gate.
func (a *App) adminOnly(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if !a.cfg.Core.Telegram.IsAdmin(c.Sender().ID) {
			return tghelpers.SendText(c, textAdminsOnly)
		}
		return next(c)
	}
}

// TelegramRunOptions assembles routes and middlewares for the shared runner.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	core := a.cfg.CoreConfig()
	reg := a.buildRegistry()
	fb := fallbacks{}

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminIDs: core.Telegram.AdminIDs,
		OnAdminReject: func(c tele.Context) error {
			return tghelpers.SendText(c, textAdminsOnly)
		},
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{
		NotFound: fb.UnknownCallback(),
	}))
	routes = append(routes, router.MessageRoutes(a.fsm, reg, router.MessageOptions{
		UnknownText:  fb.UnknownText(),
		UnknownPhoto: fb.UnknownPhoto(),
	})...)

	mws := tg.DefaultMiddlewares(core, a.rateLimitedNotice)

	return tg.RunOptions{
		Config:      core,
		Registry:    reg,
		Middlewares: mws,
		Routes:      routes,
	}, nil
}
