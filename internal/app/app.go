// internal/app/app.go
//
// Package app is the boundary between a user front end and the ledger. Every
// operation reports its outcome as a localized Notification and never lets
// an error escape unannounced.
package app

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/sales-ledger/internal/dashboard"
	"github.com/javajoker/sales-ledger/internal/gateway"
	"github.com/javajoker/sales-ledger/internal/i18n"
	"github.com/javajoker/sales-ledger/internal/ledger"
	"github.com/javajoker/sales-ledger/internal/session"
)

var ErrNotAuthenticated = errors.New("not authenticated")

type App struct {
	sessions *session.Manager
	ledger   *ledger.Service
	notifier Notifier
	out      io.Writer
	lang     string
	opts     dashboard.Options
	log      *logrus.Entry
}

type Option func(*App)

func WithLanguage(lang string) Option {
	return func(a *App) { a.lang = i18n.Normalize(lang) }
}

func WithDashboardOptions(opts dashboard.Options) Option {
	return func(a *App) { a.opts = opts }
}

// WithOutput sets where tables are rendered.
func WithOutput(w io.Writer) Option {
	return func(a *App) { a.out = w }
}

func New(sessions *session.Manager, svc *ledger.Service, notifier Notifier, log *logrus.Logger, opts ...Option) *App {
	a := &App{
		sessions: sessions,
		ledger:   svc,
		notifier: notifier,
		out:      io.Discard,
		lang:     i18n.DefaultLanguage(),
		opts:     dashboard.DefaultOptions(),
		log:      log.WithField("component", "app"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *App) t(key string, args ...interface{}) string {
	return i18n.T(a.lang, key, args...)
}

func (a *App) success(key string, args ...interface{}) {
	a.notifier.Notify(Notification{Level: LevelSuccess, Message: a.t(key, args...)})
}

func (a *App) info(key string, args ...interface{}) {
	a.notifier.Notify(Notification{Level: LevelInfo, Message: a.t(key, args...)})
}

// fail announces err and hands it back so callers can set an exit status.
func (a *App) fail(op string, err error) error {
	a.log.WithError(err).WithField("op", op).Debug("Operation failed")
	a.notifier.Notify(Notification{Level: LevelError, Message: a.errorMessage(err)})
	return err
}

func (a *App) errorMessage(err error) string {
	var (
		verr     *ledger.ValidationError
		stockErr *ledger.InsufficientStockError
		nfErr    *ledger.NotFoundError
	)
	switch {
	case errors.As(err, &verr):
		key := validationKey(verr.Field)
		if key == i18n.KeyValidationRequired {
			return a.t(key, verr.Field)
		}
		return a.t(key)
	case errors.As(err, &stockErr):
		return a.t(i18n.KeyInsufficientStock, stockErr.Available)
	case errors.As(err, &nfErr):
		if nfErr.Entity == "client" {
			return a.t(i18n.KeyClientNotFound, nfErr.Key)
		}
		return a.t(i18n.KeyProductNotFound)
	case errors.Is(err, ledger.ErrConcurrentModification):
		return a.t(i18n.KeyConcurrentUpdate)
	case errors.Is(err, ErrNotAuthenticated), errors.Is(err, gateway.ErrUnauthorized):
		return a.t(i18n.KeyAuthRequired)
	case errors.Is(err, ledger.ErrTransport):
		return a.t(i18n.KeyTransportFailed, err.Error())
	default:
		return a.t(i18n.KeyOperationFailed, err.Error())
	}
}

func validationKey(field string) string {
	switch field {
	case "client":
		return i18n.KeyValidationClientName
	case "name":
		return i18n.KeyValidationProductName
	case "product_id":
		return i18n.KeyValidationProductID
	case "quantity":
		return i18n.KeyValidationQuantity
	case "price":
		return i18n.KeyValidationPrice
	default:
		return i18n.KeyValidationRequired
	}
}

func (a *App) requireSession(op string) error {
	if !a.sessions.Session().Authenticated() {
		return a.fail(op, ErrNotAuthenticated)
	}
	return nil
}

func (a *App) Login(ctx context.Context, username, password string) error {
	switch {
	case strings.TrimSpace(username) == "":
		return a.fail("login", &ledger.ValidationError{Field: "username", Message: "username is required"})
	case password == "":
		return a.fail("login", &ledger.ValidationError{Field: "password", Message: "password is required"})
	}

	user, err := a.sessions.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			a.log.WithError(err).Debug("Login rejected")
			a.notifier.Notify(Notification{Level: LevelError, Message: a.t(i18n.KeyAuthInvalidCredentials)})
			return err
		}
		return a.fail("login", err)
	}

	name := user.DisplayName
	if name == "" {
		name = user.Username
	}
	a.success(i18n.KeySessionLoggedIn, name)
	return nil
}

// Logout always ends the local session. A failed server call is only logged.
func (a *App) Logout(ctx context.Context) error {
	if err := a.sessions.Logout(ctx); err != nil {
		a.log.WithError(err).Warn("Server logout failed, local session cleared")
	}
	a.success(i18n.KeySessionLoggedOut)
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	status, err := a.sessions.CheckSession(ctx)
	if err != nil {
		return a.fail("check_session", err)
	}
	if !status.Authenticated || status.User == nil {
		a.info(i18n.KeySessionAnonymous)
		return nil
	}
	a.info(i18n.KeySessionAuthenticated, status.User.Username)
	return nil
}

func (a *App) AddProduct(ctx context.Context, in ledger.ProductInput) error {
	if err := a.requireSession("add_product"); err != nil {
		return err
	}
	if _, err := a.ledger.AddOrRestockProduct(ctx, in); err != nil {
		return a.fail("add_product", err)
	}
	a.success(i18n.KeyProductSaved)
	return nil
}

func (a *App) Sell(ctx context.Context, in ledger.SaleInput) error {
	if err := a.requireSession("register_sale"); err != nil {
		return err
	}
	sale, err := a.ledger.RegisterSale(ctx, in)
	if err != nil {
		return a.fail("register_sale", err)
	}
	a.success(i18n.KeySaleRegistered)
	renderSales(a.out, a.t, []saleRow{rowFromSale(sale)})
	return nil
}

func (a *App) Pay(ctx context.Context, clientName string) error {
	if err := a.requireSession("settle_payment"); err != nil {
		return err
	}
	settlement, err := a.ledger.SettlePayment(ctx, clientName)
	if err != nil {
		return a.fail("settle_payment", err)
	}
	if settlement.SalesSettled == 0 && settlement.Amount.IsZero() {
		a.info(i18n.KeyPaymentNothingDue, settlement.ClientName)
		return nil
	}
	a.success(i18n.KeyPaymentRegistered, settlement.ClientName)
	return nil
}

// Preview prints the total a sale would have without writing anything.
func (a *App) Preview(ctx context.Context, productID string, quantity int) (decimal.Decimal, error) {
	if err := a.requireSession("preview_sale"); err != nil {
		return decimal.Zero, err
	}
	total, err := a.ledger.PreviewSaleTotal(ctx, productID, quantity)
	if err != nil {
		return decimal.Zero, a.fail("preview_sale", err)
	}
	writeLine(a.out, money(total))
	return total, nil
}

// Products lists what can be sold right now.
func (a *App) Products(ctx context.Context) error {
	if err := a.requireSession("sellable_products"); err != nil {
		return err
	}
	products, err := a.ledger.SellableProducts(ctx)
	if err != nil {
		return a.fail("sellable_products", err)
	}
	renderProducts(a.out, products)
	return nil
}

func (a *App) Dashboard(ctx context.Context) error {
	snap, err := a.snapshot(ctx, "dashboard")
	if err != nil {
		return err
	}
	renderDashboard(a.out, a.t, dashboard.Build(snap, a.opts))
	return nil
}

func (a *App) Stock(ctx context.Context) error {
	snap, err := a.snapshot(ctx, "stock_report")
	if err != nil {
		return err
	}
	renderStock(a.out, a.t, dashboard.StockReport(snap.Products, a.opts.LowStockThreshold))
	return nil
}

func (a *App) SalesHistory(ctx context.Context) error {
	snap, err := a.snapshot(ctx, "sales_history")
	if err != nil {
		return err
	}
	history := dashboard.SalesHistory(snap.Sales)
	rows := make([]saleRow, 0, len(history))
	for i := range history {
		rows = append(rows, rowFromSale(&history[i]))
	}
	renderSales(a.out, a.t, rows)
	return nil
}

func (a *App) Debtors(ctx context.Context) error {
	if err := a.requireSession("debtors"); err != nil {
		return err
	}
	debtors, err := a.ledger.Debtors(ctx)
	if err != nil {
		return a.fail("debtors", err)
	}
	renderClients(a.out, debtors)
	return nil
}

func (a *App) Statement(ctx context.Context, clientName string) error {
	if err := a.requireSession("client_statement"); err != nil {
		return err
	}
	st, err := a.ledger.ClientStatement(ctx, clientName)
	if err != nil {
		return a.fail("client_statement", err)
	}
	renderStatement(a.out, a.t, st)
	return nil
}

func (a *App) Reconcile(ctx context.Context) error {
	if err := a.requireSession("reconcile"); err != nil {
		return err
	}
	corrections, err := a.ledger.ReconcileClientDebt(ctx)
	if err != nil {
		return a.fail("reconcile", err)
	}
	if len(corrections) == 0 {
		a.info(i18n.KeyReconcileClean)
		return nil
	}
	renderCorrections(a.out, corrections)
	a.success(i18n.KeyReconciled, len(corrections))
	return nil
}

func (a *App) snapshot(ctx context.Context, op string) (dashboard.Snapshot, error) {
	if err := a.requireSession(op); err != nil {
		return dashboard.Snapshot{}, err
	}
	snap, err := a.ledger.Snapshot(ctx)
	if err != nil {
		return dashboard.Snapshot{}, a.fail(op, err)
	}
	return snap, nil
}
