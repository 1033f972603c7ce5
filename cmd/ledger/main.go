// cmd/ledger/main.go
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/sales-ledger/internal/app"
	"github.com/javajoker/sales-ledger/internal/config"
	"github.com/javajoker/sales-ledger/internal/dashboard"
	"github.com/javajoker/sales-ledger/internal/gateway"
	"github.com/javajoker/sales-ledger/internal/i18n"
	"github.com/javajoker/sales-ledger/internal/ledger"
	"github.com/javajoker/sales-ledger/internal/session"
	"github.com/javajoker/sales-ledger/internal/utils"
)

const usage = `usage: ledger [-v] [-lang LANG] <command> [flags]

commands:
  login      -user NAME [-password PASS]
  logout
  whoami
  products                       list products with stock
  add-product -name NAME -qty N -price P
  preview    -product ID -qty N
  sell       -client NAME -product ID -qty N
  pay        -client NAME
  dashboard
  stock
  sales
  debtors
  statement  -client NAME
  reconcile
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("ledger", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	verbose := global.Bool("v", false, "log requests and workflow steps")
	lang := global.String("lang", "", "message language (en, pt_BR)")
	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		global.Usage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "invalid configuration: %v\n", err)
		return 1
	}

	log := utils.NewLogger(cfg.Log, cfg.Environment)
	log.SetOutput(stderr)
	switch {
	case *verbose:
		log.SetLevel(logrus.DebugLevel)
	case log.GetLevel() > logrus.WarnLevel:
		log.SetLevel(logrus.WarnLevel)
	}

	if err := i18n.Initialize(cfg.I18n.DefaultLocale); err != nil {
		log.WithError(err).Error("Failed to initialize i18n")
		return 1
	}
	if *lang == "" {
		*lang = cfg.Client.Language
	}

	sessionPath := cfg.Client.SessionFile
	if sessionPath == "" {
		if sessionPath, err = session.DefaultPath(); err != nil {
			log.WithError(err).Error("Failed to locate session file")
			return 1
		}
	}

	sess := session.New()
	client := gateway.New(cfg.Client, gateway.WithTokenSource(sess), gateway.WithLogger(log))
	manager := session.NewManager(client, sess, session.NewFileStore(sessionPath), log)
	if err := manager.Restore(); err != nil {
		log.WithError(err).Warn("Ignoring unreadable session file")
	}

	service := ledger.NewService(client, log)
	a := app.New(manager, service, app.NewWriterNotifier(stderr), log,
		app.WithLanguage(*lang),
		app.WithOutput(stdout),
		app.WithDashboardOptions(dashboard.Options{
			LowStockThreshold: cfg.Ledger.LowStockThreshold,
			RecentSales:       cfg.Ledger.RecentSalesLimit,
		}),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, rest := global.Arg(0), global.Args()[1:]
	if err := dispatch(ctx, a, cmd, rest, stdin, stderr); err != nil {
		if errors.Is(err, errUsage) {
			global.Usage()
			return 2
		}
		return 1
	}
	return 0
}

var errUsage = errors.New("usage")

func dispatch(ctx context.Context, a *app.App, cmd string, args []string, stdin io.Reader, stderr io.Writer) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)

	switch cmd {
	case "login":
		user := fs.String("user", "", "username")
		password := fs.String("password", "", "password, read from stdin when omitted")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		if *password == "" {
			fmt.Fprint(stderr, "password: ")
			*password = readLine(stdin)
		}
		return a.Login(ctx, *user, *password)

	case "logout":
		return a.Logout(ctx)

	case "whoami", "check":
		return a.WhoAmI(ctx)

	case "products":
		return a.Products(ctx)

	case "add-product":
		name := fs.String("name", "", "product name")
		qty := fs.Int("qty", 0, "units to add")
		price := fs.String("price", "", "unit price")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		return a.AddProduct(ctx, ledger.ProductInput{Name: *name, Quantity: *qty, Price: parseMoney(*price)})

	case "preview":
		product := fs.String("product", "", "product id")
		qty := fs.Int("qty", 0, "units")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		_, err := a.Preview(ctx, *product, *qty)
		return err

	case "sell":
		client := fs.String("client", "", "client name")
		product := fs.String("product", "", "product id")
		qty := fs.Int("qty", 0, "units sold")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		return a.Sell(ctx, ledger.SaleInput{ClientName: *client, ProductID: *product, Quantity: *qty})

	case "pay":
		client := fs.String("client", "", "client name")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		return a.Pay(ctx, *client)

	case "dashboard":
		return a.Dashboard(ctx)

	case "stock":
		return a.Stock(ctx)

	case "sales":
		return a.SalesHistory(ctx)

	case "debtors":
		return a.Debtors(ctx)

	case "statement":
		client := fs.String("client", "", "client name")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		return a.Statement(ctx, *client)

	case "reconcile":
		return a.Reconcile(ctx)
	}
	return errUsage
}

// parseMoney leaves malformed input as zero so validation reports the price.
func parseMoney(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func readLine(r io.Reader) string {
	line, _ := bufio.NewReader(r).ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}
