package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gasapp/internal/api"
	"gasapp/internal/config"
	"gasapp/internal/domain/model"
	"gasapp/internal/order"
	"gasapp/internal/session"
	"gasapp/internal/storage"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// ログアウト後はログイン画面の代わりに案内を出す。
type consoleNavigator struct{}

func (consoleNavigator) ToLogin() {
	fmt.Println("logged out. run `gasapp login <email> <password>` to sign in again")
}

func main() {
	//.env は任意（無ければ環境変数だけで動く）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	var logger *zap.Logger
	if cfg.GoEnv == "prod" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	store, err := storage.New(cfg)
	if err != nil {
		logger.Fatal("storage init failed", zap.Error(err))
	}

	client := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout)
	sessions := session.NewManager(client, store, consoleNavigator{}, logger)

	ctx := context.Background()

	//起動時に前回のセッションを復元
	if err := sessions.Restore(ctx); err != nil {
		logger.Warn("session restore failed", zap.Error(err))
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	if err := run(ctx, os.Args[1], os.Args[2:], client, sessions, logger); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, verb string, args []string, client *api.Client, sessions *session.Manager, logger *zap.Logger) error {
	switch verb {
	case "health":
		if err := client.Health(ctx); err != nil {
			return err
		}
		fmt.Println("ok")
		return nil

	case "login":
		if len(args) < 2 {
			return fmt.Errorf("usage: gasapp login <email> <password>")
		}
		sess, err := sessions.Login(ctx, api.Credentials{Email: args[0], Password: args[1]})
		if err != nil {
			return err
		}
		fmt.Printf("signed in as %s (%s)\n", sess.User.FullName(), sess.User.Role)
		return nil

	case "register":
		if len(args) < 4 {
			return fmt.Errorf("usage: gasapp register <email> <password> <first> <last> [phone]")
		}
		in := api.RegisterInput{Email: args[0], Password: args[1], FirstName: args[2], LastName: args[3]}
		if len(args) > 4 {
			in.Phone = args[4]
		}
		sess, err := sessions.Register(ctx, in)
		if err != nil {
			return err
		}
		fmt.Printf("registered %s\n", sess.User.Email)
		return nil

	case "whoami":
		sess := sessions.Session()
		if !sess.IsAuthenticated() {
			fmt.Println("not signed in")
			return nil
		}
		fmt.Printf("%s <%s> role=%s\n", sess.User.FullName(), sess.User.Email, sess.User.Role)
		if exp, ok := sessions.TokenExpiresAt(); ok {
			fmt.Println("token expires:", exp.Format("2006-01-02 15:04:05"))
		}
		return nil

	case "refresh":
		_, err := sessions.Refresh(ctx)
		if err != nil {
			return err
		}
		fmt.Println("token refreshed")
		return nil

	case "logout":
		sessions.Logout(ctx)
		return nil

	case "cylinders":
		list, err := client.ListCylinders(ctx)
		if err != nil {
			return err
		}
		for _, c := range list {
			mark := " "
			if c.IsOrderable() {
				mark = "*"
			}
			fmt.Printf("%s %-20s %6.1fkg %8d yen  stock=%d  id=%s\n", mark, c.Name, c.Weight, c.Price, c.StockQuantity, c.ID)
		}
		return nil

	case "order":
		return placeOrder(ctx, args, client, sessions, logger)

	case "history":
		return showHistory(ctx, client, sessions)

	default:
		usage()
		return fmt.Errorf("unknown command: %s", verb)
	}
}

// placeOrder は order <address> <lat> <lng> <cylinderID>=<qty>... の形。
func placeOrder(ctx context.Context, args []string, client *api.Client, sessions *session.Manager, logger *zap.Logger) error {
	sess := sessions.Session()
	if !sess.IsAuthenticated() {
		return fmt.Errorf("sign in first")
	}
	if len(args) < 4 {
		return fmt.Errorf("usage: gasapp order <address> <lat> <lng> <cylinderID>=<qty>...")
	}

	lat, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("invalid longitude: %w", err)
	}

	composer := order.NewComposer(client, logger)
	cylinders, err := composer.LoadCylinders(ctx)
	if err != nil {
		return err
	}

	byID := map[string]model.GasCylinder{}
	for _, c := range cylinders {
		byID[c.ID] = c
	}

	for _, spec := range args[3:] {
		id, qtyStr, ok := strings.Cut(spec, "=")
		if !ok {
			return fmt.Errorf("invalid item %q (want id=qty)", spec)
		}
		qty, err := strconv.ParseInt(qtyStr, 10, 64)
		if err != nil || qty < 1 {
			return fmt.Errorf("invalid quantity in %q", spec)
		}
		cyl, ok := byID[id]
		if !ok {
			return fmt.Errorf("unknown cylinder id %q", id)
		}
		for i := int64(0); i < qty; i++ {
			if err := composer.AddToCart(cyl); err != nil {
				return fmt.Errorf("%s: %w", cyl.Name, err)
			}
		}
	}

	composer.SetAddress(args[0])
	composer.SetCoordinates(lat, lng)

	fmt.Printf("subtotal=%d delivery=%d total=%d\n", composer.Subtotal(), order.DeliveryFee, composer.Total())

	ord, err := composer.Submit(ctx, sess.Token, sess.User.ID)
	if err != nil {
		return err
	}
	fmt.Printf("order placed: %s (%s) total=%d\n", ord.OrderNumber, ord.Status.Label(), ord.TotalAmount)
	return nil
}

func showHistory(ctx context.Context, client *api.Client, sessions *session.Manager) error {
	sess := sessions.Session()
	if !sess.IsAuthenticated() {
		return fmt.Errorf("sign in first")
	}

	history := order.NewHistory(client, 10)
	if err := history.Load(ctx, sess.Token, sess.User.ID); err != nil {
		return err
	}
	//残りも全部読む
	for history.HasMore() {
		if err := history.LoadMore(ctx, sess.Token, sess.User.ID); err != nil {
			return err
		}
	}

	for _, o := range history.Orders() {
		cancellable := ""
		if o.CanCancel() {
			cancellable = " (cancellable)"
		}
		fmt.Printf("%s  %-10s %-8s %8d yen  %s%s\n",
			o.CreatedAt.Format("2006-01-02"), o.Status.Label(), o.PaymentStatus.Label(), o.TotalAmount, o.DeliveryAddress, cancellable)
	}
	return nil
}

func usage() {
	fmt.Println(`usage: gasapp <command>

commands:
  health                                       check API reachability
  register <email> <password> <first> <last>   create an account
  login <email> <password>                     sign in
  whoami                                       show current session
  refresh                                      refresh the access token
  logout                                       sign out
  cylinders                                    list gas cylinders (* = orderable)
  order <address> <lat> <lng> <id>=<qty>...    place a delivery order
  history                                      list my orders`)
}
