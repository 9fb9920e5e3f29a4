// A terminal browser for the skin marketplace: items, prices, sessions,
// subscriptions, and trade history, with prices shown in the configured
// display currency.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/dense-analysis/skinwarp/internal/api"
	"github.com/dense-analysis/skinwarp/internal/currency"
	"github.com/dense-analysis/skinwarp/internal/env"
	"github.com/dense-analysis/skinwarp/internal/model"
	"github.com/dense-analysis/skinwarp/internal/query"
	"github.com/dense-analysis/skinwarp/internal/storage"
	"github.com/dense-analysis/skinwarp/internal/store"
)

const usage = `Usage: skinwarp [-debug] <command> [arguments]

Commands:
  items [-page N] [-category C] [-exterior E] [-skin S] [-name N]
  item <id>
  filters
  login <email> <password>
  signup <username> <email> <password>
  logout
  whoami
  currency [code]
  subs [list]
  subs add -name <name> [-rarity R] [-max-premium P] [-noti-type T] [-noti-id I]
  subs update -id <id> -name <name> [-rarity R] [-max-premium P] [-noti-type T] [-noti-id I]
  subs remove <id>
  transactions <name> [-days N] [-page N]
  listings <name> [-page N]
`

// app bundles everything a command needs once the stores are wired up.
type app struct {
	config    *env.Config
	converter *currency.Converter
	notifier  *store.Notifier
	settings  *store.Config
	users     *store.UserStore
	client    *api.Client
	cache     *query.Cache

	// queryErr is the last error the cache reported to the notifier,
	// so main does not print it to stderr a second time.
	queryErr error
}

func setup(ctx context.Context, config *env.Config) (*app, func(), error) {
	storageStore, err := storage.Open(config.StoragePath)

	if err != nil {
		return nil, nil, err
	}

	notifier := store.NewNotifier()
	converter := currency.NewConverter(nil, currency.DefaultCurrency)
	settings := store.NewConfig(storageStore, converter)

	if err := settings.Load(); err != nil {
		storageStore.Close()

		return nil, nil, err
	}

	users := store.NewUserStore(storageStore, notifier)
	client := api.NewClient(config.APIURL, users, converter)

	if err := users.Init(ctx, client); err != nil {
		storageStore.Close()

		return nil, nil, err
	}

	application := &app{
		config:    config,
		converter: converter,
		notifier:  notifier,
		settings:  settings,
		users:     users,
		client:    client,
	}

	// Every query failure becomes a notification, the single bridge
	// from fetch errors to the user.
	application.cache = query.NewCache(query.Config{
		StaleTime: config.CacheStaleTime,
		GCTime:    config.CacheGCTime,
		OnError: func(err error) {
			slog.Debug("query error", "error", err)
			application.queryErr = err
			notifier.Error(err.Error())
		},
	})

	return application, func() { storageStore.Close() }, nil
}

// drainNotifications prints queued notifications to stderr, so failed
// session restoration and similar warnings are visible after any command.
func (application *app) drainNotifications() {
	for {
		notification, found := application.notifier.Dequeue()

		if !found {
			break
		}

		fmt.Fprintf(os.Stderr, "[%s] %s\n", notification.Severity, notification.Message)
	}
}

func (application *app) formatPrice(money currency.Money) string {
	formatted, err := application.converter.Format(money)

	if err != nil {
		return money.Amount.String() + " " + money.Unit
	}

	return formatted
}

func (application *app) printItem(item model.Item) {
	fmt.Printf("%s  %s\n", item.ID, item.FullName)

	if item.LowestPrice != nil {
		fmt.Printf(
			"  lowest: %s (%s)\n",
			application.formatPrice(item.LowestPrice.Price),
			item.LowestPrice.Market,
		)
	}

	for _, market := range model.MarketKeys {
		if price, found := item.Prices[market]; found {
			fmt.Printf("  %-6s %s\n", market, application.formatPrice(price.Price))
		}
	}
}

func (application *app) runItems(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("items", flag.ExitOnError)
	page := flags.Int("page", 1, "Page number")
	category := flags.String("category", "", "Filter by category")
	exterior := flags.String("exterior", "", "Filter by exterior")
	skin := flags.String("skin", "", "Filter by skin")
	name := flags.String("name", "", "Filter by name")
	flags.Parse(args)

	itemsQuery := api.ItemsQuery{
		Page:     *page,
		PageSize: application.config.ItemPageSize,
		Category: *category,
		Exterior: *exterior,
		Skin:     *skin,
		Name:     *name,
	}

	// Transformed prices depend on the display currency, so it is part
	// of the cache key.
	key := query.Key(
		api.RouteItems,
		application.converter.Target(),
		strconv.Itoa(*page),
		*category, *exterior, *skin, *name,
	)

	result, err := query.Fetch(ctx, application.cache, key,
		func(ctx context.Context) (*api.ItemsPage, error) {
			return application.client.Items(ctx, itemsQuery)
		})

	if err != nil {
		return err
	}

	for _, item := range result.Items {
		application.printItem(item)
	}

	if nextPage, ok := result.NextPage(); ok {
		fmt.Printf("(page %d of %d items; next: -page %d)\n", result.Page, result.Total, nextPage)
	} else {
		fmt.Printf("(page %d of %d items; last page)\n", result.Page, result.Total)
	}

	return nil
}

func (application *app) runItem(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: skinwarp item <id>")
	}

	itemID := args[0]
	key := query.Key(api.RouteItems, application.converter.Target(), itemID)

	item, err := query.Fetch(ctx, application.cache, key,
		func(ctx context.Context) (*model.Item, error) {
			return application.client.Item(ctx, itemID)
		})

	if err != nil {
		return err
	}

	application.printItem(*item)

	if item.Name != "" {
		fmt.Printf("  name: %s  skin: %s  exterior: %s\n", item.Name, item.Skin, item.Exterior)
	}

	return nil
}

func (application *app) runFilters(ctx context.Context) error {
	key := query.Key(api.RouteItems, "filters")

	filters, err := query.Fetch(ctx, application.cache, key,
		func(ctx context.Context) (*api.ItemFilters, error) {
			return application.client.Filters(ctx)
		})

	if err != nil {
		return err
	}

	printGroup := func(label string, values []string) {
		fmt.Printf("%s:\n", label)

		for _, value := range values {
			fmt.Printf("  %s\n", value)
		}
	}

	printGroup("category", filters.Category)
	printGroup("skin", filters.Skin)
	printGroup("exterior", filters.Exterior)

	return nil
}

func (application *app) runLogin(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: skinwarp login <email> <password>")
	}

	session, err := application.client.Login(ctx, args[0], args[1])

	if err != nil {
		return err
	}

	if err := application.users.Login(&session.User, session.Token); err != nil {
		return err
	}

	fmt.Printf("Logged in as %s\n", session.User.Username)

	return nil
}

func (application *app) runSignup(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: skinwarp signup <username> <email> <password>")
	}

	session, err := application.client.Signup(ctx, args[0], args[1], args[2])

	if err != nil {
		return err
	}

	if err := application.users.Login(&session.User, session.Token); err != nil {
		return err
	}

	fmt.Printf("Signed up as %s\n", session.User.Username)

	return nil
}

func (application *app) runLogout() error {
	if err := application.users.Logout(); err != nil {
		return err
	}

	fmt.Println("Logged out")

	return nil
}

func (application *app) runWhoami() error {
	user := application.users.User()

	if user == nil {
		fmt.Println("Not logged in")

		return nil
	}

	fmt.Printf("%s <%s> (%s)\n", user.Username, user.Email, user.Role)
	fmt.Printf("subscriptions: %d\n", len(user.SubscriptionIDs))

	return nil
}

func (application *app) runCurrency(args []string) error {
	if len(args) == 0 {
		fmt.Printf("current: %s\n", application.settings.Currency())
		fmt.Println("available:")

		for _, code := range application.converter.Currencies() {
			fmt.Printf("  %s\n", code)
		}

		return nil
	}

	if err := application.settings.SetCurrency(args[0]); err != nil {
		return err
	}

	// Cached pages hold prices in the old currency.
	application.cache.Invalidate("")
	fmt.Printf("currency set to %s\n", args[0])

	return nil
}

func parseSubscriptionFlags(name string, args []string) (model.Subscription, error) {
	flags := flag.NewFlagSet(name, flag.ExitOnError)
	id := flags.String("id", "", "Subscription ID (update only)")
	itemName := flags.String("name", "", "Item name to watch")
	rarity := flags.String("rarity", "", "Rarity filter")
	maxPremium := flags.String("max-premium", "", "Maximum premium over lowest price")
	notiType := flags.String("noti-type", "email", "Notification channel (email or telegram)")
	notiID := flags.String("noti-id", "", "Notification target (address or chat ID)")
	flags.Parse(args)

	if *itemName == "" {
		return model.Subscription{}, fmt.Errorf("-name is required")
	}

	return model.Subscription{
		ID:         *id,
		Name:       *itemName,
		Rarity:     *rarity,
		MaxPremium: *maxPremium,
		NotiType:   *notiType,
		NotiID:     *notiID,
	}, nil
}

func (application *app) runSubs(ctx context.Context, args []string) error {
	action := "list"

	if len(args) > 0 {
		action = args[0]
		args = args[1:]
	}

	switch action {
	case "list":
		key := query.Key(api.RouteSubscriptions)

		subscriptions, err := query.Fetch(ctx, application.cache, key,
			func(ctx context.Context) ([]model.Subscription, error) {
				return application.client.Subscriptions(ctx)
			})

		if err != nil {
			return err
		}

		for _, subscription := range subscriptions {
			fmt.Printf(
				"%s  %s  max premium %s  via %s\n",
				subscription.ID,
				subscription.Name,
				subscription.MaxPremium,
				subscription.NotiType,
			)
		}

		return nil
	case "add":
		subscription, err := parseSubscriptionFlags("subs add", args)

		if err != nil {
			return err
		}

		created, err := application.client.CreateSubscription(ctx, subscription)

		if err != nil {
			return err
		}

		application.cache.Invalidate(api.RouteSubscriptions)
		fmt.Printf("subscribed: %s (%s)\n", created.Name, created.ID)

		return nil
	case "update":
		subscription, err := parseSubscriptionFlags("subs update", args)

		if err != nil {
			return err
		}

		if subscription.ID == "" {
			return fmt.Errorf("-id is required")
		}

		updated, err := application.client.UpdateSubscription(ctx, subscription)

		if err != nil {
			return err
		}

		application.cache.Invalidate(api.RouteSubscriptions)
		fmt.Printf("updated: %s (%s)\n", updated.Name, updated.ID)

		return nil
	case "remove":
		if len(args) != 1 {
			return fmt.Errorf("usage: skinwarp subs remove <id>")
		}

		if err := application.client.DeleteSubscription(ctx, args[0]); err != nil {
			return err
		}

		application.cache.Invalidate(api.RouteSubscriptions)
		fmt.Printf("removed: %s\n", args[0])

		return nil
	}

	return fmt.Errorf("unknown subs action: %s", action)
}

func (application *app) printTransactions(transactions []model.Transaction) {
	for _, transaction := range transactions {
		price, err := currency.Parse(transaction.Price)
		formatted := transaction.Price

		if err == nil {
			formatted = application.formatPrice(price)
		}

		fmt.Printf("%s  %s  %s\n", transaction.CreatedAt, formatted, transaction.Name)
	}
}

func (application *app) runTransactions(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: skinwarp transactions <name> [-days N] [-page N]")
	}

	name := args[0]
	flags := flag.NewFlagSet("transactions", flag.ExitOnError)
	days := flags.Int("days", 0, "Only transactions within this many days")
	page := flags.Int("page", 1, "Page number")
	flags.Parse(args[1:])

	if *days > 0 {
		key := query.Key(api.RouteTransactions, name, "days", strconv.Itoa(*days))

		transactions, err := query.Fetch(ctx, application.cache, key,
			func(ctx context.Context) ([]model.Transaction, error) {
				return application.client.TransactionsByDays(ctx, name, *days)
			})

		if err != nil {
			return err
		}

		application.printTransactions(transactions)

		return nil
	}

	key := query.Key(api.RouteTransactions, name, "page", strconv.Itoa(*page))

	transactions, err := query.Fetch(ctx, application.cache, key,
		func(ctx context.Context) ([]model.Transaction, error) {
			return application.client.TransactionsPage(
				ctx,
				name,
				*page,
				application.config.TransactionPageSize,
			)
		})

	if err != nil {
		return err
	}

	application.printTransactions(transactions)

	return nil
}

func (application *app) runListings(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: skinwarp listings <name> [-page N]")
	}

	name := args[0]
	flags := flag.NewFlagSet("listings", flag.ExitOnError)
	page := flags.Int("page", 1, "Page number")
	flags.Parse(args[1:])

	key := query.Key(api.RouteListings, name, strconv.Itoa(*page))

	result, err := query.Fetch(ctx, application.cache, key,
		func(ctx context.Context) (*api.ListingsPage, error) {
			return application.client.Listings(
				ctx,
				name,
				*page,
				application.config.ListingPageSize,
			)
		})

	if err != nil {
		return err
	}

	for _, listing := range result.Listings {
		price, err := currency.Parse(listing.Price)
		formatted := listing.Price

		if err == nil {
			formatted = application.formatPrice(price)
		}

		fmt.Printf(
			"%s  %s  %s  wear %s  seed %d\n",
			listing.ID,
			formatted,
			listing.Market,
			listing.PaintWear,
			listing.PaintSeed,
		)
	}

	fmt.Printf("(page %d of %d listings)\n", result.Page, result.Total)

	return nil
}

func (application *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "items":
		return application.runItems(ctx, args)
	case "item":
		return application.runItem(ctx, args)
	case "filters":
		return application.runFilters(ctx)
	case "login":
		return application.runLogin(ctx, args)
	case "signup":
		return application.runSignup(ctx, args)
	case "logout":
		return application.runLogout()
	case "whoami":
		return application.runWhoami()
	case "currency":
		return application.runCurrency(args)
	case "subs":
		return application.runSubs(ctx, args)
	case "transactions":
		return application.runTransactions(ctx, args)
	case "listings":
		return application.runListings(ctx, args)
	}

	return fmt.Errorf("unknown command: %s", command)
}

func main() {
	env.LoadEnvironmentVariables()

	debugPtr := flag.Bool("debug", false, "Log API requests")
	flag.Parse()

	if *debugPtr {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	if flag.NArg() == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	config, err := env.LoadConfig()

	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %s\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	application, cleanup, err := setup(ctx, config)

	if err != nil {
		fmt.Fprintf(os.Stderr, "startup error: %s\n", err)
		os.Exit(1)
	}

	defer cleanup()

	runErr := application.run(ctx, flag.Arg(0), flag.Args()[1:])
	application.drainNotifications()

	if runErr != nil {
		// Query errors were already drained as notifications.
		if runErr != application.queryErr {
			fmt.Fprintf(os.Stderr, "%s\n", runErr)
		}

		os.Exit(1)
	}
}
