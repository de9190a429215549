package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	v1 "github.com/aevon-lab/storefront-signals/internal/api/v1"
	"github.com/aevon-lab/storefront-signals/internal/cart"
	"github.com/aevon-lab/storefront-signals/internal/core/interaction"
	"github.com/aevon-lab/storefront-signals/internal/emitter"
	"github.com/shopspring/decimal"
)

const usage = `usage: signalctl <command> [flags]

commands:
  track     send one interaction event and print the merged record
  purchase  record a purchase batch (-line productId[:qty], repeatable)
  checkout  fill a cart with -line items and confirm payment through the emitter
  recs      print recommendations for a user`

func main() {
	if len(os.Args) < 2 {
		exitErr(usage)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "track":
		err = runTrack(args)
	case "purchase":
		err = runPurchase(args)
	case "checkout":
		err = runCheckout(args)
	case "recs":
		err = runRecs(args)
	default:
		exitErr(usage)
	}
	if err != nil {
		exitErr(err.Error())
	}
}

type common struct {
	endpoint string
	user     string
	timeout  time.Duration
}

func commonFlags(fs *flag.FlagSet) *common {
	c := &common{}
	fs.StringVar(&c.endpoint, "endpoint", envOr("SIGNALS_ENDPOINT", "http://localhost:8080"), "Service base URL (or SIGNALS_ENDPOINT)")
	fs.StringVar(&c.user, "user", "", "User id")
	fs.DurationVar(&c.timeout, "timeout", 10*time.Second, "Request timeout")
	return c
}

func (c *common) validate() error {
	if strings.TrimSpace(c.user) == "" {
		return fmt.Errorf("-user is required")
	}
	return nil
}

func runTrack(args []string) error {
	fs := flag.NewFlagSet("track", flag.ExitOnError)
	c := commonFlags(fs)
	product := fs.String("product", "", "Product id")
	kind := fs.String("type", string(interaction.KindView), "Interaction type (view, add_to_cart, purchase, review, search)")
	value := fs.String("value", "", "Quantity (optional)")
	stars := fs.String("stars", "", "Review stars 0-5 (review only)")
	category := fs.String("category", "", "Product category as seen by the client (optional)")
	query := fs.String("query", "", "Search query (search only)")
	session := fs.String("session", "", "Session id (optional)")
	_ = fs.Parse(args)
	if err := c.validate(); err != nil {
		return err
	}

	evt := &v1.Event{
		UserID:          strings.TrimSpace(c.user),
		ProductID:       strings.TrimSpace(*product),
		InteractionType: interaction.Kind(strings.TrimSpace(*kind)),
		SessionID:       strings.TrimSpace(*session),
		SearchQuery:     strings.TrimSpace(*query),
	}
	var err error
	if evt.Value, err = parseOptionalDecimal("value", *value); err != nil {
		return err
	}
	if evt.ReviewStars, err = parseOptionalDecimal("stars", *stars); err != nil {
		return err
	}
	if cat := strings.TrimSpace(*category); cat != "" {
		evt.Category = &cat
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	rec, err := emitter.NewTracker(c.endpoint, c.timeout).Track(ctx, evt)
	if err != nil {
		return err
	}
	return printJSON(rec)
}

func runPurchase(args []string) error {
	fs := flag.NewFlagSet("purchase", flag.ExitOnError)
	c := commonFlags(fs)
	var lines lineFlag
	fs.Var(&lines, "line", "Purchased line as productId[:qty] (repeatable)")
	_ = fs.Parse(args)
	if err := c.validate(); err != nil {
		return err
	}
	if len(lines) == 0 {
		return fmt.Errorf("at least one -line is required")
	}

	req := &v1.PurchaseBatchRequest{UserID: strings.TrimSpace(c.user)}
	for _, l := range lines {
		req.Products = append(req.Products, v1.PurchaseLine{
			ProductID: l.productID,
			Value:     decimal.NewNullDecimal(decimal.NewFromInt(int64(l.quantity))),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	results, err := emitter.NewTracker(c.endpoint, c.timeout).TrackPurchases(ctx, req)
	if err != nil {
		return err
	}
	return printJSON(results)
}

func runCheckout(args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ExitOnError)
	c := commonFlags(fs)
	var lines lineFlag
	fs.Var(&lines, "line", "Cart line as productId[:qty] (repeatable)")
	_ = fs.Parse(args)
	if err := c.validate(); err != nil {
		return err
	}
	if len(lines) == 0 {
		return fmt.Errorf("at least one -line is required")
	}

	em := emitter.New(emitter.NewTracker(c.endpoint, c.timeout), emitter.Options{SendTimeout: c.timeout})
	defer em.Close()

	ctx := context.Background()
	session := cart.NewSession(strings.TrimSpace(c.user), cart.SumPricing, em)
	for _, l := range lines {
		em.View(session.UserID(), l.productID, "")
		item := cart.Item{ProductID: l.productID, Name: l.productID, CountInStock: l.quantity}
		if _, err := session.Dispatch(ctx, cart.AddItem{Item: item, Quantity: l.quantity}); err != nil {
			return fmt.Errorf("add %s to cart: %w", l.productID, err)
		}
	}
	if _, err := session.ConfirmPayment(ctx); err != nil {
		return err
	}
	fmt.Printf("Checked out %d line(s) for user=%s session=%s\n", len(lines), session.UserID(), em.SessionID())
	return nil
}

func runRecs(args []string) error {
	fs := flag.NewFlagSet("recs", flag.ExitOnError)
	c := commonFlags(fs)
	product := fs.String("product", "", "Anchor product id (optional)")
	_ = fs.Parse(args)
	if err := c.validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	list, err := emitter.NewTracker(c.endpoint, c.timeout).Recommendations(ctx, strings.TrimSpace(c.user), strings.TrimSpace(*product))
	if err != nil {
		return err
	}
	return printJSON(list)
}

type line struct {
	productID string
	quantity  int
}

// lineFlag collects repeated productId[:qty] values.
type lineFlag []line

func (f *lineFlag) String() string {
	parts := make([]string, 0, len(*f))
	for _, l := range *f {
		parts = append(parts, fmt.Sprintf("%s:%d", l.productID, l.quantity))
	}
	return strings.Join(parts, ",")
}

func (f *lineFlag) Set(v string) error {
	id, qty, hasQty := strings.Cut(strings.TrimSpace(v), ":")
	if id == "" {
		return fmt.Errorf("empty product id in %q", v)
	}
	n := 1
	if hasQty {
		parsed, err := strconv.Atoi(qty)
		if err != nil || parsed <= 0 {
			return fmt.Errorf("invalid quantity in %q", v)
		}
		n = parsed
	}
	*f = append(*f, line{productID: id, quantity: n})
	return nil
}

func parseOptionalDecimal(name, raw string) (decimal.NullDecimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid -%s %q: %w", name, raw, err)
	}
	return decimal.NewNullDecimal(d), nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func exitErr(message string) {
	fmt.Fprintln(os.Stderr, message)
	os.Exit(1)
}
