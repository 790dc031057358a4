package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	webAdapter "parts-inventory/internal/adapters/web"
	"parts-inventory/internal/app"
	"parts-inventory/internal/config"
	"parts-inventory/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

// Opener builds the application service for commands that need storage.
type Opener func(ctx context.Context) (app.ApplicationService, func(), error)

type runner struct {
	cfg  *config.Config
	open Opener
}

// New returns the partsctl command tree.
func New(cfg *config.Config, open Opener) *cli.App {
	r := &runner{cfg: cfg, open: open}
	return &cli.App{
		Name:                 "partsctl",
		Usage:                "parts inventory and reorder tool",
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			r.partsCommand(),
			r.movementCommand("reserve", "earmark stock for a job"),
			r.movementCommand("consume", "book reserved stock as used by a job"),
			r.movementCommand("release", "return reserved stock to the available pool"),
			r.receiveCommand(),
			r.adjustCommand(),
			{
				Name:   "stock",
				Usage:  "show balances including quantities on open orders",
				Action: r.withService(r.stock),
			},
			r.reorderCommand(),
			r.poCommand(),
			{
				Name:      "import-drafts",
				Usage:     "import legacy per-supplier draft files",
				ArgsUsage: "<dir>",
				Action:    r.withService(r.importDrafts),
			},
			{
				Name:   "restore-seed",
				Usage:  "re-create missing demo parts",
				Action: r.withService(r.restoreSeed),
			},
			{
				Name:      "schema",
				Usage:     "print the JSON Schema of the stored collections",
				ArgsUsage: "[parts|purchase_orders]",
				Action:    r.schema,
			},
			{
				Name:   "migrate",
				Usage:  "apply database migrations (postgres backend)",
				Action: r.migrate,
			},
			r.tokenCommand(),
		},
	}
}

// withService opens the application service around a command action.
func (r *runner) withService(fn func(c *cli.Context, svc app.ApplicationService) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		svc, closeFn, err := r.open(c.Context)
		if err != nil {
			return err
		}
		defer closeFn()
		return fn(c, svc)
	}
}

// ── Parts ─────────────────────────────────────────────────────────────────────

func (r *runner) partsCommand() *cli.Command {
	return &cli.Command{
		Name:  "parts",
		Usage: "manage part records",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "list all parts",
				Action: r.withService(r.listParts),
			},
			{
				Name:  "add",
				Usage: "create a part",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "sku", Required: true},
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "unit"},
					&cli.IntFlag{Name: "on-hand"},
					&cli.IntFlag{Name: "min-stock"},
					&cli.StringFlag{Name: "cost", Value: "0"},
					&cli.StringFlag{Name: "supplier"},
					&cli.IntFlag{Name: "moq"},
					&cli.IntFlag{Name: "pack-size"},
				},
				Action: r.withService(r.addPart),
			},
			{
				Name:      "show",
				Usage:     "show one part",
				ArgsUsage: "<sku>",
				Action:    r.withService(r.showPart),
			},
			{
				Name:      "delete",
				Usage:     "delete a part with nothing reserved",
				ArgsUsage: "<sku>",
				Action:    r.withService(r.deletePart),
			},
		},
	}
}

func (r *runner) listParts(c *cli.Context, svc app.ApplicationService) error {
	result, err := svc.ListParts(c.Context)
	if err != nil {
		return err
	}
	printParts(c.App.Writer, result.Parts)
	return nil
}

func (r *runner) addPart(c *cli.Context, svc app.ApplicationService) error {
	cost, err := decimal.NewFromString(c.String("cost"))
	if err != nil {
		return fmt.Errorf("invalid --cost %q: %w", c.String("cost"), err)
	}
	req := app.CreatePartRequest{
		SKU:      c.String("sku"),
		Name:     c.String("name"),
		Unit:     c.String("unit"),
		OnHand:   c.Int("on-hand"),
		MinStock: c.Int("min-stock"),
		LastCost: cost,
		Supplier: c.String("supplier"),
	}
	if c.IsSet("moq") {
		v := c.Int("moq")
		req.MOQ = &v
	}
	if c.IsSet("pack-size") {
		v := c.Int("pack-size")
		req.PackSize = &v
	}
	result, err := svc.CreatePart(c.Context, req)
	if err != nil {
		return err
	}
	printPart(c.App.Writer, result)
	return nil
}

func (r *runner) showPart(c *cli.Context, svc app.ApplicationService) error {
	sku, err := argAt(c, 0, "sku")
	if err != nil {
		return err
	}
	result, err := svc.GetPart(c.Context, sku)
	if err != nil {
		return err
	}
	printPart(c.App.Writer, result)
	return nil
}

func (r *runner) deletePart(c *cli.Context, svc app.ApplicationService) error {
	sku, err := argAt(c, 0, "sku")
	if err != nil {
		return err
	}
	if err := svc.DeletePart(c.Context, sku); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Deleted %s.\n", sku)
	return nil
}

// ── Stock movements ───────────────────────────────────────────────────────────

func (r *runner) movementCommand(name, usage string) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<job> <sku> <qty>",
		Action: r.withService(func(c *cli.Context, svc app.ApplicationService) error {
			job, err := argAt(c, 0, "job")
			if err != nil {
				return err
			}
			sku, err := argAt(c, 1, "sku")
			if err != nil {
				return err
			}
			qty, err := intArgAt(c, 2, "qty")
			if err != nil {
				return err
			}
			req := app.MovementRequest{JobRef: job, SKU: sku, Qty: qty}

			var result *app.PartResult
			switch name {
			case "reserve":
				res, err := svc.Reserve(c.Context, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "Reservation %s: %d x %s for %s\n",
					res.Reservation.ID, res.Reservation.Qty, res.Reservation.SKU, res.Reservation.JobRef)
				result = &app.PartResult{Part: res.Part, Available: res.Part.Available()}
			case "consume":
				result, err = svc.Consume(c.Context, req)
			default:
				result, err = svc.Release(c.Context, req)
			}
			if err != nil {
				return err
			}
			printPart(c.App.Writer, result)
			return nil
		}),
	}
}

func (r *runner) receiveCommand() *cli.Command {
	return &cli.Command{
		Name:      "receive",
		Usage:     "book goods-in outside of a purchase order",
		ArgsUsage: "<sku> <qty>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "cost", Usage: "unit cost; becomes the part's last cost"},
			&cli.StringFlag{Name: "supplier"},
		},
		Action: r.withService(func(c *cli.Context, svc app.ApplicationService) error {
			sku, err := argAt(c, 0, "sku")
			if err != nil {
				return err
			}
			qty, err := intArgAt(c, 1, "qty")
			if err != nil {
				return err
			}
			req := app.ReceiveRequest{SKU: sku, Qty: qty, Supplier: c.String("supplier")}
			if c.IsSet("cost") {
				cost, err := decimal.NewFromString(c.String("cost"))
				if err != nil {
					return fmt.Errorf("invalid --cost %q: %w", c.String("cost"), err)
				}
				req.UnitCost = &cost
			}
			result, err := svc.Receive(c.Context, req)
			if err != nil {
				return err
			}
			printPart(c.App.Writer, result)
			return nil
		}),
	}
}

func (r *runner) adjustCommand() *cli.Command {
	return &cli.Command{
		Name:      "adjust",
		Usage:     "correct on-hand stock after a count",
		ArgsUsage: "<sku>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "delta", Required: true, Usage: "signed change to on-hand"},
			&cli.StringFlag{Name: "reason", Value: "stock count"},
		},
		Action: r.withService(func(c *cli.Context, svc app.ApplicationService) error {
			sku, err := argAt(c, 0, "sku")
			if err != nil {
				return err
			}
			result, err := svc.Adjust(c.Context, app.AdjustRequest{
				SKU:    sku,
				Delta:  c.Int("delta"),
				Reason: c.String("reason"),
			})
			if err != nil {
				return err
			}
			printPart(c.App.Writer, result)
			return nil
		}),
	}
}

func (r *runner) stock(c *cli.Context, svc app.ApplicationService) error {
	result, err := svc.StockOverview(c.Context)
	if err != nil {
		return err
	}
	printStock(c.App.Writer, result.Rows)
	return nil
}

// ── Reorder ───────────────────────────────────────────────────────────────────

func (r *runner) reorderCommand() *cli.Command {
	return &cli.Command{
		Name:  "reorder",
		Usage: "compute reorder suggestions",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "safety", Usage: "safety stock (default PARTS_SAFETY_STOCK)"},
			&cli.BoolFlag{Name: "create-drafts", Usage: "save one DRAFT order per supplier"},
			&cli.StringFlag{Name: "date", Usage: "created date YYYY-MM-DD for drafts"},
		},
		Action: r.withService(func(c *cli.Context, svc app.ApplicationService) error {
			var safety *int
			if c.IsSet("safety") {
				v := c.Int("safety")
				safety = &v
			}
			result, err := svc.SuggestReorder(c.Context, safety)
			if err != nil {
				return err
			}
			printSuggestions(c.App.Writer, result)
			if !c.Bool("create-drafts") || len(result.Suggestions) == 0 {
				return nil
			}
			drafts, err := svc.CreateDraftsFromSuggestions(c.Context, app.CreateDraftsRequest{
				SafetyStock: safety,
				CreatedDate: c.String("date"),
			})
			if err != nil {
				return err
			}
			printOrders(c.App.Writer, drafts.Orders)
			return nil
		}),
	}
}

// ── Purchase orders ───────────────────────────────────────────────────────────

func (r *runner) poCommand() *cli.Command {
	return &cli.Command{
		Name:  "po",
		Usage: "manage purchase orders",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list purchase orders",
				Flags: []cli.Flag{&cli.StringFlag{Name: "status"}},
				Action: r.withService(func(c *cli.Context, svc app.ApplicationService) error {
					result, err := svc.ListPurchaseOrders(c.Context, c.String("status"))
					if err != nil {
						return err
					}
					printOrders(c.App.Writer, result.Orders)
					return nil
				}),
			},
			{
				Name:      "show",
				Usage:     "show one purchase order",
				ArgsUsage: "<id>",
				Action: r.withService(func(c *cli.Context, svc app.ApplicationService) error {
					id, err := argAt(c, 0, "id")
					if err != nil {
						return err
					}
					result, err := svc.GetPurchaseOrder(c.Context, id)
					if err != nil {
						return err
					}
					printOrder(c.App.Writer, result.Order)
					return nil
				}),
			},
			{
				Name:      "new",
				Usage:     "create an empty DRAFT order",
				ArgsUsage: "<supplier>",
				Flags:     []cli.Flag{&cli.StringFlag{Name: "date"}},
				Action: r.withService(func(c *cli.Context, svc app.ApplicationService) error {
					supplier, err := argAt(c, 0, "supplier")
					if err != nil {
						return err
					}
					result, err := svc.CreatePurchaseOrder(c.Context, app.CreatePurchaseOrderRequest{
						Supplier:    supplier,
						CreatedDate: c.String("date"),
					})
					if err != nil {
						return err
					}
					printOrder(c.App.Writer, result.Order)
					return nil
				}),
			},
			{
				Name:      "add-line",
				Usage:     "append a line to an order",
				ArgsUsage: "<id> <sku> <qty>",
				Flags:     []cli.Flag{&cli.StringFlag{Name: "cost", Usage: "unit cost (default: part's last cost)"}},
				Action: r.withService(func(c *cli.Context, svc app.ApplicationService) error {
					id, err := argAt(c, 0, "id")
					if err != nil {
						return err
					}
					sku, err := argAt(c, 1, "sku")
					if err != nil {
						return err
					}
					qty, err := intArgAt(c, 2, "qty")
					if err != nil {
						return err
					}
					line := app.POLineInput{SKU: sku, Qty: qty}
					if c.IsSet("cost") {
						cost, err := decimal.NewFromString(c.String("cost"))
						if err != nil {
							return fmt.Errorf("invalid --cost %q: %w", c.String("cost"), err)
						}
						line.UnitCost = &cost
					}
					result, err := svc.AddPurchaseOrderLine(c.Context, id, line)
					if err != nil {
						return err
					}
					printOrder(c.App.Writer, result.Order)
					return nil
				}),
			},
			{
				Name:      "status",
				Usage:     "move an order to PLACED, RECEIVED or CANCELED",
				ArgsUsage: "<id> <status>",
				Action: r.withService(func(c *cli.Context, svc app.ApplicationService) error {
					id, err := argAt(c, 0, "id")
					if err != nil {
						return err
					}
					status, err := argAt(c, 1, "status")
					if err != nil {
						return err
					}
					result, err := svc.UpdatePurchaseOrderStatus(c.Context, id, status)
					if err != nil {
						return err
					}
					printOrder(c.App.Writer, result.Order)
					return nil
				}),
			},
		},
	}
}

func (r *runner) importDrafts(c *cli.Context, svc app.ApplicationService) error {
	dir, err := argAt(c, 0, "dir")
	if err != nil {
		return err
	}
	n, err := svc.ImportDrafts(c.Context, dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Imported %d purchase order(s).\n", n)
	return nil
}

func (r *runner) restoreSeed(c *cli.Context, svc app.ApplicationService) error {
	n, err := svc.RestoreDemoSeed(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Restored %d demo part(s).\n", n)
	return nil
}

// ── Tooling ───────────────────────────────────────────────────────────────────

func (r *runner) schema(c *cli.Context) error {
	schemas := app.CollectionSchemas()
	var v any = schemas
	if name := c.Args().First(); name != "" {
		s, ok := schemas[name]
		if !ok {
			return fmt.Errorf("unknown collection %q", name)
		}
		v = s
	}
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (r *runner) migrate(c *cli.Context) error {
	if r.cfg.Backend != config.BackendPostgres {
		return fmt.Errorf("migrate needs PARTS_BACKEND=postgres (current: %s)", r.cfg.Backend)
	}
	if err := storage.Migrate(r.cfg.DatabaseURL); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "Migrations applied.")
	return nil
}

func (r *runner) tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "mint a bearer token for the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "subject", Value: "partsctl"},
			&cli.StringFlag{Name: "role", Value: webAdapter.RoleStaff, Usage: "ADMIN, STAFF or TECHNICIAN"},
			&cli.DurationFlag{Name: "ttl", Value: 12 * time.Hour},
		},
		Action: func(c *cli.Context) error {
			token, err := webAdapter.IssueToken(r.cfg.JWTSecret, c.String("subject"), c.String("role"), c.Duration("ttl"))
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, token)
			return nil
		},
	}
}

// ── args ──────────────────────────────────────────────────────────────────────

func argAt(c *cli.Context, i int, name string) (string, error) {
	v := c.Args().Get(i)
	if v == "" {
		return "", fmt.Errorf("missing <%s>\nusage: %s %s", name, c.Command.HelpName, c.Command.ArgsUsage)
	}
	return v, nil
}

func intArgAt(c *cli.Context, i int, name string) (int, error) {
	v, err := argAt(c, i, name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("<%s> must be an integer, got %q", name, v)
	}
	return n, nil
}
