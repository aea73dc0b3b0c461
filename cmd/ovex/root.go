package main

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/apd/v3"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ovex/pkg/client"
	"ovex/pkg/ovex"
)

type app struct {
	v          *viper.Viper
	configFile string
}

func newRootCmd() *cobra.Command {
	a := &app{v: newViper()}

	root := &cobra.Command{
		Use:          "ovex",
		Short:        "OVEX exchange API client",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (yaml, json or toml)")
	flags.String("base-url", "", "API base URL")
	flags.String("api-key-id", "", "API key id (secret is read from OVEX_SECRET_KEY)")
	flags.Duration("timeout", 0, "per-request timeout")
	flags.String("log-level", "", "log level (debug|info|warn|error)")
	if err := bindFlags(a.v, flags); err != nil {
		panic(err)
	}

	root.AddCommand(
		a.feesCmd(),
		a.quoteCmd(),
		a.tradesCmd(),
		a.acceptCmd(),
		a.withdrawsCmd(),
		a.depositsCmd(),
		a.depositCmd(),
		a.depositAddressCmd(),
		a.currenciesCmd(),
		a.currencyCmd(),
		a.accountsCmd(),
	)
	return root
}

// run connects, performs call and prints its result as indented JSON.
func (a *app) run(cmd *cobra.Command, call func(ctx context.Context, c *ovex.Client) (any, error)) error {
	config, err := loadConfig(a.v, a.configFile)
	if err != nil {
		return err
	}

	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        cmd.ErrOrStderr(),
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()

	c, err := ovex.New(config, client.WithLogger(logger))
	if err != nil {
		return err
	}
	defer c.Close()

	result, err := call(cmd.Context(), c)
	if err != nil {
		logger.Error().Err(err).Str("command", cmd.CommandPath()).Msg("request failed")
		return err
	}

	out, err := sonic.ConfigStd.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

func (a *app) feesCmd() *cobra.Command {
	fees := &cobra.Command{
		Use:   "fees",
		Short: "Show withdrawal or deposit fees",
	}

	for _, kind := range []string{"withdraw", "deposit"} {
		kind := kind
		fees.AddCommand(&cobra.Command{
			Use:   kind + " [symbol]",
			Short: fmt.Sprintf("Show %s fees, optionally for one currency", kind),
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(cmd, func(ctx context.Context, c *ovex.Client) (any, error) {
					switch {
					case kind == "withdraw" && len(args) == 1:
						return c.GetFeeWithdrawFor(ctx, args[0])
					case kind == "withdraw":
						return c.GetFeeWithdraw(ctx)
					case len(args) == 1:
						return c.GetFeeDepositFor(ctx, args[0])
					default:
						return c.GetFeeDeposit(ctx)
					}
				})
			},
		})
	}
	return fees
}

func (a *app) quoteCmd() *cobra.Command {
	var market, side, from, to string

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Request an all-inclusive RfQ quote",
		Example: `  ovex quote --market btczar --side buy --from 1000
  ovex quote --market ethzar --side sell --to 5000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ovex.QuoteRequest{Market: market, Side: side}
			var err error
			if req.FromAmount, err = parseAmount("from", from); err != nil {
				return err
			}
			if req.ToAmount, err = parseAmount("to", to); err != nil {
				return err
			}
			return a.run(cmd, func(ctx context.Context, c *ovex.Client) (any, error) {
				return c.GetQuoteRFQ(ctx, req)
			})
		},
	}

	cmd.Flags().StringVar(&market, "market", ovex.MarketBTCZAR, "market (btczar|ethzar|tusdzar|usdtzar)")
	cmd.Flags().StringVar(&side, "side", ovex.SideBuy, "side (buy|sell)")
	cmd.Flags().StringVar(&from, "from", "", "amount in the input currency")
	cmd.Flags().StringVar(&to, "to", "", "amount in the output currency")
	cmd.MarkFlagsMutuallyExclusive("from", "to")
	cmd.MarkFlagsOneRequired("from", "to")
	return cmd
}

func parseAmount(name, s string) (*apd.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s amount %q: %w", name, s, err)
	}
	return d, nil
}

func (a *app) tradesCmd() *cobra.Command {
	var q ovex.TradesQuery
	var timestamp, from, to int64

	cmd := &cobra.Command{
		Use:   "trades",
		Short: "List RfQ trades",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("timestamp") {
				q.Timestamp = &timestamp
			}
			if cmd.Flags().Changed("from") {
				q.From = &from
			}
			if cmd.Flags().Changed("to") {
				q.To = &to
			}
			return a.run(cmd, func(ctx context.Context, c *ovex.Client) (any, error) {
				return c.GetTrades(ctx, q)
			})
		},
	}

	cmd.Flags().IntVar(&q.Limit, "limit", 50, "number of trades")
	cmd.Flags().StringVar(&q.OrderBy, "order-by", "desc", "sort order (asc|desc)")
	cmd.Flags().Int64Var(&timestamp, "timestamp", 0, "only trades before this unix time (seconds)")
	cmd.Flags().Int64Var(&from, "from", 0, "only trades after this trade id")
	cmd.Flags().Int64Var(&to, "to", 0, "only trades before this trade id")
	return cmd
}

func (a *app) acceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accept <quote-token>",
		Short: "Accept a quote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *ovex.Client) (any, error) {
				return c.AcceptQuote(ctx, args[0])
			})
		},
	}
}

func (a *app) withdrawsCmd() *cobra.Command {
	var q ovex.WithdrawsQuery

	cmd := &cobra.Command{
		Use:   "withdraws",
		Short: "List withdrawals of a currency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *ovex.Client) (any, error) {
				return c.GetWithdraws(ctx, q)
			})
		},
	}

	cmd.Flags().StringVar(&q.Currency, "currency", "", "currency (required)")
	cmd.Flags().IntVar(&q.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&q.Limit, "limit", 100, "withdrawals per page (max 1000)")
	cmd.MarkFlagRequired("currency")
	return cmd
}

func (a *app) depositsCmd() *cobra.Command {
	var q ovex.DepositsQuery

	cmd := &cobra.Command{
		Use:   "deposits",
		Short: "List deposits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *ovex.Client) (any, error) {
				return c.GetDeposits(ctx, q)
			})
		},
	}

	cmd.Flags().StringVar(&q.Currency, "currency", "", "currency")
	cmd.Flags().IntVar(&q.Limit, "limit", 0, "result limit")
	cmd.Flags().StringVar(&q.State, "state", "", "deposit state")
	return cmd
}

func (a *app) depositCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deposit <txid>",
		Short: "Show one deposit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *ovex.Client) (any, error) {
				return c.GetDepositInfo(ctx, args[0])
			})
		},
	}
}

func (a *app) depositAddressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deposit-address <currency>",
		Short: "Show the deposit address of a currency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *ovex.Client) (any, error) {
				return c.GetDepositAddress(ctx, args[0])
			})
		},
	}
}

func (a *app) currenciesCmd() *cobra.Command {
	var currencyType string

	cmd := &cobra.Command{
		Use:   "currencies",
		Short: "List currencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *ovex.Client) (any, error) {
				return c.GetCurrencies(ctx, currencyType)
			})
		},
	}

	cmd.Flags().StringVar(&currencyType, "type", "", "currency type (coin|fiat)")
	return cmd
}

func (a *app) currencyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "currency <id>",
		Short: "Show one currency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *ovex.Client) (any, error) {
				return c.GetCurrencyInfo(ctx, args[0])
			})
		},
	}
}

func (a *app) accountsCmd() *cobra.Command {
	var currency string

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List account balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *ovex.Client) (any, error) {
				return c.GetAccounts(ctx, currency)
			})
		},
	}

	cmd.Flags().StringVar(&currency, "currency", "", "currency")
	return cmd
}
